// Package orchestrator выполняет сценарий хаос-эксперимента.
//
// Orchestrator — конечный автомат одного run:
//
//	arming → active → verified → active → ... → complete
//	              ↘ failed
//
// Stages выполняются строго последовательно в порядке объявления:
// следующий stage может зависеть от побочных эффектов предыдущего.
// Первая ошибка (адаптер вернул Failed, адаптера нет, run отменён)
// завершает run со статусом failed. Повторов нет.
//
// Прогресс наблюдается только через события:
//
//	run-started
//	stage-started   → stage-complete | stage-failed
//	...
//	run-complete | run-failed   (всегда последнее событие)
//
// Финальное событие несёт Report в поле Snapshot; тот же Report
// возвращает Orchestrator.Report() после исчерпания потока.
//
// Использование:
//
//	orch := orchestrator.New(ns, scenario, registry, orchestrator.Options{})
//	for ev := range orch.All(ctx) {
//	    fmt.Println(ev.Kind, ev.Stage)
//	}
//	report := orch.Report()
//
// Или короче:
//
//	report := orchestrator.RunChaosScenario(ctx, ns, scenario, registry, opts)
//
// Orchestrator не потокобезопасен: один экземпляр — один run, Next
// вызывается из одной горутины. Разные экземпляры независимы и могут
// выполняться параллельно с общим (read-only) реестром.
package orchestrator
