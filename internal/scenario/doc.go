// Package scenario загружает описания сценариев из YAML/JSON файлов.
//
// Формат:
//
//	namespace: payments
//	id: latency-drill
//	title: Latency drill
//	version: 3
//	tags: [staging]
//	preferred_actions: [drain]
//	vars:
//	  target: http://svc
//	stages:
//	  - name: inject-latency
//	    uses: delay
//	    input: {duration_ms: 200}
//	    example: {duration_ms: 200}
//	  - name: verify-recovery
//	    uses: http-probe
//	    input: {url: "{{ .Vars.target }}/healthz", expect_status: 200}
//
// uses — kind встроенного адаптера (adapters.Catalog). Stage без uses
// допустим: если адаптер для него не зарегистрирован иначе, run упадёт
// с "missing plugin" на этом stage.
//
// Строки в input и example рендерятся как text/template с данными
// .Vars (vars файла и --set), .Env и .Scenario. Результат, являющийся
// JSON числом, bool, объектом или массивом, сохраняет этот тип.
package scenario
