package plugin

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shaiso/Chaosflow/internal/domain"
)

// ErrAdapterNotFound — для stage не зарегистрирован адаптер.
var ErrAdapterNotFound = errors.New("adapter not found")

// Binding связывает stage с адаптером.
type Binding struct {
	Stage   domain.StageBoundary
	Adapter Adapter
}

// Registry — реестр адаптеров по имени stage.
//
// Потокобезопасен. При повторной регистрации того же имени побеждает
// последняя; дубликаты не проверяются, за ними следит вызывающий код.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

// FromBindings строит реестр из списка привязок.
func FromBindings(bindings ...Binding) *Registry {
	r := NewRegistry()
	for _, b := range bindings {
		r.Register(b.Stage.Name, b.Adapter)
	}
	return r
}

// Register регистрирует адаптер для stage.
func (r *Registry) Register(stage string, adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[stage] = adapter
}

// RegisterFunc регистрирует функцию как адаптер.
func (r *Registry) RegisterFunc(stage string, fn AdapterFunc) {
	r.Register(stage, fn)
}

// Lookup возвращает адаптер для stage и признак наличия.
func (r *Registry) Lookup(stage string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[stage]
	return adapter, ok
}

// Get возвращает адаптер для stage.
// Возвращает ErrAdapterNotFound, если адаптера нет.
func (r *Registry) Get(stage string) (Adapter, error) {
	adapter, ok := r.Lookup(stage)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAdapterNotFound, stage)
	}
	return adapter, nil
}

// Has проверяет, зарегистрирован ли stage.
func (r *Registry) Has(stage string) bool {
	_, ok := r.Lookup(stage)
	return ok
}

// Stages возвращает отсортированный список зарегистрированных stages.
func (r *Registry) Stages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stages := make([]string, 0, len(r.adapters))
	for s := range r.adapters {
		stages = append(stages, s)
	}
	sort.Strings(stages)
	return stages
}

// Count возвращает количество зарегистрированных адаптеров.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adapters)
}

// Unregister удаляет адаптер stage.
func (r *Registry) Unregister(stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.adapters, stage)
}

// Missing возвращает stages сценария, для которых нет адаптера.
func (r *Registry) Missing(stages []domain.StageBoundary) []string {
	var missing []string
	for _, st := range stages {
		if !r.Has(st.Name) {
			missing = append(missing, st.Name)
		}
	}
	return missing
}
