package adapters

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shaiso/Chaosflow/internal/plugin"
)

// KindNoop — kind адаптера, возвращающего вход.
const KindNoop = "noop"

// ErrUnknownKind — kind не найден в каталоге.
var ErrUnknownKind = errors.New("unknown adapter kind")

// Noop возвращает адаптер, который отдаёт вход как выход.
func Noop() plugin.Adapter {
	return plugin.AdapterFunc(func(_ context.Context, input any, _ plugin.RunContext) plugin.Outcome {
		return plugin.Success(input)
	})
}

// Catalog — каталог адаптеров по kind.
type Catalog struct {
	adapters map[string]plugin.Adapter
}

// NewCatalog создаёт пустой каталог.
func NewCatalog() *Catalog {
	return &Catalog{adapters: make(map[string]plugin.Adapter)}
}

// DefaultCatalog создаёт каталог со всеми встроенными адаптерами.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	c.Register(KindDelay, Delay())
	c.Register(KindHTTPProbe, NewHTTPProbe(nil))
	c.Register(KindNoop, Noop())
	return c
}

// Register добавляет адаптер для kind. Существующий kind перезаписывается.
func (c *Catalog) Register(kind string, adapter plugin.Adapter) {
	c.adapters[kind] = adapter
}

// Get возвращает адаптер для kind.
func (c *Catalog) Get(kind string) (plugin.Adapter, error) {
	adapter, ok := c.adapters[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return adapter, nil
}

// Has проверяет, есть ли kind в каталоге.
func (c *Catalog) Has(kind string) bool {
	_, ok := c.adapters[kind]
	return ok
}

// Kinds возвращает отсортированный список kinds.
func (c *Catalog) Kinds() []string {
	kinds := make([]string, 0, len(c.adapters))
	for k := range c.adapters {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
