package match

import (
	"fmt"
	"sync/atomic"
)

type generation struct {
	store *Store
	gen   uint64
}

// Holder owns the current Store. Reloading swaps the pointer; a Store is
// never modified once published.
type Holder struct {
	current atomic.Pointer[generation]
}

// NewHolder creates a holder publishing s as generation 1.
func NewHolder(s *Store) *Holder {
	h := &Holder{}
	h.current.Store(&generation{store: s, gen: 1})
	return h
}

// Load returns the current store and its generation.
func (h *Holder) Load() (*Store, uint64) {
	g := h.current.Load()
	return g.store, g.gen
}

// Store returns the current store.
func (h *Holder) Store() *Store {
	return h.current.Load().store
}

// Swap publishes s and returns its generation.
func (h *Holder) Swap(s *Store) uint64 {
	for {
		old := h.current.Load()
		next := &generation{store: s, gen: old.gen + 1}
		if h.current.CompareAndSwap(old, next) {
			return next.gen
		}
	}
}

// Reload loads dir and publishes the result. On any load error the current
// store is kept.
func (h *Holder) Reload(l *Loader, dir string) (*LoadResult, error) {
	result, errs := l.Load(dir, LoadModeFailFast)
	if len(errs) > 0 {
		return nil, fmt.Errorf("reloading %s: %w", dir, errs[0])
	}
	h.Swap(result.Store)
	return result, nil
}
