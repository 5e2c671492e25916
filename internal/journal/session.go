package journal

import (
	"sync"

	"github.com/google/uuid"
)

// SessionIDGenerator names sessions.
type SessionIDGenerator interface {
	Generate() string
}

// UUIDv7Generator issues time-sortable session ids. Safe for concurrent
// use.
type UUIDv7Generator struct{}

// Generate returns a hyphenated UUIDv7.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined ids, for tests and golden traces.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next id. It panics once the ids are exhausted.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all session ids used")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
