package formxml

import (
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces libraryUniqueId and handlerUniqueId values.
type IDGenerator interface {
	NewID() string
}

// GUIDGenerator generates random GUIDs in registry format: lower case,
// hyphenated and wrapped in braces.
//
// Format: "{550e8400-e29b-41d4-a716-446655440000}" (38 characters)
//
// Thread-safety: GUIDGenerator is stateless and safe for concurrent use.
type GUIDGenerator struct{}

// NewID implements IDGenerator.
func (GUIDGenerator) NewID() string {
	return "{" + uuid.NewString() + "}"
}

// FixedGenerator returns predetermined ids in order.
//
// Panics once all ids are consumed, which surfaces a test that created more
// entries than it expected.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// NewID implements IDGenerator.
func (g *FixedGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Remaining returns how many ids have not been handed out.
func (g *FixedGenerator) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.ids) - g.idx
}
