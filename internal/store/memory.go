// internal/store/memory.go
//
// In-memory session registry for matches.
// Maps a match ID (session key) to exactly one *game.Game.
//
// Characteristics:
//   - The map is guarded by an RWMutex; each entry has its own mutex so rounds
//     on one match are serialized while other matches proceed in parallel.
//   - Get hands out clones, never the live game.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/rpsplus/internal/game"
)

// ErrNotFound is returned by Get for an unknown match ID.
var ErrNotFound = errors.New("not found")

// Store defines the registry interface for matches.
type Store interface {
	// Save replaces the match stored under g.ID.
	Save(ctx context.Context, g *game.Game) error

	// Get returns a copy of the match, or ErrNotFound.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Update runs fn on the live match under its lock, creating a fresh
	// match first if id is unknown. fn's error is returned as is; any
	// mutation fn made before failing is kept.
	Update(ctx context.Context, id string, fn func(g *game.Game) error) error
}

// entry serializes access to one match.
type entry struct {
	mu sync.Mutex
	g  *game.Game
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu      sync.RWMutex      // guards entries map
	entries map[string]*entry // keyed by Game.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{entries: make(map[string]*entry)}
}

// Save swaps the match held by the entry for g.ID.
func (m *memory) Save(ctx context.Context, g *game.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := m.entry(g.ID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.g = g
	return nil
}

// Get looks up a match by ID and returns a copy.
func (m *memory) Get(ctx context.Context, id string) (*game.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.g.Clone(), nil
}

// Update runs fn with exclusive access to the match.
func (m *memory) Update(ctx context.Context, id string, fn func(g *game.Game) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := m.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.g)
}

// entry returns the entry for id, creating it with a fresh match if missing.
func (m *memory) entry(id string) *entry {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if ok {
		return e
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		return e
	}
	e = &entry{g: game.New(id)}
	m.entries[id] = e
	return e
}
