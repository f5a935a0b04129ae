// Package scoreboard keeps the ranked list of completed runs.
package scoreboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// DefaultCapacity is the number of entries a board keeps
const DefaultCapacity = 10

var ErrInvalidMoves = errors.New("moves must not be negative")

// Entry is one completed run
type Entry struct {
	Name       string    `json:"name" csv:"name"`
	Moves      int       `json:"moves" csv:"moves"`
	RecordedAt time.Time `json:"recorded_at" csv:"recorded_at"`
}

// Store persists completed runs
type Store interface {
	// Load returns at most limit entries, fewest moves first, ties in insertion order
	Load(ctx context.Context, limit int) ([]Entry, error)
	Append(ctx context.Context, entry Entry) error
}

// Board is a ranked, size-capped list of entries. It is safe for concurrent use.
type Board struct {
	// writeMu orders records so the store sees them in ranking order
	writeMu sync.Mutex

	mu       sync.RWMutex
	entries  []Entry
	capacity int
	store    Store
	now      func() time.Time
}

// NewBoard creates an in-memory board keeping the best capacity entries
func NewBoard(capacity int) *Board {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Board{
		entries:  []Entry{},
		capacity: capacity,
		now:      time.Now,
	}
}

// NewBoardWithStore creates a board backed by store and loads its current top entries
func NewBoardWithStore(ctx context.Context, capacity int, store Store) (*Board, error) {
	b := NewBoard(capacity)
	if store == nil {
		return b, nil
	}

	entries, err := store.Load(ctx, b.capacity)
	if err != nil {
		return nil, fmt.Errorf("loading scoreboard: %w", err)
	}
	b.store = store
	b.entries = append(b.entries, entries...)
	b.rank()
	return b, nil
}

// Record adds a completed run and returns the updated ranking together with the
// 1-based rank of the new entry, or 0 when it did not make the board.
// Any name is accepted, including an empty one; repeated names are separate entries.
// When the store fails the entry is still ranked in memory and the error is returned.
func (b *Board) Record(ctx context.Context, name string, moves int) ([]Entry, int, error) {
	if moves < 0 {
		return nil, 0, ErrInvalidMoves
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	b.mu.Lock()
	// Ties keep insertion order, so the new entry lands after every equal one
	rank := 1
	for _, e := range b.entries {
		if e.Moves <= moves {
			rank++
		}
	}
	if rank > b.capacity {
		rank = 0
	}

	entry := Entry{Name: name, Moves: moves, RecordedAt: b.now().UTC()}
	b.entries = append(b.entries, entry)
	b.rank()
	entries := slices.Clone(b.entries)
	store := b.store
	b.mu.Unlock()

	if store != nil {
		if err := store.Append(ctx, entry); err != nil {
			return entries, rank, fmt.Errorf("storing score: %w", err)
		}
	}
	return entries, rank, nil
}

// Entries returns a copy of the current ranking
func (b *Board) Entries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.entries)
}

// Capacity returns the number of entries the board keeps
func (b *Board) Capacity() int {
	return b.capacity
}

// rank sorts by moves, keeping insertion order on ties, and truncates to capacity
func (b *Board) rank() {
	slices.SortStableFunc(b.entries, func(x, y Entry) int {
		return x.Moves - y.Moves
	})
	if len(b.entries) > b.capacity {
		b.entries = b.entries[:b.capacity]
	}
}
