// Package history holds the fixed-capacity ring of submitted command lines.
package history

import (
	"errors"
	"iter"
)

// DefaultCapacity is the number of lines kept when no capacity is configured.
const DefaultCapacity = 100

// ErrNotFound is returned when an offset doesn't resolve to a live entry.
var ErrNotFound = errors.New("entry not found")

// Buffer is a circular log of command lines. Storage is indexed by the
// total number of lines ever inserted modulo the capacity, so once the ring
// is full every append overwrites the oldest live line.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	lines []string
	total int
}

// New creates a buffer holding at most capacity lines. Capacities below one
// fall back to DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		lines: make([]string, capacity),
	}
}

// Cap returns the maximum number of live entries.
func (b *Buffer) Cap() int {
	return len(b.lines)
}

// Len returns the number of live entries.
func (b *Buffer) Len() int {
	return min(b.total, b.Cap())
}

// Oldest returns the sequence number of the oldest live entry.
func (b *Buffer) Oldest() int {
	return max(0, b.total-b.Cap())
}

// Append stores line, overwriting the oldest entry if the buffer is full.
func (b *Buffer) Append(line string) {
	b.lines[b.total%b.Cap()] = line
	b.total++
}

// Lookup resolves an offset relative to the oldest live entry, the same
// index All yields for it.
func (b *Buffer) Lookup(offset int) (string, error) {
	if offset < 0 || offset >= b.Len() {
		return "", ErrNotFound
	}
	return b.lines[b.slot(b.Oldest()+offset)], nil
}

// All iterates the live entries from oldest to newest, yielding the display
// index (0 for the oldest) and the line. The sequence can be ranged over any
// number of times.
func (b *Buffer) All() iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		oldest := b.Oldest()
		for i := 0; i < b.Len(); i++ {
			if !yield(i, b.lines[b.slot(oldest+i)]) {
				return
			}
		}
	}
}

// Clear drops every entry and resets the insertion counter.
func (b *Buffer) Clear() {
	clear(b.lines)
	b.total = 0
}

func (b *Buffer) slot(seq int) int {
	return seq % b.Cap()
}
