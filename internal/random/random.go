// Package random holds the randomness used for shuffling playlists and
// drawing clip offsets, behind an interface tests can replace.
package random

import (
	"math/rand"
	"sync"
	"time"
)

// Source draws integers in [0, n).
type Source interface {
	Intn(n int) int
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a Source seeded once from the clock and safe for concurrent use.
func New() Source {
	return NewSeeded(time.Now().UnixNano())
}

func NewSeeded(seed int64) Source {
	return &lockedSource{r: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

// Shuffle permutes items in place (Fisher-Yates) and returns them.
func Shuffle[T any](src Source, items []T) []T {
	for i := len(items) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
	return items
}
