package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/IDGS10A-ECONORTE/lsm-server/internal/signstore"
)

// ErrNoSigns is returned when the requested difficulty tier has no signs.
// Callers surface it to the player as an error reply, never retry silently.
var ErrNoSigns = errors.New("no signs available for difficulty")

// Selector picks a target sign pseudo-randomly from the dictionary catalog.
type Selector struct {
	store signstore.Store
	mu    sync.Mutex
	rng   *rand.Rand
}

// NewSelector creates a Selector with a time-seeded source.
func NewSelector(store signstore.Store) *Selector {
	return NewSelectorWithSource(store, rand.NewSource(time.Now().UnixNano()))
}

// NewSelectorWithSource creates a Selector with a caller-provided source,
// useful for deterministic tests.
func NewSelectorWithSource(store signstore.Store, src rand.Source) *Selector {
	return &Selector{store: store, rng: rand.New(src)}
}

// Select scans the catalog for the difficulty tier (DifficultyAny scans the
// whole dictionary), deduplicates labels, and picks one uniformly at random.
// This hits the store and may be slow; callers run it on the worker pool.
func (s *Selector) Select(ctx context.Context, difficulty string) (string, error) {
	difficulty = strings.ToUpper(strings.TrimSpace(difficulty))
	if difficulty == "" {
		difficulty = signstore.DifficultyAny
	}

	labels, err := s.store.ScanLabels(ctx, difficulty)
	if err != nil {
		return "", fmt.Errorf("scan sign catalog: %w", err)
	}

	// A sign may have several reference fingerprints per tier.
	seen := make(map[string]struct{}, len(labels))
	unique := make([]string, 0, len(labels))
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		unique = append(unique, label)
	}

	if len(unique) == 0 {
		return "", fmt.Errorf("%w %q", ErrNoSigns, difficulty)
	}

	// Stable order so the draw is uniform regardless of store iteration order.
	sort.Strings(unique)

	s.mu.Lock()
	pick := unique[s.rng.Intn(len(unique))]
	s.mu.Unlock()

	return pick, nil
}
