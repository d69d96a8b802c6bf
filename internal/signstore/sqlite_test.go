package signstore

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "signs.db")
	store, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func seedSigns(t *testing.T, store *SQLiteStore) {
	t.Helper()

	signs := []ReferenceSign{
		{Label: "A", Difficulty: "EASY", Vector: []float64{1, 0, 0}},
		{Label: "A", Difficulty: "EASY", Vector: []float64{0.9, 0.1, 0}},
		{Label: "B", Difficulty: "HARD", Vector: []float64{0, 1, 0}},
	}
	if err := store.Insert(context.Background(), signs); err != nil {
		t.Fatalf("failed to seed signs: %v", err)
	}
}

func TestSQLiteStore_SearchRanking(t *testing.T) {
	store := newTestStore(t)
	seedSigns(t, store)

	results, err := store.Search(context.Background(), []float64{1, 0, 0}, "A", 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	// The exact-match reference must win with similarity 1.
	if math.Abs(results[0].Score-1.0) > 1e-9 {
		t.Errorf("expected score 1.0 for identical vector, got %f", results[0].Score)
	}
	if results[0].Label != "A" {
		t.Errorf("expected label A, got %q", results[0].Label)
	}
	if results[0].Difficulty != "EASY" {
		t.Errorf("expected difficulty EASY, got %q", results[0].Difficulty)
	}
}

func TestSQLiteStore_SearchUnknownLabel(t *testing.T) {
	store := newTestStore(t)
	seedSigns(t, store)

	results, err := store.Search(context.Background(), []float64{1, 0, 0}, "Z", 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results for unknown label, got %d", len(results))
	}
}

func TestSQLiteStore_SearchDimensionMismatch(t *testing.T) {
	store := newTestStore(t)
	seedSigns(t, store)

	_, err := store.Search(context.Background(), []float64{1, 0, 0, 0}, "A", 1)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSQLiteStore_ScanLabels(t *testing.T) {
	store := newTestStore(t)
	seedSigns(t, store)

	labels, err := store.ScanLabels(context.Background(), DifficultyAny)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	// A has two reference fingerprints; ScanLabels does not deduplicate.
	if len(labels) != 3 {
		t.Fatalf("expected 3 labels, got %d: %v", len(labels), labels)
	}

	easy, err := store.ScanLabels(context.Background(), "EASY")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	for _, l := range easy {
		if l != "A" {
			t.Errorf("expected only A at EASY tier, got %q", l)
		}
	}

	none, err := store.ScanLabels(context.Background(), "IMPOSSIBLE")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no labels at IMPOSSIBLE tier, got %v", none)
	}
}

func TestSQLiteStore_Recreate(t *testing.T) {
	store := newTestStore(t)
	seedSigns(t, store)

	if err := store.Recreate(context.Background(), 3); err != nil {
		t.Fatalf("recreate failed: %v", err)
	}

	labels, err := store.ScanLabels(context.Background(), DifficultyAny)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(labels) != 0 {
		t.Errorf("expected empty store after recreate, got %v", labels)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float64{1, 0}, []float64{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical vectors: expected 1, got %f", got)
	}
	if got := cosineSimilarity([]float64{1, 0}, []float64{0, 1}); math.Abs(got) > 1e-9 {
		t.Errorf("orthogonal vectors: expected 0, got %f", got)
	}
	if got := cosineSimilarity([]float64{0, 0}, []float64{1, 0}); got != 0 {
		t.Errorf("zero vector: expected 0, got %f", got)
	}
}
