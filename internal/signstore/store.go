// Package signstore provides access to the reference sign dictionary: a
// vector store of normalized fingerprints queried by cosine similarity.
// Two backends exist: the Qdrant deployment the game runs against, and an
// embedded SQLite brute-force store for development and tests.
package signstore

import (
	"context"
	"errors"
	"math"
)

// DifficultyAny is the sentinel tier that matches every stored sign.
const DifficultyAny = "ANY"

// ErrDimensionMismatch is returned when a query vector's length does not
// match the stored references, which means the collection was initialized
// for the other game mode.
var ErrDimensionMismatch = errors.New("fingerprint dimension mismatch")

// ReferenceSign is one stored dictionary entry.
type ReferenceSign struct {
	Label      string    `json:"sign_name"`
	Difficulty string    `json:"difficulty"`
	Vector     []float64 `json:"vector"`
}

// Result is one ranked hit from a similarity search.
type Result struct {
	// Score is a cosine similarity in [0,1], higher is closer.
	Score      float64
	Label      string
	Difficulty string
}

// Store is the read surface the game needs from the sign dictionary.
type Store interface {
	// Search returns up to limit nearest references whose label equals
	// label exactly, best first. An unknown label yields an empty slice,
	// not an error.
	Search(ctx context.Context, vector []float64, label string, limit int) ([]Result, error)

	// ScanLabels returns the stored labels for a difficulty tier,
	// DifficultyAny for all of them. Labels may repeat when a sign has
	// several reference fingerprints.
	ScanLabels(ctx context.Context, difficulty string) ([]string, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Admin extends Store with the write surface the dictionary loader uses.
// The game server itself never writes.
type Admin interface {
	Store

	// Recreate drops all stored references and prepares the backend for
	// fingerprints of the given dimensionality.
	Recreate(ctx context.Context, dims int) error

	// Insert bulk-loads reference signs.
	Insert(ctx context.Context, signs []ReferenceSign) error
}

// cosineSimilarity returns the cosine of the angle between a and b,
// clamped to 0 for degenerate inputs.
func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
