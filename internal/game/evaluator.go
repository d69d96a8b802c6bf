// Package game implements match evaluation and target selection against the
// reference sign dictionary.
package game

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/IDGS10A-ECONORTE/lsm-server/internal/gesture"
	"github.com/IDGS10A-ECONORTE/lsm-server/internal/signstore"
)

// Verdict is the judgment for one submitted frame.
type Verdict struct {
	Correct  bool
	Feedback string
	// Score is the similarity percentage in [0,100].
	Score float64
}

// Evaluator checks assembled fingerprints against a target sign.
type Evaluator struct {
	store     signstore.Store
	threshold float64
}

// NewEvaluator creates an Evaluator. The threshold is a similarity in [0,1];
// a performance counts as correct only when the store-reported similarity
// strictly exceeds it.
func NewEvaluator(store signstore.Store, threshold float64) *Evaluator {
	return &Evaluator{store: store, threshold: threshold}
}

// Evaluate queries the store for the single nearest reference carrying the
// target label and applies the acceptance threshold. Store failures are
// folded into a negative verdict; they never escape as errors.
func (e *Evaluator) Evaluate(ctx context.Context, fp gesture.Fingerprint, target string) Verdict {
	target = strings.ToUpper(target)

	results, err := e.store.Search(ctx, fp, target, 1)
	if err != nil {
		if errors.Is(err, signstore.ErrDimensionMismatch) {
			return Verdict{
				Feedback: "Sign dictionary misconfigured: fingerprint dimensions do not match (similarity 0.0%)",
			}
		}
		return Verdict{
			Feedback: "Sign dictionary unreachable (similarity 0.0%)",
		}
	}

	if len(results) == 0 {
		return Verdict{
			Feedback: fmt.Sprintf("Sign %q not found in the dictionary (similarity 0.0%%)", target),
		}
	}

	score := results[0].Score * 100.0

	if results[0].Score > e.threshold {
		return Verdict{
			Correct:  true,
			Feedback: fmt.Sprintf("Correct sign! Similarity: %.1f%%", score),
			Score:    score,
		}
	}

	return Verdict{
		Feedback: fmt.Sprintf("Similarity too low: %.1f%%", score),
		Score:    score,
	}
}
