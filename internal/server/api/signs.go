// Package api provides the HTTP debug surface over the sign dictionary.
package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/IDGS10A-ECONORTE/lsm-server/internal/signstore"
)

// SignsHandler serves the catalog of stored sign labels.
type SignsHandler struct {
	store signstore.Store
}

// NewSignsHandler creates a new SignsHandler with the given store.
func NewSignsHandler(s signstore.Store) *SignsHandler {
	return &SignsHandler{store: s}
}

type signsResponse struct {
	Difficulty string   `json:"difficulty"`
	Signs      []string `json:"signs"`
}

// ServeHTTP handles GET /api/signs?difficulty=TIER.
func (h *SignsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	difficulty := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("difficulty")))
	if difficulty == "" {
		difficulty = signstore.DifficultyAny
	}

	labels, err := h.store.ScanLabels(r.Context(), difficulty)
	if err != nil {
		http.Error(w, "sign dictionary unavailable", http.StatusBadGateway)
		return
	}

	seen := make(map[string]struct{}, len(labels))
	unique := make([]string, 0, len(labels))
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		unique = append(unique, label)
	}
	sort.Strings(unique)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(signsResponse{
		Difficulty: difficulty,
		Signs:      unique,
	}); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
