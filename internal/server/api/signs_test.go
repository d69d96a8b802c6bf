package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/IDGS10A-ECONORTE/lsm-server/internal/signstore"
)

func TestSignsHandler_ListsUniqueSorted(t *testing.T) {
	store := signstore.NewMockStore()
	store.SetLabels([]string{"HOLA", "A", "HOLA", "GRACIAS"})

	handler := NewSignsHandler(store)
	req := httptest.NewRequest(http.MethodGet, "/api/signs", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Difficulty string   `json:"difficulty"`
		Signs      []string `json:"signs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	want := []string{"A", "GRACIAS", "HOLA"}
	if len(body.Signs) != len(want) {
		t.Fatalf("signs = %v, want %v", body.Signs, want)
	}
	for i := range want {
		if body.Signs[i] != want[i] {
			t.Errorf("signs[%d] = %q, want %q", i, body.Signs[i], want[i])
		}
	}
	if body.Difficulty != signstore.DifficultyAny {
		t.Errorf("difficulty = %q, want %q", body.Difficulty, signstore.DifficultyAny)
	}
}

func TestSignsHandler_StoreError(t *testing.T) {
	store := signstore.NewMockStore()
	store.SetScanError(errors.New("unreachable"))

	handler := NewSignsHandler(store)
	req := httptest.NewRequest(http.MethodGet, "/api/signs", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
}

func TestSignsHandler_MethodNotAllowed(t *testing.T) {
	handler := NewSignsHandler(signstore.NewMockStore())
	req := httptest.NewRequest(http.MethodPost, "/api/signs", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
