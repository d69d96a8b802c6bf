package signstore

import "context"

// MockStore is a test implementation of the Store interface with canned
// responses, mirroring the mock detector pattern.
type MockStore struct {
	results   []Result
	labels    []string
	searchErr error
	scanErr   error

	// LastQuery records the arguments of the most recent Search call.
	LastQuery struct {
		Vector []float64
		Label  string
		Limit  int
	}
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// SetResults sets what Search will return.
func (m *MockStore) SetResults(results []Result) {
	m.results = results
}

// SetLabels sets what ScanLabels will return.
func (m *MockStore) SetLabels(labels []string) {
	m.labels = labels
}

// SetSearchError makes Search fail.
func (m *MockStore) SetSearchError(err error) {
	m.searchErr = err
}

// SetScanError makes ScanLabels fail.
func (m *MockStore) SetScanError(err error) {
	m.scanErr = err
}

// Search returns the canned results or error.
func (m *MockStore) Search(ctx context.Context, vector []float64, label string, limit int) ([]Result, error) {
	m.LastQuery.Vector = vector
	m.LastQuery.Label = label
	m.LastQuery.Limit = limit

	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results, nil
}

// ScanLabels returns the canned labels or error, ignoring the tier.
func (m *MockStore) ScanLabels(ctx context.Context, difficulty string) ([]string, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	return m.labels, nil
}

// Ping never fails for the mock.
func (m *MockStore) Ping(ctx context.Context) error { return nil }

// Close is a no-op for the mock.
func (m *MockStore) Close() error { return nil }
