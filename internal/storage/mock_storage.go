package storage

import (
	"sort"

	"github.com/eddiefleurent/chain_scout/internal/drafts"
	"github.com/eddiefleurent/chain_scout/internal/models"
)

// MockStorage implements Interface for testing
type MockStorage struct {
	saveError     error
	loadError     error
	holdings      []models.Holding
	sessions      map[string]map[string]drafts.Row
	saveCallCount int
	loadCallCount int
}

// NewMockStorage creates a new mock storage for testing
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[string]map[string]drafts.Row),
	}
}

// Holdings methods
func (m *MockStorage) GetHoldings() []models.Holding {
	out := make([]models.Holding, len(m.holdings))
	copy(out, m.holdings)
	return out
}

func (m *MockStorage) ReplaceHoldings(holdings []models.Holding) error {
	m.holdings = make([]models.Holding, len(holdings))
	copy(m.holdings, holdings)
	return m.saveError
}

func (m *MockStorage) AddHolding(h models.Holding) error {
	if err := h.Validate(); err != nil {
		return err
	}
	m.holdings = append(m.holdings, h)
	return m.saveError
}

func (m *MockStorage) RemoveHolding(id string) error {
	for i := range m.holdings {
		if m.holdings[i].ID == id {
			m.holdings = append(m.holdings[:i], m.holdings[i+1:]...)
			return m.saveError
		}
	}
	return ErrHoldingNotFound
}

// Draft session methods
func (m *MockStorage) GetDraftSession(sessionID string) (map[string]drafts.Row, bool) {
	rows, ok := m.sessions[sessionID]
	if !ok {
		return nil, false
	}
	out := make(map[string]drafts.Row, len(rows))
	for k, v := range rows {
		out[k] = v
	}
	return out, true
}

func (m *MockStorage) SaveDraftSession(sessionID string, rows map[string]drafts.Row) error {
	stored := make(map[string]drafts.Row, len(rows))
	for k, v := range rows {
		stored[k] = v
	}
	m.sessions[sessionID] = stored
	return m.saveError
}

func (m *MockStorage) DeleteDraftSession(sessionID string) error {
	if _, ok := m.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, sessionID)
	return m.saveError
}

func (m *MockStorage) ListDraftSessions() []string {
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Data persistence methods (mocked)
func (m *MockStorage) Save() error {
	m.saveCallCount++
	return m.saveError
}

func (m *MockStorage) Load() error {
	m.loadCallCount++
	return m.loadError
}

// Mock control methods for testing
func (m *MockStorage) SetSaveError(err error) {
	m.saveError = err
}

func (m *MockStorage) SetLoadError(err error) {
	m.loadError = err
}

func (m *MockStorage) GetSaveCallCount() int {
	return m.saveCallCount
}

func (m *MockStorage) GetLoadCallCount() int {
	return m.loadCallCount
}

// Ensure MockStorage implements Interface
var _ Interface = (*MockStorage)(nil)
