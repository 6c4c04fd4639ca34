package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/eddiefleurent/chain_scout/internal/drafts"
	"github.com/eddiefleurent/chain_scout/internal/models"
)

// JSONStorage persists holdings and draft sessions to a single JSON file.
type JSONStorage struct {
	mu       sync.RWMutex
	filepath string
	data     *storageData
}

type storageData struct {
	Holdings      []models.Holding                 `json:"holdings"`
	DraftSessions map[string]map[string]drafts.Row `json:"draft_sessions"`
	LastUpdated   time.Time                        `json:"last_updated"`
}

// NewJSONStorage opens (or initializes) the storage file at the given path.
func NewJSONStorage(path string) (*JSONStorage, error) {
	s := &JSONStorage{
		filepath: path,
		data: &storageData{
			DraftSessions: make(map[string]map[string]drafts.Row),
		},
	}

	// Load existing data if file exists
	if _, err := os.Stat(path); err == nil {
		if err := s.Load(); err != nil {
			return nil, fmt.Errorf("loading storage: %w", err)
		}
	}

	return s, nil
}

// Load reads the storage file into memory, replacing current state.
func (s *JSONStorage) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filepath)
	if err != nil {
		return err
	}

	loaded := &storageData{}
	if err := json.Unmarshal(data, loaded); err != nil {
		return err
	}
	if loaded.DraftSessions == nil {
		loaded.DraftSessions = make(map[string]map[string]drafts.Row)
	}
	s.data = loaded
	return nil
}

// Save writes current state to disk via a temp file and atomic rename.
func (s *JSONStorage) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *JSONStorage) saveLocked() error {
	s.data.LastUpdated = time.Now()

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.filepath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	// Write to temp file first
	tmpFile := s.filepath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return err
	}

	// Atomic rename
	return os.Rename(tmpFile, s.filepath)
}

// GetHoldings returns a copy of the approved holdings.
func (s *JSONStorage) GetHoldings() []models.Holding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Holding, len(s.data.Holdings))
	copy(out, s.data.Holdings)
	return out
}

// ReplaceHoldings swaps the full holdings set, validating every entry first.
func (s *JSONStorage) ReplaceHoldings(holdings []models.Holding) error {
	for i := range holdings {
		if err := holdings[i].Validate(); err != nil {
			return fmt.Errorf("holding %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Holdings = make([]models.Holding, len(holdings))
	copy(s.data.Holdings, holdings)
	return s.saveLocked()
}

// AddHolding appends one validated holding.
func (s *JSONStorage) AddHolding(h models.Holding) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if h.AddedAt.IsZero() {
		h.AddedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Holdings = append(s.data.Holdings, h)
	return s.saveLocked()
}

// RemoveHolding deletes the holding with the given id.
func (s *JSONStorage) RemoveHolding(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.Holdings {
		if s.data.Holdings[i].ID == id {
			s.data.Holdings = append(s.data.Holdings[:i], s.data.Holdings[i+1:]...)
			return s.saveLocked()
		}
	}
	return ErrHoldingNotFound
}

// GetDraftSession returns a copy of one session's reconciled rows.
func (s *JSONStorage) GetDraftSession(sessionID string) (map[string]drafts.Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, ok := s.data.DraftSessions[sessionID]
	if !ok {
		return nil, false
	}
	out := make(map[string]drafts.Row, len(rows))
	for k, v := range rows {
		out[k] = v
	}
	return out, true
}

// SaveDraftSession stores (or replaces) one session's reconciled rows.
func (s *JSONStorage) SaveDraftSession(sessionID string, rows map[string]drafts.Row) error {
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}

	stored := make(map[string]drafts.Row, len(rows))
	for k, v := range rows {
		stored[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.DraftSessions[sessionID] = stored
	return s.saveLocked()
}

// DeleteDraftSession removes a session once its rows are approved or discarded.
func (s *JSONStorage) DeleteDraftSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.DraftSessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.data.DraftSessions, sessionID)
	return s.saveLocked()
}

// ListDraftSessions returns session ids in sorted order.
func (s *JSONStorage) ListDraftSessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data.DraftSessions))
	for id := range s.data.DraftSessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
