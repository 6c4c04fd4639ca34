package storage

import (
	"github.com/eddiefleurent/chain_scout/internal/drafts"
	"github.com/eddiefleurent/chain_scout/internal/models"
)

// Interface defines the contract for holding and draft-session persistence.
//
// Implementations must be safe for concurrent use - callers can assume all
// methods are goroutine-safe and can safely call them from multiple
// goroutines.
//
// The provided JSONStorage implementation uses sync.RWMutex to serialize
// access, ensuring all Interface methods are protected for concurrent
// readers and writers.
type Interface interface {
	// Approved holdings
	GetHoldings() []models.Holding
	ReplaceHoldings(holdings []models.Holding) error
	AddHolding(h models.Holding) error
	RemoveHolding(id string) error

	// Draft review sessions
	GetDraftSession(sessionID string) (map[string]drafts.Row, bool)
	SaveDraftSession(sessionID string, rows map[string]drafts.Row) error
	DeleteDraftSession(sessionID string) error
	ListDraftSessions() []string

	// Data persistence
	Save() error
	Load() error
}

// NewStorage creates a new storage implementation (currently JSON-based).
// In the future, this can be extended to support different storage backends.
func NewStorage(filepath string) (Interface, error) {
	return NewJSONStorage(filepath)
}

// Ensure JSONStorage implements Interface
var _ Interface = (*JSONStorage)(nil)
