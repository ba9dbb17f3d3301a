package session

import (
	"fmt"
	"sync"

	"github.com/graphkeep/graphkeep/internal/models"
	"github.com/graphkeep/graphkeep/internal/storage"
)

// Session holds the current bank context for an MCP session.
type Session struct {
	mu              sync.Mutex
	currentBankID   string
	currentBankName string
	graph           *storage.GraphStore
}

// New creates a new empty session with no active bank.
func New() *Session {
	return &Session{}
}

// SwitchBank makes the given bank the active one for subsequent knowledge
// operations.
func (s *Session) SwitchBank(meta *storage.MetaStore, name string) (*models.Bank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bank, err := meta.GetBankByName(name)
	if err != nil {
		return nil, err
	}
	if bank.Status == "archived" {
		return nil, fmt.Errorf("bank %q is archived, restore it first", name)
	}

	s.currentBankID = bank.ID
	s.currentBankName = bank.Name
	s.graph = storage.NewGraphStore(meta.BankGraphPath(bank))

	return bank, nil
}

// GetCurrent returns info about the current bank, or ok=false if none is
// active.
func (s *Session) GetCurrent() (id, name string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		return "", "", false
	}
	return s.currentBankID, s.currentBankName, true
}

// GraphStore returns the current bank's graph store, or nil if no bank is
// active.
func (s *Session) GraphStore() *storage.GraphStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph
}

// Clear resets session state so no bank is active.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentBankID = ""
	s.currentBankName = ""
	s.graph = nil
}
