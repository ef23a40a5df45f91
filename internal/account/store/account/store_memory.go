// Package account persists finalized business accounts.
package account

import (
	"context"
	"sync"

	"onboard/internal/account/models"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
)

// InMemory keeps accounts behind a mutex.
type InMemory struct {
	mu   sync.RWMutex
	byID map[id.AccountID]*models.Account
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[id.AccountID]*models.Account)}
}

func (s *InMemory) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[account.ID]; exists {
		return sentinel.ErrConflict
	}
	stored := *account
	s.byID[account.ID] = &stored
	return nil
}

func (s *InMemory) FindByID(_ context.Context, accountID id.AccountID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.byID[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	stored := *account
	return &stored, nil
}
