// Package credential persists login credentials. The unique email constraint
// here is the authoritative guard for "at most one successful finalize per
// email".
package credential

import (
	"context"
	"strings"
	"sync"

	"onboard/internal/account/models"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
)

// InMemory keeps credentials behind a mutex.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[id.CredentialID]*models.Credential
	byEmail map[string]id.CredentialID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[id.CredentialID]*models.Credential),
		byEmail: make(map[string]id.CredentialID),
	}
}

func (s *InMemory) Create(_ context.Context, credential *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(credential.Email)
	if _, exists := s.byEmail[email]; exists {
		return sentinel.ErrConflict
	}
	stored := *credential
	if credential.EmailVerifiedAt != nil {
		at := *credential.EmailVerifiedAt
		stored.EmailVerifiedAt = &at
	}
	s.byID[credential.ID] = &stored
	s.byEmail[email] = credential.ID
	return nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	credentialID, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	stored := *s.byID[credentialID]
	if stored.EmailVerifiedAt != nil {
		at := *stored.EmailVerifiedAt
		stored.EmailVerifiedAt = &at
	}
	return &stored, nil
}
