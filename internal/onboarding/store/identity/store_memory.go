// Package identity persists the evolving onboarding identity record, indexed
// by email and by the per-country document pair.
package identity

import (
	"context"
	"strings"
	"sync"

	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
)

// InMemory keeps identities behind a mutex. Used in tests and local runs.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[id.IdentityID]*models.Identity
	byEmail map[string]id.IdentityID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[id.IdentityID]*models.Identity),
		byEmail: make(map[string]id.IdentityID),
	}
}

func (s *InMemory) Create(_ context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(identity.Email)
	if _, exists := s.byEmail[email]; exists {
		return sentinel.ErrConflict
	}
	s.byID[identity.ID] = identity.Clone()
	s.byEmail[email] = identity.ID
	return nil
}

func (s *InMemory) Update(_ context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byID[identity.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !strings.EqualFold(stored.Email, identity.Email) {
		delete(s.byEmail, strings.ToLower(stored.Email))
		s.byEmail[strings.ToLower(identity.Email)] = identity.ID
	}
	s.byID[identity.ID] = identity.Clone()
	return nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identityID, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.byID[identityID].Clone(), nil
}

func (s *InMemory) FindByDocument(_ context.Context, countryCode, document string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, identity := range s.byID {
		if identity.Document == document && strings.EqualFold(identity.DocumentCountryCode, countryCode) {
			return identity.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindAnyByDocument(_ context.Context, document string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, identity := range s.byID {
		if identity.Document == document && identity.Document != "" {
			return identity.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}
