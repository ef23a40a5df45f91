package credential

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"onboard/internal/account/models"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
)

type CredentialStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *CredentialStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestCredentialStoreSuite(t *testing.T) {
	suite.Run(t, new(CredentialStoreSuite))
}

func (s *CredentialStoreSuite) newCredential(email string) *models.Credential {
	now := time.Now()
	return &models.Credential{
		ID:              id.NewCredentialID(),
		Email:           email,
		PasswordHash:    "$2a$10$fakehash",
		Role:            models.RoleOwner,
		IsActive:        true,
		EmailVerifiedAt: &now,
		CreatedAt:       now,
	}
}

// TestCreateAndFind verifies creation and the case-insensitive email index.
func (s *CredentialStoreSuite) TestCreateAndFind() {
	s.Run("creates and finds by email", func() {
		credential := s.newCredential("login@example.com")
		s.Require().NoError(s.store.Create(s.ctx, credential))

		found, err := s.store.FindByEmail(s.ctx, "LOGIN@example.com")
		s.Require().NoError(err)
		s.Equal(credential.ID, found.ID)
		s.Equal(models.RoleOwner, found.Role)
		s.NotNil(found.EmailVerifiedAt)
	})

	s.Run("returns ErrNotFound for unknown email", func() {
		_, err := s.store.FindByEmail(s.ctx, "nobody@example.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestEmailUniqueness verifies the single-finalize guard.
func (s *CredentialStoreSuite) TestEmailUniqueness() {
	s.Require().NoError(s.store.Create(s.ctx, s.newCredential("taken@example.com")))

	err := s.store.Create(s.ctx, s.newCredential("TAKEN@example.com"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}
