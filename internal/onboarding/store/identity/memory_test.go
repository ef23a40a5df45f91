package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
)

type IdentityStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *IdentityStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestIdentityStoreSuite(t *testing.T) {
	suite.Run(t, new(IdentityStoreSuite))
}

func (s *IdentityStoreSuite) newIdentity(email string) *models.Identity {
	now := time.Now()
	return &models.Identity{
		ID:        id.NewIdentityID(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TestCreationAndLookups verifies create and the email index.
func (s *IdentityStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds identity by email", func() {
		identity := s.newIdentity("owner@example.com")
		s.Require().NoError(s.store.Create(s.ctx, identity))

		found, err := s.store.FindByEmail(s.ctx, "owner@example.com")
		s.Require().NoError(err)
		s.Equal(identity.ID, found.ID)
	})

	s.Run("email lookup is case-insensitive", func() {
		identity := s.newIdentity("mixed@example.com")
		s.Require().NoError(s.store.Create(s.ctx, identity))

		found, err := s.store.FindByEmail(s.ctx, "MIXED@Example.COM")
		s.Require().NoError(err)
		s.Equal(identity.ID, found.ID)
	})

	s.Run("returns ErrNotFound for unknown email", func() {
		_, err := s.store.FindByEmail(s.ctx, "nobody@example.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestEmailUniqueness verifies the create-time conflict on a taken email.
func (s *IdentityStoreSuite) TestEmailUniqueness() {
	first := s.newIdentity("taken@example.com")
	s.Require().NoError(s.store.Create(s.ctx, first))

	second := s.newIdentity("TAKEN@example.com")
	err := s.store.Create(s.ctx, second)
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

// TestDocumentLookups verifies the per-country document index and the raw
// country-less lookup.
func (s *IdentityStoreSuite) TestDocumentLookups() {
	brazilian := s.newIdentity("br@example.com")
	brazilian.Document = "52998224725"
	brazilian.DocumentType = "cpf"
	brazilian.DocumentCountryCode = "BR"
	s.Require().NoError(s.store.Create(s.ctx, brazilian))

	s.Run("finds by country and document", func() {
		found, err := s.store.FindByDocument(s.ctx, "BR", "52998224725")
		s.Require().NoError(err)
		s.Equal(brazilian.ID, found.ID)
	})

	s.Run("same raw number under another country is distinct", func() {
		_, err := s.store.FindByDocument(s.ctx, "US", "52998224725")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("raw lookup ignores country", func() {
		found, err := s.store.FindAnyByDocument(s.ctx, "52998224725")
		s.Require().NoError(err)
		s.Equal(brazilian.ID, found.ID)
	})

	s.Run("empty document never matches", func() {
		_, err := s.store.FindAnyByDocument(s.ctx, "")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestUpdate verifies field mutation and the missing-row error.
func (s *IdentityStoreSuite) TestUpdate() {
	s.Run("persists changed fields", func() {
		identity := s.newIdentity("update@example.com")
		s.Require().NoError(s.store.Create(s.ctx, identity))

		identity.Name = "Ada Lovelace"
		identity.PendingSecrets.Password = "placeholder"
		s.Require().NoError(s.store.Update(s.ctx, identity))

		found, err := s.store.FindByEmail(s.ctx, "update@example.com")
		s.Require().NoError(err)
		s.Equal("Ada Lovelace", found.Name)
		s.Equal("placeholder", found.PendingSecrets.Password)
	})

	s.Run("returns ErrNotFound for unknown identity", func() {
		err := s.store.Update(s.ctx, s.newIdentity("ghost@example.com"))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestIsolation verifies reads never alias the stored record.
func (s *IdentityStoreSuite) TestIsolation() {
	identity := s.newIdentity("alias@example.com")
	s.Require().NoError(s.store.Create(s.ctx, identity))

	found, err := s.store.FindByEmail(s.ctx, "alias@example.com")
	s.Require().NoError(err)
	found.Name = "mutated"

	again, err := s.store.FindByEmail(s.ctx, "alias@example.com")
	s.Require().NoError(err)
	s.Empty(again.Name)
}
