//go:build integration

package identity_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"onboard/internal/onboarding/models"
	"onboard/internal/onboarding/store/identity"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *identity.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = identity.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "onboarding_identities")
	s.Require().NoError(err)
}

func newTestIdentity(email string) *models.Identity {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Identity{
		ID:        id.NewIdentityID(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TestRoundTrip verifies every persisted field survives a write and read.
func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()

	created := newTestIdentity("roundtrip@example.com")
	created.Name = "Grace Hopper"
	created.PhoneNumber = "+5511999990000"
	created.Document = "52998224725"
	created.DocumentType = "cpf"
	created.DocumentCountryCode = "BR"
	created.PostalAddress = &models.PostalAddress{
		Street:     "Avenida Paulista",
		Number:     "1000",
		City:       "Sao Paulo",
		State:      "SP",
		PostalCode: "01310-100",
		Country:    "BR",
	}
	created.TermsAccepted = true
	created.PrivacyAccepted = true
	created.SelectedPlanID = "plan-pro"
	created.PendingSecrets = models.PendingSecrets{
		Password:  "S3cret!pw",
		EmailCode: "123456",
		PhoneCode: "654321",
	}
	s.Require().NoError(s.store.Create(ctx, created))

	found, err := s.store.FindByEmail(ctx, "roundtrip@example.com")
	s.Require().NoError(err)
	s.Equal(created.ID, found.ID)
	s.Equal(created.Name, found.Name)
	s.Equal(created.Document, found.Document)
	s.Equal(created.PendingSecrets, found.PendingSecrets)
	s.Require().NotNil(found.PostalAddress)
	s.Equal(*created.PostalAddress, *found.PostalAddress)
	s.Nil(found.LinkedAccountID)
}

// TestConcurrentEmailUniqueness verifies the unique email index admits exactly
// one of many racing creates.
func (s *PostgresStoreSuite) TestConcurrentEmailUniqueness() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Create(ctx, newTestIdentity("race@example.com"))
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should conflict")
}

// TestDocumentUniquenessScopedByCountry verifies the partial unique index
// scopes collisions to the (country, document) pair.
func (s *PostgresStoreSuite) TestDocumentUniquenessScopedByCountry() {
	ctx := context.Background()

	brazilian := newTestIdentity("br@example.com")
	brazilian.Document = "52998224725"
	brazilian.DocumentType = "cpf"
	brazilian.DocumentCountryCode = "BR"
	s.Require().NoError(s.store.Create(ctx, brazilian))

	s.Run("same pair conflicts", func() {
		dup := newTestIdentity("dup@example.com")
		dup.Document = "52998224725"
		dup.DocumentType = "cpf"
		dup.DocumentCountryCode = "BR"
		s.Require().ErrorIs(s.store.Create(ctx, dup), sentinel.ErrConflict)
	})

	s.Run("same raw number under another country is accepted", func() {
		foreign := newTestIdentity("us@example.com")
		foreign.Document = "52998224725"
		foreign.DocumentType = "other"
		foreign.DocumentCountryCode = "US"
		s.Require().NoError(s.store.Create(ctx, foreign))
	})

	s.Run("identities without documents never collide", func() {
		s.Require().NoError(s.store.Create(ctx, newTestIdentity("blank1@example.com")))
		s.Require().NoError(s.store.Create(ctx, newTestIdentity("blank2@example.com")))
	})
}

// TestUpdateAndLinking verifies field updates and the one-time account link.
func (s *PostgresStoreSuite) TestUpdateAndLinking() {
	ctx := context.Background()

	created := newTestIdentity("link@example.com")
	s.Require().NoError(s.store.Create(ctx, created))

	accountID := id.NewAccountID()
	created.Name = "Linked User"
	created.LinkedAccountID = &accountID
	created.PendingSecrets = models.PendingSecrets{}
	created.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	s.Require().NoError(s.store.Update(ctx, created))

	found, err := s.store.FindByEmail(ctx, "link@example.com")
	s.Require().NoError(err)
	s.Equal("Linked User", found.Name)
	s.Require().NotNil(found.LinkedAccountID)
	s.Equal(accountID, *found.LinkedAccountID)
	s.True(found.PendingSecrets.IsZero())
}

// TestNotFound verifies the sentinel for missing rows.
func (s *PostgresStoreSuite) TestNotFound() {
	ctx := context.Background()

	_, err := s.store.FindByEmail(ctx, "missing@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByDocument(ctx, "BR", "00000000000")
	s.ErrorIs(err, sentinel.ErrNotFound)

	err = s.store.Update(ctx, newTestIdentity("ghost@example.com"))
	s.ErrorIs(err, sentinel.ErrNotFound)
}
