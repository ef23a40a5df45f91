package qualification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"onboard/internal/onboarding/models"
)

type QualificationStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *QualificationStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestQualificationStoreSuite(t *testing.T) {
	suite.Run(t, new(QualificationStoreSuite))
}

func answer(question, value string) models.QualificationAnswer {
	return models.QualificationAnswer{QuestionKey: question, Answer: value}
}

// TestUpsert verifies one answer per question with last-write-wins.
func (s *QualificationStoreSuite) TestUpsert() {
	s.Run("stores and reads back answers", func() {
		err := s.store.UpsertAnswers(s.ctx, "subject-1", []models.QualificationAnswer{
			answer(models.QuestionActiveCustomers, "11-50"),
			answer(models.QuestionBusinessDuration, "2-5y"),
		})
		s.Require().NoError(err)

		stored, err := s.store.FindBySubject(s.ctx, "subject-1")
		s.Require().NoError(err)
		s.Len(stored, 2)
		s.Equal("11-50", models.AnswerMap(stored)[models.QuestionActiveCustomers])
	})

	s.Run("last write wins per question", func() {
		s.Require().NoError(s.store.UpsertAnswers(s.ctx, "subject-2",
			[]models.QualificationAnswer{answer(models.QuestionWorkingCapital, "low")}))
		s.Require().NoError(s.store.UpsertAnswers(s.ctx, "subject-2",
			[]models.QualificationAnswer{answer(models.QuestionWorkingCapital, "high")}))

		stored, err := s.store.FindBySubject(s.ctx, "subject-2")
		s.Require().NoError(err)
		s.Require().Len(stored, 1)
		s.Equal("high", stored[0].Answer)
	})

	s.Run("unknown subject reads empty", func() {
		stored, err := s.store.FindBySubject(s.ctx, "nobody")
		s.Require().NoError(err)
		s.Empty(stored)
	})
}

// TestRekey verifies answers are re-owned, never duplicated.
func (s *QualificationStoreSuite) TestRekey() {
	s.Require().NoError(s.store.UpsertAnswers(s.ctx, "identity-1", []models.QualificationAnswer{
		answer(models.QuestionBusinessType, "retail,services"),
		answer(models.QuestionFinancialOperations, "daily"),
	}))

	s.Require().NoError(s.store.RekeySubject(s.ctx, "identity-1", "account-1"))

	old, err := s.store.FindBySubject(s.ctx, "identity-1")
	s.Require().NoError(err)
	s.Empty(old, "old subject should hold nothing after rekey")

	moved, err := s.store.FindBySubject(s.ctx, "account-1")
	s.Require().NoError(err)
	s.Len(moved, 2)
	for _, a := range moved {
		s.Equal("account-1", a.SubjectID)
	}

	s.Run("rekey of an unknown subject is a no-op", func() {
		s.Require().NoError(s.store.RekeySubject(s.ctx, "ghost", "account-1"))
	})
}
