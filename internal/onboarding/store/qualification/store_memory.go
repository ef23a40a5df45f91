// Package qualification persists business-qualification answers keyed by
// subject and question, with last-write-wins upsert semantics.
package qualification

import (
	"context"
	"sync"

	"onboard/internal/onboarding/models"
)

// InMemory keeps answers per subject behind a mutex.
type InMemory struct {
	mu sync.RWMutex
	// answers[subjectID][questionKey]
	answers map[string]map[string]models.QualificationAnswer
}

func NewInMemory() *InMemory {
	return &InMemory{answers: make(map[string]map[string]models.QualificationAnswer)}
}

func (s *InMemory) UpsertAnswers(_ context.Context, subjectID string, answers []models.QualificationAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bySubject := s.answers[subjectID]
	if bySubject == nil {
		bySubject = make(map[string]models.QualificationAnswer)
		s.answers[subjectID] = bySubject
	}
	for _, answer := range answers {
		answer.SubjectID = subjectID
		bySubject[answer.QuestionKey] = answer
	}
	return nil
}

func (s *InMemory) FindBySubject(_ context.Context, subjectID string) ([]models.QualificationAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bySubject := s.answers[subjectID]
	out := make([]models.QualificationAnswer, 0, len(bySubject))
	for _, answer := range bySubject {
		out = append(out, answer)
	}
	return out, nil
}

// RekeySubject re-owns every answer from oldID to newID. Answers already held
// by newID win over re-keyed ones with the same question.
func (s *InMemory) RekeySubject(_ context.Context, oldID, newID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved := s.answers[oldID]
	if len(moved) == 0 {
		return nil
	}
	target := s.answers[newID]
	if target == nil {
		target = make(map[string]models.QualificationAnswer)
		s.answers[newID] = target
	}
	for key, answer := range moved {
		if _, exists := target[key]; exists {
			continue
		}
		answer.SubjectID = newID
		target[key] = answer
	}
	delete(s.answers, oldID)
	return nil
}
