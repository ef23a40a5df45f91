package service

import (
	"context"
	"errors"
	"strings"

	"github.com/asaskevich/govalidator"
	"golang.org/x/sync/errgroup"

	"onboard/internal/document"
	"onboard/internal/onboarding/models"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/sentinel"
)

// Progress reconstructs a resume snapshot for the given identifier. An
// email-shaped identifier is resolved against the email index; anything else
// is treated as a raw document string for backward compatibility with older
// clients that bookmarked their document.
func (s *Service) Progress(ctx context.Context, identifier string) (*models.Progress, error) {
	ctx, span := s.tracer.Start(ctx, "onboarding.Progress")
	defer span.End()

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "an identifier is required")
	}

	byEmail := govalidator.IsEmail(identifier)

	var identity *models.Identity
	var err error
	if byEmail {
		identity, err = s.identities.FindByEmail(ctx, strings.ToLower(identifier))
	} else {
		identity, err = s.identities.FindAnyByDocument(ctx, document.Normalize(identifier))
	}
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return notStarted(identifier, byEmail), nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve identifier")
	}

	var (
		status  models.VerificationStatus
		answers map[string]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		st, err := s.verifier.Status(gctx, identity.ID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read verification status")
		}
		status = st
		return nil
	})
	g.Go(func() error {
		stored, err := s.qualifications.FindBySubject(gctx, answerSubject(identity))
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load qualification answers")
		}
		answers = models.AnswerMap(stored)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	progressStatus := models.ProgressInProgress
	if identity.IsFinalized() {
		progressStatus = models.ProgressCompleted
	}

	identityID := identity.ID
	return &models.Progress{
		IdentityID: &identityID,
		AccountID:  identity.LinkedAccountID,
		Status:     progressStatus,
		Step:       models.InferStep(identity, answers),
		Data: models.ProgressData{
			Email:               identity.Email,
			Name:                identity.Name,
			PhoneNumber:         identity.PhoneNumber,
			Document:            identity.Document,
			DocumentType:        identity.DocumentType,
			DocumentCountryCode: identity.DocumentCountryCode,
			PostalAddress:       identity.PostalAddress,
			EmailVerified:       status.EmailVerified,
			PhoneVerified:       status.PhoneVerified,
			BusinessOptions:     models.SplitBusinessOptions(answers[models.QuestionBusinessType]),
			Answers:             qualificationOnly(answers),
		},
	}, nil
}

// notStarted echoes the queried identifier back so the UI can pre-fill the
// first step's input.
func notStarted(identifier string, byEmail bool) *models.Progress {
	p := &models.Progress{
		Status: models.ProgressNotStarted,
		Step:   models.StepEmail,
	}
	if byEmail {
		p.Data.Email = strings.ToLower(identifier)
	} else {
		p.Step = models.StepDocument
		p.Data.Document = identifier
	}
	return p
}

// qualificationOnly drops the business-type key, which is surfaced as the
// parsed BusinessOptions list instead.
func qualificationOnly(answers map[string]string) map[string]string {
	out := make(map[string]string, len(answers))
	for k, v := range answers {
		if k == models.QuestionBusinessType {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
