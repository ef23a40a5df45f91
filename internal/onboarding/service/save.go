package service

import (
	"context"
	"errors"
	"time"

	"github.com/asaskevich/govalidator"
	"golang.org/x/sync/errgroup"

	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/audit"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/requestcontext"
)

// Save merges one partial submission into the identity resolved by email,
// triggers verification sends, records qualification answers and derives the
// current step.
//
// The save path never rejects a user's progress: documents are stored
// unvalidated (only finalize validates), and a rejected verification code
// aborts the call only after field writes have committed.
func (s *Service) Save(ctx context.Context, sub models.SaveSubmission) (*models.SaveResult, error) {
	ctx, span := s.tracer.Start(ctx, "onboarding.Save")
	defer span.End()
	start := time.Now()

	sub.Normalize()
	if sub.Email == "" || !govalidator.IsEmail(sub.Email) {
		return nil, dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}

	identity, created, err := s.resolveIdentity(ctx, sub.Email)
	if err != nil {
		return nil, err
	}

	answers, err := s.loadAnswers(ctx, identity)
	if err != nil {
		return nil, err
	}

	savedFields, phoneChanged := applySubmission(identity, &sub)

	// Persist field writes before anything that can fail: partial failure of
	// verification below must not roll back applied writes.
	if created {
		if err := s.createIdentity(ctx, identity); err != nil {
			return nil, err
		}
	} else if len(savedFields) > 0 {
		identity.UpdatedAt = requestcontext.Now(ctx)
		if err := s.identities.Update(ctx, identity); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update identity")
		}
	}

	s.sendVerifications(ctx, identity, phoneChanged)

	codeSaved, err := s.verifyCodes(ctx, identity, &sub)
	if err != nil {
		return nil, err
	}
	if codeSaved {
		identity.UpdatedAt = requestcontext.Now(ctx)
		if err := s.identities.Update(ctx, identity); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update identity")
		}
	}

	answerFields, err := s.recordAnswers(ctx, identity, &sub, answers)
	if err != nil {
		return nil, err
	}
	savedFields = append(savedFields, answerFields...)

	s.metrics.IncrementSaves()
	s.metrics.ObserveSave(start)

	return &models.SaveResult{
		IdentityID:  identity.ID,
		AccountID:   identity.LinkedAccountID,
		Step:        models.InferStep(identity, answers),
		Message:     "progress saved",
		SavedFields: savedFields,
	}, nil
}

func (s *Service) resolveIdentity(ctx context.Context, email string) (*models.Identity, bool, error) {
	identity, err := s.identities.FindByEmail(ctx, email)
	if err == nil {
		return identity, false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve identity")
	}

	// The email must also be free in the credential namespace: a finalized
	// account whose identity record was since removed still owns its email.
	if _, err := s.credentials.FindByEmail(ctx, email); err == nil {
		return nil, false, dErrors.New(dErrors.CodeEmailAlreadyExists, "email is already registered")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check credential email")
	}

	now := requestcontext.Now(ctx)
	return &models.Identity{
		ID:        id.NewIdentityID(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}, true, nil
}

func (s *Service) createIdentity(ctx context.Context, identity *models.Identity) error {
	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeEmailAlreadyExists, "email is already registered")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create identity")
	}

	s.metrics.IncrementIdentitiesCreated()
	s.emitAudit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionIdentityCreated,
		Subject:   identity.ID.String(),
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		Device:    requestcontext.DeviceInfo(ctx).Browser,
	})
	return nil
}

// applySubmission merges present-and-different submission fields into the
// identity, returning the saved field names and whether the phone changed.
// Finalized identities are immutable with respect to identity fields.
func applySubmission(identity *models.Identity, sub *models.SaveSubmission) (saved []string, phoneChanged bool) {
	if identity.IsFinalized() {
		return nil, false
	}

	setString := func(field string, target *string, value *string) {
		if value != nil && *value != *target {
			*target = *value
			saved = append(saved, field)
		}
	}

	setString("name", &identity.Name, sub.Name)
	setString("document", &identity.Document, sub.Document)
	setString("documentType", &identity.DocumentType, sub.DocumentType)
	setString("documentCountryCode", &identity.DocumentCountryCode, sub.DocumentCountryCode)
	setString("selectedPlanId", &identity.SelectedPlanID, sub.SelectedPlanID)

	if sub.PhoneNumber != nil && *sub.PhoneNumber != identity.PhoneNumber {
		identity.PhoneNumber = *sub.PhoneNumber
		saved = append(saved, "phoneNumber")
		phoneChanged = true
	}

	if sub.Password != nil && *sub.Password != identity.PendingSecrets.Password {
		identity.PendingSecrets.Password = *sub.Password
		saved = append(saved, "password")
	}

	if sub.PostalAddress != nil && (identity.PostalAddress == nil || *sub.PostalAddress != *identity.PostalAddress) {
		addr := *sub.PostalAddress
		identity.PostalAddress = &addr
		saved = append(saved, "postalAddress")
	}

	if sub.TermsAccepted != nil && *sub.TermsAccepted != identity.TermsAccepted {
		identity.TermsAccepted = *sub.TermsAccepted
		saved = append(saved, "termsAccepted")
	}
	if sub.PrivacyAccepted != nil && *sub.PrivacyAccepted != identity.PrivacyAccepted {
		identity.PrivacyAccepted = *sub.PrivacyAccepted
		saved = append(saved, "privacyAccepted")
	}

	return saved, phoneChanged
}

// sendVerifications fires the channel code sends. Delivery failures are not
// save-blocking; they are logged and counted only. Duplicate sends are
// deduplicated by the gateway.
func (s *Service) sendVerifications(ctx context.Context, identity *models.Identity, phoneChanged bool) {
	status, err := s.verifier.Status(ctx, identity.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "verification status unavailable", "identity_id", identity.ID, "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if phoneChanged && identity.PhoneNumber != "" {
		phone := identity.PhoneNumber
		g.Go(func() error {
			return s.verifier.SendPhoneCode(gctx, identity.ID, phone)
		})
	}

	if !status.EmailVerified {
		g.Go(func() error {
			return s.verifier.SendEmailCode(gctx, identity.ID, identity.Email)
		})
	}

	if err := g.Wait(); err != nil {
		s.metrics.IncrementVerificationSendErrs()
		s.logger.WarnContext(ctx, "verification send failed", "identity_id", identity.ID, "error", err)
	}
}

// verifyCodes forwards submitted codes to the gateway. A rejected code aborts
// the save; an accepted code is recorded in pending secrets as the resume
// marker for step inference.
func (s *Service) verifyCodes(ctx context.Context, identity *models.Identity, sub *models.SaveSubmission) (bool, error) {
	saved := false

	if sub.EmailCode != nil && *sub.EmailCode != "" {
		if err := s.verifier.VerifyEmailCode(ctx, identity.ID, *sub.EmailCode); err != nil {
			return false, verificationFailed(err, "email")
		}
		identity.PendingSecrets.EmailCode = *sub.EmailCode
		saved = true
		s.emitAudit(ctx, audit.Event{
			Timestamp: requestcontext.Now(ctx),
			Action:    audit.ActionVerificationCompleted,
			Subject:   identity.ID.String(),
			Channel:   "email",
			RequestID: requestcontext.RequestID(ctx),
		})
	}

	if sub.PhoneCode != nil && *sub.PhoneCode != "" {
		if err := s.verifier.VerifyPhoneCode(ctx, identity.ID, *sub.PhoneCode); err != nil {
			return saved, verificationFailed(err, "phone")
		}
		identity.PendingSecrets.PhoneCode = *sub.PhoneCode
		saved = true
		s.emitAudit(ctx, audit.Event{
			Timestamp: requestcontext.Now(ctx),
			Action:    audit.ActionVerificationCompleted,
			Subject:   identity.ID.String(),
			Channel:   "phone",
			RequestID: requestcontext.RequestID(ctx),
		})
	}

	return saved, nil
}

func verificationFailed(err error, channel string) error {
	if dErrors.HasCode(err, dErrors.CodeVerificationFailed) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeVerificationFailed, channel+" verification code rejected")
}

// answerSubject is the qualification owner: the identity before finalization,
// the linked account after.
func answerSubject(identity *models.Identity) string {
	if identity.IsFinalized() {
		return identity.LinkedAccountID.String()
	}
	return identity.ID.String()
}

func (s *Service) loadAnswers(ctx context.Context, identity *models.Identity) (map[string]string, error) {
	stored, err := s.qualifications.FindBySubject(ctx, answerSubject(identity))
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load qualification answers")
	}
	return models.AnswerMap(stored), nil
}

// recordAnswers upserts changed qualification answers and mutates the answer
// map in place so step inference sees this submission's values.
func (s *Service) recordAnswers(ctx context.Context, identity *models.Identity, sub *models.SaveSubmission, answers map[string]string) ([]string, error) {
	type metric struct {
		field    string
		question string
		value    *string
	}
	metrics := []metric{
		{"activeCustomers", models.QuestionActiveCustomers, sub.ActiveCustomers},
		{"financialOperations", models.QuestionFinancialOperations, sub.FinancialOperations},
		{"workingCapital", models.QuestionWorkingCapital, sub.WorkingCapital},
		{"businessDuration", models.QuestionBusinessDuration, sub.BusinessDuration},
	}

	var saved []string
	var changed []models.QualificationAnswer
	subject := answerSubject(identity)

	for _, m := range metrics {
		if m.value == nil || *m.value == answers[m.question] {
			continue
		}
		answers[m.question] = *m.value
		changed = append(changed, models.QualificationAnswer{
			SubjectID:   subject,
			QuestionKey: m.question,
			Answer:      *m.value,
		})
		saved = append(saved, m.field)
	}

	if sub.BusinessOptions != nil {
		joined := models.JoinBusinessOptions(sub.BusinessOptions)
		if joined != answers[models.QuestionBusinessType] {
			answers[models.QuestionBusinessType] = joined
			changed = append(changed, models.QualificationAnswer{
				SubjectID:   subject,
				QuestionKey: models.QuestionBusinessType,
				Answer:      joined,
			})
			saved = append(saved, "businessOptions")
		}
	}

	if len(changed) == 0 {
		return nil, nil
	}
	if err := s.qualifications.UpsertAnswers(ctx, subject, changed); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record qualification answers")
	}
	return saved, nil
}
