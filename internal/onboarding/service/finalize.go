package service

import (
	"context"
	"errors"
	"time"

	accountmodels "onboard/internal/account/models"
	"onboard/internal/account/secrets"
	"onboard/internal/document"
	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/audit"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/requestcontext"
)

// Submit finalizes an in-progress identity into an Account + Credential pair.
//
// Preconditions run in a fixed order and the first failure wins: required
// fields, password strength, identity existence, channel verification,
// document validity and uniqueness, credential-email uniqueness. Creation and
// linking then commit as one store transaction; the credential store's unique
// email constraint is the authoritative guard against a concurrent duplicate
// finalize.
func (s *Service) Submit(ctx context.Context, sub models.FinalizeSubmission) (*models.FinalizeResult, error) {
	ctx, span := s.tracer.Start(ctx, "onboarding.Submit")
	defer span.End()
	start := time.Now()

	sub.Normalize()

	if err := requireFields(&sub); err != nil {
		return nil, err
	}
	if err := CheckPasswordStrength(sub.Password); err != nil {
		return nil, err
	}

	identity, err := s.identities.FindByEmail(ctx, sub.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no onboarding in progress for this email")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve identity")
	}

	status, err := s.verifier.Status(ctx, identity.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read verification status")
	}
	if !status.EmailVerified {
		return nil, dErrors.New(dErrors.CodeEmailNotVerified, "email address is not verified")
	}
	if !status.PhoneVerified {
		return nil, dErrors.New(dErrors.CodePhoneNotVerified, "phone number is not verified")
	}

	if err := s.checkDocument(ctx, identity, &sub); err != nil {
		return nil, err
	}

	if _, err := s.credentials.FindByEmail(ctx, sub.Email); err == nil {
		return nil, dErrors.New(dErrors.CodeEmailAlreadyExists, "email already owns a credential")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check credential email")
	}

	hash, err := secrets.Hash(sub.Password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	credential := &accountmodels.Credential{
		ID:              id.NewCredentialID(),
		Email:           sub.Email,
		PasswordHash:    hash,
		Role:            accountmodels.RoleOwner,
		IsActive:        true,
		EmailVerifiedAt: &now,
		CreatedAt:       now,
	}
	account := buildAccount(identity, &sub, credential.ID, now)

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.credentials.Create(ctx, credential); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeEmailAlreadyExists, "email already owns a credential")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create credential")
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
		}

		linked := account.ID
		identity.LinkedAccountID = &linked
		identity.PendingSecrets = models.PendingSecrets{}
		if sub.PostalAddress != nil {
			addr := *sub.PostalAddress
			identity.PostalAddress = &addr
		}
		identity.UpdatedAt = now
		if err := s.identities.Update(ctx, identity); err != nil {
			// The only uniqueness the link write can newly violate is the
			// per-country document index: a concurrent finalize claimed the
			// document between checkDocument and this commit.
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeDocumentAlreadyExists, "document is already registered").
					WithDetail("documentType", identity.DocumentType).
					WithDetail("documentCountryCode", identity.DocumentCountryCode)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to link identity")
		}

		if err := s.qualifications.RekeySubject(ctx, identity.ID.String(), account.ID.String()); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to re-key qualification answers")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(ctx, credential.ID, account.ID, credential.Role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session tokens")
	}

	s.metrics.IncrementFinalizations()
	s.metrics.ObserveFinalize(start)
	s.emitAudit(ctx, audit.Event{
		Timestamp: now,
		Action:    audit.ActionOnboardingFinalized,
		Subject:   account.ID.String(),
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
	})
	s.logger.InfoContext(ctx, "onboarding finalized",
		"identity_id", identity.ID, "account_id", account.ID)

	return &models.FinalizeResult{
		AccountID:    account.ID,
		CredentialID: credential.ID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Message:      "registration completed",
	}, nil
}

// requireFields collects every missing finalize-mandatory field before
// failing, so the caller sees the full list at once.
func requireFields(sub *models.FinalizeSubmission) error {
	var missing []string
	if sub.Email == "" {
		missing = append(missing, "email")
	}
	if sub.Password == "" {
		missing = append(missing, "password")
	}
	if sub.Name == "" {
		missing = append(missing, "name")
	}
	if len(sub.BusinessOptions) == 0 {
		missing = append(missing, "businessOptions")
	}
	if !sub.TermsAccepted {
		missing = append(missing, "termsAccepted")
	}
	if !sub.PrivacyAccepted {
		missing = append(missing, "privacyAccepted")
	}
	if len(missing) == 0 {
		return nil
	}
	return dErrors.New(dErrors.CodeMissingRequiredFields, "required fields are missing").
		WithDetail("fields", missing)
}

// checkDocument resolves the effective document triple (submission overrides
// the stored identity values), validates it and enforces per-country
// uniqueness. A passing document is persisted back normalized.
func (s *Service) checkDocument(ctx context.Context, identity *models.Identity, sub *models.FinalizeSubmission) error {
	doc := sub.Document
	docType := sub.DocumentType
	country := sub.DocumentCountryCode
	if doc == "" && docType == "" && country == "" {
		doc, docType, country = identity.Document, identity.DocumentType, identity.DocumentCountryCode
	}

	if doc == "" && docType == "" && country == "" {
		return nil
	}
	if doc == "" || docType == "" || country == "" {
		return dErrors.New(dErrors.CodeInvalidDocument, "document, documentType and documentCountryCode must be provided together").
			WithDetail("documentType", docType).
			WithDetail("documentCountryCode", country)
	}

	if !document.Validate(doc, docType, country) {
		return dErrors.New(dErrors.CodeInvalidDocument, "document failed validation").
			WithDetail("documentType", docType).
			WithDetail("documentCountryCode", country)
	}

	normalized := document.Normalize(doc)
	other, err := s.identities.FindByDocument(ctx, country, normalized)
	if err == nil && other.ID != identity.ID {
		return dErrors.New(dErrors.CodeDocumentAlreadyExists, "document is already registered").
			WithDetail("documentType", docType).
			WithDetail("documentCountryCode", country)
	}
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check document uniqueness")
	}

	identity.Document = normalized
	identity.DocumentType = docType
	identity.DocumentCountryCode = country
	return nil
}

// buildAccount copies the account fields, defaulting to the identity's stored
// values when the finalize payload carries no override.
func buildAccount(identity *models.Identity, sub *models.FinalizeSubmission, owner id.CredentialID, now time.Time) *accountmodels.Account {
	pick := func(override, stored string) string {
		if override != "" {
			return override
		}
		return stored
	}
	return &accountmodels.Account{
		ID:                  id.NewAccountID(),
		OwnerCredentialID:   owner,
		Name:                pick(sub.Name, identity.Name),
		Email:               identity.Email,
		PhoneNumber:         pick(sub.PhoneNumber, identity.PhoneNumber),
		Document:            identity.Document,
		DocumentType:        identity.DocumentType,
		DocumentCountryCode: identity.DocumentCountryCode,
		PlanID:              pick(sub.SelectedPlanID, identity.SelectedPlanID),
		CreatedAt:           now,
	}
}
