//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks IdentityStore,VerificationGateway,QualificationRecorder,CredentialStore,AccountStore,TokenIssuer,AuditPublisher

// Package service holds the onboarding orchestration: progressive saves,
// finalization and the read-only progress projection. Writes flow
// submission -> orchestrator -> store; reads flow store -> resolver -> caller.
package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	accountmodels "onboard/internal/account/models"
	"onboard/internal/onboarding/metrics"
	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/audit"
)

// IdentityStore owns lookup, creation and mutation of the evolving identity
// record. Uniqueness violations surface as sentinel.ErrConflict.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	FindByDocument(ctx context.Context, countryCode, document string) (*models.Identity, error)
	// FindAnyByDocument looks an identity up by document value alone. It
	// serves the legacy progress lookup path where callers pass a raw
	// document string without a country.
	FindAnyByDocument(ctx context.Context, document string) (*models.Identity, error)
	Create(ctx context.Context, identity *models.Identity) error
	Update(ctx context.Context, identity *models.Identity) error
}

// VerificationGateway sends and checks one-time codes for the email and phone
// channels. Sends are idempotent within the gateway's resend window.
type VerificationGateway interface {
	SendEmailCode(ctx context.Context, identityID id.IdentityID, email string) error
	VerifyEmailCode(ctx context.Context, identityID id.IdentityID, code string) error
	SendPhoneCode(ctx context.Context, identityID id.IdentityID, phone string) error
	VerifyPhoneCode(ctx context.Context, identityID id.IdentityID, code string) error
	Status(ctx context.Context, identityID id.IdentityID) (models.VerificationStatus, error)
}

// QualificationRecorder durably stores business-qualification answers keyed
// by question, linkable to the identity and later to the finalized account.
type QualificationRecorder interface {
	UpsertAnswers(ctx context.Context, subjectID string, answers []models.QualificationAnswer) error
	FindBySubject(ctx context.Context, subjectID string) ([]models.QualificationAnswer, error)
	RekeySubject(ctx context.Context, oldID, newID string) error
}

// CredentialStore persists login credentials. Create must be backed by a
// store-level unique constraint on email: it is the authoritative guard for
// "at most one successful finalize per email".
type CredentialStore interface {
	Create(ctx context.Context, credential *accountmodels.Credential) error
	FindByEmail(ctx context.Context, email string) (*accountmodels.Credential, error)
}

// AccountStore persists finalized accounts.
type AccountStore interface {
	Create(ctx context.Context, account *accountmodels.Account) error
}

// TokenIssuer mints the session token pair bound to the new credential and
// account. Tokens are opaque strings to this engine.
type TokenIssuer interface {
	Issue(ctx context.Context, credentialID id.CredentialID, accountID id.AccountID, role accountmodels.Role) (models.TokenPair, error)
}

// AuditPublisher records onboarding lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// StoreTx runs fn within a single store transaction when the backing store
// supports one. The in-memory fallback runs fn directly; observable behavior
// only differs under crash mid-finalize.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type noopTx struct{}

func (noopTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Service orchestrates the onboarding flow over its collaborators.
type Service struct {
	identities     IdentityStore
	verifier       VerificationGateway
	qualifications QualificationRecorder
	credentials    CredentialStore
	accounts       AccountStore
	tokens         TokenIssuer
	tx             StoreTx
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	tracer         trace.Tracer
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

// WithTx supplies a store transaction runner so finalization commits
// atomically on SQL-backed stores.
func WithTx(tx StoreTx) Option {
	return func(s *Service) { s.tx = tx }
}

// New constructs the onboarding service.
func New(
	identities IdentityStore,
	verifier VerificationGateway,
	qualifications QualificationRecorder,
	credentials CredentialStore,
	accounts AccountStore,
	tokens TokenIssuer,
	opts ...Option,
) *Service {
	s := &Service{
		identities:     identities,
		verifier:       verifier,
		qualifications: qualifications,
		credentials:    credentials,
		accounts:       accounts,
		tokens:         tokens,
		tx:             noopTx{},
		tracer:         otel.Tracer("onboard/onboarding"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}
