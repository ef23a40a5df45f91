// Package verification implements the one-time-code gateway for the email and
// phone channels: code issuance with a resend window, code checks and the
// per-channel verified flags.
package verification

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/requestcontext"
)

// Channel names a verification channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

const codeDigits = 6

// CodeRecord is one issued code.
type CodeRecord struct {
	Code     string
	IssuedAt time.Time
}

// CodeStore holds issued codes and verified flags. Implementations expire
// codes after the configured TTL; expired reads surface sentinel.ErrExpired
// or sentinel.ErrNotFound.
type CodeStore interface {
	PutCode(ctx context.Context, identityID id.IdentityID, channel Channel, record CodeRecord, ttl time.Duration) error
	GetCode(ctx context.Context, identityID id.IdentityID, channel Channel) (CodeRecord, error)
	DeleteCode(ctx context.Context, identityID id.IdentityID, channel Channel) error
	MarkVerified(ctx context.Context, identityID id.IdentityID, channel Channel) error
	IsVerified(ctx context.Context, identityID id.IdentityID, channel Channel) (bool, error)
}

// Sender delivers a code to its destination. Delivery is an external concern;
// implementations range from a log line in development to an SMS/email
// provider in production.
type Sender interface {
	Send(ctx context.Context, channel Channel, destination, code string) error
}

// Service issues and checks verification codes.
type Service struct {
	store        CodeStore
	sender       Sender
	codeTTL      time.Duration
	resendWindow time.Duration
	logger       *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New constructs the gateway. resendWindow bounds how often a fresh code is
// issued for the same identity and channel; sends inside the window are
// deduplicated, which is what makes the save path's repeated email sends
// idempotent.
func New(store CodeStore, sender Sender, codeTTL, resendWindow time.Duration, opts ...Option) *Service {
	s := &Service{
		store:        store,
		sender:       sender,
		codeTTL:      codeTTL,
		resendWindow: resendWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *Service) SendEmailCode(ctx context.Context, identityID id.IdentityID, email string) error {
	return s.send(ctx, identityID, ChannelEmail, email)
}

func (s *Service) SendPhoneCode(ctx context.Context, identityID id.IdentityID, phone string) error {
	return s.send(ctx, identityID, ChannelPhone, phone)
}

func (s *Service) VerifyEmailCode(ctx context.Context, identityID id.IdentityID, code string) error {
	return s.verify(ctx, identityID, ChannelEmail, code)
}

func (s *Service) VerifyPhoneCode(ctx context.Context, identityID id.IdentityID, code string) error {
	return s.verify(ctx, identityID, ChannelPhone, code)
}

// Status reads the per-channel verified flags.
func (s *Service) Status(ctx context.Context, identityID id.IdentityID) (models.VerificationStatus, error) {
	email, err := s.store.IsVerified(ctx, identityID, ChannelEmail)
	if err != nil {
		return models.VerificationStatus{}, fmt.Errorf("read email verification flag: %w", err)
	}
	phone, err := s.store.IsVerified(ctx, identityID, ChannelPhone)
	if err != nil {
		return models.VerificationStatus{}, fmt.Errorf("read phone verification flag: %w", err)
	}
	return models.VerificationStatus{EmailVerified: email, PhoneVerified: phone}, nil
}

func (s *Service) send(ctx context.Context, identityID id.IdentityID, channel Channel, destination string) error {
	verified, err := s.store.IsVerified(ctx, identityID, channel)
	if err != nil {
		return fmt.Errorf("read %s verification flag: %w", channel, err)
	}
	if verified {
		return nil
	}

	now := requestcontext.Now(ctx)
	existing, err := s.store.GetCode(ctx, identityID, channel)
	switch {
	case err == nil:
		if now.Sub(existing.IssuedAt) < s.resendWindow {
			return nil
		}
	case errors.Is(err, sentinel.ErrNotFound), errors.Is(err, sentinel.ErrExpired):
	default:
		return fmt.Errorf("read %s code: %w", channel, err)
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate %s code: %w", channel, err)
	}
	record := CodeRecord{Code: code, IssuedAt: now}
	if err := s.store.PutCode(ctx, identityID, channel, record, s.codeTTL); err != nil {
		return fmt.Errorf("store %s code: %w", channel, err)
	}
	if err := s.sender.Send(ctx, channel, destination, code); err != nil {
		return fmt.Errorf("deliver %s code: %w", channel, err)
	}
	s.logger.DebugContext(ctx, "verification code sent",
		"identity_id", identityID, "channel", channel)
	return nil
}

func (s *Service) verify(ctx context.Context, identityID id.IdentityID, channel Channel, code string) error {
	record, err := s.store.GetCode(ctx, identityID, channel)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExpired) {
			return dErrors.New(dErrors.CodeVerificationFailed, "no active code for this channel")
		}
		return fmt.Errorf("read %s code: %w", channel, err)
	}
	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) != 1 {
		return dErrors.New(dErrors.CodeVerificationFailed, "verification code does not match")
	}
	if err := s.store.MarkVerified(ctx, identityID, channel); err != nil {
		return fmt.Errorf("mark %s verified: %w", channel, err)
	}
	if err := s.store.DeleteCode(ctx, identityID, channel); err != nil {
		s.logger.WarnContext(ctx, "failed to delete consumed code",
			"identity_id", identityID, "channel", channel, "error", err)
	}
	return nil
}

func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}
