package service_test

import (
	"context"
	"sync"
	"time"

	accountstore "onboard/internal/account/store/account"
	credentialstore "onboard/internal/account/store/credential"
	"onboard/internal/jwttoken"
	"onboard/internal/onboarding/models"
	"onboard/internal/onboarding/service"
	identitystore "onboard/internal/onboarding/store/identity"
	qualificationstore "onboard/internal/onboarding/store/qualification"
	"onboard/internal/verification"
	auditmemory "onboard/pkg/platform/audit/store/memory"
	"onboard/pkg/platform/audit/publisher"
)

// codeSender captures issued codes so tests can play them back.
type codeSender struct {
	mu    sync.Mutex
	codes map[verification.Channel]string
}

func newCodeSender() *codeSender {
	return &codeSender{codes: make(map[verification.Channel]string)}
}

func (c *codeSender) Send(_ context.Context, channel verification.Channel, _ string, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[channel] = code
	return nil
}

func (c *codeSender) code(channel verification.Channel) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codes[channel]
}

// fixture wires the service over real in-memory collaborators.
type fixture struct {
	identities  *identitystore.InMemory
	answers     *qualificationstore.InMemory
	credentials *credentialstore.InMemory
	accounts    *accountstore.InMemory
	sender      *codeSender
	verifier    *verification.Service
	auditTrail  *auditmemory.InMemoryStore
	svc         *service.Service
}

func newFixture() *fixture {
	f := &fixture{
		identities:  identitystore.NewInMemory(),
		answers:     qualificationstore.NewInMemory(),
		credentials: credentialstore.NewInMemory(),
		accounts:    accountstore.NewInMemory(),
		sender:      newCodeSender(),
		auditTrail:  auditmemory.NewInMemoryStore(),
	}
	f.verifier = verification.New(verification.NewInMemoryStore(), f.sender, 10*time.Minute, time.Minute)
	tokens := jwttoken.NewJWTService("test-signing-key", "onboard-test", time.Hour, 24*time.Hour)
	f.svc = service.New(
		f.identities, f.verifier, f.answers, f.credentials, f.accounts, tokens,
		service.WithAuditPublisher(publisher.NewPublisher(f.auditTrail)),
	)
	return f
}

func str(s string) *string { return &s }

func boolp(b bool) *bool { return &b }

// verifyBothChannels completes email and phone verification for the identity
// behind the given email, issuing codes as a user would receive them.
func (f *fixture) verifyBothChannels(ctx context.Context, email string) error {
	if _, err := f.svc.Save(ctx, models.SaveSubmission{
		Email:       email,
		PhoneNumber: str("+5511999990000"),
	}); err != nil {
		return err
	}
	if _, err := f.svc.Save(ctx, models.SaveSubmission{
		Email:     email,
		EmailCode: str(f.sender.code(verification.ChannelEmail)),
		PhoneCode: str(f.sender.code(verification.ChannelPhone)),
	}); err != nil {
		return err
	}
	return nil
}

// finalizeSubmission is a complete, valid finalize payload for tests to
// mutate.
func finalizeSubmission(email string) models.FinalizeSubmission {
	return models.FinalizeSubmission{
		Email:           email,
		Password:        "Str0ng!pass",
		Name:            "Ada Lovelace",
		BusinessOptions: []string{"retail"},
		TermsAccepted:   true,
		PrivacyAccepted: true,
	}
}
