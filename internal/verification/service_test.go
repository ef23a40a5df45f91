package verification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/requestcontext"
)

type captureSender struct {
	mu    sync.Mutex
	sends []capturedSend
}

type capturedSend struct {
	channel     Channel
	destination string
	code        string
}

func (c *captureSender) Send(_ context.Context, channel Channel, destination, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sends = append(c.sends, capturedSend{channel, destination, code})
	return nil
}

func (c *captureSender) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sends)
}

func (c *captureSender) last() capturedSend {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sends[len(c.sends)-1]
}

type VerificationSuite struct {
	suite.Suite
	service    *Service
	sender     *captureSender
	identityID id.IdentityID
	ctx        context.Context
}

func (s *VerificationSuite) SetupTest() {
	s.sender = &captureSender{}
	s.service = New(NewInMemoryStore(), s.sender, 10*time.Minute, time.Minute)
	s.identityID = id.NewIdentityID()
	s.ctx = context.Background()
}

func TestVerificationSuite(t *testing.T) {
	suite.Run(t, new(VerificationSuite))
}

// TestSendAndVerify walks the happy path for both channels.
func (s *VerificationSuite) TestSendAndVerify() {
	s.Require().NoError(s.service.SendEmailCode(s.ctx, s.identityID, "user@example.com"))
	s.Require().Equal(1, s.sender.count())
	emailCode := s.sender.last().code
	s.Len(emailCode, 6)

	s.Require().NoError(s.service.VerifyEmailCode(s.ctx, s.identityID, emailCode))

	s.Require().NoError(s.service.SendPhoneCode(s.ctx, s.identityID, "+5511999990000"))
	phoneCode := s.sender.last().code
	s.Require().NoError(s.service.VerifyPhoneCode(s.ctx, s.identityID, phoneCode))

	status, err := s.service.Status(s.ctx, s.identityID)
	s.Require().NoError(err)
	s.True(status.EmailVerified)
	s.True(status.PhoneVerified)
}

// TestResendWindow verifies duplicate sends inside the window are collapsed
// and a fresh code is issued once the window passes.
func (s *VerificationSuite) TestResendWindow() {
	base := time.Now()

	ctx := requestcontext.WithTime(s.ctx, base)
	s.Require().NoError(s.service.SendEmailCode(ctx, s.identityID, "user@example.com"))
	s.Require().NoError(s.service.SendEmailCode(ctx, s.identityID, "user@example.com"))
	s.Equal(1, s.sender.count(), "second send inside the window is a no-op")

	later := requestcontext.WithTime(s.ctx, base.Add(2*time.Minute))
	s.Require().NoError(s.service.SendEmailCode(later, s.identityID, "user@example.com"))
	s.Equal(2, s.sender.count(), "a new code is issued after the window")
}

// TestSendAfterVerifiedIsNoop verifies sends stop once the channel verified.
func (s *VerificationSuite) TestSendAfterVerifiedIsNoop() {
	s.Require().NoError(s.service.SendEmailCode(s.ctx, s.identityID, "user@example.com"))
	s.Require().NoError(s.service.VerifyEmailCode(s.ctx, s.identityID, s.sender.last().code))

	s.Require().NoError(s.service.SendEmailCode(s.ctx, s.identityID, "user@example.com"))
	s.Equal(1, s.sender.count())
}

// TestVerifyFailures covers wrong, missing and expired codes.
func (s *VerificationSuite) TestVerifyFailures() {
	s.Run("wrong code", func() {
		s.Require().NoError(s.service.SendEmailCode(s.ctx, s.identityID, "user@example.com"))
		err := s.service.VerifyEmailCode(s.ctx, s.identityID, "000000")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeVerificationFailed))
	})

	s.Run("no code in flight", func() {
		err := s.service.VerifyPhoneCode(s.ctx, id.NewIdentityID(), "123456")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeVerificationFailed))
	})

	s.Run("expired code", func() {
		expiring := New(NewInMemoryStore(), s.sender, time.Nanosecond, 0)
		identityID := id.NewIdentityID()
		s.Require().NoError(expiring.SendEmailCode(s.ctx, identityID, "user@example.com"))
		time.Sleep(time.Millisecond)

		err := expiring.VerifyEmailCode(s.ctx, identityID, s.sender.last().code)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeVerificationFailed))
	})

	s.Run("wrong code leaves the channel unverified", func() {
		status, err := s.service.Status(s.ctx, s.identityID)
		s.Require().NoError(err)
		s.False(status.EmailVerified)
	})
}

// TestCodeIsSingleUse verifies a consumed code cannot be replayed.
func (s *VerificationSuite) TestCodeIsSingleUse() {
	s.Require().NoError(s.service.SendEmailCode(s.ctx, s.identityID, "user@example.com"))
	code := s.sender.last().code

	s.Require().NoError(s.service.VerifyEmailCode(s.ctx, s.identityID, code))

	err := s.service.VerifyEmailCode(s.ctx, s.identityID, code)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeVerificationFailed))
}
