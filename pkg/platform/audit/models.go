// Package audit defines the onboarding audit event shape and its store
// contract. Events are emitted from domain logic; sinks (memory, kafka) fan
// out behind the Store interface.
package audit

import (
	"context"
	"time"
)

// Action names the onboarding lifecycle events.
type Action string

const (
	ActionIdentityCreated       Action = "identity_created"
	ActionVerificationSent      Action = "verification_sent"
	ActionVerificationCompleted Action = "verification_completed"
	ActionOnboardingFinalized   Action = "onboarding_finalized"
)

// Event is emitted from domain logic to capture key onboarding actions. Keep
// it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	// Subject is the identity ID (pre-finalize) or account ID (post-finalize)
	// the event concerns.
	Subject string `json:"subject"`
	// Channel is set for verification events: "email" or "phone".
	Channel string `json:"channel,omitempty"`
	// RequestID correlates the event with the HTTP request that caused it.
	RequestID string `json:"requestId,omitempty"`
	// ClientIP and Device enrich the trail for security review.
	ClientIP string `json:"clientIp,omitempty"`
	Device   string `json:"device,omitempty"`
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
