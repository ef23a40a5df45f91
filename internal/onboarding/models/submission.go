package models

import (
	"strings"

	id "onboard/pkg/domain"
)

// SaveSubmission is one partial, order-independent onboarding submission.
// Email is the resolution key and the only required field; nil pointers mean
// "not part of this submission" as opposed to "clear the value".
type SaveSubmission struct {
	Email               string
	Name                *string
	Document            *string
	DocumentType        *string
	DocumentCountryCode *string
	PhoneNumber         *string
	Password            *string
	PostalAddress       *PostalAddress
	EmailCode           *string
	PhoneCode           *string
	ActiveCustomers     *string
	FinancialOperations *string
	WorkingCapital      *string
	BusinessDuration    *string
	BusinessOptions     []string
	TermsAccepted       *bool
	PrivacyAccepted     *bool
	SelectedPlanID      *string
}

// Normalize canonicalizes the lookup key.
func (s *SaveSubmission) Normalize() {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
}

// SaveResult reports the outcome of one progressive save.
type SaveResult struct {
	IdentityID  id.IdentityID `json:"identityId"`
	AccountID   *id.AccountID `json:"accountId,omitempty"`
	Step        Step          `json:"step"`
	Message     string        `json:"message"`
	SavedFields []string      `json:"savedFields"`
}

// FinalizeSubmission carries the finalize-time payload. Name, phone and the
// document triple override the identity's stored values when present;
// otherwise the identity's values flow into the account.
type FinalizeSubmission struct {
	Email               string
	Password            string
	Name                string
	PhoneNumber         string
	Document            string
	DocumentType        string
	DocumentCountryCode string
	BusinessOptions     []string
	TermsAccepted       bool
	PrivacyAccepted     bool
	PostalAddress       *PostalAddress
	SelectedPlanID      string
}

// Normalize canonicalizes the lookup key and trims override fields.
func (f *FinalizeSubmission) Normalize() {
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Name = strings.TrimSpace(f.Name)
	f.PhoneNumber = strings.TrimSpace(f.PhoneNumber)
}

// FinalizeResult is the success bundle of a completed registration.
type FinalizeResult struct {
	AccountID    id.AccountID    `json:"accountId"`
	CredentialID id.CredentialID `json:"credentialId"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	Message      string          `json:"message"`
}

// TokenPair is an opaque signed bearer token pair; this engine treats both as
// strings with no internal structure.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// VerificationStatus is the per-channel verification state read from the
// verification gateway.
type VerificationStatus struct {
	EmailVerified bool
	PhoneVerified bool
}

// ProgressStatus summarizes how far an identifier has come.
type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// ProgressData is the "known fields" projection returned to the UI for
// resuming. Secrets never appear here.
type ProgressData struct {
	Email               string         `json:"email,omitempty"`
	Name                string         `json:"name,omitempty"`
	PhoneNumber         string         `json:"phoneNumber,omitempty"`
	Document            string         `json:"document,omitempty"`
	DocumentType        string         `json:"documentType,omitempty"`
	DocumentCountryCode string         `json:"documentCountryCode,omitempty"`
	PostalAddress       *PostalAddress `json:"postalAddress,omitempty"`
	EmailVerified       bool           `json:"emailVerified"`
	PhoneVerified       bool           `json:"phoneVerified"`
	BusinessOptions     []string       `json:"businessOptions,omitempty"`
	Answers             map[string]string `json:"answers,omitempty"`
}

// Progress is the read-only snapshot reconstructed from identity state.
type Progress struct {
	IdentityID *id.IdentityID `json:"identityId,omitempty"`
	AccountID  *id.AccountID  `json:"accountId,omitempty"`
	Status     ProgressStatus `json:"status"`
	Step       Step           `json:"step"`
	Data       ProgressData   `json:"data"`
}
