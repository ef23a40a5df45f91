package models

import (
	"time"

	id "onboard/pkg/domain"
)

// PostalAddress is the optional address collected near the end of onboarding.
type PostalAddress struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// PendingSecrets is the transient holding area for secrets collected during
// progressive save: the not-yet-finalized password placeholder and the last
// successfully verified channel codes. Never serialized, cleared when
// finalization consumes it.
type PendingSecrets struct {
	Password  string `json:"-"`
	EmailCode string `json:"-"`
	PhoneCode string `json:"-"`
}

// IsZero reports whether no secret is held.
func (p PendingSecrets) IsZero() bool {
	return p == PendingSecrets{}
}

// Identity is the mutable, pre-account record accumulating a user's
// onboarding submissions, keyed primarily by email.
//
// Invariants:
//   - Email is non-empty from first persistence and unique across identities
//     and credentials
//   - Document, DocumentType and DocumentCountryCode are present together or
//     absent together (enforced at finalization; saves may hold partial or
//     invalid documents by design)
//   - LinkedAccountID is set exactly once, at finalization; its presence is
//     the authoritative "onboarding complete" marker
//   - Once linked, identity fields are immutable; only qualification answers
//     may still change
type Identity struct {
	ID                  id.IdentityID  `json:"id"`
	Email               string         `json:"email"`
	Name                string         `json:"name,omitempty"`
	PhoneNumber         string         `json:"phoneNumber,omitempty"`
	Document            string         `json:"document,omitempty"`
	DocumentType        string         `json:"documentType,omitempty"`
	DocumentCountryCode string         `json:"documentCountryCode,omitempty"`
	PostalAddress       *PostalAddress `json:"postalAddress,omitempty"`
	TermsAccepted       bool           `json:"termsAccepted"`
	PrivacyAccepted     bool           `json:"privacyAccepted"`
	SelectedPlanID      string         `json:"selectedPlanId,omitempty"`
	PendingSecrets      PendingSecrets `json:"-"`
	LinkedAccountID     *id.AccountID  `json:"linkedAccountId,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// IsFinalized reports whether the identity has been linked to an account.
func (i *Identity) IsFinalized() bool {
	return i.LinkedAccountID != nil
}

// HasDocument reports whether the full document triple is present.
func (i *Identity) HasDocument() bool {
	return i.Document != "" && i.DocumentType != "" && i.DocumentCountryCode != ""
}

// HasPartialDocument reports whether some but not all of the document triple
// is present.
func (i *Identity) HasPartialDocument() bool {
	any := i.Document != "" || i.DocumentType != "" || i.DocumentCountryCode != ""
	return any && !i.HasDocument()
}

// Clone returns a deep copy so store callers never alias shared state.
func (i *Identity) Clone() *Identity {
	out := *i
	if i.PostalAddress != nil {
		addr := *i.PostalAddress
		out.PostalAddress = &addr
	}
	if i.LinkedAccountID != nil {
		acct := *i.LinkedAccountID
		out.LinkedAccountID = &acct
	}
	return &out
}
