// Package domain holds shared domain primitives: typed identifiers that make
// it impossible to hand an account ID to a function expecting an identity ID.
package domain

import (
	"github.com/google/uuid"

	dErrors "onboard/pkg/domain-errors"
)

// UUID is the raw identifier type underlying all typed IDs.
type UUID = uuid.UUID

// IdentityID identifies an evolving onboarding identity record.
type IdentityID uuid.UUID

// AccountID identifies a finalized, login-capable account.
type AccountID uuid.UUID

// CredentialID identifies the credential that owns an account.
type CredentialID uuid.UUID

// NewIdentityID returns a fresh random identity ID.
func NewIdentityID() IdentityID { return IdentityID(uuid.New()) }

// NewAccountID returns a fresh random account ID.
func NewAccountID() AccountID { return AccountID(uuid.New()) }

// NewCredentialID returns a fresh random credential ID.
func NewCredentialID() CredentialID { return CredentialID(uuid.New()) }

func (id IdentityID) String() string   { return uuid.UUID(id).String() }
func (id AccountID) String() string    { return uuid.UUID(id).String() }
func (id CredentialID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero UUID.
func (id IdentityID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id AccountID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CredentialID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text marshaling delegates to uuid.UUID so IDs cross the wire as canonical
// UUID strings. Defined types do not inherit methods; without these, JSON
// encodes an ID as a 16-element byte array.
func (id IdentityID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id AccountID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id CredentialID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *IdentityID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *AccountID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *CredentialID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// ParseIdentityID validates and returns an IdentityID.
// Rejects empty strings, malformed UUIDs, and the nil UUID: identifiers that
// cross a trust boundary must always be parsed, never cast.
func ParseIdentityID(s string) (IdentityID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return IdentityID{}, err
	}
	return IdentityID(u), nil
}

// ParseAccountID validates and returns an AccountID.
func ParseAccountID(s string) (AccountID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return AccountID{}, err
	}
	return AccountID(u), nil
}

// ParseCredentialID validates and returns a CredentialID.
func ParseCredentialID(s string) (CredentialID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return CredentialID{}, err
	}
	return CredentialID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}
