// Package models defines the durable account and credential records created
// once, at finalization.
package models

import (
	"time"

	id "onboard/pkg/domain"
)

// Role is the credential's access role within its account.
type Role string

// RoleOwner marks the credential created at finalization. An account always
// has exactly one owning credential.
const RoleOwner Role = "owner"

// Credential is the login-capable record. Email is unique across the whole
// system, including identities not yet finalized.
type Credential struct {
	ID              id.CredentialID `json:"id"`
	Email           string          `json:"email"`
	PasswordHash    string          `json:"-"`
	Role            Role            `json:"role"`
	IsActive        bool            `json:"isActive"`
	EmailVerifiedAt *time.Time      `json:"emailVerifiedAt,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Account is the business account owned by exactly one credential.
type Account struct {
	ID                  id.AccountID    `json:"id"`
	OwnerCredentialID   id.CredentialID `json:"ownerCredentialId"`
	Name                string          `json:"name"`
	Email               string          `json:"email"`
	PhoneNumber         string          `json:"phoneNumber,omitempty"`
	Document            string          `json:"document,omitempty"`
	DocumentType        string          `json:"documentType,omitempty"`
	DocumentCountryCode string          `json:"documentCountryCode,omitempty"`
	PlanID              string          `json:"planId,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}
