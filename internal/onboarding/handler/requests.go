package handler

import (
	"onboard/internal/onboarding/models"
)

// SaveRequest is the progressive save payload. Absent fields are nil and mean
// "not part of this submission".
type SaveRequest struct {
	Email               string                `json:"email"`
	Name                *string               `json:"name,omitempty"`
	Document            *string               `json:"document,omitempty"`
	DocumentType        *string               `json:"documentType,omitempty"`
	DocumentCountryCode *string               `json:"documentCountryCode,omitempty"`
	PhoneNumber         *string               `json:"phoneNumber,omitempty"`
	Password            *string               `json:"password,omitempty"`
	EmailCode           *string               `json:"emailCode,omitempty"`
	PhoneCode           *string               `json:"phoneCode,omitempty"`
	PostalAddress       *models.PostalAddress `json:"postalAddress,omitempty"`
	ActiveCustomers     *string               `json:"activeCustomers,omitempty"`
	FinancialOperations *string               `json:"financialOperations,omitempty"`
	WorkingCapital      *string               `json:"workingCapital,omitempty"`
	BusinessDuration    *string               `json:"businessDuration,omitempty"`
	BusinessOptions     []string              `json:"businessOptions,omitempty"`
	TermsAccepted       *bool                 `json:"termsAccepted,omitempty"`
	PrivacyAccepted     *bool                 `json:"privacyAccepted,omitempty"`
	SelectedPlanID      *string               `json:"selectedPlanId,omitempty"`
}

// ToSubmission maps the wire payload onto the domain submission.
func (r SaveRequest) ToSubmission() models.SaveSubmission {
	return models.SaveSubmission{
		Email:               r.Email,
		Name:                r.Name,
		Document:            r.Document,
		DocumentType:        r.DocumentType,
		DocumentCountryCode: r.DocumentCountryCode,
		PhoneNumber:         r.PhoneNumber,
		Password:            r.Password,
		EmailCode:           r.EmailCode,
		PhoneCode:           r.PhoneCode,
		PostalAddress:       r.PostalAddress,
		ActiveCustomers:     r.ActiveCustomers,
		FinancialOperations: r.FinancialOperations,
		WorkingCapital:      r.WorkingCapital,
		BusinessDuration:    r.BusinessDuration,
		BusinessOptions:     r.BusinessOptions,
		TermsAccepted:       r.TermsAccepted,
		PrivacyAccepted:     r.PrivacyAccepted,
		SelectedPlanID:      r.SelectedPlanID,
	}
}

// SubmitRequest is the finalize payload.
type SubmitRequest struct {
	Email               string                `json:"email"`
	Password            string                `json:"password"`
	Name                string                `json:"name"`
	PhoneNumber         string                `json:"phoneNumber,omitempty"`
	Document            string                `json:"document,omitempty"`
	DocumentType        string                `json:"documentType,omitempty"`
	DocumentCountryCode string                `json:"documentCountryCode,omitempty"`
	BusinessOptions     []string              `json:"businessOptions"`
	TermsAccepted       bool                  `json:"termsAccepted"`
	PrivacyAccepted     bool                  `json:"privacyAccepted"`
	PostalAddress       *models.PostalAddress `json:"postalAddress,omitempty"`
	SelectedPlanID      string                `json:"selectedPlanId,omitempty"`
}

// ToSubmission maps the wire payload onto the domain submission.
func (r SubmitRequest) ToSubmission() models.FinalizeSubmission {
	return models.FinalizeSubmission{
		Email:               r.Email,
		Password:            r.Password,
		Name:                r.Name,
		PhoneNumber:         r.PhoneNumber,
		Document:            r.Document,
		DocumentType:        r.DocumentType,
		DocumentCountryCode: r.DocumentCountryCode,
		BusinessOptions:     r.BusinessOptions,
		TermsAccepted:       r.TermsAccepted,
		PrivacyAccepted:     r.PrivacyAccepted,
		PostalAddress:       r.PostalAddress,
		SelectedPlanID:      r.SelectedPlanID,
	}
}
