package identity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/platform/tx"
)

// Postgres persists identities in PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE onboarding_identities (
//	    id                    UUID PRIMARY KEY,
//	    email                 TEXT NOT NULL,
//	    name                  TEXT NOT NULL DEFAULT '',
//	    phone_number          TEXT NOT NULL DEFAULT '',
//	    document              TEXT NOT NULL DEFAULT '',
//	    document_type         TEXT NOT NULL DEFAULT '',
//	    document_country_code TEXT NOT NULL DEFAULT '',
//	    postal_address        JSONB,
//	    terms_accepted        BOOLEAN NOT NULL DEFAULT FALSE,
//	    privacy_accepted      BOOLEAN NOT NULL DEFAULT FALSE,
//	    selected_plan_id      TEXT NOT NULL DEFAULT '',
//	    pending_password      TEXT NOT NULL DEFAULT '',
//	    pending_email_code    TEXT NOT NULL DEFAULT '',
//	    pending_phone_code    TEXT NOT NULL DEFAULT '',
//	    linked_account_id     UUID,
//	    created_at            TIMESTAMPTZ NOT NULL,
//	    updated_at            TIMESTAMPTZ NOT NULL
//	);
//	CREATE UNIQUE INDEX onboarding_identities_email_key
//	    ON onboarding_identities (LOWER(email));
//	CREATE UNIQUE INDEX onboarding_identities_document_key
//	    ON onboarding_identities (document_country_code, document)
//	    WHERE document <> '';
//
// The partial unique index on (document_country_code, document) is the
// store-level guard behind the finalize-time uniqueness check.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const identityColumns = `id, email, name, phone_number, document, document_type,
	document_country_code, postal_address, terms_accepted, privacy_accepted,
	selected_plan_id, pending_password, pending_email_code, pending_phone_code,
	linked_account_id, created_at, updated_at`

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) conn(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *Postgres) Create(ctx context.Context, identity *models.Identity) error {
	address, err := marshalAddress(identity.PostalAddress)
	if err != nil {
		return err
	}
	_, err = s.conn(ctx).ExecContext(ctx, `
		INSERT INTO onboarding_identities (`+identityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		identity.ID.String(), strings.ToLower(identity.Email), identity.Name,
		identity.PhoneNumber, identity.Document, identity.DocumentType,
		identity.DocumentCountryCode, address, identity.TermsAccepted,
		identity.PrivacyAccepted, identity.SelectedPlanID,
		identity.PendingSecrets.Password, identity.PendingSecrets.EmailCode,
		identity.PendingSecrets.PhoneCode, nullAccountID(identity.LinkedAccountID),
		identity.CreatedAt, identity.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create identity: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, identity *models.Identity) error {
	address, err := marshalAddress(identity.PostalAddress)
	if err != nil {
		return err
	}
	result, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE onboarding_identities SET
			email = $2, name = $3, phone_number = $4, document = $5,
			document_type = $6, document_country_code = $7, postal_address = $8,
			terms_accepted = $9, privacy_accepted = $10, selected_plan_id = $11,
			pending_password = $12, pending_email_code = $13, pending_phone_code = $14,
			linked_account_id = $15, updated_at = $16
		WHERE id = $1`,
		identity.ID.String(), strings.ToLower(identity.Email), identity.Name,
		identity.PhoneNumber, identity.Document, identity.DocumentType,
		identity.DocumentCountryCode, address, identity.TermsAccepted,
		identity.PrivacyAccepted, identity.SelectedPlanID,
		identity.PendingSecrets.Password, identity.PendingSecrets.EmailCode,
		identity.PendingSecrets.PhoneCode, nullAccountID(identity.LinkedAccountID),
		identity.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update identity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT `+identityColumns+`
		FROM onboarding_identities
		WHERE LOWER(email) = LOWER($1)`, email)
	return scanIdentity(row, "find identity by email")
}

func (s *Postgres) FindByDocument(ctx context.Context, countryCode, document string) (*models.Identity, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT `+identityColumns+`
		FROM onboarding_identities
		WHERE document_country_code = $1 AND document = $2 AND document <> ''`,
		countryCode, document)
	return scanIdentity(row, "find identity by document")
}

func (s *Postgres) FindAnyByDocument(ctx context.Context, document string) (*models.Identity, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT `+identityColumns+`
		FROM onboarding_identities
		WHERE document = $1 AND document <> ''
		ORDER BY created_at
		LIMIT 1`, document)
	return scanIdentity(row, "find identity by raw document")
}

func scanIdentity(row *sql.Row, op string) (*models.Identity, error) {
	var (
		identity  models.Identity
		rawID     string
		address   []byte
		linkedRaw sql.NullString
	)
	err := row.Scan(
		&rawID, &identity.Email, &identity.Name, &identity.PhoneNumber,
		&identity.Document, &identity.DocumentType, &identity.DocumentCountryCode,
		&address, &identity.TermsAccepted, &identity.PrivacyAccepted,
		&identity.SelectedPlanID, &identity.PendingSecrets.Password,
		&identity.PendingSecrets.EmailCode, &identity.PendingSecrets.PhoneCode,
		&linkedRaw, &identity.CreatedAt, &identity.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	identityID, err := id.ParseIdentityID(rawID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	identity.ID = identityID

	if len(address) > 0 {
		var postal models.PostalAddress
		if err := json.Unmarshal(address, &postal); err != nil {
			return nil, fmt.Errorf("%s: unmarshal postal address: %w", op, err)
		}
		identity.PostalAddress = &postal
	}
	if linkedRaw.Valid {
		accountID, err := id.ParseAccountID(linkedRaw.String)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		identity.LinkedAccountID = &accountID
	}
	return &identity, nil
}

func marshalAddress(address *models.PostalAddress) ([]byte, error) {
	if address == nil {
		return nil, nil
	}
	raw, err := json.Marshal(address)
	if err != nil {
		return nil, fmt.Errorf("marshal postal address: %w", err)
	}
	return raw, nil
}

func nullAccountID(accountID *id.AccountID) sql.NullString {
	if accountID == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: accountID.String(), Valid: true}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
