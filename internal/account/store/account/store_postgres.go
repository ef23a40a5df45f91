package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"onboard/internal/account/models"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/platform/tx"
)

// Postgres persists accounts in PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE accounts (
//	    id                    UUID PRIMARY KEY,
//	    owner_credential_id   UUID NOT NULL REFERENCES credentials (id),
//	    name                  TEXT NOT NULL,
//	    email                 TEXT NOT NULL,
//	    phone_number          TEXT NOT NULL DEFAULT '',
//	    document              TEXT NOT NULL DEFAULT '',
//	    document_type         TEXT NOT NULL DEFAULT '',
//	    document_country_code TEXT NOT NULL DEFAULT '',
//	    plan_id               TEXT NOT NULL DEFAULT '',
//	    created_at            TIMESTAMPTZ NOT NULL
//	);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, account *models.Account) error {
	conn := s.conn(ctx)
	_, err := conn.ExecContext(ctx, `
		INSERT INTO accounts (id, owner_credential_id, name, email, phone_number,
			document, document_type, document_country_code, plan_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		account.ID.String(), account.OwnerCredentialID.String(), account.Name,
		account.Email, account.PhoneNumber, account.Document, account.DocumentType,
		account.DocumentCountryCode, account.PlanID, account.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, owner_credential_id, name, email, phone_number,
			document, document_type, document_country_code, plan_id, created_at
		FROM accounts
		WHERE id = $1`, accountID.String())

	var (
		account models.Account
		rawID   string
		rawCred string
	)
	err := row.Scan(&rawID, &rawCred, &account.Name, &account.Email,
		&account.PhoneNumber, &account.Document, &account.DocumentType,
		&account.DocumentCountryCode, &account.PlanID, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find account by id: %w", err)
	}

	parsedID, err := id.ParseAccountID(rawID)
	if err != nil {
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	credentialID, err := id.ParseCredentialID(rawCred)
	if err != nil {
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	account.ID = parsedID
	account.OwnerCredentialID = credentialID
	return &account, nil
}

type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) conn(ctx context.Context) sqlConn {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}
