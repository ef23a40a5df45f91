package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"onboard/internal/account/models"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/platform/tx"
)

// Postgres persists credentials in PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE credentials (
//	    id                UUID PRIMARY KEY,
//	    email             TEXT NOT NULL,
//	    password_hash     TEXT NOT NULL,
//	    role              TEXT NOT NULL,
//	    is_active         BOOLEAN NOT NULL DEFAULT TRUE,
//	    email_verified_at TIMESTAMPTZ,
//	    created_at        TIMESTAMPTZ NOT NULL
//	);
//	CREATE UNIQUE INDEX credentials_email_key ON credentials (LOWER(email));
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, credential *models.Credential) error {
	conn := querier(ctx, s.db)
	_, err := conn.ExecContext(ctx, `
		INSERT INTO credentials (id, email, password_hash, role, is_active, email_verified_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		credential.ID.String(), strings.ToLower(credential.Email),
		credential.PasswordHash, string(credential.Role), credential.IsActive,
		credential.EmailVerifiedAt, credential.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.Credential, error) {
	conn := querier(ctx, s.db)
	row := conn.QueryRowContext(ctx, `
		SELECT id, email, password_hash, role, is_active, email_verified_at, created_at
		FROM credentials
		WHERE LOWER(email) = LOWER($1)`, email)

	var (
		credential models.Credential
		rawID      string
		role       string
		verifiedAt sql.NullTime
	)
	err := row.Scan(&rawID, &credential.Email, &credential.PasswordHash, &role,
		&credential.IsActive, &verifiedAt, &credential.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find credential by email: %w", err)
	}

	credentialID, err := id.ParseCredentialID(rawID)
	if err != nil {
		return nil, fmt.Errorf("find credential by email: %w", err)
	}
	credential.ID = credentialID
	credential.Role = models.Role(role)
	if verifiedAt.Valid {
		at := verifiedAt.Time
		credential.EmailVerifiedAt = &at
	}
	return &credential, nil
}

type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func querier(ctx context.Context, db *sql.DB) sqlConn {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return db
}
