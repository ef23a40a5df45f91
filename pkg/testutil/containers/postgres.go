//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema mirrors the production DDL; integration suites run against it.
const schema = `
CREATE TABLE IF NOT EXISTS onboarding_identities (
    id                    UUID PRIMARY KEY,
    email                 TEXT NOT NULL,
    name                  TEXT NOT NULL DEFAULT '',
    phone_number          TEXT NOT NULL DEFAULT '',
    document              TEXT NOT NULL DEFAULT '',
    document_type         TEXT NOT NULL DEFAULT '',
    document_country_code TEXT NOT NULL DEFAULT '',
    postal_address        JSONB,
    terms_accepted        BOOLEAN NOT NULL DEFAULT FALSE,
    privacy_accepted      BOOLEAN NOT NULL DEFAULT FALSE,
    selected_plan_id      TEXT NOT NULL DEFAULT '',
    pending_password      TEXT NOT NULL DEFAULT '',
    pending_email_code    TEXT NOT NULL DEFAULT '',
    pending_phone_code    TEXT NOT NULL DEFAULT '',
    linked_account_id     UUID,
    created_at            TIMESTAMPTZ NOT NULL,
    updated_at            TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS onboarding_identities_email_key
    ON onboarding_identities (LOWER(email));
CREATE UNIQUE INDEX IF NOT EXISTS onboarding_identities_document_key
    ON onboarding_identities (document_country_code, document)
    WHERE document <> '';

CREATE TABLE IF NOT EXISTS qualification_answers (
    subject_id   TEXT NOT NULL,
    question_key TEXT NOT NULL,
    answer       TEXT NOT NULL,
    score        INTEGER,
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (subject_id, question_key)
);

CREATE TABLE IF NOT EXISTS credentials (
    id                UUID PRIMARY KEY,
    email             TEXT NOT NULL,
    password_hash     TEXT NOT NULL,
    role              TEXT NOT NULL,
    is_active         BOOLEAN NOT NULL DEFAULT TRUE,
    email_verified_at TIMESTAMPTZ,
    created_at        TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS credentials_email_key
    ON credentials (LOWER(email));

CREATE TABLE IF NOT EXISTS accounts (
    id                    UUID PRIMARY KEY,
    owner_credential_id   UUID NOT NULL REFERENCES credentials (id),
    name                  TEXT NOT NULL,
    email                 TEXT NOT NULL,
    phone_number          TEXT NOT NULL DEFAULT '',
    document              TEXT NOT NULL DEFAULT '',
    document_type         TEXT NOT NULL DEFAULT '',
    document_country_code TEXT NOT NULL DEFAULT '',
    plan_id               TEXT NOT NULL DEFAULT '',
    created_at            TIMESTAMPTZ NOT NULL
);
`

// PostgresContainer wraps a testcontainers PostgreSQL instance with the
// onboarding schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DB        *sql.DB
	URL       string
}

// NewPostgresContainer starts a PostgreSQL container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("onboard_test"),
		tcpostgres.WithUsername("onboard"),
		tcpostgres.WithPassword("onboard"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{Container: container, DB: db, URL: url}
}

// TruncateTables empties the given tables between tests.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	query := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", "))
	if _, err := p.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}
