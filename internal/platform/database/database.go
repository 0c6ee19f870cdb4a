// Package database opens the shared Postgres pool and owns the schema.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Schema is the idempotent DDL for every table this service owns.
//
// The partial unique index on revisions is the storage-level guarantee for
// the single-pending-revision invariant; the companies/distilleries name
// indexes back the natural-key uniqueness checks. Application pre-checks
// only reduce round trips; these constraints are authoritative.
const Schema = `
CREATE TABLE IF NOT EXISTS companies (
	id uuid PRIMARY KEY,
	parent_company_id uuid REFERENCES companies (id),
	name varchar(100) NOT NULL,
	logo varchar(255),
	translations jsonb NOT NULL DEFAULT '{}',
	descriptions jsonb NOT NULL DEFAULT '{}',
	independent_bottler boolean NOT NULL DEFAULT false,
	status varchar(20) NOT NULL,
	created_at timestamptz NOT NULL,
	created_by uuid NOT NULL,
	updated_at timestamptz NOT NULL,
	updated_by uuid NOT NULL,
	deleted_at timestamptz,
	deleted_by uuid
);

CREATE UNIQUE INDEX IF NOT EXISTS companies_name_unique
	ON companies (lower(name));

CREATE TABLE IF NOT EXISTS revisions (
	id uuid PRIMARY KEY,
	entity_type varchar(50) NOT NULL,
	entity_id uuid NOT NULL,
	schema_version varchar(16) NOT NULL,
	payload jsonb NOT NULL,
	diff jsonb,
	status varchar(20) NOT NULL,
	created_at timestamptz NOT NULL,
	created_by uuid NOT NULL,
	reviewed_at timestamptz,
	reviewed_by uuid
);

CREATE UNIQUE INDEX IF NOT EXISTS revisions_one_pending_per_entity
	ON revisions (entity_type, entity_id)
	WHERE status = 'IN_REVIEW';

CREATE INDEX IF NOT EXISTS revisions_entity_history
	ON revisions (entity_type, entity_id, created_at);

CREATE TABLE IF NOT EXISTS audit_outbox (
	id uuid PRIMARY KEY,
	entity_type varchar(50) NOT NULL,
	entity_id uuid NOT NULL,
	action varchar(50) NOT NULL,
	payload jsonb NOT NULL,
	created_at timestamptz NOT NULL,
	published_at timestamptz
);

CREATE INDEX IF NOT EXISTS audit_outbox_unpublished
	ON audit_outbox (created_at)
	WHERE published_at IS NULL;
`

// EnsureSchema applies the DDL. Safe to run on every boot.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
