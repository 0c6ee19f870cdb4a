package revision

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"dramcask/internal/revision/models"
	id "dramcask/pkg/domain"
	"dramcask/pkg/platform/sentinel"
	txcontext "dramcask/pkg/platform/tx"
)

// PostgresStore persists revisions.
//
// The single-pending-revision invariant is a cross-row constraint that a
// read-then-insert check cannot guarantee under concurrent submitters, so
// it is enforced by a partial unique index:
//
//	CREATE UNIQUE INDEX revisions_one_pending_per_entity
//	ON revisions (entity_type, entity_id) WHERE status = 'IN_REVIEW';
//
// A violation at insert time surfaces as sentinel.ErrConflict, the same
// error the engine's pre-check produces.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed revision store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const pqUniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, rev *models.Revision) error {
	payload, err := json.Marshal(rev.Payload)
	if err != nil {
		return fmt.Errorf("marshal revision payload: %w", err)
	}

	query := `
		INSERT INTO revisions (
			id, entity_type, entity_id, schema_version, payload, diff,
			status, created_at, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(rev.ID),
		string(rev.EntityType),
		rev.EntityID,
		rev.SchemaVersion,
		payload,
		nullJSON(rev.Diff),
		string(rev.Status),
		rev.Created.At,
		uuid.UUID(rev.Created.By),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("pending revision for %s/%s: %w", rev.EntityType, rev.EntityID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert revision: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, rev *models.Revision) error {
	var reviewedAt *time.Time
	var reviewedBy *uuid.UUID
	if rev.Reviewed != nil {
		reviewedAt = &rev.Reviewed.At
		by := uuid.UUID(rev.Reviewed.By)
		reviewedBy = &by
	}

	// A reviewed revision is immutable, so only IN_REVIEW rows are
	// updatable. The guard makes the losing side of two concurrent review
	// decisions fail instead of overwriting the winner's stamp.
	query := `
		UPDATE revisions
		SET status = $2, reviewed_at = $3, reviewed_by = $4
		WHERE id = $1 AND status = $5
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(rev.ID),
		string(rev.Status),
		reviewedAt,
		reviewedBy,
		string(models.RevisionInReview),
	)
	if err != nil {
		return fmt.Errorf("update revision: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update revision: %w", err)
	}
	if affected == 0 {
		var exists bool
		existsQuery := `SELECT EXISTS (SELECT 1 FROM revisions WHERE id = $1)`
		if err := s.execer(ctx).QueryRowContext(ctx, existsQuery, uuid.UUID(rev.ID)).Scan(&exists); err != nil {
			return fmt.Errorf("update revision: %w", err)
		}
		if !exists {
			return fmt.Errorf("revision %s: %w", rev.ID, sentinel.ErrNotFound)
		}
		return fmt.Errorf("revision %s already reviewed: %w", rev.ID, sentinel.ErrInvalidState)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, revisionID id.RevisionID) (*models.Revision, error) {
	query := selectRevision + ` WHERE id = $1`
	return s.scanRevision(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(revisionID)))
}

func (s *PostgresStore) FindPending(ctx context.Context, entityType models.EntityType, entityID uuid.UUID) (*models.Revision, error) {
	query := selectRevision + ` WHERE entity_type = $1 AND entity_id = $2 AND status = $3`
	row := s.execer(ctx).QueryRowContext(ctx, query, string(entityType), entityID, string(models.RevisionInReview))
	return s.scanRevision(row)
}

const selectRevision = `
	SELECT id, entity_type, entity_id, schema_version, payload, diff,
	       status, created_at, created_by, reviewed_at, reviewed_by
	FROM revisions
`

func (s *PostgresStore) scanRevision(row *sql.Row) (*models.Revision, error) {
	var (
		revisionID    uuid.UUID
		entityType    string
		entityID      uuid.UUID
		schemaVersion string
		payloadRaw    []byte
		diffRaw       []byte
		status        string
		createdAt     time.Time
		createdBy     uuid.UUID
		reviewedAt    *time.Time
		reviewedBy    *uuid.UUID
	)
	err := row.Scan(
		&revisionID, &entityType, &entityID, &schemaVersion, &payloadRaw, &diffRaw,
		&status, &createdAt, &createdBy, &reviewedAt, &reviewedBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("revision: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan revision: %w", err)
	}

	var payload models.Payload
	if err := json.Unmarshal(payloadRaw, &payload); err != nil {
		return nil, fmt.Errorf("decode revision payload: %w", err)
	}
	parsedStatus, err := models.ParseRevisionStatus(status)
	if err != nil {
		return nil, fmt.Errorf("scan revision: %w", err)
	}

	rev := &models.Revision{
		ID:            id.RevisionID(revisionID),
		EntityType:    models.EntityType(entityType),
		EntityID:      entityID,
		SchemaVersion: schemaVersion,
		Payload:       payload,
		Diff:          diffRaw,
		Status:        parsedStatus,
		Created:       models.AuditStamp{At: createdAt, By: id.UserID(createdBy)},
	}
	if reviewedAt != nil && reviewedBy != nil {
		rev.Reviewed = &models.AuditStamp{At: *reviewedAt, By: id.UserID(*reviewedBy)}
	}
	return rev, nil
}

func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
