package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	revmodels "dramcask/internal/revision/models"
	"dramcask/internal/spirits/company/models"
	id "dramcask/pkg/domain"
	"dramcask/pkg/platform/sentinel"
	txcontext "dramcask/pkg/platform/tx"
)

// PostgresStore persists companies. Name uniqueness is enforced by the
// companies_name_unique index on lower(name); a violation at insert or
// update time surfaces as sentinel.ErrDuplicateKey.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed company store.
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

func (s *PostgresStore) Create(ctx context.Context, company *models.Company) error {
	translations, descriptions, err := encodeMaps(company)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO companies (
			id, parent_company_id, name, logo, translations, descriptions,
			independent_bottler, status,
			created_at, created_by, updated_at, updated_by, deleted_at, deleted_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(company.ID),
		parentArg(company.ParentID),
		company.Name,
		nullString(company.Logo),
		translations,
		descriptions,
		company.IndependentBottler,
		string(company.Status),
		company.Stamps.Created.At,
		uuid.UUID(company.Stamps.Created.By),
		company.Stamps.Updated.At,
		uuid.UUID(company.Stamps.Updated.By),
		deletedAtArg(company.Stamps.Deleted),
		deletedByArg(company.Stamps.Deleted),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("company %q: %w", company.Name, sentinel.ErrDuplicateKey)
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	query := selectCompany + ` WHERE id = $1`
	return s.scanCompany(s.execer(ctx).QueryRowContext(ctx, query, companyID))
}

func (s *PostgresStore) FindByName(ctx context.Context, name string) (*models.Company, error) {
	query := selectCompany + ` WHERE lower(name) = lower($1)`
	return s.scanCompany(s.execer(ctx).QueryRowContext(ctx, query, name))
}

func (s *PostgresStore) Update(ctx context.Context, company *models.Company) error {
	translations, descriptions, err := encodeMaps(company)
	if err != nil {
		return err
	}

	query := `
		UPDATE companies
		SET parent_company_id = $2, name = $3, logo = $4,
		    translations = $5, descriptions = $6, independent_bottler = $7,
		    status = $8, updated_at = $9, updated_by = $10,
		    deleted_at = $11, deleted_by = $12
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(company.ID),
		parentArg(company.ParentID),
		company.Name,
		nullString(company.Logo),
		translations,
		descriptions,
		company.IndependentBottler,
		string(company.Status),
		company.Stamps.Updated.At,
		uuid.UUID(company.Stamps.Updated.By),
		deletedAtArg(company.Stamps.Deleted),
		deletedByArg(company.Stamps.Deleted),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("company %q: %w", company.Name, sentinel.ErrDuplicateKey)
		}
		return fmt.Errorf("update company: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("company %s: %w", company.ID, sentinel.ErrNotFound)
	}
	return nil
}

const selectCompany = `
	SELECT id, parent_company_id, name, logo, translations, descriptions,
	       independent_bottler, status,
	       created_at, created_by, updated_at, updated_by, deleted_at, deleted_by
	FROM companies
`

func (s *PostgresStore) scanCompany(row *sql.Row) (*models.Company, error) {
	var (
		companyID       uuid.UUID
		parentCompanyID *uuid.UUID
		name            string
		logo            *string
		translationsRaw []byte
		descriptionsRaw []byte
		independent     bool
		status          string
		createdAt       time.Time
		createdBy       uuid.UUID
		updatedAt       time.Time
		updatedBy       uuid.UUID
		deletedAt       *time.Time
		deletedBy       *uuid.UUID
	)
	err := row.Scan(
		&companyID, &parentCompanyID, &name, &logo, &translationsRaw, &descriptionsRaw,
		&independent, &status,
		&createdAt, &createdBy, &updatedAt, &updatedBy, &deletedAt, &deletedBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("company: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan company: %w", err)
	}

	parsedStatus, err := revmodels.ParseLifecycleStatus(status)
	if err != nil {
		return nil, fmt.Errorf("scan company: %w", err)
	}
	var translations, descriptions map[string]string
	if err := json.Unmarshal(translationsRaw, &translations); err != nil {
		return nil, fmt.Errorf("decode company translations: %w", err)
	}
	if err := json.Unmarshal(descriptionsRaw, &descriptions); err != nil {
		return nil, fmt.Errorf("decode company descriptions: %w", err)
	}

	company := &models.Company{
		ID:                 id.CompanyID(companyID),
		Name:               name,
		Translations:       translations,
		Descriptions:       descriptions,
		IndependentBottler: independent,
		Status:             parsedStatus,
		Stamps: revmodels.Audit{
			Created: revmodels.AuditStamp{At: createdAt, By: id.UserID(createdBy)},
			Updated: revmodels.AuditStamp{At: updatedAt, By: id.UserID(updatedBy)},
		},
	}
	if parentCompanyID != nil {
		parent := id.CompanyID(*parentCompanyID)
		company.ParentID = &parent
	}
	if logo != nil {
		company.Logo = *logo
	}
	if deletedAt != nil && deletedBy != nil {
		company.Stamps.Deleted = &revmodels.AuditStamp{At: *deletedAt, By: id.UserID(*deletedBy)}
	}
	return company, nil
}

func encodeMaps(company *models.Company) ([]byte, []byte, error) {
	translations, err := json.Marshal(emptyIfNil(company.Translations))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal company translations: %w", err)
	}
	descriptions, err := json.Marshal(emptyIfNil(company.Descriptions))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal company descriptions: %w", err)
	}
	return translations, descriptions, nil
}

func emptyIfNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func parentArg(parentID *id.CompanyID) any {
	if parentID == nil {
		return nil
	}
	return uuid.UUID(*parentID)
}

func deletedAtArg(stamp *revmodels.AuditStamp) any {
	if stamp == nil {
		return nil
	}
	return stamp.At
}

func deletedByArg(stamp *revmodels.AuditStamp) any {
	if stamp == nil {
		return nil
	}
	return uuid.UUID(stamp.By)
}
