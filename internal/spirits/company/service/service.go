// Package service orchestrates the company review workflow on top of the
// generic revision engine.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"dramcask/internal/revision/engine"
	revmetrics "dramcask/internal/revision/metrics"
	revmodels "dramcask/internal/revision/models"
	"dramcask/internal/spirits/company/models"
	id "dramcask/pkg/domain"
	dErrors "dramcask/pkg/domain-errors"
	"dramcask/pkg/platform/audit"
	"dramcask/pkg/platform/sentinel"
)

// CompanyStore is the persistence boundary for companies. It is a superset
// of the engine's EntityStore: FindByName backs the natural-key pre-check
// and lookups.
type CompanyStore interface {
	Create(ctx context.Context, company *models.Company) error
	FindByID(ctx context.Context, companyID uuid.UUID) (*models.Company, error)
	FindByName(ctx context.Context, name string) (*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
}

// Service exposes the company lifecycle: creation, revision submission,
// review decisions and the soft-delete contract.
type Service struct {
	companies CompanyStore
	engine    *engine.Engine[*models.Company, models.CreateRequest]
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*config)

type config struct {
	logger  *slog.Logger
	metrics *revmetrics.Metrics
	emitter audit.Emitter
	tx      engine.StoreTx
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func WithMetrics(m *revmetrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

func WithAuditEmitter(e audit.Emitter) Option {
	return func(c *config) { c.emitter = e }
}

func WithStoreTx(tx engine.StoreTx) Option {
	return func(c *config) { c.tx = tx }
}

// New constructs the company service and its engine instantiation.
func New(companies CompanyStore, revisions engine.RevisionStore, opts ...Option) *Service {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	engineOpts := []engine.Option{engine.WithLogger(cfg.logger)}
	if cfg.metrics != nil {
		engineOpts = append(engineOpts, engine.WithMetrics(cfg.metrics))
	}
	if cfg.emitter != nil {
		engineOpts = append(engineOpts, engine.WithAuditEmitter(cfg.emitter))
	}
	if cfg.tx != nil {
		engineOpts = append(engineOpts, engine.WithStoreTx(cfg.tx))
	}

	return &Service{
		companies: companies,
		engine:    engine.New(companies, revisions, adapter{}, engineOpts...),
		logger:    cfg.logger,
	}
}

// CreateCompany persists a new company. Requests carrying optional data
// land in IN_REVIEW with a pending revision holding the full request;
// mandatory-only requests land in DRAFT with no revision.
func (s *Service) CreateCompany(ctx context.Context, req models.CreateRequest) (*models.Company, error) {
	req.Normalize()
	if req.Name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "company name is required")
	}

	// Early exit; the store's unique index is the real guarantee under
	// concurrent creators.
	if _, err := s.companies.FindByName(ctx, req.Name); err == nil {
		return nil, dErrors.New(dErrors.CodeDuplicateKey, "company name must be unique")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check company name")
	}

	company, err := s.engine.Create(ctx, req)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeDuplicateKey) {
			return nil, dErrors.New(dErrors.CodeDuplicateKey, "company name must be unique")
		}
		return nil, err
	}
	return company, nil
}

// SubmitRevision proposes new field values for an existing company.
func (s *Service) SubmitRevision(ctx context.Context, companyID id.CompanyID, req models.CreateRequest) (*revmodels.Revision, error) {
	req.Normalize()
	if req.Name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "company name is required")
	}
	return s.engine.SubmitRevision(ctx, uuid.UUID(companyID), req)
}

// ApproveRevision applies a pending revision to its company.
func (s *Service) ApproveRevision(ctx context.Context, revisionID id.RevisionID) (*revmodels.Revision, error) {
	return s.engine.Approve(ctx, revisionID)
}

// RejectRevision discards a pending revision, restoring the company's
// pre-submission status.
func (s *Service) RejectRevision(ctx context.Context, revisionID id.RevisionID) (*revmodels.Revision, error) {
	return s.engine.Reject(ctx, revisionID)
}

// GetCompany loads a company by id.
func (s *Service) GetCompany(ctx context.Context, companyID id.CompanyID) (*models.Company, error) {
	company, err := s.companies.FindByID(ctx, uuid.UUID(companyID))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "company not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load company")
	}
	return company, nil
}

// PendingRevision returns the company's IN_REVIEW revision, if any.
func (s *Service) PendingRevision(ctx context.Context, companyID id.CompanyID) (*revmodels.Revision, error) {
	return s.engine.PendingRevision(ctx, uuid.UUID(companyID))
}

// GetRevision loads a revision by id regardless of status.
func (s *Service) GetRevision(ctx context.Context, revisionID id.RevisionID) (*revmodels.Revision, error) {
	return s.engine.GetRevision(ctx, revisionID)
}

// SoftDeleteCompany marks a company deleted without touching its status.
func (s *Service) SoftDeleteCompany(ctx context.Context, companyID id.CompanyID) error {
	return s.engine.SoftDelete(ctx, uuid.UUID(companyID))
}

// RestoreCompany clears a company's delete stamp.
func (s *Service) RestoreCompany(ctx context.Context, companyID id.CompanyID) error {
	return s.engine.Restore(ctx, uuid.UUID(companyID))
}

// IsDeleted reports whether the company carries a delete stamp.
func (s *Service) IsDeleted(ctx context.Context, companyID id.CompanyID) (bool, error) {
	return s.engine.IsDeleted(ctx, uuid.UUID(companyID))
}
