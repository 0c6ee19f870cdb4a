// Package service orchestrates the distillery review workflow.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"dramcask/internal/revision/engine"
	revmetrics "dramcask/internal/revision/metrics"
	revmodels "dramcask/internal/revision/models"
	companyservice "dramcask/internal/spirits/company/service"
	"dramcask/internal/spirits/distillery/models"
	id "dramcask/pkg/domain"
	dErrors "dramcask/pkg/domain-errors"
	"dramcask/pkg/platform/audit"
	"dramcask/pkg/platform/sentinel"
)

// DistilleryStore is the persistence boundary for distilleries. Names are
// unique per owning company, not globally.
type DistilleryStore interface {
	Create(ctx context.Context, distillery *models.Distillery) error
	FindByID(ctx context.Context, distilleryID uuid.UUID) (*models.Distillery, error)
	Update(ctx context.Context, distillery *models.Distillery) error
}

// Service exposes the distillery lifecycle.
type Service struct {
	distilleries DistilleryStore
	companies    companyservice.CompanyStore
	engine       *engine.Engine[*models.Distillery, models.CreateRequest]
	logger       *slog.Logger
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

// New constructs the distillery service and its engine instantiation. The
// company store backs the referential check that a distillery's owning
// company exists.
func New(distilleries DistilleryStore, companies companyservice.CompanyStore, revisions engine.RevisionStore, opts ...Option) *Service {
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
		distilleries: distilleries,
		companies:    companies,
		engine:       engine.New(distilleries, revisions, adapter{}, engineOpts...),
		logger:       cfg.logger,
	}
}

// CreateDistillery persists a new distillery under an existing company.
func (s *Service) CreateDistillery(ctx context.Context, req models.CreateRequest) (*models.Distillery, error) {
	req.Normalize()
	if req.Name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "distillery name is required")
	}
	if err := s.checkCompany(ctx, req.CompanyID); err != nil {
		return nil, err
	}
	return s.engine.Create(ctx, req)
}

// SubmitRevision proposes new field values for an existing distillery.
func (s *Service) SubmitRevision(ctx context.Context, distilleryID id.DistilleryID, req models.CreateRequest) (*revmodels.Revision, error) {
	req.Normalize()
	if req.Name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "distillery name is required")
	}
	if err := s.checkCompany(ctx, req.CompanyID); err != nil {
		return nil, err
	}
	return s.engine.SubmitRevision(ctx, uuid.UUID(distilleryID), req)
}

// ApproveRevision applies a pending revision to its distillery.
func (s *Service) ApproveRevision(ctx context.Context, revisionID id.RevisionID) (*revmodels.Revision, error) {
	return s.engine.Approve(ctx, revisionID)
}

// RejectRevision discards a pending revision.
func (s *Service) RejectRevision(ctx context.Context, revisionID id.RevisionID) (*revmodels.Revision, error) {
	return s.engine.Reject(ctx, revisionID)
}

// GetDistillery loads a distillery by id.
func (s *Service) GetDistillery(ctx context.Context, distilleryID id.DistilleryID) (*models.Distillery, error) {
	distillery, err := s.distilleries.FindByID(ctx, uuid.UUID(distilleryID))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "distillery not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load distillery")
	}
	return distillery, nil
}

// PendingRevision returns the distillery's IN_REVIEW revision, if any.
func (s *Service) PendingRevision(ctx context.Context, distilleryID id.DistilleryID) (*revmodels.Revision, error) {
	return s.engine.PendingRevision(ctx, uuid.UUID(distilleryID))
}

// SoftDeleteDistillery marks a distillery deleted.
func (s *Service) SoftDeleteDistillery(ctx context.Context, distilleryID id.DistilleryID) error {
	return s.engine.SoftDelete(ctx, uuid.UUID(distilleryID))
}

// RestoreDistillery clears a distillery's delete stamp.
func (s *Service) RestoreDistillery(ctx context.Context, distilleryID id.DistilleryID) error {
	return s.engine.Restore(ctx, uuid.UUID(distilleryID))
}

func (s *Service) checkCompany(ctx context.Context, companyID id.CompanyID) error {
	if companyID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "company id is required")
	}
	if _, err := s.companies.FindByID(ctx, uuid.UUID(companyID)); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeValidation, "owning company does not exist")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check owning company")
	}
	return nil
}
