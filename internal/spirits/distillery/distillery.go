package distillery

import (
	"log/slog"

	"dramcask/internal/revision/engine"
	companyservice "dramcask/internal/spirits/company/service"
	"dramcask/internal/spirits/distillery/handler"
	"dramcask/internal/spirits/distillery/service"
)

// Service exposes the distillery review workflow.
type Service = service.Service

// Handler wires HTTP endpoints to the distillery service.
type Handler = handler.Handler

// NewService constructs the distillery service with required dependencies.
func NewService(distilleries service.DistilleryStore, companies companyservice.CompanyStore, revisions engine.RevisionStore, opts ...service.Option) *Service {
	return service.New(distilleries, companies, revisions, opts...)
}

// NewHandler constructs an HTTP handler for distillery routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
