package company

import (
	"log/slog"

	"dramcask/internal/revision/engine"
	"dramcask/internal/spirits/company/handler"
	"dramcask/internal/spirits/company/service"
)

// Service exposes the company review workflow.
type Service = service.Service

// Handler wires HTTP endpoints to the company service.
type Handler = handler.Handler

// NewService constructs the company service with required dependencies.
func NewService(companies service.CompanyStore, revisions engine.RevisionStore, opts ...service.Option) *Service {
	return service.New(companies, revisions, opts...)
}

// NewHandler constructs an HTTP handler for company routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
