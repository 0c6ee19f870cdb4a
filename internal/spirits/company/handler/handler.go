// Package handler exposes the company review workflow over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	revmodels "dramcask/internal/revision/models"
	"dramcask/internal/spirits/company/models"
	id "dramcask/pkg/domain"
	dErrors "dramcask/pkg/domain-errors"
	"dramcask/pkg/platform/httputil"
	"dramcask/pkg/requestcontext"
)

// Service defines the interface for company operations.
type Service interface {
	CreateCompany(ctx context.Context, req models.CreateRequest) (*models.Company, error)
	GetCompany(ctx context.Context, companyID id.CompanyID) (*models.Company, error)
	SubmitRevision(ctx context.Context, companyID id.CompanyID, req models.CreateRequest) (*revmodels.Revision, error)
	PendingRevision(ctx context.Context, companyID id.CompanyID) (*revmodels.Revision, error)
	GetRevision(ctx context.Context, revisionID id.RevisionID) (*revmodels.Revision, error)
	ApproveRevision(ctx context.Context, revisionID id.RevisionID) (*revmodels.Revision, error)
	RejectRevision(ctx context.Context, revisionID id.RevisionID) (*revmodels.Revision, error)
	SoftDeleteCompany(ctx context.Context, companyID id.CompanyID) error
	RestoreCompany(ctx context.Context, companyID id.CompanyID) error
}

// Handler wires company endpoints to the company service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a company handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts company endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/companies", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/{companyID}", h.HandleGet)
		r.Delete("/{companyID}", h.HandleSoftDelete)
		r.Post("/{companyID}/restore", h.HandleRestore)
		r.Post("/{companyID}/revisions", h.HandleSubmitRevision)
		r.Get("/{companyID}/revisions/pending", h.HandlePendingRevision)
		r.Get("/revisions/{revisionID}", h.HandleGetRevision)
		r.Post("/revisions/{revisionID}/approve", h.HandleApproveRevision)
		r.Post("/revisions/{revisionID}/reject", h.HandleRejectRevision)
	})
}

// HandleCreate handles POST /companies requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	if !h.requireActor(w, ctx) {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CompanyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	company, err := h.service.CreateCompany(ctx, req.ToCreateRequest())
	if err != nil {
		h.logError(ctx, "company creation failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "company created",
		"request_id", requestID,
		"company_id", company.ID,
		"status", string(company.Status),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromCompany(company))
}

// HandleGet handles GET /companies/{companyID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}

	company, err := h.service.GetCompany(ctx, companyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCompany(company))
}

// HandleSubmitRevision handles POST /companies/{companyID}/revisions requests.
func (h *Handler) HandleSubmitRevision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if !h.requireActor(w, ctx) {
		return
	}
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CompanyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rev, err := h.service.SubmitRevision(ctx, companyID, req.ToCreateRequest())
	if err != nil {
		h.logError(ctx, "revision submission failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "revision submitted",
		"request_id", requestID,
		"company_id", companyID,
		"revision_id", rev.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromRevision(rev))
}

// HandlePendingRevision handles GET /companies/{companyID}/revisions/pending requests.
func (h *Handler) HandlePendingRevision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}

	rev, err := h.service.PendingRevision(ctx, companyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRevision(rev))
}

// HandleGetRevision handles GET /companies/revisions/{revisionID} requests.
func (h *Handler) HandleGetRevision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	revisionID, ok := h.revisionID(w, r)
	if !ok {
		return
	}

	rev, err := h.service.GetRevision(ctx, revisionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRevision(rev))
}

// HandleApproveRevision handles POST /companies/revisions/{revisionID}/approve requests.
func (h *Handler) HandleApproveRevision(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, "approve", h.service.ApproveRevision)
}

// HandleRejectRevision handles POST /companies/revisions/{revisionID}/reject requests.
func (h *Handler) HandleRejectRevision(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, "reject", h.service.RejectRevision)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, decision string, fn func(ctx context.Context, revisionID id.RevisionID) (*revmodels.Revision, error)) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if !h.requireActor(w, ctx) {
		return
	}
	revisionID, ok := h.revisionID(w, r)
	if !ok {
		return
	}

	rev, err := fn(ctx, revisionID)
	if err != nil {
		h.logError(ctx, "revision review failed", requestID, err,
			"revision_id", revisionID,
			"decision", decision,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRevision(rev))
}

// HandleSoftDelete handles DELETE /companies/{companyID} requests.
func (h *Handler) HandleSoftDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.requireActor(w, ctx) {
		return
	}
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}

	if err := h.service.SoftDeleteCompany(ctx, companyID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRestore handles POST /companies/{companyID}/restore requests.
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.requireActor(w, ctx) {
		return
	}
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}

	if err := h.service.RestoreCompany(ctx, companyID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireActor(w http.ResponseWriter, ctx context.Context) bool {
	if requestcontext.UserID(ctx).IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "acting user is required"))
		return false
	}
	return true
}

func (h *Handler) companyID(w http.ResponseWriter, r *http.Request) (id.CompanyID, bool) {
	companyID, err := id.ParseCompanyID(chi.URLParam(r, "companyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.CompanyID{}, false
	}
	return companyID, true
}

func (h *Handler) revisionID(w http.ResponseWriter, r *http.Request) (id.RevisionID, bool) {
	revisionID, err := id.ParseRevisionID(chi.URLParam(r, "revisionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.RevisionID{}, false
	}
	return revisionID, true
}

func (h *Handler) logError(ctx context.Context, msg, requestID string, err error, extra ...any) {
	args := append([]any{"request_id", requestID, "error", err}, extra...)
	h.logger.ErrorContext(ctx, msg, args...)
}
