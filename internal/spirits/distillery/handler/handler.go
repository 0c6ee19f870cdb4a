// Package handler exposes the distillery review workflow over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	revmodels "dramcask/internal/revision/models"
	"dramcask/internal/spirits/distillery/models"
	id "dramcask/pkg/domain"
	dErrors "dramcask/pkg/domain-errors"
	"dramcask/pkg/platform/httputil"
	"dramcask/pkg/requestcontext"
)

// Service defines the interface for distillery operations.
type Service interface {
	CreateDistillery(ctx context.Context, req models.CreateRequest) (*models.Distillery, error)
	GetDistillery(ctx context.Context, distilleryID id.DistilleryID) (*models.Distillery, error)
	SubmitRevision(ctx context.Context, distilleryID id.DistilleryID, req models.CreateRequest) (*revmodels.Revision, error)
	PendingRevision(ctx context.Context, distilleryID id.DistilleryID) (*revmodels.Revision, error)
	ApproveRevision(ctx context.Context, revisionID id.RevisionID) (*revmodels.Revision, error)
	RejectRevision(ctx context.Context, revisionID id.RevisionID) (*revmodels.Revision, error)
	SoftDeleteDistillery(ctx context.Context, distilleryID id.DistilleryID) error
	RestoreDistillery(ctx context.Context, distilleryID id.DistilleryID) error
}

// Handler wires distillery endpoints to the distillery service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a distillery handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts distillery endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/distilleries", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/{distilleryID}", h.HandleGet)
		r.Delete("/{distilleryID}", h.HandleSoftDelete)
		r.Post("/{distilleryID}/restore", h.HandleRestore)
		r.Post("/{distilleryID}/revisions", h.HandleSubmitRevision)
		r.Get("/{distilleryID}/revisions/pending", h.HandlePendingRevision)
		r.Post("/revisions/{revisionID}/approve", h.HandleApproveRevision)
		r.Post("/revisions/{revisionID}/reject", h.HandleRejectRevision)
	})
}

// DistilleryRequest is the HTTP request body for distillery creation and
// revision submission.
type DistilleryRequest struct {
	SchemaVersion string            `json:"schema_version,omitempty"`
	Name          string            `json:"name"`
	CompanyID     string            `json:"company_id"`
	Translations  map[string]string `json:"translations,omitempty"`
	Descriptions  map[string]string `json:"descriptions,omitempty"`

	parsedCompanyID id.CompanyID
}

// Validate validates and parses the request.
func (r *DistilleryRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > 100 {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 100 characters")
	}

	companyID, err := id.ParseCompanyID(r.CompanyID)
	if err != nil {
		return err
	}
	r.parsedCompanyID = companyID
	return nil
}

// ToCreateRequest builds the domain request from the validated body.
func (r *DistilleryRequest) ToCreateRequest() models.CreateRequest {
	return models.CreateRequest{
		SchemaVersion: r.SchemaVersion,
		Name:          r.Name,
		CompanyID:     r.parsedCompanyID,
		Translations:  r.Translations,
		Descriptions:  r.Descriptions,
	}
}

// DistilleryResponse is the HTTP representation of a distillery.
type DistilleryResponse struct {
	ID           string            `json:"id"`
	CompanyID    string            `json:"company_id"`
	Name         string            `json:"name"`
	Translations map[string]string `json:"translations,omitempty"`
	Descriptions map[string]string `json:"descriptions,omitempty"`
	Status       string            `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	DeletedAt    *time.Time        `json:"deleted_at,omitempty"`
}

// FromDistillery converts a domain distillery into its HTTP representation.
func FromDistillery(d *models.Distillery) DistilleryResponse {
	resp := DistilleryResponse{
		ID:           d.ID.String(),
		CompanyID:    d.CompanyID.String(),
		Name:         d.Name,
		Translations: d.Translations,
		Descriptions: d.Descriptions,
		Status:       string(d.Status),
		CreatedAt:    d.Stamps.Created.At,
		UpdatedAt:    d.Stamps.Updated.At,
	}
	if d.Stamps.Deleted != nil {
		resp.DeletedAt = &d.Stamps.Deleted.At
	}
	return resp
}

// HandleCreate handles POST /distilleries requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if !h.requireActor(w, ctx) {
		return
	}
	req, ok := httputil.DecodeAndPrepare[DistilleryRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	distillery, err := h.service.CreateDistillery(ctx, req.ToCreateRequest())
	if err != nil {
		h.logger.ErrorContext(ctx, "distillery creation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromDistillery(distillery))
}

// HandleGet handles GET /distilleries/{distilleryID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	distilleryID, ok := h.distilleryID(w, r)
	if !ok {
		return
	}

	distillery, err := h.service.GetDistillery(r.Context(), distilleryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDistillery(distillery))
}

// HandleSubmitRevision handles POST /distilleries/{distilleryID}/revisions requests.
func (h *Handler) HandleSubmitRevision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if !h.requireActor(w, ctx) {
		return
	}
	distilleryID, ok := h.distilleryID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[DistilleryRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rev, err := h.service.SubmitRevision(ctx, distilleryID, req.ToCreateRequest())
	if err != nil {
		h.logger.ErrorContext(ctx, "distillery revision submission failed",
			"request_id", requestID,
			"distillery_id", distilleryID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, revisionView(rev))
}

// HandlePendingRevision handles GET /distilleries/{distilleryID}/revisions/pending requests.
func (h *Handler) HandlePendingRevision(w http.ResponseWriter, r *http.Request) {
	distilleryID, ok := h.distilleryID(w, r)
	if !ok {
		return
	}

	rev, err := h.service.PendingRevision(r.Context(), distilleryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, revisionView(rev))
}

// HandleApproveRevision handles POST /distilleries/revisions/{revisionID}/approve requests.
func (h *Handler) HandleApproveRevision(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.service.ApproveRevision)
}

// HandleRejectRevision handles POST /distilleries/revisions/{revisionID}/reject requests.
func (h *Handler) HandleRejectRevision(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.service.RejectRevision)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, revisionID id.RevisionID) (*revmodels.Revision, error)) {
	ctx := r.Context()

	if !h.requireActor(w, ctx) {
		return
	}
	revisionID, err := id.ParseRevisionID(chi.URLParam(r, "revisionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rev, err := fn(ctx, revisionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, revisionView(rev))
}

// HandleSoftDelete handles DELETE /distilleries/{distilleryID} requests.
func (h *Handler) HandleSoftDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.requireActor(w, ctx) {
		return
	}
	distilleryID, ok := h.distilleryID(w, r)
	if !ok {
		return
	}

	if err := h.service.SoftDeleteDistillery(ctx, distilleryID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRestore handles POST /distilleries/{distilleryID}/restore requests.
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.requireActor(w, ctx) {
		return
	}
	distilleryID, ok := h.distilleryID(w, r)
	if !ok {
		return
	}

	if err := h.service.RestoreDistillery(ctx, distilleryID); err != nil {
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

func (h *Handler) distilleryID(w http.ResponseWriter, r *http.Request) (id.DistilleryID, bool) {
	distilleryID, err := id.ParseDistilleryID(chi.URLParam(r, "distilleryID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.DistilleryID{}, false
	}
	return distilleryID, true
}

type revisionJSON struct {
	ID             string     `json:"id"`
	EntityType     string     `json:"entity_type"`
	EntityID       string     `json:"entity_id"`
	SchemaVersion  string     `json:"schema_version"`
	SnapshotStatus string     `json:"snapshot_status"`
	Data           any        `json:"data"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	CreatedBy      string     `json:"created_by"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy     string     `json:"reviewed_by,omitempty"`
}

func revisionView(rev *revmodels.Revision) revisionJSON {
	view := revisionJSON{
		ID:             rev.ID.String(),
		EntityType:     string(rev.EntityType),
		EntityID:       rev.EntityID.String(),
		SchemaVersion:  rev.SchemaVersion,
		SnapshotStatus: string(rev.Payload.SnapshotStatus),
		Data:           rev.Payload.Data,
		Status:         string(rev.Status),
		CreatedAt:      rev.Created.At,
		CreatedBy:      rev.Created.By.String(),
	}
	if rev.Reviewed != nil {
		view.ReviewedAt = &rev.Reviewed.At
		view.ReviewedBy = rev.Reviewed.By.String()
	}
	return view
}
