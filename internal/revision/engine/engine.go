// Package engine orchestrates the revisable-entity lifecycle: creation with
// an optional initial revision, revision submission, approval, rejection and
// the soft-delete contract shared by every persistent entity.
//
// One Engine instantiation serves one domain entity type (companies,
// distilleries, ...). The engine enforces state-machine legality only;
// who may approve is the caller's concern.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dramcask/internal/revision/fsm"
	revmetrics "dramcask/internal/revision/metrics"
	"dramcask/internal/revision/models"
	id "dramcask/pkg/domain"
	dErrors "dramcask/pkg/domain-errors"
	"dramcask/pkg/platform/audit"
	"dramcask/pkg/platform/sentinel"
	"dramcask/pkg/requestcontext"
)

// Engine runs the revision/review state machine for one entity kind.
//
// Concurrency model: many independent request handlers against one shared
// store. Every multi-step operation (check-then-act, load-then-mutate, dual
// entity+revision write) runs inside a single StoreTx transaction. The
// application-level pre-checks reduce, but never replace, the storage-level
// unique constraints; a constraint violation at insert time surfaces as the
// same error as the pre-check. No operation is retried internally.
type Engine[E Entity, REQ any] struct {
	entities    EntityStore[E]
	revisions   RevisionStore
	adapter     Adapter[E, REQ]
	transitions TransitionValidator
	tx          StoreTx
	logger      *slog.Logger
	metrics     *revmetrics.Metrics
	emitter     audit.Emitter
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	transitions TransitionValidator
	tx          StoreTx
	logger      *slog.Logger
	metrics     *revmetrics.Metrics
	emitter     audit.Emitter
}

// WithTransitionValidator overrides the default FSM-backed validator.
func WithTransitionValidator(v TransitionValidator) Option {
	return func(o *options) { o.transitions = v }
}

// WithStoreTx sets the transaction boundary. Wire the Postgres
// implementation in production; the default is an in-memory lock.
func WithStoreTx(tx StoreTx) Option {
	return func(o *options) { o.tx = tx }
}

// WithLogger sets a structured logger for review decisions.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics sets the Prometheus metrics collector.
func WithMetrics(m *revmetrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithAuditEmitter sets the lifecycle audit event emitter. Events are
// emitted inside the operation's transaction (outbox pattern), so a failed
// emit aborts the operation.
func WithAuditEmitter(e audit.Emitter) Option {
	return func(o *options) { o.emitter = e }
}

// New constructs an Engine for one entity kind.
func New[E Entity, REQ any](entities EntityStore[E], revisions RevisionStore, adapter Adapter[E, REQ], opts ...Option) *Engine[E, REQ] {
	cfg := &options{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.transitions == nil {
		cfg.transitions = fsm.New()
	}
	if cfg.tx == nil {
		cfg.tx = newInMemoryStoreTx()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Engine[E, REQ]{
		entities:    entities,
		revisions:   revisions,
		adapter:     adapter,
		transitions: cfg.transitions,
		tx:          cfg.tx,
		logger:      cfg.logger,
		metrics:     cfg.metrics,
		emitter:     cfg.emitter,
	}
}

// Create persists a new entity and, when the request carries anything
// beyond the mandatory minimum, a pending revision holding the full
// request. The entity is saved first so the revision can reference its id.
// The created revision, if any, is not returned; callers query it via
// PendingRevision.
func (e *Engine[E, REQ]) Create(ctx context.Context, req REQ) (E, error) {
	var zero E
	start := time.Now()
	actor := requestcontext.UserID(ctx)
	now := requestcontext.Now(ctx)

	var created E
	err := e.tx.RunInTx(ctx, func(txCtx context.Context) error {
		status := models.StatusDraft
		if e.adapter.HasAdditionalData(req) {
			status = models.StatusInReview
		}

		entity, err := e.adapter.NewEntity(req, status, models.NewAudit(actor, now))
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
				return dErrors.Wrap(err, dErrors.CodeValidation, "invalid create request")
			}
			return err
		}

		if err := e.entities.Create(txCtx, entity); err != nil {
			if errors.Is(err, sentinel.ErrDuplicateKey) {
				return dErrors.New(dErrors.CodeDuplicateKey, "natural key is already taken")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create entity")
		}

		if status == models.StatusInReview {
			// The payload snapshots the full request, tagged with the
			// pre-save status so a rejection can restore it.
			if _, err := e.createRevision(txCtx, entity, req, models.StatusDraft, actor, now); err != nil {
				return err
			}
		}

		if err := e.emit(txCtx, audit.EventEntityCreated, entity.EntityID(), nil); err != nil {
			return err
		}
		created = entity
		return nil
	})
	if err != nil {
		return zero, err
	}

	e.count(func(m *revmetrics.Metrics) { m.EntitiesCreated.WithLabelValues(e.entityType()).Inc() })
	e.observe("create", start)
	return created, nil
}

// SubmitRevision proposes new field values for an existing entity. The
// entity flips to IN_REVIEW and the pending revision records its previous
// status for rejection rollback.
func (e *Engine[E, REQ]) SubmitRevision(ctx context.Context, entityID uuid.UUID, req REQ) (*models.Revision, error) {
	start := time.Now()
	actor := requestcontext.UserID(ctx)
	now := requestcontext.Now(ctx)

	var submitted *models.Revision
	err := e.tx.RunInTx(ctx, func(txCtx context.Context) error {
		entity, err := e.entities.FindByID(txCtx, entityID)
		if err != nil {
			return e.wrapEntityErr(err)
		}
		// A soft-deleted entity is out of circulation; it must be restored
		// before it can take new revisions.
		if entity.AuditTrail().IsDeleted() {
			return dErrors.New(dErrors.CodeNotFound, "entity not found")
		}

		snapshot := entity.LifecycleStatus()
		if _, err := e.transitions.Apply(txCtx, snapshot, models.EventSubmit); err != nil {
			var transitionErr *fsm.TransitionError
			if errors.As(err, &transitionErr) {
				return dErrors.New(dErrors.CodeInvalidState, submitRefusalReason(snapshot))
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "transition check failed")
		}

		// Early exit; the store's unique constraint is the real guarantee.
		if _, err := e.revisions.FindPending(txCtx, e.adapter.EntityType(), entityID); err == nil {
			return dErrors.New(dErrors.CodeConflict, "a pending revision already exists for this entity")
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check pending revisions")
		}

		entity.UpdateStatus(models.StatusInReview)
		entity.AuditTrail().Touch(actor, now)
		if err := e.entities.Update(txCtx, entity); err != nil {
			return e.wrapEntityErr(err)
		}

		rev, err := e.createRevision(txCtx, entity, req, snapshot, actor, now)
		if err != nil {
			return err
		}

		if err := e.emit(txCtx, audit.EventRevisionSubmitted, entityID, rev); err != nil {
			return err
		}
		submitted = rev
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.count(func(m *revmetrics.Metrics) { m.RevisionsSubmitted.WithLabelValues(e.entityType()).Inc() })
	e.observe("submit", start)
	return submitted, nil
}

// Approve applies a pending revision: the entity's fields are overwritten
// from the payload, its status becomes CONFIRMED and the revision is marked
// APPROVED with a reviewed stamp. Both writes commit together or not at all.
func (e *Engine[E, REQ]) Approve(ctx context.Context, revisionID id.RevisionID) (*models.Revision, error) {
	start := time.Now()

	rev, err := e.review(ctx, revisionID, models.RevisionApproved)
	if err != nil {
		return nil, err
	}

	e.count(func(m *revmetrics.Metrics) { m.RevisionsApproved.WithLabelValues(e.entityType()).Inc() })
	e.observe("approve", start)
	return rev, nil
}

// Reject discards a pending revision: the entity's fields stay untouched
// and its status is reset to the snapshot status recorded in the payload.
func (e *Engine[E, REQ]) Reject(ctx context.Context, revisionID id.RevisionID) (*models.Revision, error) {
	start := time.Now()

	rev, err := e.review(ctx, revisionID, models.RevisionRejected)
	if err != nil {
		return nil, err
	}

	e.count(func(m *revmetrics.Metrics) { m.RevisionsRejected.WithLabelValues(e.entityType()).Inc() })
	e.observe("reject", start)
	return rev, nil
}

func (e *Engine[E, REQ]) review(ctx context.Context, revisionID id.RevisionID, decision models.RevisionStatus) (*models.Revision, error) {
	actor := requestcontext.UserID(ctx)
	now := requestcontext.Now(ctx)

	var reviewed *models.Revision
	err := e.tx.RunInTx(ctx, func(txCtx context.Context) error {
		rev, err := e.revisions.FindByID(txCtx, revisionID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "revision not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load revision")
		}
		if !rev.IsPending() {
			return dErrors.New(dErrors.CodeInvalidState, "revision is not in review")
		}

		entity, err := e.entities.FindByID(txCtx, rev.EntityID)
		if err != nil {
			return e.wrapEntityErr(err)
		}
		if entity.AuditTrail().IsDeleted() {
			return dErrors.New(dErrors.CodeNotFound, "entity not found")
		}
		// Guards against a revision outliving an entity whose state
		// diverged (e.g. suppressed while the review sat in a queue).
		if entity.LifecycleStatus() != models.StatusInReview {
			return dErrors.New(dErrors.CodeInvalidState, "entity is not in review")
		}

		switch decision {
		case models.RevisionApproved:
			if err := e.adapter.ApplyPayload(entity, rev.Payload); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to apply revision payload")
			}
			entity.UpdateStatus(models.StatusConfirmed)
		case models.RevisionRejected:
			entity.UpdateStatus(rev.Payload.SnapshotStatus)
		}
		entity.AuditTrail().Touch(actor, now)
		if err := e.entities.Update(txCtx, entity); err != nil {
			return e.wrapEntityErr(err)
		}

		if err := rev.Review(actor, decision, now); err != nil {
			return err
		}
		if err := e.revisions.Update(txCtx, rev); err != nil {
			// The store refuses to touch a reviewed row, so a concurrent
			// decision that committed first wins and this one rolls back.
			if errors.Is(err, sentinel.ErrInvalidState) {
				return dErrors.New(dErrors.CodeInvalidState, "revision is not in review")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update revision")
		}

		event := audit.EventRevisionApproved
		if decision == models.RevisionRejected {
			event = audit.EventRevisionRejected
		}
		if err := e.emit(txCtx, event, rev.EntityID, rev); err != nil {
			return err
		}
		reviewed = rev
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "revision reviewed",
		"entity_type", e.entityType(),
		"revision_id", reviewed.ID,
		"entity_id", reviewed.EntityID,
		"decision", string(decision),
		"reviewer", actor,
	)
	return reviewed, nil
}

// PendingRevision returns the entity's IN_REVIEW revision, if any.
func (e *Engine[E, REQ]) PendingRevision(ctx context.Context, entityID uuid.UUID) (*models.Revision, error) {
	rev, err := e.revisions.FindPending(ctx, e.adapter.EntityType(), entityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no pending revision for this entity")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pending revision")
	}
	return rev, nil
}

// GetRevision returns a revision by id regardless of status.
func (e *Engine[E, REQ]) GetRevision(ctx context.Context, revisionID id.RevisionID) (*models.Revision, error) {
	rev, err := e.revisions.FindByID(ctx, revisionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "revision not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load revision")
	}
	return rev, nil
}

func (e *Engine[E, REQ]) createRevision(ctx context.Context, entity E, req REQ, snapshot models.LifecycleStatus, actor id.UserID, now time.Time) (*models.Revision, error) {
	payload, err := e.adapter.BuildPayload(req, snapshot)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build revision payload")
	}
	rev, err := models.NewRevision(e.adapter.EntityType(), entity.EntityID(), payload, actor, now)
	if err != nil {
		return nil, err
	}
	if err := e.revisions.Create(ctx, rev); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			e.count(func(m *revmetrics.Metrics) { m.ReviewConflicts.WithLabelValues(e.entityType()).Inc() })
			return nil, dErrors.New(dErrors.CodeConflict, "a pending revision already exists for this entity")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create revision")
	}
	return rev, nil
}

func (e *Engine[E, REQ]) wrapEntityErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "entity not found")
	case errors.Is(err, sentinel.ErrDuplicateKey):
		return dErrors.New(dErrors.CodeDuplicateKey, "natural key is already taken")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "entity was modified concurrently")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "entity store failure")
}

// submitRefusalReason maps an illegal submit source status to the
// caller-visible reason.
func submitRefusalReason(status models.LifecycleStatus) string {
	switch status {
	case models.StatusSuppressed:
		return "suppressed"
	case models.StatusInReview:
		return "already in review"
	default:
		return "submit is not legal from status " + string(status)
	}
}

func (e *Engine[E, REQ]) entityType() string {
	return string(e.adapter.EntityType())
}

func (e *Engine[E, REQ]) emit(ctx context.Context, action audit.Action, entityID uuid.UUID, rev *models.Revision) error {
	if e.emitter == nil {
		return nil
	}
	event := audit.Event{
		Action:     action,
		EntityType: e.entityType(),
		EntityID:   entityID,
		Actor:      requestcontext.UserID(ctx),
		Timestamp:  requestcontext.Now(ctx),
		RequestID:  requestcontext.RequestID(ctx),
	}
	if rev != nil {
		event.RevisionID = uuid.UUID(rev.ID)
	}
	if err := e.emitter.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to emit audit event")
	}
	return nil
}

func (e *Engine[E, REQ]) count(fn func(m *revmetrics.Metrics)) {
	if e.metrics != nil {
		fn(e.metrics)
	}
}

func (e *Engine[E, REQ]) observe(operation string, start time.Time) {
	if e.metrics != nil {
		e.metrics.ObserveOperation(e.entityType(), operation, start)
	}
}
