package engine

import (
	"context"

	"github.com/google/uuid"

	"dramcask/internal/revision/models"
	id "dramcask/pkg/domain"
)

// Entity is the capability contract a domain entity implements to
// participate in the review workflow. The engine never touches domain
// fields directly; everything beyond id, status and audit stamps goes
// through the Adapter.
type Entity interface {
	// EntityID returns the opaque identifier, stable once assigned.
	EntityID() uuid.UUID

	// LifecycleStatus returns the current lifecycle status.
	LifecycleStatus() models.LifecycleStatus

	// UpdateStatus sets the lifecycle status. Only the engine calls this.
	UpdateStatus(models.LifecycleStatus)

	// AuditTrail exposes the embedded audit value for stamp mutations.
	AuditTrail() *models.Audit
}

// Adapter supplies the per-entity-type knowledge the engine is generic
// over: how to recognize optional data in a request, how to build an entity
// and a payload from one, and how to overwrite entity fields from an
// approved payload.
type Adapter[E Entity, REQ any] interface {
	// EntityType tags revisions created for this entity kind.
	EntityType() models.EntityType

	// HasAdditionalData reports whether the request carries any field
	// beyond the mandatory minimum.
	HasAdditionalData(req REQ) bool

	// NewEntity builds an entity carrying only mandatory fields, the given
	// status and audit stamps. Validation failures surface as
	// InvariantViolation errors.
	NewEntity(req REQ, status models.LifecycleStatus, audit models.Audit) (E, error)

	// BuildPayload snapshots the entire request into a schema-versioned
	// payload, tagged with the entity's snapshot status.
	BuildPayload(req REQ, snapshot models.LifecycleStatus) (models.Payload, error)

	// ApplyPayload overwrites the entity's domain fields from the payload,
	// decoding by the payload's schema version.
	ApplyPayload(e E, payload models.Payload) error
}

// EntityStore is the persistence boundary for one revisable entity kind.
// Implementations return pkg/platform/sentinel errors; within RunInTx they
// must operate on the transaction carried by the context.
type EntityStore[E Entity] interface {
	// Create persists a new entity. Returns sentinel.ErrDuplicateKey when
	// the natural key is taken; the storage-level constraint is
	// authoritative under concurrent creators.
	Create(ctx context.Context, e E) error

	// FindByID loads an entity. Returns sentinel.ErrNotFound when absent.
	FindByID(ctx context.Context, entityID uuid.UUID) (E, error)

	// Update persists a mutated entity. Returns sentinel.ErrNotFound when
	// it no longer exists.
	Update(ctx context.Context, e E) error
}

// RevisionStore is the persistence boundary for revisions.
type RevisionStore interface {
	// Create persists a pending revision. Returns sentinel.ErrConflict when
	// another IN_REVIEW revision already exists for the same target; the
	// storage-level constraint is authoritative under concurrent
	// submitters.
	Create(ctx context.Context, rev *models.Revision) error

	// Update persists a review decision. Only IN_REVIEW rows are mutable;
	// implementations return sentinel.ErrInvalidState when the revision
	// was already reviewed (e.g. by a concurrent decision that committed
	// first) so the engine's rows stay write-once after review.
	Update(ctx context.Context, rev *models.Revision) error

	// FindByID loads a revision. Returns sentinel.ErrNotFound when absent.
	FindByID(ctx context.Context, revisionID id.RevisionID) (*models.Revision, error)

	// FindPending returns the IN_REVIEW revision for the target, or
	// sentinel.ErrNotFound when there is none.
	FindPending(ctx context.Context, entityType models.EntityType, entityID uuid.UUID) (*models.Revision, error)
}

// StoreTx provides the transaction boundary for multi-step engine
// operations. Implementations wrap a database transaction or, in-memory, a
// coarse lock. Partial application of a dual entity+revision write is a
// correctness violation, so every engine operation runs through RunInTx.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// TransitionValidator checks lifecycle transition legality. The FSM adapter
// in internal/revision/fsm is the production implementation.
type TransitionValidator interface {
	Apply(ctx context.Context, current models.LifecycleStatus, event models.Event) (models.LifecycleStatus, error)
}
