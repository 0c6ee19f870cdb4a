package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	id "dramcask/pkg/domain"
	dErrors "dramcask/pkg/domain-errors"
)

// EntityType tags which catalog entity a revision targets. The engine treats
// targets as opaque (id + status); the type tag selects the payload codec.
type EntityType string

const (
	EntityTypeCompany    EntityType = "company"
	EntityTypeDistillery EntityType = "distillery"
)

// DefaultSchemaVersion is stamped on payloads when a request does not pin
// one explicitly.
const DefaultSchemaVersion = "1.0.0"

// Payload is the schema-versioned snapshot of proposed field values carried
// by a revision. Data is opaque at this layer: it is decoded by the
// per-entity codec selected by (entityType, schemaVersion), so historical
// payloads stay decodable after the entity's schema evolves.
//
// SnapshotStatus captures the target entity's status at submission time and
// is restored verbatim when the revision is rejected.
type Payload struct {
	SchemaVersion  string          `json:"schema_version"`
	SnapshotStatus LifecycleStatus `json:"snapshot_status"`
	Data           json.RawMessage `json:"data"`
}

// Revision is a persisted proposal to change one revisable entity, subject
// to independent approval or rejection.
//
// Invariants:
//   - Status is IN_REVIEW until reviewed, then immutable (no re-review)
//   - Reviewed is set exactly once, by Review, at approval or rejection
//   - At most one IN_REVIEW revision exists per (EntityType, EntityID);
//     enforced by the engine and backed by a storage-level constraint
type Revision struct {
	ID            id.RevisionID
	EntityType    EntityType
	EntityID      uuid.UUID
	SchemaVersion string
	Payload       Payload
	Diff          json.RawMessage
	Status        RevisionStatus
	Created       AuditStamp
	Reviewed      *AuditStamp
}

// NewRevision builds a pending revision for the given target.
func NewRevision(entityType EntityType, entityID uuid.UUID, payload Payload, actor id.UserID, now time.Time) (*Revision, error) {
	if entityID == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "revision target id cannot be nil")
	}
	if len(payload.Data) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "revision payload cannot be empty")
	}
	schemaVersion := payload.SchemaVersion
	if schemaVersion == "" {
		schemaVersion = DefaultSchemaVersion
		payload.SchemaVersion = schemaVersion
	}
	return &Revision{
		ID:            id.RevisionID(uuid.New()),
		EntityType:    entityType,
		EntityID:      entityID,
		SchemaVersion: schemaVersion,
		Payload:       payload,
		Status:        RevisionInReview,
		Created:       NewAuditStamp(actor, now),
	}, nil
}

// IsPending reports whether the revision still awaits a review decision.
func (r *Revision) IsPending() bool {
	return r.Status == RevisionInReview && r.Reviewed == nil
}

// Review records the review decision. A revision's status is immutable after
// it leaves IN_REVIEW, so a second call fails regardless of decision.
func (r *Revision) Review(actor id.UserID, decision RevisionStatus, now time.Time) error {
	if decision != RevisionApproved && decision != RevisionRejected {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "invalid review decision %q", decision)
	}
	if !r.IsPending() {
		return dErrors.New(dErrors.CodeInvariantViolation, "revision has already been reviewed")
	}
	stamp := NewAuditStamp(actor, now)
	r.Status = decision
	r.Reviewed = &stamp
	return nil
}
