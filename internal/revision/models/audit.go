package models

import (
	"time"

	id "dramcask/pkg/domain"
	dErrors "dramcask/pkg/domain-errors"
)

// AuditStamp records who performed a lifecycle-affecting action and when.
// Immutable once written.
type AuditStamp struct {
	At time.Time `json:"at"`
	By id.UserID `json:"by"`
}

// NewAuditStamp builds a stamp for the given actor at the given instant.
func NewAuditStamp(actor id.UserID, at time.Time) AuditStamp {
	return AuditStamp{At: at, By: actor}
}

// Audit is the soft-delete base contract embedded in every persistent
// entity, replacing the Creatable/Updatable/SoftDeletable hierarchy with a
// single composed value.
//
// Invariants:
//   - Created and Updated are non-zero after construction
//   - Deleted is nil XOR the entity is considered deleted
//   - SoftDelete/Restore are the only mutators of the delete stamp
type Audit struct {
	Created AuditStamp  `json:"created"`
	Updated AuditStamp  `json:"updated"`
	Deleted *AuditStamp `json:"deleted,omitempty"`
}

// NewAudit builds the audit value for a freshly created entity. Created and
// Updated start equal; the delete stamp starts empty.
func NewAudit(actor id.UserID, now time.Time) Audit {
	stamp := NewAuditStamp(actor, now)
	return Audit{Created: stamp, Updated: stamp}
}

// IsDeleted reports whether the delete stamp is set.
func (a *Audit) IsDeleted() bool {
	return a.Deleted != nil
}

// Touch updates the Updated stamp. Call on every persisted mutation.
func (a *Audit) Touch(actor id.UserID, now time.Time) {
	a.Updated = NewAuditStamp(actor, now)
}

// SoftDelete sets the delete stamp. Fails when the entity is already
// deleted; the entity's lifecycle status is not touched.
func (a *Audit) SoftDelete(actor id.UserID, now time.Time) error {
	if a.IsDeleted() {
		return dErrors.New(dErrors.CodeInvariantViolation, "entity is already deleted")
	}
	stamp := NewAuditStamp(actor, now)
	a.Deleted = &stamp
	a.Updated = stamp
	return nil
}

// Restore clears the delete stamp. Fails when the entity is not deleted.
func (a *Audit) Restore(actor id.UserID, now time.Time) error {
	if !a.IsDeleted() {
		return dErrors.New(dErrors.CodeInvariantViolation, "entity is not deleted")
	}
	a.Deleted = nil
	a.Updated = NewAuditStamp(actor, now)
	return nil
}
