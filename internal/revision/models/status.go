package models

import "fmt"

// LifecycleStatus is the status an entity with review semantics carries.
// It governs which engine operations are legal.
type LifecycleStatus string

const (
	// StatusDraft: just created with only mandatory fields, not yet reviewed.
	StatusDraft LifecycleStatus = "DRAFT"

	// StatusInReview: a pending revision exists for the entity.
	StatusInReview LifecycleStatus = "IN_REVIEW"

	// StatusConfirmed: the latest revision was approved.
	StatusConfirmed LifecycleStatus = "CONFIRMED"

	// StatusSuppressed: hidden (e.g. after a report); no revisions accepted.
	StatusSuppressed LifecycleStatus = "SUPPRESSED"
)

// ParseLifecycleStatus validates a raw status value read from storage.
func ParseLifecycleStatus(raw string) (LifecycleStatus, error) {
	switch s := LifecycleStatus(raw); s {
	case StatusDraft, StatusInReview, StatusConfirmed, StatusSuppressed:
		return s, nil
	default:
		return "", fmt.Errorf("unknown lifecycle status %q", raw)
	}
}

// Event is an engine action that triggers a lifecycle transition.
type Event string

const (
	// EventSubmit: a revision is submitted against the entity.
	EventSubmit Event = "submit"

	// EventApprove: the pending revision is approved.
	EventApprove Event = "approve"
)

// Transition defines a valid lifecycle change: an event moves an entity from
// Src to Dst.
type Transition struct {
	Event Event
	Src   LifecycleStatus
	Dst   LifecycleStatus
}

// Transitions defines all event-driven lifecycle changes. Rejection is not
// listed: its destination is the snapshot status captured at submission, so
// the engine applies it directly after checking the entity is in review.
// This table is domain knowledge consumed by the FSM adapter.
var Transitions = []Transition{
	{Event: EventSubmit, Src: StatusDraft, Dst: StatusInReview},
	{Event: EventSubmit, Src: StatusConfirmed, Dst: StatusInReview},
	{Event: EventApprove, Src: StatusInReview, Dst: StatusConfirmed},
}

// RevisionStatus is a revision's own review state, independent of the target
// entity's lifecycle status.
type RevisionStatus string

const (
	// RevisionInReview: submitted, awaiting a review decision.
	RevisionInReview RevisionStatus = "IN_REVIEW"

	// RevisionApproved: applied to the target entity.
	RevisionApproved RevisionStatus = "APPROVED"

	// RevisionRejected: discarded; the target entity was left untouched.
	RevisionRejected RevisionStatus = "REJECTED"
)

// ParseRevisionStatus validates a raw revision status read from storage.
func ParseRevisionStatus(raw string) (RevisionStatus, error) {
	switch s := RevisionStatus(raw); s {
	case RevisionInReview, RevisionApproved, RevisionRejected:
		return s, nil
	default:
		return "", fmt.Errorf("unknown revision status %q", raw)
	}
}
