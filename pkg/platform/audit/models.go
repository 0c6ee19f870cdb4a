// Package audit captures lifecycle-affecting actions as events.
//
// Emitters run inside the calling operation's transaction: the Postgres
// emitter appends to an outbox table on the transaction carried by the
// context, and the relay worker publishes committed rows to Kafka. Kafka
// consumers (moderation tooling, history projections) are downstream of
// this package.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "dramcask/pkg/domain"
)

// Action names a lifecycle event worth auditing.
type Action string

const (
	EventEntityCreated     Action = "entity_created"
	EventRevisionSubmitted Action = "revision_submitted"
	EventRevisionApproved  Action = "revision_approved"
	EventRevisionRejected  Action = "revision_rejected"
	EventEntityDeleted     Action = "entity_deleted"
	EventEntityRestored    Action = "entity_restored"
)

// Event is emitted from the revision engine to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Action     Action    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id"`
	RevisionID uuid.UUID `json:"revision_id,omitempty"`
	Actor      id.UserID `json:"actor"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
}

// Emitter records audit events. Implementations must honor the transaction
// carried by the context so a rolled-back operation leaves no event behind.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
