package engine_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"dramcask/internal/revision/engine"
	"dramcask/internal/revision/models"
	revisionstore "dramcask/internal/revision/store/revision"
	id "dramcask/pkg/domain"
	dErrors "dramcask/pkg/domain-errors"
	"dramcask/pkg/platform/audit"
	"dramcask/pkg/platform/sentinel"
	"dramcask/pkg/requestcontext"
)

// cask is a minimal revisable entity used to exercise the engine without
// dragging in a full domain package.
type cask struct {
	ID     uuid.UUID
	Name   string
	Proof  *int
	Status models.LifecycleStatus
	Stamps models.Audit
}

func (c *cask) EntityID() uuid.UUID                        { return c.ID }
func (c *cask) LifecycleStatus() models.LifecycleStatus    { return c.Status }
func (c *cask) UpdateStatus(status models.LifecycleStatus) { c.Status = status }
func (c *cask) AuditTrail() *models.Audit                  { return &c.Stamps }

type caskRequest struct {
	Name  string `json:"name"`
	Proof *int   `json:"proof,omitempty"`
}

type caskAdapter struct{}

func (caskAdapter) EntityType() models.EntityType { return "cask" }

func (caskAdapter) HasAdditionalData(req caskRequest) bool { return req.Proof != nil }

func (caskAdapter) NewEntity(req caskRequest, status models.LifecycleStatus, stamps models.Audit) (*cask, error) {
	if req.Name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "cask name must not be empty")
	}
	return &cask{ID: uuid.New(), Name: req.Name, Status: status, Stamps: stamps}, nil
}

func (caskAdapter) BuildPayload(req caskRequest, snapshot models.LifecycleStatus) (models.Payload, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return models.Payload{}, err
	}
	return models.Payload{
		SchemaVersion:  models.DefaultSchemaVersion,
		SnapshotStatus: snapshot,
		Data:           data,
	}, nil
}

func (caskAdapter) ApplyPayload(c *cask, payload models.Payload) error {
	var req caskRequest
	if err := json.Unmarshal(payload.Data, &req); err != nil {
		return err
	}
	c.Name = req.Name
	c.Proof = req.Proof
	return nil
}

// caskStore is a clone-free in-memory store; the engine mutates entities it
// loaded, so the store hands back copies to mimic real persistence.
type caskStore struct {
	mu    sync.Mutex
	casks map[uuid.UUID]cask
}

func newCaskStore() *caskStore {
	return &caskStore{casks: make(map[uuid.UUID]cask)}
}

func (s *caskStore) Create(_ context.Context, c *cask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.casks[c.ID]; exists {
		return sentinel.ErrDuplicateKey
	}
	s.casks[c.ID] = *c
	return nil
}

func (s *caskStore) FindByID(_ context.Context, entityID uuid.UUID) (*cask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.casks[entityID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &stored, nil
}

func (s *caskStore) Update(_ context.Context, c *cask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.casks[c.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.casks[c.ID] = *c
	return nil
}

var (
	reviewer = id.UserID(uuid.MustParse("00000000-0000-0000-0000-000000000101"))
	editor   = id.UserID(uuid.MustParse("00000000-0000-0000-0000-000000000102"))
	fixedNow = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
)

type fixture struct {
	engine    *engine.Engine[*cask, caskRequest]
	casks     *caskStore
	revisions *revisionstore.InMemory
	emitter   *audit.MemoryEmitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	casks := newCaskStore()
	revisions := revisionstore.NewInMemory()
	emitter := audit.NewMemoryEmitter()
	eng := engine.New[*cask, caskRequest](casks, revisions, caskAdapter{},
		engine.WithAuditEmitter(emitter),
	)
	return &fixture{engine: eng, casks: casks, revisions: revisions, emitter: emitter}
}

func actorCtx(actor id.UserID) context.Context {
	ctx := requestcontext.WithUserID(context.Background(), actor)
	return requestcontext.WithTime(ctx, fixedNow)
}

func intPtr(v int) *int { return &v }

func TestCreate(t *testing.T) {
	t.Run("mandatory-only request creates a draft with no revision", func(t *testing.T) {
		f := newFixture(t)
		ctx := actorCtx(editor)

		created, err := f.engine.Create(ctx, caskRequest{Name: "Octave"})
		require.NoError(t, err)

		assert.Equal(t, models.StatusDraft, created.Status)
		assert.Equal(t, editor, created.Stamps.Created.By)
		assert.Equal(t, fixedNow, created.Stamps.Created.At)

		_, err = f.engine.PendingRevision(ctx, created.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("request with optional data goes into review with a pending revision", func(t *testing.T) {
		f := newFixture(t)
		ctx := actorCtx(editor)

		created, err := f.engine.Create(ctx, caskRequest{Name: "Octave", Proof: intPtr(92)})
		require.NoError(t, err)
		assert.Equal(t, models.StatusInReview, created.Status)

		// The entity itself holds only mandatory fields until approval.
		stored, err := f.casks.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.Proof)

		rev, err := f.engine.PendingRevision(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RevisionInReview, rev.Status)
		assert.Equal(t, models.StatusDraft, rev.Payload.SnapshotStatus)

		var payload caskRequest
		require.NoError(t, json.Unmarshal(rev.Payload.Data, &payload))
		assert.Equal(t, "Octave", payload.Name)
		require.NotNil(t, payload.Proof)
		assert.Equal(t, 92, *payload.Proof)
	})

	t.Run("invalid request surfaces as a validation error", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.engine.Create(actorCtx(editor), caskRequest{Name: ""})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("emits an entity created audit event", func(t *testing.T) {
		f := newFixture(t)

		created, err := f.engine.Create(actorCtx(editor), caskRequest{Name: "Octave"})
		require.NoError(t, err)

		events := f.emitter.Events()
		require.Len(t, events, 1)
		assert.Equal(t, audit.EventEntityCreated, events[0].Action)
		assert.Equal(t, created.ID, events[0].EntityID)
		assert.Equal(t, editor, events[0].Actor)
	})
}

func TestSubmitRevision(t *testing.T) {
	t.Run("submit from draft records the draft snapshot", func(t *testing.T) {
		f := newFixture(t)
		ctx := actorCtx(editor)

		created, err := f.engine.Create(ctx, caskRequest{Name: "Octave"})
		require.NoError(t, err)

		rev, err := f.engine.SubmitRevision(ctx, created.ID, caskRequest{Name: "Octave", Proof: intPtr(95)})
		require.NoError(t, err)
		assert.Equal(t, models.StatusDraft, rev.Payload.SnapshotStatus)

		stored, err := f.casks.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusInReview, stored.Status)
	})

	t.Run("submit from confirmed records the confirmed snapshot", func(t *testing.T) {
		f := newFixture(t)
		ctx := actorCtx(editor)

		created := confirmedCask(t, f, ctx)

		rev, err := f.engine.SubmitRevision(ctx, created, caskRequest{Name: "Quarter Cask", Proof: intPtr(80)})
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, rev.Payload.SnapshotStatus)
	})

	t.Run("submit on a suppressed entity is refused without mutation", func(t *testing.T) {
		f := newFixture(t)
		ctx := actorCtx(editor)

		created, err := f.engine.Create(ctx, caskRequest{Name: "Octave"})
		require.NoError(t, err)

		suppressed, err := f.casks.FindByID(ctx, created.ID)
		require.NoError(t, err)
		suppressed.Status = models.StatusSuppressed
		require.NoError(t, f.casks.Update(ctx, suppressed))

		_, err = f.engine.SubmitRevision(ctx, created.ID, caskRequest{Name: "Renamed"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
		assert.Contains(t, err.Error(), "suppressed")

		stored, err := f.casks.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusSuppressed, stored.Status)
		assert.Equal(t, "Octave", stored.Name)
	})

	t.Run("second submit while one is pending is refused", func(t *testing.T) {
		f := newFixture(t)
		ctx := actorCtx(editor)

		created, err := f.engine.Create(ctx, caskRequest{Name: "Octave"})
		require.NoError(t, err)

		_, err = f.engine.SubmitRevision(ctx, created.ID, caskRequest{Name: "First"})
		require.NoError(t, err)

		_, err = f.engine.SubmitRevision(ctx, created.ID, caskRequest{Name: "Second"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
		assert.Contains(t, err.Error(), "already in review")
	})

	t.Run("submit against an unknown entity fails with not found", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.engine.SubmitRevision(actorCtx(editor), uuid.New(), caskRequest{Name: "Ghost"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("submit against a soft-deleted entity fails with not found", func(t *testing.T) {
		f := newFixture(t)
		ctx := actorCtx(editor)

		created, err := f.engine.Create(ctx, caskRequest{Name: "Octave"})
		require.NoError(t, err)
		require.NoError(t, f.engine.SoftDelete(ctx, created.ID))

		_, err = f.engine.SubmitRevision(ctx, created.ID, caskRequest{Name: "Octave", Proof: intPtr(92)})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

		// Restoring brings the entity back into circulation.
		require.NoError(t, f.engine.Restore(ctx, created.ID))
		_, err = f.engine.SubmitRevision(ctx, created.ID, caskRequest{Name: "Octave", Proof: intPtr(92)})
		require.NoError(t, err)
	})

	t.Run("concurrent submitters yield exactly one pending revision", func(t *testing.T) {
		f := newFixture(t)
		ctx := actorCtx(editor)

		created, err := f.engine.Create(ctx, caskRequest{Name: "Octave"})
		require.NoError(t, err)

		const submitters = 16
		var (
			mu        sync.Mutex
			successes int
		)
		var group errgroup.Group
		for i := 0; i < submitters; i++ {
			group.Go(func() error {
				_, err := f.engine.SubmitRevision(ctx, created.ID, caskRequest{Name: "Racer"})
				if err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
					return nil
				}
				if dErrors.HasCode(err, dErrors.CodeInvalidState) || dErrors.HasCode(err, dErrors.CodeConflict) {
					return nil
				}
				return err
			})
		}
		require.NoError(t, group.Wait())
		assert.Equal(t, 1, successes)

		rev, err := f.engine.PendingRevision(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, rev.IsPending())
	})
}

func TestReview(t *testing.T) {
	t.Run("approve applies the payload and confirms the entity", func(t *testing.T) {
		f := newFixture(t)
		ctx := actorCtx(editor)

		created, err := f.engine.Create(ctx, caskRequest{Name: "Octave", Proof: intPtr(92)})
		require.NoError(t, err)
		rev, err := f.engine.PendingRevision(ctx, created.ID)
		require.NoError(t, err)

		reviewed, err := f.engine.Approve(actorCtx(reviewer), rev.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RevisionApproved, reviewed.Status)
		require.NotNil(t, reviewed.Reviewed)
		assert.Equal(t, reviewer, reviewed.Reviewed.By)

		stored, err := f.casks.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, stored.Status)
		require.NotNil(t, stored.Proof)
		assert.Equal(t, 92, *stored.Proof)
	})

	t.Run("reject restores the snapshot status and leaves fields untouched", func(t *testing.T) {
		f := newFixture(t)
		ctx := actorCtx(editor)

		created := confirmedCask(t, f, ctx)

		rev, err := f.engine.SubmitRevision(ctx, created, caskRequest{Name: "Renamed", Proof: intPtr(120)})
		require.NoError(t, err)

		reviewed, err := f.engine.Reject(actorCtx(reviewer), rev.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RevisionRejected, reviewed.Status)

		stored, err := f.casks.FindByID(ctx, created)
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, stored.Status)
		assert.Equal(t, "Octave", stored.Name)
	})

	t.Run("reviewing a reviewed revision is refused", func(t *testing.T) {
		f := newFixture(t)
		ctx := actorCtx(editor)

		created, err := f.engine.Create(ctx, caskRequest{Name: "Octave", Proof: intPtr(92)})
		require.NoError(t, err)
		rev, err := f.engine.PendingRevision(ctx, created.ID)
		require.NoError(t, err)

		_, err = f.engine.Approve(actorCtx(reviewer), rev.ID)
		require.NoError(t, err)

		_, err = f.engine.Reject(actorCtx(reviewer), rev.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))

		_, err = f.engine.Approve(actorCtx(reviewer), rev.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("reviewing an unknown revision fails with not found", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.engine.Approve(actorCtx(reviewer), id.RevisionID(uuid.New()))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("review while the entity left in-review is refused", func(t *testing.T) {
		f := newFixture(t)
		ctx := actorCtx(editor)

		created, err := f.engine.Create(ctx, caskRequest{Name: "Octave", Proof: intPtr(92)})
		require.NoError(t, err)
		rev, err := f.engine.PendingRevision(ctx, created.ID)
		require.NoError(t, err)

		// Suppressed while the review sat in a queue.
		stored, err := f.casks.FindByID(ctx, created.ID)
		require.NoError(t, err)
		stored.Status = models.StatusSuppressed
		require.NoError(t, f.casks.Update(ctx, stored))

		_, err = f.engine.Approve(actorCtx(reviewer), rev.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("review of a revision whose entity was deleted fails with not found", func(t *testing.T) {
		f := newFixture(t)
		ctx := actorCtx(editor)

		created, err := f.engine.Create(ctx, caskRequest{Name: "Octave", Proof: intPtr(92)})
		require.NoError(t, err)
		rev, err := f.engine.PendingRevision(ctx, created.ID)
		require.NoError(t, err)

		require.NoError(t, f.engine.SoftDelete(ctx, created.ID))

		_, err = f.engine.Approve(actorCtx(reviewer), rev.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("emits a review audit event", func(t *testing.T) {
		f := newFixture(t)
		ctx := actorCtx(editor)

		created, err := f.engine.Create(ctx, caskRequest{Name: "Octave", Proof: intPtr(92)})
		require.NoError(t, err)
		rev, err := f.engine.PendingRevision(ctx, created.ID)
		require.NoError(t, err)

		_, err = f.engine.Approve(actorCtx(reviewer), rev.ID)
		require.NoError(t, err)

		events := f.emitter.Events()
		last := events[len(events)-1]
		assert.Equal(t, audit.EventRevisionApproved, last.Action)
		assert.Equal(t, reviewer, last.Actor)
		assert.Equal(t, uuid.UUID(rev.ID), last.RevisionID)
	})
}

func TestSoftDelete(t *testing.T) {
	t.Run("delete and restore round trip preserves the lifecycle status", func(t *testing.T) {
		f := newFixture(t)
		ctx := actorCtx(editor)

		created := confirmedCask(t, f, ctx)

		require.NoError(t, f.engine.SoftDelete(ctx, created))
		deleted, err := f.engine.IsDeleted(ctx, created)
		require.NoError(t, err)
		assert.True(t, deleted)

		stored, err := f.casks.FindByID(ctx, created)
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, stored.Status)

		require.NoError(t, f.engine.Restore(ctx, created))
		deleted, err = f.engine.IsDeleted(ctx, created)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("double delete is refused", func(t *testing.T) {
		f := newFixture(t)
		ctx := actorCtx(editor)

		created := confirmedCask(t, f, ctx)
		require.NoError(t, f.engine.SoftDelete(ctx, created))

		err := f.engine.SoftDelete(ctx, created)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
		assert.Contains(t, err.Error(), "already deleted")
	})

	t.Run("restoring a live entity is refused", func(t *testing.T) {
		f := newFixture(t)
		ctx := actorCtx(editor)

		created := confirmedCask(t, f, ctx)

		err := f.engine.Restore(ctx, created)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
		assert.Contains(t, err.Error(), "not deleted")
	})

	t.Run("unknown entity fails with not found", func(t *testing.T) {
		f := newFixture(t)

		err := f.engine.SoftDelete(actorCtx(editor), uuid.New())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// confirmedCask creates a cask and walks it to CONFIRMED through a full
// submit and approve cycle.
func confirmedCask(t *testing.T, f *fixture, ctx context.Context) uuid.UUID {
	t.Helper()

	created, err := f.engine.Create(ctx, caskRequest{Name: "Octave", Proof: intPtr(92)})
	require.NoError(t, err)
	rev, err := f.engine.PendingRevision(ctx, created.ID)
	require.NoError(t, err)
	_, err = f.engine.Approve(actorCtx(reviewer), rev.ID)
	require.NoError(t, err)
	return created.ID
}
