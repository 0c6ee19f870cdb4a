package testutil

import (
	"context"
	"net/http"
	"time"

	id "dramcask/pkg/domain"
	"dramcask/pkg/requestcontext"
)

// ActorContext builds a context carrying an acting user and a fixed time,
// the state the middleware chain produces for an authenticated request.
func ActorContext(actor id.UserID, now time.Time) context.Context {
	ctx := requestcontext.WithUserID(context.Background(), actor)
	return requestcontext.WithTime(ctx, now)
}

// WithActor adds an acting user to the request context. This simulates what
// the actor middleware would do for a forwarded identity.
func WithActor(req *http.Request, actor id.UserID) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), actor)
	return req.WithContext(ctx)
}

// WithRequestTime pins the request-scoped time.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	ctx := requestcontext.WithTime(req.Context(), now)
	return req.WithContext(ctx)
}
