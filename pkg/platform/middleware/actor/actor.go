// Package actor resolves the acting user for a request.
//
// Identity resolution is an external collaborator: an upstream gateway
// authenticates the caller and forwards the resulting user id in the
// X-User-ID header. This middleware parses the header into the context;
// handlers that mutate state reject requests without one. There is no
// token validation here on purpose.
package actor

import (
	"log/slog"
	"net/http"

	id "dramcask/pkg/domain"
	"dramcask/pkg/platform/httputil"
	"dramcask/pkg/requestcontext"
)

// Header carries the authenticated user id set by the gateway.
const Header = "X-User-ID"

// Middleware parses the forwarded user id into the context. A missing
// header passes through with no actor set; a malformed one is rejected.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(Header)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := id.ParseUserID(raw)
			if err != nil {
				logger.WarnContext(r.Context(), "rejected malformed user id header",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", err,
				)
				httputil.WriteError(w, err)
				return
			}

			ctx := requestcontext.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
