// Package requestid provides correlation-id middleware. An inbound
// X-Request-ID is trusted if present; otherwise a fresh UUID is assigned.
// The id is stored in the context and echoed on the response.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"dramcask/pkg/requestcontext"
)

// Header is the correlation id header.
const Header = "X-Request-ID"

// Middleware ensures every request carries a correlation id.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(Header, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
