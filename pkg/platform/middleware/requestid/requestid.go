// Package requestid assigns every request an ID that is echoed in the
// X-Request-ID response header and carried in log lines.
package requestid

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"axioma/pkg/requestcontext"
)

// Header is the request/response header carrying the ID.
const Header = "X-Request-ID"

const maxInboundLength = 128

// Middleware reuses a well-formed inbound X-Request-ID or generates a new one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(Header))
		if id == "" || len(id) > maxInboundLength {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
