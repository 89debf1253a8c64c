package middleware

import (
	"net/http"
	"strings"

	"github.com/diewo77/program-ledger/internal/audit"
)

// Actor lifts the caller identity from the X-Edited-By header into the
// request context so the audit hook can attribute changes. Requests without
// the header fall back to the audit package's system placeholder.
//
// TODO: replace the header with the authenticated session identity once a
// login flow exists in front of this API.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor := strings.TrimSpace(r.Header.Get("X-Edited-By")); actor != "" {
			r = r.WithContext(audit.WithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}
