package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"sellout-dashboard/internal/auth"
	"sellout-dashboard/internal/errors"
	"sellout-dashboard/internal/observability"
)

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/login"

// SessionLookup resolves a session cookie value.
type SessionLookup interface {
	Session(id string) (*auth.Session, bool)
}

// RequireSession lets a request through only when its cookie names a live
// session. Page requests without one are redirected to the login page;
// API and SSE requests get a 401 envelope.
func RequireSession(lookup SessionLookup, cookieName string, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *auth.Session
			if c, err := r.Cookie(cookieName); err == nil {
				sess, _ = lookup.Session(c.Value)
			}

			if sess == nil {
				if wantsJSON(r) {
					errors.WriteError(w, logger, errors.Unauthorized("Sesi tidak valid, silakan login kembali"),
						observability.GetRequestID(r.Context()))
					return
				}
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			ctx := auth.WithSession(r.Context(), sess)
			ctx = observability.WithSessionID(ctx, sess.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.HasPrefix(r.URL.Path, "/sse/") ||
		r.Header.Get("Datastar-Request") == "true"
}
