package middleware

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/andre/internal/router"
	"github.com/dukerupert/andre/internal/session"
)

// LoadSession resolves the session cookie and attaches the visitor's
// session.State to the request context. Unknown cookies yield an empty state.
func LoadSession(mgr *session.Manager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st, err := mgr.Load(w, r)
			if err != nil {
				logger.Error("load session", "error", err)
				http.Error(w, "server error", http.StatusInternalServerError)
				return
			}
			ctx := session.WithState(r.Context(), st)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTransactions sends visitors without stored transactions back to the
// landing page. HTMX-aware: returns HX-Redirect header instead of 303 redirect
// for HTMX requests.
func RequireTransactions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.Authorized(r.Context()) {
			redirectToLanding(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func redirectToLanding(w http.ResponseWriter, r *http.Request) {
	target := router.Index.Path()
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
