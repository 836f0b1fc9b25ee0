// Package admin restricts routes to authenticated administrators.
package admin

import (
	"context"
	"log/slog"
	"net/http"

	id "lockme/pkg/domain"
	"lockme/pkg/requestcontext"
)

// Checker decides whether a user holds admin rights.
type Checker interface {
	IsAdmin(ctx context.Context, userID id.UserID) (bool, error)
}

// RequireAdmin answers 403 for authenticated non-admins. It must run after
// auth.RequireAuth; a request without a principal is treated as non-admin.
func RequireAdmin(checker Checker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := requestcontext.UserID(ctx)

			ok := false
			if !userID.IsNil() {
				var err error
				ok, err = checker.IsAdmin(ctx, userID)
				if err != nil {
					logger.ErrorContext(ctx, "admin check failed",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
					ok = false
				}
			}
			if !ok {
				logger.WarnContext(ctx, "admin access denied",
					"user_id", userID.String(),
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"admin access required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
