package handler

import (
	"context"
	"net/http"

	"github.com/prime-insurance/claims-portal-bfa/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "dashboardSession"

// SessionMiddleware loads the dashboard session named by {sessionId} and injects it into context.
func SessionMiddleware(sessions *service.SessionStore, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "sessionId")
			if id == "" {
				writeError(w, http.StatusBadRequest, "sessionId is required")
				return
			}

			ctrl, err := sessions.Get(id)
			if err != nil {
				logger.Debug("session: lookup failed",
					zap.String("session_id", id),
					zap.String("path", r.URL.Path),
				)
				handleServiceError(w, err, logger)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, ctrl)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext extracts the dashboard session from context.
func SessionFromContext(ctx context.Context) *service.ReportController {
	v, _ := ctx.Value(sessionKey).(*service.ReportController)
	return v
}
