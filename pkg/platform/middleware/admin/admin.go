package admin

import (
	"context"
	"log/slog"
	"net/http"

	"insignia/pkg/requestcontext"
	"insignia/pkg/secrets"
)

// Context key for storing the owner actor identifier.
type contextKeyOwnerActorID struct{}

// ContextKeyOwnerActorID is exported for use in handlers and tests.
var ContextKeyOwnerActorID = contextKeyOwnerActorID{}

// GetOwnerActorID retrieves the owner actor identifier from the context.
// Returns empty string if not set or if this is not an owner request.
func GetOwnerActorID(ctx context.Context) string {
	if actorID, ok := ctx.Value(ContextKeyOwnerActorID).(string); ok {
		return actorID
	}
	return ""
}

// RequireOwnerToken gates owner-only routes behind the X-Owner-Token header.
// The expected token is stored as a bcrypt hash so the plaintext never lives
// in process memory longer than startup.
func RequireOwnerToken(tokenHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Owner-Token")
			if err := secrets.Verify(token, tokenHash); err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "owner token mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"owner token required"}`))
				return
			}

			ctx := r.Context()
			// Capture the owner actor identifier for audit attribution.
			// This header identifies who performed the privileged action.
			if actorID := r.Header.Get("X-Owner-Actor-ID"); actorID != "" {
				ctx = context.WithValue(ctx, ContextKeyOwnerActorID, actorID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
