// Package httptransport wires the badge handlers and middleware into routers.
// It should delegate to domain services without embedding business logic so
// transport concerns remain isolated.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	badgehandler "insignia/internal/badge/handler"
	"insignia/internal/platform/health"
	"insignia/pkg/platform/middleware/admin"
	"insignia/pkg/platform/middleware/auth"
	"insignia/pkg/platform/middleware/metadata"
	request "insignia/pkg/platform/middleware/request"
)

// maxBodyBytes bounds request bodies; batch issuance payloads stay well under this.
const maxBodyBytes = 1 << 20

// Deps carries everything the API router needs.
type Deps struct {
	Badges         *badgehandler.Handler
	TokenValidator auth.TokenValidator
	OwnerTokenHash string
	Metrics        *request.Metrics
	Logger         *slog.Logger
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(metadata.Handler)
	r.Use(request.Logger(d.Logger))
	r.Use(request.Timeout(30 * time.Second))
	r.Use(request.ContentTypeJSON)
	r.Use(request.BodyLimit(maxBodyBytes))
	r.Use(request.LatencyMiddleware(d.Metrics))

	// Unauthenticated reads
	r.Group(func(r chi.Router) {
		d.Badges.RegisterPublic(r)
	})

	// Holder and faculty operations behind bearer tokens
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(d.TokenValidator, d.Logger))
		d.Badges.RegisterAuthenticated(r)
	})

	// Owner administration behind the owner token
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireOwnerToken(d.OwnerTokenHash, d.Logger))
		d.Badges.RegisterOwner(r)
	})

	return r
}

// NewOpsRouter wires the operational endpoints served on the ops listener.
func NewOpsRouter(healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
