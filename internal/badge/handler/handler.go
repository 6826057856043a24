package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"insignia/internal/badge/models"
	"insignia/internal/badge/service"
	dErrors "insignia/pkg/domain-errors"
	"insignia/pkg/platform/httputil"
	"insignia/pkg/requestcontext"
)

// Service defines the interface for badge lifecycle operations.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	OnboardFaculty(ctx context.Context, cmd *service.OnboardFacultyCommand) ([]*models.Profile, error)
	EnrollStudents(ctx context.Context, caller models.Identity, identities []models.Identity) ([]*models.Profile, error)
	CertifyStudent(ctx context.Context, caller models.Identity, badgeID models.BadgeID, grade string) (*models.Profile, error)
	TerminateSelf(ctx context.Context, caller models.Identity, badgeID models.BadgeID) error
	TerminateByFaculty(ctx context.Context, caller models.Identity, badgeID models.BadgeID) error
	Transfer(ctx context.Context, badgeID models.BadgeID, to models.Identity) error
	GetBadge(ctx context.Context, badgeID models.BadgeID) (*models.Profile, error)
	ResolveMetadata(ctx context.Context, badgeID models.BadgeID) (string, error)
	IsLocked(ctx context.Context, badgeID models.BadgeID) (bool, error)
	SupportsCapability(capability string) bool
	SetCertifiedFolderRef(ctx context.Context, ref string) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterOwner mounts the owner-gated administration routes. The router
// group must already carry the owner-token middleware.
func (h *Handler) RegisterOwner(r chi.Router) {
	r.Post("/admin/faculty", h.HandleOnboardFaculty)
	r.Put("/admin/certified-folder", h.HandleSetCertifiedFolder)
}

// RegisterAuthenticated mounts routes that require a bearer identity token.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Post("/badges/enroll", h.HandleEnrollStudents)
	r.Post("/badges/{id}/certify", h.HandleCertifyStudent)
	r.Delete("/badges/{id}", h.HandleTerminateSelf)
	r.Post("/badges/{id}/revoke", h.HandleTerminateByFaculty)
	r.Post("/badges/{id}/transfer", h.HandleTransfer)
}

// RegisterPublic mounts unauthenticated read-only routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/badges/{id}", h.HandleGetBadge)
	r.Get("/badges/{id}/metadata", h.HandleResolveMetadata)
	r.Get("/badges/{id}/locked", h.HandleIsLocked)
	r.Get("/capabilities/{capability}", h.HandleCapability)
}

// HandleOnboardFaculty batch-issues certified faculty badges.
func (h *Handler) HandleOnboardFaculty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[OnboardFacultyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cmd, err := req.ToCommand()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	profiles, err := h.service.OnboardFaculty(ctx, cmd)
	if err != nil {
		h.logger.ErrorContext(ctx, "onboard faculty failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toIssueBatchResponse(profiles))
}

// HandleSetCertifiedFolder updates the process-wide certified-folder reference.
func (h *Handler) HandleSetCertifiedFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SetCertifiedFolderRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.SetCertifiedFolderRef(ctx, req.Ref); err != nil {
		h.logger.ErrorContext(ctx, "set certified folder failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &CertifiedFolderResponse{Ref: req.Ref})
}

// HandleEnrollStudents batch-issues uncertified student badges.
func (h *Handler) HandleEnrollStudents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller := models.Identity(requestcontext.Identity(ctx))

	req, ok := httputil.DecodeAndPrepare[EnrollStudentsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	profiles, err := h.service.EnrollStudents(ctx, caller, req.ToIdentities())
	if err != nil {
		h.logger.ErrorContext(ctx, "enroll students failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toIssueBatchResponse(profiles))
}

// HandleCertifyStudent certifies a single student badge exactly once.
func (h *Handler) HandleCertifyStudent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller := models.Identity(requestcontext.Identity(ctx))

	badgeID, ok := parseBadgeID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CertifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	profile, err := h.service.CertifyStudent(ctx, caller, badgeID, req.Grade)
	if err != nil {
		h.logger.ErrorContext(ctx, "certify student failed", "error", err, "request_id", requestID, "badge_id", badgeID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toProfileResponse(profile))
}

// HandleTerminateSelf burns the caller's own badge.
func (h *Handler) HandleTerminateSelf(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller := models.Identity(requestcontext.Identity(ctx))

	badgeID, ok := parseBadgeID(w, r)
	if !ok {
		return
	}

	if err := h.service.TerminateSelf(ctx, caller, badgeID); err != nil {
		h.logger.ErrorContext(ctx, "terminate badge failed", "error", err, "request_id", requestID, "badge_id", badgeID)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleTerminateByFaculty revokes any badge on behalf of a faculty caller.
func (h *Handler) HandleTerminateByFaculty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller := models.Identity(requestcontext.Identity(ctx))

	badgeID, ok := parseBadgeID(w, r)
	if !ok {
		return
	}

	if err := h.service.TerminateByFaculty(ctx, caller, badgeID); err != nil {
		h.logger.ErrorContext(ctx, "revoke badge failed", "error", err, "request_id", requestID, "badge_id", badgeID)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleTransfer rejects any attempt to move a badge between identities.
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	badgeID, ok := parseBadgeID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[TransferRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.Transfer(ctx, badgeID, models.Identity(req.To)); err != nil {
		httputil.WriteError(w, err)
		return
	}

	// Unreachable today: Transfer always fails for existing badges.
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
}

// HandleGetBadge returns the profile for a badge id.
func (h *Handler) HandleGetBadge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	badgeID, ok := parseBadgeID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetBadge(ctx, badgeID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get badge failed", "error", err, "request_id", requestID, "badge_id", badgeID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toProfileResponse(profile))
}

// HandleResolveMetadata resolves a badge to its external content reference.
func (h *Handler) HandleResolveMetadata(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	badgeID, ok := parseBadgeID(w, r)
	if !ok {
		return
	}

	ref, err := h.service.ResolveMetadata(ctx, badgeID)
	if err != nil {
		h.logger.ErrorContext(ctx, "resolve metadata failed", "error", err, "request_id", requestID, "badge_id", badgeID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &MetadataResponse{
		BadgeID:    uint64(badgeID),
		ContentRef: ref,
	})
}

// HandleIsLocked reports whether a badge is non-transferable.
func (h *Handler) HandleIsLocked(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	badgeID, ok := parseBadgeID(w, r)
	if !ok {
		return
	}

	locked, err := h.service.IsLocked(ctx, badgeID)
	if err != nil {
		h.logger.ErrorContext(ctx, "locked probe failed", "error", err, "request_id", requestID, "badge_id", badgeID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &LockedResponse{
		BadgeID: uint64(badgeID),
		Locked:  locked,
	})
}

// HandleCapability reports whether the registry supports a capability.
func (h *Handler) HandleCapability(w http.ResponseWriter, r *http.Request) {
	capability := chi.URLParam(r, "capability")

	httputil.WriteJSON(w, http.StatusOK, &CapabilityResponse{
		Capability: capability,
		Supported:  h.service.SupportsCapability(capability),
	})
}

// parseBadgeID extracts and validates the badge id path parameter.
// On failure it writes a bad request response and returns false.
func parseBadgeID(w http.ResponseWriter, r *http.Request) (models.BadgeID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid badge id"))
		return 0, false
	}
	return models.BadgeID(id), true
}
