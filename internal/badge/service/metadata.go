package service

import (
	"context"
	"strconv"
	"time"

	"insignia/internal/badge/models"
	"insignia/internal/badge/tracer"
)

// certifiedDocSuffix is the fixed suffix appended to per-student certified
// document paths.
const certifiedDocSuffix = ".json"

// Capability identifiers reported by the capability probe.
const (
	CapabilityOwnershipRegistry = "ownership_registry"
	CapabilityLockedToken       = "locked_token"
)

// ResolveMetadata deterministically maps a badge's current state to an
// external content reference:
//   - faculty badges resolve to the personal content reference set at issuance
//   - certified students resolve to a per-student document under the
//     certified folder, keyed by certification sequence number
//   - uncertified students resolve to the process-wide enrolled reference
//
// Resolution is pure: identical profile state always yields identical output.
func (s *Service) ResolveMetadata(ctx context.Context, badgeID models.BadgeID) (ref string, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanResolve,
		tracer.String(tracer.AttrBadgeID, badgeID.String()))
	defer func() { span.End(err) }()

	if s.metrics != nil {
		defer s.metrics.ObserveResolve(time.Now())
	}

	profile, err := s.store.FindByID(ctx, badgeID)
	if err != nil {
		return "", wrapBadgeErr(err, "failed to load badge")
	}

	s.mu.RLock()
	enrolledRef, certifiedFolder := s.enrolledRef, s.certifiedFolderRef
	s.mu.RUnlock()

	return resolveContentRef(profile, enrolledRef, certifiedFolder), nil
}

// resolveContentRef is the pure resolution rule.
func resolveContentRef(p *models.Profile, enrolledRef, certifiedFolder string) string {
	if ref, ok := p.ContentRef(); ok {
		return ref
	}
	if p.Certified {
		return certifiedFolder + "/" + strconv.FormatUint(p.SequenceNumber, 10) + certifiedDocSuffix
	}
	return enrolledRef
}

// IsLocked reports whether a badge is non-transferable. Every existing badge
// is locked, unconditionally.
func (s *Service) IsLocked(ctx context.Context, badgeID models.BadgeID) (bool, error) {
	if _, err := s.store.FindByID(ctx, badgeID); err != nil {
		return false, wrapBadgeErr(err, "failed to load badge")
	}
	return true, nil
}

// SupportsCapability reports support for the base ownership-registry
// capability and the locked-token capability, independent of badge state.
func (s *Service) SupportsCapability(capability string) bool {
	switch capability {
	case CapabilityOwnershipRegistry, CapabilityLockedToken:
		return true
	default:
		return false
	}
}
