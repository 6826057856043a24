package handler

import (
	"time"

	"insignia/internal/badge/models"
)

type ProfileResponse struct {
	BadgeID        uint64     `json:"badge_id"`
	Holder         string     `json:"holder"`
	Role           string     `json:"role"`
	Certified      bool       `json:"certified"`
	SequenceNumber uint64     `json:"sequence_number,omitempty"`
	Grade          string     `json:"grade,omitempty"`
	ContentRef     string     `json:"content_ref,omitempty"`
	IssuedAt       time.Time  `json:"issued_at"`
	CertifiedAt    *time.Time `json:"certified_at,omitempty"`
}

type IssueBatchResponse struct {
	Badges []*ProfileResponse `json:"badges"`
}

type MetadataResponse struct {
	BadgeID    uint64 `json:"badge_id"`
	ContentRef string `json:"content_ref"`
}

type LockedResponse struct {
	BadgeID uint64 `json:"badge_id"`
	Locked  bool   `json:"locked"`
}

type CapabilityResponse struct {
	Capability string `json:"capability"`
	Supported  bool   `json:"supported"`
}

type CertifiedFolderResponse struct {
	Ref string `json:"ref"`
}

// Response mapping functions - convert domain objects to HTTP DTOs

func toProfileResponse(p *models.Profile) *ProfileResponse {
	resp := &ProfileResponse{
		BadgeID:        uint64(p.ID),
		Holder:         p.Holder.String(),
		Role:           string(p.Role),
		Certified:      p.Certified,
		SequenceNumber: p.SequenceNumber,
		IssuedAt:       p.IssuedAt,
	}
	if ref, ok := p.ContentRef(); ok {
		resp.ContentRef = ref
	}
	if grade, ok := p.Grade(); ok {
		resp.Grade = grade
	}
	if !p.CertifiedAt.IsZero() {
		at := p.CertifiedAt
		resp.CertifiedAt = &at
	}
	return resp
}

func toIssueBatchResponse(profiles []*models.Profile) *IssueBatchResponse {
	badges := make([]*ProfileResponse, len(profiles))
	for i, p := range profiles {
		badges[i] = toProfileResponse(p)
	}
	return &IssueBatchResponse{Badges: badges}
}
