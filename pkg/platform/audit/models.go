package audit

import "time"

// Event is emitted from domain logic to capture key lifecycle actions. Keep
// it transport-agnostic so sinks can fan out without knowing about HTTP.
type Event struct {
	Timestamp time.Time
	Action    Action
	BadgeID   string
	Holder    string
	Role      string
	Grade     string
	// Actor is the authenticated caller identity; empty for operations gated
	// by the platform administrator check.
	Actor string
	// Enrichment fields filled from request context by the publisher.
	RequestID string
	Device    string
}

type Action string

const (
	ActionBadgeIssued            Action = "badge_issued"
	ActionBadgeCertified         Action = "badge_certified"
	ActionBadgeTerminated        Action = "badge_terminated"
	ActionCertifiedFolderUpdated Action = "certified_folder_updated"
)
