package models

import (
	"strconv"
	"time"

	dErrors "insignia/pkg/domain-errors"
)

// Identity is an opaque, externally-authenticated principal. The core never
// interprets it; authentication happens outside the lifecycle operations.
type Identity string

func (i Identity) String() string { return string(i) }
func (i Identity) IsEmpty() bool  { return i == "" }

// BadgeID is a strictly-increasing integer identifier, assigned once by the
// store's allocator and never reused.
type BadgeID uint64

func (id BadgeID) String() string { return strconv.FormatUint(uint64(id), 10) }

// Role is fixed at badge creation; no operation changes it.
type Role string

const (
	RoleStudent           Role = "student"
	RoleTeachingAssistant Role = "teaching_assistant"
	RoleTeacher           Role = "teacher"
)

// ParseRole validates role values at trust boundaries (handlers, API inputs).
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleTeachingAssistant, RoleTeacher:
		return Role(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidRole, "unknown role: "+s)
	}
}

// IsFaculty reports whether the role belongs to the trusted tier.
func (r Role) IsFaculty() bool {
	return r == RoleTeachingAssistant || r == RoleTeacher
}

// Draft describes a badge to be issued. ContentRef is only meaningful for
// faculty roles; student drafts leave it empty.
type Draft struct {
	Holder     Identity
	Role       Role
	ContentRef string
}

// Profile is the per-badge record. The payload field is a role-tagged union:
// for faculty it holds the personal content reference, for students the grade
// string (empty until certification). Accessors expose only the variant that
// matches the role so the other interpretation is unreachable.
type Profile struct {
	ID             BadgeID
	Holder         Identity
	Role           Role
	Certified      bool
	SequenceNumber uint64
	IssuedAt       time.Time
	CertifiedAt    time.Time

	payload string
}

// NewFacultyProfile creates a certified faculty profile. Faculty are trusted
// by construction, so the badge starts certified with sequence number zero.
func NewFacultyProfile(id BadgeID, holder Identity, role Role, contentRef string, now time.Time) (*Profile, error) {
	if holder.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeValidation, "holder identity cannot be empty")
	}
	if !role.IsFaculty() {
		return nil, dErrors.New(dErrors.CodeInvalidRole, "faculty badge requires a faculty role")
	}
	return &Profile{
		ID:        id,
		Holder:    holder,
		Role:      role,
		Certified: true,
		IssuedAt:  now,
		payload:   contentRef,
	}, nil
}

// NewStudentProfile creates an uncertified student profile with an empty grade.
func NewStudentProfile(id BadgeID, holder Identity, now time.Time) (*Profile, error) {
	if holder.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeValidation, "holder identity cannot be empty")
	}
	return &Profile{
		ID:       id,
		Holder:   holder,
		Role:     RoleStudent,
		IssuedAt: now,
	}, nil
}

// ContentRef returns the faculty's personal content reference.
// The second return value is false for student badges.
func (p *Profile) ContentRef() (string, bool) {
	if !p.Role.IsFaculty() {
		return "", false
	}
	return p.payload, true
}

// Grade returns the student's grade string.
// The second return value is false for faculty badges.
func (p *Profile) Grade() (string, bool) {
	if p.Role != RoleStudent {
		return "", false
	}
	return p.payload, true
}

// Certify transitions a student badge to certified exactly once, recording
// the grade and the certification sequence number. It is the only mutation a
// profile ever sees after creation.
func (p *Profile) Certify(sequence uint64, grade string, now time.Time) error {
	if p.Role != RoleStudent {
		return dErrors.New(dErrors.CodeNotAStudent, "badge "+p.ID.String()+" is not a student badge")
	}
	if p.Certified {
		return dErrors.New(dErrors.CodeAlreadyCertified, "badge "+p.ID.String()+" is already certified")
	}
	if sequence == 0 {
		return dErrors.New(dErrors.CodeValidation, "certification sequence must be positive")
	}
	p.Certified = true
	p.SequenceNumber = sequence
	p.payload = grade
	p.CertifiedAt = now
	return nil
}
