package service

import (
	"context"
	"errors"

	"insignia/internal/badge/models"
	"insignia/internal/sentinel"
	dErrors "insignia/pkg/domain-errors"
)

// FacultyCheck is the pure role predicate: it passes only for profiles in the
// trusted tier. Kept free of lookups so the authorization contract is
// independently testable.
func FacultyCheck(p *models.Profile) error {
	if !p.Role.IsFaculty() {
		return dErrors.New(dErrors.CodeInsufficientRole,
			"operation requires a teaching_assistant or teacher badge")
	}
	return nil
}

// requireFaculty resolves the caller through the reverse index and applies
// FacultyCheck. A caller without a badge fails with not_registered. No side
// effects.
func (s *Service) requireFaculty(ctx context.Context, caller models.Identity) (*models.Profile, error) {
	if caller.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeNotRegistered, "caller identity is required")
	}
	profile, err := s.store.FindByHolder(ctx, caller)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotRegistered, "caller holds no badge")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve caller role")
	}
	if err := FacultyCheck(profile); err != nil {
		return nil, err
	}
	return profile, nil
}
