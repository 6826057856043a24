package handler

import (
	"strings"

	"insignia/internal/badge/models"
	"insignia/internal/badge/service"
	dErrors "insignia/pkg/domain-errors"
)

// HTTP Request DTOs - contain JSON tags for API serialization.
// These are converted to service commands before processing.

// maxBatchSize bounds batch issuance so a single request cannot stage an
// unreasonable number of profiles.
const maxBatchSize = 1000

type OnboardFacultyRequest struct {
	Identities  []string `json:"identities"`
	ContentRefs []string `json:"content_refs"`
	Roles       []string `json:"roles"`
}

func (r *OnboardFacultyRequest) Normalize() {
	if r == nil {
		return
	}
	trimEach(r.Identities)
	trimEach(r.ContentRefs)
	trimEach(r.Roles)
}

func (r *OnboardFacultyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.Identities) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one identity is required")
	}
	if len(r.Identities) > maxBatchSize {
		return dErrors.New(dErrors.CodeValidation, "batch exceeds maximum size")
	}
	return nil
}

// ToCommand converts the HTTP request to a service command.
// Returns an error if any role value is unknown.
func (r *OnboardFacultyRequest) ToCommand() (*service.OnboardFacultyCommand, error) {
	roles := make([]models.Role, len(r.Roles))
	for i, raw := range r.Roles {
		role, err := models.ParseRole(raw)
		if err != nil {
			return nil, err
		}
		roles[i] = role
	}

	identities := make([]models.Identity, len(r.Identities))
	for i, raw := range r.Identities {
		identities[i] = models.Identity(raw)
	}

	return &service.OnboardFacultyCommand{
		Identities:  identities,
		ContentRefs: r.ContentRefs,
		Roles:       roles,
	}, nil
}

type EnrollStudentsRequest struct {
	Identities []string `json:"identities"`
}

func (r *EnrollStudentsRequest) Normalize() {
	if r == nil {
		return
	}
	trimEach(r.Identities)
}

func (r *EnrollStudentsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.Identities) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one identity is required")
	}
	if len(r.Identities) > maxBatchSize {
		return dErrors.New(dErrors.CodeValidation, "batch exceeds maximum size")
	}
	return nil
}

func (r *EnrollStudentsRequest) ToIdentities() []models.Identity {
	identities := make([]models.Identity, len(r.Identities))
	for i, raw := range r.Identities {
		identities[i] = models.Identity(raw)
	}
	return identities
}

type CertifyRequest struct {
	Grade string `json:"grade"`
}

func (r *CertifyRequest) Normalize() {
	if r == nil {
		return
	}
	r.Grade = strings.TrimSpace(r.Grade)
}

type TransferRequest struct {
	To string `json:"to"`
}

func (r *TransferRequest) Normalize() {
	if r == nil {
		return
	}
	r.To = strings.TrimSpace(r.To)
}

func (r *TransferRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.To == "" {
		return dErrors.New(dErrors.CodeValidation, "to is required")
	}
	return nil
}

type SetCertifiedFolderRequest struct {
	Ref string `json:"ref"`
}

func (r *SetCertifiedFolderRequest) Normalize() {
	if r == nil {
		return
	}
	r.Ref = strings.TrimSpace(r.Ref)
}

func (r *SetCertifiedFolderRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Ref == "" {
		return dErrors.New(dErrors.CodeValidation, "ref is required")
	}
	return nil
}

func trimEach(values []string) {
	for i, v := range values {
		values[i] = strings.TrimSpace(v)
	}
}
