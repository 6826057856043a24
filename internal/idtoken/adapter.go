package idtoken

import (
	"insignia/pkg/platform/middleware/auth"
)

// MiddlewareAdapter bridges the token service to the auth middleware
// without the middleware importing this package.
type MiddlewareAdapter struct {
	service *Service
}

func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*auth.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &auth.Claims{
		Identity: claims.Subject,
		JTI:      claims.ID,
	}, nil
}
