// Package idtoken issues and validates the bearer tokens that identify
// badge holders and faculty calling the API.
package idtoken

import (
	"errors"
	"time"

	dErrors "insignia/pkg/domain-errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// IdentityClaims represents the JWT claims for identity tokens.
// The subject carries the holder identity used across the badge registry.
type IdentityClaims struct {
	jwt.RegisteredClaims
}

// Service handles identity token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
	tokenTTL   time.Duration
}

func NewService(signingKey string, issuer string, audience string, tokenTTL time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		tokenTTL:   tokenTTL,
	}
}

// Generate creates a signed identity token for the given holder identity.
// Returns the token and its JTI.
func (s *Service) Generate(identity string, now time.Time) (string, string, error) {
	if identity == "" {
		return "", "", dErrors.New(dErrors.CodeValidation, "identity cannot be empty")
	}

	jti := uuid.New().String()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        jti,
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign token")
	}
	return signed, jti, nil
}

// ValidateToken parses and validates a signed identity token.
// It checks the signature, algorithm, issuer, audience, and expiration.
func (s *Service) ValidateToken(tokenString string) (*IdentityClaims, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "empty token")
	}

	claims := new(IdentityClaims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected signing algorithm")
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token signature")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "token parse failed")
	}

	if !token.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	return claims, nil
}
