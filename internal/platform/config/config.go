package config

import "os"

// Server captures process level configuration.
type Server struct {
	// Addr is the listen address for the API server.
	Addr string
	// OpsAddr is the listen address for the metrics/health server.
	OpsAddr string
	// OwnerToken is the shared administrator token; hashed at startup and
	// verified on every owner-gated request.
	OwnerToken string
	// JWTSigningKey signs and verifies identity bearer tokens.
	JWTSigningKey string
	// EnrolledRef is the content reference served for uncertified students.
	EnrolledRef string
	// CertifiedFolderRef is the initial certified-folder content reference.
	CertifiedFolderRef string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:               envOr("INSIGNIA_ADDR", ":8080"),
		OpsAddr:            envOr("INSIGNIA_OPS_ADDR", ":9090"),
		OwnerToken:         envOr("OWNER_TOKEN", "dev-owner-token-change-in-production"),
		JWTSigningKey:      envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		EnrolledRef:        envOr("ENROLLED_BADGE_REF", "ipfs://insignia/enrolled.json"),
		CertifiedFolderRef: envOr("CERTIFIED_FOLDER_REF", "ipfs://insignia/certified"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
