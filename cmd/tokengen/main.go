// Package main provides a CLI tool for generating test tokens for the
// insignia API. These tokens use dev signing keys and will NOT work in
// production.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"insignia/internal/idtoken"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	// Default owner token for local/dev environments
	devOwnerToken = "dev-owner-token-change-in-production"

	defaultIssuer   = "insignia"
	defaultAudience = "insignia-api"
	defaultTokenTTL = 24 * time.Hour
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in,omitempty"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	identityCmd := flag.NewFlagSet("identity", flag.ExitOnError)
	ownerCmd := flag.NewFlagSet("owner", flag.ExitOnError)

	identityHolder := identityCmd.String("holder", "", "Holder identity (required)")
	identityKey := identityCmd.String("signing-key", devSigningKey, "HS256 signing key")
	identityTTL := identityCmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	identityJSON := identityCmd.Bool("json", false, "Output as JSON")

	ownerJSON := ownerCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "identity":
		identityCmd.Parse(os.Args[2:])
		generateIdentityToken(*identityHolder, *identityKey, *identityTTL, *identityJSON)
	case "owner":
		ownerCmd.Parse(os.Args[2:])
		showOwnerToken(*ownerJSON)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate test tokens for the insignia API

WARNING: These tokens use dev signing keys and will NOT work in production.
         Only use for local development and testing.

Usage:
  tokengen <command> [flags]

Commands:
  identity  Generate a bearer identity token for a holder
  owner     Show the owner API token

Examples:
  # Generate an identity token for a holder
  tokengen identity -holder 0xabc

  # Generate a token with a custom TTL
  tokengen identity -holder 0xabc -ttl 1h

  # Get the owner token for the X-Owner-Token header
  tokengen owner

  # Output as JSON
  tokengen identity -holder 0xabc -json

Use "tokengen <command> -h" for more information about a command.`)
}

func generateIdentityToken(holder, signingKey string, ttl time.Duration, jsonOutput bool) {
	if holder == "" {
		fmt.Fprintln(os.Stderr, "Error: -holder is required")
		os.Exit(1)
	}

	svc := idtoken.NewService(signingKey, defaultIssuer, defaultAudience, ttl)
	token, jti, err := svc.Generate(holder, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			Type:      "identity_token",
			ExpiresIn: ttl.String(),
			Claims: map[string]any{
				"sub": holder,
				"jti": jti,
			},
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
		return
	}

	fmt.Println("Identity Token (JWT)")
	fmt.Println("====================")
	fmt.Printf("Holder:     %s\n", holder)
	fmt.Printf("Expires In: %s\n", ttl)
	fmt.Printf("JTI:        %s\n", jti)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/badges/enroll")
}

func showOwnerToken(jsonOutput bool) {
	if jsonOutput {
		printJSON(tokenOutput{
			Token: devOwnerToken,
			Type:  "owner_token",
			Usage: map[string]string{
				"header": "X-Owner-Token: " + devOwnerToken,
				"note":   "Works when OWNER_TOKEN is not overridden",
			},
		})
		return
	}

	fmt.Println("Owner API Token")
	fmt.Println("===============")
	fmt.Printf("Token: %s\n", devOwnerToken)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"X-Owner-Token: " + devOwnerToken + "\" http://localhost:8080/admin/faculty")
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
