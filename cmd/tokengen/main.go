// Package main provides a CLI tool for generating test tokens for the LockMe
// development backend. These tokens use dev signing keys and will NOT work
// against a real backend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"lockme/internal/devbackend/tokens"
	"lockme/internal/platform/config"
	id "lockme/pkg/domain"
)

const defaultIssuer = "lockme-devbackend/dev"

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in,omitempty"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	identityCmd := flag.NewFlagSet("identity", flag.ExitOnError)
	accessCmd := flag.NewFlagSet("access", flag.ExitOnError)

	identityEmail := identityCmd.String("email", "admin@lockme.test", "Email asserted by the identity token")
	identityName := identityCmd.String("name", "", "Display name claim")
	identityJSON := identityCmd.Bool("json", false, "Output as JSON")

	accessUserID := accessCmd.String("user-id", "1", "User ID the access token is issued to")
	accessEmail := accessCmd.String("email", "admin@lockme.test", "Email claim")
	accessAdmin := accessCmd.Bool("admin", true, "is_admin claim")
	accessTTL := accessCmd.Duration("ttl", 15*time.Minute, "Token time-to-live")
	accessIssuer := accessCmd.String("issuer", defaultIssuer, "Issuer; must match the backend environment")
	accessJSON := accessCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.DevBackendFromEnv()
	switch os.Args[1] {
	case "identity":
		_ = identityCmd.Parse(os.Args[2:])
		svc := tokens.NewService(cfg.SigningKey, cfg.IdentityKey, defaultIssuer, cfg.TokenTTL)
		generateIdentityToken(svc, *identityEmail, *identityName, *identityJSON)
	case "access":
		_ = accessCmd.Parse(os.Args[2:])
		svc := tokens.NewService(cfg.SigningKey, cfg.IdentityKey, *accessIssuer, *accessTTL)
		generateAccessToken(svc, *accessUserID, *accessEmail, *accessAdmin, *accessJSON)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate test tokens for the LockMe development backend

WARNING: These tokens use development keys. Only use them locally.

Usage:
  tokengen <command> [flags]

Commands:
  identity  Generate an identity token for POST /auth/google
  access    Generate an admin access token directly

Examples:
  # Identity token for the seeded admin
  tokengen identity

  # Identity token for a non-admin
  tokengen identity -email member@lockme.test

  # Access token for user 2 without admin rights
  tokengen access -user-id 2 -email member@lockme.test -admin=false

  # Output as JSON
  tokengen access -json`)
}

func generateIdentityToken(svc *tokens.Service, email, name string, jsonOutput bool) {
	token, err := svc.MintIdentityToken(context.Background(), email, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(tokenOutput{
			Token: token,
			Type:  "identity_token",
			Claims: map[string]any{
				"email": email,
				"name":  name,
			},
			Usage: map[string]string{
				"exchange": `POST /auth/google {"id_token":"<token>"}`,
			},
		})
		return
	}
	fmt.Println("Identity Token")
	fmt.Println("==============")
	fmt.Printf("Email: %s\n", email)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  lockme-admin login --id-token <token>")
}

func generateAccessToken(svc *tokens.Service, rawUserID, email string, isAdmin, jsonOutput bool) {
	userID, err := id.ParseUserID(rawUserID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid user-id: %s\n", rawUserID)
		os.Exit(1)
	}

	token, err := svc.IssueAccessToken(context.Background(), userID, email, isAdmin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			Type:      "access_token",
			ExpiresIn: svc.TTL().String(),
			Claims: map[string]any{
				"sub":      userID.String(),
				"email":    email,
				"is_admin": isAdmin,
				"aud":      tokens.AdminAudience,
			},
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
		return
	}
	fmt.Println("Access Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Expires In:  %s\n", svc.TTL())
	fmt.Printf("User ID:     %s\n", userID)
	fmt.Printf("Email:       %s\n", email)
	fmt.Printf("Admin:       %t\n", isAdmin)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://127.0.0.1:8000/admin/stats")
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
