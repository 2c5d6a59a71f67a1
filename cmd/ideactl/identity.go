package main

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/yamoridev/ideaboard"
)

type tokenClaims struct {
	DisplayName string `json:"name"`
	jwt.RegisteredClaims
}

// identityFromToken extracts the identity embedded in a bearer token. The
// signature is not checked here; the server re-verifies it on every
// mutating call. Returns nil for a missing or malformed token.
func identityFromToken(token string) *ideaboard.Identity {
	if token == "" {
		return nil
	}

	var claims tokenClaims
	parser := jwt.NewParser()
	_, _, err := parser.ParseUnverified(token, &claims)
	if err != nil || claims.Subject == "" {
		return nil
	}

	return &ideaboard.Identity{
		ID:          claims.Subject,
		DisplayName: claims.DisplayName,
	}
}
