// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

// Package sec handles the security-sensitive parsing of identity-provider
// bearer tokens.
//
// # Architecture
//
// GiftMe does not mint its own tokens. Every bearer token is issued and
// signed by the external identity provider; this package only lifts the
// claim set out of the token so the authorization gates can reason about
// it. Authenticity of the token contents is the provider's concern — the
// gates verify issuer and expiry, and an expired token is only honoured
// after a successful round-trip to the provider's refresh endpoint.
package sec

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/giftme/giftme/internal/platform/constants"
)

// ErrMalformedClaims is returned whenever a bearer token's claim set cannot
// be turned into a [TokenClaims]. Callers must fail closed on it.
var ErrMalformedClaims = errors.New("sec: malformed token claims")

// TokenClaims is the structured, per-request view of a provider-issued
// bearer token.
//
// # Lifecycle
//
// It is constructed exactly once per request by [ExtractClaims], attached to
// the request context, and discarded when the request ends. It is never
// persisted.
type TokenClaims struct {
	// Email is the primary email the provider associates with the caller.
	Email string

	// UserID is the provider-side account identifier (Firebase localId).
	UserID string

	// Issuer is the authority URL that minted the token.
	Issuer string

	// IssuedAt and ExpiresAt are unix seconds.
	IssuedAt  int64
	ExpiresAt int64

	// SignInProvider names the mechanism the caller authenticated with
	// (e.g. "password", "google.com").
	SignInProvider string
}

// ExtractClaims parses a raw bearer token into a [TokenClaims].
//
// # Failure Modes
//
// Returns [ErrMalformedClaims] (wrapped with detail) when:
//   - the token cannot be decoded at all,
//   - the provider claim block is absent or has an unexpected shape,
//   - the block carries no email,
//   - any of iat, exp, user_id, or iss is missing or non-numeric where a
//     number is expected.
//
// It is a pure function of the token string — no I/O, no side effects.
func ExtractClaims(rawToken string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}

	// The provider signed this token; we only need its payload here.
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(rawToken, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedClaims, err)
	}

	email, signInProvider, err := parseProviderBlock(claims)
	if err != nil {
		return nil, err
	}

	issuedAt, err := numericClaim(claims, "iat")
	if err != nil {
		return nil, err
	}

	expiresAt, err := numericClaim(claims, "exp")
	if err != nil {
		return nil, err
	}

	userID, err := stringClaim(claims, "user_id")
	if err != nil {
		return nil, err
	}

	issuer, err := stringClaim(claims, "iss")
	if err != nil {
		return nil, err
	}

	return &TokenClaims{
		Email:          email,
		UserID:         userID,
		Issuer:         issuer,
		IssuedAt:       issuedAt,
		ExpiresAt:      expiresAt,
		SignInProvider: signInProvider,
	}, nil
}

// parseProviderBlock digs the provider's nested identity block out of the
// claim set and returns the caller's primary email and sign-in provider.
//
// The block looks like:
//
//	"firebase": {
//	    "identities": { "email": ["a@x.com"], "google.com": ["..."] },
//	    "sign_in_provider": "password"
//	}
func parseProviderBlock(claims jwt.MapClaims) (email, signInProvider string, err error) {
	rawBlock, ok := claims[constants.ProviderClaimKey]
	if !ok {
		return "", "", fmt.Errorf("%w: provider claim block is absent", ErrMalformedClaims)
	}

	block, ok := rawBlock.(map[string]any)
	if !ok {
		return "", "", fmt.Errorf("%w: provider claim block is not an object", ErrMalformedClaims)
	}

	identities, ok := block["identities"].(map[string]any)
	if !ok {
		return "", "", fmt.Errorf("%w: identities block is absent", ErrMalformedClaims)
	}

	emails, ok := identities["email"].([]any)
	if !ok || len(emails) == 0 {
		return "", "", fmt.Errorf("%w: no email identity", ErrMalformedClaims)
	}

	email, ok = emails[0].(string)
	if !ok || email == "" {
		return "", "", fmt.Errorf("%w: email identity is not a string", ErrMalformedClaims)
	}

	// sign_in_provider is informational; its absence is tolerated.
	signInProvider, _ = block["sign_in_provider"].(string)

	return email, signInProvider, nil
}

// numericClaim reads a claim that must be a unix-seconds integer.
//
// encoding/json decodes JWT numbers as float64; anything else (including a
// quoted number) is treated as hostile input and rejected.
func numericClaim(claims jwt.MapClaims, name string) (int64, error) {
	raw, ok := claims[name]
	if !ok {
		return 0, fmt.Errorf("%w: claim %q is absent", ErrMalformedClaims, name)
	}

	seconds, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: claim %q is not numeric", ErrMalformedClaims, name)
	}

	return int64(seconds), nil
}

// stringClaim reads a claim that must be a non-empty string.
func stringClaim(claims jwt.MapClaims, name string) (string, error) {
	value, ok := claims[name].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: claim %q is absent", ErrMalformedClaims, name)
	}
	return value, nil
}
