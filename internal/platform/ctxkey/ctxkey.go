// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

// Package ctxkey defines typed context keys used by middleware and handlers.
//
// # Safety
//
// It is used to store and retrieve per-request values (token claims, request ID, logger).
// Using a private, unexported type for keys prevents collisions with third-party
// packages that might also use context for storage.
package ctxkey

// key is an unexported type used for context keys to ensure type safety.
//
// # Collision Prevention
//
// Even if another package uses "request_id" as a string key, it will not
// collide with this key type because Go's [context.Context] uses both the
// value AND the type for lookups.
type key string

const (
	// KeyRequestID is the context key for the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyClaims is the context key for the caller's parsed [sec.TokenClaims].
	KeyClaims key = "claims"

	// KeyBearer is the context key for the caller's current bearer token.
	// After a transparent refresh it holds the newly minted token, so
	// downstream services always see valid credentials.
	KeyBearer key = "bearer"

	// KeyLogger is the context key for the per-request [*log/slog.Logger].
	KeyLogger key = "logger"
)
