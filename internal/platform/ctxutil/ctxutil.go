// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/giftme/giftme/internal/platform/ctxkey"
	"github.com/giftme/giftme/internal/platform/sec"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithClaims returns a new context with the caller's parsed token claims
// attached. The session gate populates this exactly once per request;
// nothing downstream lazily re-parses the token.
func WithClaims(ctx context.Context, claims *sec.TokenClaims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyClaims, claims)
}

// GetClaims retrieves the [*sec.TokenClaims] from the [context.Context].
// Returns nil for unauthenticated requests.
func GetClaims(ctx context.Context) *sec.TokenClaims {
	claims, ok := ctx.Value(ctxkey.KeyClaims).(*sec.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

// WithBearer returns a new context carrying the caller's current bearer
// token. After a transparent refresh this is the NEW token, so downstream
// calls to the identity provider act on live credentials.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyBearer, token)
}

// GetBearer retrieves the current bearer token from the context.
// Returns an empty string if not found.
func GetBearer(ctx context.Context) string {
	token, _ := ctx.Value(ctxkey.KeyBearer).(string)
	return token
}
