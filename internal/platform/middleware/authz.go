// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/giftme/giftme/internal/identity"
	"github.com/giftme/giftme/internal/platform/apperr"
	"github.com/giftme/giftme/internal/platform/constants"
	"github.com/giftme/giftme/internal/platform/ctxutil"
	"github.com/giftme/giftme/internal/platform/respond"
	"github.com/giftme/giftme/internal/platform/sec"
)

// SessionRefresher defines what the session gate needs from the auth service.
//
// # Why an interface?
//
// Defining SessionRefresher here decouples the middleware from the `auth`
// service implementation, allowing us to easily inject mocks during unit
// testing.
type SessionRefresher interface {
	// HasRefreshToken reports whether the account holds a live refresh token.
	HasRefreshToken(ctx context.Context, email string) (bool, error)

	// RefreshToken exchanges the account's stored refresh token for a fresh
	// bearer token and returns the new token.
	RefreshToken(ctx context.Context, email string) (string, error)
}

// AccountDirectory defines what the role gate needs from the account store.
type AccountDirectory interface {
	// FindByEmail returns the account for the given email, or a NotFound
	// application error if no such account exists.
	FindByEmail(ctx context.Context, email string) (*identity.Account, error)
}

// RefreshSession is the session gate: it authenticates every request and
// transparently renews expired sessions.
//
// # Flow
//  1. Extract the bearer token from the Authorization header; absent or
//     malformed headers are rejected with an opaque 401.
//  2. Parse the token's claims. Any shape defect is an opaque 401.
//  3. The issuer must exactly match the configured trusted issuer.
//  4. If the token has not expired, attach claims and the bearer token to
//     the context and proceed. The provider is never contacted.
//  5. If the token HAS expired, attempt a transparent refresh: the account
//     must hold a refresh token, and the provider must accept it. On
//     success the new token is re-parsed, its claims replace the stale
//     ones, and the new token travels back to the client in the
//     X-Token-Refresh response header. On ANY failure the same header
//     carries the literal "Failure" and the request is rejected with an
//     opaque 401.
//
// # Opacity
//
// Every rejection is the same generic 401. The precise reason (bad issuer,
// no refresh token, provider refusal) is logged server-side only, so the
// gate cannot be used to probe which accounts exist.
func RefreshSession(trustedIssuer string, sessions SessionRefresher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()
			logger := ctxutil.GetLogger(ctx)

			// ── 1. Bearer Extraction ──────────────────────────────────────────
			rawToken, ok := bearerToken(request)
			if !ok {
				denySession(writer, request, logger, "missing_or_malformed_authorization", "")
				return
			}

			// ── 2. Claims Extraction ──────────────────────────────────────────
			claims, err := sec.ExtractClaims(rawToken)
			if err != nil {
				denySession(writer, request, logger, "malformed_claims", err.Error())
				return
			}

			// ── 3. Issuer Check ───────────────────────────────────────────────
			if claims.Issuer != trustedIssuer {
				denySession(writer, request, logger, "untrusted_issuer", claims.Issuer)
				return
			}

			// ── 4. Expiry Check ───────────────────────────────────────────────
			if time.Now().Unix() < claims.ExpiresAt {
				ctx = ctxutil.WithClaims(ctx, claims)
				ctx = ctxutil.WithBearer(ctx, rawToken)
				next.ServeHTTP(writer, request.WithContext(ctx))
				return
			}

			// ── 5. Transparent Refresh ────────────────────────────────────────
			hasToken, err := sessions.HasRefreshToken(ctx, claims.Email)
			if err != nil || !hasToken {
				writer.Header().Set(constants.HeaderTokenRefresh, constants.TokenRefreshFailure)
				reason := "no_refresh_token"
				detail := ""
				if err != nil {
					reason = "refresh_token_lookup_failed"
					detail = err.Error()
				}
				denySession(writer, request, logger, reason, detail)
				return
			}

			newToken, err := sessions.RefreshToken(ctx, claims.Email)
			if err != nil {
				writer.Header().Set(constants.HeaderTokenRefresh, constants.TokenRefreshFailure)
				denySession(writer, request, logger, "refresh_rejected", err.Error())
				return
			}

			newClaims, err := sec.ExtractClaims(newToken)
			if err != nil {
				writer.Header().Set(constants.HeaderTokenRefresh, constants.TokenRefreshFailure)
				denySession(writer, request, logger, "refreshed_token_malformed", err.Error())
				return
			}

			// Hand the fresh token to the client and to downstream handlers.
			writer.Header().Set(constants.HeaderTokenRefresh, newToken)
			logger.InfoContext(ctx, "session_refreshed", slog.String("user_id", newClaims.UserID))

			ctx = ctxutil.WithClaims(ctx, newClaims)
			ctx = ctxutil.WithBearer(ctx, newToken)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireRole is the role gate: it allows a request through only when the
// caller's local account holds one of the listed roles AND has platform
// access.
//
// # Independence
//
// The gate re-extracts claims from the Authorization header instead of
// trusting upstream middleware, so it is safe to mount on routes with or
// without [RefreshSession] in front of it, and mounting it twice is
// harmless. It deliberately does NOT check expiry — session freshness is the
// session gate's job; this gate answers only "who are you locally and what
// may you do".
//
// # Opacity
//
// Unknown accounts, revoked access, and insufficient roles all produce the
// same generic 403. Details are logged server-side only.
func RequireRole(accounts AccountDirectory, roles ...identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()
			logger := ctxutil.GetLogger(ctx)

			// ── 1. Claims Extraction ──────────────────────────────────────────
			rawToken, ok := bearerToken(request)
			if !ok {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			claims, err := sec.ExtractClaims(rawToken)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Local Account Lookup ───────────────────────────────────────
			account, err := accounts.FindByEmail(ctx, claims.Email)
			if err != nil {
				logger.WarnContext(ctx, "role_gate_denied",
					slog.String("reason", "account_lookup_failed"),
					slog.String("detail", err.Error()),
				)
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			// ── 3. Access & Role Check ────────────────────────────────────────
			if !account.HasAccess() || !roleAllowed(account.Role, roles) {
				logger.WarnContext(ctx, "role_gate_denied",
					slog.String("reason", "access_or_role_insufficient"),
					slog.String("user_id", account.ID),
				)
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # Gate Helpers

// bearerToken pulls the raw token out of 'Authorization: Bearer <token>'.
func bearerToken(request *http.Request) (string, bool) {
	authHeader := request.Header.Get(constants.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

// roleAllowed reports whether the role is in the allowed set.
func roleAllowed(role identity.Role, allowed []identity.Role) bool {
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}

// denySession logs the real denial reason and sends the opaque 401.
func denySession(writer http.ResponseWriter, request *http.Request, logger *slog.Logger, reason, detail string) {
	attrs := []any{slog.String("reason", reason)}
	if detail != "" {
		attrs = append(attrs, slog.String("detail", detail))
	}
	logger.WarnContext(request.Context(), "session_gate_denied", attrs...)

	respond.Error(writer, request, apperr.Unauthorized("Invalid or expired session"))
}
