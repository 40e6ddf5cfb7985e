// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

/*
Package auth implements the authentication use cases of GiftMe.

It owns the conversation with the external identity provider: sign-up,
sign-in, sign-out, transparent session refresh, and the out-of-band
password-reset email. Credentials never touch local storage — the provider
holds them; GiftMe stores only the long-lived refresh token that powers
transparent renewal.

Architecture:

  - Service: Orchestrates provider calls and local account records.
  - IdentityProvider: Consumer-defined interface over the provider client.
  - OobThrottle: Redis-backed throttle for out-of-band emails.
*/
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"github.com/giftme/giftme/internal/identity"
	"github.com/giftme/giftme/internal/platform/apperr"
	"github.com/giftme/giftme/internal/platform/constants"
	"github.com/giftme/giftme/internal/platform/ctxutil"
	"github.com/giftme/giftme/internal/platform/validate"
	"github.com/giftme/giftme/internal/provider/firebase"
	"github.com/giftme/giftme/pkg/uuidv7"
)

// minPasswordLength follows the provider's own minimum.
const minPasswordLength = 8

// IdentityProvider is the slice of the provider client the auth service uses.
//
// # Why an interface?
//
// Declaring it here (consumer side) lets tests substitute the provider with
// an in-memory fake without spinning up HTTP servers.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, displayName string) (*firebase.Credentials, error)
	SignIn(ctx context.Context, email, password string) (*firebase.Credentials, error)
	Refresh(ctx context.Context, refreshToken string) (*firebase.Credentials, error)
	ChangeEmail(ctx context.Context, idToken, newEmail string) (*firebase.Credentials, error)
	ChangePassword(ctx context.Context, idToken, newPassword string) (*firebase.Credentials, error)
	SendPasswordReset(ctx context.Context, email string) error
	SendEmailVerification(ctx context.Context, idToken string) error
}

// OobThrottle rate-limits out-of-band provider emails per address.
type OobThrottle interface {
	// Allow reports whether another email may be sent to the address now.
	// The first call in a window claims it; later calls are rejected until
	// the window elapses.
	Allow(ctx context.Context, email string) (bool, error)
}

// Session is the result of a successful sign-up or sign-in.
type Session struct {
	Token   string            `json:"token"`
	Account *identity.Account `json:"account"`
}

// Service orchestrates authentication flows.
type Service struct {
	accounts  identity.AccountRepository
	accessors identity.AccessorRepository
	provider  IdentityProvider
	throttle  OobThrottle
}

// NewService wires the auth service with its dependencies.
func NewService(
	accounts identity.AccountRepository,
	accessors identity.AccessorRepository,
	provider IdentityProvider,
	throttle OobThrottle,
) *Service {
	return &Service{
		accounts:  accounts,
		accessors: accessors,
		provider:  provider,
		throttle:  throttle,
	}
}

// # Sign Up

// SignUpInput carries everything needed to register a new account.
// DisplayName is optional; when set it is forwarded to the provider identity.
type SignUpInput struct {
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	Username    string     `json:"username"`
	DisplayName *string    `json:"display_name"`
	DateOfBirth *time.Time `json:"date_of_birth"`
}

// SignUp registers a new account with the provider and locally.
//
// # Flow
//
// A rule chain validates shape AND uniqueness BEFORE the provider is
// contacted — a duplicate email must never create an orphaned provider
// identity. On success the local account starts as role "user" with status
// "pending", and an open access request is queued for admin review.
func (service *Service) SignUp(ctx context.Context, input SignUpInput) (*Session, error) {
	var session *Session

	_, emailErr := mail.ParseAddress(input.Email)

	chain := validate.NewChain().
		Field("email", "Must be a valid email address", emailErr == nil).
		Field("password", "Must be at least 8 characters", len(input.Password) >= minPasswordLength).
		Field("username", "Must be between 2 and 30 characters",
			len(input.Username) >= constants.MinNameLength && len(input.Username) <= constants.MaxNameLength).
		Field("display_name", "Must be between 2 and 30 characters",
			input.DisplayName == nil ||
				(len(*input.DisplayName) >= constants.MinNameLength && len(*input.DisplayName) <= constants.MaxNameLength)).
		CheckAsync("email", "Email is already registered", http.StatusConflict,
			func(ctx context.Context) (bool, error) {
				exists, err := service.accounts.ExistsByEmail(ctx, input.Email)
				return !exists, err
			}).
		CheckAsync("username", "Username is already taken", http.StatusConflict,
			func(ctx context.Context) (bool, error) {
				exists, err := service.accounts.ExistsByUsername(ctx, input.Username)
				return !exists, err
			}).
		OnSuccess(func(ctx context.Context) error {
			created, err := service.register(ctx, input)
			if err != nil {
				return err
			}
			session = created
			return nil
		})

	if err := chain.Run(ctx); err != nil {
		return nil, err
	}

	return session, nil
}

// register performs the provider call and local bookkeeping behind [SignUp].
func (service *Service) register(ctx context.Context, input SignUpInput) (*Session, error) {

	// ── 1. Provider Registration ──────────────────────────────────────────
	var displayName string
	if input.DisplayName != nil {
		displayName = *input.DisplayName
	}

	credentials, err := service.provider.SignUp(ctx, input.Email, input.Password, displayName)
	if err != nil {
		return nil, service.wrapProviderError(ctx, err, "sign_up")
	}

	// ── 2. Local Account ──────────────────────────────────────────────────
	account := &identity.Account{
		ID:           uuidv7.New(),
		ProviderUID:  credentials.UserID,
		Email:        input.Email,
		Username:     input.Username,
		DisplayName:  input.DisplayName,
		DateOfBirth:  input.DateOfBirth,
		Role:         identity.RoleUser,
		Status:       identity.StatusPending,
		RefreshToken: &credentials.RefreshToken,
	}

	if err := service.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	// ── 3. Access Request ─────────────────────────────────────────────────
	// An explicit pending row, so "no row" unambiguously means "accepted".
	accessor := &identity.AccountAccessor{
		ID:        uuidv7.New(),
		AccountID: account.ID,
		Email:     account.Email,
		Status:    identity.StatusPending,
	}

	if err := service.accessors.Create(ctx, accessor); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "account_signed_up",
		slog.String("account_id", account.ID),
	)

	return &Session{Token: credentials.IDToken, Account: account}, nil
}

// # Sign In

// SignIn verifies credentials with the provider and opens a session.
//
// # Opacity
//
// A wrong password, an unknown email, and a provider-disabled identity all
// produce the same generic 401.
func (service *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	// ── 1. Credential Verification ────────────────────────────────────────
	credentials, err := service.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, service.wrapProviderError(ctx, err, "sign_in")
	}

	// ── 2. Local Account ──────────────────────────────────────────────────
	account, err := service.accounts.FindByEmail(ctx, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			// Provider knows the identity but GiftMe does not. Stay opaque.
			return nil, apperr.Unauthorized("Invalid credentials")
		}
		return nil, err
	}

	// ── 3. Refresh Token Rotation ─────────────────────────────────────────
	if err := service.accounts.UpdateRefreshToken(ctx, account.ID, &credentials.RefreshToken); err != nil {
		return nil, err
	}
	account.RefreshToken = &credentials.RefreshToken

	return &Session{Token: credentials.IDToken, Account: account}, nil
}

// # Sign Out

// SignOut clears the stored refresh token, which disables transparent
// session refresh. The current bearer token stays valid until its natural
// expiry — the provider signed it and cannot un-sign it.
func (service *Service) SignOut(ctx context.Context, email string) error {
	account, err := service.accounts.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	return service.accounts.UpdateRefreshToken(ctx, account.ID, nil)
}

// # Session Refresh
//
// These two methods back the session gate (middleware.SessionRefresher).

// HasRefreshToken reports whether the account can be transparently refreshed.
func (service *Service) HasRefreshToken(ctx context.Context, email string) (bool, error) {
	return service.accounts.HasRefreshToken(ctx, email)
}

// RefreshToken exchanges the stored refresh token for a fresh bearer token.
//
// The provider may rotate the refresh token during the exchange; the rotated
// token is persisted before the new bearer token is returned. Concurrent
// refreshes for the same account are last-write-wins — both callers get a
// valid bearer token either way.
func (service *Service) RefreshToken(ctx context.Context, email string) (string, error) {
	account, err := service.accounts.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	if account.RefreshToken == nil {
		return "", apperr.Unauthorized("Invalid or expired session")
	}

	credentials, err := service.provider.Refresh(ctx, *account.RefreshToken)
	if err != nil {
		return "", service.wrapProviderError(ctx, err, "refresh")
	}

	if err := service.accounts.UpdateRefreshToken(ctx, account.ID, &credentials.RefreshToken); err != nil {
		return "", err
	}

	return credentials.IDToken, nil
}

// # Credential Changes

// ChangeEmail moves the caller's identity to a new email address, at the
// provider first and locally second.
//
// The provider answers a credential change with a fresh token pair, so the
// caller's old bearer token is superseded by the returned session.
func (service *Service) ChangeEmail(ctx context.Context, currentEmail, newEmail string) (*Session, error) {
	if _, err := mail.ParseAddress(newEmail); err != nil {
		return nil, validate.RequiredError("email", "Must be a valid email address")
	}

	bearer := ctxutil.GetBearer(ctx)
	if bearer == "" {
		return nil, apperr.Unauthorized("Invalid or expired session")
	}

	account, err := service.accounts.FindByEmail(ctx, currentEmail)
	if err != nil {
		return nil, err
	}

	exists, err := service.accounts.ExistsByEmail(ctx, newEmail)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("Email is already registered")
	}

	credentials, err := service.provider.ChangeEmail(ctx, bearer, newEmail)
	if err != nil {
		return nil, service.wrapProviderError(ctx, err, "change_email")
	}

	account.Email = newEmail
	if err := service.accounts.Update(ctx, account); err != nil {
		return nil, err
	}

	if err := service.accounts.UpdateRefreshToken(ctx, account.ID, &credentials.RefreshToken); err != nil {
		return nil, err
	}
	account.RefreshToken = &credentials.RefreshToken

	ctxutil.GetLogger(ctx).InfoContext(ctx, "email_changed",
		slog.String("account_id", account.ID),
	)

	return &Session{Token: credentials.IDToken, Account: account}, nil
}

// ChangePassword sets a new password at the provider and persists the
// rotated refresh token. Returns the superseding session.
func (service *Service) ChangePassword(ctx context.Context, email, newPassword string) (*Session, error) {
	if len(newPassword) < minPasswordLength {
		return nil, validate.RequiredError("password", "Must be at least 8 characters")
	}

	bearer := ctxutil.GetBearer(ctx)
	if bearer == "" {
		return nil, apperr.Unauthorized("Invalid or expired session")
	}

	account, err := service.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	credentials, err := service.provider.ChangePassword(ctx, bearer, newPassword)
	if err != nil {
		return nil, service.wrapProviderError(ctx, err, "change_password")
	}

	if err := service.accounts.UpdateRefreshToken(ctx, account.ID, &credentials.RefreshToken); err != nil {
		return nil, err
	}
	account.RefreshToken = &credentials.RefreshToken

	return &Session{Token: credentials.IDToken, Account: account}, nil
}

// # Password Reset

// ResetPassword asks the provider to send a password-reset email.
//
// # Throttling
//
// At most one reset email per address per throttle window, enforced via
// Redis, so the endpoint cannot be abused to flood a victim's inbox. The
// response is 204 regardless of whether the email exists.
func (service *Service) ResetPassword(ctx context.Context, email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return validate.RequiredError("email", "Must be a valid email address")
	}

	allowed, err := service.throttle.Allow(ctx, email)
	if err != nil {
		return apperr.Internal(err)
	}
	if !allowed {
		return apperr.RateLimited("A reset email was sent recently. Try again later.")
	}

	if err := service.provider.SendPasswordReset(ctx, email); err != nil {
		// EMAIL_NOT_FOUND is deliberately swallowed: the caller must not be
		// able to probe which addresses have accounts.
		var providerErr *firebase.ProviderError
		if errors.As(err, &providerErr) {
			ctxutil.GetLogger(ctx).InfoContext(ctx, "password_reset_suppressed",
				slog.String("reason", providerErr.Reason),
			)
			return nil
		}
		return apperr.Upstream(err)
	}

	return nil
}

// # Email Verification

// VerifyEmail asks the provider to send a verification email to the caller.
//
// The caller is identified by the bearer token the session gate placed in
// the context; the throttle key is the claims email, sharing the same
// per-address window as password resets.
func (service *Service) VerifyEmail(ctx context.Context, email string) error {
	bearer := ctxutil.GetBearer(ctx)
	if bearer == "" {
		return apperr.Unauthorized("Invalid or expired session")
	}

	allowed, err := service.throttle.Allow(ctx, email)
	if err != nil {
		return apperr.Internal(err)
	}
	if !allowed {
		return apperr.RateLimited("A verification email was sent recently. Try again later.")
	}

	if err := service.provider.SendEmailVerification(ctx, bearer); err != nil {
		var providerErr *firebase.ProviderError
		if errors.As(err, &providerErr) {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "email_verification_rejected",
				slog.String("reason", providerErr.Reason),
			)
			return apperr.Unauthorized("Invalid or expired session")
		}
		return apperr.Upstream(err)
	}

	return nil
}

// # Provider Error Mapping

// wrapProviderError converts a provider failure into an opaque application
// error. Provider rejections (4xx reasons like INVALID_PASSWORD or
// EMAIL_EXISTS) become opaque 401s; transport-level failures become 502s.
func (service *Service) wrapProviderError(ctx context.Context, err error, operation string) error {
	var providerErr *firebase.ProviderError
	if errors.As(err, &providerErr) {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "provider_rejected",
			slog.String("operation", operation),
			slog.String("reason", providerErr.Reason),
		)
		return apperr.Unauthorized("Invalid credentials")
	}

	return apperr.Upstream(err)
}
