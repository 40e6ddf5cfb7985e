// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

package identity

import (
	"context"
	"log/slog"
	"time"

	"github.com/giftme/giftme/internal/platform/apperr"
	"github.com/giftme/giftme/internal/platform/constants"
	"github.com/giftme/giftme/internal/platform/ctxutil"
	"github.com/giftme/giftme/internal/platform/validate"
)

// IdentityRevoker deletes the provider-side identity behind a bearer token.
// Implemented by the provider client.
type IdentityRevoker interface {
	DeleteAccount(ctx context.Context, idToken string) error
}

// AccountService implements the business rules for the caller's own account.
//
// # Identity Resolution
//
// Every operation resolves the caller by the email inside their verified
// token claims, never by a client-supplied ID. A caller can therefore only
// ever read or mutate their own account.
type AccountService struct {
	accounts AccountRepository
	revoker  IdentityRevoker
}

// NewAccountService wires the account service with its dependencies.
func NewAccountService(accounts AccountRepository, revoker IdentityRevoker) *AccountService {
	return &AccountService{accounts: accounts, revoker: revoker}
}

// GetByEmail returns the caller's account.
func (service *AccountService) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return service.accounts.FindByEmail(ctx, email)
}

// AccountIDByEmail resolves an email to its local account ID. Other domains
// use this to scope their records without depending on the full account.
func (service *AccountService) AccountIDByEmail(ctx context.Context, email string) (string, error) {
	account, err := service.accounts.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return account.ID, nil
}

// ProfileUpdate carries the mutable profile fields of an account.
// Nil fields are left unchanged.
type ProfileUpdate struct {
	Username    *string    `json:"username"`
	DisplayName *string    `json:"display_name"`
	DateOfBirth *time.Time `json:"date_of_birth"`
}

// UpdateProfile applies a partial profile update to the caller's account.
func (service *AccountService) UpdateProfile(ctx context.Context, email string, update ProfileUpdate) (*Account, error) {

	// ── 1. Field Validation ───────────────────────────────────────────────
	validator := &validate.Validator{}
	validator.
		LenBetweenOptional("username", update.Username, constants.MinNameLength, constants.MaxNameLength).
		LenBetweenOptional("display_name", update.DisplayName, constants.MinNameLength, constants.MaxNameLength)

	if update.DateOfBirth != nil {
		validator.Custom("date_of_birth", update.DateOfBirth.After(time.Now()), "Must be in the past")
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 2. Load & Apply ───────────────────────────────────────────────────
	account, err := service.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		account.Username = *update.Username
	}
	if update.DisplayName != nil {
		account.DisplayName = update.DisplayName
	}
	if update.DateOfBirth != nil {
		account.DateOfBirth = update.DateOfBirth
	}

	// ── 3. Persist ────────────────────────────────────────────────────────
	if err := service.accounts.Update(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// Delete removes the caller's provider identity and soft-deletes the local
// account.
//
// The provider identity goes first: if that fails, the local record stays
// intact and the caller can retry. The repository clears the refresh token
// in the same statement as the soft delete, so the session gate can never
// transparently renew a deleted account's session.
func (service *AccountService) Delete(ctx context.Context, email string) error {
	account, err := service.accounts.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	bearer := ctxutil.GetBearer(ctx)
	if bearer == "" {
		return apperr.Unauthorized("Invalid or expired session")
	}

	if err := service.revoker.DeleteAccount(ctx, bearer); err != nil {
		return apperr.Upstream(err)
	}

	if err := service.accounts.SoftDelete(ctx, account.ID); err != nil {
		return err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "account_deleted",
		slog.String("account_id", account.ID),
	)

	return nil
}
