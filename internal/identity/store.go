// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

package identity

import (
	"context"

	"github.com/giftme/giftme/pkg/crud"
	"github.com/giftme/giftme/pkg/pagination"
)

// AccountRepository defines the data access contract for local accounts.
//
// # Review Process
//
// This interface is placed in a separate file from account.go so entity
// changes and storage-contract changes can be reviewed independently.
//
// # Implementations
//
// The canonical implementation for GiftMe is PostgreSQL (store_postgres.go).
type AccountRepository interface {
	// FindByID returns the account with the given ID.
	//
	// Returns [apperr.NotFound] if the account does not exist.
	FindByID(ctx context.Context, id string) (*Account, error)

	// FindByEmail returns the account with the given email.
	//
	// Returns [apperr.NotFound] if no account is registered with this email.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// ExistsByEmail reports whether a live account uses the email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByUsername reports whether a live account uses the username.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Create persists a brand-new account.
	//
	// Returns a wrapped conflict error if a unique constraint (email or
	// username) fails.
	Create(ctx context.Context, account *Account) error

	// Update persists changes to mutable profile fields and the access
	// status. The refresh token must be updated via [UpdateRefreshToken].
	Update(ctx context.Context, account *Account) error

	// UpdateRefreshToken replaces only the stored refresh token. A nil
	// token clears it, which is how sign-out disables transparent refresh.
	// This is separate from [Update] to prevent accidental overwrites
	// during unrelated profile updates.
	UpdateRefreshToken(ctx context.Context, accountID string, token *string) error

	// HasRefreshToken reports whether the account identified by email holds
	// a non-null refresh token. The session gate calls this on every
	// expired-token request, so it reads a single column.
	HasRefreshToken(ctx context.Context, email string) (bool, error)

	// SoftDelete marks the account as deleted without removing the row.
	// This preserves relational integrity (e.g., gift lists shared with others).
	SoftDelete(ctx context.Context, id string) error
}

// AccessorRepository defines the contract for the access-request queue.
//
// It composes the generic capability interfaces from [crud] with the
// queue-specific lookups the admin workflow needs.
type AccessorRepository interface {
	crud.Creatable[AccountAccessor]
	crud.Updatable[AccountAccessor]
	crud.Deletable[AccountAccessor]

	// FindByAccountID returns the open request for the account.
	//
	// Returns [apperr.NotFound] if the account has no open request — which
	// is the steady state for accepted accounts.
	FindByAccountID(ctx context.Context, accountID string) (*AccountAccessor, error)

	// ListOpen returns a page of open access requests, oldest first, along
	// with the total count for pagination metadata.
	ListOpen(ctx context.Context, params pagination.Params) ([]*AccountAccessor, int, error)
}
