// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

package identity

import (
	"context"
	"log/slog"

	"github.com/giftme/giftme/internal/platform/apperr"
	"github.com/giftme/giftme/internal/platform/ctxutil"
	"github.com/giftme/giftme/pkg/pagination"
	"github.com/giftme/giftme/pkg/uuidv7"
)

// AccessorService implements the admin workflow over access requests.
//
// # Acceptance Semantics
//
// A decision is written to BOTH records: the account's status field mirrors
// the decision, and the accessor row is updated — except for acceptance,
// which deletes the accessor row entirely. An account without an open
// accessor row is, by construction, an accepted account.
type AccessorService struct {
	accounts  AccountRepository
	accessors AccessorRepository
}

// NewAccessorService wires the accessor service with its repositories.
func NewAccessorService(accounts AccountRepository, accessors AccessorRepository) *AccessorService {
	return &AccessorService{accounts: accounts, accessors: accessors}
}

// ListOpen returns a page of open access requests for the admin queue.
func (service *AccessorService) ListOpen(ctx context.Context, params pagination.Params) ([]*AccountAccessor, int, error) {
	return service.accessors.ListOpen(ctx, params)
}

// UpdateStatus records an admin's decision on an account's platform access.
//
// # Flow
//  1. Validate the requested status.
//  2. Load the target account and mirror the new status onto it.
//  3. Acceptance deletes the accessor row; any other decision updates it
//     (or recreates it for a previously accepted account being blocked).
func (service *AccessorService) UpdateStatus(ctx context.Context, accountID string, status AccessStatus, decidedBy string) (*Account, error) {

	// ── 1. Decision Validation ────────────────────────────────────────────
	if !status.Valid() || status == StatusPending {
		return nil, apperr.ValidationError("Invalid access decision",
			apperr.FieldError{Field: "status", Message: "Must be one of: accepted, denied, blocked, banned"})
	}

	// ── 2. Account Mirror ─────────────────────────────────────────────────
	account, err := service.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	account.Status = status
	if err := service.accounts.Update(ctx, account); err != nil {
		return nil, err
	}

	// ── 3. Accessor Row ───────────────────────────────────────────────────
	accessor, err := service.accessors.FindByAccountID(ctx, accountID)
	if err != nil {
		if !apperr.IsNotFound(err) {
			return nil, err
		}
		// No open row: the account was previously accepted.
		accessor = nil
	}

	if status == StatusAccepted {
		// Acceptance is recorded by the row's absence.
		if accessor != nil {
			if err := service.accessors.Delete(ctx, accessor.ID); err != nil {
				return nil, err
			}
		}
	} else {
		if accessor == nil {
			accessor = &AccountAccessor{
				ID:        uuidv7.New(),
				AccountID: account.ID,
				Email:     account.Email,
			}
			accessor.Status = status
			accessor.DecidedBy = &decidedBy
			if err := service.accessors.Create(ctx, accessor); err != nil {
				return nil, err
			}
		} else {
			accessor.Status = status
			accessor.DecidedBy = &decidedBy
			if err := service.accessors.Update(ctx, accessor); err != nil {
				return nil, err
			}
		}
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "access_decision_recorded",
		slog.String("account_id", account.ID),
		slog.String("status", string(status)),
		slog.String("decided_by", decidedBy),
	)

	return account, nil
}
