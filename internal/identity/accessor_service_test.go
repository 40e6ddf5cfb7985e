// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

package identity_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftme/giftme/internal/identity"
	"github.com/giftme/giftme/internal/platform/apperr"
	"github.com/giftme/giftme/pkg/pagination"
	"github.com/giftme/giftme/pkg/uuidv7"
)

// # In-Memory Fakes

type fakeAccounts struct {
	byID map[string]*identity.Account
}

func newFakeAccounts(accounts ...*identity.Account) *fakeAccounts {
	store := &fakeAccounts{byID: map[string]*identity.Account{}}
	for _, account := range accounts {
		store.byID[account.ID] = account
	}
	return store
}

func (f *fakeAccounts) FindByID(_ context.Context, id string) (*identity.Account, error) {
	account, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	copied := *account
	return &copied, nil
}

func (f *fakeAccounts) FindByEmail(_ context.Context, email string) (*identity.Account, error) {
	for _, account := range f.byID {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (f *fakeAccounts) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := f.FindByEmail(context.Background(), email)
	return err == nil, nil
}

func (f *fakeAccounts) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, account := range f.byID {
		if account.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccounts) Create(_ context.Context, account *identity.Account) error {
	f.byID[account.ID] = account
	return nil
}

func (f *fakeAccounts) Update(_ context.Context, account *identity.Account) error {
	stored, ok := f.byID[account.ID]
	if !ok {
		return apperr.NotFound("Account")
	}
	account.RefreshToken = stored.RefreshToken
	f.byID[account.ID] = account
	return nil
}

func (f *fakeAccounts) UpdateRefreshToken(_ context.Context, accountID string, token *string) error {
	account, ok := f.byID[accountID]
	if !ok {
		return apperr.NotFound("Account")
	}
	account.RefreshToken = token
	return nil
}

func (f *fakeAccounts) HasRefreshToken(_ context.Context, email string) (bool, error) {
	for _, account := range f.byID {
		if account.Email == email {
			return account.RefreshToken != nil, nil
		}
	}
	return false, apperr.NotFound("Account")
}

func (f *fakeAccounts) SoftDelete(_ context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

type fakeAccessors struct {
	byID map[string]*identity.AccountAccessor
}

func newFakeAccessors(accessors ...*identity.AccountAccessor) *fakeAccessors {
	store := &fakeAccessors{byID: map[string]*identity.AccountAccessor{}}
	for _, accessor := range accessors {
		store.byID[accessor.ID] = accessor
	}
	return store
}

func (f *fakeAccessors) Create(_ context.Context, accessor *identity.AccountAccessor) error {
	f.byID[accessor.ID] = accessor
	return nil
}

func (f *fakeAccessors) Update(_ context.Context, accessor *identity.AccountAccessor) error {
	if _, ok := f.byID[accessor.ID]; !ok {
		return apperr.NotFound("Access request")
	}
	f.byID[accessor.ID] = accessor
	return nil
}

func (f *fakeAccessors) Delete(_ context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeAccessors) FindByAccountID(_ context.Context, accountID string) (*identity.AccountAccessor, error) {
	for _, accessor := range f.byID {
		if accessor.AccountID == accountID {
			copied := *accessor
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Access request")
}

func (f *fakeAccessors) ListOpen(_ context.Context, _ pagination.Params) ([]*identity.AccountAccessor, int, error) {
	open := make([]*identity.AccountAccessor, 0, len(f.byID))
	for _, accessor := range f.byID {
		open = append(open, accessor)
	}
	return open, len(open), nil
}

// # Fixtures

func pendingAccount() (*identity.Account, *identity.AccountAccessor) {
	account := &identity.Account{
		ID:       uuidv7.New(),
		Email:    "anna@example.com",
		Username: "anna",
		Role:     identity.RoleUser,
		Status:   identity.StatusPending,
	}
	accessor := &identity.AccountAccessor{
		ID:        uuidv7.New(),
		AccountID: account.ID,
		Email:     account.Email,
		Status:    identity.StatusPending,
	}
	return account, accessor
}

/*
TestUpdateStatus_AcceptDeletesRow verifies the acceptance convention: the
account mirrors the decision and the accessor row disappears.
*/
func TestUpdateStatus_AcceptDeletesRow(t *testing.T) {
	account, accessor := pendingAccount()
	accounts := newFakeAccounts(account)
	accessors := newFakeAccessors(accessor)
	service := identity.NewAccessorService(accounts, accessors)

	updated, err := service.UpdateStatus(context.Background(), account.ID, identity.StatusAccepted, "admin@giftme.app")
	require.NoError(t, err)

	assert.Equal(t, identity.StatusAccepted, updated.Status)
	assert.Equal(t, identity.StatusAccepted, accounts.byID[account.ID].Status)

	// Acceptance is recorded by the row's absence.
	_, err = accessors.FindByAccountID(context.Background(), account.ID)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestUpdateStatus_DenyUpdatesRow verifies that a non-accept decision keeps the
accessor row and stamps the deciding admin on it.
*/
func TestUpdateStatus_DenyUpdatesRow(t *testing.T) {
	account, accessor := pendingAccount()
	accounts := newFakeAccounts(account)
	accessors := newFakeAccessors(accessor)
	service := identity.NewAccessorService(accounts, accessors)

	updated, err := service.UpdateStatus(context.Background(), account.ID, identity.StatusDenied, "admin@giftme.app")
	require.NoError(t, err)
	assert.Equal(t, identity.StatusDenied, updated.Status)

	row, err := accessors.FindByAccountID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, identity.StatusDenied, row.Status)
	require.NotNil(t, row.DecidedBy)
	assert.Equal(t, "admin@giftme.app", *row.DecidedBy)
}

/*
TestUpdateStatus_BlockAcceptedAccount verifies that blocking a previously
accepted account (no open row) recreates the accessor row.
*/
func TestUpdateStatus_BlockAcceptedAccount(t *testing.T) {
	account, _ := pendingAccount()
	account.Status = identity.StatusAccepted

	accounts := newFakeAccounts(account)
	accessors := newFakeAccessors() // accepted: no row
	service := identity.NewAccessorService(accounts, accessors)

	updated, err := service.UpdateStatus(context.Background(), account.ID, identity.StatusBlocked, "admin@giftme.app")
	require.NoError(t, err)
	assert.Equal(t, identity.StatusBlocked, updated.Status)

	row, err := accessors.FindByAccountID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, identity.StatusBlocked, row.Status)
	assert.Equal(t, account.Email, row.Email)
}

/*
TestUpdateStatus_Rejections verifies that nonsense decisions and unknown
accounts are refused without touching any store.
*/
func TestUpdateStatus_Rejections(t *testing.T) {
	account, accessor := pendingAccount()

	tests := []struct {
		name       string
		accountID  string
		status     identity.AccessStatus
		wantStatus int
	}{
		{"invalid_status", account.ID, identity.AccessStatus("promoted"), http.StatusBadRequest},
		{"pending_is_not_a_decision", account.ID, identity.StatusPending, http.StatusBadRequest},
		{"unknown_account", uuidv7.New(), identity.StatusAccepted, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := newFakeAccounts(account)
			accessors := newFakeAccessors(accessor)
			service := identity.NewAccessorService(accounts, accessors)

			_, err := service.UpdateStatus(context.Background(), tt.accountID, tt.status, "admin@giftme.app")
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, tt.wantStatus, ae.HTTPStatus)

			// The pending state must be untouched.
			assert.Equal(t, identity.StatusPending, accounts.byID[account.ID].Status)
			assert.Equal(t, identity.StatusPending, accessors.byID[accessor.ID].Status)
		})
	}
}

/*
TestListOpen verifies the admin queue pass-through.
*/
func TestListOpen(t *testing.T) {
	account, accessor := pendingAccount()
	service := identity.NewAccessorService(newFakeAccounts(account), newFakeAccessors(accessor))

	open, total, err := service.ListOpen(context.Background(), pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, open, 1)
	assert.Equal(t, account.ID, open[0].AccountID)
}
