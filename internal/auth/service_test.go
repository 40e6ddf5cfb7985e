// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

package auth_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftme/giftme/internal/auth"
	"github.com/giftme/giftme/internal/identity"
	"github.com/giftme/giftme/internal/platform/apperr"
	"github.com/giftme/giftme/internal/platform/ctxutil"
	"github.com/giftme/giftme/internal/provider/firebase"
	"github.com/giftme/giftme/pkg/pagination"
	"github.com/giftme/giftme/pkg/pointer"
)

// # Test Doubles

// memAccounts is an in-memory identity.AccountRepository.
//
// Reads hand out copies, and every method holds the mutex, so concurrent
// service calls against the same fake behave like concurrent queries
// against a real database.
type memAccounts struct {
	mu      sync.Mutex
	byEmail map[string]*identity.Account
	created []*identity.Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byEmail: map[string]*identity.Account{}}
}

func (m *memAccounts) FindByID(_ context.Context, id string) (*identity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.byEmail {
		if account.ID == id {
			clone := *account
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (m *memAccounts) FindByEmail(_ context.Context, email string) (*identity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	clone := *account
	return &clone, nil
}

func (m *memAccounts) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *memAccounts) ExistsByUsername(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.byEmail {
		if account.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAccounts) Create(_ context.Context, account *identity.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEmail[account.Email] = account
	m.created = append(m.created, account)
	return nil
}

func (m *memAccounts) Update(_ context.Context, account *identity.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEmail[account.Email] = account
	return nil
}

func (m *memAccounts) UpdateRefreshToken(_ context.Context, accountID string, token *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.byEmail {
		if account.ID == accountID {
			account.RefreshToken = token
			return nil
		}
	}
	return apperr.NotFound("Account")
}

func (m *memAccounts) HasRefreshToken(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byEmail[email]
	return ok && account.RefreshToken != nil, nil
}

func (m *memAccounts) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, account := range m.byEmail {
		if account.ID == id {
			delete(m.byEmail, email)
			return nil
		}
	}
	return apperr.NotFound("Account")
}

// storedRefreshToken reads the current refresh token under the lock.
func (m *memAccounts) storedRefreshToken(email string) *string {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byEmail[email]
	if !ok {
		return nil
	}
	return account.RefreshToken
}

// memAccessors is an in-memory identity.AccessorRepository.
type memAccessors struct {
	rows map[string]*identity.AccountAccessor // keyed by accessor ID
}

func newMemAccessors() *memAccessors {
	return &memAccessors{rows: map[string]*identity.AccountAccessor{}}
}

func (m *memAccessors) Create(_ context.Context, accessor *identity.AccountAccessor) error {
	m.rows[accessor.ID] = accessor
	return nil
}

func (m *memAccessors) Update(_ context.Context, accessor *identity.AccountAccessor) error {
	m.rows[accessor.ID] = accessor
	return nil
}

func (m *memAccessors) Delete(_ context.Context, id string) error {
	delete(m.rows, id)
	return nil
}

func (m *memAccessors) FindByAccountID(_ context.Context, accountID string) (*identity.AccountAccessor, error) {
	for _, accessor := range m.rows {
		if accessor.AccountID == accountID {
			return accessor, nil
		}
	}
	return nil, apperr.NotFound("Access request")
}

func (m *memAccessors) ListOpen(_ context.Context, _ pagination.Params) ([]*identity.AccountAccessor, int, error) {
	list := make([]*identity.AccountAccessor, 0, len(m.rows))
	for _, accessor := range m.rows {
		list = append(list, accessor)
	}
	return list, len(list), nil
}

// fakeProvider scripts the identity provider. Safe for concurrent use.
type fakeProvider struct {
	mu          sync.Mutex
	credentials *firebase.Credentials
	err         error

	// rotate makes every Refresh mint a distinct token pair, mimicking the
	// real provider's rotation. Issued refresh tokens are recorded so tests
	// can check that whatever ends up stored was genuinely issued.
	rotate       bool
	issuedTokens []string

	signUpNames   []string
	signUpCalls   int
	signInCalls   int
	refreshes     int
	resets        int
	verifications int
}

func (f *fakeProvider) SignUp(_ context.Context, _, _, displayName string) (*firebase.Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signUpCalls++
	f.signUpNames = append(f.signUpNames, displayName)
	return f.credentials, f.err
}

func (f *fakeProvider) SignIn(_ context.Context, _, _ string) (*firebase.Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signInCalls++
	return f.credentials, f.err
}

func (f *fakeProvider) Refresh(_ context.Context, _ string) (*firebase.Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.rotate {
		minted := &firebase.Credentials{
			IDToken:      fmt.Sprintf("id-token-%d", f.refreshes),
			RefreshToken: fmt.Sprintf("rotated-refresh-%d", f.refreshes),
			UserID:       "provider-uid-1",
		}
		f.issuedTokens = append(f.issuedTokens, minted.RefreshToken)
		return minted, nil
	}
	return f.credentials, f.err
}

func (f *fakeProvider) SendPasswordReset(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return f.err
}

func (f *fakeProvider) SendEmailVerification(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifications++
	return f.err
}

func (f *fakeProvider) ChangeEmail(_ context.Context, _, _ string) (*firebase.Credentials, error) {
	return f.credentials, f.err
}

func (f *fakeProvider) ChangePassword(_ context.Context, _, _ string) (*firebase.Credentials, error) {
	return f.credentials, f.err
}

// fakeThrottle scripts the out-of-band email throttle.
type fakeThrottle struct {
	allow bool
	err   error
}

func (f *fakeThrottle) Allow(_ context.Context, _ string) (bool, error) {
	return f.allow, f.err
}

func validCredentials() *firebase.Credentials {
	return &firebase.Credentials{
		IDToken:      "id-token-1",
		RefreshToken: "refresh-token-1",
		UserID:       "provider-uid-1",
	}
}

func validSignUp() auth.SignUpInput {
	return auth.SignUpInput{
		Email:       "anna@example.com",
		Password:    "supersecret",
		Username:    "anna",
		DisplayName: pointer.To("Anna B"),
	}
}

// # Sign Up

/*
TestSignUp_Success verifies the happy path: provider identity created, local
account stored as pending user, refresh token persisted, and an open access
request queued.
*/
func TestSignUp_Success(t *testing.T) {
	accounts := newMemAccounts()
	accessors := newMemAccessors()
	provider := &fakeProvider{credentials: validCredentials()}
	service := auth.NewService(accounts, accessors, provider, &fakeThrottle{allow: true})

	session, err := service.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	assert.Equal(t, "id-token-1", session.Token)
	assert.Equal(t, identity.RoleUser, session.Account.Role)
	assert.Equal(t, identity.StatusPending, session.Account.Status)
	assert.Equal(t, "provider-uid-1", session.Account.ProviderUID)
	require.NotNil(t, session.Account.RefreshToken)
	assert.Equal(t, "refresh-token-1", *session.Account.RefreshToken)

	// The display name is stored locally AND forwarded to the provider.
	require.NotNil(t, session.Account.DisplayName)
	assert.Equal(t, "Anna B", *session.Account.DisplayName)
	require.Len(t, provider.signUpNames, 1)
	assert.Equal(t, "Anna B", provider.signUpNames[0])

	// One explicit pending access request must exist for the new account.
	accessor, err := accessors.FindByAccountID(context.Background(), session.Account.ID)
	require.NoError(t, err)
	assert.Equal(t, identity.StatusPending, accessor.Status)
}

/*
TestSignUp_DuplicateEmail verifies that uniqueness is checked BEFORE the
provider call: a taken email yields 409 and the provider sees no traffic,
so no orphaned provider identity can exist.
*/
func TestSignUp_DuplicateEmail(t *testing.T) {
	accounts := newMemAccounts()
	accounts.byEmail["anna@example.com"] = &identity.Account{
		ID: "acc-1", Email: "anna@example.com", Username: "other",
	}
	provider := &fakeProvider{credentials: validCredentials()}
	service := auth.NewService(accounts, newMemAccessors(), provider, &fakeThrottle{allow: true})

	_, err := service.SignUp(context.Background(), validSignUp())
	require.Error(t, err)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)
	assert.Zero(t, provider.signUpCalls)
}

/*
TestSignUp_CollectsAllDefects verifies the collect-all policy: every failing
rule appears in one response instead of a fix-one-resubmit loop.
*/
func TestSignUp_CollectsAllDefects(t *testing.T) {
	provider := &fakeProvider{credentials: validCredentials()}
	service := auth.NewService(newMemAccounts(), newMemAccessors(), provider, &fakeThrottle{allow: true})

	_, err := service.SignUp(context.Background(), auth.SignUpInput{
		Email:    "not-an-email",
		Password: "short",
		Username: "x",
	})
	require.Error(t, err)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	assert.Len(t, appErr.Details, 3)
	assert.Zero(t, provider.signUpCalls)
}

/*
TestSignUp_DisplayName verifies that the display name is optional, but when
present must satisfy the same length bounds as the username.
*/
func TestSignUp_DisplayName(t *testing.T) {
	t.Run("omitted_is_fine", func(t *testing.T) {
		provider := &fakeProvider{credentials: validCredentials()}
		service := auth.NewService(newMemAccounts(), newMemAccessors(), provider, &fakeThrottle{allow: true})

		input := validSignUp()
		input.DisplayName = nil

		session, err := service.SignUp(context.Background(), input)
		require.NoError(t, err)
		assert.Nil(t, session.Account.DisplayName)

		// The provider payload carries no name either.
		require.Len(t, provider.signUpNames, 1)
		assert.Empty(t, provider.signUpNames[0])
	})

	t.Run("out_of_bounds_rejected", func(t *testing.T) {
		provider := &fakeProvider{credentials: validCredentials()}
		service := auth.NewService(newMemAccounts(), newMemAccessors(), provider, &fakeThrottle{allow: true})

		input := validSignUp()
		input.DisplayName = pointer.To("A")

		_, err := service.SignUp(context.Background(), input)
		require.Error(t, err)

		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
		require.Len(t, appErr.Details, 1)
		assert.Equal(t, "display_name", appErr.Details[0].Field)
		assert.Zero(t, provider.signUpCalls)
	})
}

// # Sign In

/*
TestSignIn_Success verifies that a provider-verified sign-in rotates the
stored refresh token.
*/
func TestSignIn_Success(t *testing.T) {
	accounts := newMemAccounts()
	accounts.byEmail["anna@example.com"] = &identity.Account{
		ID: "acc-1", Email: "anna@example.com", Status: identity.StatusAccepted,
	}
	provider := &fakeProvider{credentials: validCredentials()}
	service := auth.NewService(accounts, newMemAccessors(), provider, &fakeThrottle{allow: true})

	session, err := service.SignIn(context.Background(), "anna@example.com", "supersecret")
	require.NoError(t, err)

	assert.Equal(t, "id-token-1", session.Token)
	require.NotNil(t, accounts.byEmail["anna@example.com"].RefreshToken)
	assert.Equal(t, "refresh-token-1", *accounts.byEmail["anna@example.com"].RefreshToken)
}

/*
TestSignIn_Opaque verifies that bad credentials and unknown local accounts
are indistinguishable 401s.
*/
func TestSignIn_Opaque(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
		seed     bool
	}{
		{"provider_rejects", &fakeProvider{err: &firebase.ProviderError{StatusCode: 400, Reason: "INVALID_PASSWORD"}}, true},
		{"no_local_account", &fakeProvider{credentials: validCredentials()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := newMemAccounts()
			if tt.seed {
				accounts.byEmail["anna@example.com"] = &identity.Account{ID: "acc-1", Email: "anna@example.com"}
			}
			service := auth.NewService(accounts, newMemAccessors(), tt.provider, &fakeThrottle{allow: true})

			_, err := service.SignIn(context.Background(), "anna@example.com", "whatever")
			require.Error(t, err)

			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
			assert.Equal(t, "Invalid credentials", appErr.Message)
		})
	}
}

// # Session Refresh

/*
TestRefreshToken_RotatesStoredToken verifies that a refresh persists the
provider's rotated refresh token before returning the new bearer token.
*/
func TestRefreshToken_RotatesStoredToken(t *testing.T) {
	stored := "old-refresh"
	accounts := newMemAccounts()
	accounts.byEmail["anna@example.com"] = &identity.Account{
		ID: "acc-1", Email: "anna@example.com", RefreshToken: &stored,
	}
	provider := &fakeProvider{credentials: &firebase.Credentials{
		IDToken:      "fresh-id-token",
		RefreshToken: "rotated-refresh",
		UserID:       "provider-uid-1",
	}}
	service := auth.NewService(accounts, newMemAccessors(), provider, &fakeThrottle{allow: true})

	token, err := service.RefreshToken(context.Background(), "anna@example.com")
	require.NoError(t, err)

	assert.Equal(t, "fresh-id-token", token)
	assert.Equal(t, 1, provider.refreshes)
	require.NotNil(t, accounts.byEmail["anna@example.com"].RefreshToken)
	assert.Equal(t, "rotated-refresh", *accounts.byEmail["anna@example.com"].RefreshToken)
}

/*
TestRefreshToken_ConcurrentRefreshes verifies that simultaneous refreshes for
the same account all complete without hanging. The provider rotates the token
on every exchange, so the two writes race; whichever lands last wins, and the
stored token must be one the provider actually issued.
*/
func TestRefreshToken_ConcurrentRefreshes(t *testing.T) {
	stored := "old-refresh"
	accounts := newMemAccounts()
	accounts.byEmail["anna@example.com"] = &identity.Account{
		ID: "acc-1", Email: "anna@example.com", RefreshToken: &stored,
	}
	provider := &fakeProvider{rotate: true}
	service := auth.NewService(accounts, newMemAccessors(), provider, &fakeThrottle{allow: true})

	const callers = 2
	tokens := make([]string, callers)
	errs := make([]error, callers)

	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				tokens[i], errs[i] = service.RefreshToken(context.Background(), "anna@example.com")
			}(i)
		}
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("concurrent refreshes did not complete")
	}

	// Both callers got a valid bearer token.
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.NotEmpty(t, tokens[i])
	}
	assert.Equal(t, callers, provider.refreshes)

	// Last write wins, but the winner must be a token the provider issued.
	final := accounts.storedRefreshToken("anna@example.com")
	require.NotNil(t, final)
	assert.Contains(t, provider.issuedTokens, *final)
}

/*
TestRefreshToken_SignedOut verifies that a cleared refresh token cannot be
exchanged — the provider is never contacted.
*/
func TestRefreshToken_SignedOut(t *testing.T) {
	accounts := newMemAccounts()
	accounts.byEmail["anna@example.com"] = &identity.Account{ID: "acc-1", Email: "anna@example.com"}
	provider := &fakeProvider{credentials: validCredentials()}
	service := auth.NewService(accounts, newMemAccessors(), provider, &fakeThrottle{allow: true})

	_, err := service.RefreshToken(context.Background(), "anna@example.com")
	require.Error(t, err)
	assert.Zero(t, provider.refreshes)
}

/*
TestSignOut_ClearsRefreshToken verifies that sign-out disables transparent
refresh by clearing the stored token.
*/
func TestSignOut_ClearsRefreshToken(t *testing.T) {
	stored := "live-refresh"
	accounts := newMemAccounts()
	accounts.byEmail["anna@example.com"] = &identity.Account{
		ID: "acc-1", Email: "anna@example.com", RefreshToken: &stored,
	}
	service := auth.NewService(accounts, newMemAccessors(), &fakeProvider{}, &fakeThrottle{allow: true})

	require.NoError(t, service.SignOut(context.Background(), "anna@example.com"))
	assert.Nil(t, accounts.byEmail["anna@example.com"].RefreshToken)

	has, err := service.HasRefreshToken(context.Background(), "anna@example.com")
	require.NoError(t, err)
	assert.False(t, has)
}

// # Password Reset

/*
TestResetPassword covers the throttle window, the account-enumeration
suppression, and transport failures.
*/
func TestResetPassword(t *testing.T) {
	t.Run("throttled", func(t *testing.T) {
		provider := &fakeProvider{}
		service := auth.NewService(newMemAccounts(), newMemAccessors(), provider, &fakeThrottle{allow: false})

		err := service.ResetPassword(context.Background(), "anna@example.com")
		require.Error(t, err)

		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, http.StatusTooManyRequests, appErr.HTTPStatus)
		assert.Zero(t, provider.resets)
	})

	t.Run("unknown_email_suppressed", func(t *testing.T) {
		provider := &fakeProvider{err: &firebase.ProviderError{StatusCode: 400, Reason: "EMAIL_NOT_FOUND"}}
		service := auth.NewService(newMemAccounts(), newMemAccessors(), provider, &fakeThrottle{allow: true})

		// The caller must not learn whether the address exists.
		assert.NoError(t, service.ResetPassword(context.Background(), "ghost@example.com"))
		assert.Equal(t, 1, provider.resets)
	})

	t.Run("transport_failure_surfaces", func(t *testing.T) {
		provider := &fakeProvider{err: errors.New("connection refused")}
		service := auth.NewService(newMemAccounts(), newMemAccessors(), provider, &fakeThrottle{allow: true})

		err := service.ResetPassword(context.Background(), "anna@example.com")
		require.Error(t, err)

		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadGateway, appErr.HTTPStatus)
	})
}

/*
TestChangeEmail verifies the provider-first email change: the local record
follows the provider, collisions are refused, and the rotated token pair
supersedes the old session.
*/
func TestChangeEmail(t *testing.T) {
	ctx := ctxutil.WithBearer(context.Background(), "live-bearer")

	t.Run("success", func(t *testing.T) {
		accounts := newMemAccounts()
		accounts.byEmail["anna@example.com"] = &identity.Account{ID: "acc-1", Email: "anna@example.com"}
		provider := &fakeProvider{credentials: validCredentials()}
		service := auth.NewService(accounts, newMemAccessors(), provider, &fakeThrottle{allow: true})

		session, err := service.ChangeEmail(ctx, "anna@example.com", "anna@newmail.com")
		require.NoError(t, err)

		assert.Equal(t, "id-token-1", session.Token)
		assert.Equal(t, "anna@newmail.com", session.Account.Email)
		require.NotNil(t, session.Account.RefreshToken)
	})

	t.Run("new_email_taken", func(t *testing.T) {
		accounts := newMemAccounts()
		accounts.byEmail["anna@example.com"] = &identity.Account{ID: "acc-1", Email: "anna@example.com"}
		accounts.byEmail["ben@example.com"] = &identity.Account{ID: "acc-2", Email: "ben@example.com"}
		provider := &fakeProvider{credentials: validCredentials()}
		service := auth.NewService(accounts, newMemAccessors(), provider, &fakeThrottle{allow: true})

		_, err := service.ChangeEmail(ctx, "anna@example.com", "ben@example.com")
		require.Error(t, err)

		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)
	})

	t.Run("no_bearer", func(t *testing.T) {
		accounts := newMemAccounts()
		accounts.byEmail["anna@example.com"] = &identity.Account{ID: "acc-1", Email: "anna@example.com"}
		service := auth.NewService(accounts, newMemAccessors(), &fakeProvider{}, &fakeThrottle{allow: true})

		_, err := service.ChangeEmail(context.Background(), "anna@example.com", "anna@newmail.com")
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, apperr.As(err).HTTPStatus)
	})
}

/*
TestChangePassword verifies the minimum-length check and the refresh-token
rotation after a successful change.
*/
func TestChangePassword(t *testing.T) {
	ctx := ctxutil.WithBearer(context.Background(), "live-bearer")

	t.Run("success_rotates_token", func(t *testing.T) {
		accounts := newMemAccounts()
		accounts.byEmail["anna@example.com"] = &identity.Account{ID: "acc-1", Email: "anna@example.com"}
		provider := &fakeProvider{credentials: validCredentials()}
		service := auth.NewService(accounts, newMemAccessors(), provider, &fakeThrottle{allow: true})

		session, err := service.ChangePassword(ctx, "anna@example.com", "newsupersecret")
		require.NoError(t, err)

		assert.Equal(t, "id-token-1", session.Token)
		require.NotNil(t, accounts.byEmail["anna@example.com"].RefreshToken)
	})

	t.Run("too_short", func(t *testing.T) {
		service := auth.NewService(newMemAccounts(), newMemAccessors(), &fakeProvider{}, &fakeThrottle{allow: true})

		_, err := service.ChangePassword(ctx, "anna@example.com", "short")
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperr.As(err).HTTPStatus)
	})
}

/*
TestVerifyEmail verifies that the verification email goes to the identity
behind the caller's bearer token and shares the per-address throttle.
*/
func TestVerifyEmail(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		provider := &fakeProvider{}
		service := auth.NewService(newMemAccounts(), newMemAccessors(), provider, &fakeThrottle{allow: true})

		ctx := ctxutil.WithBearer(context.Background(), "live-bearer")
		require.NoError(t, service.VerifyEmail(ctx, "anna@example.com"))
		assert.Equal(t, 1, provider.verifications)
	})

	t.Run("no_bearer_in_context", func(t *testing.T) {
		provider := &fakeProvider{}
		service := auth.NewService(newMemAccounts(), newMemAccessors(), provider, &fakeThrottle{allow: true})

		err := service.VerifyEmail(context.Background(), "anna@example.com")
		require.Error(t, err)

		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
		assert.Zero(t, provider.verifications)
	})

	t.Run("throttled", func(t *testing.T) {
		provider := &fakeProvider{}
		service := auth.NewService(newMemAccounts(), newMemAccessors(), provider, &fakeThrottle{allow: false})

		ctx := ctxutil.WithBearer(context.Background(), "live-bearer")
		err := service.VerifyEmail(ctx, "anna@example.com")
		require.Error(t, err)

		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, http.StatusTooManyRequests, appErr.HTTPStatus)
		assert.Zero(t, provider.verifications)
	})
}
