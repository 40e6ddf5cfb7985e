// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

/*
Package firebase is the REST client for the external identity provider
(Firebase Authentication / Google Identity Platform).

GiftMe never stores passwords: credential verification, password changes,
and out-of-band emails are all delegated to the provider through this
client. The rest of the platform talks to it through the narrow interfaces
declared by the auth service, so tests substitute it freely.

Architecture:

  - Identity Toolkit endpoints (camelCase JSON): sign-up, sign-in,
    account update, out-of-band codes.
  - Secure Token endpoint (snake_case JSON): refresh-token exchange.
  - Every method issues exactly one POST and honours the caller's context.
*/
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	identityToolkitBaseURL = "https://identitytoolkit.googleapis.com/v1"
	secureTokenBaseURL     = "https://securetoken.googleapis.com/v1"

	oobTypePasswordReset = "PASSWORD_RESET"
	oobTypeVerifyEmail   = "VERIFY_EMAIL"

	defaultHTTPTimeout = 10 * time.Second
)

// Client calls the identity provider's REST API.
//
// # Concurrency
//
// Client is immutable after construction and safe for concurrent use.
type Client struct {
	httpClient *http.Client
	apiKey     string

	// Base URLs are fields so tests can point the client at an httptest server.
	identityURL string
	tokenURL    string
}

// Option customizes a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithBaseURLs overrides the provider endpoints. Used in tests.
func WithBaseURLs(identityURL, tokenURL string) Option {
	return func(c *Client) {
		c.identityURL = identityURL
		c.tokenURL = tokenURL
	}
}

// New constructs a provider client for the given web API key.
func New(apiKey string, opts ...Option) *Client {
	client := &Client{
		httpClient:  &http.Client{Timeout: defaultHTTPTimeout},
		apiKey:      apiKey,
		identityURL: identityToolkitBaseURL,
		tokenURL:    secureTokenBaseURL,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// # Account Lifecycle

// SignUp registers a new email/password identity with the provider.
// displayName is optional; the provider stores it on the identity when set.
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (*Credentials, error) {
	payload := signUpRequest{
		Email:             email,
		Password:          password,
		DisplayName:       displayName,
		ReturnSecureToken: true,
	}

	var result tokenResponse
	if err := c.post(ctx, c.identityURL+"/accounts:signUp", payload, &result); err != nil {
		return nil, err
	}

	return &Credentials{
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		UserID:       result.LocalID,
	}, nil
}

// SignIn verifies an email/password pair and mints fresh tokens.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	payload := signInRequest{Email: email, Password: password, ReturnSecureToken: true}

	var result tokenResponse
	if err := c.post(ctx, c.identityURL+"/accounts:signInWithPassword", payload, &result); err != nil {
		return nil, err
	}

	return &Credentials{
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		UserID:       result.LocalID,
	}, nil
}

// Refresh exchanges a long-lived refresh token for a fresh ID token.
//
// The provider may rotate the refresh token; callers must persist the
// returned one.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Credentials, error) {
	payload := refreshRequest{GrantType: "refresh_token", RefreshToken: refreshToken}

	var result refreshResponse
	if err := c.post(ctx, c.tokenURL+"/token", payload, &result); err != nil {
		return nil, err
	}

	return &Credentials{
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		UserID:       result.UserID,
	}, nil
}

// # Account Mutation

// ChangeEmail points the provider identity at a new email address.
// Requires the caller's current (live) ID token.
func (c *Client) ChangeEmail(ctx context.Context, idToken, newEmail string) (*Credentials, error) {
	payload := updateAccountRequest{IDToken: idToken, Email: newEmail, ReturnSecureToken: true}
	return c.updateAccount(ctx, payload)
}

// ChangePassword sets a new password on the provider identity.
// Requires the caller's current (live) ID token.
func (c *Client) ChangePassword(ctx context.Context, idToken, newPassword string) (*Credentials, error) {
	payload := updateAccountRequest{IDToken: idToken, Password: newPassword, ReturnSecureToken: true}
	return c.updateAccount(ctx, payload)
}

// updateAccount performs the shared accounts:update call. The provider
// answers a credential update with a fresh token pair.
func (c *Client) updateAccount(ctx context.Context, payload updateAccountRequest) (*Credentials, error) {
	var result tokenResponse
	if err := c.post(ctx, c.identityURL+"/accounts:update", payload, &result); err != nil {
		return nil, err
	}

	return &Credentials{
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		UserID:       result.LocalID,
	}, nil
}

// DeleteAccount removes the provider identity behind the given ID token.
// Every token minted for it stops refreshing immediately.
func (c *Client) DeleteAccount(ctx context.Context, idToken string) error {
	payload := struct {
		IDToken string `json:"idToken"`
	}{IDToken: idToken}

	return c.post(ctx, c.identityURL+"/accounts:delete", payload, &struct{}{})
}

// # Out-of-Band Email

// SendPasswordReset asks the provider to email a password-reset link.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	payload := sendOobCodeRequest{RequestType: oobTypePasswordReset, Email: email}
	return c.post(ctx, c.identityURL+"/accounts:sendOobCode", payload, &struct{}{})
}

// SendEmailVerification asks the provider to email a verification link to
// the identity behind the given ID token.
func (c *Client) SendEmailVerification(ctx context.Context, idToken string) error {
	payload := struct {
		RequestType string `json:"requestType"`
		IDToken     string `json:"idToken"`
	}{RequestType: oobTypeVerifyEmail, IDToken: idToken}

	return c.post(ctx, c.identityURL+"/accounts:sendOobCode", payload, &struct{}{})
}

// # Transport

// post issues a single JSON POST to the provider and decodes the response.
//
// Non-2xx answers become a [*ProviderError] carrying the provider's
// machine-readable message; transport failures are wrapped as plain errors.
func (c *Client) post(ctx context.Context, endpoint string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("firebase: encode request: %w", err)
	}

	url := endpoint + "?key=" + c.apiKey
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("firebase: build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("firebase: call provider: %w", err)
	}
	defer response.Body.Close()

	// Cap the response read so a misbehaving upstream can't exhaust memory.
	raw, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("firebase: read response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		var rejection errorResponse
		_ = json.Unmarshal(raw, &rejection)
		return &ProviderError{
			StatusCode: response.StatusCode,
			Reason:     rejection.Error.Message,
		}
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("firebase: decode response: %w", err)
	}

	return nil
}
