// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

package firebase

import "fmt"

// Credentials is the distilled result of any provider call that mints tokens.
type Credentials struct {
	// IDToken is the short-lived bearer token clients present on every request.
	IDToken string

	// RefreshToken is the long-lived token stored server-side and used for
	// transparent session renewal.
	RefreshToken string

	// UserID is the provider-side account identifier (localId).
	UserID string
}

// ProviderError is a structured rejection from the identity provider.
//
// Reason carries the provider's machine-readable code (EMAIL_NOT_FOUND,
// INVALID_PASSWORD, TOKEN_EXPIRED, ...). It is for server-side logging and
// branching only and must never be surfaced to clients verbatim.
type ProviderError struct {
	StatusCode int
	Reason     string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("firebase: provider rejected request (%d %s)", e.StatusCode, e.Reason)
}

// # Wire Types — Identity Toolkit (camelCase)

type signUpRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	DisplayName       string `json:"displayName,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type updateAccountRequest struct {
	IDToken           string `json:"idToken"`
	Email             string `json:"email,omitempty"`
	Password          string `json:"password,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type sendOobCodeRequest struct {
	RequestType string `json:"requestType"`
	Email       string `json:"email"`
}

type tokenResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	ExpiresIn    string `json:"expiresIn"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// # Wire Types — Secure Token Service (snake_case)

// The token exchange endpoint is an OAuth2-style service and answers in
// snake_case, unlike the camelCase Identity Toolkit endpoints.
type refreshRequest struct {
	GrantType    string `json:"grant_type"`
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    string `json:"expires_in"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	UserID       string `json:"user_id"`
	ProjectID    string `json:"project_id"`
}
