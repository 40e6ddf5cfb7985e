// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/giftme/giftme/internal/platform/request"
	"github.com/giftme/giftme/internal/platform/respond"
	"github.com/giftme/giftme/internal/platform/validate"
)

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the account lifecycle entry points: registration,
// sign-in, sign-out, and the password-reset email trigger.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /signup             : Creates a new account (public).
//   - POST /signin             : Verifies credentials, opens a session (public).
//   - POST /password/reset     : Sends a password-reset email (public).
//   - POST /signout            : Clears the refresh token (session required).
//   - POST /email/verification : Sends a verification email (session required).
//   - PUT  /email              : Changes the caller's email (session required).
//   - PUT  /password           : Changes the caller's password (session required).
//
// sessionGate is mounted only around /signout; the other routes must stay
// reachable without a token.
func (handler *Handler) Routes(sessionGate func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	router.Post("/signup", handler.signUp)
	router.Post("/signin", handler.signIn)
	router.Post("/password/reset", handler.resetPassword)

	router.Group(func(private chi.Router) {
		private.Use(sessionGate)
		private.Post("/signout", handler.signOut)
		private.Post("/email/verification", handler.verifyEmail)
		private.Put("/email", handler.changeEmail)
		private.Put("/password", handler.changePassword)
	})

	return router
}

// signUpRequest represents the JSON payload expected for account creation.
type signUpRequest struct {
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	Username    string     `json:"username"`
	DisplayName *string    `json:"display_name"`
	DateOfBirth *time.Time `json:"date_of_birth"`
}

// signUp handles POST /api/v1/auth/signup requests.
//
// # Returns
//   - Writes HTTP 201 Created on success with the session token and account.
//   - Writes HTTP 400 Bad Request if validation rules fail.
//   - Writes HTTP 409 Conflict if the email or username is taken.
func (handler *Handler) signUp(writer http.ResponseWriter, req *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input signUpRequest
	if err := requestutil.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	// ── 2. Application Execution ──────────────────────────────────────────

	// Shape AND uniqueness validation run inside the service's rule chain,
	// so every defect comes back in one response.
	session, err := handler.authService.SignUp(req.Context(), SignUpInput{
		Email:       input.Email,
		Password:    input.Password,
		Username:    input.Username,
		DisplayName: input.DisplayName,
		DateOfBirth: input.DateOfBirth,
	})
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	// ── 3. Presentation Output ────────────────────────────────────────────

	respond.Created(writer, session)
}

// signInRequest represents the JSON payload expected for authentication.
type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// signIn handles POST /api/v1/auth/signin requests.
//
// # Returns
//   - Writes HTTP 200 OK on success with the session token and account.
//   - Writes HTTP 401 Unauthorized for bad credentials (always opaque).
func (handler *Handler) signIn(writer http.ResponseWriter, req *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input signInRequest
	if err := requestutil.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	if input.Email == "" || input.Password == "" {
		respond.Error(writer, req, validate.RequiredError("email/password", "are required"))
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	session, err := handler.authService.SignIn(req.Context(), input.Email, input.Password)
	if err != nil {
		// Returns HTTP 401 without leaking the reason (wrong pass vs wrong email).
		respond.Error(writer, req, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────

	respond.OK(writer, session)
}

// signOut handles POST /api/v1/auth/signout requests.
//
// Requires a live session; the session gate in front of this route has
// already populated the claims.
func (handler *Handler) signOut(writer http.ResponseWriter, req *http.Request) {
	email, err := requestutil.RequiredEmail(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.authService.SignOut(req.Context(), email); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}

// verifyEmail handles POST /api/v1/auth/email/verification requests.
//
// The address is taken from the caller's claims, never from the payload, so
// verification emails can only go to the caller's own inbox.
func (handler *Handler) verifyEmail(writer http.ResponseWriter, req *http.Request) {
	email, err := requestutil.RequiredEmail(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.authService.VerifyEmail(req.Context(), email); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}

// changeEmailRequest is the JSON payload for an email change.
type changeEmailRequest struct {
	NewEmail string `json:"new_email"`
}

// changeEmail handles PUT /api/v1/auth/email requests.
//
// # Returns
//   - Writes HTTP 200 OK with the superseding session (the provider rotates
//     tokens on credential changes).
//   - Writes HTTP 409 Conflict if the new email is already registered.
func (handler *Handler) changeEmail(writer http.ResponseWriter, req *http.Request) {
	email, err := requestutil.RequiredEmail(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	var input changeEmailRequest
	if err := requestutil.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	session, err := handler.authService.ChangeEmail(req.Context(), email, input.NewEmail)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, session)
}

// changePasswordRequest is the JSON payload for a password change.
type changePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// changePassword handles PUT /api/v1/auth/password requests.
func (handler *Handler) changePassword(writer http.ResponseWriter, req *http.Request) {
	email, err := requestutil.RequiredEmail(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	session, err := handler.authService.ChangePassword(req.Context(), email, input.NewPassword)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, session)
}

// resetPasswordRequest is the JSON payload for the password-reset trigger.
type resetPasswordRequest struct {
	Email string `json:"email"`
}

// resetPassword handles POST /api/v1/auth/password/reset requests.
//
// # Returns
//   - Writes HTTP 204 No Content whether or not the email exists, so the
//     endpoint cannot be used to enumerate accounts.
//   - Writes HTTP 429 Too Many Requests inside the throttle window.
func (handler *Handler) resetPassword(writer http.ResponseWriter, req *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.authService.ResetPassword(req.Context(), input.Email); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}
