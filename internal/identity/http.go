// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

package identity

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/giftme/giftme/internal/platform/request"
	"github.com/giftme/giftme/internal/platform/respond"
)

// Handler implements the caller-facing account HTTP endpoints.
//
// # Scope
//
// Everything here operates on "the account behind the bearer token": a
// caller can only ever read, update, or delete their own account. The
// session gate must be mounted in front of every route in this handler.
type Handler struct {
	accountService *AccountService
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *AccountService) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with account routes.
//
// # Endpoints
//   - GET    /account : Returns the caller's account.
//   - PUT    /account : Applies a partial profile update.
//   - DELETE /account : Soft-deletes the caller's account.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.getAccount)
	router.Put("/", handler.updateAccount)
	router.Delete("/", handler.deleteAccount)

	return router
}

// getAccount handles GET /api/v1/account requests.
func (handler *Handler) getAccount(writer http.ResponseWriter, req *http.Request) {
	email, err := requestutil.RequiredEmail(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	account, err := handler.accountService.GetByEmail(req.Context(), email)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, account)
}

// updateAccount handles PUT /api/v1/account requests.
//
// # Returns
//   - Writes HTTP 200 OK with the updated account.
//   - Writes HTTP 400 Bad Request if validation rules fail.
func (handler *Handler) updateAccount(writer http.ResponseWriter, req *http.Request) {
	email, err := requestutil.RequiredEmail(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	var input ProfileUpdate
	if err := requestutil.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	account, err := handler.accountService.UpdateProfile(req.Context(), email, input)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, account)
}

// deleteAccount handles DELETE /api/v1/account requests.
func (handler *Handler) deleteAccount(writer http.ResponseWriter, req *http.Request) {
	email, err := requestutil.RequiredEmail(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.accountService.Delete(req.Context(), email); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}
