// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

package identity

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/giftme/giftme/internal/platform/request"
	"github.com/giftme/giftme/internal/platform/respond"
	"github.com/giftme/giftme/internal/platform/validate"
	"github.com/giftme/giftme/pkg/pagination"
)

// AdminHandler implements the admin access-queue HTTP endpoints.
//
// # Scope
//
// These routes must be mounted behind the role gate (admin or owner).
type AdminHandler struct {
	accessorService *AccessorService
}

// NewAdminHandler constructs a new [AdminHandler] with its service dependency.
func NewAdminHandler(service *AccessorService) *AdminHandler {
	return &AdminHandler{accessorService: service}
}

// Routes returns a [chi.Router] configured with the admin access routes.
//
// # Endpoints
//   - GET  /admin/access : Lists open access requests (paginated).
//   - POST /admin/access : Records a decision on an account's access.
func (handler *AdminHandler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/access", handler.listAccess)
	router.Post("/access", handler.decideAccess)

	return router
}

// listAccess handles GET /api/v1/admin/access requests.
func (handler *AdminHandler) listAccess(writer http.ResponseWriter, req *http.Request) {
	params := pagination.FromRequest(req)

	accessors, total, err := handler.accessorService.ListOpen(req.Context(), params)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.Paginated(writer, accessors, pagination.NewMeta(params.Page, params.Limit, total))
}

// accessDecisionRequest is the JSON payload for an access decision.
type accessDecisionRequest struct {
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
}

// decideAccess handles POST /api/v1/admin/access requests.
//
// # Returns
//   - Writes HTTP 200 OK with the account carrying its new status.
//   - Writes HTTP 400 Bad Request for an unknown status value.
//   - Writes HTTP 404 Not Found if the account does not exist.
func (handler *AdminHandler) decideAccess(writer http.ResponseWriter, req *http.Request) {
	claims, err := requestutil.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	var input accessDecisionRequest
	if err := requestutil.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	// Fast-fail shape checks before touching the service layer.
	validator := &validate.Validator{}
	validator.
		Required("account_id", input.AccountID).
		UUID("account_id", input.AccountID).
		Required("status", input.Status)

	if err := validator.Err(); err != nil {
		respond.Error(writer, req, err)
		return
	}

	account, err := handler.accessorService.UpdateStatus(
		req.Context(), input.AccountID, AccessStatus(input.Status), claims.Email)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, account)
}
