// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

package giftlist

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/giftme/giftme/internal/platform/request"
	"github.com/giftme/giftme/internal/platform/respond"
	"github.com/giftme/giftme/pkg/pagination"
)

// AccountResolver maps the caller's email (from token claims) to their
// local account ID.
//
// # Why an interface?
//
// The gift-list domain does not need the whole account record, only the ID
// that scopes every query. Declaring the one-method contract here keeps the
// domain decoupled from the identity package's internals.
type AccountResolver interface {
	AccountIDByEmail(ctx context.Context, email string) (string, error)
}

// Handler implements the gift-list HTTP endpoints.
//
// # Scope
//
// All routes operate on the caller's own lists. The session gate and role
// gate must be mounted in front of this handler.
type Handler struct {
	service  *Service
	accounts AccountResolver
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, accounts AccountResolver) *Handler {
	return &Handler{service: service, accounts: accounts}
}

// Routes returns a [chi.Router] configured with gift-list routes.
//
// # Endpoints
//   - GET    /lists                        : Pages through the caller's lists.
//   - POST   /lists                        : Creates a list.
//   - DELETE /lists                        : Deletes every list the caller owns.
//   - GET    /lists/{listID}               : Returns a list with its ideas.
//   - PUT    /lists/{listID}               : Updates a list.
//   - DELETE /lists/{listID}               : Deletes a list and its ideas.
//   - POST   /lists/{listID}/ideas         : Adds an idea.
//   - PUT    /lists/{listID}/ideas/{ideaID}: Updates an idea.
//   - DELETE /lists/{listID}/ideas/{ideaID}: Removes an idea.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listLists)
	router.Post("/", handler.createList)
	router.Delete("/", handler.deleteAllLists)

	router.Route("/{listID}", func(listRouter chi.Router) {
		listRouter.Get("/", handler.getList)
		listRouter.Put("/", handler.updateList)
		listRouter.Delete("/", handler.deleteList)

		listRouter.Post("/ideas", handler.addIdea)
		listRouter.Put("/ideas/{ideaID}", handler.updateIdea)
		listRouter.Delete("/ideas/{ideaID}", handler.deleteIdea)
	})

	return router
}

// callerAccountID resolves the caller's local account ID from their claims.
func (handler *Handler) callerAccountID(req *http.Request) (string, error) {
	email, err := requestutil.RequiredEmail(req)
	if err != nil {
		return "", err
	}

	return handler.accounts.AccountIDByEmail(req.Context(), email)
}

// # List Endpoints

// listLists handles GET /api/v1/lists requests.
func (handler *Handler) listLists(writer http.ResponseWriter, req *http.Request) {
	accountID, err := handler.callerAccountID(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	params := pagination.FromRequest(req)
	lists, total, err := handler.service.ListLists(req.Context(), accountID, params)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.Paginated(writer, lists, pagination.NewMeta(params.Page, params.Limit, total))
}

// createList handles POST /api/v1/lists requests.
//
// # Returns
//   - Writes HTTP 201 Created with the new list.
//   - Writes HTTP 400 Bad Request if validation rules fail.
func (handler *Handler) createList(writer http.ResponseWriter, req *http.Request) {
	accountID, err := handler.callerAccountID(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	var input ListInput
	if err := requestutil.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	list, err := handler.service.CreateList(req.Context(), accountID, input)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.Created(writer, list)
}

// listWithIdeas is the detail payload: the list plus its ideas.
type listWithIdeas struct {
	*GiftList
	Ideas []*GiftIdea `json:"ideas"`
}

// getList handles GET /api/v1/lists/{listID} requests.
func (handler *Handler) getList(writer http.ResponseWriter, req *http.Request) {
	accountID, err := handler.callerAccountID(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	listID := requestutil.Param(req, "listID")
	list, ideas, err := handler.service.GetList(req.Context(), accountID, listID)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, listWithIdeas{GiftList: list, Ideas: ideas})
}

// updateList handles PUT /api/v1/lists/{listID} requests.
func (handler *Handler) updateList(writer http.ResponseWriter, req *http.Request) {
	accountID, err := handler.callerAccountID(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	var input ListInput
	if err := requestutil.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	listID := requestutil.Param(req, "listID")
	list, err := handler.service.UpdateList(req.Context(), accountID, listID, input)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, list)
}

// deleteList handles DELETE /api/v1/lists/{listID} requests.
func (handler *Handler) deleteList(writer http.ResponseWriter, req *http.Request) {
	accountID, err := handler.callerAccountID(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	listID := requestutil.Param(req, "listID")
	if err := handler.service.DeleteList(req.Context(), accountID, listID); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}

// deleteAllLists handles DELETE /api/v1/lists requests.
//
// Removes every list the caller owns; idempotent.
func (handler *Handler) deleteAllLists(writer http.ResponseWriter, req *http.Request) {
	accountID, err := handler.callerAccountID(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.service.DeleteAllLists(req.Context(), accountID); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}

// # Idea Endpoints

// addIdea handles POST /api/v1/lists/{listID}/ideas requests.
func (handler *Handler) addIdea(writer http.ResponseWriter, req *http.Request) {
	accountID, err := handler.callerAccountID(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	var input IdeaInput
	if err := requestutil.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	listID := requestutil.Param(req, "listID")
	idea, err := handler.service.AddIdea(req.Context(), accountID, listID, input)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.Created(writer, idea)
}

// updateIdea handles PUT /api/v1/lists/{listID}/ideas/{ideaID} requests.
func (handler *Handler) updateIdea(writer http.ResponseWriter, req *http.Request) {
	accountID, err := handler.callerAccountID(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	var input IdeaInput
	if err := requestutil.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	listID := requestutil.Param(req, "listID")
	ideaID := requestutil.Param(req, "ideaID")
	idea, err := handler.service.UpdateIdea(req.Context(), accountID, listID, ideaID, input)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, idea)
}

// deleteIdea handles DELETE /api/v1/lists/{listID}/ideas/{ideaID} requests.
func (handler *Handler) deleteIdea(writer http.ResponseWriter, req *http.Request) {
	accountID, err := handler.callerAccountID(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	listID := requestutil.Param(req, "listID")
	ideaID := requestutil.Param(req, "ideaID")
	if err := handler.service.DeleteIdea(req.Context(), accountID, listID, ideaID); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}
