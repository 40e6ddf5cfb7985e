// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

package giftlist

import (
	"context"
	"time"

	"github.com/giftme/giftme/internal/platform/apperr"
	"github.com/giftme/giftme/internal/platform/constants"
	"github.com/giftme/giftme/internal/platform/validate"
	"github.com/giftme/giftme/pkg/pagination"
	"github.com/giftme/giftme/pkg/uuidv7"
)

// maxTitleLength bounds list titles and idea names.
const maxTitleLength = 120

// Service implements the gift-list business rules.
//
// # Ownership
//
// Every operation takes the caller's account ID and verifies it against the
// stored list. A list owned by someone else answers exactly like a list
// that does not exist (404), so list IDs cannot be probed for existence.
type Service struct {
	lists Repository
	ideas IdeaRepository
}

// NewService wires the gift-list service with its repositories.
func NewService(lists Repository, ideas IdeaRepository) *Service {
	return &Service{lists: lists, ideas: ideas}
}

// ownedList loads a list and enforces ownership.
func (service *Service) ownedList(ctx context.Context, accountID, listID string) (*GiftList, error) {
	list, err := service.lists.Read(ctx, listID)
	if err != nil {
		return nil, err
	}

	if list.AccountID != accountID {
		// Indistinguishable from a missing list.
		return nil, apperr.NotFound("Gift list")
	}

	return list, nil
}

// # Gift Lists

// ListInput carries the mutable fields of a gift list.
type ListInput struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	EventDate   *time.Time `json:"event_date"`
}

// CreateList creates a gift list owned by the caller.
func (service *Service) CreateList(ctx context.Context, accountID string, input ListInput) (*GiftList, error) {
	if err := validateListInput(input); err != nil {
		return nil, err
	}

	list := &GiftList{
		ID:          uuidv7.New(),
		AccountID:   accountID,
		Title:       input.Title,
		Description: input.Description,
		EventDate:   input.EventDate,
	}

	if err := service.lists.Create(ctx, list); err != nil {
		return nil, err
	}

	return list, nil
}

// GetList returns one of the caller's lists together with its ideas.
func (service *Service) GetList(ctx context.Context, accountID, listID string) (*GiftList, []*GiftIdea, error) {
	list, err := service.ownedList(ctx, accountID, listID)
	if err != nil {
		return nil, nil, err
	}

	ideas, err := service.ideas.ListByList(ctx, listID)
	if err != nil {
		return nil, nil, err
	}

	return list, ideas, nil
}

// ListLists returns a page of the caller's gift lists.
func (service *Service) ListLists(ctx context.Context, accountID string, params pagination.Params) ([]*GiftList, int, error) {
	return service.lists.ListByAccount(ctx, accountID, params)
}

// UpdateList applies changes to one of the caller's lists.
func (service *Service) UpdateList(ctx context.Context, accountID, listID string, input ListInput) (*GiftList, error) {
	if err := validateListInput(input); err != nil {
		return nil, err
	}

	list, err := service.ownedList(ctx, accountID, listID)
	if err != nil {
		return nil, err
	}

	list.Title = input.Title
	list.Description = input.Description
	list.EventDate = input.EventDate

	if err := service.lists.Update(ctx, list); err != nil {
		return nil, err
	}

	return list, nil
}

// DeleteList removes one of the caller's lists and all its ideas.
func (service *Service) DeleteList(ctx context.Context, accountID, listID string) error {
	if _, err := service.ownedList(ctx, accountID, listID); err != nil {
		return err
	}

	if err := service.ideas.DeleteByList(ctx, listID); err != nil {
		return err
	}

	return service.lists.Delete(ctx, listID)
}

// DeleteAllLists removes every list the caller owns, ideas included.
// Deleting with nothing to delete is not an error.
func (service *Service) DeleteAllLists(ctx context.Context, accountID string) error {
	if err := service.ideas.DeleteByAccount(ctx, accountID); err != nil {
		return err
	}

	return service.lists.DeleteByAccount(ctx, accountID)
}

// # Gift Ideas

// IdeaInput carries the mutable fields of a gift idea.
type IdeaInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
	ImageURL    *string `json:"image_url"`
	CostCents   *int64  `json:"cost_cents"`
	Purchased   bool    `json:"purchased"`
}

// AddIdea appends an idea to one of the caller's lists.
func (service *Service) AddIdea(ctx context.Context, accountID, listID string, input IdeaInput) (*GiftIdea, error) {
	if err := validateIdeaInput(input); err != nil {
		return nil, err
	}

	if _, err := service.ownedList(ctx, accountID, listID); err != nil {
		return nil, err
	}

	idea := &GiftIdea{
		ID:          uuidv7.New(),
		ListID:      listID,
		Name:        input.Name,
		Description: input.Description,
		URL:         input.URL,
		ImageURL:    input.ImageURL,
		CostCents:   input.CostCents,
		Purchased:   input.Purchased,
	}
	if idea.Purchased {
		idea.PurchasedBy = &accountID
	}

	if err := service.ideas.Create(ctx, idea); err != nil {
		return nil, err
	}

	return idea, nil
}

// UpdateIdea applies changes to an idea on one of the caller's lists.
func (service *Service) UpdateIdea(ctx context.Context, accountID, listID, ideaID string, input IdeaInput) (*GiftIdea, error) {
	if err := validateIdeaInput(input); err != nil {
		return nil, err
	}

	if _, err := service.ownedList(ctx, accountID, listID); err != nil {
		return nil, err
	}

	idea, err := service.ideas.Read(ctx, ideaID)
	if err != nil {
		return nil, err
	}

	// An idea reached through the wrong list is treated as absent.
	if idea.ListID != listID {
		return nil, apperr.NotFound("Gift idea")
	}

	idea.Name = input.Name
	idea.Description = input.Description
	idea.URL = input.URL
	idea.ImageURL = input.ImageURL
	idea.CostCents = input.CostCents

	// The purchaser stamp follows the purchased flag: whoever flips it on is
	// recorded, and un-purchasing clears the stamp.
	switch {
	case input.Purchased && !idea.Purchased:
		idea.PurchasedBy = &accountID
	case !input.Purchased:
		idea.PurchasedBy = nil
	}
	idea.Purchased = input.Purchased

	if err := service.ideas.Update(ctx, idea); err != nil {
		return nil, err
	}

	return idea, nil
}

// DeleteIdea removes an idea from one of the caller's lists.
func (service *Service) DeleteIdea(ctx context.Context, accountID, listID, ideaID string) error {
	if _, err := service.ownedList(ctx, accountID, listID); err != nil {
		return err
	}

	idea, err := service.ideas.Read(ctx, ideaID)
	if err != nil {
		return err
	}

	if idea.ListID != listID {
		return apperr.NotFound("Gift idea")
	}

	return service.ideas.Delete(ctx, ideaID)
}

// # Input Validation

func validateListInput(input ListInput) error {
	validator := &validate.Validator{}
	validator.
		Required("title", input.Title).
		MaxLen("title", input.Title, maxTitleLength)

	return validator.Err()
}

func validateIdeaInput(input IdeaInput) error {
	validator := &validate.Validator{}
	validator.
		Required("name", input.Name).
		MinLen("name", input.Name, constants.MinNameLength).
		MaxLen("name", input.Name, maxTitleLength)

	if input.CostCents != nil {
		validator.Custom("cost_cents", *input.CostCents < 0, "Must not be negative")
	}

	return validator.Err()
}
