// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

package giftlist

import (
	"context"

	"github.com/giftme/giftme/pkg/crud"
	"github.com/giftme/giftme/pkg/pagination"
)

// Repository defines the data access contract for gift lists.
//
// It composes the full generic capability set from [crud] with the
// account-scoped listing the service needs.
type Repository interface {
	crud.Store[GiftList]

	// ListByAccount returns a page of the account's gift lists, newest
	// first, along with the total count for pagination metadata.
	ListByAccount(ctx context.Context, accountID string, params pagination.Params) ([]*GiftList, int, error)

	// DeleteByAccount removes every list the account owns.
	DeleteByAccount(ctx context.Context, accountID string) error
}

// IdeaRepository defines the data access contract for gift ideas.
type IdeaRepository interface {
	crud.Store[GiftIdea]

	// ListByList returns every idea on the given list, oldest first.
	ListByList(ctx context.Context, listID string) ([]*GiftIdea, error)

	// DeleteByList removes every idea on the given list. Used when the
	// list itself is deleted.
	DeleteByList(ctx context.Context, listID string) error

	// DeleteByAccount removes every idea on every list the account owns.
	DeleteByAccount(ctx context.Context, accountID string) error
}
