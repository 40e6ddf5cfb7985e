// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

/*
Package giftlist contains the gift-list domain of GiftMe.

A gift list belongs to exactly one account and holds gift ideas. Ownership
is enforced in the service layer: operations on a list the caller does not
own answer exactly like operations on a list that does not exist, so list
IDs cannot be probed.

Architecture:

  - GiftList / GiftIdea: The domain records.
  - Repository / IdeaRepository: Storage contracts built on [crud].
  - Service: Ownership enforcement and business rules.
*/
package giftlist

import "time"

// GiftList is a named collection of gift ideas owned by one account.
type GiftList struct {
	ID          string     `json:"id"`
	AccountID   string     `json:"-"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	EventDate   *time.Time `json:"event_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// GiftIdea is one wished-for item on a gift list.
//
// PurchasedBy records which account marked the idea as bought; it is set
// and cleared together with Purchased.
type GiftIdea struct {
	ID          string    `json:"id"`
	ListID      string    `json:"-"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	URL         *string   `json:"url,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CostCents   *int64    `json:"cost_cents,omitempty"`
	Purchased   bool      `json:"purchased"`
	PurchasedBy *string   `json:"purchased_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
