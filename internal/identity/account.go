// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

/*
Package identity contains the account domain of GiftMe.

It owns the local account records that mirror identities held by the external
provider, the role hierarchy used by the authorization gates, and the access
request workflow that decides whether a signed-up account may use the
platform at all.

Architecture:

  - Account: The local mirror of a provider identity plus platform state.
  - Role: Ordered privilege levels consumed by the role gate.
  - AccessStatus / AccountAccessor: The access-request workflow records.
  - AccountService / AccessorService: Business rules over the stores.
*/
package identity

import "time"

// # Roles

// Role represents an account's privilege level.
type Role string

const (
	RoleUser   Role = "user"
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// level maps roles to an ordered scale for comparison.
func (r Role) level() int {
	switch r {
	case RoleOwner:
		return 4
	case RoleAdmin:
		return 3
	case RoleMember:
		return 2
	case RoleUser:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether the role meets or exceeds the target role.
// An unknown role never satisfies anything.
func (r Role) AtLeast(target Role) bool {
	if r.level() == 0 {
		return false
	}
	return r.level() >= target.level()
}

// Valid reports whether the role is one of the defined levels.
func (r Role) Valid() bool {
	return r.level() > 0
}

// # Access Workflow

// AccessStatus tracks where an account stands in the access-request workflow.
type AccessStatus string

const (
	// StatusPending means the account signed up and awaits an admin decision.
	StatusPending AccessStatus = "pending"
	// StatusAccepted means an admin approved the request. Accepted requests
	// have their accessor row deleted, so this value only ever appears on
	// the account record itself.
	StatusAccepted AccessStatus = "accepted"
	// StatusDenied means an admin rejected the request.
	StatusDenied AccessStatus = "denied"
	// StatusBlocked means a previously accepted account was suspended.
	StatusBlocked AccessStatus = "blocked"
	// StatusBanned means the account is permanently excluded.
	StatusBanned AccessStatus = "banned"
)

// Valid reports whether the status is one of the defined workflow states.
func (s AccessStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDenied, StatusBlocked, StatusBanned:
		return true
	}
	return false
}

// # Records

// Account is the local mirror of a provider identity.
//
// The provider owns credentials; GiftMe owns everything else: the role, the
// access status, the profile fields, and the long-lived refresh token used
// for transparent session renewal.
type Account struct {
	ID          string       `json:"id"`
	ProviderUID string       `json:"-"`
	Email       string       `json:"email"`
	Username    string       `json:"username"`
	DisplayName *string      `json:"display_name,omitempty"`
	DateOfBirth *time.Time   `json:"date_of_birth,omitempty"`
	Role        Role         `json:"role"`
	Status      AccessStatus `json:"status"`

	// RefreshToken is the provider-issued long-lived token. Nil after
	// sign-out; its presence is what permits transparent session refresh.
	RefreshToken *string `json:"-"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

// HasAccess reports whether the account may use authenticated endpoints.
func (a *Account) HasAccess() bool {
	return a.Status == StatusAccepted && a.DeletedAt == nil
}

// AccountAccessor is one open entry in the access-request queue.
//
// The row exists only while a decision other than acceptance stands:
// approving a request deletes the row, every other decision updates it.
type AccountAccessor struct {
	ID        string       `json:"id"`
	AccountID string       `json:"account_id"`
	Email     string       `json:"email"`
	Status    AccessStatus `json:"status"`
	DecidedBy *string      `json:"decided_by,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
