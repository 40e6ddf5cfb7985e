// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

/*
Package crud defines composable persistence capability interfaces.

Repositories declare exactly the capabilities they expose by embedding the
narrow interfaces below, parameterized over their record type. Services that
only ever read can depend on [Readable] alone, which keeps test doubles tiny
and makes write access auditable at the type level.

Usage:

	type Repository interface {
	    crud.Store[GiftList]
	    ListByAccount(ctx context.Context, accountID string) ([]*GiftList, error)
	}
*/
package crud

import "context"

// Creatable persists brand-new records of type T.
type Creatable[T any] interface {
	// Create inserts the record. Implementations assign timestamps but never
	// overwrite a caller-provided ID.
	Create(ctx context.Context, record *T) error
}

// Readable fetches records of type T by their opaque ID.
type Readable[T any] interface {
	// Read returns the record with the given ID, or a NotFound application
	// error if it does not exist.
	Read(ctx context.Context, id string) (*T, error)
}

// Updatable persists changes to existing records of type T.
type Updatable[T any] interface {
	// Update overwrites the stored record's mutable fields.
	Update(ctx context.Context, record *T) error
}

// Deletable removes records of type T by their opaque ID.
type Deletable[T any] interface {
	// Delete removes the record. Deleting an absent record is not an error.
	Delete(ctx context.Context, id string) error
}

// Store is the full capability set for a record type.
type Store[T any] interface {
	Creatable[T]
	Readable[T]
	Updatable[T]
	Deletable[T]
}
