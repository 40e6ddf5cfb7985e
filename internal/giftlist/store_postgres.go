// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

// PostgreSQL implementations of the gift-list repositories.

package giftlist

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/giftme/giftme/internal/platform/dberr"
	"github.com/giftme/giftme/pkg/pagination"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the PostgreSQL implementation of [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create persists a new gift list into the giftlist.gift_list table.
func (repository *PostgresRepository) Create(ctx context.Context, list *GiftList) error {
	const query = `
		INSERT INTO giftlist.gift_list (
			id, accountid, title, description, eventdate, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	if list.CreatedAt.IsZero() {
		list.CreatedAt = now
	}
	list.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		list.ID,
		list.AccountID,
		list.Title,
		list.Description,
		list.EventDate,
		list.CreatedAt,
		list.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Gift list")
	}

	return nil
}

// Read retrieves a gift list by its unique ID.
func (repository *PostgresRepository) Read(ctx context.Context, id string) (*GiftList, error) {
	const query = `
		SELECT id, accountid, title, description, eventdate, createdat, updatedat
		FROM giftlist.gift_list
		WHERE id = $1`

	list := &GiftList{}
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&list.ID,
		&list.AccountID,
		&list.Title,
		&list.Description,
		&list.EventDate,
		&list.CreatedAt,
		&list.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "Gift list")
	}

	return list, nil
}

// Update persists changes to a gift list's mutable fields.
func (repository *PostgresRepository) Update(ctx context.Context, list *GiftList) error {
	const query = `
		UPDATE giftlist.gift_list
		SET title = $2, description = $3, eventdate = $4, updatedat = $5
		WHERE id = $1`

	list.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(ctx, query,
		list.ID,
		list.Title,
		list.Description,
		list.EventDate,
		list.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Gift list")
	}

	return nil
}

// Delete permanently removes a gift list.
func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	const query = "DELETE FROM giftlist.gift_list WHERE id = $1"

	_, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "Gift list")
	}

	return nil
}

// ListByAccount returns a page of the account's gift lists, newest first.
func (repository *PostgresRepository) ListByAccount(ctx context.Context, accountID string, params pagination.Params) ([]*GiftList, int, error) {
	const countQuery = "SELECT COUNT(*) FROM giftlist.gift_list WHERE accountid = $1"

	var total int
	if err := repository.pool.QueryRow(ctx, countQuery, accountID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Gift list")
	}

	const query = `
		SELECT id, accountid, title, description, eventdate, createdat, updatedat
		FROM giftlist.gift_list
		WHERE accountid = $1
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(ctx, query, accountID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Gift list")
	}
	defer rows.Close()

	lists := make([]*GiftList, 0, params.Limit)
	for rows.Next() {
		list := &GiftList{}
		err := rows.Scan(
			&list.ID,
			&list.AccountID,
			&list.Title,
			&list.Description,
			&list.EventDate,
			&list.CreatedAt,
			&list.UpdatedAt,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "Gift list")
		}
		lists = append(lists, list)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Gift list")
	}

	return lists, total, nil
}

// DeleteByAccount removes every list the account owns.
func (repository *PostgresRepository) DeleteByAccount(ctx context.Context, accountID string) error {
	const query = "DELETE FROM giftlist.gift_list WHERE accountid = $1"

	_, err := repository.pool.Exec(ctx, query, accountID)
	if err != nil {
		return dberr.Wrap(err, "Gift list")
	}

	return nil
}

// ── Idea Repository ──────────────────────────────────────────────────────────

// PostgresIdeaRepository implements [IdeaRepository] using pgx.
type PostgresIdeaRepository struct {
	pool *pgxpool.Pool
}

// NewIdeaRepository creates the PostgreSQL implementation of [IdeaRepository].
func NewIdeaRepository(pool *pgxpool.Pool) *PostgresIdeaRepository {
	return &PostgresIdeaRepository{pool: pool}
}

// Create persists a new gift idea into the giftlist.gift_idea table.
func (repository *PostgresIdeaRepository) Create(ctx context.Context, idea *GiftIdea) error {
	const query = `
		INSERT INTO giftlist.gift_idea (
			id, listid, name, description, url, imageurl, costcents,
			purchased, purchasedby, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	now := time.Now()
	if idea.CreatedAt.IsZero() {
		idea.CreatedAt = now
	}
	idea.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		idea.ID,
		idea.ListID,
		idea.Name,
		idea.Description,
		idea.URL,
		idea.ImageURL,
		idea.CostCents,
		idea.Purchased,
		idea.PurchasedBy,
		idea.CreatedAt,
		idea.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Gift idea")
	}

	return nil
}

// Read retrieves a gift idea by its unique ID.
func (repository *PostgresIdeaRepository) Read(ctx context.Context, id string) (*GiftIdea, error) {
	const query = `
		SELECT id, listid, name, description, url, imageurl, costcents,
			purchased, purchasedby, createdat, updatedat
		FROM giftlist.gift_idea
		WHERE id = $1`

	idea := &GiftIdea{}
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&idea.ID,
		&idea.ListID,
		&idea.Name,
		&idea.Description,
		&idea.URL,
		&idea.ImageURL,
		&idea.CostCents,
		&idea.Purchased,
		&idea.PurchasedBy,
		&idea.CreatedAt,
		&idea.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "Gift idea")
	}

	return idea, nil
}

// Update persists changes to a gift idea's mutable fields.
func (repository *PostgresIdeaRepository) Update(ctx context.Context, idea *GiftIdea) error {
	const query = `
		UPDATE giftlist.gift_idea
		SET name = $2, description = $3, url = $4, imageurl = $5, costcents = $6,
			purchased = $7, purchasedby = $8, updatedat = $9
		WHERE id = $1`

	idea.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(ctx, query,
		idea.ID,
		idea.Name,
		idea.Description,
		idea.URL,
		idea.ImageURL,
		idea.CostCents,
		idea.Purchased,
		idea.PurchasedBy,
		idea.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Gift idea")
	}

	return nil
}

// Delete permanently removes a gift idea.
func (repository *PostgresIdeaRepository) Delete(ctx context.Context, id string) error {
	const query = "DELETE FROM giftlist.gift_idea WHERE id = $1"

	_, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "Gift idea")
	}

	return nil
}

// ListByList returns every idea on the given list, oldest first.
func (repository *PostgresIdeaRepository) ListByList(ctx context.Context, listID string) ([]*GiftIdea, error) {
	const query = `
		SELECT id, listid, name, description, url, imageurl, costcents,
			purchased, purchasedby, createdat, updatedat
		FROM giftlist.gift_idea
		WHERE listid = $1
		ORDER BY createdat ASC`

	rows, err := repository.pool.Query(ctx, query, listID)
	if err != nil {
		return nil, dberr.Wrap(err, "Gift idea")
	}
	defer rows.Close()

	ideas := make([]*GiftIdea, 0)
	for rows.Next() {
		idea := &GiftIdea{}
		err := rows.Scan(
			&idea.ID,
			&idea.ListID,
			&idea.Name,
			&idea.Description,
			&idea.URL,
			&idea.ImageURL,
			&idea.CostCents,
			&idea.Purchased,
			&idea.PurchasedBy,
			&idea.CreatedAt,
			&idea.UpdatedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "Gift idea")
		}
		ideas = append(ideas, idea)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Gift idea")
	}

	return ideas, nil
}

// DeleteByList removes every idea on the given list.
func (repository *PostgresIdeaRepository) DeleteByList(ctx context.Context, listID string) error {
	const query = "DELETE FROM giftlist.gift_idea WHERE listid = $1"

	_, err := repository.pool.Exec(ctx, query, listID)
	if err != nil {
		return dberr.Wrap(err, "Gift idea")
	}

	return nil
}

// DeleteByAccount removes every idea on every list the account owns.
func (repository *PostgresIdeaRepository) DeleteByAccount(ctx context.Context, accountID string) error {
	const query = `
		DELETE FROM giftlist.gift_idea
		WHERE listid IN (SELECT id FROM giftlist.gift_list WHERE accountid = $1)`

	_, err := repository.pool.Exec(ctx, query, accountID)
	if err != nil {
		return dberr.Wrap(err, "Gift idea")
	}

	return nil
}
