// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

// PostgreSQL implementations of the identity repositories.
//
// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, unique-constraint SQLSTATEs) are
// mapped to domain-friendly [apperr.AppError] values via [dberr.Wrap] so no
// storage detail leaks past this file.

package identity

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/giftme/giftme/internal/platform/dberr"
	"github.com/giftme/giftme/pkg/pagination"
)

// PostgresAccountRepository implements [AccountRepository] using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates the PostgreSQL implementation of [AccountRepository].
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

const accountColumns = `
	id, provideruid, email, username, displayname, dateofbirth,
	role, status, refreshtoken, createdat, updatedat, deletedat`

// scanAccount reads one account row in accountColumns order.
func scanAccount(row interface{ Scan(...any) error }) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.ProviderUID,
		&account.Email,
		&account.Username,
		&account.DisplayName,
		&account.DateOfBirth,
		&account.Role,
		&account.Status,
		&account.RefreshToken,
		&account.CreatedAt,
		&account.UpdatedAt,
		&account.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// FindByID retrieves an account by its unique ID.
func (repository *PostgresAccountRepository) FindByID(ctx context.Context, id string) (*Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM identity.account
		WHERE id = $1 AND deletedat IS NULL`

	account, err := scanAccount(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Account")
	}

	return account, nil
}

// FindByEmail retrieves an account by its unique email address.
func (repository *PostgresAccountRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM identity.account
		WHERE email = $1 AND deletedat IS NULL`

	account, err := scanAccount(repository.pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "Account")
	}

	return account, nil
}

// ExistsByEmail reports whether a live account uses the email.
func (repository *PostgresAccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM identity.account
			WHERE email = $1 AND deletedat IS NULL
		)`

	var exists bool
	if err := repository.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "Account")
	}

	return exists, nil
}

// ExistsByUsername reports whether a live account uses the username.
func (repository *PostgresAccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM identity.account
			WHERE username = $1 AND deletedat IS NULL
		)`

	var exists bool
	if err := repository.pool.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "Account")
	}

	return exists, nil
}

// Create persists a new account record into the identity.account table.
func (repository *PostgresAccountRepository) Create(ctx context.Context, account *Account) error {
	const query = `
		INSERT INTO identity.account (
			id, provideruid, email, username, displayname, dateofbirth,
			role, status, refreshtoken, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		account.ID,
		account.ProviderUID,
		account.Email,
		account.Username,
		account.DisplayName,
		account.DateOfBirth,
		account.Role,
		account.Status,
		account.RefreshToken,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Account")
	}

	return nil
}

// Update persists changes to an account's mutable fields.
func (repository *PostgresAccountRepository) Update(ctx context.Context, account *Account) error {
	const query = `
		UPDATE identity.account
		SET email = $2, username = $3, displayname = $4,
		    dateofbirth = $5, role = $6, status = $7, updatedat = $8
		WHERE id = $1 AND deletedat IS NULL`

	account.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(ctx, query,
		account.ID,
		account.Email,
		account.Username,
		account.DisplayName,
		account.DateOfBirth,
		account.Role,
		account.Status,
		account.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Account")
	}

	return nil
}

// UpdateRefreshToken replaces only the stored refresh token.
func (repository *PostgresAccountRepository) UpdateRefreshToken(ctx context.Context, accountID string, token *string) error {
	const query = `
		UPDATE identity.account
		SET refreshtoken = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(ctx, query, accountID, token, time.Now())
	if err != nil {
		return dberr.Wrap(err, "Account")
	}

	return nil
}

// HasRefreshToken reports whether the account holds a non-null refresh token.
func (repository *PostgresAccountRepository) HasRefreshToken(ctx context.Context, email string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM identity.account
			WHERE email = $1 AND refreshtoken IS NOT NULL AND deletedat IS NULL
		)`

	var exists bool
	if err := repository.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "Account")
	}

	return exists, nil
}

// SoftDelete marks an account as deleted and clears its refresh token so the
// session gate can never renew a deleted account's session.
func (repository *PostgresAccountRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `
		UPDATE identity.account
		SET deletedat = $2, refreshtoken = NULL
		WHERE id = $1 AND deletedat IS NULL`

	_, err := repository.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return dberr.Wrap(err, "Account")
	}

	return nil
}

// ── Accessor Repository ──────────────────────────────────────────────────────

// PostgresAccessorRepository implements [AccessorRepository] using pgx.
type PostgresAccessorRepository struct {
	pool *pgxpool.Pool
}

// NewAccessorRepository creates the PostgreSQL implementation of [AccessorRepository].
func NewAccessorRepository(pool *pgxpool.Pool) *PostgresAccessorRepository {
	return &PostgresAccessorRepository{pool: pool}
}

// Create persists a new access request into the identity.account_accessor table.
func (repository *PostgresAccessorRepository) Create(ctx context.Context, accessor *AccountAccessor) error {
	const query = `
		INSERT INTO identity.account_accessor (
			id, accountid, email, status, decidedby, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	if accessor.CreatedAt.IsZero() {
		accessor.CreatedAt = now
	}
	accessor.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		accessor.ID,
		accessor.AccountID,
		accessor.Email,
		accessor.Status,
		accessor.DecidedBy,
		accessor.CreatedAt,
		accessor.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Access request")
	}

	return nil
}

// Update records a new decision on an existing access request.
func (repository *PostgresAccessorRepository) Update(ctx context.Context, accessor *AccountAccessor) error {
	const query = `
		UPDATE identity.account_accessor
		SET status = $2, decidedby = $3, updatedat = $4
		WHERE id = $1`

	accessor.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(ctx, query,
		accessor.ID,
		accessor.Status,
		accessor.DecidedBy,
		accessor.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Access request")
	}

	return nil
}

// Delete removes an access request. Acceptance is recorded by deletion.
func (repository *PostgresAccessorRepository) Delete(ctx context.Context, id string) error {
	const query = "DELETE FROM identity.account_accessor WHERE id = $1"

	_, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "Access request")
	}

	return nil
}

// FindByAccountID retrieves the open access request for an account.
func (repository *PostgresAccessorRepository) FindByAccountID(ctx context.Context, accountID string) (*AccountAccessor, error) {
	const query = `
		SELECT id, accountid, email, status, decidedby, createdat, updatedat
		FROM identity.account_accessor
		WHERE accountid = $1`

	accessor := &AccountAccessor{}
	err := repository.pool.QueryRow(ctx, query, accountID).Scan(
		&accessor.ID,
		&accessor.AccountID,
		&accessor.Email,
		&accessor.Status,
		&accessor.DecidedBy,
		&accessor.CreatedAt,
		&accessor.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "Access request")
	}

	return accessor, nil
}

// ListOpen returns a page of open access requests, oldest first.
func (repository *PostgresAccessorRepository) ListOpen(ctx context.Context, params pagination.Params) ([]*AccountAccessor, int, error) {
	const countQuery = "SELECT COUNT(*) FROM identity.account_accessor"

	var total int
	if err := repository.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Access request")
	}

	const query = `
		SELECT id, accountid, email, status, decidedby, createdat, updatedat
		FROM identity.account_accessor
		ORDER BY createdat ASC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(ctx, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Access request")
	}
	defer rows.Close()

	accessors := make([]*AccountAccessor, 0, params.Limit)
	for rows.Next() {
		accessor := &AccountAccessor{}
		err := rows.Scan(
			&accessor.ID,
			&accessor.AccountID,
			&accessor.Email,
			&accessor.Status,
			&accessor.DecidedBy,
			&accessor.CreatedAt,
			&accessor.UpdatedAt,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "Access request")
		}
		accessors = append(accessors, accessor)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Access request")
	}

	return accessors, total, nil
}
