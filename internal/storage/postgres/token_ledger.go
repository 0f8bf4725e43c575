package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/15xa/tickmyshow/internal/token"
)

// TokenLedger implements token.Ledger and token.MetadataRegistry on the
// same store as the ticket records, so a credential bind participates in
// the issuance transaction and rolls back with it.
type TokenLedger struct {
	pool *pgxpool.Pool
}

func NewTokenLedger(pool *pgxpool.Pool) *TokenLedger {
	return &TokenLedger{pool: pool}
}

func (l *TokenLedger) Mint(ctx context.Context, p token.MintParams) error {
	const mintStmt = `
INSERT INTO token_mints (id, lock_authority, supply)
VALUES ($1, $2, $3)`

	if _, err := l.exec(ctx, mintStmt, p.Mint, p.Owner, p.Quantity); err != nil {
		return fmt.Errorf("create mint: %w", err)
	}

	const acctStmt = `
INSERT INTO token_accounts (address, mint_id, owner_address, balance, frozen)
VALUES ($1, $2, $3, $4, FALSE)`

	if _, err := l.exec(ctx, acctStmt, p.Account, p.Mint, p.Owner, p.Quantity); err != nil {
		return fmt.Errorf("create token account: %w", err)
	}
	return nil
}

func (l *TokenLedger) SetLockAuthority(ctx context.Context, mint, current, next string) error {
	const stmt = `
UPDATE token_mints
SET lock_authority = $3
WHERE id = $1 AND lock_authority = $2`

	tag, err := l.exec(ctx, stmt, mint, current, next)
	if err != nil {
		return fmt.Errorf("set lock authority: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return l.mintAuthorityFailure(ctx, mint)
	}
	return nil
}

func (l *TokenLedger) Freeze(ctx context.Context, account, authority string) error {
	const stmt = `
UPDATE token_accounts a
SET frozen = TRUE
FROM token_mints m
WHERE a.address = $1 AND a.mint_id = m.id AND m.lock_authority = $2 AND NOT a.frozen`

	tag, err := l.exec(ctx, stmt, account, authority)
	if err != nil {
		return fmt.Errorf("freeze: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return l.accountAuthorityFailure(ctx, account, authority, false)
	}
	return nil
}

func (l *TokenLedger) Thaw(ctx context.Context, account, authority string) error {
	const stmt = `
UPDATE token_accounts a
SET frozen = FALSE
FROM token_mints m
WHERE a.address = $1 AND a.mint_id = m.id AND m.lock_authority = $2 AND a.frozen`

	tag, err := l.exec(ctx, stmt, account, authority)
	if err != nil {
		return fmt.Errorf("thaw: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return l.accountAuthorityFailure(ctx, account, authority, true)
	}
	return nil
}

func (l *TokenLedger) Burn(ctx context.Context, account, authority string, qty uint64) error {
	const stmt = `
UPDATE token_accounts a
SET balance = a.balance - $3
FROM token_mints m
WHERE a.address = $1 AND a.mint_id = m.id AND m.lock_authority = $2
  AND NOT a.frozen AND a.balance >= $3`

	tag, err := l.exec(ctx, stmt, account, authority, qty)
	if err != nil {
		return fmt.Errorf("burn: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return l.burnFailure(ctx, account, authority, qty)
	}

	const supplyStmt = `
UPDATE token_mints m
SET supply = m.supply - $2
FROM token_accounts a
WHERE a.address = $1 AND a.mint_id = m.id`

	if _, err := l.exec(ctx, supplyStmt, account, qty); err != nil {
		return fmt.Errorf("burn supply: %w", err)
	}
	return nil
}

func (l *TokenLedger) Attach(ctx context.Context, mint string, md token.Metadata) error {
	const stmt = `
INSERT INTO token_metadata (mint_id, name, symbol, uri)
VALUES ($1, $2, $3, $4)
ON CONFLICT (mint_id)
DO UPDATE SET name = EXCLUDED.name, symbol = EXCLUDED.symbol, uri = EXCLUDED.uri`

	if _, err := l.exec(ctx, stmt, mint, md.Name, md.Symbol, md.URI); err != nil {
		if isForeignKeyViolation(err) {
			return token.ErrMintNotFound
		}
		return fmt.Errorf("attach metadata: %w", err)
	}
	return nil
}

// mintAuthorityFailure distinguishes a missing mint from an authority
// mismatch after a zero-row authority-guarded update.
func (l *TokenLedger) mintAuthorityFailure(ctx context.Context, mint string) error {
	var exists bool
	if err := l.queryRow(ctx, `SELECT EXISTS (SELECT 1 FROM token_mints WHERE id = $1)`, mint).Scan(&exists); err != nil {
		return fmt.Errorf("check mint: %w", err)
	}
	if !exists {
		return token.ErrMintNotFound
	}
	return token.ErrWrongAuthority
}

func (l *TokenLedger) accountAuthorityFailure(ctx context.Context, account, authority string, wantFrozen bool) error {
	var frozen bool
	var lockAuthority string
	const query = `
SELECT a.frozen, m.lock_authority
FROM token_accounts a
JOIN token_mints m ON a.mint_id = m.id
WHERE a.address = $1`

	err := l.queryRow(ctx, query, account).Scan(&frozen, &lockAuthority)
	if err != nil {
		if err == pgx.ErrNoRows {
			return token.ErrAccountNotFound
		}
		return fmt.Errorf("check token account: %w", err)
	}
	if lockAuthority != authority {
		return token.ErrWrongAuthority
	}
	if wantFrozen && !frozen {
		return token.ErrAccountNotFrozen
	}
	if !wantFrozen && frozen {
		return token.ErrAccountFrozen
	}
	return token.ErrWrongAuthority
}

func (l *TokenLedger) burnFailure(ctx context.Context, account, authority string, qty uint64) error {
	var frozen bool
	var balance uint64
	var lockAuthority string
	const query = `
SELECT a.frozen, a.balance, m.lock_authority
FROM token_accounts a
JOIN token_mints m ON a.mint_id = m.id
WHERE a.address = $1`

	err := l.queryRow(ctx, query, account).Scan(&frozen, &balance, &lockAuthority)
	if err != nil {
		if err == pgx.ErrNoRows {
			return token.ErrAccountNotFound
		}
		return fmt.Errorf("check token account: %w", err)
	}
	switch {
	case lockAuthority != authority:
		return token.ErrWrongAuthority
	case frozen:
		return token.ErrAccountFrozen
	case balance < qty:
		return token.ErrInsufficientBalance
	}
	return token.ErrWrongAuthority
}

func (l *TokenLedger) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return l.pool.Exec(ctx, sql, args...)
}

func (l *TokenLedger) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return l.pool.QueryRow(ctx, sql, args...)
}
