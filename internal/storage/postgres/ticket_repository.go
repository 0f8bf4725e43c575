package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/15xa/tickmyshow/internal/domain"
)

type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

func (r *TicketRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *TicketRepository) CreateTicket(ctx context.Context, ticket domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (address, event_address, holder_address, mint_id, token_account, checked_in, issued_at)
VALUES ($1, $2, $3, $4, $5, FALSE, $6)`

	_, err := r.exec(ctx, stmt,
		ticket.Address,
		ticket.EventAddress,
		ticket.Holder,
		ticket.Mint,
		ticket.TokenAccount,
		ticket.IssuedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateAccount
		}
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

func (r *TicketRepository) GetTicket(ctx context.Context, address string) (domain.Ticket, error) {
	const query = `
SELECT address, event_address, holder_address, mint_id, token_account, checked_in, issued_at
FROM tickets
WHERE address = $1`

	return r.scanTicket(r.queryRow(ctx, query, address))
}

// GetTicketForUpdate locks the ticket row so concurrent redemptions of the
// same ticket serialize; the loser then sees checked_in = true.
func (r *TicketRepository) GetTicketForUpdate(ctx context.Context, address string) (domain.Ticket, error) {
	const query = `
SELECT address, event_address, holder_address, mint_id, token_account, checked_in, issued_at
FROM tickets
WHERE address = $1
FOR UPDATE`

	return r.scanTicket(r.queryRow(ctx, query, address))
}

func (r *TicketRepository) MarkCheckedIn(ctx context.Context, address string) error {
	const stmt = `UPDATE tickets SET checked_in = TRUE WHERE address = $1`

	tag, err := r.exec(ctx, stmt, address)
	if err != nil {
		return fmt.Errorf("mark checked in: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (r *TicketRepository) CreateCheckIn(ctx context.Context, rec domain.CheckInRecord) error {
	const stmt = `
INSERT INTO checkins (address, ticket_address, holder_address, checked_in_at)
VALUES ($1, $2, $3, $4)`

	_, err := r.exec(ctx, stmt, rec.Address, rec.TicketAddress, rec.Holder, rec.Timestamp)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateAccount
		}
		return fmt.Errorf("create checkin: %w", err)
	}
	return nil
}

// GetWalletCounterForUpdate returns the per-event counter for a wallet,
// locked for the transaction. A missing row is a zero counter.
func (r *TicketRepository) GetWalletCounterForUpdate(ctx context.Context, event, wallet string) (domain.WalletCounter, error) {
	const query = `
SELECT event_address, wallet_address, count
FROM wallet_counters
WHERE event_address = $1 AND wallet_address = $2
FOR UPDATE`

	var ctr domain.WalletCounter
	err := r.queryRow(ctx, query, event, wallet).Scan(&ctr.EventAddress, &ctr.Wallet, &ctr.Count)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.WalletCounter{EventAddress: event, Wallet: wallet}, nil
		}
		return domain.WalletCounter{}, fmt.Errorf("get wallet counter: %w", err)
	}
	return ctr, nil
}

func (r *TicketRepository) UpsertWalletCounter(ctx context.Context, ctr domain.WalletCounter) error {
	const stmt = `
INSERT INTO wallet_counters (event_address, wallet_address, count)
VALUES ($1, $2, $3)
ON CONFLICT (event_address, wallet_address)
DO UPDATE SET count = EXCLUDED.count`

	_, err := r.exec(ctx, stmt, ctr.EventAddress, ctr.Wallet, ctr.Count)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrPerWalletLimit
		}
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("upsert wallet counter: %w", err)
	}
	return nil
}

func (r *TicketRepository) scanTicket(row pgx.Row) (domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(&t.Address, &t.EventAddress, &t.Holder, &t.Mint, &t.TokenAccount, &t.CheckedIn, &t.IssuedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Ticket{}, domain.ErrTicketNotFound
		}
		return domain.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

func (r *TicketRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *TicketRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
