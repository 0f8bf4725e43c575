package testutil

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/15xa/tickmyshow/internal/domain"
	"github.com/15xa/tickmyshow/internal/keys"
)

// InsertEvent seeds an event row and returns its derived address.
func InsertEvent(t *testing.T, ctx context.Context, pool *pgxpool.Pool, owner, name string, capacity uint32) string {
	t.Helper()
	addr := keys.Event(owner, name)
	_, err := pool.Exec(ctx, `
INSERT INTO events (address, owner_address, name, date, capacity, issued)
VALUES ($1, $2, $3, $4, $5, 0)`,
		addr, owner, name, time.Now().UTC().Add(24*time.Hour), capacity)
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}
	return addr
}

// InsertTicket seeds a ticket row together with its backing mint and frozen
// token account, mirroring the state a completed issuance leaves behind.
func InsertTicket(t *testing.T, ctx context.Context, pool *pgxpool.Pool, event, holder string, index uint8) domain.Ticket {
	t.Helper()
	tk := domain.Ticket{
		Address:      keys.Ticket(event, holder, index),
		EventAddress: event,
		Holder:       holder,
		Mint:         keys.Derive("test-mint", event, holder, strconv.Itoa(int(index))),
		IssuedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
	tk.TokenAccount = keys.TokenAccount(tk.Mint, holder)

	_, err := pool.Exec(ctx, `
INSERT INTO token_mints (id, lock_authority, supply)
VALUES ($1, $2, 1)`, tk.Mint, event)
	if err != nil {
		t.Fatalf("insert mint: %v", err)
	}
	_, err = pool.Exec(ctx, `
INSERT INTO token_accounts (address, mint_id, owner_address, balance, frozen)
VALUES ($1, $2, $3, 1, TRUE)`, tk.TokenAccount, tk.Mint, holder)
	if err != nil {
		t.Fatalf("insert token account: %v", err)
	}
	_, err = pool.Exec(ctx, `
INSERT INTO tickets (address, event_address, holder_address, mint_id, token_account, checked_in, issued_at)
VALUES ($1, $2, $3, $4, $5, FALSE, $6)`,
		tk.Address, tk.EventAddress, tk.Holder, tk.Mint, tk.TokenAccount, tk.IssuedAt)
	if err != nil {
		t.Fatalf("insert ticket: %v", err)
	}
	return tk
}
