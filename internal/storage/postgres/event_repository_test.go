package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/15xa/tickmyshow/internal/domain"
	"github.com/15xa/tickmyshow/internal/keys"
	"github.com/15xa/tickmyshow/internal/testutil"
)

func TestEventRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewEventRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("CreateEvent persists and rejects duplicates", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		ev := domain.Event{
			Address:  keys.Event("owner-1", "Concert"),
			Owner:    "owner-1",
			Name:     "Concert",
			Date:     time.Now().UTC().Add(24 * time.Hour).Truncate(time.Microsecond),
			Capacity: 100,
		}
		if err := repo.CreateEvent(ctx, ev); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, err := repo.GetEvent(ctx, ev.Address)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Owner != ev.Owner || got.Name != ev.Name || got.Capacity != 100 || got.Issued != 0 {
			t.Fatalf("unexpected event: %+v", got)
		}

		if err := repo.CreateEvent(ctx, ev); err != domain.ErrDuplicateAccount {
			t.Fatalf("expected ErrDuplicateAccount, got %v", err)
		}
	})

	t.Run("GetEvent returns ErrEventNotFound for unknown address", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		_, err := repo.GetEvent(ctx, keys.Event("nobody", "nothing"))
		if err != domain.ErrEventNotFound {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
	})

	t.Run("IncrementIssued stops at capacity", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		addr := testutil.InsertEvent(t, ctx, pool, "owner-1", "Concert", 3)

		if err := repo.IncrementIssued(ctx, addr, 2); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := repo.IncrementIssued(ctx, addr, 2); err != domain.ErrSoldOut {
			t.Fatalf("expected ErrSoldOut, got %v", err)
		}
		if err := repo.IncrementIssued(ctx, addr, 1); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := repo.IncrementIssued(ctx, addr, 1); err != domain.ErrSoldOut {
			t.Fatalf("expected ErrSoldOut, got %v", err)
		}

		got, err := repo.GetEvent(ctx, addr)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Issued != 3 {
			t.Fatalf("expected issued 3, got %d", got.Issued)
		}
	})

	t.Run("GetEventForUpdate inside WithTx sees current row", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		addr := testutil.InsertEvent(t, ctx, pool, "owner-1", "Concert", 10)

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			ev, err := repo.GetEventForUpdate(txCtx, addr)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if ev.Capacity != 10 {
				t.Fatalf("unexpected event: %+v", ev)
			}
			return repo.IncrementIssued(txCtx, addr, 1)
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}

		got, err := repo.GetEvent(ctx, addr)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Issued != 1 {
			t.Fatalf("expected issued 1, got %d", got.Issued)
		}
	})

	t.Run("WithTx rolls back on error", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		addr := testutil.InsertEvent(t, ctx, pool, "owner-1", "Concert", 10)

		wantErr := domain.ErrUnauthorized
		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			if err := repo.IncrementIssued(txCtx, addr, 5); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			return wantErr
		})
		if err != wantErr {
			t.Fatalf("expected %v, got %v", wantErr, err)
		}

		got, err := repo.GetEvent(ctx, addr)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Issued != 0 {
			t.Fatalf("expected rollback to issued 0, got %d", got.Issued)
		}
	})

	t.Run("ListEvents returns rows in creation order", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		first := testutil.InsertEvent(t, ctx, pool, "owner-1", "First", 10)
		second := testutil.InsertEvent(t, ctx, pool, "owner-1", "Second", 20)

		events, err := repo.ListEvents(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
		if events[0].Address != first || events[1].Address != second {
			t.Fatalf("unexpected order: %+v", events)
		}
	})

	t.Run("UpsertGateAuthority inserts then overwrites", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		addr := testutil.InsertEvent(t, ctx, pool, "owner-1", "Concert", 10)

		gate := domain.GateAuthority{
			Address:      keys.Gate(addr, "north-gate"),
			EventAddress: addr,
			Entrypoint:   "north-gate",
			Authority:    "agent-1",
		}
		if err := repo.UpsertGateAuthority(ctx, gate); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		gate.Authority = "agent-2"
		if err := repo.UpsertGateAuthority(ctx, gate); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, err := repo.GetGateAuthority(ctx, addr, "north-gate")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Authority != "agent-2" {
			t.Fatalf("expected overwritten authority, got %+v", got)
		}

		_, err = repo.GetGateAuthority(ctx, addr, "south-gate")
		if err != domain.ErrGateNotFound {
			t.Fatalf("expected ErrGateNotFound, got %v", err)
		}
	})

	t.Run("UpsertGateAuthority requires existing event", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		missing := keys.Event("nobody", "nothing")
		gate := domain.GateAuthority{
			Address:      keys.Gate(missing, "north-gate"),
			EventAddress: missing,
			Entrypoint:   "north-gate",
			Authority:    "agent-1",
		}
		if err := repo.UpsertGateAuthority(ctx, gate); err != domain.ErrEventNotFound {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
	})
}
