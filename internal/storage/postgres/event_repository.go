package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/15xa/tickmyshow/internal/domain"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *EventRepository) CreateEvent(ctx context.Context, event domain.Event) error {
	const stmt = `
INSERT INTO events (address, owner_address, name, date, capacity, issued)
VALUES ($1, $2, $3, $4, $5, 0)`

	_, err := r.exec(ctx, stmt, event.Address, event.Owner, event.Name, event.Date, event.Capacity)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateAccount
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidCapacity
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) GetEvent(ctx context.Context, address string) (domain.Event, error) {
	const query = `
SELECT address, owner_address, name, date, capacity, issued
FROM events
WHERE address = $1`

	return r.scanEvent(r.queryRow(ctx, query, address))
}

// GetEventForUpdate locks the event row for the rest of the transaction.
// Every issuance for an event serializes through this lock, which is what
// makes the capacity check-and-increment indivisible.
func (r *EventRepository) GetEventForUpdate(ctx context.Context, address string) (domain.Event, error) {
	const query = `
SELECT address, owner_address, name, date, capacity, issued
FROM events
WHERE address = $1
FOR UPDATE`

	return r.scanEvent(r.queryRow(ctx, query, address))
}

func (r *EventRepository) IncrementIssued(ctx context.Context, address string, qty uint32) error {
	const stmt = `
UPDATE events
SET issued = issued + $2
WHERE address = $1 AND issued + $2 <= capacity`

	tag, err := r.exec(ctx, stmt, address, qty)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrSoldOut
		}
		return fmt.Errorf("increment issued: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSoldOut
	}
	return nil
}

func (r *EventRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const query = `
SELECT address, owner_address, name, date, capacity, issued
FROM events
ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var ev domain.Event
		if err := rows.Scan(&ev.Address, &ev.Owner, &ev.Name, &ev.Date, &ev.Capacity, &ev.Issued); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate events: %w", rows.Err())
	}
	return events, nil
}

// UpsertGateAuthority overwrites the delegation for (event, entrypoint);
// re-assigning an entrypoint is an idempotent update by design.
func (r *EventRepository) UpsertGateAuthority(ctx context.Context, gate domain.GateAuthority) error {
	const stmt = `
INSERT INTO gate_authorities (address, event_address, entrypoint, authority_address)
VALUES ($1, $2, $3, $4)
ON CONFLICT (event_address, entrypoint)
DO UPDATE SET authority_address = EXCLUDED.authority_address`

	_, err := r.exec(ctx, stmt, gate.Address, gate.EventAddress, gate.Entrypoint, gate.Authority)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("upsert gate authority: %w", err)
	}
	return nil
}

func (r *EventRepository) GetGateAuthority(ctx context.Context, event, entrypoint string) (domain.GateAuthority, error) {
	const query = `
SELECT address, event_address, entrypoint, authority_address
FROM gate_authorities
WHERE event_address = $1 AND entrypoint = $2`

	var gate domain.GateAuthority
	err := r.queryRow(ctx, query, event, entrypoint).
		Scan(&gate.Address, &gate.EventAddress, &gate.Entrypoint, &gate.Authority)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.GateAuthority{}, domain.ErrGateNotFound
		}
		return domain.GateAuthority{}, fmt.Errorf("get gate authority: %w", err)
	}
	return gate, nil
}

func (r *EventRepository) scanEvent(row pgx.Row) (domain.Event, error) {
	var ev domain.Event
	err := row.Scan(&ev.Address, &ev.Owner, &ev.Name, &ev.Date, &ev.Capacity, &ev.Issued)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

func (r *EventRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *EventRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
