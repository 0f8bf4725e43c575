package app

import (
	"context"
	"time"

	"github.com/15xa/tickmyshow/internal/clock"
	"github.com/15xa/tickmyshow/internal/domain"
	"github.com/15xa/tickmyshow/internal/keys"
)

type EventRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateEvent(ctx context.Context, event domain.Event) error
	GetEvent(ctx context.Context, address string) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	UpsertGateAuthority(ctx context.Context, gate domain.GateAuthority) error
	GetGateAuthority(ctx context.Context, event, entrypoint string) (domain.GateAuthority, error)
}

type EventService struct {
	repo  EventRepository
	clock clock.Clock
}

func NewEventService(repo EventRepository, clk clock.Clock) *EventService {
	return &EventService{
		repo:  repo,
		clock: clk,
	}
}

type InitEventInput struct {
	Caller   string
	Name     string
	Date     time.Time
	Capacity uint32
}

// InitEvent registers an event at its derived address. The (owner, name)
// pair is the event identity: re-creating it collides at the derived
// address and fails with ErrDuplicateAccount.
func (s *EventService) InitEvent(ctx context.Context, in InitEventInput) (domain.Event, error) {
	if in.Caller == "" {
		return domain.Event{}, domain.ErrSignerRequired
	}
	if in.Name == "" {
		return domain.Event{}, domain.ErrEventNameRequired
	}
	if in.Capacity == 0 {
		return domain.Event{}, domain.ErrInvalidCapacity
	}

	event := domain.Event{
		Address:  keys.Event(in.Caller, in.Name),
		Owner:    in.Caller,
		Name:     in.Name,
		Date:     in.Date,
		Capacity: in.Capacity,
		Issued:   0,
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

type AssignEntrypointInput struct {
	Caller       string
	EventAddress string
	Entrypoint   string
	Authority    string
}

// AssignEntrypoint records or overwrites the gate delegation for one
// entrypoint. Only the event's recorded owner may call it; the delegated
// authority gains redemption rights at that entrypoint and nothing else.
func (s *EventService) AssignEntrypoint(ctx context.Context, in AssignEntrypointInput) (domain.GateAuthority, error) {
	if in.Caller == "" {
		return domain.GateAuthority{}, domain.ErrSignerRequired
	}
	if in.Entrypoint == "" {
		return domain.GateAuthority{}, domain.ErrEntrypointRequired
	}
	if in.Authority == "" {
		return domain.GateAuthority{}, domain.ErrAuthorityRequired
	}

	var gate domain.GateAuthority
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEvent(txCtx, in.EventAddress)
		if err != nil {
			return err
		}
		if event.Owner != in.Caller {
			return domain.ErrUnauthorized
		}

		gate = domain.GateAuthority{
			Address:      keys.Gate(event.Address, in.Entrypoint),
			EventAddress: event.Address,
			Entrypoint:   in.Entrypoint,
			Authority:    in.Authority,
		}
		return s.repo.UpsertGateAuthority(txCtx, gate)
	})
	if err != nil {
		return domain.GateAuthority{}, err
	}
	return gate, nil
}

func (s *EventService) GetEvent(ctx context.Context, address string) (domain.Event, error) {
	return s.repo.GetEvent(ctx, address)
}

func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx)
}
