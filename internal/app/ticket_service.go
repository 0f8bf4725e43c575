package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/15xa/tickmyshow/internal/clock"
	"github.com/15xa/tickmyshow/internal/domain"
	"github.com/15xa/tickmyshow/internal/keys"
	"github.com/15xa/tickmyshow/internal/token"
)

type TicketRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateTicket(ctx context.Context, ticket domain.Ticket) error
	GetTicket(ctx context.Context, address string) (domain.Ticket, error)
	GetWalletCounterForUpdate(ctx context.Context, event, wallet string) (domain.WalletCounter, error)
	UpsertWalletCounter(ctx context.Context, ctr domain.WalletCounter) error
}

// EventReserver is the capacity side of issuance: a locked read of the
// event row plus the guarded increment.
type EventReserver interface {
	GetEventForUpdate(ctx context.Context, address string) (domain.Event, error)
	IncrementIssued(ctx context.Context, address string, qty uint32) error
}

type TicketService struct {
	repo     TicketRepository
	events   EventReserver
	ledger   token.Ledger
	metadata token.MetadataRegistry
	clock    clock.Clock
}

func NewTicketService(repo TicketRepository, events EventReserver, ledger token.Ledger, metadata token.MetadataRegistry, clk clock.Clock) *TicketService {
	return &TicketService{
		repo:     repo,
		events:   events,
		ledger:   ledger,
		metadata: metadata,
		clock:    clk,
	}
}

type MintTicketInput struct {
	EventAddress string
	Holder       string
	Quantity     uint8
	Metadata     *token.Metadata
}

// MintTicket issues a single ticket.
func (s *TicketService) MintTicket(ctx context.Context, in MintTicketInput) (domain.Ticket, error) {
	in.Quantity = 1
	tickets, err := s.MintBatch(ctx, in)
	if err != nil {
		return domain.Ticket{}, err
	}
	return tickets[0], nil
}

// MintBatch issues Quantity tickets to one holder in a single atomic
// operation. The event row lock serializes concurrent issuance, so the
// capacity check-and-increment and the wallet-cap check-and-increment
// cannot interleave with another caller's; any sub-step failure rolls the
// whole batch back.
func (s *TicketService) MintBatch(ctx context.Context, in MintTicketInput) ([]domain.Ticket, error) {
	if in.Holder == "" {
		return nil, domain.ErrHolderRequired
	}
	if in.Quantity == 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.Quantity > domain.MaxTicketsPerWallet {
		return nil, domain.ErrPerWalletLimit
	}

	now := s.clock.Now()
	var tickets []domain.Ticket

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.events.GetEventForUpdate(txCtx, in.EventAddress)
		if err != nil {
			return err
		}

		qty := uint32(in.Quantity)
		if event.Issued+qty > event.Capacity {
			return domain.ErrSoldOut
		}

		ctr, err := s.repo.GetWalletCounterForUpdate(txCtx, event.Address, in.Holder)
		if err != nil {
			return err
		}
		if ctr.Count+in.Quantity > domain.MaxTicketsPerWallet {
			return domain.ErrPerWalletLimit
		}

		tickets = make([]domain.Ticket, 0, in.Quantity)
		for i := uint8(0); i < in.Quantity; i++ {
			ticket, err := s.bindCredential(txCtx, event, in, ctr.Count+i, now)
			if err != nil {
				return err
			}
			tickets = append(tickets, ticket)
		}

		ctr.Count += in.Quantity
		if err := s.repo.UpsertWalletCounter(txCtx, ctr); err != nil {
			return err
		}
		return s.events.IncrementIssued(txCtx, event.Address, qty)
	})
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// bindCredential mints one unit to the holder, optionally attaches
// metadata, hands lock authority to the event and freezes the balance
// account, then records the ticket at its derived address. After this the
// holder cannot transfer or thaw the unit; only event-scoped logic can.
func (s *TicketService) bindCredential(ctx context.Context, event domain.Event, in MintTicketInput, index uint8, now time.Time) (domain.Ticket, error) {
	mint := uuid.NewString()
	account := keys.TokenAccount(mint, in.Holder)

	if err := s.ledger.Mint(ctx, token.MintParams{
		Mint:     mint,
		Account:  account,
		Owner:    in.Holder,
		Quantity: 1,
	}); err != nil {
		return domain.Ticket{}, err
	}
	if in.Metadata != nil {
		if err := s.metadata.Attach(ctx, mint, *in.Metadata); err != nil {
			return domain.Ticket{}, err
		}
	}
	if err := s.ledger.SetLockAuthority(ctx, mint, in.Holder, event.Address); err != nil {
		return domain.Ticket{}, err
	}
	if err := s.ledger.Freeze(ctx, account, event.Address); err != nil {
		return domain.Ticket{}, err
	}

	ticket := domain.Ticket{
		Address:      keys.Ticket(event.Address, in.Holder, index),
		EventAddress: event.Address,
		Holder:       in.Holder,
		Mint:         mint,
		TokenAccount: account,
		CheckedIn:    false,
		IssuedAt:     now,
	}
	if err := s.repo.CreateTicket(ctx, ticket); err != nil {
		return domain.Ticket{}, err
	}
	return ticket, nil
}

func (s *TicketService) GetTicket(ctx context.Context, address string) (domain.Ticket, error) {
	return s.repo.GetTicket(ctx, address)
}
