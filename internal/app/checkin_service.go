package app

import (
	"context"

	"github.com/15xa/tickmyshow/internal/clock"
	"github.com/15xa/tickmyshow/internal/domain"
	"github.com/15xa/tickmyshow/internal/keys"
	"github.com/15xa/tickmyshow/internal/token"
)

type CheckInRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetTicketForUpdate(ctx context.Context, address string) (domain.Ticket, error)
	MarkCheckedIn(ctx context.Context, address string) error
	CreateCheckIn(ctx context.Context, rec domain.CheckInRecord) error
}

// GateResolver looks up the delegation record for an entrypoint.
type GateResolver interface {
	GetGateAuthority(ctx context.Context, event, entrypoint string) (domain.GateAuthority, error)
}

type CheckInService struct {
	repo   CheckInRepository
	gates  GateResolver
	ledger token.Ledger
	clock  clock.Clock
}

func NewCheckInService(repo CheckInRepository, gates GateResolver, ledger token.Ledger, clk clock.Clock) *CheckInService {
	return &CheckInService{
		repo:   repo,
		gates:  gates,
		ledger: ledger,
		clock:  clk,
	}
}

type CheckInInput struct {
	Caller        string
	EventAddress  string
	Entrypoint    string
	TicketAddress string
}

// CheckIn redeems a ticket: Issued -> CheckedIn, terminal. The signer must
// be the authority delegated for the entrypoint; the bound credential is
// thawed and burned under the event's authority, an audit record is
// written at the timestamp-derived address, and the ticket flag flips.
// All of it commits or none of it does.
func (s *CheckInService) CheckIn(ctx context.Context, in CheckInInput) (domain.CheckInRecord, error) {
	if in.Caller == "" {
		return domain.CheckInRecord{}, domain.ErrSignerRequired
	}
	if in.Entrypoint == "" {
		return domain.CheckInRecord{}, domain.ErrEntrypointRequired
	}

	now := s.clock.Now()
	var rec domain.CheckInRecord

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		gate, err := s.gates.GetGateAuthority(txCtx, in.EventAddress, in.Entrypoint)
		if err != nil {
			return err
		}
		if gate.EventAddress != in.EventAddress || gate.Authority != in.Caller {
			return domain.ErrUnauthorizedEntrypoint
		}

		ticket, err := s.repo.GetTicketForUpdate(txCtx, in.TicketAddress)
		if err != nil {
			return err
		}
		if ticket.EventAddress != in.EventAddress {
			return domain.ErrInvalidTicket
		}
		// The flag is the authoritative replay guard; the derived-address
		// collision on the record insert below is defense in depth.
		if ticket.CheckedIn {
			return domain.ErrAlreadyCheckedIn
		}

		// Thaw and burn are signed by the event's derived authority, never
		// by the gate agent or the holder.
		if err := s.ledger.Thaw(txCtx, ticket.TokenAccount, ticket.EventAddress); err != nil {
			return err
		}
		if err := s.ledger.Burn(txCtx, ticket.TokenAccount, ticket.EventAddress, 1); err != nil {
			return err
		}

		rec = domain.CheckInRecord{
			Address:       keys.CheckIn(ticket.Address, now),
			TicketAddress: ticket.Address,
			Holder:        ticket.Holder,
			Timestamp:     now,
		}
		if err := s.repo.CreateCheckIn(txCtx, rec); err != nil {
			return err
		}
		return s.repo.MarkCheckedIn(txCtx, ticket.Address)
	})
	if err != nil {
		return domain.CheckInRecord{}, err
	}
	return rec, nil
}
