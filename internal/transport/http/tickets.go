package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/15xa/tickmyshow/internal/app"
	"github.com/15xa/tickmyshow/internal/domain"
	"github.com/15xa/tickmyshow/internal/keys"
	"github.com/15xa/tickmyshow/internal/token"
)

// TicketMinter is the minimal interface needed to issue tickets.
type TicketMinter interface {
	MintTicket(ctx context.Context, in app.MintTicketInput) (domain.Ticket, error)
	MintBatch(ctx context.Context, in app.MintTicketInput) ([]domain.Ticket, error)
}

// TicketReader is the minimal interface for the ticket read surface.
type TicketReader interface {
	GetTicket(ctx context.Context, address string) (domain.Ticket, error)
}

// HandleMintTickets returns an HTTP handler for single and batch issuance.
func HandleMintTickets(svc TicketMinter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := chi.URLParam(r, "address")
		if err := keys.Validate(address); err != nil {
			writeServiceError(w, err)
			return
		}

		var req mintTicketsRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		// Omitted quantity means a single ticket; an explicit zero or
		// negative quantity is a caller error, not a default.
		qty := 1
		if req.Quantity != nil {
			qty = *req.Quantity
		}
		if qty <= 0 {
			writeServiceError(w, domain.ErrInvalidQuantity)
			return
		}
		if qty > int(domain.MaxTicketsPerWallet) {
			writeServiceError(w, domain.ErrPerWalletLimit)
			return
		}

		in := app.MintTicketInput{
			EventAddress: address,
			Holder:       req.Holder,
			Metadata:     req.Metadata.toToken(),
		}

		var tickets []domain.Ticket
		var err error
		if qty == 1 {
			var ticket domain.Ticket
			ticket, err = svc.MintTicket(r.Context(), in)
			tickets = []domain.Ticket{ticket}
		} else {
			in.Quantity = uint8(qty)
			tickets, err = svc.MintBatch(r.Context(), in)
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := mintTicketsResponse{Tickets: make([]ticketResponse, 0, len(tickets))}
		for _, tk := range tickets {
			resp.Tickets = append(resp.Tickets, toTicketResponse(tk))
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

// HandleGetTicket returns an HTTP handler for reading one ticket.
func HandleGetTicket(svc TicketReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := chi.URLParam(r, "ticket")
		if err := keys.Validate(address); err != nil {
			writeServiceError(w, err)
			return
		}

		ticket, err := svc.GetTicket(r.Context(), address)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if ticket.EventAddress != chi.URLParam(r, "address") {
			writeServiceError(w, domain.ErrTicketNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toTicketResponse(ticket))
	}
}

type mintTicketsRequest struct {
	Holder   string          `json:"holder"`
	Quantity *int            `json:"quantity"`
	Metadata *ticketMetadata `json:"metadata"`
}

type ticketMetadata struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	URI    string `json:"uri"`
}

func (m *ticketMetadata) toToken() *token.Metadata {
	if m == nil {
		return nil
	}
	return &token.Metadata{Name: m.Name, Symbol: m.Symbol, URI: m.URI}
}

type mintTicketsResponse struct {
	Tickets []ticketResponse `json:"tickets"`
}

type ticketResponse struct {
	Address      string    `json:"address"`
	Event        string    `json:"event"`
	Holder       string    `json:"holder"`
	Mint         string    `json:"mint"`
	TokenAccount string    `json:"token_account"`
	CheckedIn    bool      `json:"checked_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

func toTicketResponse(t domain.Ticket) ticketResponse {
	return ticketResponse{
		Address:      t.Address,
		Event:        t.EventAddress,
		Holder:       t.Holder,
		Mint:         t.Mint,
		TokenAccount: t.TokenAccount,
		CheckedIn:    t.CheckedIn,
		IssuedAt:     t.IssuedAt,
	}
}
