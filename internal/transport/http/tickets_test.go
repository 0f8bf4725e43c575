package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/15xa/tickmyshow/internal/app"
	"github.com/15xa/tickmyshow/internal/domain"
	"github.com/15xa/tickmyshow/internal/keys"
)

func TestHandleMintTickets(t *testing.T) {
	t.Parallel()

	eventAddr := keys.Event("owner-1", "Dev Meetup")
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	makeTickets := func(n int) []domain.Ticket {
		tickets := make([]domain.Ticket, 0, n)
		for i := 0; i < n; i++ {
			tickets = append(tickets, domain.Ticket{
				Address:      keys.Ticket(eventAddr, "holder-1", uint8(i)),
				EventAddress: eventAddr,
				Holder:       "holder-1",
				Mint:         "mint",
				TokenAccount: "acct",
				IssuedAt:     issuedAt,
			})
		}
		return tickets
	}

	tests := []struct {
		name           string
		address        string
		body           string
		tickets        []domain.Ticket
		serviceErr     error
		expectedStatus int
		expectedSubstr string
		wantBatch      bool
	}{
		{
			name:           "single mint",
			address:        eventAddr,
			body:           `{"holder":"holder-1"}`,
			tickets:        makeTickets(1),
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"checked_in":false`,
		},
		{
			name:           "batch mint",
			address:        eventAddr,
			body:           `{"holder":"holder-1","quantity":3}`,
			tickets:        makeTickets(3),
			expectedStatus: http.StatusCreated,
			wantBatch:      true,
		},
		{
			name:           "metadata accepted",
			address:        eventAddr,
			body:           `{"holder":"holder-1","metadata":{"name":"Dev Meetup #1","symbol":"TKT","uri":"ipfs://meta"}}`,
			tickets:        makeTickets(1),
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "quantity above cap rejected before the service",
			address:        eventAddr,
			body:           `{"holder":"holder-1","quantity":7}`,
			expectedStatus: http.StatusConflict,
			expectedSubstr: "per_wallet_limit",
		},
		{
			name:           "explicit zero quantity rejected",
			address:        eventAddr,
			body:           `{"holder":"holder-1","quantity":0}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: "invalid_quantity",
		},
		{
			name:           "negative quantity rejected",
			address:        eventAddr,
			body:           `{"holder":"holder-1","quantity":-1}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: "invalid_quantity",
		},
		{
			name:           "sold out",
			address:        eventAddr,
			body:           `{"holder":"holder-1"}`,
			serviceErr:     domain.ErrSoldOut,
			expectedStatus: http.StatusConflict,
			expectedSubstr: "sold_out",
		},
		{
			name:           "invalid event address",
			address:        "garbage",
			body:           `{"holder":"holder-1"}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: "invalid_address",
		},
		{
			name:           "invalid body",
			address:        eventAddr,
			body:           `{"holder":`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: "invalid_request_body",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubTicketService{tickets: tt.tickets, err: tt.serviceErr}
			r := chi.NewRouter()
			r.Post("/events/{address}/tickets", HandleMintTickets(svc))

			req := httptest.NewRequest(http.MethodPost, "/events/"+tt.address+"/tickets", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d (%s)", tt.expectedStatus, rr.Code, rr.Body.String())
			}
			if tt.expectedSubstr != "" && !strings.Contains(rr.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected body to contain %q, got %s", tt.expectedSubstr, rr.Body.String())
			}
			if tt.wantBatch && !svc.batchCalled {
				t.Fatalf("expected MintBatch to be used for quantity > 1")
			}
		})
	}
}

func TestHandleGetTicket(t *testing.T) {
	t.Parallel()

	eventAddr := keys.Event("owner-1", "Dev Meetup")
	ticket := domain.Ticket{
		Address:      keys.Ticket(eventAddr, "holder-1", 0),
		EventAddress: eventAddr,
		Holder:       "holder-1",
	}

	t.Run("found", func(t *testing.T) {
		svc := &stubTicketService{tickets: []domain.Ticket{ticket}}
		r := chi.NewRouter()
		r.Get("/events/{address}/tickets/{ticket}", HandleGetTicket(svc))

		req := httptest.NewRequest(http.MethodGet, "/events/"+eventAddr+"/tickets/"+ticket.Address, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rr.Code, rr.Body.String())
		}
		if !strings.Contains(rr.Body.String(), ticket.Address) {
			t.Fatalf("expected ticket address in body, got %s", rr.Body.String())
		}
	})

	t.Run("ticket from another event hidden", func(t *testing.T) {
		otherEvent := keys.Event("owner-1", "Other Show")
		svc := &stubTicketService{tickets: []domain.Ticket{ticket}}
		r := chi.NewRouter()
		r.Get("/events/{address}/tickets/{ticket}", HandleGetTicket(svc))

		req := httptest.NewRequest(http.MethodGet, "/events/"+otherEvent+"/tickets/"+ticket.Address, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})
}

type stubTicketService struct {
	tickets     []domain.Ticket
	err         error
	batchCalled bool
}

func (s *stubTicketService) MintTicket(_ context.Context, _ app.MintTicketInput) (domain.Ticket, error) {
	if s.err != nil {
		return domain.Ticket{}, s.err
	}
	return s.tickets[0], nil
}

func (s *stubTicketService) MintBatch(_ context.Context, _ app.MintTicketInput) ([]domain.Ticket, error) {
	s.batchCalled = true
	if s.err != nil {
		return nil, s.err
	}
	return s.tickets, nil
}

func (s *stubTicketService) GetTicket(_ context.Context, address string) (domain.Ticket, error) {
	if s.err != nil {
		return domain.Ticket{}, s.err
	}
	for _, tk := range s.tickets {
		if tk.Address == address {
			return tk, nil
		}
	}
	return domain.Ticket{}, domain.ErrTicketNotFound
}
