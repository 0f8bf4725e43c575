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
)

// TicketRedeemer is the minimal interface needed to redeem tickets.
type TicketRedeemer interface {
	CheckIn(ctx context.Context, in app.CheckInInput) (domain.CheckInRecord, error)
}

// HandleCheckIn returns an HTTP handler for gate check-in.
func HandleCheckIn(svc TicketRedeemer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := chi.URLParam(r, "address")
		if err := keys.Validate(address); err != nil {
			writeServiceError(w, err)
			return
		}

		var req checkInRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if err := keys.Validate(req.Ticket); err != nil {
			writeServiceError(w, err)
			return
		}

		rec, err := svc.CheckIn(r.Context(), app.CheckInInput{
			Caller:        signerFromRequest(r),
			EventAddress:  address,
			Entrypoint:    req.Entrypoint,
			TicketAddress: req.Ticket,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, checkInResponse{
			Address:   rec.Address,
			Ticket:    rec.TicketAddress,
			Holder:    rec.Holder,
			Timestamp: rec.Timestamp,
		})
	}
}

type checkInRequest struct {
	Entrypoint string `json:"entrypoint"`
	Ticket     string `json:"ticket"`
}

type checkInResponse struct {
	Address   string    `json:"address"`
	Ticket    string    `json:"ticket"`
	Holder    string    `json:"holder"`
	Timestamp time.Time `json:"timestamp"`
}
