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

// EventInitializer is the minimal interface needed to register events.
type EventInitializer interface {
	InitEvent(ctx context.Context, in app.InitEventInput) (domain.Event, error)
}

// EventReader is the minimal interface for the event read surface.
type EventReader interface {
	GetEvent(ctx context.Context, address string) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

// EntrypointAssigner is the minimal interface needed to delegate gates.
type EntrypointAssigner interface {
	AssignEntrypoint(ctx context.Context, in app.AssignEntrypointInput) (domain.GateAuthority, error)
}

// HandleInitEvent returns an HTTP handler for registering events.
func HandleInitEvent(svc EventInitializer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req initEventRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		date, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDate, "date must be RFC 3339")
			return
		}

		event, err := svc.InitEvent(r.Context(), app.InitEventInput{
			Caller:   signerFromRequest(r),
			Name:     req.Name,
			Date:     date,
			Capacity: req.Capacity,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, eventResponse{
			Address:  event.Address,
			Owner:    event.Owner,
			Name:     event.Name,
			Date:     event.Date,
			Capacity: event.Capacity,
			Issued:   event.Issued,
		})
	}
}

// HandleGetEvent returns an HTTP handler for reading a single event.
func HandleGetEvent(svc EventReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := chi.URLParam(r, "address")
		if err := keys.Validate(address); err != nil {
			writeServiceError(w, err)
			return
		}

		event, err := svc.GetEvent(r.Context(), address)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, eventResponse{
			Address:  event.Address,
			Owner:    event.Owner,
			Name:     event.Name,
			Date:     event.Date,
			Capacity: event.Capacity,
			Issued:   event.Issued,
		})
	}
}

// HandleListEvents returns an HTTP handler for listing events.
func HandleListEvents(svc EventReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := svc.ListEvents(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := make([]eventResponse, 0, len(events))
		for _, event := range events {
			resp = append(resp, eventResponse{
				Address:  event.Address,
				Owner:    event.Owner,
				Name:     event.Name,
				Date:     event.Date,
				Capacity: event.Capacity,
				Issued:   event.Issued,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleAssignEntrypoint returns an HTTP handler for gate delegation.
func HandleAssignEntrypoint(svc EntrypointAssigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := chi.URLParam(r, "address")
		if err := keys.Validate(address); err != nil {
			writeServiceError(w, err)
			return
		}

		var req assignEntrypointRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		gate, err := svc.AssignEntrypoint(r.Context(), app.AssignEntrypointInput{
			Caller:       signerFromRequest(r),
			EventAddress: address,
			Entrypoint:   req.Entrypoint,
			Authority:    req.Authority,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, gateResponse{
			Address:    gate.Address,
			Event:      gate.EventAddress,
			Entrypoint: gate.Entrypoint,
			Authority:  gate.Authority,
		})
	}
}

type initEventRequest struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Capacity uint32 `json:"capacity"`
}

type assignEntrypointRequest struct {
	Entrypoint string `json:"entrypoint"`
	Authority  string `json:"authority"`
}

type eventResponse struct {
	Address  string    `json:"address"`
	Owner    string    `json:"owner"`
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	Capacity uint32    `json:"capacity"`
	Issued   uint32    `json:"issued"`
}

type gateResponse struct {
	Address    string `json:"address"`
	Event      string `json:"event"`
	Entrypoint string `json:"entrypoint"`
	Authority  string `json:"authority"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
