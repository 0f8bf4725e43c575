package http

import (
	"encoding/json"
	"net/http"

	"github.com/15xa/tickmyshow/internal/domain"
)

const (
	codeMethodNotAllowed       = "method_not_allowed"
	codeNotFound               = "not_found"
	codeInvalidRequestBody     = "invalid_request_body"
	codeSignerRequired         = "signer_required"
	codeEventNameRequired      = "event_name_required"
	codeEntrypointRequired     = "entrypoint_required"
	codeAuthorityRequired      = "authority_required"
	codeHolderRequired         = "holder_required"
	codeInvalidCapacity        = "invalid_capacity"
	codeInvalidQuantity        = "invalid_quantity"
	codeInvalidAddress         = "invalid_address"
	codeInvalidDate            = "invalid_date"
	codeSoldOut                = "sold_out"
	codePerWalletLimit         = "per_wallet_limit"
	codeDuplicateAccount       = "duplicate_account"
	codeUnauthorized           = "unauthorized"
	codeUnauthorizedEntrypoint = "unauthorized_entrypoint"
	codeInvalidTicket          = "invalid_ticket"
	codeAlreadyCheckedIn       = "already_checked_in"
	codeEventNotFound          = "event_not_found"
	codeTicketNotFound         = "ticket_not_found"
	codeEntrypointNotFound     = "entrypoint_not_found"
	codeForbidden              = "forbidden"
	codeInternalError          = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeServiceError maps the domain error taxonomy onto HTTP statuses and
// stable error codes callers can branch on.
func writeServiceError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrSignerRequired:
		writeError(w, http.StatusUnauthorized, codeSignerRequired, err.Error())
	case domain.ErrUnauthorized:
		writeError(w, http.StatusForbidden, codeUnauthorized, err.Error())
	case domain.ErrUnauthorizedEntrypoint:
		writeError(w, http.StatusForbidden, codeUnauthorizedEntrypoint, err.Error())
	case domain.ErrEventNotFound:
		writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
	case domain.ErrTicketNotFound:
		writeError(w, http.StatusNotFound, codeTicketNotFound, err.Error())
	case domain.ErrGateNotFound:
		writeError(w, http.StatusNotFound, codeEntrypointNotFound, err.Error())
	case domain.ErrSoldOut:
		writeError(w, http.StatusConflict, codeSoldOut, err.Error())
	case domain.ErrPerWalletLimit:
		writeError(w, http.StatusConflict, codePerWalletLimit, err.Error())
	case domain.ErrDuplicateAccount:
		writeError(w, http.StatusConflict, codeDuplicateAccount, err.Error())
	case domain.ErrAlreadyCheckedIn:
		writeError(w, http.StatusConflict, codeAlreadyCheckedIn, err.Error())
	case domain.ErrInvalidTicket:
		writeError(w, http.StatusConflict, codeInvalidTicket, err.Error())
	case domain.ErrInvalidCapacity:
		writeError(w, http.StatusBadRequest, codeInvalidCapacity, err.Error())
	case domain.ErrInvalidQuantity:
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case domain.ErrInvalidAddress:
		writeError(w, http.StatusBadRequest, codeInvalidAddress, err.Error())
	case domain.ErrEventNameRequired:
		writeError(w, http.StatusBadRequest, codeEventNameRequired, err.Error())
	case domain.ErrEntrypointRequired:
		writeError(w, http.StatusBadRequest, codeEntrypointRequired, err.Error())
	case domain.ErrAuthorityRequired:
		writeError(w, http.StatusBadRequest, codeAuthorityRequired, err.Error())
	case domain.ErrHolderRequired:
		writeError(w, http.StatusBadRequest, codeHolderRequired, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
