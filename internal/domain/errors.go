package domain

import "errors"

var (
	ErrInvalidCapacity        = errors.New("invalid capacity")
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrSoldOut                = errors.New("sold out")
	ErrPerWalletLimit         = errors.New("per-wallet ticket limit exceeded")
	ErrDuplicateAccount       = errors.New("account already exists at derived address")
	ErrUnauthorized           = errors.New("signer is not the event owner")
	ErrUnauthorizedEntrypoint = errors.New("signer is not the entrypoint authority")
	ErrInvalidTicket          = errors.New("ticket does not belong to event")
	ErrAlreadyCheckedIn       = errors.New("ticket already checked in")
	ErrEventNotFound          = errors.New("event not found")
	ErrTicketNotFound         = errors.New("ticket not found")
	ErrGateNotFound           = errors.New("entrypoint not found")
	ErrSignerRequired         = errors.New("signer required")
	ErrEventNameRequired      = errors.New("event name required")
	ErrEntrypointRequired     = errors.New("entrypoint id required")
	ErrHolderRequired         = errors.New("holder required")
	ErrAuthorityRequired      = errors.New("authority required")
	ErrInvalidAddress         = errors.New("invalid address")
)
