package domain

import "time"

// CheckInRecord is the immutable audit entry written once per redemption.
// Holder is copied from the ticket at redemption time, not re-derived.
type CheckInRecord struct {
	Address       string
	TicketAddress string
	Holder        string
	Timestamp     time.Time
}
