package domain

import "time"

// MaxTicketsPerWallet caps how many tickets one wallet may hold per event.
const MaxTicketsPerWallet = 5

// Ticket is a holder-bound, single-use admission credential. The backing
// token unit sits frozen in the holder's token account until redemption
// burns it; CheckedIn flips false -> true exactly once.
type Ticket struct {
	Address      string
	EventAddress string
	Holder       string
	Mint         string
	TokenAccount string
	CheckedIn    bool
	IssuedAt     time.Time
}

// WalletCounter tracks per-event issuance for one wallet.
type WalletCounter struct {
	EventAddress string
	Wallet       string
	Count        uint8
}
