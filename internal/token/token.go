// Package token defines the interface to the token accounting primitive
// that backs ticket credentials. Minting, lock-authority transfer, freeze,
// thaw and burn are the building blocks of the credential bind: one unit
// minted to the holder, then locked under the event's authority so only
// event-scoped logic can ever thaw and destroy it.
package token

import (
	"context"
	"errors"
)

var (
	ErrMintNotFound        = errors.New("token: mint not found")
	ErrAccountNotFound     = errors.New("token: account not found")
	ErrWrongAuthority      = errors.New("token: wrong lock authority")
	ErrAccountFrozen       = errors.New("token: account frozen")
	ErrAccountNotFrozen    = errors.New("token: account not frozen")
	ErrInsufficientBalance = errors.New("token: insufficient balance")
)

// MintParams creates a fresh mint and a balance account holding the
// initial quantity. LockAuthority starts as the minting holder and is
// transferred to the event during the bind.
type MintParams struct {
	Mint     string
	Account  string
	Owner    string
	Quantity uint64
}

// Metadata is descriptive only; it is never consulted for authorization.
type Metadata struct {
	Name   string
	Symbol string
	URI    string
}

// Ledger is the token primitive consumed by issuance and redemption. All
// mutations observe the surrounding transaction when one is in the
// context, so a failed bind or redemption leaves no token state behind.
type Ledger interface {
	Mint(ctx context.Context, p MintParams) error
	SetLockAuthority(ctx context.Context, mint, current, next string) error
	Freeze(ctx context.Context, account, authority string) error
	Thaw(ctx context.Context, account, authority string) error
	Burn(ctx context.Context, account, authority string, qty uint64) error
}

// MetadataRegistry stores descriptive metadata against a mint.
type MetadataRegistry interface {
	Attach(ctx context.Context, mint string, md Metadata) error
}
