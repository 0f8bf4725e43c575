// Package keys derives deterministic record addresses. Every addressable
// record is stored at the address derived from its identity seeds, so
// inserting at an occupied address is the uniqueness mechanism: duplicate
// issuance and check-in replays surface as key collisions, without any
// lookup index.
package keys

import (
	"crypto/sha256"
	"strconv"
	"time"

	"github.com/mr-tron/base58"

	"github.com/15xa/tickmyshow/internal/domain"
)

// Namespaces, one per addressable record kind.
const (
	NamespaceEvent        = "event"
	NamespaceTicket       = "ticket"
	NamespaceGate         = "gate"
	NamespaceCheckIn      = "checkin"
	NamespaceTokenAccount = "token-account"
)

const (
	version        = byte(0x01)
	checksumLength = 4
)

// Derive maps a namespace and ordered seeds to a base58 address:
// sha256(namespace || 0x00 seed ...) prefixed with a version byte and
// suffixed with a 4-byte double-sha256 checksum.
func Derive(namespace string, seeds ...string) string {
	h := sha256.New()
	h.Write([]byte(namespace))
	for _, seed := range seeds {
		h.Write([]byte{0})
		h.Write([]byte(seed))
	}

	payload := append([]byte{version}, h.Sum(nil)...)
	return base58.Encode(append(payload, checksum(payload)...))
}

// Validate reports whether addr is a well-formed derived address.
func Validate(addr string) error {
	raw, err := base58.Decode(addr)
	if err != nil {
		return domain.ErrInvalidAddress
	}
	if len(raw) != 1+sha256.Size+checksumLength || raw[0] != version {
		return domain.ErrInvalidAddress
	}
	payload := raw[:len(raw)-checksumLength]
	want := checksum(payload)
	got := raw[len(raw)-checksumLength:]
	for i := range want {
		if want[i] != got[i] {
			return domain.ErrInvalidAddress
		}
	}
	return nil
}

// Event derives the address of an event from its creator and name.
func Event(owner, name string) string {
	return Derive(NamespaceEvent, owner, name)
}

// Ticket derives the address of the index-th ticket issued to holder for
// an event. The index discriminator makes batch issuance addressable while
// keeping the (event, holder) pair the identity root.
func Ticket(event, holder string, index uint8) string {
	return Derive(NamespaceTicket, event, holder, strconv.Itoa(int(index)))
}

// Gate derives the address of an entrypoint delegation record.
func Gate(event, entrypoint string) string {
	return Derive(NamespaceGate, event, entrypoint)
}

// CheckIn derives the address of a redemption audit record. Keying by
// timestamp guarantees a fresh record per redemption; a collision means a
// replay within the same clock tick and must fail.
func CheckIn(ticket string, ts time.Time) string {
	return Derive(NamespaceCheckIn, ticket, strconv.FormatInt(ts.Unix(), 10))
}

// TokenAccount derives the address of the holder-owned balance account for
// a mint.
func TokenAccount(mint, owner string) string {
	return Derive(NamespaceTokenAccount, mint, owner)
}

func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:checksumLength]
}
