package domain

// GateAuthority delegates check-in rights for a single entrypoint of an
// event to an external signer. It grants no minting or admin power; only
// the event owner may create or overwrite one.
type GateAuthority struct {
	Address      string
	EventAddress string
	Entrypoint   string
	Authority    string
}
