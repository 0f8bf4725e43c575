package http

import (
	"net/http"
	"strings"
)

// signerHeader carries the authenticated caller identity. Signature
// verification happens upstream (the fronting proxy plays the role the
// ledger runtime played for transaction signatures); handlers only need
// the resolved address.
const signerHeader = "X-Signer"

func signerFromRequest(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(signerHeader))
}
