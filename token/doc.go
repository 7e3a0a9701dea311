// Package token signs and verifies the compact, self-contained tokens that
// carry state between otpgate flow steps: the two-tier password-reset
// progress tokens and the access/refresh session pair.
//
// All tokens embed issuer, audience, issued-at, and expiry. Verification
// performs signature and expiry checks through the JWT library, then an
// explicit issuer/audience equality check on the decoded claims. A
// well-signed token minted for a different configured audience is rejected
// here, not only at the signature layer.
//
// # Architecture boundaries
//
// This package is pure: no I/O, no clock injection beyond time.Now, safe
// for concurrent use after NewManager.
package token
