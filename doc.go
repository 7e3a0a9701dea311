// Package otpgate provides a multi-step, challenge-response authentication
// engine: it issues and verifies one-time passcodes to gate signup, login,
// and password reset, and chains short-lived signed tokens to carry a
// caller's verified progress between steps without server-side sessions.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// otpgate is the public surface. It exposes [Engine], [Builder], [Config],
// the collaborator interfaces ([UserStore], [Notifier], [ChallengeStore]),
// and value types. Signing lives in token/, digesting in password/, audit
// plumbing under internal/.
//
// # What this package must NOT do
//
//   - Expose Redis clients, store encodings, or plaintext OTP codes in its
//     public API (codes travel only through the injected [Notifier]).
//   - Hold ambient global state: every collaborator is injected and every
//     connection has an explicit lifecycle ending at [Engine.Close].
//   - Perform HTTP transport work; cookies and status mapping live in
//     httpapi/.
package otpgate
