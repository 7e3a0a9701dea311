// Package password provides the single memory-hard digest primitive used
// across otpgate: argon2id in PHC string format.
//
// The same hasher covers user passwords and one-time passcodes, so no
// minimum input length is enforced here — password policy belongs to the
// HTTP boundary, and OTP width to the engine.
//
// # Architecture boundaries
//
// Pure CPU/memory work; no I/O beyond crypto/rand salt reads. Safe for
// concurrent use after NewArgon2.
package password
