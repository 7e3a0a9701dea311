// Package internal holds shared helpers for the otpgate engine that must not
// become part of the public API: random code generation and OAuth state
// tokens.
//
// # Architecture boundaries
//
// This package must not import the root otpgate package or any of its
// subpackages, and must not perform I/O beyond crypto/rand reads.
package internal
