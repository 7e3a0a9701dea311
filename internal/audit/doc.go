// Package audit provides the asynchronous audit pipeline for otpgate.
//
// Events describe one observable step of an authentication flow (challenge
// issued, challenge verified, session minted, notification failed, ...) and
// are forwarded to a configurable Sink by a buffered Dispatcher so that slow
// sinks never stall request handling.
//
// # What this package must NOT do
//
//   - Import the root otpgate package (events are plain data).
//   - Block a caller when DropIfFull is set.
package audit
