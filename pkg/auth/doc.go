// Package auth gates bus invocations that mutate device state.
//
// Inbound method invocations carry a caller (peer) identity through
// context.Context; handlers ask a Gate whether that peer holds the scope
// the operation requires before acting. Gate errors are passed through to
// the invoking caller verbatim.
package auth
