// Package wire defines the CBOR encoding used on the modemd bus.
//
// It provides the shared encoder/decoder modes, the tagged-record outer
// shape used for extensible settings payloads, and the request/response/
// notification message types exchanged between the agent and bus clients.
//
// # Encoding
//
// Encoding is deterministic (canonical key ordering, definite lengths) so
// that equal values always produce equal bytes. Decoding is lenient to
// allow newer peers to add fields without breaking older ones.
//
// # Tagged records
//
// A TaggedRecord is the wire shape for versioned settings: a numeric
// discriminant followed by a string-keyed property map. New settings
// variants are added by defining new discriminant values; the outer shape
// never changes.
package wire
