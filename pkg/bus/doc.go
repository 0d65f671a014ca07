// Package bus exposes a device's object surface to control clients
// over websockets.
//
// Requests and responses are CBOR frames defined in the wire package.
// Clients issue Get/Set/Invoke operations against exposed objects and
// may subscribe to attribute change notifications, which are fed by the
// objects' flush cycle. Peer identity is carried as a query parameter
// on the websocket URL and checked by the authorization gate.
package bus
