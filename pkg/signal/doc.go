// Package signal implements the extended signal quality capability for a
// managed device.
//
// The Interface is the per-device lifecycle controller: the owning agent
// drives Initialize/Enable/Disable as the device's own state changes, and
// Shutdown when the device goes away. When the bound backend implements
// ValueLoader the capability is supported: the controller exposes a bus
// object with a configurable polling rate, per-technology measurement
// attributes, and a Setup method gated on device-control authorization.
//
// Polling is fault tolerant: a failed poll logs, publishes all readings
// as unavailable, and leaves the timer running. Ticks that fire while a
// previous poll is still outstanding are skipped, and a poll completion
// that outlives its refresh context is discarded rather than writing
// stale data.
//
// Callers that need polling stopped cleanly must Disable before Shutdown;
// Shutdown only detaches the exposed object.
package signal
