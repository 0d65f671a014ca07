// Package persistence provides runtime state persistence for the agent.
//
// This package handles the JSON serialization of runtime state (per-device
// signal polling rates, last applied firmware update settings) that must
// survive agent restarts. Event log storage is handled separately by the
// log package's FileLogger.
package persistence
