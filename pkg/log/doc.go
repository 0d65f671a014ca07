// Package log provides structured event logging for the modemd agent.
//
// Components emit Events describing capability lifecycle transitions,
// polling outcomes, and bus activity. Applications choose where events
// go: SlogAdapter for console output via log/slog, FileLogger for a
// CBOR-encoded event file, MultiLogger to fan out, or NoopLogger to
// disable logging entirely.
package log
