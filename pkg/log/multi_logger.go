package log

// MultiLogger fans each event out to several sinks. The agent uses it
// to feed the console slog adapter and the CBOR event file from one
// Logger value.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger combines the given loggers into one.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log delivers the event to every sink, in registration order.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

var _ Logger = (*MultiLogger)(nil)
