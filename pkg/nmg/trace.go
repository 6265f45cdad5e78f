package nmg

import "log"

// Tracer receives diagnostic messages from the kernel. Tracing is off
// unless a Tracer is installed on the Store.
type Tracer interface {
	Tracef(format string, args ...interface{})
}

// NopTracer discards everything.
type NopTracer struct{}

func (NopTracer) Tracef(string, ...interface{}) {}

// LogTracer forwards trace messages to a standard library logger.
type LogTracer struct {
	Logger *log.Logger
}

// NewLogTracer returns a Tracer that writes through l. A nil logger uses
// the standard logger.
func NewLogTracer(l *log.Logger) LogTracer {
	if l == nil {
		l = log.Default()
	}
	return LogTracer{Logger: l}
}

func (t LogTracer) Tracef(format string, args ...interface{}) {
	t.Logger.Printf("nmg: "+format, args...)
}
