package diagnostics

import (
	"time"
)

// Sink receives failure reports.
type Sink interface {
	Report(code, message string)
}

// Report is one recorded failure.
type Report struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Logger is the subset of logging.Logger used by the sinks.
type Logger interface {
	Warn(msg string, args ...any)
}

// Discard drops every report.
type Discard struct{}

// Report implements Sink.
func (Discard) Report(string, string) {}

// Multi fans a report out to every non-nil sink, in order.
type Multi []Sink

// Report implements Sink.
func (m Multi) Report(code, message string) {
	for _, s := range m {
		if s != nil {
			s.Report(code, message)
		}
	}
}

// LogSink writes each report as a warning.
type LogSink struct {
	logger Logger
}

// NewLogSink creates a sink logging through logger.
func NewLogSink(logger Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Report implements Sink.
func (s *LogSink) Report(code, message string) {
	s.logger.Warn("device cloud call failed", "code", code, "message", message)
}
