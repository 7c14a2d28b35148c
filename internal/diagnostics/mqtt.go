package diagnostics

import (
	"time"

	"github.com/nerrad567/sparky-core/internal/infrastructure/mqtt"
)

// Publisher is the subset of mqtt.Client used by MQTTSink.
type Publisher interface {
	PublishJSON(topic string, v any) error
}

// MQTTSink publishes every report to sparky/diagnostics/{code}.
// Publish failures are logged and otherwise dropped.
type MQTTSink struct {
	pub    Publisher
	siteID string
	logger Logger
}

// mqttReport is the JSON payload of a diagnostics message.
type mqttReport struct {
	Report
	SiteID string `json:"site_id,omitempty"`
}

// NewMQTTSink creates a sink publishing through pub. siteID is included in
// each payload so several installations can share a broker.
func NewMQTTSink(pub Publisher, siteID string, logger Logger) *MQTTSink {
	return &MQTTSink{pub: pub, siteID: siteID, logger: logger}
}

// Report implements Sink.
func (s *MQTTSink) Report(code, message string) {
	payload := mqttReport{
		Report: Report{Code: code, Message: message, At: time.Now().UTC()},
		SiteID: s.siteID,
	}
	if err := s.pub.PublishJSON(mqtt.Topics{}.Diagnostic(code), payload); err != nil && s.logger != nil {
		s.logger.Warn("publishing diagnostic failed", "code", code, "error", err)
	}
}
