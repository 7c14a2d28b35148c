package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for everything Sparky publishes.
const (
	// TopicPrefix is the root of the Sparky topic tree.
	TopicPrefix = "sparky"

	// TopicPrefixSystem is the base for process lifecycle topics.
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Topics provides builders for Sparky MQTT topics.
//
//	topic := mqtt.Topics{}.Diagnostic("http_error")
//	// Returns: "sparky/diagnostics/http_error"
type Topics struct{}

// Diagnostic returns the topic a failed device cloud call is reported on.
//
// Example: sparky/diagnostics/missing_token
func (Topics) Diagnostic(code string) string {
	return fmt.Sprintf("%s/diagnostics/%s", TopicPrefix, segment(code))
}

// Event returns the topic a device event is forwarded to.
//
// Example: sparky/event/53ff6f065067544840551187/temperature
func (Topics) Event(coreID, name string) string {
	return fmt.Sprintf("%s/event/%s/%s", TopicPrefix, segment(coreID), segment(name))
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: sparky/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// AllEvents returns a pattern matching every forwarded device event.
//
// Pattern: sparky/event/#
func (Topics) AllEvents() string {
	return TopicPrefix + "/event/#"
}

// AllDiagnostics returns a pattern matching every diagnostic report.
//
// Pattern: sparky/diagnostics/+
func (Topics) AllDiagnostics() string {
	return TopicPrefix + "/diagnostics/+"
}

// segment makes s safe as a single topic level. Device event names may
// contain "/" and must never introduce wildcards.
func segment(s string) string {
	if s == "" {
		return "unknown"
	}
	return strings.NewReplacer("/", "_", "+", "_", "#", "_").Replace(s)
}
