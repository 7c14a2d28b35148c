package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/donovanhide/eventsource"

	"github.com/nerrad567/sparky-core/internal/infrastructure/logging"
	"github.com/nerrad567/sparky-core/internal/infrastructure/mqtt"
)

// shutdownTimeout bounds how long Run waits for the stream reader to stop.
const shutdownTimeout = 5 * time.Second

// ErrMissingToken is returned by Run when no access token is configured.
var ErrMissingToken = errors.New("events: access token is required")

// Event is one device event as delivered by the cloud.
type Event struct {
	Name        string    `json:"name"`
	Data        string    `json:"data"`
	TTL         uint32    `json:"ttl"`
	PublishedAt time.Time `json:"published_at"`
	CoreID      string    `json:"coreid"`
}

// Publisher is the subset of mqtt.Client used by the Watcher.
type Publisher interface {
	PublishJSON(topic string, v any) error
}

// Recorder stores events. Satisfied by *influxdb.Client.
type Recorder interface {
	WriteDeviceEvent(coreID, name, data string, at time.Time)
}

// Logger defines the logging interface used by the Watcher.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Config selects the stream to watch.
type Config struct {
	BaseURL     string
	AccessToken string

	// Prefix limits the stream to events whose name starts with it.
	// Empty watches every event.
	Prefix string
}

// Watcher forwards device events until its context is cancelled.
type Watcher struct {
	cfg       Config
	publisher Publisher
	recorder  Recorder
	logger    Logger
	received  atomic.Uint64
}

// NewWatcher creates a watcher for cfg. The access token is trimmed the same
// way the device API client trims it.
func NewWatcher(cfg Config) *Watcher {
	cfg.AccessToken = strings.TrimSpace(cfg.AccessToken)
	return &Watcher{cfg: cfg, logger: noopLogger{}}
}

// SetPublisher sets the MQTT destination.
func (w *Watcher) SetPublisher(p Publisher) {
	w.publisher = p
}

// SetRecorder sets the InfluxDB destination.
func (w *Watcher) SetRecorder(r Recorder) {
	w.recorder = r
}

// SetLogger sets the logger for the watcher.
func (w *Watcher) SetLogger(logger Logger) {
	w.logger = logger
}

// Received returns how many events were forwarded.
func (w *Watcher) Received() uint64 {
	return w.received.Load()
}

// streamURL builds {base}/devices/events[/{prefix}]?access_token={token}.
func (w *Watcher) streamURL() string {
	u := strings.TrimRight(w.cfg.BaseURL, "/") + "/devices/events"
	if w.cfg.Prefix != "" {
		u += "/" + url.PathEscape(w.cfg.Prefix)
	}
	return u + "?" + url.Values{"access_token": {w.cfg.AccessToken}}.Encode()
}

// Run subscribes and forwards events until ctx is done. The stream
// reconnects by itself after transient errors, which are logged. Errors and
// log entries never carry the access token.
//
// Returns:
//   - error: ErrMissingToken, a subscription failure, or nil on cancellation
func (w *Watcher) Run(ctx context.Context) error {
	if w.cfg.AccessToken == "" {
		return ErrMissingToken
	}

	// Cancelling ctx aborts the open read and drops the connection.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.streamURL(), nil)
	if err != nil {
		return fmt.Errorf("building device event request: %w", w.redact(err))
	}

	stream, err := eventsource.SubscribeWith("", &http.Client{}, req)
	if err != nil {
		return fmt.Errorf("subscribing to device events: %w", w.redact(err))
	}

	w.logger.Info("device event stream subscribed", "prefix", w.cfg.Prefix)

	for {
		select {
		case <-ctx.Done():
			w.stop(stream)
			w.logger.Info("device event stream stopped", "received", w.Received())
			return nil

		case ev := <-stream.Events:
			w.handle(ev.Event(), ev.Data())

		case err := <-stream.Errors:
			w.logger.Warn("device event stream error", "error", w.redact(err))
		}
	}
}

// stop closes a stream whose request context is already cancelled.
//
// Stream.Close closes the channels the reader goroutine sends on, so it must
// only run once the reader has reported the aborted read and is backing off
// before its next reconnect attempt.
func (w *Watcher) stop(stream *eventsource.Stream) {
	timer := time.NewTimer(shutdownTimeout)
	defer timer.Stop()
	defer stream.Close()

	for {
		select {
		case <-stream.Events:
		case <-stream.Errors:
			return
		case <-timer.C:
			w.logger.Warn("device event stream reader did not stop in time")
			return
		}
	}
}

// redactedError is an error message with the access token removed. It
// unwraps to the transport cause, which never holds the URL.
type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.cause }

// redact strips the access token from an error. Transport failures embed
// the full request URL, token included.
func (w *Watcher) redact(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	var cause error

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		msg = strings.ReplaceAll(msg, urlErr.URL, logging.RedactURL(urlErr.URL))
		cause = urlErr.Err
	}
	if token := w.cfg.AccessToken; token != "" {
		msg = strings.ReplaceAll(msg, token, "REDACTED")
	}

	if msg == err.Error() {
		return err
	}
	return &redactedError{msg: msg, cause: cause}
}

// handle decodes and forwards one SSE message.
func (w *Watcher) handle(name, data string) {
	var ev Event
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		w.logger.Warn("discarding undecodable device event", "event", name, "error", err)
		return
	}
	if ev.Name == "" {
		ev.Name = name
	}
	if ev.PublishedAt.IsZero() {
		ev.PublishedAt = time.Now().UTC()
	}

	w.received.Add(1)
	w.logger.Debug("device event", "core_id", ev.CoreID, "event", ev.Name)

	if w.publisher != nil {
		if err := w.publisher.PublishJSON(mqtt.Topics{}.Event(ev.CoreID, ev.Name), ev); err != nil {
			w.logger.Warn("publishing device event failed", "event", ev.Name, "error", err)
		}
	}
	if w.recorder != nil {
		w.recorder.WriteDeviceEvent(ev.CoreID, ev.Name, ev.Data, ev.PublishedAt)
	}
}
