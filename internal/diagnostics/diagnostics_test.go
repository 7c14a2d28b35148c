package diagnostics

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

type fakePublisher struct {
	topics   []string
	payloads []any
	err      error
}

func (p *fakePublisher) PublishJSON(topic string, v any) error {
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, v)
	return p.err
}

func TestCollector_KeepsMostRecent(t *testing.T) {
	c := NewCollector(3)
	for i := 1; i <= 5; i++ {
		c.Report("http_error", fmt.Sprintf("failure %d", i))
	}

	got := c.Reports()
	want := []Report{
		{Code: "http_error", Message: "failure 3"},
		{Code: "http_error", Message: "failure 4"},
		{Code: "http_error", Message: "failure 5"},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Report{}, "At")); diff != "" {
		t.Errorf("Reports() mismatch (-want +got):\n%s", diff)
	}
	if c.Total() != 5 {
		t.Errorf("Total() = %d, want 5", c.Total())
	}
}

func TestCollector_Timestamps(t *testing.T) {
	fixed := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	c := NewCollector(0)
	c.now = func() time.Time { return fixed }

	c.Report("missing_token", "no token")

	if got := c.Reports()[0].At; !got.Equal(fixed) {
		t.Errorf("At = %v, want %v", got, fixed)
	}
	if c.limit != DefaultCapacity {
		t.Errorf("limit = %d, want %d", c.limit, DefaultCapacity)
	}
}

func TestCollector_ReportsIsACopy(t *testing.T) {
	c := NewCollector(2)
	c.Report("a", "1")

	got := c.Reports()
	got[0].Code = "changed"

	if c.Reports()[0].Code != "a" {
		t.Error("mutating Reports() result changed the collector")
	}
}

func TestCollector_Reset(t *testing.T) {
	c := NewCollector(2)
	c.Report("a", "1")
	c.Reset()

	if len(c.Reports()) != 0 || c.Total() != 0 {
		t.Errorf("after Reset: %d reports, total %d", len(c.Reports()), c.Total())
	}
}

func TestCollector_Concurrent(t *testing.T) {
	c := NewCollector(50)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				c.Report("transport_error", "timeout")
			}
		}()
	}
	wg.Wait()

	if c.Total() != 200 || len(c.Reports()) != 50 {
		t.Errorf("Total() = %d, len = %d; want 200, 50", c.Total(), len(c.Reports()))
	}
}

func TestMulti(t *testing.T) {
	a, b := NewCollector(1), NewCollector(1)
	Multi{a, nil, b, Discard{}}.Report("missing_device", "device id is required")

	for name, c := range map[string]*Collector{"a": a, "b": b} {
		if c.Total() != 1 {
			t.Errorf("sink %s received %d reports, want 1", name, c.Total())
		}
	}
}

func TestLogSink(t *testing.T) {
	logger := &recordingLogger{}
	NewLogSink(logger).Report("http_error", "invalid token")

	if len(logger.warns) != 1 {
		t.Fatalf("got %d warnings, want 1", len(logger.warns))
	}
}

func TestMQTTSink(t *testing.T) {
	pub := &fakePublisher{}
	NewMQTTSink(pub, "site-001", nil).Report("http_error", "invalid token")

	if len(pub.topics) != 1 || pub.topics[0] != "sparky/diagnostics/http_error" {
		t.Fatalf("topics = %v", pub.topics)
	}
	payload, ok := pub.payloads[0].(mqttReport)
	if !ok {
		t.Fatalf("payload type = %T", pub.payloads[0])
	}
	if payload.Code != "http_error" || payload.Message != "invalid token" || payload.SiteID != "site-001" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestMQTTSink_PublishErrorLogged(t *testing.T) {
	pub := &fakePublisher{err: errors.New("not connected")}
	logger := &recordingLogger{}

	NewMQTTSink(pub, "", logger).Report("transport_error", "dial tcp: refused")

	if len(logger.warns) != 1 {
		t.Errorf("got %d warnings, want 1", len(logger.warns))
	}
}
