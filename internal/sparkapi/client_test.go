package sparkapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nerrad567/sparky-core/internal/cache"
	"github.com/nerrad567/sparky-core/internal/diagnostics"
)

const testToken = "test-token-123"

// fakeClock is a manually advanced clock shared with the cache store.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeCloud serves the three device cloud routes and counts requests.
// Every variable read returns an incrementing value so a live fetch is
// distinguishable from a cached one.
type fakeCloud struct {
	*httptest.Server
	requests atomic.Int32
	reads    atomic.Int32
}

func newFakeCloud(t *testing.T) *fakeCloud {
	t.Helper()

	fc := &fakeCloud{}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/devices", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[
			{"id":"core-a","name":"garage","last_app":null,"last_heard":"2026-10-18T10:00:00.000Z","connected":true},
			{"id":"core-b","name":"garden","connected":false}
		]`)
	})
	mux.HandleFunc("GET /v1/devices/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":"Permission Denied","error_description":"Permission Denied"}`)
			return
		}
		fmt.Fprintf(w, `{"id":%q,"name":"garage","connected":true,"variables":{"temperature":"double"},"functions":["led"],"cc3000_patch_version":"1.29"}`,
			r.PathValue("id"))
	})
	mux.HandleFunc("GET /v1/devices/{id}/{variable}", func(w http.ResponseWriter, r *http.Request) {
		n := fc.reads.Add(1)
		fmt.Fprintf(w, `{"cmd":"VarReturn","name":%q,"result":%d,"coreInfo":{"deviceID":%q,"connected":true}}`,
			r.PathValue("variable"), 20+n, r.PathValue("id"))
	})

	fc.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fc.requests.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(fc.Close)

	return fc
}

// newTestClient wires a client to fc with a fake clock and a collector.
func newTestClient(fc *fakeCloud, cfg Config) (*Client, *fakeClock, *diagnostics.Collector) {
	clock := &fakeClock{now: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}
	collector := diagnostics.NewCollector(10)

	if cfg.BaseURL == "" {
		cfg.BaseURL = fc.URL + "/v1"
	}
	client := New(cfg,
		WithCache(cache.NewMemoryStore(cache.WithClock(clock.Now))),
		WithSink(collector),
	)
	return client, clock, collector
}

func TestListDevices_CacheWindow(t *testing.T) {
	fc := newFakeCloud(t)
	client, clock, _ := newTestClient(fc, Config{AccessToken: testToken})
	ctx := context.Background()

	first := client.ListDevices(ctx, 60)
	if !first.OK() {
		t.Fatalf("ListDevices() error = %v", first.Err)
	}
	if first.Cached {
		t.Error("first call reported Cached")
	}

	second := client.ListDevices(ctx, 60)
	if !second.Cached {
		t.Error("second call within window was not served from cache")
	}
	if got := fc.requests.Load(); got != 1 {
		t.Errorf("requests within 60s = %d, want 1", got)
	}
	if diff := cmp.Diff(first.Value, second.Value); diff != "" {
		t.Errorf("cached payload differs (-first +second):\n%s", diff)
	}
	if string(first.Raw) != string(second.Raw) {
		t.Error("cached raw payload differs from the original")
	}

	clock.Advance(61 * time.Second)

	third := client.ListDevices(ctx, 60)
	if third.Cached {
		t.Error("call after expiry was served from cache")
	}
	if got := fc.requests.Load(); got != 2 {
		t.Errorf("requests after 61s = %d, want 2", got)
	}
}

func TestListDevices_Decodes(t *testing.T) {
	fc := newFakeCloud(t)
	client, _, _ := newTestClient(fc, Config{AccessToken: testToken})

	res := client.ListDevices(context.Background(), 0)
	if !res.OK() {
		t.Fatalf("ListDevices() error = %v", res.Err)
	}

	want := DeviceList{
		{ID: "core-a", Name: "garage", LastHeard: "2026-10-18T10:00:00.000Z", Connected: true},
		{ID: "core-b", Name: "garden"},
	}
	if diff := cmp.Diff(want, res.Value); diff != "" {
		t.Errorf("ListDevices() mismatch (-want +got):\n%s", diff)
	}

	if d, ok := res.Value.Find("core-b"); !ok || d.Connected {
		t.Errorf("Find(core-b) = %+v, %v", d, ok)
	}
	if _, ok := res.Value.Find("core-z"); ok {
		t.Error("Find(core-z) found a device")
	}
}

func TestZeroDurationAlwaysFetches(t *testing.T) {
	fc := newFakeCloud(t)
	store := cache.NewMemoryStore()
	client := New(Config{AccessToken: testToken, BaseURL: fc.URL + "/v1"}, WithCache(store))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if res := client.GetVariable(ctx, "core-a", "temperature", 0); res.Cached || !res.OK() {
			t.Fatalf("call %d: Cached = %v, Err = %v", i, res.Cached, res.Err)
		}
	}
	client.GetDevice(ctx, "core-a", -5)
	client.ListDevices(ctx, 0)

	if got := fc.requests.Load(); got != 5 {
		t.Errorf("requests = %d, want 5", got)
	}
	if store.Len() != 0 {
		t.Errorf("store holds %d entries, want 0", store.Len())
	}
}

func TestGetVariable_NewValueAfterExpiry(t *testing.T) {
	fc := newFakeCloud(t)
	client, clock, _ := newTestClient(fc, Config{AccessToken: testToken})
	ctx := context.Background()

	first := client.GetVariable(ctx, "core-a", "temperature", 30)
	cached := client.GetVariable(ctx, "core-a", "temperature", 30)
	clock.Advance(30 * time.Second)
	fresh := client.GetVariable(ctx, "core-a", "temperature", 30)

	if first.Value.Result != cached.Value.Result {
		t.Errorf("cached Result = %v, want %v", cached.Value.Result, first.Value.Result)
	}
	if fresh.Cached || fresh.Value.Result == first.Value.Result {
		t.Errorf("after expiry got Cached=%v Result=%v, want a live new value", fresh.Cached, fresh.Value.Result)
	}
	if fresh.Value.Name != "temperature" || fresh.Value.CoreInfo.DeviceID != "core-a" {
		t.Errorf("decoded value = %+v", fresh.Value)
	}
}

func TestGetVariable_SharedNameCollision(t *testing.T) {
	fc := newFakeCloud(t)
	client, _, _ := newTestClient(fc, Config{AccessToken: testToken})
	ctx := context.Background()

	a := client.GetVariable(ctx, "core-a", "temperature", 300)
	b := client.GetVariable(ctx, "core-b", "temperature", 300)

	if got := fc.requests.Load(); got != 1 {
		t.Errorf("requests = %d, want 1 (second device served from shared entry)", got)
	}
	if !b.Cached {
		t.Error("second device's read was not a cache hit")
	}
	if b.Value.CoreInfo.DeviceID != "core-a" || b.Value.Result != a.Value.Result {
		t.Errorf("second device got %+v, want the first device's cached value", b.Value)
	}
}

func TestGetVariable_ScopedByDevice(t *testing.T) {
	fc := newFakeCloud(t)
	client, _, _ := newTestClient(fc, Config{AccessToken: testToken, ScopeVariableCacheByDevice: true})
	ctx := context.Background()

	client.GetVariable(ctx, "core-a", "temperature", 300)
	b := client.GetVariable(ctx, "core-b", "temperature", 300)
	again := client.GetVariable(ctx, "core-b", "temperature", 300)

	if got := fc.requests.Load(); got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}
	if b.Cached || b.Value.CoreInfo.DeviceID != "core-b" {
		t.Errorf("second device got Cached=%v %+v, want its own live value", b.Cached, b.Value)
	}
	if !again.Cached {
		t.Error("repeat read for core-b was not cached")
	}
}

func TestMissingInputs(t *testing.T) {
	fc := newFakeCloud(t)
	client, _, collector := newTestClient(fc, Config{AccessToken: testToken})
	ctx := context.Background()

	tests := []struct {
		name     string
		err      *Error
		wantCode string
		wantMsg  string
	}{
		{"device without id", client.GetDevice(ctx, "", 60).Err, CodeMissingDevice, msgMissingDevice},
		{"variable without device", client.GetVariable(ctx, "", "temperature", 60).Err, CodeMissingDevice, msgMissingDevice},
		{"variable without name", client.GetVariable(ctx, "device1", "", 60).Err, CodeMissingVariable, msgMissingVariable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatal("expected failure Result")
			}
			if tt.err.Code != tt.wantCode || tt.err.Message != tt.wantMsg {
				t.Errorf("Err = %+v, want %s / %s", tt.err, tt.wantCode, tt.wantMsg)
			}
		})
	}

	if got := fc.requests.Load(); got != 0 {
		t.Errorf("requests = %d, want 0", got)
	}
	if got := len(collector.Reports()); got != 3 {
		t.Errorf("sink received %d reports, want 3", got)
	}
}

func TestMissingToken(t *testing.T) {
	fc := newFakeCloud(t)
	client, _, collector := newTestClient(fc, Config{AccessToken: "   "})
	ctx := context.Background()

	if client.Configured() {
		t.Error("Configured() = true for a blank token")
	}

	results := []*Error{
		client.ListDevices(ctx, 60).Err,
		client.GetDevice(ctx, "core-a", 60).Err,
		client.GetVariable(ctx, "core-a", "temperature", 60).Err,
	}
	for i, err := range results {
		if err == nil || err.Code != CodeMissingToken {
			t.Errorf("call %d: Err = %v, want missing_token", i, err)
		}
	}

	if got := fc.requests.Load(); got != 0 {
		t.Errorf("requests = %d, want 0", got)
	}
	if got := collector.Total(); got != 3 {
		t.Errorf("sink received %d reports, want 3", got)
	}
}

func TestHTTPErrorDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant","error_description":"invalid token"}`)
	}))
	defer srv.Close()

	collector := diagnostics.NewCollector(10)
	store := cache.NewMemoryStore()
	client := New(Config{AccessToken: "bad", BaseURL: srv.URL}, WithSink(collector), WithCache(store))

	res := client.ListDevices(context.Background(), 60)
	if res.Err == nil {
		t.Fatal("expected failure Result")
	}
	if res.Err.Code != CodeHTTP || res.Err.Message != "invalid token" {
		t.Errorf("Err = %+v, want http_error / invalid token", res.Err)
	}
	if store.Len() != 0 {
		t.Error("failure was cached")
	}

	reports := collector.Reports()
	if len(reports) != 1 || reports[0].Code != CodeHTTP || reports[0].Message != "invalid token" {
		t.Errorf("reports = %+v", reports)
	}
}

func TestFailuresAreNotCached(t *testing.T) {
	fc := newFakeCloud(t)
	client, _, _ := newTestClient(fc, Config{AccessToken: testToken})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res := client.GetDevice(ctx, "missing", 600)
		if res.Err == nil || res.Err.Message != "Permission Denied" {
			t.Fatalf("call %d: Err = %v", i, res.Err)
		}
	}
	if got := fc.requests.Load(); got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}
}

func TestHTTPErrorFallbackMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>Bad Gateway</html>"},
		{"no description", `{"error":"oops"}`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			res := New(Config{AccessToken: testToken, BaseURL: srv.URL}).GetDevice(context.Background(), "core-a", 0)
			if res.Err == nil || res.Err.Code != CodeHTTP {
				t.Fatalf("Err = %v, want http_error", res.Err)
			}
			if res.Err.Message != "request failed with status 502" {
				t.Errorf("Message = %q", res.Err.Message)
			}
		})
	}
}

func TestMalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"id":`},
		{"wrong shape", `{"id":"core-a"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			store := cache.NewMemoryStore()
			client := New(Config{AccessToken: testToken, BaseURL: srv.URL}, WithCache(store))

			// ListDevices expects an array, so an object is the wrong shape.
			res := client.ListDevices(context.Background(), 60)
			if res.Err == nil || res.Err.Code != CodeHTTP {
				t.Fatalf("Err = %v, want http_error", res.Err)
			}
			if !strings.HasPrefix(res.Err.Message, "malformed response body") {
				t.Errorf("Message = %q", res.Err.Message)
			}
			if store.Len() != 0 {
				t.Error("malformed body was cached")
			}
		})
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	collector := diagnostics.NewCollector(10)
	res := New(Config{AccessToken: testToken, BaseURL: base}, WithSink(collector)).ListDevices(context.Background(), 60)

	if res.Err == nil || res.Err.Code != CodeTransport {
		t.Fatalf("Err = %v, want transport_error", res.Err)
	}
	if strings.Contains(res.Err.Message, testToken) {
		t.Errorf("transport message leaks the access token: %q", res.Err.Message)
	}
	if collector.Total() != 1 {
		t.Errorf("sink received %d reports, want 1", collector.Total())
	}
}

func TestRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := New(Config{AccessToken: testToken, BaseURL: srv.URL, RequestTimeout: 50 * time.Millisecond})
	res := client.ListDevices(context.Background(), 0)

	if res.Err == nil || res.Err.Code != CodeTransport {
		t.Errorf("Err = %v, want transport_error", res.Err)
	}
}

func TestRequestShape(t *testing.T) {
	var gotPath, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotToken = r.URL.Query().Get("access_token")
		fmt.Fprint(w, `{"name":"x","result":1,"coreInfo":{}}`)
	}))
	defer srv.Close()

	client := New(Config{AccessToken: "tok&en", BaseURL: srv.URL + "/v1/"})
	client.GetVariable(context.Background(), "core a", "temp/out", 0)

	if gotPath != "/v1/devices/core%20a/temp%2Fout" {
		t.Errorf("path = %q", gotPath)
	}
	if gotToken != "tok&en" {
		t.Errorf("access_token = %q", gotToken)
	}
}

func TestCacheHitDoesNotReport(t *testing.T) {
	fc := newFakeCloud(t)
	client, _, collector := newTestClient(fc, Config{AccessToken: testToken})
	ctx := context.Background()

	client.GetDevice(ctx, "core-a", 60)
	res := client.GetDevice(ctx, "core-a", 60)

	if !res.Cached || res.Value.Variables["temperature"] != "double" {
		t.Errorf("cached device = %+v", res)
	}
	if collector.Total() != 0 {
		t.Errorf("sink received %d reports, want 0", collector.Total())
	}
}

// brokenStore fails every operation.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk on fire")
}

func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("disk on fire")
}

func (brokenStore) Purge(context.Context) error { return nil }

func TestStoreErrorsDegradeToLiveFetch(t *testing.T) {
	fc := newFakeCloud(t)
	client := New(Config{AccessToken: testToken, BaseURL: fc.URL + "/v1"}, WithCache(brokenStore{}))

	for i := 0; i < 2; i++ {
		res := client.ListDevices(context.Background(), 60)
		if !res.OK() || res.Cached {
			t.Fatalf("call %d: Err = %v, Cached = %v", i, res.Err, res.Cached)
		}
	}
	if got := fc.requests.Load(); got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}
}

func TestNewDefaults(t *testing.T) {
	client := New(Config{AccessToken: testToken})

	if client.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", client.baseURL, DefaultBaseURL)
	}
	if client.http.Timeout != DefaultRequestTimeout {
		t.Errorf("timeout = %v, want %v", client.http.Timeout, DefaultRequestTimeout)
	}
	if client.Store() == nil {
		t.Error("Store() = nil, want default memory store")
	}
	if !client.Configured() {
		t.Error("Configured() = false with a token")
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{Code: CodeHTTP, Message: "invalid token"}
	if err.Error() != "http_error: invalid token" {
		t.Errorf("Error() = %q", err.Error())
	}
}
