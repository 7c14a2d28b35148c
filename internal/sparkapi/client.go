package sparkapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nerrad567/sparky-core/internal/cache"
	"github.com/nerrad567/sparky-core/internal/diagnostics"
)

// Defaults applied by New.
const (
	DefaultBaseURL        = "https://api.spark.io/v1"
	DefaultRequestTimeout = 10 * time.Second
)

// Failure messages for input and configuration errors.
const (
	msgMissingToken    = "Please provide a Spark Core API Access Token."
	msgMissingDevice   = "A device ID was not provided"
	msgMissingVariable = "A device variable was not provided"
)

// Config is the client configuration, usually built from the spark section
// of config.yaml.
type Config struct {
	// AccessToken is sent as the access_token query parameter. Empty makes
	// every operation fail with CodeMissingToken.
	AccessToken string

	// BaseURL is the API root without trailing slash. Default DefaultBaseURL.
	BaseURL string

	// RequestTimeout bounds each HTTP request. Default DefaultRequestTimeout.
	RequestTimeout time.Duration

	// ScopeVariableCacheByDevice includes the device ID in variable cache keys.
	ScopeVariableCacheByDevice bool
}

// Logger defines the logging interface used by the client.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its Timeout is left as given.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithCache sets the response store. Default is a fresh cache.MemoryStore.
func WithCache(store cache.Store) Option {
	return func(c *Client) {
		if store != nil {
			c.store = store
		}
	}
}

// WithSink sets where failures are reported. Default discards them.
func WithSink(sink diagnostics.Sink) Option {
	return func(c *Client) {
		if sink != nil {
			c.sink = sink
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client talks to the device cloud. It holds no per-call state and is safe
// for concurrent use; concurrent misses for one key may both fetch live.
type Client struct {
	baseURL string
	token   string
	scoped  bool

	http   *http.Client
	store  cache.Store
	sink   diagnostics.Sink
	logger Logger
}

// New creates a client. The access token is read once here.
func New(cfg Config, opts ...Option) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	c := &Client{
		baseURL: baseURL,
		token:   strings.TrimSpace(cfg.AccessToken),
		scoped:  cfg.ScopeVariableCacheByDevice,
		http:    &http.Client{Timeout: timeout},
		sink:    diagnostics.Discard{},
		logger:  noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = cache.NewMemoryStore()
	}
	return c
}

// Configured reports whether an access token is set.
func (c *Client) Configured() bool {
	return c.token != ""
}

// Store returns the response store, for administrative purges.
func (c *Client) Store() cache.Store {
	return c.store
}

// ListDevices returns every device on the account.
//
// Parameters:
//   - ctx: Bounds the HTTP request
//   - cacheSeconds: Time to keep a successful response; <= 0 fetches live
//
// Returns:
//   - Result[DeviceList]: the listing or a failure
func (c *Client) ListDevices(ctx context.Context, cacheSeconds int) Result[DeviceList] {
	if err := c.checkToken(); err != nil {
		return failed[DeviceList](err)
	}
	return fetch[DeviceList](ctx, c, keyDevices, []string{"devices"}, cacheSeconds)
}

// GetDevice returns a single device with its variables and functions.
// An empty deviceID fails with CodeMissingDevice without any request.
func (c *Client) GetDevice(ctx context.Context, deviceID string, cacheSeconds int) Result[Device] {
	if deviceID == "" {
		return failed[Device](c.fail(CodeMissingDevice, msgMissingDevice))
	}
	if err := c.checkToken(); err != nil {
		return failed[Device](err)
	}
	return fetch[Device](ctx, c, deviceKey(deviceID), []string{"devices", deviceID}, cacheSeconds)
}

// GetVariable reads one variable from a device.
//
// Unless Config.ScopeVariableCacheByDevice is set the cache key ignores
// deviceID: a cached value for "temperature" on one device is returned for
// "temperature" on any other device until it expires.
//
// Parameters:
//   - ctx: Bounds the HTTP request
//   - deviceID: Device to read from (required)
//   - variable: Variable name (required)
//   - cacheSeconds: Time to keep a successful response; <= 0 fetches live
//
// Returns:
//   - Result[VariableValue]: the value or a failure
func (c *Client) GetVariable(ctx context.Context, deviceID, variable string, cacheSeconds int) Result[VariableValue] {
	if deviceID == "" {
		return failed[VariableValue](c.fail(CodeMissingDevice, msgMissingDevice))
	}
	if variable == "" {
		return failed[VariableValue](c.fail(CodeMissingVariable, msgMissingVariable))
	}
	if err := c.checkToken(); err != nil {
		return failed[VariableValue](err)
	}
	return fetch[VariableValue](ctx, c, variableKey(deviceID, variable, c.scoped),
		[]string{"devices", deviceID, variable}, cacheSeconds)
}

func (c *Client) checkToken() *Error {
	if c.token == "" {
		return c.fail(CodeMissingToken, msgMissingToken)
	}
	return nil
}

// fail reports the failure to the sink and returns it.
func (c *Client) fail(code, message string) *Error {
	c.sink.Report(code, message)
	return &Error{Code: code, Message: message}
}

// endpoint builds {base}/{segments...}?access_token={token}.
func (c *Client) endpoint(segments []string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	q := url.Values{"access_token": {c.token}}
	return c.baseURL + "/" + strings.Join(escaped, "/") + "?" + q.Encode()
}
