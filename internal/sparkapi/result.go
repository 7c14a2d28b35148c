package sparkapi

import "encoding/json"

// Error codes carried by a failed Result.
const (
	// CodeMissingToken means no access token is configured. Permanent until
	// the configuration changes.
	CodeMissingToken = "missing_token"

	// CodeMissingDevice means the caller passed an empty device ID.
	CodeMissingDevice = "missing_device"

	// CodeMissingVariable means the caller passed an empty variable name.
	CodeMissingVariable = "missing_variable"

	// CodeTransport means the request never produced an HTTP response.
	CodeTransport = "transport_error"

	// CodeHTTP means a non-200 status or an undecodable response body.
	CodeHTTP = "http_error"
)

// Error is a failure returned inside a Result.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// Result is the outcome of a client operation. Err is nil on success.
type Result[T any] struct {
	// Value is the decoded payload.
	Value T

	// Raw is the payload exactly as received from the cloud (or the cache).
	Raw json.RawMessage

	// Cached is true when the payload came from the store.
	Cached bool

	Err *Error
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

func failed[T any](err *Error) Result[T] {
	return Result[T]{Err: err}
}
