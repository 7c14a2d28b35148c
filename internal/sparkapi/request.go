package sparkapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 1 << 20

// fetch serves key from the store when cacheSeconds > 0, otherwise (or on a
// miss) requests the path live and writes successful responses through.
func fetch[T any](ctx context.Context, c *Client, key string, segments []string, cacheSeconds int) Result[T] {
	ttl := time.Duration(cacheSeconds) * time.Second

	if ttl > 0 {
		if res, ok := fromCache[T](ctx, c, key); ok {
			return res
		}
	}

	raw, failure := c.request(ctx, segments)
	if failure != nil {
		return failed[T](failure)
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return failed[T](c.fail(CodeHTTP, "malformed response body: "+err.Error()))
	}

	if ttl > 0 {
		if err := c.store.Set(ctx, key, raw, ttl); err != nil {
			c.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}

	return Result[T]{Value: v, Raw: raw}
}

// fromCache returns a decoded hit. Store errors and undecodable entries are
// logged and treated as misses.
func fromCache[T any](ctx context.Context, c *Client, key string) (Result[T], bool) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
		return Result[T]{}, false
	}
	if !ok {
		return Result[T]{}, false
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		c.logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
		return Result[T]{}, false
	}

	c.logger.Debug("cache hit", "key", key)
	return Result[T]{Value: v, Raw: raw, Cached: true}, true
}

// errorBody is the error shape returned by the device cloud.
type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// request performs the GET and returns the raw 200 body.
func (c *Client) request(ctx context.Context, segments []string) (json.RawMessage, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(segments), nil)
	if err != nil {
		return nil, c.fail(CodeTransport, err.Error())
	}
	req.Header.Set("Accept", "application/json")

	path := "/" + strings.Join(segments, "/")
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(CodeTransport, transportMessage(err))
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.fail(CodeTransport, fmt.Sprintf("reading response body: %v", transportMessage(err)))
	}

	c.logger.Debug("device cloud request",
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, c.fail(CodeHTTP, statusMessage(resp.StatusCode, body))
	}

	if !json.Valid(body) {
		return nil, c.fail(CodeHTTP, "malformed response body: invalid JSON")
	}

	return json.RawMessage(body), nil
}

// statusMessage extracts error_description from a non-200 body.
func statusMessage(status int, body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Description != "" {
		return eb.Description
	}
	return fmt.Sprintf("request failed with status %d", status)
}

// transportMessage strips the request URL, which carries the access token,
// from net/http errors.
func transportMessage(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err.Error()
	}
	return err.Error()
}
