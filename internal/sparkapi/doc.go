// Package sparkapi is a client for the Spark Core device cloud.
//
// It issues GET requests for the device listing, a single device and a single
// device variable, keeps successful responses in a cache.Store for a
// caller-chosen number of seconds, and returns every outcome as a Result.
// Operations never return a Go error: a failure is a *Error with one of the
// Code* constants, and is also reported to the configured diagnostics.Sink.
//
// Caching:
//   - cacheSeconds <= 0 always fetches live and never touches the store
//   - a hit returns the stored payload unchanged with Cached set
//   - only successful fetches are stored, so failures retry immediately
//
// Variable cache keys are derived from the variable name alone, so two
// devices exposing a variable of the same name share one entry. Set
// Config.ScopeVariableCacheByDevice to key variables per device instead.
//
// Usage:
//
//	client := sparkapi.New(sparkapi.Config{AccessToken: token},
//	    sparkapi.WithCache(cache.NewMemoryStore()),
//	    sparkapi.WithSink(collector),
//	)
//
//	res := client.GetVariable(ctx, "53ff6f065067544840551187", "temperature", 60)
//	if res.Err != nil {
//	    return res.Err.Message
//	}
package sparkapi
