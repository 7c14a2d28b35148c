// Package cache stores device cloud responses with a time-to-live.
//
// Two Store implementations are provided:
//   - MemoryStore: a mutex-guarded map, lost on restart
//   - SQLiteStore: the response_cache table, so cached payloads survive a
//     restart instead of triggering a burst of live fetches
//
// An entry is never returned at or after its expiry instant. Writes replace
// whole entries, so readers never see a partial update.
package cache
