// Package api implements the HTTP REST API for Sparky Core.
//
// This package provides:
//   - Read endpoints for the device cloud (listing, device detail, variables)
//   - Spark endpoints that render a configured variable or device status
//   - JWT-protected admin endpoints for diagnostics and the response cache
//   - Middleware stack (request ID, logging, recovery, body size limit)
//
// # Architecture
//
// The server sits in front of the device API client. Every device read goes
// through the client's cache, so the ?cache=N query parameter decides whether
// a response may be reused. Client failures are returned as the standard
// error envelope carrying the client's error code.
//
// # Security
//
// Admin routes require an HS256 bearer token signed with security.jwt.secret.
// When no secret is configured the admin routes are not mounted at all.
package api
