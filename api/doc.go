// Package api implements the typed REST client for the AgentLens backend.
//
// The client composes a retryable HTTP transport under a resty client,
// an outbound rate limiter, and a circuit breaker: transient failures are
// retried with backoff, a persistently failing backend trips the breaker
// and calls fail fast until the cooldown elapses. Every request carries a
// correlation id; individual span creates additionally carry an
// idempotency key so a retried create never duplicates a remote record.
//
// Batch bodies above a size threshold are gzip-compressed.
//
// Non-2xx responses surface as *APIError. Timeout and retry policy live
// here; callers higher in the pipeline treat the client as one logical
// attempt.
package api
