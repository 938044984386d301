// Package exporter drives the telemetry export pipeline: it receives
// arbitrary-order batches of trace and span events, groups them by owning
// trace, creates traces and spans on the AgentLens backend, and issues
// completion updates for spans that have already ended.
//
// The exporter keeps two bounded, time-expiring identity caches: one
// mapping external trace ids to backend-assigned trace ids, one marking
// external span ids as already exported. Together they make re-exports
// idempotent without any persistence.
//
// Failure isolation is per item: a failed trace creation aborts only its
// own group, a failed span creation skips only that span, and a failed
// batch submission falls back to individual creates. Export never returns
// an error for per-item failures; install Config.OnError for end-to-end
// failure visibility.
//
// Batch-created spans never receive completion updates: the batch
// endpoint reports counts only, so there is no per-span id for an update
// to target.
package exporter
