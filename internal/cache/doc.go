// Package cache provides the bounded, time-expiring identity cache the
// exporter uses to remember backend trace ids and already-exported span ids.
//
// Eviction combines two independent predicates:
//   - capacity: inserting into a full cache evicts the least-recently-used
//     entry, where Get, Has and Set all count as use
//   - age: entries older than the TTL are treated as absent on access
//     (lazy expiry, no background sweep)
//
// All operations are total; an absent key yields the zero value. The cache
// is safe for concurrent use.
package cache
