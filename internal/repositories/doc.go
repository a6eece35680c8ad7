// Package repositories implements persistence for product counters and batch history.
//
// Key Implementations:
//   - [CounterRepository] : SQLite counters, one row per product code, written with a single UPSERT
//   - [BatchRepository] : SQLite batch history with atomic sequence numbers for stable ordering
//   - [KVCounterStore] : pebble-backed counters using one string-encoded key per product per counter kind
//   - [MemoryCounterStore] : process-local counters for ephemeral runs and tests
//
// The [NextSequence] function increments a per-table sequence counter inside the caller's transaction.
package repositories
