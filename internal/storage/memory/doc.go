// Package memory provides the in-memory cart store for CartVault.
//
// It implements the TTL-governed cart store using a sharded concurrent
// map. Expiry is enforced twice:
//
//   - Lazily, on every access: Get and Update check the record's
//     expiry under the shard lock and delete expired records before
//     reporting absence. This is the sole authority for correctness.
//   - By a bounded background sweep: a periodic hygiene pass that
//     scans at most a configured number of entries within a wall-clock
//     budget per run. A truncated run defers the remainder to the next
//     run; expired entries stay invisible to readers either way.
//
// Every successful access refreshes the record's expiry to now+ttl.
//
// Thread Safety:
//
// All operations on the same cart ID are mutually exclusive through
// the shard lock; different IDs proceed concurrently. The store hands
// out clones only, never references to stored records.
package memory
