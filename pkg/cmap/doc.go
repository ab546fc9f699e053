// Package cmap provides a concurrent map implementation for CartVault.
//
// This package implements a sharded concurrent map optimized for
// high-throughput cart storage with the following features:
//
//   - Sharding: Configurable shard count for parallelism
//   - Fine-grained Locking: Per-shard RWMutex for minimal contention
//   - Atomic Compute: Read-modify-write (including delete) under one lock
//   - Iteration: Safe iteration while holding read locks
//
// Usage:
//
//	m := cmap.New[string, *Cart]()
//	m.Set("key", cart)
//	val, ok := m.Get("key")
//
// Thread Safety:
//
// All operations are thread-safe. Read operations (Get, Has) use RLock,
// write operations (Set, Delete, Compute) use Lock.
package cmap
