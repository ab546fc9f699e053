// Package cmap provides a concurrent map implementation for CartVault.
package cmap

// Range iterates over all key-value pairs.
//
// The callback returns false to stop iteration.
// Note: This acquires locks shard by shard, so the view may not be consistent.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for _, shard := range m.shards {
		shard.mu.RLock()
		for k, v := range shard.items {
			if !fn(k, v) {
				shard.mu.RUnlock()
				return
			}
		}
		shard.mu.RUnlock()
	}
}

// RangeWithLimit iterates over at most limit key-value pairs.
//
// Locks are taken and released one shard at a time so a bounded scan
// never holds the whole map. Returns the number of pairs visited and
// whether iteration stopped at the limit with a pair still pending.
func (m *Map[K, V]) RangeWithLimit(limit int, fn func(key K, value V) bool) (int, bool) {
	count := 0
	for _, shard := range m.shards {
		shard.mu.RLock()
		for k, v := range shard.items {
			if count >= limit {
				shard.mu.RUnlock()
				return count, true
			}
			count++
			if !fn(k, v) {
				shard.mu.RUnlock()
				return count, false
			}
		}
		shard.mu.RUnlock()
	}
	return count, false
}

// Keys returns all keys.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0, m.Count())
	m.Range(func(key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}
