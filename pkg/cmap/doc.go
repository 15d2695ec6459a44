// Package cmap provides a lock-guarded generic map keyed by strings.
//
// Keys are spread over a power-of-two number of shards, each guarded by
// its own RWMutex. With a single shard the whole map sits behind one
// coarse lock, which is how minikv's store runs by default.
//
// Usage:
//
//	m := cmap.NewWithShards[string, Entry](1)
//	prev, existed := m.Swap("key", entry)
//	val, ok := m.Get("key")
//
// Thread Safety:
//
// All operations are safe for concurrent use. Get and Count take read
// locks; Set and Swap take write locks. No lock is held once a method
// returns.
package cmap
