// Package memory provides the in-memory key-value store for minikv.
//
// The store maps keys to entries that are either plain values or values
// with an absolute expiry instant in Unix milliseconds. Expiry is lazy:
// Get compares the current time with the deadline and reports a miss for
// expired entries, but nothing removes them. An expired entry stays in
// memory until the key is written again.
//
// Thread Safety:
//
// All operations go through pkg/cmap. The default shard count is 1, so a
// single lock guards the whole mapping and every Get or Set is atomic with
// respect to every other. Critical sections cover one map lookup or
// insert.
package memory
