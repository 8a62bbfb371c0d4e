// Package keylock serialises work per key (a guild id) without a global lock.
//
// Keys are spread over a fixed set of shards by FNV hash. Looking up or
// creating a key's entry happens under its shard mutex, so two goroutines
// racing on a brand-new key always share the same entry. Entries are
// reference counted and removed when the last holder or waiter leaves.
package keylock
