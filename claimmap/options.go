package claimmap

import "hash/maphash"

// Option is a functional option for configuring a Map at construction.
type Option[K comparable] func(*config[K])

type config[K comparable] struct {
	hasher func(K) uint64
}

func defaultConfig[K comparable]() *config[K] {
	seed := maphash.MakeSeed()
	return &config[K]{
		hasher: func(k K) uint64 {
			return maphash.Comparable(seed, k)
		},
	}
}

// WithHasher overrides the hash function used to pick a key's probe origin.
// The default is hash/maphash with a per-map random seed, which is fine for
// general use; callers with a cheap domain-specific encoding of K (packed
// integer ids, fixed-width tuples) can supply a faster or deterministic
// hasher. The function must be safe for concurrent use.
func WithHasher[K comparable](hash func(K) uint64) Option[K] {
	return func(c *config[K]) {
		c.hasher = hash
	}
}
