package testutil

import (
	"fmt"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Int63n returns a non-negative pseudo-random int64 in [0,n).
func (r *RNG) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int63n(n)
}

// Fill fills dst with pseudo-random bytes.
// Locks only once per call.
func (r *RNG) Fill(dst []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.rand.Read(dst)
}

// Bytes returns n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	b := make([]byte, n)
	r.Fill(b)
	return b
}

// Payloads returns count payloads with sizes in [0, maxSize], always
// including the empty payload and one of exactly maxSize bytes.
func (r *RNG) Payloads(count, maxSize int) [][]byte {
	out := make([][]byte, 0, count)
	if count > 0 {
		out = append(out, []byte{})
	}
	if count > 1 {
		out = append(out, r.Bytes(maxSize))
	}
	for len(out) < count {
		out = append(out, r.Bytes(r.Intn(maxSize+1)))
	}
	return out
}

// Keys returns n distinct object keys below prefix, spread over depth levels
// of directories, e.g. "prefix/d0/d1/obj-0003.bin".
func (r *RNG) Keys(prefix string, n, depth int) []string {
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		key := prefix
		levels := r.Intn(depth + 1)
		for d := 0; d < levels; d++ {
			key += fmt.Sprintf("d%d/", r.Intn(3))
		}
		keys = append(keys, fmt.Sprintf("%sobj-%04d.bin", key, i))
	}
	return keys
}
