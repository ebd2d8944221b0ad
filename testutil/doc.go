// Package testutil provides testing utilities for fileio.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic, thread-safe random source for object
// payloads and key layouts.
//
//	rng := testutil.NewRNG(seed)
//	data := rng.Bytes(1 << 20)
//	keys := rng.Keys("warehouse/", 100, 3)
package testutil
