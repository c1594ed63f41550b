// Copyright 2026 The Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package hash assigns keyed elements to partitions during a shuffle,
// grounded on partition_tree.go's keyfn-bytes-then-xxhash.Sum64 pattern.
package hash

import "github.com/cespare/xxhash/v2"

// Bucket hashes key (seeded, so a fixed seed makes the assignment
// reproducible across runs) and returns the output partition index in
// [0, buckets).
func Bucket(seed uint64, key []byte, buckets int) int {
	if buckets <= 0 {
		buckets = 1
	}
	return int(Order(seed, key) % uint64(buckets))
}

// Order returns the full 64-bit seeded hash of key, used to put keyed
// groups into a deterministic "hash order" independent of partition
// count, the order group-by-key and the operators built on it emit in.
func Order(seed uint64, key []byte) uint64 {
	h := xxhash.New()
	var seedBuf [8]byte
	for i := range seedBuf {
		seedBuf[i] = byte(seed >> (8 * i))
	}
	_, _ = h.Write(seedBuf[:])
	_, _ = h.Write(key)
	return h.Sum64()
}
