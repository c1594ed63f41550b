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

package ironbeam

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/nhubbard/ironbeam/internal/hash"
)

// Keys is the constraint on types usable as the K half of a KV: they must
// be comparable (usable as a native Go map key) so the engine can group
// and merge by key without a bespoke equality function.
type Keys interface {
	comparable
}

// KV is a key/value pair, the element type produced by [KeyBy] and
// consumed by every keyed operator (group_by_key, combine_per_key,
// top_k_per_key, the join family).
type KV[K Keys, V any] struct {
	Key   K
	Value V
}

func (kv KV[K, V]) String() string {
	return fmt.Sprintf("(%v, %v)", kv.Key, kv.Value)
}

// Window is a half-open time interval [Start, End) with nanosecond
// resolution.
type Window struct {
	Start, End time.Time
}

// Contains reports whether t falls within the half-open interval.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339Nano), w.End.Format(time.RFC3339Nano))
}

// Windowed pairs a value with the window it was assigned to.
type Windowed[V any] struct {
	Window Window
	Value  V
}

// keyBytes returns a canonical, deterministic encoding of a key used for
// seeded hash partitioning and as a tie-break ordering when the caller
// does not supply one. Unlike a wire-format coder registry meant for
// cross-process serialization, this only needs to be stable within one
// process and one Go type, so a formatted representation is sufficient;
// see DESIGN.md.
func keyBytes[K Keys](k K) []byte {
	return fmt.Appendf(nil, "%#v", k)
}

// sortKeysDeterministic orders keys lexicographically by their
// keyBytes encoding, the tie-break the parallel strategy uses to make
// per-bucket output order reproducible.
func sortKeysDeterministic[K Keys](keys []K) {
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keyBytes(keys[i]), keyBytes(keys[j])) < 0
	})
}

// sortKeysByHash orders keys by their seeded hash.Order value, the "hash
// order" in which the sequential strategy's group-by-key, combine-per-key
// and joins emit keys; the parallel strategy emits (bucket, key) order via
// sortKeysDeterministic instead. keyBytes lexicographic order breaks ties
// between the (astronomically unlikely) colliding hashes.
func sortKeysByHash[K Keys](seed uint64, keys []K) {
	sort.Slice(keys, func(i, j int) bool {
		hi, hj := hash.Order(seed, keyBytes(keys[i])), hash.Order(seed, keyBytes(keys[j]))
		if hi != hj {
			return hi < hj
		}
		return bytes.Compare(keyBytes(keys[i]), keyBytes(keys[j])) < 0
	})
}
