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

// KeyBy and MapValues are both plain element-wise transforms: they reuse
// Map (and so edgeMap's machinery) by calling it with the right function
// shape rather than duplicating the builder logic.

// KeyBy derives a key for every element, producing a Handle of KV pairs
// consumable by GroupByKey, CombinePerKey, TopKPerKey and the join family.
func KeyBy[T any, K Keys](h Handle[T], kf func(T) K, opts ...Options) Handle[KV[K, T]] {
	o := joinOpts(opts)
	if o.Name == "" {
		o.Name = "KeyBy"
	}
	return Map(h, func(v T) KV[K, T] { return KV[K, T]{Key: kf(v), Value: v} }, Name(o.Name))
}

// MapValues transforms only the value half of a KV stream, leaving keys
// untouched; grounded on the same lightweight.go Map pattern as KeyBy.
func MapValues[K Keys, V, U any](h Handle[KV[K, V]], fn func(V) U, opts ...Options) Handle[KV[K, U]] {
	o := joinOpts(opts)
	if o.Name == "" {
		o.Name = "MapValues"
	}
	return Map(h, func(kv KV[K, V]) KV[K, U] {
		return KV[K, U]{Key: kv.Key, Value: fn(kv.Value)}
	}, Name(o.Name))
}
