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

// TopKPerKey keeps, for each key, up to k values ordered greatest-first
// by less (a < b). It is expressed directly as a CombinePerKey over the
// TopK combiner, reusing its bounded top-k slice accumulator rather than a
// separate executor path.
func TopKPerKey[K Keys, V any](h Handle[KV[K, V]], k int, less func(a, b V) bool, opts ...Options) Handle[KV[K, []V]] {
	o := joinOpts(opts)
	if o.Name == "" {
		o.Name = "TopKPerKey"
	}
	return CombinePerKey[K, V, []V, []V](h, TopK[V](k, less), Name(o.Name))
}
