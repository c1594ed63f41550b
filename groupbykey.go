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

import "github.com/nhubbard/ironbeam/internal/hash"

// edgeGroupByKey is the shuffle at the heart of the keyed API. The other
// keyed operators (CombinePerKey, TopKPerKey through it, the join family)
// keep their own per-key state rather than building on this edge; in the
// parallel strategy they share its reshuffle step.
type edgeGroupByKey[K Keys, V any] struct {
	idx edgeIndex
	nm  string
	in  nodeIndex
	out nodeIndex
}

func (e *edgeGroupByKey[K, V]) edgeID() edgeIndex    { return e.idx }
func (e *edgeGroupByKey[K, V]) inputs() []nodeIndex  { return []nodeIndex{e.in} }
func (e *edgeGroupByKey[K, V]) outputs() []nodeIndex { return []nodeIndex{e.out} }
func (e *edgeGroupByKey[K, V]) kind() string         { return "group_by_key" }
func (e *edgeGroupByKey[K, V]) name() string         { return e.nm }

// GroupByKey collects every value sharing a key into a slice, in hash
// order (the one exception to "strictly input order" the sequential
// strategy makes). Unlike Map or Filter this is necessarily a blocking
// operator: no group can be emitted until every element that might
// belong to it has been seen.
func GroupByKey[K Keys, V any](h Handle[KV[K, V]], opts ...Options) Handle[KV[K, []V]] {
	p := h.p
	p.mustUnlocked()
	o := joinOpts(opts)
	n := p.g.curNodeIndex()
	e := p.g.curEdgeIndex()
	ge := &edgeGroupByKey[K, V]{idx: e, nm: nameOrDefault(o, "GroupByKey", n), in: h.node, out: n}
	tn := &typedNode[KV[K, []V]]{index: n, parent: e}
	p.g.register(ge, tn)
	p.g.addConsumer(h.node, e)
	return Handle[KV[K, []V]]{p: p, node: n}
}

func (e *edgeGroupByKey[K, V]) buildSequential(rt *seqRuntime, ins []seqStage) (seqStage, error) {
	up := ins[0]
	var drained bool
	var order []K
	groups := map[K][]V{}
	i := 0
	return &fnSeqStage[KV[K, []V]]{next: func() (KV[K, []V], bool, error) {
		if !drained {
			for {
				if rt.run != nil {
					if err := rt.run.checkBetweenBatches(); err != nil {
						var zero KV[K, []V]
						return zero, false, err
					}
				}
				kv, ok, err := typedNext[KV[K, V]](up)
				if err != nil {
					var zero KV[K, []V]
					return zero, false, err
				}
				if !ok {
					break
				}
				if _, seen := groups[kv.Key]; !seen {
					order = append(order, kv.Key)
				}
				groups[kv.Key] = append(groups[kv.Key], kv.Value)
			}
			drained = true
			sortKeysByHash(rt.hashSeed, order)
			rt.mets.add(e.nm, metricElementsProcessed, int64(len(order)))
		}
		if i >= len(order) {
			var zero KV[K, []V]
			return zero, false, nil
		}
		k := order[i]
		i++
		return KV[K, []V]{Key: k, Value: groups[k]}, true, nil
	}}, nil
}

func (e *edgeGroupByKey[K, V]) buildParallel(rt *parRuntime, ins [][]parShard) ([]parShard, error) {
	in := ins[0]
	repartitioned, err := reshuffle[K, V](rt, in)
	if err != nil {
		return nil, err
	}
	out := make([]parShard, len(repartitioned))
	for i, shard := range repartitioned {
		var order []K
		groups := map[K][]V{}
		for _, kv := range shard {
			if _, seen := groups[kv.Key]; !seen {
				order = append(order, kv.Key)
			}
			groups[kv.Key] = append(groups[kv.Key], kv.Value)
		}
		sortKeysDeterministic(order)
		merged := make([]KV[K, []V], len(order))
		for j, k := range order {
			merged[j] = KV[K, []V]{Key: k, Value: groups[k]}
		}
		out[i] = boxShard(merged)
	}
	rt.mets.add(e.nm, metricElementsProcessed, int64(totalLen(in)))
	return out, nil
}

func totalLen(shards []parShard) int {
	n := 0
	for _, s := range shards {
		n += len(s)
	}
	return n
}

// reshuffle re-partitions boxed KV[K,V] shards by the hash of K across
// rt.partitions output shards, the parallel strategy's shuffle boundary.
// The assignment is deterministic for a fixed DeterministicHashSeed and
// partition count, but is not ordering-compatible with the sequential
// strategy.
func reshuffle[K Keys, V any](rt *parRuntime, in []parShard) ([][]KV[K, V], error) {
	out := make([][]KV[K, V], rt.partitions)
	for _, shard := range in {
		typed, err := typedShard[KV[K, V]](shard)
		if err != nil {
			return nil, err
		}
		for _, kv := range typed {
			b := hash.Bucket(rt.hashSeed, keyBytes(kv.Key), rt.partitions)
			out[b] = append(out[b], kv)
		}
	}
	return out, nil
}
