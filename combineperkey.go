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

// edgeCombinePerKey streams values straight into per-key accumulators
// rather than materializing per-key value lists, unlike GroupByKey,
// which is explicitly allowed to.
type edgeCombinePerKey[K Keys, I, A, O any] struct {
	idx edgeIndex
	nm  string
	in  nodeIndex
	out nodeIndex
	c   Combiner[A, I, O]
}

func (e *edgeCombinePerKey[K, I, A, O]) edgeID() edgeIndex    { return e.idx }
func (e *edgeCombinePerKey[K, I, A, O]) inputs() []nodeIndex  { return []nodeIndex{e.in} }
func (e *edgeCombinePerKey[K, I, A, O]) outputs() []nodeIndex { return []nodeIndex{e.out} }
func (e *edgeCombinePerKey[K, I, A, O]) kind() string         { return "combine_per_key" }
func (e *edgeCombinePerKey[K, I, A, O]) name() string         { return e.nm }

// CombinePerKey aggregates every value sharing a key using c, streaming
// each value straight into that key's accumulator.
func CombinePerKey[K Keys, I, A, O any](h Handle[KV[K, I]], c Combiner[A, I, O], opts ...Options) Handle[KV[K, O]] {
	p := h.p
	p.mustUnlocked()
	o := joinOpts(opts)
	n := p.g.curNodeIndex()
	e := p.g.curEdgeIndex()
	ce := &edgeCombinePerKey[K, I, A, O]{idx: e, nm: nameOrDefault(o, "CombinePerKey", n), in: h.node, out: n, c: c}
	tn := &typedNode[KV[K, O]]{index: n, parent: e}
	p.g.register(ce, tn)
	p.g.addConsumer(h.node, e)
	return Handle[KV[K, O]]{p: p, node: n}
}

func (e *edgeCombinePerKey[K, I, A, O]) buildSequential(rt *seqRuntime, ins []seqStage) (seqStage, error) {
	up := ins[0]
	var drained bool
	var order []K
	accs := map[K]A{}
	i := 0
	return &fnSeqStage[KV[K, O]]{next: func() (KV[K, O], bool, error) {
		if !drained {
			for {
				if rt.run != nil {
					if err := rt.run.checkBetweenBatches(); err != nil {
						var zero KV[K, O]
						return zero, false, err
					}
				}
				kv, ok, err := typedNext[KV[K, I]](up)
				if err != nil {
					var zero KV[K, O]
					return zero, false, err
				}
				if !ok {
					break
				}
				acc, seen := accs[kv.Key]
				if !seen {
					acc = e.c.CreateAccumulator()
					order = append(order, kv.Key)
				}
				next, cerr := callUser(e.nm, func() A { return e.c.AddInput(acc, kv.Value) })
				if cerr != nil {
					var zero KV[K, O]
					return zero, false, cerr
				}
				accs[kv.Key] = next
			}
			drained = true
			sortKeysByHash(rt.hashSeed, order)
			rt.mets.add(e.nm, metricElementsProcessed, int64(len(order)))
		}
		if i >= len(order) {
			var zero KV[K, O]
			return zero, false, nil
		}
		k := order[i]
		i++
		out, cerr := callUser(e.nm, func() O { return e.c.ExtractOutput(accs[k]) })
		if cerr != nil {
			var zero KV[K, O]
			return zero, false, cerr
		}
		return KV[K, O]{Key: k, Value: out}, true, nil
	}}, nil
}

func (e *edgeCombinePerKey[K, I, A, O]) buildParallel(rt *parRuntime, ins [][]parShard) ([]parShard, error) {
	in := ins[0]

	// Map-side partial combine: fold each shard's elements into per-key
	// accumulators before shuffling, so the shuffle moves accumulators
	// rather than raw values.
	partialShards := make([]parShard, len(in))
	for i, shard := range in {
		typed, err := typedShard[KV[K, I]](shard)
		if err != nil {
			return nil, err
		}
		var order []K
		accs := map[K]A{}
		for _, kv := range typed {
			acc, seen := accs[kv.Key]
			if !seen {
				acc = e.c.CreateAccumulator()
				order = append(order, kv.Key)
			}
			next, cerr := callUser(e.nm, func() A { return e.c.AddInput(acc, kv.Value) })
			if cerr != nil {
				return nil, cerr
			}
			accs[kv.Key] = next
		}
		partial := make([]KV[K, A], len(order))
		for j, k := range order {
			partial[j] = KV[K, A]{Key: k, Value: accs[k]}
		}
		partialShards[i] = boxShard(partial)
	}

	repartitioned, err := reshuffle[K, A](rt, partialShards)
	if err != nil {
		return nil, err
	}

	out := make([]parShard, len(repartitioned))
	for i, bucket := range repartitioned {
		var order []K
		grouped := map[K][]A{}
		for _, kv := range bucket {
			if _, seen := grouped[kv.Key]; !seen {
				order = append(order, kv.Key)
			}
			grouped[kv.Key] = append(grouped[kv.Key], kv.Value)
		}
		sortKeysDeterministic(order)
		merged := make([]KV[K, O], len(order))
		for j, k := range order {
			final, cerr := callUser(e.nm, func() A { return e.c.MergeAccumulators(grouped[k]) })
			if cerr != nil {
				return nil, cerr
			}
			rt.mets.add(e.nm, metricCombinerMerges, 1)
			out, cerr := callUser(e.nm, func() O { return e.c.ExtractOutput(final) })
			if cerr != nil {
				return nil, cerr
			}
			merged[j] = KV[K, O]{Key: k, Value: out}
		}
		out[i] = boxShard(merged)
	}
	rt.mets.add(e.nm, metricElementsProcessed, int64(totalLen(in)))
	return out, nil
}

// ---- CombineGlobally --------------------------------------------------

type edgeCombineGlobally[I, A, O any] struct {
	idx edgeIndex
	nm  string
	in  nodeIndex
	out nodeIndex
	c   Combiner[A, I, O]
}

func (e *edgeCombineGlobally[I, A, O]) edgeID() edgeIndex    { return e.idx }
func (e *edgeCombineGlobally[I, A, O]) inputs() []nodeIndex  { return []nodeIndex{e.in} }
func (e *edgeCombineGlobally[I, A, O]) outputs() []nodeIndex { return []nodeIndex{e.out} }
func (e *edgeCombineGlobally[I, A, O]) kind() string         { return "combine_globally" }
func (e *edgeCombineGlobally[I, A, O]) name() string         { return e.nm }

// CombineGlobally aggregates an entire (unkeyed) collection down to a
// single output value, producing EmptyAggregation on an empty input
// unless c reports itself EmptyValid.
func CombineGlobally[I, A, O any](h Handle[I], c Combiner[A, I, O], opts ...Options) Handle[O] {
	p := h.p
	p.mustUnlocked()
	o := joinOpts(opts)
	n := p.g.curNodeIndex()
	e := p.g.curEdgeIndex()
	ce := &edgeCombineGlobally[I, A, O]{idx: e, nm: nameOrDefault(o, "CombineGlobally", n), in: h.node, out: n, c: c}
	tn := &typedNode[O]{index: n, parent: e}
	p.g.register(ce, tn)
	p.g.addConsumer(h.node, e)
	return Handle[O]{p: p, node: n}
}

func (e *edgeCombineGlobally[I, A, O]) buildSequential(rt *seqRuntime, ins []seqStage) (seqStage, error) {
	up := ins[0]
	var done bool
	return &fnSeqStage[O]{next: func() (O, bool, error) {
		if done {
			var zero O
			return zero, false, nil
		}
		done = true
		acc := e.c.CreateAccumulator()
		n := 0
		for {
			if rt.run != nil && n%rt.run.batchSize == 0 {
				if err := rt.run.checkBetweenBatches(); err != nil {
					var zero O
					return zero, false, err
				}
			}
			v, ok, err := typedNext[I](up)
			if err != nil {
				var zero O
				return zero, false, err
			}
			if !ok {
				break
			}
			next, cerr := callUser(e.nm, func() A { return e.c.AddInput(acc, v) })
			if cerr != nil {
				var zero O
				return zero, false, cerr
			}
			acc = next
			n++
		}
		if n == 0 && !emptyValid(e.c) {
			var zero O
			return zero, false, &EmptyAggregation{}
		}
		rt.mets.add(e.nm, metricElementsProcessed, int64(n))
		out, cerr := callUser(e.nm, func() O { return e.c.ExtractOutput(acc) })
		if cerr != nil {
			var zero O
			return zero, false, cerr
		}
		return out, true, nil
	}}, nil
}

func (e *edgeCombineGlobally[I, A, O]) buildParallel(rt *parRuntime, ins [][]parShard) ([]parShard, error) {
	in := ins[0]
	partials := make([]A, len(in))
	total := 0
	for i, shard := range in {
		typed, err := typedShard[I](shard)
		if err != nil {
			return nil, err
		}
		acc := e.c.CreateAccumulator()
		for _, v := range typed {
			v := v
			next, cerr := callUser(e.nm, func() A { return e.c.AddInput(acc, v) })
			if cerr != nil {
				return nil, cerr
			}
			acc = next
		}
		partials[i] = acc
		total += len(typed)
	}
	if total == 0 && !emptyValid(e.c) {
		return nil, &EmptyAggregation{}
	}
	final, cerr := callUser(e.nm, func() A { return e.c.MergeAccumulators(partials) })
	if cerr != nil {
		return nil, cerr
	}
	rt.mets.add(e.nm, metricCombinerMerges, int64(len(partials)))
	rt.mets.add(e.nm, metricElementsProcessed, int64(total))
	out, cerr := callUser(e.nm, func() O { return e.c.ExtractOutput(final) })
	if cerr != nil {
		return nil, cerr
	}
	return []parShard{{out}}, nil
}
