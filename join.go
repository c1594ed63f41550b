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

// JoinKind selects which side(s) of a join must have a match for a row
// to be emitted.
type JoinKind int

const (
	JoinInnerKind JoinKind = iota
	JoinLeftKind
	JoinRightKind
	JoinFullKind
)

// JoinResult pairs a left and a right value from a cogroup. HasLeft and
// HasRight distinguish an outer join's synthesized zero value from a
// genuinely-zero-valued match.
type JoinResult[V, W any] struct {
	Left     V
	Right    W
	HasLeft  bool
	HasRight bool
}

type edgeJoin[K Keys, V, W any] struct {
	idx      edgeIndex
	nm       string
	left     nodeIndex
	right    nodeIndex
	out      nodeIndex
	joinKind JoinKind
}

func (e *edgeJoin[K, V, W]) edgeID() edgeIndex   { return e.idx }
func (e *edgeJoin[K, V, W]) inputs() []nodeIndex { return []nodeIndex{e.left, e.right} }
func (e *edgeJoin[K, V, W]) outputs() []nodeIndex {
	return []nodeIndex{e.out}
}
func (e *edgeJoin[K, V, W]) kind() string { return "join" }
func (e *edgeJoin[K, V, W]) name() string { return e.nm }

func newJoin[K Keys, V, W any](left Handle[KV[K, V]], right Handle[KV[K, W]], kind JoinKind, opts []Options) Handle[KV[K, JoinResult[V, W]]] {
	p := left.p
	p.mustUnlocked()
	mustSamePipeline(p, right)
	o := joinOpts(opts)
	n := p.g.curNodeIndex()
	e := p.g.curEdgeIndex()
	je := &edgeJoin[K, V, W]{idx: e, nm: nameOrDefault(o, "Join", n), left: left.node, right: right.node, out: n, joinKind: kind}
	tn := &typedNode[KV[K, JoinResult[V, W]]]{index: n, parent: e}
	p.g.register(je, tn)
	p.g.addConsumer(left.node, e)
	p.g.addConsumer(right.node, e)
	return Handle[KV[K, JoinResult[V, W]]]{p: p, node: n}
}

// JoinInner emits one row per matching (left, right) pair sharing a key;
// keys present on only one side are dropped.
func JoinInner[K Keys, V, W any](left Handle[KV[K, V]], right Handle[KV[K, W]], opts ...Options) Handle[KV[K, JoinResult[V, W]]] {
	return newJoin(left, right, JoinInnerKind, opts)
}

// JoinLeft emits every left row, paired with each matching right row, or
// with HasRight=false if none matches.
func JoinLeft[K Keys, V, W any](left Handle[KV[K, V]], right Handle[KV[K, W]], opts ...Options) Handle[KV[K, JoinResult[V, W]]] {
	return newJoin(left, right, JoinLeftKind, opts)
}

// JoinRight emits every right row, paired with each matching left row, or
// with HasLeft=false if none matches.
func JoinRight[K Keys, V, W any](left Handle[KV[K, V]], right Handle[KV[K, W]], opts ...Options) Handle[KV[K, JoinResult[V, W]]] {
	return newJoin(left, right, JoinRightKind, opts)
}

// JoinFull emits every matching pair, plus unmatched rows from either
// side with the other side's HasLeft/HasRight false.
func JoinFull[K Keys, V, W any](left Handle[KV[K, V]], right Handle[KV[K, W]], opts ...Options) Handle[KV[K, JoinResult[V, W]]] {
	return newJoin(left, right, JoinFullKind, opts)
}

// cogroup performs the shared join logic over already-grouped left/right
// value lists for one key, used by both the sequential and parallel
// builders.
func cogroup[K Keys, V, W any](kind JoinKind, k K, ls []V, rs []W, emit func(KV[K, JoinResult[V, W]])) {
	switch {
	case len(ls) > 0 && len(rs) > 0:
		for _, l := range ls {
			for _, r := range rs {
				emit(KV[K, JoinResult[V, W]]{Key: k, Value: JoinResult[V, W]{Left: l, Right: r, HasLeft: true, HasRight: true}})
			}
		}
	case len(ls) > 0:
		if kind == JoinLeftKind || kind == JoinFullKind {
			for _, l := range ls {
				emit(KV[K, JoinResult[V, W]]{Key: k, Value: JoinResult[V, W]{Left: l, HasLeft: true}})
			}
		}
	case len(rs) > 0:
		if kind == JoinRightKind || kind == JoinFullKind {
			for _, r := range rs {
				emit(KV[K, JoinResult[V, W]]{Key: k, Value: JoinResult[V, W]{Right: r, HasRight: true}})
			}
		}
	}
}

func groupValues[K Keys, V any](s seqStage, rt *seqRuntime) (map[K][]V, []K, error) {
	order := []K{}
	groups := map[K][]V{}
	for {
		if rt.run != nil {
			if err := rt.run.checkBetweenBatches(); err != nil {
				return nil, nil, err
			}
		}
		kv, ok, err := typedNext[KV[K, V]](s)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			break
		}
		if _, seen := groups[kv.Key]; !seen {
			order = append(order, kv.Key)
		}
		groups[kv.Key] = append(groups[kv.Key], kv.Value)
	}
	return groups, order, nil
}

func (e *edgeJoin[K, V, W]) buildSequential(rt *seqRuntime, ins []seqStage) (seqStage, error) {
	leftGroups, leftOrder, err := groupValues[K, V](ins[0], rt)
	if err != nil {
		return nil, err
	}
	rightGroups, rightOrder, err := groupValues[K, W](ins[1], rt)
	if err != nil {
		return nil, err
	}

	seenRight := map[K]bool{}
	keyOrder := append([]K{}, leftOrder...)
	for _, k := range leftOrder {
		seenRight[k] = true
	}
	for _, k := range rightOrder {
		if !seenRight[k] {
			keyOrder = append(keyOrder, k)
			seenRight[k] = true
		}
	}

	sortKeysByHash(rt.hashSeed, keyOrder)

	var buf []KV[K, JoinResult[V, W]]
	for _, k := range keyOrder {
		cogroup(e.joinKind, k, leftGroups[k], rightGroups[k], func(kv KV[K, JoinResult[V, W]]) {
			buf = append(buf, kv)
		})
	}
	rt.mets.add(e.nm, metricElementsProcessed, int64(len(buf)))

	i := 0
	return &fnSeqStage[KV[K, JoinResult[V, W]]]{next: func() (KV[K, JoinResult[V, W]], bool, error) {
		if i >= len(buf) {
			var zero KV[K, JoinResult[V, W]]
			return zero, false, nil
		}
		v := buf[i]
		i++
		return v, true, nil
	}}, nil
}

func (e *edgeJoin[K, V, W]) buildParallel(rt *parRuntime, ins [][]parShard) ([]parShard, error) {
	leftBuckets, err := reshuffle[K, V](rt, ins[0])
	if err != nil {
		return nil, err
	}
	rightBuckets, err := reshuffle[K, W](rt, ins[1])
	if err != nil {
		return nil, err
	}

	out := make([]parShard, rt.partitions)
	total := 0
	for b := 0; b < rt.partitions; b++ {
		leftGroups, leftOrder := groupSlice[K, V](leftBuckets[b])
		rightGroups, rightOrder := groupSlice[K, W](rightBuckets[b])

		seen := map[K]bool{}
		keyOrder := append([]K{}, leftOrder...)
		for _, k := range leftOrder {
			seen[k] = true
		}
		for _, k := range rightOrder {
			if !seen[k] {
				keyOrder = append(keyOrder, k)
				seen[k] = true
			}
		}
		sortKeysDeterministic(keyOrder)

		var bucketOut []KV[K, JoinResult[V, W]]
		for _, k := range keyOrder {
			cogroup(e.joinKind, k, leftGroups[k], rightGroups[k], func(kv KV[K, JoinResult[V, W]]) {
				bucketOut = append(bucketOut, kv)
			})
		}
		total += len(bucketOut)
		out[b] = boxShard(bucketOut)
	}
	rt.mets.add(e.nm, metricElementsProcessed, int64(total))
	return out, nil
}

func groupSlice[K Keys, V any](kvs []KV[K, V]) (map[K][]V, []K) {
	groups := map[K][]V{}
	var order []K
	for _, kv := range kvs {
		if _, seen := groups[kv.Key]; !seen {
			order = append(order, kv.Key)
		}
		groups[kv.Key] = append(groups[kv.Key], kv.Value)
	}
	return groups, order
}
