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
	"context"
	"sync"
)

// sideInputID identifies one registered side input within a pipeline.
type sideInputID int

// sideInputSpec resolves a registered side input's source node into a
// read-only snapshot, once per run, before any main-path stage executes.
type sideInputSpec interface {
	resolve(ctx context.Context, p *Pipeline, run *runState) (any, error)
}

// sideInputRegistry holds every side input registered against a
// Pipeline, keyed by the order they were registered in.
type sideInputRegistry struct {
	mu    sync.Mutex
	specs []sideInputSpec
}

func newSideInputRegistry() *sideInputRegistry {
	return &sideInputRegistry{}
}

func (r *sideInputRegistry) add(spec sideInputSpec) sideInputID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs = append(r.specs, spec)
	return sideInputID(len(r.specs) - 1)
}

// resolvedSides is the frozen, read-only snapshot of every side input
// produced for one run. It is immutable once built and safe to share
// across every worker goroutine of the parallel strategy.
type resolvedSides struct {
	values map[sideInputID]any
}

func (p *Pipeline) resolveSides(ctx context.Context, run *runState) (*resolvedSides, error) {
	p.sides.mu.Lock()
	specs := append([]sideInputSpec(nil), p.sides.specs...)
	p.sides.mu.Unlock()

	values := make(map[sideInputID]any, len(specs))
	for i, spec := range specs {
		v, err := spec.resolve(ctx, p, run)
		if err != nil {
			return nil, err
		}
		values[sideInputID(i)] = v
	}
	return &resolvedSides{values: values}, nil
}

// SideInput is a typed handle to a resolved side input's snapshot,
// analogous in spirit to [Handle] but naming a broadcast value instead
// of a streamed node. It remembers the pipeline it was registered
// against so WithSide can reject a cross-pipeline mismatch.
type SideInput[S any] struct {
	p  *Pipeline
	id sideInputID
}

func sideValue[S any](rs *resolvedSides, id sideInputID) S {
	v, ok := rs.values[id]
	if !ok {
		var zero S
		return zero
	}
	return v.(S)
}

type listSideSpec[T any] struct {
	node nodeIndex
}

func (s *listSideSpec[T]) resolve(ctx context.Context, p *Pipeline, run *runState) (any, error) {
	items, err := collectNode[T](ctx, p, s.node, run)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// RegisterSideList resolves h once, fully, into an in-memory slice
// broadcast read-only to every consumer of the returned SideInput.
func RegisterSideList[T any](h Handle[T]) SideInput[[]T] {
	h.p.mustUnlocked()
	id := h.p.sides.add(&listSideSpec[T]{node: h.node})
	return SideInput[[]T]{p: h.p, id: id}
}

type mapSideSpec[K Keys, V any] struct {
	node nodeIndex
}

func (s *mapSideSpec[K, V]) resolve(ctx context.Context, p *Pipeline, run *runState) (any, error) {
	items, err := collectNode[KV[K, V]](ctx, p, s.node, run)
	if err != nil {
		return nil, err
	}
	out := make(map[K]V, len(items))
	for _, kv := range items {
		out[kv.Key] = kv.Value
	}
	return out, nil
}

// RegisterSideMap resolves h once into an in-memory map broadcast
// read-only to every consumer, last-value-wins on duplicate keys.
func RegisterSideMap[K Keys, V any](h Handle[KV[K, V]]) SideInput[map[K]V] {
	h.p.mustUnlocked()
	id := h.p.sides.add(&mapSideSpec[K, V]{node: h.node})
	return SideInput[map[K]V]{p: h.p, id: id}
}

// collectNode runs the sequential strategy over just the subgraph
// feeding node n, independent of whatever strategy the enclosing run
// uses: a side input is always resolved by a private sequential pass.
func collectNode[T any](ctx context.Context, p *Pipeline, n nodeIndex, run *runState) ([]T, error) {
	rt := &seqRuntime{ctx: ctx, run: run, mets: newMetricsRegistry(), sides: &resolvedSides{values: map[sideInputID]any{}}, hashSeed: p.Config.DeterministicHashSeed}
	stage, err := p.buildSeqStage(rt, n)
	if err != nil {
		return nil, err
	}
	var out []T
	for {
		v, ok, err := typedNext[T](stage)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out, nil
}

// ---- WithSide -----------------------------------------------------------

type edgeWithSide[I, O, S any] struct {
	idx edgeIndex
	nm  string
	in  nodeIndex
	out nodeIndex
	id  sideInputID
	fn  func(I, S) O
}

func (e *edgeWithSide[I, O, S]) edgeID() edgeIndex    { return e.idx }
func (e *edgeWithSide[I, O, S]) inputs() []nodeIndex  { return []nodeIndex{e.in} }
func (e *edgeWithSide[I, O, S]) outputs() []nodeIndex { return []nodeIndex{e.out} }
func (e *edgeWithSide[I, O, S]) kind() string         { return "with_side" }
func (e *edgeWithSide[I, O, S]) name() string         { return e.nm }

// WithSide maps every element of h alongside the frozen snapshot of a
// side input, the only way the transformation layer reads state other
// than the element currently in hand.
func WithSide[I, O, S any](h Handle[I], side SideInput[S], fn func(I, S) O, opts ...Options) Handle[O] {
	p := h.p
	p.mustUnlocked()
	if side.p != p {
		panic(&CrossPipeline{})
	}
	o := joinOpts(opts)
	n := p.g.curNodeIndex()
	e := p.g.curEdgeIndex()
	we := &edgeWithSide[I, O, S]{idx: e, nm: nameOrDefault(o, "WithSide", n), in: h.node, out: n, id: side.id, fn: fn}
	tn := &typedNode[O]{index: n, parent: e}
	p.g.register(we, tn)
	p.g.addConsumer(h.node, e)
	return Handle[O]{p: p, node: n}
}

func (e *edgeWithSide[I, O, S]) buildSequential(rt *seqRuntime, ins []seqStage) (seqStage, error) {
	up := ins[0]
	side := sideValue[S](rt.sides, e.id)
	n := 0
	return &fnSeqStage[O]{next: func() (O, bool, error) {
		if rt.run != nil && n%rt.run.batchSize == 0 {
			if err := rt.run.checkBetweenBatches(); err != nil {
				var zero O
				return zero, false, err
			}
		}
		v, ok, err := typedNext[I](up)
		if err != nil || !ok {
			var zero O
			return zero, ok, err
		}
		n++
		out, cerr := callUser(e.nm, func() O { return e.fn(v, side) })
		if cerr != nil {
			var zero O
			return zero, false, cerr
		}
		rt.mets.add(e.nm, metricElementsProcessed, 1)
		return out, true, nil
	}}, nil
}

func (e *edgeWithSide[I, O, S]) buildParallel(rt *parRuntime, ins [][]parShard) ([]parShard, error) {
	side := sideValue[S](rt.sides, e.id)
	return mapEachShard(rt, e.nm, ins[0], func(_ int, s parShard) (parShard, error) {
		typed, err := typedShard[I](s)
		if err != nil {
			return nil, err
		}
		out := make([]O, len(typed))
		for i, v := range typed {
			out[i] = e.fn(v, side)
		}
		rt.mets.add(e.nm, metricElementsProcessed, int64(len(typed)))
		return boxShard(out), nil
	})
}
