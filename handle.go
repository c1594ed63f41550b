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

import "fmt"

// Handle is an immutable, typed reference to one node of a Pipeline's
// operator graph. It carries no data of its own: every transformation
// that consumes a Handle reads it back through the pipeline it was
// minted from, at run time.
type Handle[T any] struct {
	p    *Pipeline
	node nodeIndex
}

// Pipeline returns the Pipeline this handle belongs to.
func (h Handle[T]) Pipeline() *Pipeline { return h.p }

// ---- Source -----------------------------------------------------------

type edgeSource[T any] struct {
	idx  edgeIndex
	nm   string
	out  nodeIndex
	prod Producer[T]
	len  int
}

func (e *edgeSource[T]) edgeID() edgeIndex    { return e.idx }
func (e *edgeSource[T]) inputs() []nodeIndex  { return nil }
func (e *edgeSource[T]) outputs() []nodeIndex { return []nodeIndex{e.out} }
func (e *edgeSource[T]) kind() string         { return "source" }
func (e *edgeSource[T]) name() string         { return e.nm }
func (e *edgeSource[T]) lenHint() int         { return e.len }

// Source registers a new root node fed by producer, grounded on
// impulse.go's node-registration shape generalized from a single
// zero-element impulse to an arbitrary lazy producer sequence.
func Source[T any](p *Pipeline, producer Producer[T], opts ...Options) Handle[T] {
	p.mustUnlocked()
	o := joinOpts(opts)
	n := p.g.curNodeIndex()
	e := p.g.curEdgeIndex()
	src := &edgeSource[T]{idx: e, nm: nameOrDefault(o, "Source", n), out: n, prod: producer, len: o.LenHint}
	tn := &typedNode[T]{index: n, parent: e}
	p.g.register(src, tn)
	return Handle[T]{p: p, node: n}
}

func nameOrDefault(o optStruct, kind string, n nodeIndex) string {
	if o.Name != "" {
		return o.Name
	}
	return kind
}

// ---- Map ----------------------------------------------------------------

type edgeMap[I, O any] struct {
	idx edgeIndex
	nm  string
	in  nodeIndex
	out nodeIndex
	fn  func(I) O
}

func (e *edgeMap[I, O]) edgeID() edgeIndex    { return e.idx }
func (e *edgeMap[I, O]) inputs() []nodeIndex  { return []nodeIndex{e.in} }
func (e *edgeMap[I, O]) outputs() []nodeIndex { return []nodeIndex{e.out} }
func (e *edgeMap[I, O]) kind() string         { return "map" }
func (e *edgeMap[I, O]) name() string         { return e.nm }

// Map registers a one-to-one element transformation, grounded on
// lightweight.go's Map/mapper[I,O] pattern generalized from Beam's
// ParDo-wrapping to a direct free function over a Handle.
func Map[I, O any](h Handle[I], fn func(I) O, opts ...Options) Handle[O] {
	p := h.p
	p.mustUnlocked()
	o := joinOpts(opts)
	n := p.g.curNodeIndex()
	e := p.g.curEdgeIndex()
	me := &edgeMap[I, O]{idx: e, nm: nameOrDefault(o, "Map", n), in: h.node, out: n, fn: fn}
	tn := &typedNode[O]{index: n, parent: e}
	p.g.register(me, tn)
	p.g.addConsumer(h.node, e)
	return Handle[O]{p: p, node: n}
}

// ---- Filter ---------------------------------------------------------------

type edgeFilter[T any] struct {
	idx  edgeIndex
	nm   string
	in   nodeIndex
	out  nodeIndex
	pred func(T) bool
}

func (e *edgeFilter[T]) edgeID() edgeIndex    { return e.idx }
func (e *edgeFilter[T]) inputs() []nodeIndex  { return []nodeIndex{e.in} }
func (e *edgeFilter[T]) outputs() []nodeIndex { return []nodeIndex{e.out} }
func (e *edgeFilter[T]) kind() string         { return "filter" }
func (e *edgeFilter[T]) name() string         { return e.nm }

// Filter registers a predicate-gated passthrough, keeping only elements
// for which pred returns true.
func Filter[T any](h Handle[T], pred func(T) bool, opts ...Options) Handle[T] {
	p := h.p
	p.mustUnlocked()
	o := joinOpts(opts)
	n := p.g.curNodeIndex()
	e := p.g.curEdgeIndex()
	fe := &edgeFilter[T]{idx: e, nm: nameOrDefault(o, "Filter", n), in: h.node, out: n, pred: pred}
	tn := &typedNode[T]{index: n, parent: e}
	p.g.register(fe, tn)
	p.g.addConsumer(h.node, e)
	return Handle[T]{p: p, node: n}
}

// ---- FlatMap ----------------------------------------------------------

type edgeFlatMap[I, O any] struct {
	idx edgeIndex
	nm  string
	in  nodeIndex
	out nodeIndex
	fn  func(I) []O
}

func (e *edgeFlatMap[I, O]) edgeID() edgeIndex    { return e.idx }
func (e *edgeFlatMap[I, O]) inputs() []nodeIndex  { return []nodeIndex{e.in} }
func (e *edgeFlatMap[I, O]) outputs() []nodeIndex { return []nodeIndex{e.out} }
func (e *edgeFlatMap[I, O]) kind() string         { return "flat_map" }
func (e *edgeFlatMap[I, O]) name() string         { return e.nm }

// FlatMap registers a one-to-many element transformation.
func FlatMap[I, O any](h Handle[I], fn func(I) []O, opts ...Options) Handle[O] {
	p := h.p
	p.mustUnlocked()
	o := joinOpts(opts)
	n := p.g.curNodeIndex()
	e := p.g.curEdgeIndex()
	fe := &edgeFlatMap[I, O]{idx: e, nm: nameOrDefault(o, "FlatMap", n), in: h.node, out: n, fn: fn}
	tn := &typedNode[O]{index: n, parent: e}
	p.g.register(fe, tn)
	p.g.addConsumer(h.node, e)
	return Handle[O]{p: p, node: n}
}

// ---- MapBatches ---------------------------------------------------------

type edgeMapBatches[I, O any] struct {
	idx  edgeIndex
	nm   string
	in   nodeIndex
	out  nodeIndex
	size int
	fn   func([]I) []O
}

func (e *edgeMapBatches[I, O]) edgeID() edgeIndex    { return e.idx }
func (e *edgeMapBatches[I, O]) inputs() []nodeIndex  { return []nodeIndex{e.in} }
func (e *edgeMapBatches[I, O]) outputs() []nodeIndex { return []nodeIndex{e.out} }
func (e *edgeMapBatches[I, O]) kind() string         { return "map_batches" }
func (e *edgeMapBatches[I, O]) name() string         { return e.nm }

// MapBatches registers a transformation applied to fixed-size groups of
// up to n consecutive elements (the final group of a node's output may be
// shorter; under CollectParallel groups are formed within each shard, so
// each shard's final group may be shorter), useful for amortizing
// per-call overhead such as batched I/O.
// n must be at least 1; MapBatches panics with InvalidArgument otherwise.
func MapBatches[I, O any](h Handle[I], n int, fn func([]I) []O, opts ...Options) Handle[O] {
	if n <= 0 {
		panic(&InvalidArgument{Detail: fmt.Sprintf("MapBatches: batch size must be >= 1, got %d", n)})
	}
	p := h.p
	p.mustUnlocked()
	o := joinOpts(opts)
	idx := p.g.curNodeIndex()
	e := p.g.curEdgeIndex()
	me := &edgeMapBatches[I, O]{idx: e, nm: nameOrDefault(o, "MapBatches", idx), in: h.node, out: idx, size: n, fn: fn}
	tn := &typedNode[O]{index: idx, parent: e}
	p.g.register(me, tn)
	p.g.addConsumer(h.node, e)
	return Handle[O]{p: p, node: idx}
}
