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
	"container/heap"
	"sort"
)

// splitMix64 is a tiny deterministic PRNG used to assign each sampled
// element an i.i.d. priority key, seeded from the seed passed to [Sample].
// Every accumulator restarts from that seed, so the same input in the same
// order and partitioning draws the same sample on every run; sequential
// and parallel runs partition the input differently and can draw
// different samples.
type splitMix64 struct{ state uint64 }

func newSplitMix64(seed uint64) *splitMix64 {
	return &splitMix64{state: seed * 0xA24BAED40B9C497C}
}

func (s *splitMix64) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func (s *splitMix64) nextFloat() float64 {
	const scale = 1.0 / (1 << 53)
	return float64(s.next()>>11) * scale
}

type sampleEntry[T any] struct {
	priority float64
	seq      uint64
	value    T
}

type priorityHeap[T any] []sampleEntry[T]

func (h priorityHeap[T]) Len() int            { return len(h) }
func (h priorityHeap[T]) Less(i, j int) bool  { return h[i].priority < h[j].priority }
func (h priorityHeap[T]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *priorityHeap[T]) Push(x any)         { *h = append(*h, x.(sampleEntry[T])) }
func (h *priorityHeap[T]) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// sampleAcc is the mergeable accumulator for [Sample]: a min-heap of the
// k entries seen so far with the highest i.i.d. priority keys.
type sampleAcc[T any] struct {
	k   int
	rng *splitMix64
	seq uint64
	h   priorityHeap[T]
}

type sampleCombiner[T any] struct {
	k    int
	seed uint64
}

// Sample returns a combiner performing reservoir sampling: it retains up
// to k uniformly-random elements from however many it is given, mergeable
// across partial combines by keeping the k entries with the greatest
// priority keys overall.
func Sample[T any](k int, seed uint64) Combiner[sampleAcc[T], T, []T] {
	return sampleCombiner[T]{k: k, seed: seed}
}

func (c sampleCombiner[T]) CreateAccumulator() sampleAcc[T] {
	return sampleAcc[T]{k: c.k, rng: newSplitMix64(c.seed)}
}

func (c sampleCombiner[T]) AddInput(acc sampleAcc[T], in T) sampleAcc[T] {
	if acc.k <= 0 {
		return acc
	}
	e := sampleEntry[T]{priority: acc.rng.nextFloat(), seq: acc.seq, value: in}
	acc.seq++
	if acc.h.Len() < acc.k {
		heap.Push(&acc.h, e)
	} else if acc.h.Len() > 0 && e.priority > acc.h[0].priority {
		heap.Pop(&acc.h)
		heap.Push(&acc.h, e)
	}
	return acc
}

func (c sampleCombiner[T]) MergeAccumulators(accs []sampleAcc[T]) sampleAcc[T] {
	out := sampleAcc[T]{k: c.k, rng: newSplitMix64(c.seed)}
	for _, a := range accs {
		for _, e := range a.h {
			if out.h.Len() < out.k {
				heap.Push(&out.h, e)
			} else if out.h.Len() > 0 && e.priority > out.h[0].priority {
				heap.Pop(&out.h)
				heap.Push(&out.h, e)
			}
		}
	}
	return out
}

func (c sampleCombiner[T]) ExtractOutput(acc sampleAcc[T]) []T {
	entries := append([]sampleEntry[T](nil), acc.h...)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority > entries[j].priority
		}
		return entries[i].seq < entries[j].seq
	})
	out := make([]T, len(entries))
	for i, e := range entries {
		out[i] = e.value
	}
	return out
}

func (c sampleCombiner[T]) Commutative() bool { return true }
func (c sampleCombiner[T]) EmptyValid() bool  { return true }
