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
	"fmt"
	"sort"

	"golang.org/x/exp/constraints"

	"github.com/nhubbard/ironbeam/internal/hll"
	"github.com/nhubbard/ironbeam/internal/tdigest"
)

// Combiner is the four-operation algebra required of every aggregation:
// CreateAccumulator, AddInput, MergeAccumulators and ExtractOutput,
// grounded on collection.rs's CombineFn trait.
type Combiner[A, I, O any] interface {
	CreateAccumulator() A
	AddInput(acc A, in I) A
	MergeAccumulators(accs []A) A
	ExtractOutput(acc A) O
}

// CombinerFlags is an optional capability a Combiner may additionally
// implement to declare algebraic properties the executor can exploit:
// Commutative combiners may be partially combined in any input order,
// and EmptyValid combiners produce a meaningful output for zero inputs
// rather than requiring EmptyAggregation to be returned.
type CombinerFlags interface {
	Commutative() bool
	EmptyValid() bool
}

func commutative(c any) bool {
	if f, ok := c.(CombinerFlags); ok {
		return f.Commutative()
	}
	return false
}

func emptyValid(c any) bool {
	if f, ok := c.(CombinerFlags); ok {
		return f.EmptyValid()
	}
	return false
}

// ---- Count ----------------------------------------------------------------

type countCombiner[T any] struct{}

func (countCombiner[T]) CreateAccumulator() int64                 { return 0 }
func (countCombiner[T]) AddInput(acc int64, _ T) int64             { return acc + 1 }
func (countCombiner[T]) MergeAccumulators(accs []int64) int64 {
	var sum int64
	for _, a := range accs {
		sum += a
	}
	return sum
}
func (countCombiner[T]) ExtractOutput(acc int64) int64 { return acc }
func (countCombiner[T]) Commutative() bool             { return true }
func (countCombiner[T]) EmptyValid() bool              { return true }

// Count returns a combiner that counts the elements it is given.
func Count[T any]() Combiner[int64, T, int64] { return countCombiner[T]{} }

// ---- Sum --------------------------------------------------------------

type sumCombiner[T constraints.Integer | constraints.Float] struct{}

func (sumCombiner[T]) CreateAccumulator() T { return 0 }
func (sumCombiner[T]) AddInput(acc T, in T) T { return acc + in }
func (sumCombiner[T]) MergeAccumulators(accs []T) T {
	var sum T
	for _, a := range accs {
		sum += a
	}
	return sum
}
func (sumCombiner[T]) ExtractOutput(acc T) T { return acc }
func (sumCombiner[T]) Commutative() bool     { return true }
func (sumCombiner[T]) EmptyValid() bool      { return true }

// Sum returns a combiner that adds its inputs.
func Sum[T constraints.Integer | constraints.Float]() Combiner[T, T, T] { return sumCombiner[T]{} }

// ---- Min / Max ------------------------------------------------------------

type minMaxAcc[T constraints.Ordered] struct {
	has bool
	v   T
}

type minCombiner[T constraints.Ordered] struct{}

func (minCombiner[T]) CreateAccumulator() minMaxAcc[T] { return minMaxAcc[T]{} }
func (minCombiner[T]) AddInput(acc minMaxAcc[T], in T) minMaxAcc[T] {
	if !acc.has || in < acc.v {
		return minMaxAcc[T]{has: true, v: in}
	}
	return acc
}
func (minCombiner[T]) MergeAccumulators(accs []minMaxAcc[T]) minMaxAcc[T] {
	out := minMaxAcc[T]{}
	for _, a := range accs {
		if !a.has {
			continue
		}
		if !out.has || a.v < out.v {
			out = a
		}
	}
	return out
}
func (minCombiner[T]) ExtractOutput(acc minMaxAcc[T]) T { return acc.v }
func (minCombiner[T]) Commutative() bool                { return true }
func (minCombiner[T]) EmptyValid() bool                 { return false }

// Min returns a combiner that tracks the smallest input; extracting the
// output of an empty group is meaningless and the executor reports
// EmptyAggregation rather than calling ExtractOutput.
func Min[T constraints.Ordered]() Combiner[minMaxAcc[T], T, T] { return minCombiner[T]{} }

type maxCombiner[T constraints.Ordered] struct{}

func (maxCombiner[T]) CreateAccumulator() minMaxAcc[T] { return minMaxAcc[T]{} }
func (maxCombiner[T]) AddInput(acc minMaxAcc[T], in T) minMaxAcc[T] {
	if !acc.has || in > acc.v {
		return minMaxAcc[T]{has: true, v: in}
	}
	return acc
}
func (maxCombiner[T]) MergeAccumulators(accs []minMaxAcc[T]) minMaxAcc[T] {
	out := minMaxAcc[T]{}
	for _, a := range accs {
		if !a.has {
			continue
		}
		if !out.has || a.v > out.v {
			out = a
		}
	}
	return out
}
func (maxCombiner[T]) ExtractOutput(acc minMaxAcc[T]) T { return acc.v }
func (maxCombiner[T]) Commutative() bool                { return true }
func (maxCombiner[T]) EmptyValid() bool                 { return false }

// Max returns a combiner that tracks the largest input.
func Max[T constraints.Ordered]() Combiner[minMaxAcc[T], T, T] { return maxCombiner[T]{} }

// ---- AverageF64 -----------------------------------------------------------

type avgAcc struct {
	sum   float64
	count int64
}

type averageCombiner struct{}

func (averageCombiner) CreateAccumulator() avgAcc { return avgAcc{} }
func (averageCombiner) AddInput(acc avgAcc, in float64) avgAcc {
	return avgAcc{sum: acc.sum + in, count: acc.count + 1}
}
func (averageCombiner) MergeAccumulators(accs []avgAcc) avgAcc {
	var out avgAcc
	for _, a := range accs {
		out.sum += a.sum
		out.count += a.count
	}
	return out
}
func (averageCombiner) ExtractOutput(acc avgAcc) float64 {
	if acc.count == 0 {
		return 0
	}
	return acc.sum / float64(acc.count)
}
func (averageCombiner) Commutative() bool { return true }
func (averageCombiner) EmptyValid() bool  { return false }

// AverageF64 returns a combiner computing the arithmetic mean of its
// float64 inputs.
func AverageF64() Combiner[avgAcc, float64, float64] { return averageCombiner{} }

// ---- DistinctCount (approximate, HyperLogLog) ----------------------------

type distinctCombiner[T comparable] struct {
	precision uint8
	hash      func(T) uint64
}

// DistinctCount returns an approximate distinct-value combiner backed by
// a HyperLogLog sketch at the given precision (4-18; 0 selects the
// default of 14). hash must be a reasonably well-distributed 64-bit hash
// of T; callers keying on strings or integers can derive one cheaply.
func DistinctCount[T comparable](precision uint8, hash func(T) uint64) Combiner[*hll.Sketch, T, uint64] {
	if precision == 0 {
		precision = 14
	}
	return distinctCombiner[T]{precision: precision, hash: hash}
}

func (d distinctCombiner[T]) CreateAccumulator() *hll.Sketch { return hll.New(d.precision) }
func (d distinctCombiner[T]) AddInput(acc *hll.Sketch, in T) *hll.Sketch {
	acc.AddHash(d.hash(in))
	return acc
}
func (d distinctCombiner[T]) MergeAccumulators(accs []*hll.Sketch) *hll.Sketch {
	out := hll.New(d.precision)
	for _, a := range accs {
		out.Merge(a)
	}
	return out
}
func (d distinctCombiner[T]) ExtractOutput(acc *hll.Sketch) uint64 {
	return uint64(acc.Estimate())
}
func (d distinctCombiner[T]) Commutative() bool { return true }
func (d distinctCombiner[T]) EmptyValid() bool  { return true }

// ---- TopK -----------------------------------------------------------------

type topKCombiner[T any] struct {
	k    int
	less func(a, b T) bool
}

// TopK returns a combiner retaining up to k greatest elements by less
// (a < b), breaking ties arbitrarily; its accumulator is itself the
// running top-k slice, so merging two accumulators is just another
// top-k selection over their concatenation. k must be at least 1; TopK
// panics with InvalidArgument otherwise.
func TopK[T any](k int, less func(a, b T) bool) Combiner[[]T, T, []T] {
	if k <= 0 {
		panic(&InvalidArgument{Detail: fmt.Sprintf("TopK: k must be >= 1, got %d", k)})
	}
	return topKCombiner[T]{k: k, less: less}
}

func (c topKCombiner[T]) CreateAccumulator() []T { return nil }

func (c topKCombiner[T]) AddInput(acc []T, in T) []T {
	return c.trim(append(acc, in))
}

func (c topKCombiner[T]) MergeAccumulators(accs []([]T)) []T {
	var all []T
	for _, a := range accs {
		all = append(all, a...)
	}
	return c.trim(all)
}

func (c topKCombiner[T]) trim(all []T) []T {
	sort.Slice(all, func(i, j int) bool { return c.less(all[j], all[i]) })
	if len(all) > c.k {
		all = all[:c.k]
	}
	return all
}

func (c topKCombiner[T]) ExtractOutput(acc []T) []T { return acc }
func (c topKCombiner[T]) Commutative() bool         { return true }
func (c topKCombiner[T]) EmptyValid() bool          { return true }

// ---- Quantiles (t-digest) --------------------------------------------

type quantilesCombiner struct {
	compression float64
	qs          []float64
}

// Quantiles returns a combiner estimating the values at each rank in qs
// (each in [0, 1]) using a t-digest, a feature this repository's original
// implementation offered that the distilled specification did not name
// explicitly (see DESIGN.md).
func Quantiles(compression float64, qs []float64) Combiner[*tdigest.Digest, float64, []float64] {
	return quantilesCombiner{compression: compression, qs: qs}
}

func (q quantilesCombiner) CreateAccumulator() *tdigest.Digest { return tdigest.New(q.compression) }
func (q quantilesCombiner) AddInput(acc *tdigest.Digest, in float64) *tdigest.Digest {
	acc.Add(in)
	return acc
}
func (q quantilesCombiner) MergeAccumulators(accs []*tdigest.Digest) *tdigest.Digest {
	out := tdigest.New(q.compression)
	for _, a := range accs {
		out.Merge(a)
	}
	return out
}
func (q quantilesCombiner) ExtractOutput(acc *tdigest.Digest) []float64 { return acc.Quantiles(q.qs) }
func (q quantilesCombiner) Commutative() bool                          { return true }
func (q quantilesCombiner) EmptyValid() bool                           { return false }
