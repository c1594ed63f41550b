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

	"golang.org/x/sync/errgroup"
)

// typedShard type-asserts every boxed element of a shard back to T,
// mirroring typedNext's role for the sequential evaluator.
func typedShard[T any](s parShard) ([]T, error) {
	out := make([]T, len(s))
	for i, v := range s {
		t, ok := v.(T)
		if !ok {
			return nil, &TypeMismatch{Want: typeNameOf[T](), Got: typeNameOfAny(v)}
		}
		out[i] = t
	}
	return out, nil
}

func boxShard[T any](items []T) parShard {
	out := make(parShard, len(items))
	for i, v := range items {
		out[i] = v
	}
	return out
}

// partitionRoundRobin splits a freshly-read source into n roughly equal
// shards, used when an operator has no natural partitioning key of its
// own; a source is itself a re-partitioning boundary the same way a
// shuffle is.
func partitionRoundRobin[T any](items []T, n int) []parShard {
	if n <= 0 {
		n = 1
	}
	shards := make([]parShard, n)
	for i, v := range items {
		shards[i%n] = append(shards[i%n], v)
	}
	return shards
}

// mapEachShard runs work over every shard concurrently via an errgroup,
// using golang.org/x/sync/errgroup for bounded worker fan-out, returning
// the first error encountered (if any) after every worker has finished.
// errgroup does not recover a panicking worker on its own — a shard
// goroutine panicking here would still crash the process — so each call
// is wrapped the same way callUser wraps sequential user-function calls.
func mapEachShard(ctx *parRuntime, name string, shards []parShard, work func(i int, s parShard) (parShard, error)) ([]parShard, error) {
	out := make([]parShard, len(shards))
	g, _ := errgroup.WithContext(ctx.ctx)
	for i, s := range shards {
		i, s := i, s
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					cause, ok := r.(error)
					if !ok {
						cause = fmt.Errorf("%v", r)
					}
					err = newUserFunctionError(name, cause)
				}
			}()
			if cerr := ctx.run.checkBetweenBatches(); cerr != nil {
				return cerr
			}
			r, werr := work(i, s)
			if werr != nil {
				return werr
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ---- source ---------------------------------------------------------------

func (e *edgeSource[T]) buildParallel(rt *parRuntime, _ [][]parShard) ([]parShard, error) {
	seq := e.prod(rt.ctx)
	var items []T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	rt.mets.add(e.nm, metricElementsProcessed, int64(len(items)))
	return partitionRoundRobin(items, rt.partitions), nil
}

// ---- map --------------------------------------------------------------

func (e *edgeMap[I, O]) buildParallel(rt *parRuntime, ins [][]parShard) ([]parShard, error) {
	return mapEachShard(rt, e.nm, ins[0], func(_ int, s parShard) (parShard, error) {
		typed, err := typedShard[I](s)
		if err != nil {
			return nil, err
		}
		out := make([]O, len(typed))
		for i, v := range typed {
			out[i] = e.fn(v)
		}
		rt.mets.add(e.nm, metricElementsProcessed, int64(len(typed)))
		return boxShard(out), nil
	})
}

// ---- filter -------------------------------------------------------------

func (e *edgeFilter[T]) buildParallel(rt *parRuntime, ins [][]parShard) ([]parShard, error) {
	return mapEachShard(rt, e.nm, ins[0], func(_ int, s parShard) (parShard, error) {
		typed, err := typedShard[T](s)
		if err != nil {
			return nil, err
		}
		var out []T
		filtered := 0
		for _, v := range typed {
			if e.pred(v) {
				out = append(out, v)
			} else {
				filtered++
			}
		}
		rt.mets.add(e.nm, metricElementsProcessed, int64(len(typed)-filtered))
		rt.mets.add(e.nm, metricElementsFiltered, int64(filtered))
		return boxShard(out), nil
	})
}

// ---- flat map -----------------------------------------------------------

func (e *edgeFlatMap[I, O]) buildParallel(rt *parRuntime, ins [][]parShard) ([]parShard, error) {
	return mapEachShard(rt, e.nm, ins[0], func(_ int, s parShard) (parShard, error) {
		typed, err := typedShard[I](s)
		if err != nil {
			return nil, err
		}
		var out []O
		for _, v := range typed {
			out = append(out, e.fn(v)...)
		}
		rt.mets.add(e.nm, metricElementsProcessed, int64(len(typed)))
		return boxShard(out), nil
	})
}

// ---- map batches --------------------------------------------------------

func (e *edgeMapBatches[I, O]) buildParallel(rt *parRuntime, ins [][]parShard) ([]parShard, error) {
	return mapEachShard(rt, e.nm, ins[0], func(_ int, s parShard) (parShard, error) {
		typed, err := typedShard[I](s)
		if err != nil {
			return nil, err
		}
		var out []O
		for lo := 0; lo < len(typed); lo += e.size {
			hi := lo + e.size
			if hi > len(typed) {
				hi = len(typed)
			}
			out = append(out, e.fn(typed[lo:hi])...)
		}
		rt.mets.add(e.nm, metricElementsProcessed, int64(len(typed)))
		return boxShard(out), nil
	})
}
