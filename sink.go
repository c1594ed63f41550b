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
	"iter"
	"time"
)

// CollectSequential runs the sequential strategy over h's subgraph and
// returns every element it produces, strictly in input order everywhere
// except where an operator's own semantics redefine it. Each call is a
// fresh execution over the frozen graph.
func CollectSequential[T any](ctx context.Context, h Handle[T], opts ...RunOptions) ([]T, error) {
	p := h.p
	var ro RunOptions
	if len(opts) > 0 {
		ro = opts[0]
	}
	var out []T
	err := p.lock(func() error {
		start := time.Now()
		run := newRunState(ctx, ro, p.Config)
		sides, err := p.resolveSides(ctx, run)
		if err != nil {
			return err
		}
		rt := &seqRuntime{ctx: ctx, run: run, mets: p.mets, sides: sides, hashSeed: p.Config.DeterministicHashSeed}
		stage, err := p.buildSeqStage(rt, h.node)
		if err != nil {
			return err
		}
		for {
			v, ok, err := typedNext[T](stage)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			out = append(out, v)
		}
		p.mets.add("pipeline", metricWallTimeNanos, time.Since(start).Nanoseconds())
		return nil
	})
	return out, err
}

// CollectParallel runs the parallel, partitioned strategy over h's
// subgraph and returns every element it produces. Output order is
// (partition index, then the deterministic within-partition order of
// the terminal operator).
func CollectParallel[T any](ctx context.Context, h Handle[T], opts ...RunOptions) ([]T, error) {
	p := h.p
	var ro RunOptions
	if len(opts) > 0 {
		ro = opts[0]
	}
	var out []T
	err := p.lock(func() error {
		start := time.Now()
		run := newRunState(ctx, ro, p.Config)
		sides, err := p.resolveSides(ctx, run)
		if err != nil {
			return err
		}
		rt := &parRuntime{
			ctx:        ctx,
			run:        run,
			mets:       p.mets,
			sides:      sides,
			partitions: p.Config.Parallelism,
			hashSeed:   p.Config.DeterministicHashSeed,
		}
		shards, err := p.buildParStage(rt, h.node)
		if err != nil {
			return err
		}
		for _, shard := range shards {
			typed, err := typedShard[T](shard)
			if err != nil {
				return err
			}
			out = append(out, typed...)
		}
		p.mets.add("pipeline", metricWallTimeNanos, time.Since(start).Nanoseconds())
		return nil
	})
	return out, err
}

// RunToSink drains h sequentially into consumer, for terminal pipelines
// that write rather than return a value.
func RunToSink[T any](ctx context.Context, h Handle[T], consumer Consumer[T], opts ...RunOptions) error {
	items, err := CollectSequential(ctx, h, opts...)
	if err != nil {
		return err
	}
	seq := func(yield func(T, error) bool) {
		for _, v := range items {
			if !yield(v, nil) {
				return
			}
		}
	}
	return consumer(ctx, iter.Seq2[T, error](seq))
}
