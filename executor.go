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

import "context"

// seqStage is a pull-based, boxed-any cursor over one node's output,
// advanced one element at a time by the sequential evaluator. Boxing to
// any at this one boundary keeps the graph arena non-generic while every
// seqBuilder implementation still works in its own concrete element type
// internally.
type seqStage interface {
	Next() (any, bool, error)
}

// seqRuntime is threaded down through a sequential build/run so every
// stage can read shared run-scoped state without a global.
type seqRuntime struct {
	ctx      context.Context
	run      *runState
	mets     *metricsRegistry
	sides    *resolvedSides
	hashSeed uint64
}

// seqBuilder is implemented by every edge type that can run under the
// sequential strategy. ins holds one already-built stage per edge input,
// in edge.inputs() order.
type seqBuilder interface {
	buildSequential(rt *seqRuntime, ins []seqStage) (seqStage, error)
}

// buildSeqStage recursively builds the stage for node n by first building
// every stage it depends on. Shared upstream nodes (fan-out) are rebuilt
// independently for each consumer rather than memoized, trading duplicate
// recomputation for a simpler, always-correct pull chain; branching
// pipelines are uncommon enough in this domain that this is the right
// tradeoff over a buffering multiplexer.
func (p *Pipeline) buildSeqStage(rt *seqRuntime, n nodeIndex) (seqStage, error) {
	nd := p.g.node(n)
	e := p.g.edge(nd.parentEdge())

	inputs := e.inputs()
	ins := make([]seqStage, len(inputs))
	for i, in := range inputs {
		s, err := p.buildSeqStage(rt, in)
		if err != nil {
			return nil, err
		}
		ins[i] = s
	}

	sb, ok := e.(seqBuilder)
	if !ok {
		return nil, &InvalidArgument{Detail: "operator " + e.name() + " has no sequential implementation"}
	}
	return sb.buildSequential(rt, ins)
}

// parShard is one worker partition's materialized slice of boxed
// elements. The parallel strategy works shard-at-a-time rather than
// element-at-a-time because shuffles (groupByKey, combinePerKey, joins)
// need every element of a partition available before they can emit.
type parShard = []any

// parRuntime is the parallel-strategy analogue of seqRuntime, additionally
// carrying the configured partition count and the deterministic hash
// seed used to assign keys to shards.
type parRuntime struct {
	ctx        context.Context
	run        *runState
	mets       *metricsRegistry
	sides      *resolvedSides
	partitions int
	hashSeed   uint64
}

// parBuilder is implemented by every edge type that can run under the
// parallel strategy. ins holds one already-built set of shards per edge
// input. A builder returns a new set of shards, which may repartition
// (e.g. a shuffle keyed by a different key than its input).
type parBuilder interface {
	buildParallel(rt *parRuntime, ins [][]parShard) ([]parShard, error)
}

func (p *Pipeline) buildParStage(rt *parRuntime, n nodeIndex) ([]parShard, error) {
	nd := p.g.node(n)
	e := p.g.edge(nd.parentEdge())

	inputs := e.inputs()
	ins := make([][]parShard, len(inputs))
	for i, in := range inputs {
		s, err := p.buildParStage(rt, in)
		if err != nil {
			return nil, err
		}
		ins[i] = s
	}

	pb, ok := e.(parBuilder)
	if !ok {
		return nil, &InvalidArgument{Detail: "operator " + e.name() + " has no parallel implementation"}
	}
	return pb.buildParallel(rt, ins)
}
