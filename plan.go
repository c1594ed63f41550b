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
	"strings"
)

// PlanStep describes one node of a linearized execution chain, grounded
// on planner.rs's ExplainStep.
type PlanStep struct {
	Step        int
	Node        string
	Kind        string
	Description string
	Barrier     bool
	CostHint    int
}

// OptimizationHint names a rewrite the planner recognized as applicable
// but did not apply; ExecutionPlan reports these advisory rather than
// acting on them (see DESIGN.md).
type OptimizationHint struct {
	Description string
}

// ExecutionPlan is the result of Explain: the linear chain feeding a
// Handle, its barrier/cost breakdown, and any optimization opportunities
// the planner noticed along the way.
type ExecutionPlan struct {
	Steps               []PlanStep
	TotalOps            int
	BarrierOps          int
	StatelessOps        int
	SourceLen           int // 0 means unknown
	SuggestedPartitions int
	Hints               []OptimizationHint
}

func (p *ExecutionPlan) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "execution plan: %d steps, %d barrier, %d stateless\n", len(p.Steps), p.BarrierOps, p.StatelessOps)
	if p.SourceLen > 0 {
		fmt.Fprintf(&b, "source size: %d\n", p.SourceLen)
	}
	for _, s := range p.Steps {
		marker := ""
		if s.Barrier {
			marker = " [BARRIER]"
		}
		fmt.Fprintf(&b, "  %d. %s (%s)%s cost=%d\n", s.Step, s.Node, s.Kind, marker, s.CostHint)
		fmt.Fprintf(&b, "     %s\n", s.Description)
	}
	if p.SuggestedPartitions > 0 {
		fmt.Fprintf(&b, "suggested partitions: %d\n", p.SuggestedPartitions)
	}
	for _, h := range p.Hints {
		fmt.Fprintf(&b, "hint: %s\n", h.Description)
	}
	return b.String()
}

// stepCost maps each edge kind to a relative execution cost and whether
// it requires collecting all inputs before producing any output,
// grounded on planner.rs's per-node cost table.
func stepCost(kind string) (cost int, barrier bool) {
	switch kind {
	case "source":
		return 1, false
	case "filter":
		return 1, false
	case "map", "map_batches", "with_side":
		return 2, false
	case "flat_map":
		return 3, false
	case "group_by_key":
		return 100, true
	case "combine_per_key":
		return 80, true
	case "combine_globally":
		return 90, true
	case "join":
		return 150, true
	default:
		return 5, false
	}
}

// backwalkChain follows the single producing edge of each node back to a
// source, then reverses the result into source->terminal order, grounded
// on planner.rs's backwalk_linear. A join's second input branch is not
// walked, matching the original's find-first-predecessor behavior.
func backwalkChain(g *graph, terminal nodeIndex) []nodeIndex {
	var chain []nodeIndex
	cur := terminal
	for {
		chain = append(chain, cur)
		e := g.edge(g.node(cur).parentEdge())
		ins := e.inputs()
		if len(ins) == 0 {
			break
		}
		cur = ins[0]
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// suggestPartitions applies planner.rs's heuristic: target ~64k rows per
// partition, clamped to [parallelism, 8*parallelism].
func suggestPartitions(sourceLen, parallelism int) int {
	if sourceLen <= 0 {
		return 0
	}
	if parallelism <= 0 {
		parallelism = 1
	}
	const targetRowsPerPart = 64_000
	parts := (sourceLen + targetRowsPerPart - 1) / targetRowsPerPart
	lo, hi := parallelism, parallelism*8
	if parts < lo {
		parts = lo
	}
	if parts > hi {
		parts = hi
	}
	return parts
}

// Explain builds an ExecutionPlan describing the chain of operators that
// produce h, without running any of them. It is a read-only introspection
// aid grounded on planner.rs's build_plan/explain: a caller can print it
// to understand what a pipeline will do and roughly how expensive each
// stage is expected to be.
func Explain[T any](h Handle[T]) *ExecutionPlan {
	p := h.p
	chain := backwalkChain(p.g, h.node)

	plan := &ExecutionPlan{}
	runStart := -1
	flushRun := func(end int) {
		if runStart < 0 {
			return
		}
		if n := end - runStart; n > 1 {
			plan.Hints = append(plan.Hints, OptimizationHint{
				Description: fmt.Sprintf("steps %d-%d are all stateless and could be fused into a single pass", runStart+1, end),
			})
		}
		runStart = -1
	}

	for i, idx := range chain {
		e := p.g.edge(p.g.node(idx).parentEdge())
		cost, barrier := stepCost(e.kind())
		plan.TotalOps++
		if barrier {
			plan.BarrierOps++
			flushRun(i)
		} else if e.kind() != "source" {
			plan.StatelessOps++
			if runStart < 0 {
				runStart = i
			}
		}

		if e.kind() == "source" {
			if sl, ok := e.(interface{ lenHint() int }); ok {
				plan.SourceLen = sl.lenHint()
			}
		}
		if i > 0 {
			prevKind := p.g.edge(p.g.node(chain[i-1]).parentEdge()).kind()
			if prevKind == "group_by_key" && (e.kind() == "combine_per_key" || e.kind() == "combine_globally") {
				plan.Hints = append(plan.Hints, OptimizationHint{
					Description: fmt.Sprintf("step %d groups by key immediately before step %d combines: the group could be lifted directly into the combine", i, i+1),
				})
			}
		}

		plan.Steps = append(plan.Steps, PlanStep{
			Step:        i + 1,
			Node:        e.name(),
			Kind:        e.kind(),
			Description: describeStep(e),
			Barrier:     barrier,
			CostHint:    cost,
		})
	}
	flushRun(len(chain))

	plan.SuggestedPartitions = suggestPartitions(plan.SourceLen, p.Config.Parallelism)
	return plan
}

func describeStep(e edge) string {
	switch e.kind() {
	case "source":
		return "read data from a producer"
	case "map":
		return "apply a one-to-one element transformation"
	case "filter":
		return "keep elements matching a predicate"
	case "flat_map":
		return "apply a one-to-many element transformation"
	case "map_batches":
		return "apply a transformation to fixed-size batches of elements"
	case "with_side":
		return "apply a transformation with a broadcast side input"
	case "group_by_key":
		return "group elements by key (barrier)"
	case "combine_per_key":
		return "combine values per key (barrier)"
	case "combine_globally":
		return "combine all values into one accumulator (barrier)"
	case "join":
		return "co-group two keyed collections (barrier)"
	default:
		return "apply operator " + e.kind()
	}
}
