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

// nodeIndex and edgeIndex are arena offsets, not pointers, so the graph
// can be copied or inspected without worrying about node identity beyond
// equality of these indices: two handles are equal iff their node
// indices are equal.
type nodeIndex int
type edgeIndex int

// node is the non-generic bookkeeping surface every typed node exposes
// to the graph arena. The element type itself never appears here: it
// lives only in the Go type parameter of the Handle[T] and edge*[...]
// values that reference this node, keeping a generic concrete type
// behind a non-generic interface.
type node interface {
	nodeID() nodeIndex
	parentEdge() edgeIndex
	typeName() string
}

type typedNode[T any] struct {
	index  nodeIndex
	parent edgeIndex
}

func (n *typedNode[T]) nodeID() nodeIndex      { return n.index }
func (n *typedNode[T]) parentEdge() edgeIndex  { return n.parent }
func (n *typedNode[T]) typeName() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

// edge is the non-generic bookkeeping surface for one registered
// operator. Execution is driven through the seqBuilder/parBuilder
// interfaces (exec_sequential.go, exec_parallel.go) that concrete edge
// types also implement.
type edge interface {
	edgeID() edgeIndex
	inputs() []nodeIndex
	outputs() []nodeIndex
	kind() string
	name() string
}

// graph is the append-only operator DAG owned by a Pipeline. Acyclicity
// is guaranteed by construction: every transformation call takes
// existing handles (referencing already-appended nodes) and appends a
// fresh node, so no back-edge can ever be formed.
type graph struct {
	nodes       []node
	edges       []edge
	consumers   map[nodeIndex][]edgeIndex
	checkpoints map[nodeIndex]string
}

func newGraph() *graph {
	return &graph{consumers: map[nodeIndex][]edgeIndex{}, checkpoints: map[nodeIndex]string{}}
}

func (g *graph) curNodeIndex() nodeIndex { return nodeIndex(len(g.nodes)) }
func (g *graph) curEdgeIndex() edgeIndex { return edgeIndex(len(g.edges)) }

// addConsumer records that the node at in is read by the edge at e.
// Neither executor reads this list: each rebuilds an upstream node's
// stage once per consuming edge (see executor.go).
func (g *graph) addConsumer(in nodeIndex, e edgeIndex) {
	g.consumers[in] = append(g.consumers[in], e)
}

func (g *graph) node(n nodeIndex) node { return g.nodes[n] }
func (g *graph) edge(e edgeIndex) edge { return g.edges[e] }

// register appends a new node fed by the given edge, returning the new
// node's index.
func (g *graph) register(e edge, n node) nodeIndex {
	g.edges = append(g.edges, e)
	g.nodes = append(g.nodes, n)
	return n.nodeID()
}
