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

// Package ironbeam is a batch data-processing framework for typed,
// declarative pipelines over in-memory or file-backed collections.
//
// A [Pipeline] owns a lazy directed-acyclic operator graph. Transformation
// calls such as [Map], [Filter] and [GroupByKey] each append one node to
// that graph and return a fresh typed [Handle]; nothing is evaluated until
// an execution entry point ([CollectSequential], [CollectParallel],
// [RunToSink]) is called on a handle.
//
// Two execution strategies are available: a single-threaded pull-based
// evaluator, and a partitioned worker pool that shuffles keyed data by a
// seeded hash of the key. Both strategies agree on output as a multiset
// for commutative aggregation, and define a total order otherwise (input
// order sequentially, (bucket, key) order in parallel).
//
// This package intentionally does not support unbounded/streaming
// execution or cross-machine distribution: every collection is a finite
// sequence, and "parallel" means a worker pool within one process.
package ironbeam
