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
	"sync"
	"sync/atomic"
)

// metricsRegistry holds named atomic counters. The executors record
// elements_processed, elements_filtered and combiner_merges per node name,
// and wall_time_nanos once per run under the "pipeline" scope;
// NewPipeline records config.unknown_option. No executor records
// shuffle_bytes, and wall time is not measured per node.
type metricsRegistry struct {
	mu       sync.Mutex
	counters map[string]*atomic.Int64
}

func newMetricsRegistry() *metricsRegistry {
	return &metricsRegistry{counters: make(map[string]*atomic.Int64)}
}

func (r *metricsRegistry) counter(name string) *atomic.Int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.counters[name]
	if !ok {
		c = &atomic.Int64{}
		r.counters[name] = c
	}
	return c
}

func (r *metricsRegistry) add(node, metric string, delta int64) {
	r.counter(fmt.Sprintf("%s.%s", node, metric)).Add(delta)
}

// Snapshot returns a point-in-time copy of every counter, keyed
// "<node>.<metric>".
func (r *metricsRegistry) Snapshot() map[string]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int64, len(r.counters))
	for k, v := range r.counters {
		out[k] = v.Load()
	}
	return out
}

const (
	metricElementsProcessed = "elements_processed"
	metricElementsFiltered  = "elements_filtered"
	metricCombinerMerges    = "combiner_merges"
	metricShuffleBytes      = "shuffle_bytes"
	metricWallTimeNanos     = "wall_time_nanos"
	metricUnknownOption     = "config.unknown_option"
)
