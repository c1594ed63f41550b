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
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
)

// Pipeline is a process-local owner of an operator graph, a side-input
// registry, a metrics registry, and execution configuration. It is
// created empty, mutated only by transformation registration, and then
// consumed read-only by any number of independent executor runs.
type Pipeline struct {
	id     uuid.UUID
	g      *graph
	sides  *sideInputRegistry
	mets   *metricsRegistry
	Config Config
	log    *slog.Logger

	running atomic.Bool
}

// NewPipeline creates an empty pipeline with the given configuration.
func NewPipeline(cfg Config) *Pipeline {
	cfg = cfg.normalized()
	mets := newMetricsRegistry()
	if cfg.UnknownOptions > 0 {
		mets.counter(metricUnknownOption).Add(int64(cfg.UnknownOptions))
	}
	return &Pipeline{
		id:     uuid.New(),
		g:      newGraph(),
		sides:  newSideInputRegistry(),
		mets:   mets,
		Config: cfg,
		log:    slog.Default().With(slog.String("pipeline", "")),
	}
}

// ID returns the pipeline's process-local identifier.
func (p *Pipeline) ID() uuid.UUID { return p.id }

// Metrics returns a snapshot of every counter recorded by runs of this
// pipeline so far.
func (p *Pipeline) Metrics() map[string]int64 { return p.mets.Snapshot() }

// checkLocked returns PipelineLocked if a run is currently in progress;
// called by every transformation-registering function before it mutates
// the graph, since the operator graph is frozen at run start.
func (p *Pipeline) checkLocked() error {
	if p.running.Load() {
		return &PipelineLocked{}
	}
	return nil
}

// lock marks the pipeline as running for the duration of fn, guaranteeing
// the graph cannot be mutated concurrently with execution, and unlocking
// even if fn panics.
func (p *Pipeline) lock(fn func() error) error {
	if !p.running.CompareAndSwap(false, true) {
		return &PipelineLocked{}
	}
	defer p.running.Store(false)
	return fn()
}

// checkHandle validates that h belongs to p, returning CrossPipeline
// otherwise.
func checkHandle[T any](p *Pipeline, h Handle[T]) error {
	if h.p != p {
		return &CrossPipeline{}
	}
	return nil
}

// mustUnlocked panics with PipelineLocked if p currently has a run in
// progress. Every transformation constructor calls this before mutating
// p's graph, since the graph is frozen for the duration of a run.
func (p *Pipeline) mustUnlocked() {
	if err := p.checkLocked(); err != nil {
		panic(err)
	}
}

// mustSamePipeline panics with CrossPipeline if h does not belong to p.
// Constructors taking more than one Handle (newJoin) or a value minted
// against a specific pipeline (WithSide's SideInput) call this for every
// handle beyond the one p was already derived from.
func mustSamePipeline[T any](p *Pipeline, h Handle[T]) {
	if err := checkHandle(p, h); err != nil {
		panic(err)
	}
}
