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

// Package synthetic produces elements for load and scale testing,
// adapted from transforms/io/synthetic/synthetic.go's configurable
// per-element/per-bundle delay and fan-out knobs.
package synthetic

import (
	"context"
	"iter"
	"math/rand"
	"time"

	"github.com/nhubbard/ironbeam"
)

// Config controls a synthetic source's shape and pacing.
type Config struct {
	// Count is the number of input records to generate.
	Count int
	// PerElementDelay sleeps before yielding each element.
	PerElementDelay time.Duration
	// OutputRecordsPerInputRecord repeats each generated element this
	// many times (0 behaves as 1).
	OutputRecordsPerInputRecord uint
	// OutputFilterRatio drops a generated element with this probability,
	// in [0, 1]: 0 keeps every element and 1 drops every element.
	OutputFilterRatio float64
	// Seed seeds the filter-ratio RNG for reproducible test runs.
	Seed int64
}

// Source returns a Producer generating Config.Count elements via gen
// (called with the element's index in [0, Count)), applying the
// configured per-element delay, fan-out and filtering.
func Source[T any](cfg Config, gen func(i int) T) ironbeam.Producer[T] {
	return func(ctx context.Context) iter.Seq2[T, error] {
		return func(yield func(T, error) bool) {
			rng := rand.New(rand.NewSource(cfg.Seed))
			repeat := cfg.OutputRecordsPerInputRecord
			if repeat == 0 {
				repeat = 1
			}
			for i := 0; i < cfg.Count; i++ {
				select {
				case <-ctx.Done():
					var zero T
					yield(zero, ctx.Err())
					return
				default:
				}
				if cfg.PerElementDelay > 0 {
					time.Sleep(cfg.PerElementDelay)
				}
				if cfg.OutputFilterRatio > 0 && rng.Float64() < cfg.OutputFilterRatio {
					continue
				}
				v := gen(i)
				for r := uint(0); r < repeat; r++ {
					if !yield(v, nil) {
						return
					}
				}
			}
		}
	}
}
