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
	"time"
)

// RunOptions configures one execution entry point call: a cancellation
// token and/or a deadline, checked cooperatively at batch boundaries
// sized by Config.BatchSize.
type RunOptions struct {
	Deadline time.Time
}

// runState is threaded through an executor run. Sequential element-wise
// stages call checkBetweenBatches every BatchSize elements, sequential
// keyed stages on every element they buffer, and each parallel shard
// worker once before it starts; it never blocks, only observes ctx and
// the deadline.
type runState struct {
	ctx       context.Context
	deadline  time.Time
	batchSize int
}

func newRunState(ctx context.Context, opts RunOptions, cfg Config) *runState {
	return &runState{ctx: ctx, deadline: opts.Deadline, batchSize: cfg.BatchSize}
}

// checkBetweenBatches returns Cancelled or DeadlineExceeded if this run
// should stop. How often it is called depends on the stage (see
// runState), so a stop is observed within one batch in sequential
// element-wise stages and only at the next shard in the parallel strategy.
func (r *runState) checkBetweenBatches() error {
	select {
	case <-r.ctx.Done():
		return &Cancelled{}
	default:
	}
	if !r.deadline.IsZero() && time.Now().After(r.deadline) {
		return &DeadlineExceeded{}
	}
	return nil
}
