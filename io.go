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
)

// Producer is the read side of the I/O adapter contract: a finite,
// lazily-pulled sequence of elements or errors. Adapters under io/
// return values of this shape; Source wraps one into a Handle.
type Producer[T any] func(ctx context.Context) iter.Seq2[T, error]

// Consumer is the write side of the I/O adapter contract: it drains a
// sequence, stopping at the first error either the sequence or the sink
// itself produces.
type Consumer[T any] func(ctx context.Context, in iter.Seq2[T, error]) error

// sliceProducer adapts an in-memory slice into a Producer, used by tests
// and by Checkpoint's replay path.
func sliceProducer[T any](items []T) Producer[T] {
	return func(ctx context.Context) iter.Seq2[T, error] {
		return func(yield func(T, error) bool) {
			for _, it := range items {
				select {
				case <-ctx.Done():
					var zero T
					yield(zero, &Cancelled{})
					return
				default:
				}
				if !yield(it, nil) {
					return
				}
			}
		}
	}
}
