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

	"github.com/pkg/errors"
)

// TypeMismatch is returned at run time when an executor unboxes an
// element whose dynamic type is not the type the consuming edge was built
// for. No constructor returns it: Handle's type parameter already rejects
// such a graph at compile time.
type TypeMismatch struct {
	Want, Got string
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: want %s, got %s", e.Want, e.Got)
}

// CrossPipeline is the panic value raised when a transformation
// constructor is given a Handle or SideInput minted from a different
// Pipeline than the one it is being registered against.
type CrossPipeline struct{}

func (e *CrossPipeline) Error() string { return "handle belongs to a different pipeline" }

// InvalidArgument is the panic value raised for construction-time
// argument validation failures, such as k <= 0 for TopKPerKey or a zero
// window size.
type InvalidArgument struct {
	Detail string
}

func (e *InvalidArgument) Error() string { return "invalid argument: " + e.Detail }

// UserFunctionError wraps a panic or error raised by a user-supplied
// function during execution. Node is the display name of the failing
// operator.
type UserFunctionError struct {
	Node  string
	cause error
}

func (e *UserFunctionError) Error() string {
	return fmt.Sprintf("user function in %q failed: %v", e.Node, e.cause)
}

func (e *UserFunctionError) Cause() error { return errors.Cause(e.cause) }
func (e *UserFunctionError) Unwrap() error { return e.cause }

func newUserFunctionError(node string, cause error) error {
	return &UserFunctionError{Node: node, cause: errors.WithStack(cause)}
}

// IoError wraps a failure from a source or sink adapter.
type IoError struct {
	Node, Path string
	cause      error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("io error in %q at %q: %v", e.Node, e.Path, e.cause)
}

func (e *IoError) Cause() error  { return errors.Cause(e.cause) }
func (e *IoError) Unwrap() error { return e.cause }

func newIoError(node, path string, cause error) error {
	return &IoError{Node: node, Path: path, cause: errors.WithStack(cause)}
}

// callUser invokes fn, recovering a panic and converting it into a
// UserFunctionError so one misbehaving user callback cannot crash an
// entire run.
func callUser[T any](node string, fn func() T) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			err = newUserFunctionError(node, cause)
		}
	}()
	result = fn()
	return result, nil
}

// EmptyAggregation is returned by Min, Max, and AverageF64 when applied
// to an empty key or an empty global collection.
type EmptyAggregation struct{}

func (e *EmptyAggregation) Error() string { return "aggregation over empty input" }

// Cancelled is returned when a run is aborted via its cancellation token.
type Cancelled struct{}

func (e *Cancelled) Error() string { return "run cancelled" }

// DeadlineExceeded is returned when a run's deadline elapses.
type DeadlineExceeded struct{}

func (e *DeadlineExceeded) Error() string { return "run deadline exceeded" }

// PipelineLocked indicates a pipeline already has a run in progress:
// CollectSequential and CollectParallel return it as an error when called
// concurrently with another run, and a transformation constructor panics
// with it if called while a run is in progress.
type PipelineLocked struct{}

func (e *PipelineLocked) Error() string { return "pipeline is locked: a run is in progress" }

// CheckpointCorrupt is returned when a checkpoint's manifest or data blob
// cannot be parsed, or the data blob holds a different number of elements
// than the manifest's count. Checkpoints carry no digest, so corrupted
// data that still parses to the declared count is not detected.
type CheckpointCorrupt struct {
	Path string
	cause error
}

func (e *CheckpointCorrupt) Error() string {
	return fmt.Sprintf("checkpoint at %q is corrupt: %v", e.Path, e.cause)
}

func (e *CheckpointCorrupt) Cause() error  { return e.cause }
func (e *CheckpointCorrupt) Unwrap() error { return e.cause }

// ResourceExhausted describes a buffered group (group_by_key, join,
// combine_per_key) exceeding a memory threshold. Neither executor returns
// it: Config.SpillThresholdBytes is not read, and buffered groups are held
// in memory without a size limit.
type ResourceExhausted struct {
	Detail string
}

func (e *ResourceExhausted) Error() string { return "resource exhausted: " + e.Detail }
