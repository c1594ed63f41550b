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
	"fmt"
	"iter"
)

// typedNext type-asserts the boxed output of an upstream seqStage back to
// T, the one place the sequential evaluator crosses back out of `any`
// into the concrete element type an edge builder actually works in.
func typedNext[T any](s seqStage) (T, bool, error) {
	v, ok, err := s.Next()
	if err != nil || !ok {
		var zero T
		return zero, ok, err
	}
	t, assertOk := v.(T)
	if !assertOk {
		var zero T
		return zero, false, &TypeMismatch{Want: typeNameOf[T](), Got: typeNameOfAny(v)}
	}
	return t, true, nil
}

func typeNameOf[T any]() string {
	var zero T
	return typeNameOfAny(zero)
}

func typeNameOfAny(v any) string {
	return fmt.Sprintf("%T", v)
}

// ---- source -------------------------------------------------------------

type sourceSeqStage[T any] struct {
	next func() (T, bool, error)
	stop func()
	rt   *seqRuntime
	name string
	n    int
}

func (s *sourceSeqStage[T]) Next() (any, bool, error) {
	if err := s.maybeCheck(); err != nil {
		return nil, false, err
	}
	v, ok, err := s.next()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	s.n++
	s.rt.mets.add(s.name, metricElementsProcessed, 1)
	return v, true, nil
}

func (s *sourceSeqStage[T]) maybeCheck() error {
	if s.rt.run == nil || s.n%s.rt.run.batchSize != 0 {
		return nil
	}
	return s.rt.run.checkBetweenBatches()
}

func (e *edgeSource[T]) buildSequential(rt *seqRuntime, _ []seqStage) (seqStage, error) {
	seq := e.prod(rt.ctx)
	next, stop := iter.Pull2(seq)
	context.AfterFunc(rt.ctx, stop)
	return &sourceSeqStage[T]{
		name: e.nm,
		rt:   rt,
		next: func() (T, bool, error) {
			v, err, ok := next()
			if !ok {
				return v, false, nil
			}
			if err != nil {
				return v, false, err
			}
			return v, true, nil
		},
		stop: stop,
	}, nil
}

// ---- map ------------------------------------------------------------------

type fnSeqStage[O any] struct {
	next func() (O, bool, error)
}

func (s *fnSeqStage[O]) Next() (any, bool, error) {
	v, ok, err := s.next()
	if err != nil || !ok {
		return nil, ok, err
	}
	return v, true, nil
}

func (e *edgeMap[I, O]) buildSequential(rt *seqRuntime, ins []seqStage) (seqStage, error) {
	up := ins[0]
	n := 0
	return &fnSeqStage[O]{next: func() (O, bool, error) {
		if rt.run != nil && n%rt.run.batchSize == 0 {
			if err := rt.run.checkBetweenBatches(); err != nil {
				var zero O
				return zero, false, err
			}
		}
		v, ok, err := typedNext[I](up)
		if err != nil || !ok {
			var zero O
			return zero, ok, err
		}
		n++
		out, cerr := callUser(e.nm, func() O { return e.fn(v) })
		if cerr != nil {
			var zero O
			return zero, false, cerr
		}
		rt.mets.add(e.nm, metricElementsProcessed, 1)
		return out, true, nil
	}}, nil
}

// ---- filter ---------------------------------------------------------------

func (e *edgeFilter[T]) buildSequential(rt *seqRuntime, ins []seqStage) (seqStage, error) {
	up := ins[0]
	n := 0
	return &fnSeqStage[T]{next: func() (T, bool, error) {
		for {
			if rt.run != nil && n%rt.run.batchSize == 0 {
				if err := rt.run.checkBetweenBatches(); err != nil {
					var zero T
					return zero, false, err
				}
			}
			v, ok, err := typedNext[T](up)
			if err != nil || !ok {
				var zero T
				return zero, ok, err
			}
			n++
			keep, cerr := callUser(e.nm, func() bool { return e.pred(v) })
			if cerr != nil {
				var zero T
				return zero, false, cerr
			}
			if keep {
				rt.mets.add(e.nm, metricElementsProcessed, 1)
				return v, true, nil
			}
			rt.mets.add(e.nm, metricElementsFiltered, 1)
		}
	}}, nil
}

// ---- flat map ---------------------------------------------------------

func (e *edgeFlatMap[I, O]) buildSequential(rt *seqRuntime, ins []seqStage) (seqStage, error) {
	up := ins[0]
	n := 0
	var buf []O
	bi := 0
	return &fnSeqStage[O]{next: func() (O, bool, error) {
		for {
			if bi < len(buf) {
				v := buf[bi]
				bi++
				return v, true, nil
			}
			if rt.run != nil && n%rt.run.batchSize == 0 {
				if err := rt.run.checkBetweenBatches(); err != nil {
					var zero O
					return zero, false, err
				}
			}
			v, ok, err := typedNext[I](up)
			if err != nil || !ok {
				var zero O
				return zero, false, err
			}
			n++
			var cerr error
			buf, cerr = callUser(e.nm, func() []O { return e.fn(v) })
			if cerr != nil {
				var zero O
				return zero, false, cerr
			}
			bi = 0
			rt.mets.add(e.nm, metricElementsProcessed, 1)
		}
	}}, nil
}

// ---- map batches --------------------------------------------------------

func (e *edgeMapBatches[I, O]) buildSequential(rt *seqRuntime, ins []seqStage) (seqStage, error) {
	up := ins[0]
	n := 0
	var out []O
	oi := 0
	done := false
	return &fnSeqStage[O]{next: func() (O, bool, error) {
		for {
			if oi < len(out) {
				v := out[oi]
				oi++
				return v, true, nil
			}
			if done {
				var zero O
				return zero, false, nil
			}
			if rt.run != nil {
				if err := rt.run.checkBetweenBatches(); err != nil {
					var zero O
					return zero, false, err
				}
			}
			batch := make([]I, 0, e.size)
			for len(batch) < e.size {
				v, ok, err := typedNext[I](up)
				if err != nil {
					var zero O
					return zero, false, err
				}
				if !ok {
					done = true
					break
				}
				batch = append(batch, v)
				n++
			}
			if len(batch) == 0 {
				var zero O
				return zero, false, nil
			}
			var cerr error
			out, cerr = callUser(e.nm, func() []O { return e.fn(batch) })
			if cerr != nil {
				var zero O
				return zero, false, cerr
			}
			oi = 0
			rt.mets.add(e.nm, metricElementsProcessed, int64(len(batch)))
		}
	}}, nil
}
