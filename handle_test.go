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
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestMapFilterFlatMapSequential(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	src := Source(p, sliceProducer([]int{1, 2, 3, 4, 5, 6}))
	evens := Filter(src, func(v int) bool { return v%2 == 0 })
	doubled := Map(evens, func(v int) int { return v * 2 })
	spread := FlatMap(doubled, func(v int) []int { return []int{v, v + 1} })

	got, err := CollectSequential(context.Background(), spread)
	if err != nil {
		t.Fatalf("CollectSequential: %v", err)
	}
	want := []int{4, 5, 8, 9, 12, 13}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestMapFilterFlatMapParallel(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	src := Source(p, sliceProducer([]int{1, 2, 3, 4, 5, 6}))
	evens := Filter(src, func(v int) bool { return v%2 == 0 })
	doubled := Map(evens, func(v int) int { return v * 2 })
	spread := FlatMap(doubled, func(v int) []int { return []int{v, v + 1} })

	got, err := CollectParallel(context.Background(), spread)
	if err != nil {
		t.Fatalf("CollectParallel: %v", err)
	}
	want := []int{4, 5, 8, 9, 12, 13}
	sort.Ints(got)
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestMapBatches(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	src := Source(p, sliceProducer([]int{1, 2, 3, 4, 5}))
	sums := MapBatches(src, 2, func(batch []int) []int {
		total := 0
		for _, v := range batch {
			total += v
		}
		return []int{total}
	})

	got, err := CollectSequential(context.Background(), sums)
	if err != nil {
		t.Fatalf("CollectSequential: %v", err)
	}
	want := []int{3, 7, 5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestMapBatchesRejectsNonPositiveSize(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	src := Source(p, sliceProducer([]int{1, 2, 3}))

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected a panic for a non-positive batch size, got none")
		}
		if _, ok := r.(*InvalidArgument); !ok {
			t.Fatalf("expected *InvalidArgument, got %T: %v", r, r)
		}
	}()
	MapBatches(src, 0, func(batch []int) []int { return batch })
}

func TestMapPanicBecomesUserFunctionError(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	src := Source(p, sliceProducer([]int{1, 2, 3}))
	boom := Map(src, func(v int) int {
		if v == 2 {
			panic("kaboom")
		}
		return v
	})

	_, err := CollectSequential(context.Background(), boom)
	if err == nil {
		t.Fatalf("expected an error from the panicking map function, got nil")
	}
	if _, ok := err.(*UserFunctionError); !ok {
		t.Fatalf("expected *UserFunctionError, got %T: %v", err, err)
	}
}

func TestMapPanicBecomesUserFunctionErrorParallel(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	src := Source(p, sliceProducer([]int{1, 2, 3}))
	boom := Map(src, func(v int) int {
		if v == 2 {
			panic("kaboom")
		}
		return v
	})

	_, err := CollectParallel(context.Background(), boom)
	if err == nil {
		t.Fatalf("expected an error from the panicking map function, got nil")
	}
	if _, ok := err.(*UserFunctionError); !ok {
		t.Fatalf("expected *UserFunctionError, got %T: %v", err, err)
	}
}
