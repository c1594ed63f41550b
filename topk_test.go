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
)

func TestTopKPerKeySequential(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	src := Source(p, sliceProducer([]KV[string, int]{
		{Key: "x", Value: 3},
		{Key: "x", Value: 9},
		{Key: "x", Value: 1},
		{Key: "y", Value: 5},
		{Key: "x", Value: 7},
	}))
	top2 := TopKPerKey(src, 2, func(a, b int) bool { return a < b })

	got, err := CollectSequential(context.Background(), top2)
	if err != nil {
		t.Fatalf("CollectSequential: %v", err)
	}
	byKey := map[string][]int{}
	for _, kv := range got {
		byKey[kv.Key] = kv.Value
	}
	if diff := cmp.Diff([]int{9, 7}, byKey["x"]); diff != "" {
		t.Fatalf("unexpected top-2 for key x (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{5}, byKey["y"]); diff != "" {
		t.Fatalf("unexpected top-2 for key y (-want +got):\n%s", diff)
	}
}

func TestTopKRejectsNonPositiveK(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected a panic for k <= 0, got none")
		}
		if _, ok := r.(*InvalidArgument); !ok {
			t.Fatalf("expected *InvalidArgument, got %T: %v", r, r)
		}
	}()
	TopK(0, func(a, b int) bool { return a < b })
}

func TestTopKPerKeyParallelMatchesSequential(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Parallelism = 3
	p := NewPipeline(cfg)
	src := Source(p, sliceProducer([]KV[string, int]{
		{Key: "x", Value: 3}, {Key: "x", Value: 9}, {Key: "x", Value: 1},
		{Key: "y", Value: 5}, {Key: "x", Value: 7}, {Key: "y", Value: 2},
	}))
	top2 := TopKPerKey(src, 2, func(a, b int) bool { return a < b })

	got, err := CollectParallel(context.Background(), top2)
	if err != nil {
		t.Fatalf("CollectParallel: %v", err)
	}
	sort.Slice(got, func(i, j int) bool { return got[i].Key < got[j].Key })
	byKey := map[string][]int{}
	for _, kv := range got {
		byKey[kv.Key] = kv.Value
	}
	if diff := cmp.Diff([]int{9, 7}, byKey["x"]); diff != "" {
		t.Fatalf("unexpected top-2 for key x (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{5, 2}, byKey["y"]); diff != "" {
		t.Fatalf("unexpected top-2 for key y (-want +got):\n%s", diff)
	}
}
