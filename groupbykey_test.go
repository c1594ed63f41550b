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

func TestGroupByKeySequentialHashOrder(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPipeline(cfg)
	src := Source(p, sliceProducer([]KV[string, int]{
		{Key: "b", Value: 1},
		{Key: "a", Value: 2},
		{Key: "b", Value: 3},
		{Key: "c", Value: 4},
	}))
	grouped := GroupByKey(src)

	got, err := CollectSequential(context.Background(), grouped)
	if err != nil {
		t.Fatalf("CollectSequential: %v", err)
	}

	values := map[string][]int{"b": {1, 3}, "a": {2}, "c": {4}}
	order := []string{"b", "a", "c"}
	sortKeysByHash(cfg.DeterministicHashSeed, order)
	want := make([]KV[string, []int], len(order))
	for i, k := range order {
		want[i] = KV[string, []int]{Key: k, Value: values[k]}
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("groups were not emitted in hash order (-want +got):\n%s", diff)
	}
}

func TestGroupByKeyParallelDeterministicOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Parallelism = 4
	cfg.DeterministicHashSeed = 7
	p := NewPipeline(cfg)
	src := Source(p, sliceProducer([]KV[string, int]{
		{Key: "b", Value: 1},
		{Key: "a", Value: 2},
		{Key: "b", Value: 3},
		{Key: "c", Value: 4},
		{Key: "d", Value: 5},
	}))
	grouped := GroupByKey(src)

	first, err := CollectParallel(context.Background(), grouped)
	if err != nil {
		t.Fatalf("first CollectParallel: %v", err)
	}
	second, err := CollectParallel(context.Background(), grouped)
	if err != nil {
		t.Fatalf("second CollectParallel: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("parallel group order was not deterministic across runs (-first +second):\n%s", diff)
	}

	byKey := map[string][]int{}
	for _, kv := range first {
		byKey[kv.Key] = kv.Value
	}
	sort.Ints(byKey["b"])
	if diff := cmp.Diff([]int{1, 3}, byKey["b"]); diff != "" {
		t.Fatalf("unexpected values grouped under key b (-want +got):\n%s", diff)
	}
}

func TestKeyByAndMapValues(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	src := Source(p, sliceProducer([]string{"aa", "b", "ccc"}))
	keyed := KeyBy(src, func(s string) int { return len(s) })
	doubled := MapValues(keyed, func(s string) string { return s + s })

	got, err := CollectSequential(context.Background(), doubled)
	if err != nil {
		t.Fatalf("CollectSequential: %v", err)
	}
	want := []KV[int, string]{
		{Key: 2, Value: "aaaa"},
		{Key: 1, Value: "bb"},
		{Key: 3, Value: "cccccc"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
}
