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
)

func joinFixtures(p *Pipeline) (Handle[KV[string, string]], Handle[KV[string, int]]) {
	left := Source(p, sliceProducer([]KV[string, string]{
		{Key: "a", Value: "apple"},
		{Key: "b", Value: "banana"},
		{Key: "a", Value: "apricot"},
	}), Name("left"))
	right := Source(p, sliceProducer([]KV[string, int]{
		{Key: "a", Value: 1},
		{Key: "c", Value: 3},
	}), Name("right"))
	return left, right
}

func TestJoinInnerSequential(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	left, right := joinFixtures(p)
	joined := JoinInner(left, right)

	got, err := CollectSequential(context.Background(), joined)
	if err != nil {
		t.Fatalf("CollectSequential: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matched rows for key a, got %d: %v", len(got), got)
	}
	for _, kv := range got {
		if kv.Key != "a" || kv.Value.Right != 1 || !kv.Value.HasLeft || !kv.Value.HasRight {
			t.Fatalf("unexpected inner join row: %+v", kv)
		}
	}
}

func TestJoinLeftKeepsUnmatchedLeft(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	left, right := joinFixtures(p)
	joined := JoinLeft(left, right)

	got, err := CollectSequential(context.Background(), joined)
	if err != nil {
		t.Fatalf("CollectSequential: %v", err)
	}
	var bRow *KV[string, JoinResult[string, int]]
	for i := range got {
		if got[i].Key == "b" {
			bRow = &got[i]
		}
	}
	if bRow == nil {
		t.Fatalf("expected unmatched left key b to survive a left join, got %v", got)
	}
	if bRow.Value.HasRight {
		t.Fatalf("unmatched left row should have HasRight=false, got %+v", bRow.Value)
	}
}

func TestJoinFullKeepsBothUnmatchedSides(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	left, right := joinFixtures(p)
	joined := JoinFull(left, right)

	got, err := CollectSequential(context.Background(), joined)
	if err != nil {
		t.Fatalf("CollectSequential: %v", err)
	}
	keys := map[string]bool{}
	for _, kv := range got {
		keys[kv.Key] = true
	}
	for _, want := range []string{"a", "b", "c"} {
		if !keys[want] {
			t.Fatalf("expected key %q to appear in a full join, got keys %v", want, keys)
		}
	}
}

func TestJoinInnerParallelMatchesSequential(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Parallelism = 3
	p := NewPipeline(cfg)
	left, right := joinFixtures(p)
	joined := JoinInner(left, right)

	got, err := CollectParallel(context.Background(), joined)
	if err != nil {
		t.Fatalf("CollectParallel: %v", err)
	}
	sort.Slice(got, func(i, j int) bool { return got[i].Value.Left < got[j].Value.Left })
	if len(got) != 2 {
		t.Fatalf("expected 2 matched rows for key a, got %d: %v", len(got), got)
	}
}
