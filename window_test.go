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
	"time"
)

type timedEvent struct {
	At    time.Time
	Value int
}

func TestWindowFixedAssignsNonOverlappingBuckets(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []timedEvent{
		{At: base, Value: 1},
		{At: base.Add(30 * time.Second), Value: 2},
		{At: base.Add(90 * time.Second), Value: 3},
	}
	src := Source(p, sliceProducer(events))
	keyed := Map(src, func(e timedEvent) KV[int, timedEvent] { return KV[int, timedEvent]{Key: 0, Value: e} })
	windowed := WindowFixed(keyed, time.Minute, func(kv KV[int, timedEvent]) time.Time { return kv.Value.At })
	windowedInt := Map(windowed, func(w Windowed[KV[int, timedEvent]]) Windowed[KV[int, int]] {
		return Windowed[KV[int, int]]{Window: w.Window, Value: KV[int, int]{Key: w.Value.Key, Value: w.Value.Value.Value}}
	})
	byWindowKey := KeyByWindow(windowedInt)
	sums := CombinePerKey(byWindowKey, Sum[int]())

	got, err := CollectSequential(context.Background(), sums)
	if err != nil {
		t.Fatalf("CollectSequential: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 one-minute windows, got %d: %v", len(got), got)
	}
	total := 0
	for _, kv := range got {
		total += kv.Value
	}
	if total != 6 {
		t.Fatalf("expected sums to add up to 6 across windows, got %d", total)
	}
}

func TestWindowSlidingAssignsOverlappingWindows(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	src := Source(p, sliceProducer([]timedEvent{{At: base.Add(45 * time.Second), Value: 1}}))
	windowed := WindowSliding(src, time.Minute, 30*time.Second, func(e timedEvent) time.Time { return e.At })

	got, err := CollectSequential(context.Background(), windowed)
	if err != nil {
		t.Fatalf("CollectSequential: %v", err)
	}
	if len(got) < 2 {
		t.Fatalf("expected an event 45s in to fall in at least 2 overlapping 1-minute/30s-period windows, got %d", len(got))
	}
	for _, w := range got {
		if !w.Window.Contains(base.Add(45 * time.Second)) {
			t.Fatalf("window %v does not actually contain the event's timestamp", w.Window)
		}
	}
}

func TestWindowFixedRejectsNonPositiveDuration(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	src := Source(p, sliceProducer([]timedEvent{}))

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected a panic for a zero window duration, got none")
		}
		if _, ok := r.(*InvalidArgument); !ok {
			t.Fatalf("expected *InvalidArgument, got %T: %v", r, r)
		}
	}()
	WindowFixed(src, 0, func(e timedEvent) time.Time { return e.At })
}

func TestWindowSlidingRejectsNonPositiveSize(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	src := Source(p, sliceProducer([]timedEvent{}))

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected a panic for a zero window size, got none")
		}
		if _, ok := r.(*InvalidArgument); !ok {
			t.Fatalf("expected *InvalidArgument, got %T: %v", r, r)
		}
	}()
	WindowSliding(src, 0, 0, func(e timedEvent) time.Time { return e.At })
}

func TestFixedWindowForIsDeterministic(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 30, 0, time.UTC)
	a := fixedWindowFor(base, time.Minute)
	b := fixedWindowFor(base, time.Minute)
	if a != b {
		t.Fatalf("fixedWindowFor should be a pure function of (ts, duration): got %v and %v", a, b)
	}
	if !a.Contains(base) {
		t.Fatalf("window %v does not contain its own assignment timestamp %v", a, base)
	}
}

func TestKeyByWindowGroupsSeparatelyPerWindowAndKey(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []KV[string, timedEvent]{
		{Key: "x", Value: timedEvent{At: base, Value: 1}},
		{Key: "x", Value: timedEvent{At: base.Add(90 * time.Second), Value: 2}},
		{Key: "y", Value: timedEvent{At: base, Value: 3}},
	}
	src := Source(p, sliceProducer(events))
	windowed := Map(src, func(kv KV[string, timedEvent]) Windowed[KV[string, int]] {
		return Windowed[KV[string, int]]{Window: fixedWindowFor(kv.Value.At, time.Minute), Value: KV[string, int]{Key: kv.Key, Value: kv.Value.Value}}
	})
	byWindowKey := KeyByWindow(windowed)
	counts := CombinePerKey(byWindowKey, Count[int]())

	got, err := CollectSequential(context.Background(), counts)
	if err != nil {
		t.Fatalf("CollectSequential: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 distinct (window, key) buckets, got %d: %v", len(got), got)
	}
	sort.Slice(got, func(i, j int) bool { return got[i].Key.Key < got[j].Key.Key })
}
