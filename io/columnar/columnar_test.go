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

package columnar

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteThenReadRoundTripAcrossMultipleBatches(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "batches.bin")
	want := make([]int, 0, 25)
	for i := 0; i < 25; i++ {
		want = append(want, i)
	}

	if err := Write[int](path, 10)(ctx, seqOf(want)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var got []int
	for v, err := range Read[int](path, 10)(ctx) {
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		got = append(got, v)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected round trip (-want +got):\n%s", diff)
	}
}

func TestWriteDefaultsBatchSizeWhenNonPositive(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "default-batch.bin")
	want := []string{"a", "b", "c"}

	if err := Write[string](path, 0)(ctx, seqOf(want)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var got []string
	for v, err := range Read[string](path, 10)(ctx) {
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		got = append(got, v)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestReadEmptyFileYieldsNothing(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "empty.bin")
	if err := Write[int](path, 10)(ctx, seqOf[int](nil)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	count := 0
	for _, err := range Read[int](path, 10)(ctx) {
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		count++
	}
	if count != 0 {
		t.Fatalf("expected no elements from an empty write, got %d", count)
	}
}

func seqOf[T any](vs []T) func(func(T, error) bool) {
	return func(yield func(T, error) bool) {
		for _, v := range vs {
			if !yield(v, nil) {
				return
			}
		}
	}
}
