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

package jsonl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nhubbard/ironbeam"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.jsonl")
	want := []record{{Name: "a", Count: 1}, {Name: "b", Count: 2}}

	consume := Write[record](path)
	if err := consume(ctx, seqOf(want)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var got []record
	produce := Read[record](path)
	for v, err := range produce(ctx) {
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		got = append(got, v)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected round trip (-want +got):\n%s", diff)
	}
}

func TestReadMissingFileYieldsError(t *testing.T) {
	ctx := context.Background()
	produce := Read[record](filepath.Join(t.TempDir(), "does-not-exist.jsonl"))
	sawErr := false
	for _, err := range produce(ctx) {
		if err != nil {
			sawErr = true
		}
	}
	if !sawErr {
		t.Fatalf("expected an error reading a missing file")
	}
}

func TestReadSkipsBlankLines(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sparse.jsonl")
	content := "\n{\"name\":\"only\",\"count\":1}\n\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var got []record
	for v, err := range Read[record](path)(ctx) {
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		got = append(got, v)
	}
	if len(got) != 1 || got[0].Name != "only" {
		t.Fatalf("got %v", got)
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

var _ func(string) ironbeam.Producer[record] = Read[record]
