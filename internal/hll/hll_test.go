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

package hll

import (
	"math"
	"testing"

	"github.com/cespare/xxhash/v2"
)

func hashOf(s string) uint64 { return xxhash.Sum64String(s) }

func TestEstimateApproximatesKnownCardinality(t *testing.T) {
	sk := New(14)
	const n = 10000
	for i := 0; i < n; i++ {
		sk.AddHash(hashOf(string(rune(i)) + "-distinct"))
	}
	est := sk.Estimate()
	if math.Abs(est-n)/n > 0.1 {
		t.Fatalf("expected estimate within 10%% of %d, got %f", n, est)
	}
}

func TestAddHashOfSameElementRepeatedlyDoesNotInflateEstimate(t *testing.T) {
	sk := New(10)
	h := hashOf("repeated")
	for i := 0; i < 1000; i++ {
		sk.AddHash(h)
	}
	if est := sk.Estimate(); est > 5 {
		t.Fatalf("expected a single repeated hash to estimate near 1, got %f", est)
	}
}

func TestMergeIsEquivalentToAddingAllElementsToOneSketch(t *testing.T) {
	a, b, combined := New(12), New(12), New(12)
	for i := 0; i < 500; i++ {
		h := hashOf(string(rune(i)) + "-a")
		a.AddHash(h)
		combined.AddHash(h)
	}
	for i := 0; i < 500; i++ {
		h := hashOf(string(rune(i)) + "-b")
		b.AddHash(h)
		combined.AddHash(h)
	}
	a.Merge(b)
	if math.Abs(a.Estimate()-combined.Estimate()) > 1 {
		t.Fatalf("merged estimate %f diverges from directly-combined estimate %f", a.Estimate(), combined.Estimate())
	}
}

func TestMergeIgnoresMismatchedPrecision(t *testing.T) {
	a := New(10)
	a.AddHash(hashOf("x"))
	before := a.Estimate()
	a.Merge(New(12))
	if a.Estimate() != before {
		t.Fatalf("expected Merge of a mismatched-precision sketch to be a no-op")
	}
}

func TestCloneIsIndependentOfOriginal(t *testing.T) {
	sk := New(8)
	sk.AddHash(hashOf("seed"))
	clone := sk.Clone()
	clone.registers[0] = 255
	if sk.registers[0] == 255 {
		t.Fatalf("Clone must deep-copy the register slice, not alias it")
	}
}

func TestNewClampsPrecisionToValidRange(t *testing.T) {
	if got := len(New(2).registers); got != 1<<4 {
		t.Fatalf("expected precision below 4 to clamp to 4, got %d registers", got)
	}
	if got := len(New(30).registers); got != 1<<18 {
		t.Fatalf("expected precision above 18 to clamp to 18, got %d registers", got)
	}
}
