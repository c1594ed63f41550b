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

package tdigest

import (
	"math"
	"testing"
)

func TestQuantileApproximatesMedianOfUniformRange(t *testing.T) {
	d := New(100)
	for i := 1; i <= 999; i++ {
		d.Add(float64(i))
	}
	if got := d.Quantile(0.5); math.Abs(got-500) > 25 {
		t.Fatalf("expected median near 500, got %f", got)
	}
}

func TestQuantileZeroAndOneReturnMinAndMax(t *testing.T) {
	d := New(100)
	for _, v := range []float64{3, 1, 4, 1, 5, 9, 2, 6} {
		d.Add(v)
	}
	if got := d.Quantile(0); got != 1 {
		t.Fatalf("Quantile(0) = %f, want min 1", got)
	}
	if got := d.Quantile(1); got != 9 {
		t.Fatalf("Quantile(1) = %f, want max 9", got)
	}
}

func TestEmptyDigestQuantileIsNaN(t *testing.T) {
	d := New(100)
	if got := d.Quantile(0.5); !math.IsNaN(got) {
		t.Fatalf("expected NaN from an empty digest, got %f", got)
	}
	if !d.Empty() {
		t.Fatalf("expected a freshly constructed digest to report Empty() true")
	}
}

func TestAddIgnoresNaNAndInf(t *testing.T) {
	d := New(100)
	d.Add(1)
	d.Add(math.NaN())
	d.Add(math.Inf(1))
	d.Add(2)
	if d.Quantile(1) != 2 {
		t.Fatalf("expected NaN/Inf observations to be dropped, max is %f", d.Quantile(1))
	}
}

func TestMergeApproximatesCombinedDistribution(t *testing.T) {
	a, b, combined := New(100), New(100), New(100)
	for i := 1; i <= 500; i++ {
		a.Add(float64(i))
		combined.Add(float64(i))
	}
	for i := 501; i <= 1000; i++ {
		b.Add(float64(i))
		combined.Add(float64(i))
	}
	a.Merge(b)
	if math.Abs(a.Quantile(0.5)-combined.Quantile(0.5)) > 50 {
		t.Fatalf("merged median %f diverges from directly-combined median %f", a.Quantile(0.5), combined.Quantile(0.5))
	}
}

func TestQuantilesEvaluatesEachRequestedRank(t *testing.T) {
	d := New(100)
	for i := 1; i <= 100; i++ {
		d.Add(float64(i))
	}
	got := d.Quantiles([]float64{0, 0.5, 1})
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0] != d.Quantile(0) || got[2] != d.Quantile(1) {
		t.Fatalf("Quantiles should match individual Quantile calls")
	}
}

func TestNewNonPositiveCompressionDefaults(t *testing.T) {
	d := New(0)
	if d.compression != 100 {
		t.Fatalf("expected non-positive compression to default to 100, got %f", d.compression)
	}
}
