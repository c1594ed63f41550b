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

// Package tdigest implements an approximate quantile estimator following
// Dunning's t-digest, adapted from the combiners/quantiles module this
// repository's specification was distilled from (no quantile library
// appears anywhere in the retrieval corpus; see DESIGN.md).
package tdigest

import (
	"math"
	"sort"
)

type centroid struct {
	mean   float64
	weight float64
}

// Digest is a mergeable, bounded-memory approximation of a value
// distribution.
type Digest struct {
	compression float64
	centroids   []centroid
	totalWeight float64
	min, max    float64
}

// New creates a digest with the given compression parameter (typical
// range 20-1000; higher is more accurate and uses more memory).
func New(compression float64) *Digest {
	if compression <= 0 {
		compression = 100
	}
	return &Digest{compression: compression, min: math.Inf(1), max: math.Inf(-1)}
}

// Add records a single observation.
func (d *Digest) Add(value float64) { d.AddWeighted(value, 1) }

// AddWeighted records an observation with an explicit weight.
func (d *Digest) AddWeighted(value, weight float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return
	}
	d.min = math.Min(d.min, value)
	d.max = math.Max(d.max, value)
	d.centroids = append(d.centroids, centroid{mean: value, weight: weight})
	d.totalWeight += weight
	if float64(len(d.centroids)) > d.compression*2 {
		d.compress()
	}
}

// Merge folds another digest's centroids into d.
func (d *Digest) Merge(other *Digest) {
	if other == nil || other.totalWeight == 0 {
		return
	}
	d.min = math.Min(d.min, other.min)
	d.max = math.Max(d.max, other.max)
	d.centroids = append(d.centroids, other.centroids...)
	d.totalWeight += other.totalWeight
	d.compress()
}

func (d *Digest) kSize(q float64) float64 {
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}
	k := d.compression * q * (1 - q) / 2
	if k < 1 {
		k = 1
	}
	return k
}

func (d *Digest) compress() {
	if len(d.centroids) == 0 {
		return
	}
	sort.Slice(d.centroids, func(i, j int) bool { return d.centroids[i].mean < d.centroids[j].mean })

	compressed := make([]centroid, 0, len(d.centroids))
	cumulative := 0.0
	current := d.centroids[0]

	for _, c := range d.centroids[1:] {
		proposed := current.weight + c.weight
		q0 := cumulative / d.totalWeight
		q1 := (cumulative + proposed) / d.totalWeight
		limit := math.Min(d.kSize(q0), d.kSize(q1))

		if proposed <= limit {
			current.mean = (current.mean*current.weight + c.mean*c.weight) / proposed
			current.weight = proposed
		} else {
			cumulative += current.weight
			compressed = append(compressed, current)
			current = c
		}
	}
	compressed = append(compressed, current)
	d.centroids = compressed
}

// Quantile estimates the value at rank q in [0, 1].
func (d *Digest) Quantile(q float64) float64 {
	if len(d.centroids) == 0 {
		return math.NaN()
	}
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}
	if q == 0 || len(d.centroids) == 1 {
		return d.min
	}
	if q == 1 {
		return d.max
	}

	target := q * d.totalWeight
	cumulative := 0.0
	for i, c := range d.centroids {
		next := cumulative + c.weight
		if next >= target {
			if next-cumulative < 1e-9 {
				return c.mean
			}
			frac := (target - cumulative) / c.weight
			left := d.min
			if i > 0 {
				left = d.centroids[i-1].mean
			}
			right := d.max
			if i < len(d.centroids)-1 {
				right = d.centroids[i+1].mean
			}
			return left + frac*(right-left)
		}
		cumulative = next
	}
	return d.max
}

// Quantiles evaluates Quantile at every q in qs.
func (d *Digest) Quantiles(qs []float64) []float64 {
	out := make([]float64, len(qs))
	for i, q := range qs {
		out[i] = d.Quantile(q)
	}
	return out
}

// Empty reports whether the digest has seen no finite observations.
func (d *Digest) Empty() bool { return len(d.centroids) == 0 }
