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
	"fmt"
	"time"
)

// WindowedKey combines a window assignment with a key, letting window
// assignment compose with the ordinary keyed operators (GroupByKey,
// CombinePerKey, TopKPerKey) instead of needing window-aware variants of
// each: assign windows, then key by (window, key).
type WindowedKey[K Keys] struct {
	Window Window
	Key    K
}

// KeyByWindow derives a WindowedKey from a windowed, keyed element,
// grouping every (window, key) pair into its own bucket.
func KeyByWindow[K Keys, V any](h Handle[Windowed[KV[K, V]]], opts ...Options) Handle[KV[WindowedKey[K], V]] {
	o := joinOpts(opts)
	if o.Name == "" {
		o.Name = "KeyByWindow"
	}
	return Map(h, func(w Windowed[KV[K, V]]) KV[WindowedKey[K], V] {
		return KV[WindowedKey[K], V]{Key: WindowedKey[K]{Window: w.Window, Key: w.Value.Key}, Value: w.Value.Value}
	}, Name(o.Name))
}

func fixedWindowFor(ts time.Time, d time.Duration) Window {
	n := ts.UnixNano()
	dn := d.Nanoseconds()
	idx := n / dn
	if n < 0 && n%dn != 0 {
		idx--
	}
	start := time.Unix(0, idx*dn).UTC()
	return Window{Start: start, End: start.Add(d)}
}

// WindowFixed assigns every element to the single non-overlapping window
// of the given duration that contains its timestamp. duration must be
// positive; WindowFixed panics with InvalidArgument otherwise.
func WindowFixed[T any](h Handle[T], duration time.Duration, tsFn func(T) time.Time, opts ...Options) Handle[Windowed[T]] {
	if duration <= 0 {
		panic(&InvalidArgument{Detail: fmt.Sprintf("WindowFixed: duration must be positive, got %s", duration)})
	}
	o := joinOpts(opts)
	if o.Name == "" {
		o.Name = "WindowFixed"
	}
	return Map(h, func(v T) Windowed[T] {
		return Windowed[T]{Window: fixedWindowFor(tsFn(v), duration), Value: v}
	}, Name(o.Name))
}

// WindowSliding assigns every element to every overlapping window of the
// given size, advancing by period; an element near a boundary may be
// assigned to several windows, so this is expressed as a FlatMap. size
// must be positive; WindowSliding panics with InvalidArgument otherwise.
// A non-positive period defaults to size, producing non-overlapping
// windows.
func WindowSliding[T any](h Handle[T], size, period time.Duration, tsFn func(T) time.Time, opts ...Options) Handle[Windowed[T]] {
	if size <= 0 {
		panic(&InvalidArgument{Detail: fmt.Sprintf("WindowSliding: size must be positive, got %s", size)})
	}
	o := joinOpts(opts)
	if o.Name == "" {
		o.Name = "WindowSliding"
	}
	if period <= 0 {
		period = size
	}
	return FlatMap(h, func(v T) []Windowed[T] {
		ts := tsFn(v)
		pn := period.Nanoseconds()
		n := ts.UnixNano()

		lastStartIdx := n / pn
		if n < 0 && n%pn != 0 {
			lastStartIdx--
		}
		firstStartIdx := (n - size.Nanoseconds()) / pn
		if (n-size.Nanoseconds()) < 0 && (n-size.Nanoseconds())%pn != 0 {
			firstStartIdx--
		}
		firstStartIdx++

		var out []Windowed[T]
		for idx := firstStartIdx; idx <= lastStartIdx; idx++ {
			start := time.Unix(0, idx*pn).UTC()
			w := Window{Start: start, End: start.Add(size)}
			if w.Contains(ts) {
				out = append(out, Windowed[T]{Window: w, Value: v})
			}
		}
		return out
	}, Name(o.Name))
}
