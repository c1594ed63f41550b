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

// Package csv adapts delimiter-separated files to the pipeline I/O
// contract. No third-party CSV library appears anywhere in the
// retrieval corpus (go-sif-sif hand-rolls its own dsv parser rather than
// importing one), so this is grounded on the standard library's
// encoding/csv directly; see DESIGN.md.
package csv

import (
	"context"
	"encoding/csv"
	"io"
	"iter"
	"os"

	"github.com/nhubbard/ironbeam"
)

// Read returns a Producer that parses path as CSV and converts each
// record to T via decode. If header is true, the first row is consumed
// and discarded rather than passed to decode.
func Read[T any](path string, header bool, decode func(record []string) (T, error)) ironbeam.Producer[T] {
	return func(ctx context.Context) iter.Seq2[T, error] {
		return func(yield func(T, error) bool) {
			f, err := os.Open(path)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			defer f.Close()

			r := csv.NewReader(f)
			r.ReuseRecord = true
			if header {
				if _, err := r.Read(); err != nil && err != io.EOF {
					var zero T
					yield(zero, err)
					return
				}
			}
			for {
				select {
				case <-ctx.Done():
					var zero T
					yield(zero, ctx.Err())
					return
				default:
				}
				record, err := r.Read()
				if err == io.EOF {
					return
				}
				if err != nil {
					var zero T
					yield(zero, err)
					return
				}
				v, err := decode(append([]string(nil), record...))
				if err != nil {
					var zero T
					yield(zero, err)
					return
				}
				if !yield(v, nil) {
					return
				}
			}
		}
	}
}

// Write returns a Consumer that converts each element to a CSV record
// via encode and writes it to path. If header is non-nil, it is written
// as the first row.
func Write[T any](path string, header []string, encode func(T) []string) ironbeam.Consumer[T] {
	return func(ctx context.Context, in iter.Seq2[T, error]) error {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()

		w := csv.NewWriter(f)
		if header != nil {
			if err := w.Write(header); err != nil {
				return err
			}
		}
		for v, err := range in {
			if err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := w.Write(encode(v)); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	}
}
