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

// Package jsonl adapts newline-delimited JSON files to the pipeline I/O
// contract (ironbeam.Producer / ironbeam.Consumer), grounded on the
// line-oriented reader/writer pattern of helpers/jsonl.rs.
package jsonl

import (
	"bufio"
	"context"
	"io"
	"iter"
	"os"

	"github.com/go-json-experiment/json"

	"github.com/nhubbard/ironbeam"
)

// Read returns a Producer that decodes one JSON value of type T per
// line of the file at path.
func Read[T any](path string) ironbeam.Producer[T] {
	return func(ctx context.Context) iter.Seq2[T, error] {
		return func(yield func(T, error) bool) {
			f, err := os.Open(path)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			defer f.Close()

			sc := bufio.NewScanner(f)
			sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
			for sc.Scan() {
				select {
				case <-ctx.Done():
					var zero T
					yield(zero, ctx.Err())
					return
				default:
				}
				line := sc.Bytes()
				if len(line) == 0 {
					continue
				}
				var v T
				if err := json.Unmarshal(line, &v); err != nil {
					var zero T
					yield(zero, err)
					return
				}
				if !yield(v, nil) {
					return
				}
			}
			if err := sc.Err(); err != nil {
				var zero T
				yield(zero, err)
			}
		}
	}
}

// Write returns a Consumer that encodes each element of the sequence as
// one JSON line written to the file at path, truncating any existing
// content.
func Write[T any](path string) ironbeam.Consumer[T] {
	return func(ctx context.Context, in iter.Seq2[T, error]) error {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return writeTo(ctx, f, in)
	}
}

func writeTo[T any](ctx context.Context, w io.Writer, in iter.Seq2[T, error]) error {
	bw := bufio.NewWriter(w)
	for v, err := range in {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := bw.Write(data); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
