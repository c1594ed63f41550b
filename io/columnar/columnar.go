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

// Package columnar adapts a batch-oriented binary file format to the
// pipeline I/O contract: the file is a sequence of length-prefixed
// record batches, grounded on
// internal/dataframe/partition_serializing_iterator.go's
// length-prefixed-blob-per-partition layout (no parquet or other
// columnar-format library appears in the retrieval corpus; see
// DESIGN.md).
package columnar

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"iter"
	"os"

	"github.com/go-json-experiment/json"

	"github.com/nhubbard/ironbeam"
)

// Read returns a Producer over path's record batches, flattened into
// individual elements of type T.
func Read[T any](path string, batchSize int) ironbeam.Producer[T] {
	return func(ctx context.Context) iter.Seq2[T, error] {
		return func(yield func(T, error) bool) {
			f, err := os.Open(path)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			defer f.Close()
			br := bufio.NewReader(f)

			for {
				var length uint32
				if err := binary.Read(br, binary.LittleEndian, &length); err != nil {
					if err == io.EOF {
						return
					}
					var zero T
					yield(zero, err)
					return
				}
				buf := make([]byte, length)
				if _, err := io.ReadFull(br, buf); err != nil {
					var zero T
					yield(zero, err)
					return
				}
				var batch []T
				if err := json.Unmarshal(buf, &batch); err != nil {
					var zero T
					yield(zero, err)
					return
				}
				for _, v := range batch {
					select {
					case <-ctx.Done():
						var zero T
						yield(zero, ctx.Err())
						return
					default:
					}
					if !yield(v, nil) {
						return
					}
				}
			}
		}
	}
}

// Write returns a Consumer that groups incoming elements into batches of
// batchSize and writes each as a length-prefixed JSON-encoded record
// batch.
func Write[T any](path string, batchSize int) ironbeam.Consumer[T] {
	if batchSize <= 0 {
		batchSize = 1024
	}
	return func(ctx context.Context, in iter.Seq2[T, error]) error {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		bw := bufio.NewWriter(f)

		batch := make([]T, 0, batchSize)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			data, err := json.Marshal(batch)
			if err != nil {
				return err
			}
			if err := binary.Write(bw, binary.LittleEndian, uint32(len(data))); err != nil {
				return err
			}
			if _, err := bw.Write(data); err != nil {
				return err
			}
			batch = batch[:0]
			return nil
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
			batch = append(batch, v)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if err := flush(); err != nil {
			return err
		}
		return bw.Flush()
	}
}
