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

package compress

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
)

func roundTrip(t *testing.T, path string, want []byte) {
	t.Helper()
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := w.Write(want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close writer: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestGzipRoundTrip(t *testing.T) {
	roundTrip(t, filepath.Join(t.TempDir(), "data.gz"), []byte("the quick brown fox jumps over the lazy dog\n"))
}

func TestLz4RoundTrip(t *testing.T) {
	roundTrip(t, filepath.Join(t.TempDir(), "data.lz4"), []byte("the quick brown fox jumps over the lazy dog\n"))
}

func TestUncompressedPassthrough(t *testing.T) {
	roundTrip(t, filepath.Join(t.TempDir(), "data.txt"), []byte("plain bytes\n"))
}

func TestUnsupportedCodecRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.zst")
	if _, err := Create(path); !errors.Is(err, ErrUnsupportedCodec) {
		t.Fatalf("Create: expected ErrUnsupportedCodec, got %v", err)
	}
}

func TestCodecDispatchIsCaseInsensitive(t *testing.T) {
	if codec("file.GZ") != "gz" {
		t.Fatalf("expected case-insensitive extension matching")
	}
}
