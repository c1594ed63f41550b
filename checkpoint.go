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
	"context"
	"fmt"
	"time"

	"github.com/go-json-experiment/json"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

// checkpointManifest describes one saved collection: a row count and a
// creation timestamp, written alongside the data so a corrupt or
// truncated checkpoint is detected at load time rather than silently
// under-reading.
type checkpointManifest struct {
	Count            int   `json:"count"`
	CreatedAtUnixNano int64 `json:"created_at_unix_nano"`
}

const (
	checkpointManifestKey = "manifest.json"
	checkpointDataKey     = "data.json"
)

// SaveCheckpoint materializes h (sequentially, so the snapshot reflects
// input order) and writes it to bucketURL as a manifest plus a data blob
// via gocloud.dev/blob, which abstracts over the local filesystem
// (file://), in-memory (mem://) and cloud object store drivers.
func SaveCheckpoint[T any](ctx context.Context, h Handle[T], bucketURL string) error {
	items, err := CollectSequential(ctx, h)
	if err != nil {
		return err
	}

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return newIoError("checkpoint", bucketURL, err)
	}
	defer bucket.Close()

	data, err := json.Marshal(items)
	if err != nil {
		return newIoError("checkpoint", bucketURL, err)
	}
	if err := bucket.WriteAll(ctx, checkpointDataKey, data, nil); err != nil {
		return newIoError("checkpoint", bucketURL, err)
	}

	manifest := checkpointManifest{Count: len(items), CreatedAtUnixNano: time.Now().UnixNano()}
	manifestData, err := json.Marshal(manifest)
	if err != nil {
		return newIoError("checkpoint", bucketURL, err)
	}
	if err := bucket.WriteAll(ctx, checkpointManifestKey, manifestData, nil); err != nil {
		return newIoError("checkpoint", bucketURL, err)
	}

	h.p.g.checkpoints[h.node] = bucketURL
	return nil
}

// LoadCheckpoint recovers a collection saved by SaveCheckpoint as a fresh
// Source node on p — typically a different Pipeline than the one that
// saved it, so a downstream job can resume from a prior run's output.
func LoadCheckpoint[T any](ctx context.Context, p *Pipeline, bucketURL string, opts ...Options) (Handle[T], error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return Handle[T]{}, newIoError("checkpoint", bucketURL, err)
	}
	defer bucket.Close()

	manifestData, err := bucket.ReadAll(ctx, checkpointManifestKey)
	if err != nil {
		return Handle[T]{}, newIoError("checkpoint", bucketURL, err)
	}
	var manifest checkpointManifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		return Handle[T]{}, &CheckpointCorrupt{Path: bucketURL, cause: err}
	}

	data, err := bucket.ReadAll(ctx, checkpointDataKey)
	if err != nil {
		return Handle[T]{}, newIoError("checkpoint", bucketURL, err)
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return Handle[T]{}, &CheckpointCorrupt{Path: bucketURL, cause: err}
	}
	if len(items) != manifest.Count {
		return Handle[T]{}, &CheckpointCorrupt{Path: bucketURL, cause: fmt.Errorf("manifest declares %d rows, data blob has %d", manifest.Count, len(items))}
	}

	return Source(p, sliceProducer(items), opts...), nil
}
