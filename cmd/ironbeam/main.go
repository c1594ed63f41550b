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

// ironbeam-wordcount is a small CLI example wiring the library's I/O
// adapters and operators into a complete run: read newline-delimited
// JSON documents, split each document's text into words, count them per
// word, and write the counts back out as newline-delimited JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nhubbard/ironbeam"
	"github.com/nhubbard/ironbeam/io/jsonl"
)

type document struct {
	Text string `json:"text"`
}

type wordCount struct {
	Word  string `json:"word"`
	Count int64  `json:"count"`
}

func main() {
	var (
		inPath     = flag.String("in", "", "input newline-delimited JSON file of {\"text\": \"...\"} documents")
		outPath    = flag.String("out", "", "output newline-delimited JSON file of {\"word\": \"...\", \"count\": N}")
		configPath = flag.String("config", "", "optional YAML pipeline configuration file")
		parallel   = flag.Bool("parallel", false, "use the parallel, partitioned execution strategy instead of the sequential one")
	)
	flag.Parse()

	if err := run(*inPath, *outPath, *configPath, *parallel); err != nil {
		fmt.Fprintln(os.Stderr, "ironbeam-wordcount:", err)
		os.Exit(1)
	}
}

func run(inPath, outPath, configPath string, parallel bool) error {
	if inPath == "" || outPath == "" {
		return fmt.Errorf("both -in and -out are required")
	}

	cfg := ironbeam.DefaultConfig()
	if configPath != "" {
		loaded, err := ironbeam.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	p := ironbeam.NewPipeline(cfg)
	p.WithLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	docs := ironbeam.Source(p, jsonl.Read[document](inPath), ironbeam.Name("read_documents"))
	words := ironbeam.FlatMap(docs, splitWords, ironbeam.Name("split_words"))
	keyed := ironbeam.KeyBy(words, func(w string) string { return w }, ironbeam.Name("key_by_word"))
	counted := ironbeam.CombinePerKey(keyed, ironbeam.Count[string](), ironbeam.Name("count_per_word"))
	counts := ironbeam.Map(counted, func(kv ironbeam.KV[string, int64]) wordCount {
		return wordCount{Word: kv.Key, Count: kv.Value}
	}, ironbeam.Name("to_word_count"))

	ctx := context.Background()
	if parallel {
		results, err := ironbeam.CollectParallel(ctx, counts)
		if err != nil {
			return fmt.Errorf("running pipeline: %w", err)
		}
		if err := writeCounts(ctx, outPath, results); err != nil {
			return err
		}
	} else {
		if err := ironbeam.RunToSink(ctx, counts, jsonl.Write[wordCount](outPath)); err != nil {
			return fmt.Errorf("running pipeline: %w", err)
		}
	}

	for name, v := range p.Metrics() {
		slog.Default().Info("metric", slog.String("name", name), slog.Int64("value", v))
	}
	return nil
}

// writeCounts writes results as newline-delimited JSON, used for the
// parallel strategy, whose output is collected as a slice rather than
// streamed through a Consumer.
func writeCounts(ctx context.Context, path string, results []wordCount) error {
	return jsonl.Write[wordCount](path)(ctx, func(yield func(wordCount, error) bool) {
		for _, wc := range results {
			if !yield(wc, nil) {
				return
			}
		}
	})
}

func splitWords(d document) []string {
	fields := strings.Fields(d.Text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToLower(strings.Trim(f, ".,;:!?\"'()")))
	}
	return out
}
