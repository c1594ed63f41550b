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
	"os"
	"runtime"

	"gopkg.in/yaml.v2"
)

// Config holds the recognized pipeline-wide options. Unknown keys
// encountered while loading a Config from YAML are ignored and counted
// rather than rejected.
type Config struct {
	Parallelism           int    `yaml:"parallelism"`
	BatchSize             int    `yaml:"batch_size"`
	CheckpointDir         string `yaml:"checkpoint_dir"`
	SpillThresholdBytes   int64  `yaml:"spill_threshold_bytes"`
	HLLPrecision          uint8  `yaml:"hll_precision"`
	DeterministicHashSeed uint64 `yaml:"deterministic_hash_seed"`

	// UnknownOptions counts keys seen in a loaded document that Config
	// does not recognize; it is not itself a YAML field.
	UnknownOptions int `yaml:"-"`
}

// DefaultConfig returns a Config with reasonable defaults for every option.
func DefaultConfig() Config {
	return Config{
		Parallelism:           runtime.NumCPU(),
		BatchSize:             1024,
		HLLPrecision:          14,
		DeterministicHashSeed: 0,
	}
}

func (c Config) normalized() Config {
	if c.Parallelism <= 0 {
		c.Parallelism = runtime.NumCPU()
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1024
	}
	if c.HLLPrecision == 0 {
		c.HLLPrecision = 14
	}
	return c
}

// LoadConfig reads pipeline configuration from a YAML file, starting from
// [DefaultConfig] so any field the file omits keeps its default. Keys the
// file sets that Config does not recognize are counted in
// Config.UnknownOptions rather than causing an error.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, err
	}
	known := map[string]bool{
		"parallelism": true, "batch_size": true, "checkpoint_dir": true,
		"spill_threshold_bytes": true, "hll_precision": true,
		"deterministic_hash_seed": true,
	}
	for k := range raw {
		if !known[k] {
			cfg.UnknownOptions++
		}
	}

	return cfg.normalized(), nil
}
