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
	"strings"
	"sync"

	"github.com/go-json-experiment/json"
	"gocloud.dev/blob"
)

// ValidationError describes one failed rule against a single field of a
// record, grounded on validation.rs's ValidationError.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (e ValidationError) Error() string {
	var b strings.Builder
	if e.Field != "" {
		fmt.Fprintf(&b, "[%s] ", e.Field)
	}
	b.WriteString(e.Message)
	if e.Code != "" {
		fmt.Fprintf(&b, " (code: %s)", e.Code)
	}
	return b.String()
}

// Validator is implemented by record types that carry their own domain
// rules; Validate reports every rule violated by the receiver, or nil
// when the record is well-formed.
type Validator interface {
	Validate() []ValidationError
}

// ValidationMode selects how ValidateRecords reacts to a record that
// fails validation.
type ValidationMode int

const (
	// SkipInvalid drops invalid records silently.
	SkipInvalid ValidationMode = iota
	// LogAndContinue drops invalid records after recording their errors
	// in the collector passed to ValidateRecords.
	LogAndContinue
	// FailFast aborts the run with an InvalidRecord error as soon as the
	// first invalid record is encountered.
	FailFast
)

// InvalidRecord is raised, via panic, by ValidateRecords under FailFast;
// the executor's callUser wrapper converts it into a UserFunctionError
// carrying it as the cause.
type InvalidRecord struct {
	Errors []ValidationError
}

func (e *InvalidRecord) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("invalid record: %s", strings.Join(msgs, "; "))
}

// RecordError pairs the errors found in one record with an optional
// caller-supplied identifier for that record.
type RecordError struct {
	RecordID string            `json:"record_id,omitempty"`
	Errors   []ValidationError `json:"errors"`
}

// ErrorCollector accumulates RecordErrors across a run under
// LogAndContinue, grounded on validation.rs's ErrorCollector. It is safe
// for concurrent use, since CollectParallel's worker shards may all feed
// the same collector.
type ErrorCollector struct {
	mu      sync.Mutex
	records []RecordError
}

// NewErrorCollector returns an empty collector.
func NewErrorCollector() *ErrorCollector { return &ErrorCollector{} }

// Add records the errors found in one record against an optional
// identifier.
func (c *ErrorCollector) Add(recordID string, errs []ValidationError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, RecordError{RecordID: recordID, Errors: errs})
}

// Count returns the number of invalid records seen so far.
func (c *ErrorCollector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Records returns a snapshot of every RecordError collected so far.
func (c *ErrorCollector) Records() []RecordError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RecordError, len(c.records))
	copy(out, c.records)
	return out
}

// Clear discards every collected error.
func (c *ErrorCollector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = nil
}

func (c *ErrorCollector) String() string {
	return fmt.Sprintf("ErrorCollector(%d errors)", c.Count())
}

// MarshalJSON renders the collector's records as a JSON array, using
// go-json-experiment/json for the same encoder checkpoint.go uses for its
// manifests.
func (c *ErrorCollector) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Records())
}

// WriteToBlob writes the collector's records as JSON to key within the
// bucket addressed by bucketURL, using gocloud.dev/blob so the same
// file:// and mem:// backends checkpoint.go registers for pipeline state
// are available for error reporting.
func (c *ErrorCollector) WriteToBlob(ctx context.Context, bucketURL, key string) error {
	data, err := c.MarshalJSON()
	if err != nil {
		return err
	}
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return newIoError("ErrorCollector.WriteToBlob", bucketURL, err)
	}
	defer bucket.Close()
	if err := bucket.WriteAll(ctx, key, data, nil); err != nil {
		return newIoError("ErrorCollector.WriteToBlob", key, err)
	}
	return nil
}

// ValidateRecords filters h down to the records that pass their own
// Validate rules, disposing of the rest according to mode. RecordID
// extracts a display identifier from a record for collector reporting;
// pass nil to leave RecordError.RecordID empty.
func ValidateRecords[T Validator](h Handle[T], mode ValidationMode, collector *ErrorCollector, recordID func(T) string, opts ...Options) Handle[T] {
	o := joinOpts(opts)
	name := o.Name
	if name == "" {
		name = "ValidateRecords"
	}
	return FlatMap(h, func(v T) []T {
		errs := v.Validate()
		if len(errs) == 0 {
			return []T{v}
		}
		switch mode {
		case SkipInvalid:
			return nil
		case LogAndContinue:
			id := ""
			if recordID != nil {
				id = recordID(v)
			}
			if collector != nil {
				collector.Add(id, errs)
			}
			return nil
		case FailFast:
			panic(&InvalidRecord{Errors: errs})
		default:
			return nil
		}
	}, Name(name))
}

// ---- Built-in field validators, grounded on validation.rs's validators module ----

// ValidateNotEmpty reports an error if value is empty.
func ValidateNotEmpty(field, value string) []ValidationError {
	if value == "" {
		return []ValidationError{{Field: field, Message: "must not be empty"}}
	}
	return nil
}

// ValidateContains reports an error if value does not contain substring.
func ValidateContains(field, value, substring string) []ValidationError {
	if strings.Contains(value, substring) {
		return nil
	}
	return []ValidationError{{Field: field, Message: fmt.Sprintf("must contain %q", substring)}}
}

// ValidateInRange reports an error if value falls outside [min, max].
func ValidateInRange[T interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}](field string, value, min, max T) []ValidationError {
	if value >= min && value <= max {
		return nil
	}
	return []ValidationError{{Field: field, Message: fmt.Sprintf("must be between %v and %v", min, max)}}
}

// ValidateEmail reports an error unless value looks like a well-formed
// email address: a non-empty local part, an @, and a domain containing a
// dot with at least one character after it.
func ValidateEmail(field, value string) []ValidationError {
	at := strings.IndexByte(value, '@')
	if at > 0 {
		local, domain := value[:at], value[at+1:]
		if local != "" && domain != "" {
			if dot := strings.LastIndexByte(domain, '.'); dot >= 0 && dot < len(domain)-1 {
				return nil
			}
		}
	}
	return []ValidationError{{Field: field, Message: "invalid email format"}}
}

// ValidateMinLength reports an error if value has fewer than min runes.
func ValidateMinLength(field, value string, min int) []ValidationError {
	if len([]rune(value)) >= min {
		return nil
	}
	return []ValidationError{{Field: field, Message: fmt.Sprintf("must have at least %d characters", min)}}
}

// ValidateMaxLength reports an error if value has more than max runes.
func ValidateMaxLength(field, value string, max int) []ValidationError {
	if len([]rune(value)) <= max {
		return nil
	}
	return []ValidationError{{Field: field, Message: fmt.Sprintf("must have at most %d characters", max)}}
}

// CombineValidations merges several validation results into one,
// concatenating every error found across all of them.
func CombineValidations(results ...[]ValidationError) []ValidationError {
	var all []ValidationError
	for _, r := range results {
		all = append(all, r...)
	}
	return all
}
