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

import "log/slog"

// nodeLogger produces a logger scoped to one operator, analogous to
// DataContext.LoggerForTransform in the harness this module's logging
// is grounded on: every log line carries the owning node's name so
// messages from concurrent workers can be attributed.
func (p *Pipeline) nodeLogger(node string) *slog.Logger {
	return p.log.With(slog.String("node", node))
}

// WithLogger replaces the Pipeline's base logger, e.g. to attach a
// different handler (JSON, a test-capturing handler) or extra fields
// such as a request ID.
func (p *Pipeline) WithLogger(l *slog.Logger) *Pipeline {
	p.log = l
	return p
}
