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

// Options configures individual transformation calls. Each function takes
// a variadic list of Options, where properties set in later options
// override ones set earlier.
type Options interface {
	applyTo(*optStruct)
}

type optStruct struct {
	Name    string
	LenHint int
}

func joinOpts(opts []Options) optStruct {
	var o optStruct
	for _, opt := range opts {
		opt.applyTo(&o)
	}
	return o
}

type nameOption string

func (n nameOption) applyTo(o *optStruct) { o.Name = string(n) }

// Name sets the display name of a transformation, used in metrics keys
// and error messages. Defaults to the operator's kind (for example "Map")
// otherwise.
func Name(name string) Options {
	return nameOption(name)
}

type lenHintOption int

func (n lenHintOption) applyTo(o *optStruct) { o.LenHint = int(n) }

// SourceLen tells Source how many elements its producer will yield, used
// only by Explain to estimate a suggested partition count; it has no
// effect on execution.
func SourceLen(n int) Options {
	return lenHintOption(n)
}
