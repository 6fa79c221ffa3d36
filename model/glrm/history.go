// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package glrm

import (
	"math"
)

// History is the convergence record of a fit. Fit appends one entry before
// the first iteration, one per completed iteration and one more on return, so
// a fit of n iterations leaves n+2 entries. Passing a History to consecutive
// fits through FitConfig accumulates their records.
type History struct {
	Times      []float64 // seconds elapsed since the fit started
	Objectives []float64
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{}
}

// Append records an objective value at a point in time.
func (h *History) Append(seconds, objective float64) {
	h.Times = append(h.Times, seconds)
	h.Objectives = append(h.Objectives, objective)
}

// Len returns the number of records.
func (h *History) Len() int {
	return len(h.Objectives)
}

// Last returns the most recent objective value, or NaN if the history is
// empty.
func (h *History) Last() float64 {
	if len(h.Objectives) == 0 {
		return math.NaN()
	}
	return h.Objectives[len(h.Objectives)-1]
}
