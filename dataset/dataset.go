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

package dataset

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// Dataset is a partially observed matrix. Observed entries are kept in two
// mirrored adjacency lists, one per example and one per feature, so that both
// factors can sweep their own axis without transposing. Unobserved entries are
// not stored.
type Dataset struct {
	numExamples int
	numFeatures int
	rows        [][]lo.Tuple2[int32, float32]
	cols        [][]lo.Tuple2[int32, float32]
	observed    *bitset.BitSet
	count       int
}

// NewDataset creates an empty dataset with numExamples rows and numFeatures
// columns.
func NewDataset(numExamples, numFeatures int) *Dataset {
	return &Dataset{
		numExamples: numExamples,
		numFeatures: numFeatures,
		rows:        make([][]lo.Tuple2[int32, float32], numExamples),
		cols:        make([][]lo.Tuple2[int32, float32], numFeatures),
		observed:    bitset.New(uint(numExamples * numFeatures)),
	}
}

// FromDense creates a fully observed dataset from a dense matrix. Rows must
// all have the same length.
func FromDense(values [][]float32) (*Dataset, error) {
	numExamples := len(values)
	numFeatures := 0
	if numExamples > 0 {
		numFeatures = len(values[0])
	}
	d := NewDataset(numExamples, numFeatures)
	for i, row := range values {
		if len(row) != numFeatures {
			return nil, errors.NotValidf("row %d with %d entries instead of %d", i, len(row), numFeatures)
		}
		for j, v := range row {
			d.Set(i, j, v)
		}
	}
	return d, nil
}

// FromDenseMasked creates a dataset from a dense matrix and an observation
// mask of the same shape. Masked out entries are never read.
func FromDenseMasked(values [][]float32, mask [][]bool) (*Dataset, error) {
	if len(mask) != len(values) {
		return nil, errors.NotValidf("mask with %d rows instead of %d", len(mask), len(values))
	}
	numExamples := len(values)
	numFeatures := 0
	if numExamples > 0 {
		numFeatures = len(values[0])
	}
	d := NewDataset(numExamples, numFeatures)
	for i, row := range values {
		if len(row) != numFeatures {
			return nil, errors.NotValidf("row %d with %d entries instead of %d", i, len(row), numFeatures)
		}
		if len(mask[i]) != numFeatures {
			return nil, errors.NotValidf("mask row %d with %d entries instead of %d", i, len(mask[i]), numFeatures)
		}
		for j := range row {
			if mask[i][j] {
				d.Set(i, j, row[j])
			}
		}
	}
	return d, nil
}

// CountExamples returns the number of rows.
func (d *Dataset) CountExamples() int {
	return d.numExamples
}

// CountFeatures returns the number of columns.
func (d *Dataset) CountFeatures() int {
	return d.numFeatures
}

// Count returns the number of observed entries.
func (d *Dataset) Count() int {
	return d.count
}

// Set records the observation of entry (i, j). Setting an entry twice
// replaces its value.
func (d *Dataset) Set(i, j int, value float32) {
	if i < 0 || i >= d.numExamples || j < 0 || j >= d.numFeatures {
		panic("dataset: entry out of range")
	}
	if d.observed.Test(uint(i*d.numFeatures + j)) {
		for t := range d.rows[i] {
			if d.rows[i][t].A == int32(j) {
				d.rows[i][t].B = value
				break
			}
		}
		for t := range d.cols[j] {
			if d.cols[j][t].A == int32(i) {
				d.cols[j][t].B = value
				break
			}
		}
		return
	}
	d.rows[i] = append(d.rows[i], lo.Tuple2[int32, float32]{A: int32(j), B: value})
	d.cols[j] = append(d.cols[j], lo.Tuple2[int32, float32]{A: int32(i), B: value})
	d.observed.Set(uint(i*d.numFeatures + j))
	d.count++
}

// Get returns the value of entry (i, j) and whether it is observed.
func (d *Dataset) Get(i, j int) (float32, bool) {
	if !d.IsObserved(i, j) {
		return 0, false
	}
	for _, e := range d.rows[i] {
		if e.A == int32(j) {
			return e.B, true
		}
	}
	return 0, false
}

// IsObserved reports whether entry (i, j) is observed.
func (d *Dataset) IsObserved(i, j int) bool {
	if i < 0 || i >= d.numExamples || j < 0 || j >= d.numFeatures {
		return false
	}
	return d.observed.Test(uint(i*d.numFeatures + j))
}

// GetObservedFeatures returns the observed (feature, value) pairs of example i
// in insertion order.
func (d *Dataset) GetObservedFeatures(i int) []lo.Tuple2[int32, float32] {
	return d.rows[i]
}

// GetObservedExamples returns the observed (example, value) pairs of feature j
// in insertion order.
func (d *Dataset) GetObservedExamples(j int) []lo.Tuple2[int32, float32] {
	return d.cols[j]
}
