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

package base

// Matrix is a dense matrix of 32-bit floats backed by a single row-major
// slice. A row is a contiguous view into the backing slice, so row
// operations never copy.
type Matrix struct {
	rows, cols int
	data       []float32
}

// NewMatrix creates a rows×cols matrix of zeros.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, data: make([]float32, rows*cols)}
}

// NewMatrixFrom creates a matrix from a slice of rows. Panics if rows are
// not all the same length.
func NewMatrixFrom(rows [][]float32) *Matrix {
	if len(rows) == 0 {
		return NewMatrix(0, 0)
	}
	m := NewMatrix(len(rows), len(rows[0]))
	for i, row := range rows {
		if len(row) != m.cols {
			panic("base: matrix rows have different lengths")
		}
		copy(m.Row(i), row)
	}
	return m
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int {
	return m.rows
}

// Cols returns the number of columns.
func (m *Matrix) Cols() int {
	return m.cols
}

// Row returns row i as a view into the backing slice.
func (m *Matrix) Row(i int) []float32 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

// RowSpan returns rows [lo, hi) as a single contiguous view.
func (m *Matrix) RowSpan(lo, hi int) []float32 {
	return m.data[lo*m.cols : hi*m.cols]
}

// At returns the entry at row i, column j.
func (m *Matrix) At(i, j int) float32 {
	return m.data[i*m.cols+j]
}

// Set assigns the entry at row i, column j.
func (m *Matrix) Set(i, j int, v float32) {
	m.data[i*m.cols+j] = v
}

// Data returns the backing slice.
func (m *Matrix) Data() []float32 {
	return m.data
}

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	data := make([]float32, len(m.data))
	copy(data, m.data)
	return &Matrix{rows: m.rows, cols: m.cols, data: data}
}

// CopyFrom copies the contents of o into the matrix. Panics if shapes do
// not match.
func (m *Matrix) CopyFrom(o *Matrix) {
	if m.rows != o.rows || m.cols != o.cols {
		panic("base: matrix shapes do not match")
	}
	copy(m.data, o.data)
}

// IsZero reports whether every entry of the matrix is zero.
func (m *Matrix) IsZero() bool {
	for _, v := range m.data {
		if v != 0 {
			return false
		}
	}
	return true
}
