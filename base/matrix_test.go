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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrix(t *testing.T) {
	m := NewMatrix(2, 3)
	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, 3, m.Cols())
	assert.Len(t, m.Data(), 6)
	m.Set(1, 2, 42)
	assert.Equal(t, float32(42), m.At(1, 2))
	// rows are views, not copies
	m.Row(0)[1] = 7
	assert.Equal(t, float32(7), m.At(0, 1))
	assert.Equal(t, []float32{0, 7, 0}, m.Row(0))
	assert.Equal(t, []float32{0, 7, 0, 0, 0, 42}, m.RowSpan(0, 2))
}

func TestNewMatrixFrom(t *testing.T) {
	m := NewMatrixFrom([][]float32{{1, 2}, {3, 4}, {5, 6}})
	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 2, m.Cols())
	assert.Equal(t, []float32{3, 4}, m.Row(1))
	assert.Panics(t, func() { NewMatrixFrom([][]float32{{1, 2}, {3}}) })

	empty := NewMatrixFrom(nil)
	assert.Equal(t, 0, empty.Rows())
	assert.Equal(t, 0, empty.Cols())
}

func TestMatrix_Clone(t *testing.T) {
	m := NewMatrixFrom([][]float32{{1, 2}, {3, 4}})
	c := m.Clone()
	c.Set(0, 0, 9)
	assert.Equal(t, float32(9), c.At(0, 0))
	assert.Equal(t, float32(1), m.At(0, 0))
}

func TestMatrix_CopyFrom(t *testing.T) {
	m := NewMatrix(2, 2)
	o := NewMatrixFrom([][]float32{{1, 2}, {3, 4}})
	m.CopyFrom(o)
	assert.Equal(t, o.Data(), m.Data())
	assert.Panics(t, func() { m.CopyFrom(NewMatrix(2, 3)) })
}

func TestMatrix_IsZero(t *testing.T) {
	m := NewMatrix(2, 2)
	assert.True(t, m.IsZero())
	m.Set(1, 0, 1)
	assert.False(t, m.IsZero())
	assert.True(t, NewMatrix(0, 0).IsZero())
}
