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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gorse-io/lowrank/dataset"
	"github.com/gorse-io/lowrank/loss"
	"github.com/gorse-io/lowrank/model"
)

func TestGLRM_InitSVD(t *testing.T) {
	// rows three and four are combinations of the first two, so a rank two
	// truncated SVD reconstructs the matrix exactly
	a := [][]float32{
		{1, 2, 0},
		{0, 1, 1},
		{1, 3, 1},
		{2, 3, -1},
	}
	data, err := dataset.FromDense(a)
	assert.NoError(t, err)
	m, err := NewGLRM(data, quadLosses(3), nil, nil, model.Params{model.Rank: 2})
	assert.NoError(t, err)
	assert.NoError(t, m.InitSVD())
	assert.Less(t, m.Objective(), 1e-8)
	for i := range a {
		for j := range a[i] {
			assert.InDelta(t, a[i][j], m.Predict(i, j)[0], 1e-4)
		}
	}
}

func TestGLRM_InitSVD_Fit(t *testing.T) {
	// a warm started fit begins close to the optimum
	a := [][]float32{
		{1, 2, 0},
		{0, 1, 1},
		{1, 3, 1},
		{2, 3, -1},
	}
	data, err := dataset.FromDense(a)
	assert.NoError(t, err)
	m, err := NewGLRM(data, quadLosses(3), nil, nil, model.Params{model.Rank: 2, model.MaxIter: 5})
	assert.NoError(t, err)
	assert.NoError(t, m.InitSVD())
	history := m.Fit(context.Background(), NewFitConfig().SetVerbose(0))
	assert.Less(t, history.Objectives[0], 1e-8)
	assert.LessOrEqual(t, history.Last(), 1e-8)
}

func TestGLRM_InitSVD_Invalid(t *testing.T) {
	data, err := dataset.FromDense([][]float32{{1, 2, 3}, {2, 4, 6}})
	assert.NoError(t, err)

	// cleared model
	m, err := NewGLRM(data, quadLosses(3), nil, nil, model.Params{model.Rank: 1})
	assert.NoError(t, err)
	m.Clear()
	assert.Error(t, m.InitSVD())

	// losses embedding into more than one dimension
	m, err = NewGLRM(data, []loss.Loss{loss.NewQuadratic(), loss.NewMultinomial(3), loss.NewQuadratic()}, nil, nil, model.Params{model.Rank: 1})
	assert.NoError(t, err)
	assert.Error(t, m.InitSVD())

	// rank larger than the smaller matrix dimension
	m, err = NewGLRM(data, quadLosses(3), nil, nil, model.Params{model.Rank: 3})
	assert.NoError(t, err)
	assert.Error(t, m.InitSVD())

	// no observed entries
	m, err = NewGLRM(dataset.NewDataset(2, 2), quadLosses(2), nil, nil, model.Params{model.Rank: 1})
	assert.NoError(t, err)
	assert.Error(t, m.InitSVD())
}
