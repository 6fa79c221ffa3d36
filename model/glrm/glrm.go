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
	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/gorse-io/lowrank/base"
	"github.com/gorse-io/lowrank/base/log"
	"github.com/gorse-io/lowrank/common/floats"
	"github.com/gorse-io/lowrank/dataset"
	"github.com/gorse-io/lowrank/loss"
	"github.com/gorse-io/lowrank/model"
	"github.com/gorse-io/lowrank/regularizer"
)

// GLRM means Generalized Low Rank Model, which approximates a partially
// observed data matrix A by the product of two rank k factors. Each feature
// carries its own loss and each factor block its own regularizer, so Boolean,
// categorical and robust numerical features factorize side by side:
//
//	minimize \sum_{observed (e,f)} loss_f(x_e^T y_f, A_{ef}) + \sum_e r(x_e) + \sum_f r_f(y_f)
//
// Losses embedding into more than one dimension (for example Multinomial)
// spread over one column of Y per dimension.
//
// Hyper-parameters:
//
//	 Rank           - The rank of the factors. Default is 10.
//	 Stepsize       - The initial step size of proximal gradient steps. Default is 1.0.
//	 MaxIter        - The maximum number of outer iterations. Default is 100.
//	 InnerIter      - The number of sweeps over each factor per outer iteration. Default is 1.
//	 ConvergenceTol - The objective decrease per observed entry below which fitting
//	                  stops. Default is 1e-5.
//	 MinStepsize    - The lower bound of the adaptive step size. Default is 0.01*Stepsize.
//	 RandomState    - The random seed of factor initialization. Default is 0.
//	 InitMean       - The mean of initial random factors. Default is 0.
//	 InitStdDev     - The standard deviation of initial random factors. Default is 1.0.
type GLRM struct {
	model.BaseModel
	// Model parameters
	X *base.Matrix // example factors, one row per example
	Y *base.Matrix // feature factors, one row per embedding dimension
	// Problem definition
	data    *dataset.Dataset
	losses  []loss.Loss
	rx      regularizer.Regularizer
	ry      []regularizer.Regularizer
	offsets []int // feature f embeds into rows [offsets[f], offsets[f+1]) of Y
	// Hyper parameters
	rank        int
	stepsize    float32
	maxIter     int
	innerIter   int
	tol         float64
	minStepsize float32
	initMean    float32
	initStdDev  float32
}

// NewGLRM creates a GLRM model. losses and ry assign one loss and one
// regularizer to every feature of data. Nil rx or ry stand for no penalty.
func NewGLRM(data *dataset.Dataset, losses []loss.Loss, rx regularizer.Regularizer, ry []regularizer.Regularizer, params model.Params) (*GLRM, error) {
	if data == nil {
		return nil, errors.NotValidf("nil dataset")
	}
	if len(losses) != data.CountFeatures() {
		return nil, errors.NotValidf("%d losses for %d features", len(losses), data.CountFeatures())
	}
	for j, l := range losses {
		if l.Dim() < 1 {
			return nil, errors.NotValidf("loss of feature %d with embedding dimension %d", j, l.Dim())
		}
	}
	if rx == nil {
		rx = regularizer.NewZero()
	}
	if ry == nil {
		ry = regularizer.Repeat(regularizer.NewZero(), data.CountFeatures())
	} else if len(ry) != data.CountFeatures() {
		return nil, errors.NotValidf("%d regularizers for %d features", len(ry), data.CountFeatures())
	}
	glrm := new(GLRM)
	glrm.data = data
	glrm.losses = losses
	glrm.rx = rx
	glrm.ry = ry
	glrm.offsets = make([]int, len(losses)+1)
	for j, l := range losses {
		glrm.offsets[j+1] = glrm.offsets[j] + l.Dim()
	}
	glrm.SetParams(params)
	if glrm.rank < 1 {
		return nil, errors.NotValidf("rank %d", glrm.rank)
	}
	rng := glrm.GetRandomGenerator()
	glrm.X = rng.NewNormalMatrix(data.CountExamples(), glrm.rank, glrm.initMean, glrm.initStdDev)
	glrm.Y = rng.NewNormalMatrix(glrm.EmbeddingDim(), glrm.rank, glrm.initMean, glrm.initStdDev)
	return glrm, nil
}

// SetParams sets hyper-parameters of the GLRM model.
func (glrm *GLRM) SetParams(params model.Params) {
	glrm.BaseModel.SetParams(params)
	// Setup hyper-parameters
	glrm.rank = glrm.Params.GetInt(model.Rank, 10)
	glrm.stepsize = glrm.Params.GetFloat32(model.Stepsize, 1.0)
	glrm.maxIter = glrm.Params.GetInt(model.MaxIter, 100)
	glrm.innerIter = glrm.Params.GetInt(model.InnerIter, 1)
	glrm.tol = glrm.Params.GetFloat64(model.ConvergenceTol, 1e-5)
	glrm.minStepsize = glrm.Params.GetFloat32(model.MinStepsize, 0.01*glrm.stepsize)
	glrm.initMean = glrm.Params.GetFloat32(model.InitMean, 0)
	glrm.initStdDev = glrm.Params.GetFloat32(model.InitStdDev, 1.0)
}

// Clear model weights.
func (glrm *GLRM) Clear() {
	glrm.X = nil
	glrm.Y = nil
}

// EmbeddingDim returns the total embedding dimension of all features, which
// is the number of rows of Y.
func (glrm *GLRM) EmbeddingDim() int {
	return glrm.offsets[len(glrm.offsets)-1]
}

// Predict returns the prediction of entry (i, j). Features with losses
// embedding into more than one dimension yield one prediction per dimension.
func (glrm *GLRM) Predict(i, j int) []float32 {
	if i < 0 || i >= glrm.data.CountExamples() || j < 0 || j >= glrm.data.CountFeatures() {
		log.Logger().Warn("unknown example or feature",
			zap.Int("example", i), zap.Int("feature", j))
		return nil
	}
	lo, hi := glrm.offsets[j], glrm.offsets[j+1]
	ret := make([]float32, hi-lo)
	for t := lo; t < hi; t++ {
		ret[t-lo] = floats.Dot(glrm.X.Row(i), glrm.Y.Row(t))
	}
	return ret
}

// Objective returns the regularized objective value of the current factors.
func (glrm *GLRM) Objective() float64 {
	xy := base.NewMatrix(glrm.data.CountExamples(), glrm.EmbeddingDim())
	predictTo(glrm.X, glrm.Y, xy)
	return glrm.objective(glrm.X, glrm.Y, xy)
}

// objective evaluates the full objective of factors x, y against the
// prediction matrix xy, which must already hold their product.
func (glrm *GLRM) objective(x, y, xy *base.Matrix) float64 {
	obj := float64(0)
	for i := 0; i < glrm.data.CountExamples(); i++ {
		row := xy.Row(i)
		for _, e := range glrm.data.GetObservedFeatures(i) {
			j := int(e.A)
			obj += float64(glrm.losses[j].Evaluate(row[glrm.offsets[j]:glrm.offsets[j+1]], e.B))
		}
		obj += float64(glrm.rx.Evaluate(x.Row(i)))
	}
	for j := 0; j < glrm.data.CountFeatures(); j++ {
		obj += float64(glrm.ry[j].Evaluate(y.RowSpan(glrm.offsets[j], glrm.offsets[j+1])))
	}
	return obj
}

// rowObjective evaluates the terms of the objective touched by the factor row
// of example i replaced by the candidate xRow: the losses of its observed
// entries against y plus its own penalty. u is a scratch buffer of at least
// the largest embedding dimension.
func (glrm *GLRM) rowObjective(i int, xRow []float32, y *base.Matrix, u []float32) float64 {
	obj := float64(0)
	for _, e := range glrm.data.GetObservedFeatures(i) {
		j := int(e.A)
		lo, hi := glrm.offsets[j], glrm.offsets[j+1]
		for t := lo; t < hi; t++ {
			u[t-lo] = floats.Dot(xRow, y.Row(t))
		}
		obj += float64(glrm.losses[j].Evaluate(u[:hi-lo], e.B))
	}
	return obj + float64(glrm.rx.Evaluate(xRow))
}

// colObjective evaluates the terms of the objective touched by the factor
// block of feature j replaced by the candidate chunk: the losses of its
// observed entries against x plus its own penalty. u is a scratch buffer of
// at least the embedding dimension of the feature.
func (glrm *GLRM) colObjective(j int, chunk []float32, x *base.Matrix, u []float32) float64 {
	dim := glrm.offsets[j+1] - glrm.offsets[j]
	obj := float64(0)
	for _, e := range glrm.data.GetObservedExamples(j) {
		xRow := x.Row(int(e.A))
		for t := 0; t < dim; t++ {
			u[t] = floats.Dot(xRow, chunk[t*glrm.rank:(t+1)*glrm.rank])
		}
		obj += float64(glrm.losses[j].Evaluate(u[:dim], e.B))
	}
	return obj + float64(glrm.ry[j].Evaluate(chunk))
}

// predictTo recomputes the prediction matrix xy = x y^T.
func predictTo(x, y, xy *base.Matrix) {
	for i := 0; i < x.Rows(); i++ {
		xRow, xyRow := x.Row(i), xy.Row(i)
		for t := 0; t < y.Rows(); t++ {
			xyRow[t] = floats.Dot(xRow, y.Row(t))
		}
	}
}
