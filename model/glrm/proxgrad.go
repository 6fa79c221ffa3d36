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
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gorse-io/lowrank/base"
	"github.com/gorse-io/lowrank/base/log"
	"github.com/gorse-io/lowrank/base/progress"
	"github.com/gorse-io/lowrank/common/floats"
	"github.com/gorse-io/lowrank/common/parallel"
	"github.com/gorse-io/lowrank/loss"
	"github.com/gorse-io/lowrank/regularizer"
)

type FitConfig struct {
	Jobs    int
	Verbose int
	History *History
}

func NewFitConfig() *FitConfig {
	return &FitConfig{
		Jobs:    1,
		Verbose: 10,
	}
}

func (config *FitConfig) SetVerbose(verbose int) *FitConfig {
	config.Verbose = verbose
	return config
}

func (config *FitConfig) SetJobs(jobs int) *FitConfig {
	config.Jobs = jobs
	return config
}

// SetHistory makes a fit append its convergence records to an existing
// history instead of a fresh one.
func (config *FitConfig) SetHistory(history *History) *FitConfig {
	config.History = history
	return config
}

// Fit the GLRM model by alternating proximal gradient descent. Rows of X and
// blocks of Y take turns descending against the other factor held fixed, each
// with its own adaptive step size. Fitting stops after MaxIter iterations or
// once the objective decrease falls below ConvergenceTol per observed entry,
// whichever comes first, and returns the convergence history. Canceling ctx
// stops fitting early; the factors keep the last completed iteration.
func (glrm *GLRM) Fit(ctx context.Context, config *FitConfig) *History {
	if config == nil {
		config = NewFitConfig()
	}
	jobs := max(config.Jobs, 1)
	log.Logger().Info("fit glrm",
		zap.Int("n_examples", glrm.data.CountExamples()),
		zap.Int("n_features", glrm.data.CountFeatures()),
		zap.Int("n_observed", glrm.data.Count()),
		zap.Any("params", glrm.GetParams()),
		zap.Any("config", config))
	start := time.Now()
	history := config.History
	if history == nil {
		history = NewHistory()
	}
	m := glrm.data.CountExamples()
	n := glrm.data.CountFeatures()
	d := glrm.EmbeddingDim()
	k := glrm.rank
	// Repair the feature factors if replaced or cleared. A malformed Y is
	// rebuilt loudly, an all-zero Y quietly: zero factors are a stationary
	// point gradient steps cannot leave.
	rng := glrm.GetRandomGenerator()
	if glrm.Y == nil || glrm.Y.Rows() != d || glrm.Y.Cols() != k {
		if glrm.Y != nil {
			log.Logger().Warn("feature factors have wrong shape, reinitializing",
				zap.Int("rows", glrm.Y.Rows()), zap.Int("cols", glrm.Y.Cols()),
				zap.Int("embedding_dim", d), zap.Int("rank", k))
		}
		glrm.Y = rng.NewNormalMatrix(d, k, 0, 0.1)
	} else if glrm.Y.IsZero() {
		glrm.Y = rng.NewNormalMatrix(d, k, 0, 0.1)
	}
	if glrm.X == nil || glrm.X.Rows() != m || glrm.X.Cols() != k {
		glrm.X = rng.NewNormalMatrix(m, k, 0, 0.1)
	}
	// Working copies: the model keeps the factors of the last completed
	// iteration while sweeps mutate the copies.
	x := glrm.X.Clone()
	y := glrm.Y.Clone()
	xy := base.NewMatrix(m, d)
	predictTo(x, y, xy)
	// Per-row and per-column adaptive step sizes.
	alphaRow := base.RepeatFloat32s(m, glrm.stepsize)
	alphaCol := base.RepeatFloat32s(n, glrm.stepsize)
	// Per-worker buffers. Gradient and candidate buffers are sized for the
	// widest feature block and sliced down per use.
	maxDim := loss.MaxDim(glrm.losses)
	grad := base.NewMatrix32(jobs, maxDim*k)
	next := base.NewMatrix32(jobs, maxDim*k)
	u := base.NewMatrix32(jobs, maxDim)
	lg := base.NewMatrix32(jobs, maxDim)

	obj := glrm.objective(x, y, xy)
	history.Append(time.Since(start).Seconds(), obj)
	prevObj := obj
	scaledTol := glrm.tol * float64(glrm.data.Count())
	_, span := progress.Start(ctx, "GLRM.Fit", glrm.maxIter)
fit:
	for iter := 1; iter <= glrm.maxIter; iter++ {
		fitStart := time.Now()
		// Update example factors against fixed feature factors.
		for t := 0; t < glrm.innerIter; t++ {
			if err := parallel.Parallel(ctx, m, jobs, func(workerId, i int) error {
				lipschitz := float32(len(glrm.data.GetObservedFeatures(i)) + 1)
				glrm.rowGrad(i, y, xy.Row(i), grad[workerId][:k], lg[workerId])
				search(x.Row(i), grad[workerId][:k], next[workerId][:k],
					lipschitz, &alphaRow[i], glrm.minStepsize, glrm.rx,
					func(candidate []float32) float64 {
						return glrm.rowObjective(i, candidate, y, u[workerId])
					})
				return nil
			}); err != nil {
				log.Logger().Warn("fit glrm interrupted", zap.Error(err))
				break fit
			}
			predictTo(x, y, xy)
		}
		// Update feature factors against fixed example factors.
		for t := 0; t < glrm.innerIter; t++ {
			if err := parallel.Parallel(ctx, n, jobs, func(workerId, j int) error {
				lo, hi := glrm.offsets[j], glrm.offsets[j+1]
				dim := hi - lo
				lipschitz := float32(len(glrm.data.GetObservedExamples(j)) + 1)
				glrm.colGrad(j, x, xy, grad[workerId][:dim*k], lg[workerId])
				search(y.RowSpan(lo, hi), grad[workerId][:dim*k], next[workerId][:dim*k],
					lipschitz, &alphaCol[j], glrm.minStepsize, glrm.ry[j],
					func(candidate []float32) float64 {
						return glrm.colObjective(j, candidate, x, u[workerId])
					})
				return nil
			}); err != nil {
				log.Logger().Warn("fit glrm interrupted", zap.Error(err))
				break fit
			}
			predictTo(x, y, xy)
		}
		obj = glrm.objective(x, y, xy)
		history.Append(time.Since(start).Seconds(), obj)
		glrm.X.CopyFrom(x)
		glrm.Y.CopyFrom(y)
		if config.Verbose > 0 && (iter%config.Verbose == 0 || iter == glrm.maxIter) {
			log.Logger().Info(fmt.Sprintf("fit glrm %v/%v", iter, glrm.maxIter),
				zap.String("fit_time", time.Since(fitStart).String()),
				zap.Float64("objective", obj))
		}
		span.Add(1)
		if iter > 10 && prevObj-obj < scaledTol {
			break
		}
		prevObj = obj
	}
	span.End()
	history.Append(time.Since(start).Seconds(), obj)
	log.Logger().Info("fit glrm complete", zap.Float64("objective", obj))
	return history
}

// rowGrad assembles the gradient of the observed losses of example i with
// respect to its factor row into grad. xyRow caches the predictions of the
// row and lg is a scratch buffer of at least the largest embedding dimension.
func (glrm *GLRM) rowGrad(i int, y *base.Matrix, xyRow []float32, grad, lg []float32) {
	floats.Zero(grad)
	for _, e := range glrm.data.GetObservedFeatures(i) {
		j := int(e.A)
		lo, hi := glrm.offsets[j], glrm.offsets[j+1]
		glrm.losses[j].Grad(xyRow[lo:hi], e.B, lg[:hi-lo])
		for t := lo; t < hi; t++ {
			floats.MulConstAdd(y.Row(t), lg[t-lo], grad)
		}
	}
}

// colGrad assembles the gradient of the observed losses of feature j with
// respect to its factor block into grad. xy caches the prediction matrix and
// lg is a scratch buffer of at least the embedding dimension of the feature.
func (glrm *GLRM) colGrad(j int, x *base.Matrix, xy *base.Matrix, grad, lg []float32) {
	lo, hi := glrm.offsets[j], glrm.offsets[j+1]
	dim := hi - lo
	floats.Zero(grad)
	for _, e := range glrm.data.GetObservedExamples(j) {
		i := int(e.A)
		glrm.losses[j].Grad(xy.Row(i)[lo:hi], e.B, lg[:dim])
		xRow := x.Row(i)
		for t := 0; t < dim; t++ {
			floats.MulConstAdd(xRow, lg[t], grad[t*glrm.rank:(t+1)*glrm.rank])
		}
	}
}

// search performs one backtracking proximal gradient step on a factor block
// in place. The step size is alpha over the local Lipschitz estimate. A step
// that improves on the objective of the current block is accepted and grows
// alpha by 5%, a failed step shrinks alpha by 30% and retries. If shrinking
// pushes alpha below minStepsize, alpha is clamped just above the floor and
// the last candidate is applied without rechecking improvement, so a block
// cannot stall forever on a too-optimistic step size.
func search(block, grad, next []float32, lipschitz float32, alpha *float32, minStepsize float32, reg regularizer.Regularizer, objective func([]float32) float64) {
	best := objective(block)
	for *alpha > minStepsize {
		stepsize := *alpha / lipschitz
		floats.MulConstAddTo(grad, -stepsize, block, next)
		reg.Prox(next, stepsize)
		if objective(next) < best {
			copy(block, next)
			*alpha *= 1.05
			return
		}
		*alpha *= 0.7
		if *alpha < minStepsize {
			*alpha = minStepsize * 1.1
			copy(block, next)
			return
		}
	}
}
