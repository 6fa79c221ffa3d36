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

// Package loss provides per-feature loss functions for low rank models. A loss
// measures the discrepancy between a predicted embedding u and an observed
// target a. Scalar losses embed into one dimension while categorical losses
// embed into one dimension per level.
package loss

import (
	"github.com/chewxy/math32"
)

// Loss is the discrepancy between a prediction and an observed value.
type Loss interface {
	// Dim returns the embedding dimension of the loss. Predictions passed to
	// Evaluate and Grad have this length.
	Dim() int
	// Evaluate returns the loss of the prediction u against the target a.
	Evaluate(u []float32, a float32) float32
	// Grad writes the gradient of the loss with respect to u into g.
	Grad(u []float32, a float32, g []float32)
}

// TotalDim sums the embedding dimensions of losses.
func TotalDim(losses []Loss) int {
	d := 0
	for _, l := range losses {
		d += l.Dim()
	}
	return d
}

// MaxDim returns the largest embedding dimension among losses.
func MaxDim(losses []Loss) int {
	d := 0
	for _, l := range losses {
		if l.Dim() > d {
			d = l.Dim()
		}
	}
	return d
}

// log1pExp returns log(1+exp(x)) without overflowing for large x.
func log1pExp(x float32) float32 {
	if x > 0 {
		return x + math32.Log1p(math32.Exp(-x))
	}
	return math32.Log1p(math32.Exp(x))
}

// Quadratic is the squared error loss for numerical data: (u-a)^2
type Quadratic struct {
	Scale float32
}

func NewQuadratic() Quadratic {
	return Quadratic{Scale: 1}
}

func (Quadratic) Dim() int {
	return 1
}

func (l Quadratic) Evaluate(u []float32, a float32) float32 {
	r := u[0] - a
	return l.Scale * r * r
}

func (l Quadratic) Grad(u []float32, a float32, g []float32) {
	g[0] = 2 * l.Scale * (u[0] - a)
}

// L1 is the absolute error loss for numerical data with outliers: |u-a|
type L1 struct {
	Scale float32
}

func NewL1() L1 {
	return L1{Scale: 1}
}

func (L1) Dim() int {
	return 1
}

func (l L1) Evaluate(u []float32, a float32) float32 {
	return l.Scale * math32.Abs(u[0]-a)
}

func (l L1) Grad(u []float32, a float32, g []float32) {
	switch r := u[0] - a; {
	case r > 0:
		g[0] = l.Scale
	case r < 0:
		g[0] = -l.Scale
	default:
		g[0] = 0
	}
}

// Huber is the squared error loss within Delta of the target and the absolute
// error loss beyond, with matching slopes at the crossover.
type Huber struct {
	Scale float32
	Delta float32
}

func NewHuber() Huber {
	return Huber{Scale: 1, Delta: 1}
}

func (Huber) Dim() int {
	return 1
}

func (l Huber) Evaluate(u []float32, a float32) float32 {
	r := u[0] - a
	if math32.Abs(r) <= l.Delta {
		return l.Scale * r * r
	}
	return l.Scale * l.Delta * (2*math32.Abs(r) - l.Delta)
}

func (l Huber) Grad(u []float32, a float32, g []float32) {
	r := u[0] - a
	switch {
	case r > l.Delta:
		g[0] = 2 * l.Scale * l.Delta
	case r < -l.Delta:
		g[0] = -2 * l.Scale * l.Delta
	default:
		g[0] = 2 * l.Scale * r
	}
}

// Logistic is the logistic loss for Boolean data encoded as -1/+1:
// log(1+exp(-a*u))
type Logistic struct {
	Scale float32
}

func NewLogistic() Logistic {
	return Logistic{Scale: 1}
}

func (Logistic) Dim() int {
	return 1
}

func (l Logistic) Evaluate(u []float32, a float32) float32 {
	return l.Scale * log1pExp(-a*u[0])
}

func (l Logistic) Grad(u []float32, a float32, g []float32) {
	g[0] = -l.Scale * a / (1 + math32.Exp(a*u[0]))
}

// Hinge is the hinge loss for Boolean data encoded as -1/+1: max(0, 1-a*u)
type Hinge struct {
	Scale float32
}

func NewHinge() Hinge {
	return Hinge{Scale: 1}
}

func (Hinge) Dim() int {
	return 1
}

func (l Hinge) Evaluate(u []float32, a float32) float32 {
	if m := 1 - a*u[0]; m > 0 {
		return l.Scale * m
	}
	return 0
}

func (l Hinge) Grad(u []float32, a float32, g []float32) {
	if a*u[0] < 1 {
		g[0] = -l.Scale * a
	} else {
		g[0] = 0
	}
}

// Quantile is the asymmetric absolute error loss. Underestimates are charged
// Quantile per unit and overestimates 1-Quantile per unit, so minimizing it
// recovers the given quantile of the data.
type Quantile struct {
	Scale    float32
	Quantile float32
}

func NewQuantile(quantile float32) Quantile {
	return Quantile{Scale: 1, Quantile: quantile}
}

func (Quantile) Dim() int {
	return 1
}

func (l Quantile) Evaluate(u []float32, a float32) float32 {
	r := u[0] - a
	if r > 0 {
		return l.Scale * (1 - l.Quantile) * r
	}
	return -l.Scale * l.Quantile * r
}

func (l Quantile) Grad(u []float32, a float32, g []float32) {
	if u[0]-a > 0 {
		g[0] = l.Scale * (1 - l.Quantile)
	} else {
		g[0] = -l.Scale * l.Quantile
	}
}

// Poisson is the negative log likelihood of a Poisson distribution with rate
// exp(u), shifted so that the loss of a perfect prediction is zero. Targets
// must be non-negative counts.
type Poisson struct {
	Scale float32
}

func NewPoisson() Poisson {
	return Poisson{Scale: 1}
}

func (Poisson) Dim() int {
	return 1
}

func (l Poisson) Evaluate(u []float32, a float32) float32 {
	ret := math32.Exp(u[0]) - a*u[0]
	if a > 0 {
		ret += a*math32.Log(a) - a
	}
	return l.Scale * ret
}

func (l Poisson) Grad(u []float32, a float32, g []float32) {
	g[0] = l.Scale * (math32.Exp(u[0]) - a)
}

// Periodic is the loss for data with period T, such as angles or hours of the
// day: 1-cos((a-u)*2*pi/T)
type Periodic struct {
	Scale  float32
	Period float32
}

func NewPeriodic(period float32) Periodic {
	return Periodic{Scale: 1, Period: period}
}

func (Periodic) Dim() int {
	return 1
}

func (l Periodic) Evaluate(u []float32, a float32) float32 {
	return l.Scale * (1 - math32.Cos((a-u[0])*2*math32.Pi/l.Period))
}

func (l Periodic) Grad(u []float32, a float32, g []float32) {
	g[0] = -l.Scale * (2 * math32.Pi / l.Period) * math32.Sin((a-u[0])*2*math32.Pi/l.Period)
}
