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

// Package regularizer provides penalties on factor blocks together with their
// proximal operators, which is all a proximal gradient method needs to handle
// non-smooth or constrained penalties.
package regularizer

import (
	"github.com/chewxy/math32"

	"github.com/gorse-io/lowrank/common/floats"
)

// Regularizer is a penalty on a factor block.
type Regularizer interface {
	// Evaluate returns the penalty of the factor block w. Constraint
	// penalties return +Inf outside their feasible set.
	Evaluate(w []float32) float32
	// Prox replaces w with the minimizer of alpha*r(z) + ||z-w||^2/2 over z.
	Prox(w []float32, alpha float32)
}

// Repeat makes a slice of n copies of r.
func Repeat(r Regularizer, n int) []Regularizer {
	ret := make([]Regularizer, n)
	for i := range ret {
		ret[i] = r
	}
	return ret
}

// Zero is the absent penalty.
type Zero struct{}

func NewZero() Zero {
	return Zero{}
}

func (Zero) Evaluate(_ []float32) float32 {
	return 0
}

func (Zero) Prox(_ []float32, _ float32) {}

// Quad is the squared norm penalty: Scale*||w||^2
type Quad struct {
	Scale float32
}

func NewQuad(scale float32) Quad {
	return Quad{Scale: scale}
}

func (r Quad) Evaluate(w []float32) float32 {
	return r.Scale * floats.Dot(w, w)
}

func (r Quad) Prox(w []float32, alpha float32) {
	floats.MulConst(w, 1/(1+2*alpha*r.Scale))
}

// One is the sparsity inducing norm penalty: Scale*||w||_1
type One struct {
	Scale float32
}

func NewOne(scale float32) One {
	return One{Scale: scale}
}

func (r One) Evaluate(w []float32) float32 {
	ret := float32(0)
	for _, v := range w {
		ret += math32.Abs(v)
	}
	return r.Scale * ret
}

func (r One) Prox(w []float32, alpha float32) {
	// soft thresholding
	t := alpha * r.Scale
	for i, v := range w {
		switch {
		case v > t:
			w[i] = v - t
		case v < -t:
			w[i] = v + t
		default:
			w[i] = 0
		}
	}
}

// NonNeg constrains the factor block to be non-negative.
type NonNeg struct{}

func NewNonNeg() NonNeg {
	return NonNeg{}
}

func (NonNeg) Evaluate(w []float32) float32 {
	for _, v := range w {
		if v < 0 {
			return math32.Inf(1)
		}
	}
	return 0
}

func (NonNeg) Prox(w []float32, _ float32) {
	for i, v := range w {
		if v < 0 {
			w[i] = 0
		}
	}
}

// NonNegOne is the sparsity inducing norm penalty restricted to non-negative
// factor blocks.
type NonNegOne struct {
	Scale float32
}

func NewNonNegOne(scale float32) NonNegOne {
	return NonNegOne{Scale: scale}
}

func (r NonNegOne) Evaluate(w []float32) float32 {
	ret := float32(0)
	for _, v := range w {
		if v < 0 {
			return math32.Inf(1)
		}
		ret += v
	}
	return r.Scale * ret
}

func (r NonNegOne) Prox(w []float32, alpha float32) {
	t := alpha * r.Scale
	for i, v := range w {
		if v > t {
			w[i] = v - t
		} else {
			w[i] = 0
		}
	}
}
