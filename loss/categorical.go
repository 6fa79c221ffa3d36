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

package loss

import (
	"github.com/chewxy/math32"
)

// Multinomial is the softmax cross entropy loss for categorical data with
// Levels categories. The prediction embeds into one dimension per level and
// targets are 1-based levels.
type Multinomial struct {
	Scale  float32
	Levels int
}

func NewMultinomial(levels int) Multinomial {
	return Multinomial{Scale: 1, Levels: levels}
}

func (l Multinomial) Dim() int {
	return l.Levels
}

func (l Multinomial) Evaluate(u []float32, a float32) float32 {
	// subtract the maximum before exponentiation to avoid overflow
	m := u[0]
	for _, v := range u[1:] {
		if v > m {
			m = v
		}
	}
	sum := float32(0)
	for _, v := range u {
		sum += math32.Exp(v - m)
	}
	return l.Scale * (math32.Log(sum) + m - u[int(a)-1])
}

func (l Multinomial) Grad(u []float32, a float32, g []float32) {
	m := u[0]
	for _, v := range u[1:] {
		if v > m {
			m = v
		}
	}
	sum := float32(0)
	for i, v := range u {
		g[i] = math32.Exp(v - m)
		sum += g[i]
	}
	for i := range g {
		g[i] *= l.Scale / sum
	}
	g[int(a)-1] -= l.Scale
}

// OneVsAll reduces categorical data with Levels categories to one logistic
// loss per level, positive for the observed level and negative for the rest.
// Targets are 1-based levels.
type OneVsAll struct {
	Scale  float32
	Levels int
}

func NewOneVsAll(levels int) OneVsAll {
	return OneVsAll{Scale: 1, Levels: levels}
}

func (l OneVsAll) Dim() int {
	return l.Levels
}

func (l OneVsAll) Evaluate(u []float32, a float32) float32 {
	ret := float32(0)
	for i, v := range u {
		if i == int(a)-1 {
			ret += log1pExp(-v)
		} else {
			ret += log1pExp(v)
		}
	}
	return l.Scale * ret
}

func (l OneVsAll) Grad(u []float32, a float32, g []float32) {
	for i, v := range u {
		s := float32(-1)
		if i == int(a)-1 {
			s = 1
		}
		g[i] = -l.Scale * s / (1 + math32.Exp(s*v))
	}
}
