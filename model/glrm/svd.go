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

	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

// InitSVD warm starts the factors from a rank k truncated SVD of the data
// with unobserved entries filled by zeros. Entries are scaled up by the
// inverse observed fraction so the filled matrix is an unbiased estimate of
// the complete one. Only models whose losses all embed into one dimension can
// be warm started this way.
func (glrm *GLRM) InitSVD() error {
	m := glrm.data.CountExamples()
	n := glrm.data.CountFeatures()
	if glrm.X == nil || glrm.Y == nil {
		return errors.NotValidf("cleared model")
	}
	if glrm.EmbeddingDim() != n {
		return errors.NotValidf("SVD initialization of embedded losses")
	}
	if glrm.rank > min(m, n) {
		return errors.NotValidf("rank %d for a %dx%d matrix", glrm.rank, m, n)
	}
	if glrm.data.Count() == 0 {
		return errors.NotValidf("empty dataset")
	}
	scale := float64(m*n) / float64(glrm.data.Count())
	a := mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		for _, e := range glrm.data.GetObservedFeatures(i) {
			a.Set(i, int(e.A), float64(e.B)*scale)
		}
	}
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return errors.New("singular value decomposition failed to converge")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)
	for t := 0; t < glrm.rank; t++ {
		root := math.Sqrt(values[t])
		for i := 0; i < m; i++ {
			glrm.X.Set(i, t, float32(u.At(i, t)*root))
		}
		for j := 0; j < n; j++ {
			glrm.Y.Set(j, t, float32(v.At(j, t)*root))
		}
	}
	return nil
}
