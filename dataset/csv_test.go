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
	"os"
	"path/filepath"
	"strings"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
)

func TestReadCSV(t *testing.T) {
	dataSet, levels, err := ReadCSV(strings.NewReader("1,2,3\n4,,6\n7,8,NA\n"), nil)
	assert.NoError(t, err)
	assert.Empty(t, levels)
	assert.Equal(t, 3, dataSet.CountExamples())
	assert.Equal(t, 3, dataSet.CountFeatures())
	assert.Equal(t, 7, dataSet.Count())
	value, ok := dataSet.Get(1, 2)
	assert.True(t, ok)
	assert.Equal(t, float32(6), value)
	assert.False(t, dataSet.IsObserved(1, 1))
	assert.False(t, dataSet.IsObserved(2, 2))
}

func TestReadCSV_NATokens(t *testing.T) {
	dataSet, _, err := ReadCSV(strings.NewReader("na,NaN,null, ,1\n"), nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, dataSet.Count())
	value, ok := dataSet.Get(0, 4)
	assert.True(t, ok)
	assert.Equal(t, float32(1), value)
}

func TestReadCSV_Categorical(t *testing.T) {
	dataSet, levels, err := ReadCSV(strings.NewReader("red,1\nblue,2\nred,\ngreen,4\n"), mapset.NewSet(0))
	assert.NoError(t, err)
	assert.Equal(t, 7, dataSet.Count())
	assert.Len(t, levels, 1)
	assert.Equal(t, 3, levels[0].Count())
	// Levels are numbered from one so that zero never collides with a level.
	value, ok := dataSet.Get(0, 0)
	assert.True(t, ok)
	assert.Equal(t, float32(1), value)
	value, ok = dataSet.Get(1, 0)
	assert.True(t, ok)
	assert.Equal(t, float32(2), value)
	value, ok = dataSet.Get(2, 0)
	assert.True(t, ok)
	assert.Equal(t, float32(1), value)
	value, ok = dataSet.Get(3, 0)
	assert.True(t, ok)
	assert.Equal(t, float32(3), value)
	s, ok := levels[0].String(0)
	assert.True(t, ok)
	assert.Equal(t, "red", s)
	assert.Equal(t, 2, levels[0].Freq(0))
}

func TestReadCSV_BlankLines(t *testing.T) {
	dataSet, _, err := ReadCSV(strings.NewReader("1,2\n\n3,4\n  \n"), nil)
	assert.NoError(t, err)
	assert.Equal(t, 2, dataSet.CountExamples())
	assert.Equal(t, 4, dataSet.Count())
}

func TestReadCSV_Errors(t *testing.T) {
	_, _, err := ReadCSV(strings.NewReader("1,2,3\n4,5\n"), nil)
	assert.ErrorContains(t, err, "line 2 with 2 fields instead of 3")

	_, _, err = ReadCSV(strings.NewReader("1,2\n3,abc\n"), nil)
	assert.ErrorContains(t, err, "line 2 field 1")

	dataSet, _, err := ReadCSV(strings.NewReader(""), nil)
	assert.NoError(t, err)
	assert.Zero(t, dataSet.CountExamples())
	assert.Zero(t, dataSet.CountFeatures())
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	assert.NoError(t, os.WriteFile(path, []byte("1,2\n,3\n"), 0644))
	dataSet, _, err := LoadCSV(path, nil)
	assert.NoError(t, err)
	assert.Equal(t, 2, dataSet.CountExamples())
	assert.Equal(t, 3, dataSet.Count())

	_, _, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), nil)
	assert.Error(t, err)
}
