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
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/samber/lo"

	"github.com/gorse-io/lowrank/base"
)

// naTokens are the cell contents read as unobserved entries.
var naTokens = mapset.NewSet("", "na", "nan", "null")

// LoadCSV reads a dataset from a CSV file without header. Empty cells and NA
// tokens are unobserved. Cells of columns in categorical are interned into
// 1-based levels through a per-column LevelDict instead of being parsed as
// numbers.
func LoadCSV(path string, categorical mapset.Set[int]) (*Dataset, map[int]*LevelDict, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	defer file.Close()
	return ReadCSV(file, categorical)
}

// ReadCSV reads a dataset from CSV content. See LoadCSV.
func ReadCSV(r io.Reader, categorical mapset.Set[int]) (*Dataset, map[int]*LevelDict, error) {
	var (
		parseErr    error
		numRows     int
		numFeatures = -1
		entries     []lo.Tuple3[int, int, float32]
		levels      = make(map[int]*LevelDict)
	)
	sc := bufio.NewScanner(r)
	err := base.ReadLines(sc, ",", func(lineNumber int, fields []string) bool {
		// skip blank lines
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			return true
		}
		if numFeatures < 0 {
			numFeatures = len(fields)
		} else if len(fields) != numFeatures {
			parseErr = errors.NotValidf("line %d with %d fields instead of %d", lineNumber+1, len(fields), numFeatures)
			return false
		}
		i := numRows
		numRows++
		for j, field := range fields {
			field = strings.TrimSpace(field)
			if naTokens.Contains(strings.ToLower(field)) {
				continue
			}
			if categorical != nil && categorical.Contains(j) {
				dict, ok := levels[j]
				if !ok {
					dict = NewLevelDict()
					levels[j] = dict
				}
				entries = append(entries, lo.T3(i, j, float32(dict.Id(field)+1)))
			} else {
				value, err := strconv.ParseFloat(field, 32)
				if err != nil {
					parseErr = errors.NotValidf("line %d field %d: %q", lineNumber+1, j, field)
					return false
				}
				entries = append(entries, lo.T3(i, j, float32(value)))
			}
		}
		return true
	})
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	if parseErr != nil {
		return nil, nil, parseErr
	}
	if numFeatures < 0 {
		numFeatures = 0
	}
	d := NewDataset(numRows, numFeatures)
	for _, e := range entries {
		d.Set(e.A, e.B, e.C)
	}
	return d, levels, nil
}
