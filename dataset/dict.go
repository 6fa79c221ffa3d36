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

// LevelDict interns the level tokens of a categorical feature into contiguous
// ids and counts their occurrences.
type LevelDict struct {
	si  map[string]int
	is  []string
	cnt []int
}

func NewLevelDict() *LevelDict {
	return &LevelDict{map[string]int{}, []string{}, []int{}}
}

// Count returns the number of distinct levels.
func (d *LevelDict) Count() int {
	return len(d.is)
}

// Id interns the level token s and returns its id.
func (d *LevelDict) Id(s string) (y int) {
	if y, ok := d.si[s]; ok {
		d.cnt[y]++
		return y
	}

	y = len(d.is)
	d.si[s] = y
	d.is = append(d.is, s)
	d.cnt = append(d.cnt, 1)
	return
}

// String returns the level token of an id.
func (d *LevelDict) String(id int) (s string, ok bool) {
	if id >= len(d.is) {
		return "", false
	}
	return d.is[id], true
}

// Freq returns the number of occurrences of an id.
func (d *LevelDict) Freq(id int) int {
	if id >= len(d.cnt) {
		return 0
	}
	return d.cnt[id]
}
