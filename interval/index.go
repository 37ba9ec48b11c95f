// Copyright 2026 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package interval

import (
	"github.com/biogo/store/llrb"
)

type startKey struct {
	start PosType
	idx   int
}

// Compare compares two startKey objects for use in llrb.
func (k startKey) Compare(c2 llrb.Comparable) int {
	return int(k.start) - int(c2.(startKey).start)
}

// Index answers Table.Classify queries.  When the table's ranges are
// pairwise disjoint, lookups are a tree search on range start; otherwise they
// fall back to the table's linear first-match scan.
type Index struct {
	table    Table
	byStart  llrb.Tree
	disjoint bool
}

// NewIndex builds an Index over t.  t must not be modified afterwards.
func NewIndex(t Table) *Index {
	x := &Index{table: t, disjoint: true}
	for i, r := range t {
		k := startKey{r.Start, i}
		if x.byStart.Get(k) != nil {
			x.disjoint = false
			return x
		}
		x.byStart.Insert(k)
	}
	var prevEnd PosType
	x.byStart.Do(func(c llrb.Comparable) bool {
		r := t[c.(startKey).idx]
		if r.Start <= prevEnd {
			x.disjoint = false
			return true
		}
		prevEnd = r.End
		return false
	})
	return x
}

// Disjoint returns true if no two ranges of the table overlap.
func (x *Index) Disjoint() bool { return x.disjoint }

// Classify returns the index of the first range containing pos, or -1.  It
// returns the same answer as Table.Classify.
func (x *Index) Classify(pos PosType) int {
	if !x.disjoint {
		return x.table.Classify(pos)
	}
	c := x.byStart.Floor(startKey{start: pos})
	if c == nil {
		return -1
	}
	idx := c.(startKey).idx
	if !x.table[idx].Contains(pos) {
		return -1
	}
	return idx
}
