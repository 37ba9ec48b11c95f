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

package interval_test

import (
	"testing"

	"github.com/grailbio/rdnacn/interval"
	"github.com/grailbio/testutil/expect"
)

func TestIndexMatchesTable(t *testing.T) {
	tests := []struct {
		name     string
		table    interval.Table
		disjoint bool
	}{
		{"rdna", interval.RDNARanges, true},
		{"unsorted", interval.Table{
			{Name: "c", Start: 50, End: 60},
			{Name: "a", Start: 1, End: 9},
			{Name: "b", Start: 10, End: 10},
		}, true},
		{"overlap", interval.Table{
			{Name: "a", Start: 10, End: 20},
			{Name: "b", Start: 15, End: 30},
		}, false},
		{"same_start", interval.Table{
			{Name: "a", Start: 10, End: 20},
			{Name: "b", Start: 10, End: 12},
		}, false},
	}
	for _, tt := range tests {
		x := interval.NewIndex(tt.table)
		expect.EQ(t, x.Disjoint(), tt.disjoint, tt.name)
		for pos := interval.PosType(1); pos <= 13500; pos++ {
			if got, want := x.Classify(pos), tt.table.Classify(pos); got != want {
				t.Errorf("%s: pos %d: got %d, want %d", tt.name, pos, got, want)
			}
		}
	}
}
