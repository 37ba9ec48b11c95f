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
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/rdnacn/interval"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		pos     interval.PosType
		want    string
		rebased interval.PosType
	}{
		{1, "", 0},
		{3656, "", 0},
		{3657, "18S", 1},
		{3700, "18S", 44},
		{5527, "18S", 1871},
		{5528, "", 0},
		{6623, "5.8S", 1},
		{6779, "5.8S", 157},
		{7935, "28S", 1},
		{8000, "28S", 66},
		{12969, "28S", 5035},
		{12970, "", 0},
	}
	for _, tt := range tests {
		idx := interval.RDNARanges.Classify(tt.pos)
		if tt.want == "" {
			expect.EQ(t, idx, -1, "pos %d", tt.pos)
			continue
		}
		assert.True(t, idx >= 0, "pos %d", tt.pos)
		r := interval.RDNARanges[idx]
		expect.EQ(t, r.Name, tt.want)
		expect.EQ(t, r.Rebase(tt.pos), tt.rebased)
		expect.True(t, r.Rebase(tt.pos) >= 1)
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	table := interval.Table{
		{Name: "a", Start: 10, End: 20},
		{Name: "b", Start: 15, End: 30},
	}
	expect.EQ(t, table.Classify(17), 0)
	expect.EQ(t, table.Classify(25), 1)
}

func TestRangesPartition(t *testing.T) {
	// Every position maps to at most one range of the default table.
	for pos := interval.PosType(1); pos <= 13000; pos++ {
		n := 0
		for _, r := range interval.RDNARanges {
			if r.Contains(pos) {
				n++
			}
		}
		if n > 1 {
			t.Fatalf("position %d is covered by %d ranges", pos, n)
		}
	}
	expect.NoError(t, interval.RDNARanges.Validate())
	expect.EQ(t, interval.RDNARanges.Names(), []string{"18S", "5.8S", "28S"})
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		window string
		start  interval.PosType
		end    interval.PosType
		str    string
		ok     bool
	}{
		{"1-1000", 1, 1000, "1-1000", true},
		{"1000", 1000, 1000, "1000-1000", true},
		{"3657-5527", 3657, 5527, "3657-5527", true},
		{"", 0, 0, "", false},
		{"0-10", 0, 0, "", false},
		{"10-5", 0, 0, "", false},
		{"a-5", 0, 0, "", false},
		{"5-b", 0, 0, "", false},
	}
	for _, tt := range tests {
		result, err := interval.ParseWindow(tt.window)
		if !tt.ok {
			expect.NotNil(t, err, "window %q", tt.window)
			continue
		}
		expect.NoError(t, err)
		expect.EQ(t, result.Start, tt.start)
		expect.EQ(t, result.End, tt.end)
		expect.EQ(t, result.String(), tt.str)
	}
}

func TestNewTable(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	ctx := vcontext.Background()
	bedpath := filepath.Join(tmpdir, "ranges.bed")
	out, err := file.Create(ctx, bedpath)
	assert.NoError(t, err)
	_, err = out.Writer(ctx).Write([]byte("# rDNA\ntrack name=rdna\nGL000220v1\t3656\t5527\t18S\nGL000220v1\t6622\t6779\t5.8S\n"))
	assert.NoError(t, err)
	assert.NoError(t, out.Close(ctx))

	table, err := interval.NewTableFromPath(ctx, bedpath)
	assert.NoError(t, err)
	expect.EQ(t, table, interval.Table{
		{Name: "18S", Start: 3657, End: 5527},
		{Name: "5.8S", Start: 6623, End: 6779},
	})

	_, err = interval.NewTable(strings.NewReader("chr1\t10\t20\n"))
	expect.NotNil(t, err)
	_, err = interval.NewTable(strings.NewReader("chr1\t10\t20\tx\nchr1\t30\t40\tx\n"))
	expect.NotNil(t, err)
}
