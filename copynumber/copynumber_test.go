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

package copynumber_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/rdnacn/average"
	"github.com/grailbio/rdnacn/copynumber"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, data string) {
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	assert.NoError(t, ioutil.WriteFile(path, []byte(data), 0644))
}

func readFile(t *testing.T, path string) string {
	data, err := ioutil.ReadFile(path)
	assert.NoError(t, err)
	return string(data)
}

func TestJoin(t *testing.T) {
	avgs := []average.Row{
		{Sample: "A_45S", AverageDepth: 300, Length: 10, Label: "blood"},
		{Sample: "C_45S", AverageDepth: 50, Length: 10, Label: "blood"},
		{Sample: "Z_45S", AverageDepth: 50, Length: 10, Label: "blood"},
	}
	brd := copynumber.NewBaseline([]average.BaselineRow{
		{SampleID: "A", DepthFile: "chr13_exon", AverageDepth: 2, Length: 5, Label: "blood"},
		{SampleID: "B", DepthFile: "chr13_exon", AverageDepth: 4, Length: 5, Label: "blood"},
		{SampleID: "A", DepthFile: "dup", AverageDepth: 100, Length: 5, Label: "blood"},
		{SampleID: "Z", DepthFile: "chr13_exon", AverageDepth: 0, Length: 0, Label: "blood"},
	})
	res := copynumber.Join(avgs, brd, "P1")
	expect.EQ(t, res.Rows, []copynumber.Row{
		{SampleID: "A", CopyNumber: 150, DepthFile: "chr13_exon", Chr: "45S", Label: "blood", ProjectID: "P1"},
	})
	expect.EQ(t, res.Unmatched, []average.Row{avgs[1]})
	expect.EQ(t, res.ZeroBaseline, []average.Row{avgs[2]})
}

func TestCalculate(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	avgPath := filepath.Join(tmpdir, "5S_all_P1_average_depth.csv")
	brdPath := filepath.Join(tmpdir, "brd.csv")
	outPath := filepath.Join(tmpdir, "out.csv")
	writeFile(t, avgPath, "Sample,Average Depth,Length,Label\nA_5S,30,3,blood\nC_5S,1,1,blood\n")
	writeFile(t, brdPath, "Sample_ID,Depth_File,Average_Depth,Length,Label\nA,chr1_exon_intron,12,9,blood\nB,chr1_exon_intron,3,2,blood\n")

	res, err := copynumber.Calculate(ctx, &copynumber.Opts{
		ProjectID:    "P1",
		AveragePath:  avgPath,
		BaselinePath: brdPath,
		OutputPath:   outPath,
	})
	assert.NoError(t, err)
	expect.EQ(t, len(res.Rows), 1)
	expect.EQ(t, len(res.Unmatched), 1)
	expect.EQ(t, res.Unmatched[0].SampleID(), "C")
	expect.EQ(t, readFile(t, outPath),
		"Sample_ID,copy_number,Depth_File,chr,Label,Project_ID\nA,2.5,chr1_exon_intron,5S,blood,P1\n")
}

func TestCalculateErrors(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	_, err := copynumber.Calculate(ctx, &copynumber.Opts{AveragePath: "a", BaselinePath: "b"})
	expect.True(t, errors.Is(errors.Invalid, err))

	_, err = copynumber.Calculate(ctx, &copynumber.Opts{
		ProjectID:    "P1",
		AveragePath:  filepath.Join(tmpdir, "missing.csv"),
		BaselinePath: filepath.Join(tmpdir, "brd.csv"),
	})
	expect.True(t, errors.Is(errors.NotExist, err))

	err = copynumber.CalculateAll(ctx, &copynumber.AllOpts{ProjectID: "P1"})
	expect.True(t, errors.Is(errors.Invalid, err))
}

func TestCalculateAll(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	avgDir := filepath.Join(tmpdir, "average_depth_blood_csv")
	outDir := filepath.Join(tmpdir, "copy_number_results")
	brd5S := filepath.Join(tmpdir, "blood_chr1_exon_intron.csv")
	brd45S := filepath.Join(tmpdir, "blood_chr13_14_15_21_22_exon_BRD.csv")
	summary := filepath.Join(tmpdir, "P1_CN_all.csv")

	writeFile(t, filepath.Join(avgDir, "5S_all_P1_average_depth.csv"), "Sample,Average Depth,Length,Label\nA_5S,20,3,blood\n")
	writeFile(t, filepath.Join(avgDir, "45S_all_P1_average_depth.csv"), "Sample,Average Depth,Length,Label\nA_45S,500,3,blood\n")
	writeFile(t, filepath.Join(avgDir, "18S_all_P1_average_depth.csv"), "Sample,Average Depth,Length,Label\nA_18S,100,3,blood\n")
	writeFile(t, filepath.Join(avgDir, "notes.txt"), "ignored")
	writeFile(t, filepath.Join(avgDir, "XS_all_P1_average_depth.csv"), "Sample,Average Depth,Length,Label\nA_XS,1,1,blood\n")
	writeFile(t, brd5S, "Sample_ID,Depth_File,Average_Depth,Length,Label\nA,chr1_exon_intron,10,5,blood\n")
	writeFile(t, brd45S, "Sample_ID,Depth_File,Average_Depth,Length,Label\nA,chr13_14_15_21_22_exon,50,5,blood\n")

	err := copynumber.CalculateAll(ctx, &copynumber.AllOpts{
		ProjectID:   "P1",
		AverageDir:  avgDir,
		Baseline5S:  brd5S,
		Baseline45S: brd45S,
		OutputDir:   outDir,
		SummaryPath: summary,
	})
	require.NoError(t, err)

	files, err := ioutil.ReadDir(outDir)
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, f.Name())
	}
	expect.EQ(t, names, []string{"P1_18S_CN_results.csv", "P1_45S_CN_results.csv", "P1_5S_CN_results.csv"})
	expect.EQ(t, readFile(t, summary), "Sample_ID,copy_number,Depth_File,chr,Label,Project_ID\n"+
		"A,2,chr13_14_15_21_22_exon,18S,blood,P1\n"+
		"A,10,chr13_14_15_21_22_exon,45S,blood,P1\n"+
		"A,2,chr1_exon_intron,5S,blood,P1\n")
}

func TestConcat(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	dir := filepath.Join(tmpdir, "results")
	writeFile(t, filepath.Join(dir, "a.csv"), "x,y\n1,2\n")
	writeFile(t, filepath.Join(dir, "b.csv"), "x,y\n3,4\n5,6\n")
	writeFile(t, filepath.Join(dir, "c.txt"), "z\n")
	out := filepath.Join(tmpdir, "all.csv")
	assert.NoError(t, copynumber.Concat(ctx, dir, out))
	expect.EQ(t, readFile(t, out), "x,y\n1,2\n3,4\n5,6\n")

	writeFile(t, filepath.Join(dir, "c.csv"), "x,z\n7,8\n")
	err := copynumber.Concat(ctx, dir, out)
	expect.True(t, errors.Is(errors.Invalid, err))

	err = copynumber.Concat(ctx, filepath.Join(tmpdir, "empty"), out)
	expect.True(t, errors.Is(errors.NotExist, err))
}
