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

package average

import (
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/rdnacn/depth"
	"github.com/grailbio/rdnacn/util"
)

// BaselineRow is one line of a baseline read depth (BRD) table.
type BaselineRow struct {
	SampleID string `csv:"Sample_ID"`
	// DepthFile is the core name of the source file, e.g. "chr1_exon_depth",
	// or the custom label of a merged row.
	DepthFile    string  `csv:"Depth_File"`
	AverageDepth float64 `csv:"Average_Depth"`
	Length       int     `csv:"Length"`
	Label        string  `csv:"Label"`
}

// sampleFile is one depth file under a sample directory.
type sampleFile struct {
	path string
	core string
}

// walkSamples calls fn for every sample directory directly under root, in
// name order, with the depth files it contains.  The sample ID is the
// directory name.
func walkSamples(ctx context.Context, root string, fn func(sample string, files []sampleFile) error) error {
	dirs, err := util.ListDirs(ctx, root)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		sample := file.Base(dir)
		paths, err := util.ListFiles(ctx, dir)
		if err != nil {
			return err
		}
		var files []sampleFile
		for _, path := range paths {
			name, ok := depth.ParseName(file.Base(path))
			if !ok {
				log.Debug.Printf("baseline: %s: not a depth file, skipping", path)
				continue
			}
			files = append(files, sampleFile{path: path, core: name.Core(sample)})
		}
		if err := fn(sample, files); err != nil {
			return err
		}
	}
	return nil
}

// roundedAverage returns the mean depth of path rounded to three decimals.
func roundedAverage(ctx context.Context, path string) (FileAverage, error) {
	avg, err := File(ctx, path, nil)
	if err != nil {
		return avg, err
	}
	avg.Average = util.Round3(avg.Average)
	return avg, nil
}

func selectedSet(selected []string) (map[string]bool, error) {
	if len(selected) == 0 {
		return nil, errors.E(errors.Invalid, "baseline: no files selected")
	}
	set := make(map[string]bool, len(selected))
	for _, s := range selected {
		set[s] = true
	}
	return set, nil
}

func perFile(ctx context.Context, root, label string, keep func(core string) bool) ([]BaselineRow, error) {
	var rows []BaselineRow
	err := walkSamples(ctx, root, func(sample string, files []sampleFile) error {
		for _, f := range files {
			if keep != nil && !keep(f.core) {
				continue
			}
			avg, err := roundedAverage(ctx, f.path)
			if err != nil {
				log.Error.Printf("baseline: %s: %v, skipping", f.path, err)
				continue
			}
			rows = append(rows, BaselineRow{
				SampleID:     sample,
				DepthFile:    f.core,
				AverageDepth: avg.Average,
				Length:       avg.Length,
				Label:        label,
			})
		}
		return nil
	})
	return rows, err
}

// BaselineAll returns one row per depth file per sample directory under root.
// Files that cannot be read are logged and left out.
func BaselineAll(ctx context.Context, root, label string) ([]BaselineRow, error) {
	return perFile(ctx, root, label, nil)
}

// BaselineSelected is like BaselineAll but keeps only files whose core name
// is in selected.
func BaselineSelected(ctx context.Context, root, label string, selected []string) ([]BaselineRow, error) {
	set, err := selectedSet(selected)
	if err != nil {
		return nil, err
	}
	return perFile(ctx, root, label, func(core string) bool { return set[core] })
}

// BaselineMerged returns one row per sample directory under root: the
// length-weighted average of the selected files, with DepthFile set to
// customLabel.  A sample without any readable selected file gets a zero row.
func BaselineMerged(ctx context.Context, root, label string, selected []string, customLabel string) ([]BaselineRow, error) {
	set, err := selectedSet(selected)
	if err != nil {
		return nil, err
	}
	var rows []BaselineRow
	err = walkSamples(ctx, root, func(sample string, files []sampleFile) error {
		var parts []FileAverage
		for _, f := range files {
			if !set[f.core] {
				continue
			}
			avg, err := roundedAverage(ctx, f.path)
			if err != nil {
				log.Error.Printf("baseline: %s: %v, leaving it out of the merge", f.path, err)
				continue
			}
			parts = append(parts, avg)
		}
		merged := Merge(parts)
		rows = append(rows, BaselineRow{
			SampleID:     sample,
			DepthFile:    customLabel,
			AverageDepth: util.Round3(merged.Average),
			Length:       merged.Length,
			Label:        label,
		})
		return nil
	})
	return rows, err
}

// WriteBaseline writes rows as a BRD CSV to path.
func WriteBaseline(ctx context.Context, path string, rows []BaselineRow) error {
	if err := util.WriteCSV(ctx, path, rows); err != nil {
		return err
	}
	log.Printf("baseline: %d row(s) written to %s", len(rows), path)
	return nil
}

// ReadBaseline reads a BRD CSV.
func ReadBaseline(ctx context.Context, path string) ([]BaselineRow, error) {
	var rows []BaselineRow
	if err := util.ReadCSV(ctx, path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
