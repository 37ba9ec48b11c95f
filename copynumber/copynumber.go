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

// Package copynumber estimates rDNA copy number as the ratio of a region's
// average depth to the sample's baseline read depth (BRD).
package copynumber

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/rdnacn/average"
	"github.com/grailbio/rdnacn/util"
)

// Row is one line of a copy-number CSV.
type Row struct {
	SampleID   string  `csv:"Sample_ID"`
	CopyNumber float64 `csv:"copy_number"`
	// DepthFile is the baseline's source label, e.g. "chr1_exon_intron".
	DepthFile string `csv:"Depth_File"`
	// Chr is the region tag of the averaged sample, e.g. "45S".
	Chr       string `csv:"chr"`
	Label     string `csv:"Label"`
	ProjectID string `csv:"Project_ID"`
}

// Result is the outcome of joining averages against a baseline.
type Result struct {
	Rows []Row
	// Unmatched lists the average rows whose sample has no baseline.
	Unmatched []average.Row
	// ZeroBaseline lists the average rows whose baseline depth is zero.
	ZeroBaseline []average.Row
}

// Baseline maps sample IDs to their baseline row.
type Baseline map[string]average.BaselineRow

// NewBaseline indexes rows by sample ID.  If a sample appears more than once,
// the first row wins.
func NewBaseline(rows []average.BaselineRow) Baseline {
	b := make(Baseline, len(rows))
	for _, r := range rows {
		if prev, ok := b[r.SampleID]; ok {
			log.Debug.Printf("copynumber: baseline for %s already set from %s, ignoring %s",
				r.SampleID, prev.DepthFile, r.DepthFile)
			continue
		}
		b[r.SampleID] = r
	}
	return b
}

// Join divides each average row's depth by its sample's baseline depth.
// Rows keep the order of avgs.
func Join(avgs []average.Row, baseline Baseline, projectID string) *Result {
	res := &Result{}
	for _, a := range avgs {
		b, ok := baseline[a.SampleID()]
		if !ok {
			res.Unmatched = append(res.Unmatched, a)
			continue
		}
		if b.AverageDepth == 0 {
			res.ZeroBaseline = append(res.ZeroBaseline, a)
			continue
		}
		res.Rows = append(res.Rows, Row{
			SampleID:   a.SampleID(),
			CopyNumber: a.AverageDepth / b.AverageDepth,
			DepthFile:  b.DepthFile,
			Chr:        a.Region(),
			Label:      b.Label,
			ProjectID:  projectID,
		})
	}
	return res
}

// Opts configures Calculate.
type Opts struct {
	// ProjectID fills the Project_ID column.  Required.
	ProjectID string
	// AveragePath is a summary CSV written by average.ProcessDir.  Required.
	AveragePath string
	// BaselinePath is a BRD CSV written by average.WriteBaseline.  Required.
	BaselinePath string
	// OutputPath, if set, receives the copy-number CSV.
	OutputPath string
}

func validate(opts *Opts) error {
	if opts.ProjectID == "" {
		return errors.E(errors.Invalid, "copynumber: project ID must be set")
	}
	if opts.AveragePath == "" || opts.BaselinePath == "" {
		return errors.E(errors.Invalid, "copynumber: average and baseline paths must both be set")
	}
	return nil
}

// Calculate joins the summary at opts.AveragePath against the baseline at
// opts.BaselinePath and writes the result to opts.OutputPath.  Samples without
// a baseline, or with a zero baseline, are logged and left out of the output.
func Calculate(ctx context.Context, opts *Opts) (*Result, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}
	avgs, err := average.ReadSummary(ctx, opts.AveragePath)
	if err != nil {
		return nil, err
	}
	brd, err := average.ReadBaseline(ctx, opts.BaselinePath)
	if err != nil {
		return nil, err
	}
	res := Join(avgs, NewBaseline(brd), opts.ProjectID)
	for _, a := range res.Unmatched {
		log.Error.Printf("copynumber: %s: sample %s not matched in %s", opts.AveragePath, a.Sample, opts.BaselinePath)
	}
	for _, a := range res.ZeroBaseline {
		log.Error.Printf("copynumber: %s: sample %s has zero baseline depth in %s", opts.AveragePath, a.Sample, opts.BaselinePath)
	}
	if opts.OutputPath != "" {
		if err := util.WriteCSV(ctx, opts.OutputPath, res.Rows); err != nil {
			return nil, err
		}
		log.Printf("copynumber: %d row(s) written to %s", len(res.Rows), opts.OutputPath)
	}
	return res, nil
}

// ResultName returns the basename of a region's copy-number CSV.
func ResultName(projectID, region string) string {
	return fmt.Sprintf("%s_%s_CN_results.csv", projectID, region)
}
