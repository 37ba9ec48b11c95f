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

// Package average computes per-sample mean read depths from depth files.
//
// ProcessDir summarizes one region type over a directory of depth files and
// writes "{region}_{window}_{project}_average_depth.csv".  The baseline
// builders (BaselineAll, BaselineSelected, BaselineMerged) summarize
// per-sample subdirectories of exon/intron depth files into a baseline read
// depth (BRD) table.
package average

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/rdnacn/depth"
	"github.com/grailbio/rdnacn/interval"
	"github.com/grailbio/rdnacn/util"
)

// Regions lists the region tags summarized by AllRegions, in order.
var Regions = []string{"5S", "45S", "18S", "5.8S", "28S"}

// Row is one line of a region summary CSV.
type Row struct {
	// Sample is "{sample}_{region}".
	Sample       string  `csv:"Sample"`
	AverageDepth float64 `csv:"Average Depth"`
	Length       int     `csv:"Length"`
	Label        string  `csv:"Label"`
}

// SampleID returns the sample part of r.Sample.
func (r Row) SampleID() string {
	id, _ := depth.SplitComposite(r.Sample)
	return id
}

// Region returns the region part of r.Sample.
func (r Row) Region() string {
	_, region := depth.SplitComposite(r.Sample)
	return region
}

// Opts configures ProcessDir.
type Opts struct {
	// Region is the region tag to summarize, e.g. "45S".  Required.
	Region string
	// InputDir holds the depth files.  Required.
	InputDir string
	// OutputDir receives the summary CSV and plots.  Required.
	OutputDir string
	// ProjectID is embedded in the summary file name.  Required.
	ProjectID string
	// Window, if non-nil, restricts averaging to positions inside it.
	Window *interval.Range
	// Label fills the Label column.
	Label string
	// Plot writes a depth-vs-position PNG per sample.
	Plot bool
}

// DefaultOpts summarizes blood samples over the whole file, without plots.
var DefaultOpts = Opts{
	Label: "blood",
}

func validate(opts *Opts) error {
	if opts.Region == "" {
		return errors.E(errors.Invalid, "average: region must be set")
	}
	if opts.InputDir == "" || opts.OutputDir == "" {
		return errors.E(errors.Invalid, "average: input and output directories must both be set")
	}
	if opts.ProjectID == "" {
		return errors.E(errors.Invalid, "average: project ID must be set")
	}
	if w := opts.Window; w != nil && (w.Start <= 0 || w.End < w.Start) {
		return errors.E(errors.Invalid, fmt.Sprintf("average: invalid window %v", w))
	}
	return nil
}

// SummaryName returns the basename of the summary CSV for the given region,
// window and project.
func SummaryName(region string, window *interval.Range, project string) string {
	w := "all"
	if window != nil {
		w = window.String()
	}
	return fmt.Sprintf("%s_%s_%s_average_depth.csv", region, w, project)
}

// Summary is the outcome of Summarize.
type Summary struct {
	// Path is the summary CSV written.
	Path string
	// Rows are the rows written, in file-name order.
	Rows []Row
	// Failed lists the depth files that could not be read.
	Failed []string
}

// ProcessDir averages every depth file in opts.InputDir whose region tag is
// opts.Region and writes one Row per sample to
// SummaryName(opts.Region, opts.Window, opts.ProjectID) in opts.OutputDir.
// It returns the path of the summary and the rows written.  See Summarize.
func ProcessDir(ctx context.Context, opts *Opts) (string, []Row, error) {
	s, err := Summarize(ctx, opts)
	if err != nil {
		return "", nil, err
	}
	return s.Path, s.Rows, nil
}

// Summarize is ProcessDir, additionally reporting the files that failed.
// Files are visited in name order; if two files map to the same sample, the
// first one read successfully wins and the rest are logged and skipped.  A
// file that cannot be read is logged, listed in Summary.Failed, and the
// remaining files are still summarized.
func Summarize(ctx context.Context, opts *Opts) (Summary, error) {
	var s Summary
	if err := validate(opts); err != nil {
		return s, err
	}
	paths, err := util.ListFiles(ctx, opts.InputDir)
	if err != nil {
		return s, err
	}
	if err := util.MkdirAll(opts.OutputDir); err != nil {
		return s, err
	}

	seen := map[string]string{}
	for _, path := range paths {
		name, ok := depth.ParseName(file.Base(path))
		if !ok || name.Region() != opts.Region {
			continue
		}
		sample := name.Sample()
		if prev, ok := seen[sample]; ok {
			log.Error.Printf("average: %s: sample %s already summarized from %s, skipping", path, sample, prev)
			continue
		}

		var plot *series
		if opts.Plot {
			plot = &series{}
		}
		avg, err := fileAverage(ctx, path, opts.Window, plot)
		if err != nil {
			log.Error.Printf("average: %s: %v", path, err)
			s.Failed = append(s.Failed, path)
			continue
		}
		seen[sample] = path
		s.Rows = append(s.Rows, Row{
			Sample:       sample + "_" + opts.Region,
			AverageDepth: util.Round3(avg.Average),
			Length:       avg.Length,
			Label:        opts.Label,
		})
		if plot != nil {
			pngPath := file.Join(opts.OutputDir, sample+"_depth_distribution.png")
			if err := plot.writePNG(ctx, pngPath, sample+" "+opts.Region+" depth"); err != nil {
				log.Error.Printf("average: plot %s: %v", pngPath, err)
			}
		}
	}

	out := file.Join(opts.OutputDir, SummaryName(opts.Region, opts.Window, opts.ProjectID))
	if err := util.WriteCSV(ctx, out, s.Rows); err != nil {
		return s, err
	}
	s.Path = out
	log.Printf("average: %s: %d sample(s) written to %s, %d file(s) failed", opts.Region, len(s.Rows), out, len(s.Failed))
	return s, nil
}

// AllRegions runs ProcessDir over inputDir for each of Regions, writing the
// summaries to outputDir.  A region that fails is logged and the remaining
// regions are still processed; the first error is returned along with the
// summaries that were written.
func AllRegions(ctx context.Context, project, inputDir, outputDir, label string) ([]string, error) {
	var (
		outs []string
		e    errors.Once
	)
	for _, region := range Regions {
		opts := DefaultOpts
		opts.Region = region
		opts.InputDir = inputDir
		opts.OutputDir = outputDir
		opts.ProjectID = project
		if label != "" {
			opts.Label = label
		}
		out, _, err := ProcessDir(ctx, &opts)
		if err != nil {
			log.Error.Printf("average: region %s: %v", region, err)
			e.Set(err)
			continue
		}
		outs = append(outs, out)
	}
	return outs, e.Err()
}

// ReadSummary reads a summary CSV written by ProcessDir.
func ReadSummary(ctx context.Context, path string) ([]Row, error) {
	var rows []Row
	if err := util.ReadCSV(ctx, path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
