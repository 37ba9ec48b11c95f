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

// Package pipeline runs the rDNA copy-number stages over a project
// directory:
//
//   root/project/depth_results_blood                      raw depth files
//   root/project/depth_results_blood_5s_45s_18s_5.8s_28s  staged + split files
//   root/project/average_depth_blood_csv                  region summaries
//   root/project/blood_chr1_exon_intron.csv               5S baseline
//   root/project/blood_chr13_14_15_21_22_exon_BRD.csv     45S baseline
//   root/project/copy_number_results                      per-region copy numbers
//   root/project_CN_all.csv                               all copy numbers
package pipeline

import (
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/rdnacn/average"
	"github.com/grailbio/rdnacn/copynumber"
	"github.com/grailbio/rdnacn/split"
)

// Layout holds the paths of one project.
type Layout struct {
	ProjectID   string
	Root        string
	DepthDir    string
	StagingDir  string
	AverageDir  string
	Baseline5S  string
	Baseline45S string
	ResultDir   string
	Summary     string
}

// NewLayout returns the layout of project under root.
func NewLayout(project, root string) (Layout, error) {
	if project == "" || root == "" {
		return Layout{}, errors.E(errors.Invalid, "pipeline: project ID and root directory must both be set")
	}
	dir := file.Join(root, project)
	return Layout{
		ProjectID:   project,
		Root:        root,
		DepthDir:    file.Join(dir, "depth_results_blood"),
		StagingDir:  file.Join(dir, "depth_results_blood_5s_45s_18s_5.8s_28s"),
		AverageDir:  file.Join(dir, "average_depth_blood_csv"),
		Baseline5S:  file.Join(dir, "blood_chr1_exon_intron.csv"),
		Baseline45S: file.Join(dir, "blood_chr13_14_15_21_22_exon_BRD.csv"),
		ResultDir:   file.Join(dir, "copy_number_results"),
		Summary:     file.Join(root, project+"_CN_all.csv"),
	}, nil
}

// Opts configures Run.
type Opts struct {
	// Split configures the split stage.  InputDir and OutputDir are taken
	// from the layout.
	Split split.Opts
	// Label fills the Label column of the region summaries.
	Label string
}

// DefaultOpts splits 45S files with re-based coordinates and labels samples
// "blood".
var DefaultOpts = Opts{
	Split: split.DefaultOpts,
	Label: average.DefaultOpts.Label,
}

// Run splits, averages and computes copy numbers for project under root.
// The split stage must succeed; the averaging and copy-number stages log
// failing regions and continue, and Run then returns the first error.  A nil
// opts means DefaultOpts.
func Run(ctx context.Context, project, root string, opts *Opts) error {
	if opts == nil {
		opts = &DefaultOpts
	}
	l, err := NewLayout(project, root)
	if err != nil {
		return err
	}
	log.Printf("pipeline: project %s under %s", project, root)

	sopts := opts.Split
	sopts.InputDir = l.DepthDir
	sopts.OutputDir = l.StagingDir
	stats, err := split.Split(ctx, &sopts)
	if err != nil {
		return err
	}
	log.Printf("pipeline: split: %d copied, %d split, %d failed, %d malformed line(s)",
		stats.Copied, stats.Split, stats.Failed, stats.Malformed)

	var e errors.Once
	if _, err := average.AllRegions(ctx, project, l.StagingDir, l.AverageDir, opts.Label); err != nil {
		e.Set(err)
	}
	if err := copynumber.CalculateAll(ctx, &copynumber.AllOpts{
		ProjectID:   project,
		AverageDir:  l.AverageDir,
		Baseline5S:  l.Baseline5S,
		Baseline45S: l.Baseline45S,
		OutputDir:   l.ResultDir,
		SummaryPath: l.Summary,
	}); err != nil {
		e.Set(err)
	}
	if err := e.Err(); err != nil {
		return err
	}
	log.Printf("pipeline: results saved to %s", l.Summary)
	return nil
}
