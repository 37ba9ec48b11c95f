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

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/rdnacn/average"
	"github.com/grailbio/rdnacn/copynumber"
	"github.com/grailbio/rdnacn/interval"
	"github.com/grailbio/rdnacn/pipeline"
	"github.com/grailbio/rdnacn/split"
	"v.io/x/lib/cmdline"
)

const runUsage = `Usage: bio-rdna-cn run <project_id> <root_dir>

Splits root_dir/project_id/depth_results_blood, averages every rDNA region
and writes copy numbers to root_dir/project_id_CN_all.csv.
`

func newCmdRun() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "run",
		Short:    "Run split, average and copy number over a project directory",
		ArgsName: "project_id root_dir",
	}
	opts := pipeline.DefaultOpts
	cmd.Flags.StringVar(&opts.Label, "label", opts.Label, "Label column of the region summaries")
	cmd.Flags.BoolVar(&opts.Split.Relabel, "relabel", opts.Split.Relabel, "Re-base split positions to start at 1")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) < 2 {
			fmt.Fprint(env.Stderr, runUsage)
			return nil
		}
		if len(argv) > 2 {
			return env.UsageErrorf("run takes project_id root_dir, but got %v", argv)
		}
		return pipeline.Run(vcontext.Background(), argv[0], argv[1], &opts)
	})
	return cmd
}

func newCmdSplit() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "split",
		Short: "Copy depth files and split composite 45S files into 18S, 5.8S and 28S",
	}
	opts := split.DefaultOpts
	cmd.Flags.StringVar(&opts.InputDir, "in", "", "Directory of raw depth files")
	cmd.Flags.StringVar(&opts.OutputDir, "out", "", "Directory receiving the copies and split files")
	cmd.Flags.StringVar(&opts.Marker, "marker", opts.Marker, "Split files whose name contains this string")
	cmd.Flags.StringVar(&opts.ChromTag, "chrom-tag", opts.ChromTag, "Contig token of the split file names")
	cmd.Flags.BoolVar(&opts.Relabel, "relabel", opts.Relabel, "Re-base positions so that each region starts at 1")
	cmd.Flags.StringVar(&opts.Format, "format", opts.Format, `Output format, "tsv" or "tsv-bgz"`)
	rangesFlag := cmd.Flags.String("ranges", "", `BED file of named regions to split into.
By default 18S=3657-5527, 5.8S=6623-6779 and 28S=7935-12969 (1-based, closed).`)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return env.UsageErrorf("split takes no arguments, but got %v", argv)
		}
		ctx := vcontext.Background()
		if *rangesFlag != "" {
			var err error
			if opts.Ranges, err = interval.NewTableFromPath(ctx, *rangesFlag); err != nil {
				return err
			}
		}
		stats, err := split.Split(ctx, &opts)
		if err != nil {
			return err
		}
		log.Printf("split: %d copied, %d split, %d failed, %d dropped, %d malformed line(s)",
			stats.Copied, stats.Split, stats.Failed, stats.Dropped, stats.Malformed)
		return nil
	})
	return cmd
}

func newCmdAverage() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "average",
		Short: "Average the depth of one region type per sample",
	}
	opts := average.DefaultOpts
	cmd.Flags.StringVar(&opts.InputDir, "in", "", "Directory of depth files")
	cmd.Flags.StringVar(&opts.OutputDir, "out", "", "Directory receiving the summary CSV")
	cmd.Flags.StringVar(&opts.Region, "region", "", `Region tag to average, e.g. "45S"`)
	cmd.Flags.StringVar(&opts.ProjectID, "project", "", "Project ID embedded in the summary file name")
	cmd.Flags.StringVar(&opts.Label, "label", opts.Label, "Label column")
	cmd.Flags.BoolVar(&opts.Plot, "plot", false, "Write a depth-vs-position PNG per sample")
	windowFlag := cmd.Flags.String("window", "", `Only average positions in this 1-based, closed window,
either "start-end" or a single position.`)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return env.UsageErrorf("average takes no arguments, but got %v", argv)
		}
		if *windowFlag != "" {
			w, err := interval.ParseWindow(*windowFlag)
			if err != nil {
				return err
			}
			opts.Window = &w
		}
		_, _, err := average.ProcessDir(vcontext.Background(), &opts)
		return err
	})
	return cmd
}

func newCmdBaseline() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "baseline",
		Short: "Build a baseline read depth (BRD) table from per-sample directories",
		Long: `
Every subdirectory of -root is a sample; its files are named
{sample}_{core}.txt, e.g. S1_chr1_exon_depth.txt has core name
chr1_exon_depth.  By default one row is written per file.  -select keeps
only the listed core names, and -merge additionally merges them into one
length-weighted row per sample.`,
	}
	root := cmd.Flags.String("root", "", "Directory of per-sample subdirectories")
	out := cmd.Flags.String("out", "", "Output CSV")
	label := cmd.Flags.String("label", "blood", "Label column")
	selectFlag := cmd.Flags.String("select", "", "Comma-separated core names to keep")
	merge := cmd.Flags.String("merge", "", "If set, merge the selected files and use this as Depth_File")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return env.UsageErrorf("baseline takes no arguments, but got %v", argv)
		}
		if *root == "" || *out == "" {
			return env.UsageErrorf("baseline: -root and -out must both be set")
		}
		var selected []string
		if *selectFlag != "" {
			selected = strings.Split(*selectFlag, ",")
		}
		ctx := vcontext.Background()
		var (
			rows []average.BaselineRow
			err  error
		)
		switch {
		case *merge != "":
			rows, err = average.BaselineMerged(ctx, *root, *label, selected, *merge)
		case len(selected) > 0:
			rows, err = average.BaselineSelected(ctx, *root, *label, selected)
		default:
			rows, err = average.BaselineAll(ctx, *root, *label)
		}
		if err != nil {
			return err
		}
		return average.WriteBaseline(ctx, *out, rows)
	})
	return cmd
}

func newCmdCopyNumber() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "copynumber",
		Short: "Divide a region summary by a baseline table",
	}
	var opts copynumber.Opts
	cmd.Flags.StringVar(&opts.AveragePath, "avg", "", "Region summary CSV")
	cmd.Flags.StringVar(&opts.BaselinePath, "brd", "", "Baseline CSV")
	cmd.Flags.StringVar(&opts.OutputPath, "out", "", "Output CSV")
	cmd.Flags.StringVar(&opts.ProjectID, "project", "", "Project ID")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return env.UsageErrorf("copynumber takes no arguments, but got %v", argv)
		}
		res, err := copynumber.Calculate(vcontext.Background(), &opts)
		if err != nil {
			return err
		}
		log.Printf("copynumber: %d joined, %d unmatched, %d zero baseline",
			len(res.Rows), len(res.Unmatched), len(res.ZeroBaseline))
		return nil
	})
	return cmd
}

func newCmdConcat() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "concat",
		Short: "Concatenate the CSV files of a directory",
	}
	dir := cmd.Flags.String("dir", "", "Directory of CSV files sharing one header")
	out := cmd.Flags.String("out", "", "Output CSV")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 || *dir == "" || *out == "" {
			return env.UsageErrorf("concat takes -dir and -out, but got %v", argv)
		}
		return copynumber.Concat(vcontext.Background(), *dir, *out)
	})
	return cmd
}

func newCmdRoot() *cmdline.Command {
	return &cmdline.Command{
		Name:     "bio-rdna-cn",
		Short:    "Estimate rDNA copy number from read depth files",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdRun(),
			newCmdSplit(),
			newCmdAverage(),
			newCmdBaseline(),
			newCmdCopyNumber(),
			newCmdConcat(),
		},
	}
}

func main() {
	shutdown := grail.Init()
	cmdline.HideGlobalFlagsExcept()
	env := cmdline.EnvFromOS()
	err := cmdline.ParseAndRun(newCmdRoot(), env, os.Args[1:])
	code := cmdline.ExitCode(err, env.Stderr)
	log.Debug.Printf("exiting")
	shutdown()
	os.Exit(code)
}
