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

// Package split stages raw per-sample depth files and splits composite 45S
// rDNA depth files into their 18S, 5.8S and 28S sub-region files.
package split

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/bgzf"
	"github.com/grailbio/rdnacn/depth"
	"github.com/grailbio/rdnacn/interval"
	"github.com/grailbio/rdnacn/util"
)

const (
	// FormatTSV writes plain "{sample}_{chrom}_{region}_depth.txt" files.
	FormatTSV = "tsv"
	// FormatTSVBgz writes BGZF-compressed ".txt.gz" files.
	FormatTSVBgz = "tsv-bgz"
)

// Opts configures Split.
type Opts struct {
	// InputDir holds the raw depth files.  Required.
	InputDir string
	// OutputDir receives the copies and the split files.  Required.
	OutputDir string
	// Marker selects the composite files to split by substring match on the
	// basename.
	Marker string
	// ChromTag is the contig token written into split file names.
	ChromTag string
	// Relabel re-bases positions so that each range starts at 1.
	Relabel bool
	// Ranges partitions the composite file.  First match wins.
	Ranges interval.Table
	// Format is FormatTSV or FormatTSVBgz.
	Format string
}

// DefaultOpts splits 45S files on GL000220v1 into 18S/5.8S/28S with
// re-based coordinates.
var DefaultOpts = Opts{
	Marker:   "45S",
	ChromTag: "GL000220v1",
	Relabel:  true,
	Ranges:   interval.RDNARanges,
	Format:   FormatTSV,
}

// Stats summarizes a Split or File run.
type Stats struct {
	// Copied is the number of files copied verbatim.
	Copied int
	// Split is the number of composite files split.
	Split int
	// Failed is the number of composite files that could not be split.
	Failed int
	// Written counts records written, by range name.
	Written map[string]int
	// Dropped counts records outside every range.
	Dropped int
	// Malformed counts skipped input lines.
	Malformed int
}

func (s *Stats) add(o Stats) {
	if s.Written == nil {
		s.Written = map[string]int{}
	}
	for k, v := range o.Written {
		s.Written[k] += v
	}
	s.Copied += o.Copied
	s.Split += o.Split
	s.Failed += o.Failed
	s.Dropped += o.Dropped
	s.Malformed += o.Malformed
}

func validate(opts *Opts) error {
	if opts.InputDir == "" || opts.OutputDir == "" {
		return errors.E(errors.Invalid, "split: input and output directories must both be set")
	}
	if strings.TrimSuffix(opts.InputDir, "/") == strings.TrimSuffix(opts.OutputDir, "/") {
		return errors.E(errors.Invalid, "split: input and output directories must differ:", opts.InputDir)
	}
	if opts.Marker == "" {
		return errors.E(errors.Invalid, "split: empty composite marker")
	}
	if opts.ChromTag == "" {
		return errors.E(errors.Invalid, "split: empty chromosome tag")
	}
	if opts.Format != FormatTSV && opts.Format != FormatTSVBgz {
		return errors.E(errors.Invalid, fmt.Sprintf("split: unknown format %q", opts.Format))
	}
	if err := opts.Ranges.Validate(); err != nil {
		return errors.E(errors.Invalid, err)
	}
	return nil
}

// Split copies every regular file of opts.InputDir into opts.OutputDir, then
// splits each composite depth file (name contains opts.Marker, depth-file
// extension) into one file per range.  A composite file that cannot be read
// is logged and counted in Stats.Failed; the remaining files are still
// processed.
func Split(ctx context.Context, opts *Opts) (Stats, error) {
	var stats Stats
	if err := validate(opts); err != nil {
		return stats, err
	}
	paths, err := util.ListFiles(ctx, opts.InputDir)
	if err != nil {
		return stats, err
	}
	if err := util.MkdirAll(opts.OutputDir); err != nil {
		return stats, err
	}
	log.Printf("split: processing depth files from %s", opts.InputDir)
	log.Printf("split: saving processed files to %s", opts.OutputDir)

	for _, path := range paths {
		if err := util.CopyFile(ctx, path, file.Join(opts.OutputDir, file.Base(path))); err != nil {
			return stats, err
		}
		stats.Copied++
	}
	log.Printf("split: copied %d file(s) to %s", stats.Copied, opts.OutputDir)

	for _, path := range paths {
		base := file.Base(path)
		if _, ok := depth.ParseName(base); !ok || !strings.Contains(base, opts.Marker) {
			continue
		}
		fstats, err := File(ctx, path, opts)
		if err != nil {
			log.Error.Printf("split: %s: %v", path, err)
			stats.Failed++
			continue
		}
		stats.add(fstats)
		log.Printf("split: %s split into %s in %s", base, strings.Join(opts.Ranges.Names(), ", "), opts.OutputDir)
	}
	return stats, nil
}

// File splits one composite depth file into opts.OutputDir, one output per
// range in opts.Ranges.
func File(ctx context.Context, path string, opts *Opts) (stats Stats, err error) {
	if _, err = file.Stat(ctx, path); err != nil {
		return stats, errors.E(errors.NotExist, err, "split", path)
	}
	name, ok := depth.ParseName(file.Base(path))
	if !ok {
		return stats, errors.E(errors.Invalid, "split", path+": not a depth file")
	}
	sample := name.Sample()
	outs := make([]*output, len(opts.Ranges))
	defer func() {
		for _, out := range outs {
			if out == nil {
				continue
			}
			if e := out.close(ctx); e != nil && err == nil {
				err = e
			}
		}
	}()
	for i, r := range opts.Ranges {
		name := depth.SplitName(sample, opts.ChromTag, r.Name)
		if opts.Format == FormatTSVBgz {
			name += ".gz"
		}
		if outs[i], err = createOutput(ctx, file.Join(opts.OutputDir, name), opts.Format == FormatTSVBgz); err != nil {
			return
		}
	}

	stats.Written = make(map[string]int, len(opts.Ranges))
	for _, r := range opts.Ranges {
		stats.Written[r.Name] = 0
	}
	index := interval.NewIndex(opts.Ranges)
	stats.Malformed, err = depth.ForEach(ctx, path, func(rec depth.Record) error {
		idx := index.Classify(rec.Pos)
		if idx < 0 {
			stats.Dropped++
			return nil
		}
		r := opts.Ranges[idx]
		if opts.Relabel {
			rec.Pos = r.Rebase(rec.Pos)
		}
		stats.Written[r.Name]++
		return outs[idx].w.Write(rec)
	})
	if err != nil {
		return
	}
	stats.Split = 1
	return
}

// output is one split file being written.
type output struct {
	f    file.File
	bgzf *bgzf.Writer
	w    *depth.Writer
}

func createOutput(ctx context.Context, path string, compress bool) (*output, error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.E(err, "create", path)
	}
	out := &output{f: f}
	var w io.Writer = f.Writer(ctx)
	if compress {
		out.bgzf = bgzf.NewWriter(w, 1)
		w = out.bgzf
	}
	out.w = depth.NewWriter(w)
	return out, nil
}

func (o *output) close(ctx context.Context) (err error) {
	defer file.CloseAndReport(ctx, o.f, &err)
	if err = o.w.Flush(); err != nil {
		return
	}
	if o.bgzf != nil {
		err = o.bgzf.Close()
	}
	return
}
