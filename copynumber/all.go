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

package copynumber

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/rdnacn/util"
)

// AllOpts configures CalculateAll.
type AllOpts struct {
	// ProjectID is required.
	ProjectID string
	// AverageDir holds the summaries written by average.AllRegions.  Required.
	AverageDir string
	// Baseline5S is the BRD CSV used for 5S.  Required.
	Baseline5S string
	// Baseline45S is the BRD CSV used for 45S, 18S, 5.8S and 28S.  Required.
	Baseline45S string
	// OutputDir receives one copy-number CSV per region.  Required.
	OutputDir string
	// SummaryPath, if set, receives the concatenation of OutputDir.
	SummaryPath string
}

// baselineFor returns the baseline for a region tag, or "" if the region has
// none.
func (o *AllOpts) baselineFor(region string) string {
	switch region {
	case "5S":
		return o.Baseline5S
	case "45S", "18S", "5.8S", "28S":
		return o.Baseline45S
	}
	return ""
}

func validateAll(opts *AllOpts) error {
	if opts.ProjectID == "" {
		return errors.E(errors.Invalid, "copynumber: project ID must be set")
	}
	if opts.AverageDir == "" || opts.OutputDir == "" {
		return errors.E(errors.Invalid, "copynumber: average and output directories must both be set")
	}
	if opts.Baseline5S == "" || opts.Baseline45S == "" {
		return errors.E(errors.Invalid, "copynumber: 5S and 45S baselines must both be set")
	}
	return nil
}

// CalculateAll runs Calculate for every summary CSV in opts.AverageDir.  The
// region is the first '_' token of the summary's name; regions without a
// baseline are skipped.  A summary that fails is logged and the rest are still
// processed.  Finally the per-region results are concatenated into
// opts.SummaryPath.  It returns the first error seen.
func CalculateAll(ctx context.Context, opts *AllOpts) error {
	if err := validateAll(opts); err != nil {
		return err
	}
	paths, err := util.ListFiles(ctx, opts.AverageDir)
	if err != nil {
		return err
	}
	if err := util.MkdirAll(opts.OutputDir); err != nil {
		return err
	}
	var (
		e    errors.Once
		done = map[string]string{}
	)
	for _, path := range paths {
		base := file.Base(path)
		if !strings.HasSuffix(base, ".csv") {
			continue
		}
		region := strings.SplitN(base, "_", 2)[0]
		brd := opts.baselineFor(region)
		if brd == "" {
			log.Printf("copynumber: %s: no baseline for region %q, skipping", path, region)
			continue
		}
		if prev, ok := done[region]; ok {
			log.Error.Printf("copynumber: %s: region %s already computed from %s, skipping", path, region, prev)
			continue
		}
		done[region] = path
		_, err := Calculate(ctx, &Opts{
			ProjectID:    opts.ProjectID,
			AveragePath:  path,
			BaselinePath: brd,
			OutputPath:   file.Join(opts.OutputDir, ResultName(opts.ProjectID, region)),
		})
		if err != nil {
			log.Error.Printf("copynumber: region %s: %v", region, err)
			e.Set(err)
			continue
		}
		log.Printf("copynumber: calculated copy number for %s", region)
	}
	if opts.SummaryPath != "" {
		if err := Concat(ctx, opts.OutputDir, opts.SummaryPath); err != nil {
			e.Set(err)
		}
	}
	return e.Err()
}

// Concat concatenates every CSV file in dir, in name order, into outPath.
// All files must share the header of the first one; the output carries it
// once.
func Concat(ctx context.Context, dir, outPath string) (err error) {
	paths, err := util.ListFiles(ctx, dir)
	if err != nil {
		return err
	}
	var inputs []string
	for _, path := range paths {
		if strings.HasSuffix(path, ".csv") && path != outPath {
			inputs = append(inputs, path)
		}
	}
	if len(inputs) == 0 {
		return errors.E(errors.NotExist, "concat: no CSV files in", dir)
	}

	out, err := file.Create(ctx, outPath)
	if err != nil {
		return errors.E(err, "create", outPath)
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := csv.NewWriter(out.Writer(ctx))

	var header []string
	nrows := 0
	for _, path := range inputs {
		n, h, err := appendCSV(ctx, path, header, w)
		if err != nil {
			return err
		}
		if header == nil {
			header = h
		}
		nrows += n
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return errors.E(err, "write", outPath)
	}
	log.Printf("copynumber: %d row(s) from %d file(s) written to %s", nrows, len(inputs), outPath)
	return nil
}

// appendCSV copies the records of path to w.  If header is nil, the file's
// header is written and returned; otherwise the file's header must equal it.
func appendCSV(ctx context.Context, path string, header []string, w *csv.Writer) (n int, h []string, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return 0, nil, errors.E(errors.NotExist, err, "open", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	r := csv.NewReader(in.Reader(ctx))
	if h, err = r.Read(); err != nil {
		return 0, nil, errors.E(errors.Invalid, err, "concat: read header", path)
	}
	if header == nil {
		if err = w.Write(h); err != nil {
			return 0, nil, err
		}
	} else if !equal(header, h) {
		return 0, nil, errors.E(errors.Invalid,
			fmt.Sprintf("concat: %s: header %v does not match %v", path, h, header))
	}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, h, errors.E(errors.Invalid, err, "concat: read", path)
		}
		if err := w.Write(rec); err != nil {
			return n, h, err
		}
		n++
	}
	return n, h, nil
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
