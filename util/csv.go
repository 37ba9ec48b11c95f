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

package util

import (
	"context"
	"math"

	"github.com/gocarina/gocsv"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
)

// WriteCSV writes rows, a slice of structs with `csv` tags, to path as a
// comma-separated table with a header row.  Any existing file is replaced.
func WriteCSV(ctx context.Context, path string, rows interface{}) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "create", path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	if err = gocsv.Marshal(rows, out.Writer(ctx)); err != nil {
		return errors.E(err, "write", path)
	}
	return nil
}

// ReadCSV reads a comma-separated table with a header row from path into
// rows, a pointer to a slice of structs with `csv` tags.
func ReadCSV(ctx context.Context, path string, rows interface{}) (err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return errors.E(errors.NotExist, err, "open", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	if err = gocsv.Unmarshal(in.Reader(ctx), rows); err != nil {
		return errors.E(errors.Invalid, err, "parse", path)
	}
	return nil
}

// Round3 rounds x to three decimal places, the precision of every average
// written by this repository.
func Round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
