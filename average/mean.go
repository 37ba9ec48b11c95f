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

	"github.com/grailbio/base/log"
	"github.com/grailbio/rdnacn/depth"
	"github.com/grailbio/rdnacn/interval"
	"gonum.org/v1/gonum/stat"
)

// FileAverage is the mean depth of a set of records and the number of
// records it was computed over.
type FileAverage struct {
	Average float64
	Length  int
}

// Accumulator computes a running mean depth.  The zero value is ready to use.
type Accumulator struct {
	sum uint64
	n   int
}

// Add adds one depth to the mean.
func (a *Accumulator) Add(depth uint32) {
	a.sum += uint64(depth)
	a.n++
}

// Result returns the mean and count so far.  The mean of no records is 0.
func (a *Accumulator) Result() FileAverage {
	if a.n == 0 {
		return FileAverage{}
	}
	return FileAverage{Average: float64(a.sum) / float64(a.n), Length: a.n}
}

// File computes the unrounded mean depth of the depth file at path.  If
// window is non-nil, only records whose position lies inside it count.
// Malformed lines are skipped.
func File(ctx context.Context, path string, window *interval.Range) (FileAverage, error) {
	return fileAverage(ctx, path, window, nil)
}

func fileAverage(ctx context.Context, path string, window *interval.Range, plot *series) (FileAverage, error) {
	var acc Accumulator
	malformed, err := depth.ForEach(ctx, path, func(rec depth.Record) error {
		if window != nil && !window.Contains(rec.Pos) {
			return nil
		}
		acc.Add(rec.Depth)
		if plot != nil {
			plot.add(float64(rec.Pos), float64(rec.Depth))
		}
		return nil
	})
	if err != nil {
		return FileAverage{}, err
	}
	if malformed > 0 {
		log.Printf("average: %s: skipped %d malformed line(s)", path, malformed)
	}
	return acc.Result(), nil
}

// Merge combines per-file averages into a length-weighted average:
// sum(avg*len)/sum(len).  Lengths add.  The result is 0 if the total length
// is 0.
func Merge(parts []FileAverage) FileAverage {
	var (
		avgs    = make([]float64, 0, len(parts))
		weights = make([]float64, 0, len(parts))
		total   int
	)
	for _, p := range parts {
		if p.Length == 0 {
			continue
		}
		avgs = append(avgs, p.Average)
		weights = append(weights, float64(p.Length))
		total += p.Length
	}
	if total == 0 {
		return FileAverage{}
	}
	return FileAverage{Average: stat.Mean(avgs, weights), Length: total}
}
