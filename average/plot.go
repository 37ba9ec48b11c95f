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
	"bytes"
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// series collects the (position, depth) points of one file for plotting.
type series struct {
	pos, depth []float64
}

func (s *series) add(pos, depth float64) {
	s.pos = append(s.pos, pos)
	s.depth = append(s.depth, depth)
}

// bounds returns the [min, max] of v, widened by one on each side when the
// values are all equal so that the axis is never degenerate.
func bounds(v []float64) *chart.ContinuousRange {
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

// writePNG renders the series as a depth-vs-position line plot.
func (s *series) writePNG(ctx context.Context, path, title string) (err error) {
	if len(s.pos) == 0 {
		return errors.E(errors.Invalid, "no records to plot")
	}
	graph := chart.Chart{
		Title:  title,
		Width:  1000,
		Height: 600,
		XAxis: chart.XAxis{
			Name:  "Position",
			Range: bounds(s.pos),
		},
		YAxis: chart.YAxis{
			Name:  "Depth",
			Range: bounds(s.depth),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Depth",
				XValues: s.pos,
				YValues: s.depth,
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("1f77b4"),
					StrokeWidth: 1,
				},
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err = graph.Render(chart.PNG, buffer); err != nil {
		return err
	}
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "create", path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	_, err = buffer.WriteTo(out.Writer(ctx))
	return err
}
