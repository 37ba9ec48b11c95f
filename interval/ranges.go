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

package interval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/klauspost/compress/gzip"
)

// PosType is the coordinate type of depth-file positions.  Positions are
// 1-based, as in the samtools depth text output.
type PosType int32

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxInt32

// Range is a named, 1-based, closed interval [Start, End].
type Range struct {
	Name  string
	Start PosType
	End   PosType
}

// Contains returns true iff pos lies in [r.Start, r.End].
func (r Range) Contains(pos PosType) bool {
	return r.Start <= pos && pos <= r.End
}

// Rebase converts pos to a coordinate relative to the start of r, so that
// r.Start maps to 1.  The result is only meaningful when r.Contains(pos).
func (r Range) Rebase(pos PosType) PosType {
	return pos - r.Start + 1
}

// Len returns the number of positions covered by r.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return int(r.End-r.Start) + 1
}

// String renders r as "start-end", the form accepted by ParseWindow.
func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Table is an ordered list of ranges.  Lookups return the first match, so
// overlapping tables are legal but later entries are shadowed.
type Table []Range

// RDNARanges subdivides the 45S rDNA unit on the GL000220.1 contig into its
// 18S, 5.8S and 28S rRNA regions.
var RDNARanges = Table{
	{Name: "18S", Start: 3657, End: 5527},
	{Name: "5.8S", Start: 6623, End: 6779},
	{Name: "28S", Start: 7935, End: 12969},
}

// Classify returns the index of the first range containing pos, or -1.
func (t Table) Classify(pos PosType) int {
	for i := range t {
		if t[i].Contains(pos) {
			return i
		}
	}
	return -1
}

// Names returns the range names in table order.
func (t Table) Names() []string {
	names := make([]string, len(t))
	for i, r := range t {
		names[i] = r.Name
	}
	return names
}

// Validate checks that every range is non-empty, positive and uniquely named.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("interval.Table: no ranges")
	}
	seen := make(map[string]struct{}, len(t))
	for _, r := range t {
		if r.Name == "" {
			return fmt.Errorf("interval.Table: unnamed range %v", r)
		}
		if r.Start <= 0 || r.End < r.Start {
			return fmt.Errorf("interval.Table: invalid range %s [%d, %d]", r.Name, r.Start, r.End)
		}
		if _, ok := seen[r.Name]; ok {
			return fmt.Errorf("interval.Table: duplicate range name %s", r.Name)
		}
		seen[r.Name] = struct{}{}
	}
	return nil
}

// ParseWindow parses a position window of the form
//   [1-based first pos]-[last pos]
//   [1-based pos]
// into a closed Range with an empty name.
func ParseWindow(window string) (result Range, err error) {
	if len(window) == 0 {
		err = fmt.Errorf("interval.ParseWindow: empty window string")
		return
	}
	dashPos := strings.IndexByte(window, '-')
	if dashPos == -1 {
		var pos1 int64
		if pos1, err = strconv.ParseInt(window, 10, 32); err != nil {
			return
		}
		if pos1 <= 0 {
			err = fmt.Errorf("interval.ParseWindow: position %v out of range", window)
			return
		}
		result.Start = PosType(pos1)
		result.End = PosType(pos1)
		return
	}
	var start1, end1 int64
	if start1, err = strconv.ParseInt(window[:dashPos], 10, 32); err != nil {
		return
	}
	if start1 <= 0 {
		err = fmt.Errorf("interval.ParseWindow: position %v out of range", window[:dashPos])
		return
	}
	if end1, err = strconv.ParseInt(window[dashPos+1:], 10, 32); err != nil {
		return
	}
	if end1 < start1 {
		err = fmt.Errorf("interval.ParseWindow: invalid window %v", window)
		return
	}
	result.Start = PosType(start1)
	result.End = PosType(end1)
	return
}

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// NewTable loads named ranges from a BED-like stream with (at least) four
// columns: chrom, 0-based start, end, name.  Comment ("#") and "track"
// lines are ignored.  Ranges keep the order of the input.
func NewTable(reader io.Reader) (table Table, err error) {
	scanner := bufio.NewScanner(reader)
	var tokens [4][]byte
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		if len(curLine) > 0 && curLine[0] == '#' {
			continue
		}
		nToken := getTokens(tokens[:], curLine)
		if nToken == 0 || gunsafe.BytesToString(tokens[0]) == "track" {
			continue
		}
		if nToken != 4 {
			err = fmt.Errorf("interval.NewTable: line %d has fewer tokens than expected", lineIdx)
			return
		}
		var start0, end int
		if start0, err = strconv.Atoi(gunsafe.BytesToString(tokens[1])); err != nil {
			return
		}
		if end, err = strconv.Atoi(gunsafe.BytesToString(tokens[2])); err != nil {
			return
		}
		if start0 < 0 || end <= start0 || end >= PosTypeMax {
			err = fmt.Errorf("interval.NewTable: invalid coordinate pair on line %d", lineIdx)
			return
		}
		table = append(table, Range{
			Name:  string(tokens[3]),
			Start: PosType(start0 + 1),
			End:   PosType(end),
		})
	}
	if err = scanner.Err(); err != nil {
		return
	}
	if err = table.Validate(); err != nil {
		return nil, err
	}
	log.Printf("range table loaded, %d range(s)", len(table))
	return
}

// NewTableFromPath is a wrapper for NewTable that takes a path instead of an
// io.Reader.  Gzipped input is detected by file extension.
func NewTableFromPath(ctx context.Context, path string) (table Table, err error) {
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return NewTable(reader)
}
