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

// Package depth reads and writes per-position read-depth files, the
// three-column text format produced by "samtools depth":
//
//   GL000220v1	3657	112
//   GL000220v1	3658	115
//
// Columns are the sequence name, the 1-based position and the depth.  There
// is no header row.  Lines that do not parse are skipped and counted rather
// than aborting the scan.
package depth

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/rdnacn/interval"
	"github.com/pkg/errors"
)

// Record is one line of a depth file.
type Record struct {
	Seq   string
	Pos   interval.PosType
	Depth uint32
}

// nFields is the number of columns in a depth file.
const nFields = 3

// ParseFields converts the columns of one depth-file line into a Record.
func ParseFields(fields []string) (Record, error) {
	if len(fields) != nFields {
		return Record{}, errors.Errorf("expected %d fields, got %d", nFields, len(fields))
	}
	pos, err := strconv.ParseInt(fields[1], 10, 32)
	if err != nil {
		return Record{}, errors.Wrapf(err, "position %q", fields[1])
	}
	if pos <= 0 {
		return Record{}, errors.Errorf("position %d out of range", pos)
	}
	depth, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return Record{}, errors.Wrapf(err, "depth %q", fields[2])
	}
	return Record{Seq: fields[0], Pos: interval.PosType(pos), Depth: uint32(depth)}, nil
}

// Reader scans Records from a depth file, one line at a time.  Fields are
// split on tabs with no quoting, so a stray quote character affects only its
// own line.  Malformed lines are logged and skipped; Malformed() reports how
// many were seen.  Blank lines are ignored.
type Reader struct {
	sc        *bufio.Scanner
	name      string
	rec       Record
	line      int
	malformed int
	err       error
}

// NewReader creates a Reader.  name is used only in diagnostics.
func NewReader(r io.Reader, name string) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineLen)
	return &Reader{sc: sc, name: name}
}

// maxLineLen bounds the length of one depth-file line.
const maxLineLen = 1 << 20

// Scan advances to the next well-formed record.  It returns false at EOF or
// on an I/O error.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	for r.sc.Scan() {
		r.line++
		line := strings.TrimSpace(r.sc.Text())
		if line == "" {
			continue
		}
		rec, err := ParseFields(strings.Split(line, "\t"))
		if err != nil {
			r.skip(err)
			continue
		}
		r.rec = rec
		return true
	}
	if err := r.sc.Err(); err != nil {
		r.err = errors.Wrapf(err, "%s:%d", r.name, r.line+1)
	}
	return false
}

func (r *Reader) skip(err error) {
	r.malformed++
	log.Error.Printf("%s:%d: skipping invalid line: %v", r.name, r.line, err)
}

// Record returns the record read by the last successful call to Scan.
func (r *Reader) Record() Record { return r.rec }

// Line returns the 1-based line number of the current record, counting blank
// and malformed lines.
func (r *Reader) Line() int { return r.line }

// Malformed returns the number of lines skipped so far.
func (r *Reader) Malformed() int { return r.malformed }

// Err returns the I/O error, if any, that stopped the scan.
func (r *Reader) Err() error { return r.err }

// ForEach opens the depth file at path, transparently decompressing it if
// needed, and calls fn on every well-formed record, stopping at the first
// error fn returns.  It returns the number of malformed lines skipped.
func ForEach(ctx context.Context, path string, fn func(Record) error) (malformed int, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return 0, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	var inr io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(inr, in.Name()); u != nil {
		defer func() {
			if e := u.Close(); e != nil && err == nil {
				err = e
			}
		}()
		inr = u
	}
	r := NewReader(inr, path)
	for r.Scan() {
		if err = fn(r.Record()); err != nil {
			return r.Malformed(), err
		}
	}
	return r.Malformed(), r.Err()
}

// Writer writes Records in depth-file format.
type Writer struct {
	w *tsv.Writer
}

// NewWriter creates a Writer.  Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: tsv.NewWriter(w)}
}

// Write appends one record.
func (w *Writer) Write(rec Record) error {
	w.w.WriteString(rec.Seq)
	w.w.WriteUint32(uint32(rec.Pos))
	w.w.WriteUint32(rec.Depth)
	return w.w.EndLine()
}

// Flush flushes buffered output.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
