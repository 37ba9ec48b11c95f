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

package depth

import (
	"fmt"
	"strings"
)

const (
	// Ext is the extension of uncompressed depth files.
	Ext = ".txt"
	// GzipExt is the extension of gzip- or bgzf-compressed depth files.
	GzipExt = ".txt.gz"
)

// Name is a parsed depth-file basename of the form
//   {sample}_{chrom}_{region}_depth.txt
// e.g. "TCGA-4Z-AA7Y-10A_GL000220v1_45S_depth.txt".  Only the sample token is
// mandatory.
type Name struct {
	// Base is the full basename.
	Base string
	// Stem is Base without the extension.
	Stem string
	// Ext is either Ext or GzipExt.
	Ext string
	// Tokens is Stem split on '_'.
	Tokens []string
}

// ParseName parses basename.  It returns false if basename does not carry a
// recognized depth-file extension.
func ParseName(basename string) (Name, bool) {
	var ext string
	switch {
	case strings.HasSuffix(basename, GzipExt):
		ext = GzipExt
	case strings.HasSuffix(basename, Ext):
		ext = Ext
	default:
		return Name{}, false
	}
	stem := strings.TrimSuffix(basename, ext)
	return Name{
		Base:   basename,
		Stem:   stem,
		Ext:    ext,
		Tokens: strings.Split(stem, "_"),
	}, true
}

// Sample returns the sample ID, the first '_'-delimited token of the stem.
func (n Name) Sample() string {
	return n.Tokens[0]
}

// Chrom returns the second token (the contig tag), or "" if absent.
func (n Name) Chrom() string {
	if len(n.Tokens) < 2 {
		return ""
	}
	return n.Tokens[1]
}

// Region returns the third token (the rDNA region tag, e.g. "45S"), or "" if
// absent.
func (n Name) Region() string {
	if len(n.Tokens) < 3 {
		return ""
	}
	return n.Tokens[2]
}

// Core returns the stem with the leading "{sample}_" removed, e.g.
// "chr1_exon_depth" for "S1_chr1_exon_depth.txt" in sample directory "S1".
func (n Name) Core(sample string) string {
	return strings.Replace(n.Stem, sample+"_", "", -1)
}

// SplitName returns the basename of the split output for the given sample,
// contig tag and region: "{sample}_{chrom}_{region}_depth.txt".
func SplitName(sample, chrom, region string) string {
	return fmt.Sprintf("%s_%s_%s_depth%s", sample, chrom, region, Ext)
}

// SplitComposite splits a composite summary label "{sample}_{suffix}" into
// its sample ID and suffix.  The suffix is the second '_' token, so
// "S1_45S" yields ("S1", "45S").
func SplitComposite(label string) (sample, suffix string) {
	parts := strings.Split(label, "_")
	sample = parts[0]
	if len(parts) > 1 {
		suffix = parts[1]
	}
	return
}
