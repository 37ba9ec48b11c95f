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

/*
bio-rdna-cn estimates ribosomal DNA copy number from per-position read depth
files (3 tab-separated columns: contig, 1-based position, depth).

Composite 45S depth files are split into their 18S, 5.8S and 28S sub-regions,
every region is averaged per sample, and each average is divided by the
sample's baseline read depth (BRD), the mean depth over single-copy
exon/intron regions.

The "run" subcommand does all of this for one project directory; the other
subcommands run one stage each.

Sample usage:
bio-rdna-cn run TCGA-BLCA /data/rdna

bio-rdna-cn baseline \
    --root /data/rdna/chr1_exon_intron \
    --select chr1_exon_depth,chr1_intron_depth \
    --merge chr1_exon_intron \
    --label blood \
    --out /data/rdna/TCGA-BLCA/blood_chr1_exon_intron.csv
*/
package main
