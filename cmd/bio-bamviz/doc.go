// Copyright 2020 Grail Inc.
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
bio-bamviz reports the read coverage of a genomic region of an indexed BAM
file, together with the span of every read overlapping the region.  These are
the two datasets behind a coverage plot and a read-alignment track.

Sample usage:
bio-bamviz \
    --out output-prefix \
    my.bam chr16:10,239-10,543

The region is "<chromosome>:<1-based start>-<inclusive end>".  The chromosome
name must start with "chr"; commas in the positions are ignored.

Two files are written:

output-prefix.coverage.tsv has one line per position of the region:
  #CHROM  POS  DEPTH

output-prefix.spans.tsv has one line per overlapping read, in file order.
START and END are the read's alignment span clipped to the region:
  #RECORD  NAME  START  END

With --format=tsv-gz or --format=tsv-bgz both files are compressed and get a
.tsv.gz suffix.

The BAM index is read from --index if set, else from bampath + ".bai", else
from bampath with ".bam" replaced by ".bai".  --write-index builds the
bampath + ".bai" index before querying.
*/
package main
