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
package pileup

import (
	"github.com/biogo/hts/sam"
	"github.com/grailbio/bamviz/interval"
)

// Depth is the number of records covering a 1-based position.
type Depth struct {
	Pos   PosType
	Count uint32
}

// Coverage returns the per-position depth of recs over region: one entry per
// position in [region.Start, region.End], in ascending order, zero-depth
// positions included.  Each record contributes 1 to every position of its
// alignment span clipped to region; records that don't intersect region
// contribute nothing.
//
// Only the span between the first and last aligned reference bases matters;
// deletions and skipped regions inside the alignment are counted as covered.
func Coverage(region interval.Region, recs []*sam.Record) []Depth {
	n := region.Len()
	// diff[i] is depth(region.Start+i) - depth(region.Start+i-1).
	diff := make([]int32, n+1)
	for _, r := range recs {
		start, end := clip(region, r)
		if start > end {
			continue
		}
		diff[start-region.Start]++
		diff[end-region.Start+1]--
	}
	depths := make([]Depth, n)
	var depth int32
	for i := range depths {
		depth += diff[i]
		depths[i] = Depth{Pos: region.Start + PosType(i), Count: uint32(depth)}
	}
	return depths
}

// MaxDepth returns the largest count in depths, or 0 if depths is empty.
func MaxDepth(depths []Depth) uint32 {
	var max uint32
	for _, d := range depths {
		if d.Count > max {
			max = d.Count
		}
	}
	return max
}
