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

// Common pileup components.

// PosType is the integer type used to represent genomic positions.
type PosType = interval.PosType

// AlignmentStart returns the 1-based position of the first reference base
// covered by samr.
func AlignmentStart(samr *sam.Record) PosType {
	return PosType(samr.Pos + 1)
}

// AlignmentEnd returns the 1-based position of the last reference base
// covered by samr.  For a record whose CIGAR consumes no reference bases this
// is AlignmentStart(samr) - 1.
func AlignmentEnd(samr *sam.Record) PosType {
	end := samr.End()
	if end < samr.Pos {
		end = samr.Pos
	}
	return PosType(end)
}

// clip returns the intersection of samr's 1-based closed alignment span with
// region.  start > end when the two do not intersect.
func clip(region interval.Region, samr *sam.Record) (start, end PosType) {
	start, end = AlignmentStart(samr), AlignmentEnd(samr)
	if start < region.Start {
		start = region.Start
	}
	if end > region.End {
		end = region.End
	}
	return start, end
}
