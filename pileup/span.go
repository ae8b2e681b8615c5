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

// Span is a record's alignment span clipped to the queried region.  Index is
// the record's 0-based position in query order.  Start and End are 1-based
// and inclusive.
type Span struct {
	Index int
	Start PosType
	End   PosType
}

// Empty returns true if the clipped span contains no position, i.e. the
// record did not actually intersect the region.
func (s Span) Empty() bool {
	return s.Start > s.End
}

// Spans returns one Span per record, in the order of recs.  Spans are not
// filtered: a record that doesn't intersect region yields an Empty span.
func Spans(region interval.Region, recs []*sam.Record) []Span {
	spans := make([]Span, len(recs))
	for i, r := range recs {
		start, end := clip(region, r)
		spans[i] = Span{Index: i, Start: start, End: end}
	}
	return spans
}
