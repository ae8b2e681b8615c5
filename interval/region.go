package interval

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// PosType is the coordinate type used for genomic positions.
type PosType int32

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxInt32

var (
	// ErrInvalidFormat is the cause of every ParseRegion error due to text that
	// is not of the form "chr<name>:<start>-<end>".
	ErrInvalidFormat = errors.New("invalid region format")
	// ErrInvalidRange is the cause of ParseRegion and NewRegion errors due to
	// a start position greater than the end position.
	ErrInvalidRange = errors.New("invalid region range")
	// ErrOutOfRange is the cause of ParseRegion and NewRegion errors due to a
	// start of 0 or a position that does not fit in a PosType.
	ErrOutOfRange = errors.New("region position out of range")
)

// IsRangeError checks whether err was caused by well-formed region text with
// unusable coordinates.
func IsRangeError(err error) bool {
	cause := errors.Cause(err)
	return cause == ErrInvalidRange || cause == ErrOutOfRange
}

// The chromosome capture is greedy, so "chr1:2:3-4" names contig "chr1:2".
var regionRE = regexp.MustCompile(`^(chr.+):([0-9]+)-([0-9]+)$`)

// Region is a genomic interval.  Start and End are 1-based and inclusive, and
// 1 <= Start <= End always holds for a Region returned by this package.
type Region struct {
	RefName string
	Start   PosType
	End     PosType
}

// NewRegion validates the given 1-based closed interval and returns it as a
// Region.
func NewRegion(refName string, start, end PosType) (Region, error) {
	if start < 1 || end >= PosTypeMax {
		return Region{}, errors.Wrapf(ErrOutOfRange, "%s:%d-%d", refName, start, end)
	}
	if start > end {
		return Region{}, errors.Wrapf(ErrInvalidRange, "%s:%d-%d: start is greater than end", refName, start, end)
	}
	return Region{RefName: refName, Start: start, End: end}, nil
}

// ParseRegion parses a region string of the form
//   chr[contig suffix]:[1-based first pos]-[last pos]
// Surrounding whitespace is ignored, and commas are treated as thousands
// separators and dropped everywhere, so "chr16:10,239-10,543" is the same as
// "chr16:10239-10543".
//
// Errors have ErrInvalidFormat, ErrInvalidRange or ErrOutOfRange as their
// errors.Cause.
func ParseRegion(text string) (Region, error) {
	region := strings.Replace(strings.TrimSpace(text), ",", "", -1)
	matches := regionRE.FindStringSubmatch(region)
	if matches == nil {
		return Region{}, errors.Wrapf(ErrInvalidFormat, "%q: must be of form 'chr:start-end'", text)
	}
	start, err := parsePos(matches[2])
	if err != nil {
		return Region{}, err
	}
	end, err := parsePos(matches[3])
	if err != nil {
		return Region{}, err
	}
	return NewRegion(matches[1], start, end)
}

// parsePos parses a string of decimal digits.  Values that overflow PosType
// are range errors rather than format errors since the regexp has already
// accepted the text.
func parsePos(s string) (PosType, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrOutOfRange, "position %v", s)
	}
	return PosType(v), nil
}

// Start0 returns the 0-based start of the region.  [Start0(), End) is the
// region as a 0-based half-open interval.
func (r Region) Start0() PosType {
	return r.Start - 1
}

// Len returns the number of positions in the region.
func (r Region) Len() int {
	return int(r.End-r.Start) + 1
}

// Contains checks whether the 1-based position pos is in the region.
func (r Region) Contains(pos PosType) bool {
	return pos >= r.Start && pos <= r.End
}

// String returns the region in "chr:start-end" form.
func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.RefName, r.Start, r.End)
}
