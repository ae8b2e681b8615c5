package bamprovider

import (
	"strings"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/bamviz/interval"
	"v.io/x/lib/vlog"
)

// ProviderOpts defines options for NewProvider.
type ProviderOpts struct {
	// Index specifies the name of the BAM index file. If Index=="", it
	// defaults to path + ".bai", or to path with its ".bam" suffix replaced by
	// ".bai" if only the latter exists.
	Index string
}

// Provider allows reading the records of a BAM file that overlap a region.
// Thread safe.
type Provider interface {
	// GetHeader returns the header for the provided BAM data.  The callee
	// must not modify the returned header object.
	//
	// REQUIRES: Close has not been called.
	GetHeader() (*sam.Header, error)

	// NewIterator returns an iterator over the records that overlap the
	// region. A record overlaps the region if it is aligned to the region's
	// reference and covers at least one of its positions; full containment is
	// not required.
	//
	// If the region's reference is not in the header, or no record was ever
	// indexed for it, the iterator yields nothing and reports no error.
	//
	// REQUIRES: Close has not been called.
	NewIterator(region interval.Region) Iterator

	// Close must be called exactly once. It returns any error encountered
	// by the provider, or any iterator created by the provider.
	//
	// REQUIRES: All the iterators created by NewIterator have been closed.
	Close() error
}

// Iterator iterates over sam.Records in a particular genomic range, in
// coordinate order. Thread compatible.
type Iterator interface {
	// Scan returns where there are any records remaining in the iterator,
	// and if so, advances the iterator to the next record. If the iterator
	// reaches the end of its range, Scan() returns false.  If an error
	// occurs, Scan() returns false and the error can be retrieved by
	// calling Error().
	//
	// REQUIRES: Close has not been called.
	Scan() bool

	// Record returns the current record in the iterator. This must be
	// called only after a call to Scan() returns true.
	//
	// REQUIRES: Close has not been called.
	Record() *sam.Record

	// Err returns the error encoutered during iteration, or nil if no error
	// occurred.  An io.EOF error will be translated to nil.
	Err() error

	// Close must be called exactly once. It releases the file handles held by
	// the iterator and returns the value of Err().
	Close() error
}

// FileType represents the type of a BAM-like file.
type FileType int

const (
	// Unknown is a sentinel.
	Unknown FileType = iota
	// BAM file
	BAM
)

// GuessFileType returns the file type from the pathname. Only a literal
// ".bam" suffix is recognized. Returns Unknown otherwise.
func GuessFileType(path string) FileType {
	if strings.HasSuffix(path, ".bam") {
		return BAM
	}
	vlog.VI(1).Infof("%v: could not detect file type.", path)
	return Unknown
}

// NewProvider creates a Provider object that can handle the BAM file at
// "path".
func NewProvider(path string, optList ...ProviderOpts) Provider {
	opts := ProviderOpts{}
	for _, o := range optList {
		if o.Index != "" {
			opts.Index = o.Index
		}
	}
	return &BAMProvider{Path: path, Index: opts.Index}
}

// overlaps checks whether rec covers at least one position of the 0-based
// half-open interval [start0, end) on the reference refID.  A record that
// consumes no reference bases is treated as covering its start position.
func overlaps(rec *sam.Record, refID, start0, end int) bool {
	if rec.Ref == nil || rec.Ref.ID() != refID {
		return false
	}
	recEnd := rec.End()
	if recEnd <= rec.Pos {
		recEnd = rec.Pos + 1
	}
	return rec.Pos < end && recEnd > start0
}

// findRef returns the reference named name in header, or nil.
func findRef(header *sam.Header, name string) *sam.Reference {
	for _, r := range header.Refs() {
		if r.Name() == name {
			return r
		}
	}
	return nil
}
