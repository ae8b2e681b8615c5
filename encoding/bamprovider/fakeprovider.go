package bamprovider

import (
	"github.com/biogo/hts/sam"
	"github.com/grailbio/bamviz/interval"
)

// fakeProvider is only for unittests. It yields the given records.
type fakeProvider struct {
	header *sam.Header
	recs   []*sam.Record
	err    error
}

type fakeIterator struct {
	recs []*sam.Record
	rec  *sam.Record

	refID       int
	start0, end int
}

// NewFakeProvider creates a provider that returns "header" in response to a
// GetHeader() call, and the members of recs that overlap the requested region
// from NewIterator calls. recs must be sorted by coordinate.
func NewFakeProvider(header *sam.Header, recs []*sam.Record) Provider {
	return &fakeProvider{header: header, recs: recs}
}

// NewFailingProvider creates a provider whose iterators yield no records and
// fail with err.
func NewFailingProvider(header *sam.Header, err error) Provider {
	return &fakeProvider{header: header, err: err}
}

// GetHeader implements the Provider interface. It returns the header passed to
// the constructor.
func (b *fakeProvider) GetHeader() (*sam.Header, error) {
	return b.header, nil
}

// Close implements the Provider interface.
func (b *fakeProvider) Close() error {
	return b.err
}

// NewIterator implements the Provider interface.
func (b *fakeProvider) NewIterator(region interval.Region) Iterator {
	if b.err != nil {
		return NewErrorIterator(b.err)
	}
	iter := &fakeIterator{
		refID:  -1,
		start0: int(region.Start0()),
		end:    int(region.End),
	}
	if ref := findRef(b.header, region.RefName); ref != nil {
		iter.refID = ref.ID()
		iter.recs = b.recs
	}
	return iter
}

// Err implements the Iterator interface.
func (i *fakeIterator) Err() error {
	return nil
}

// Close implements the Iterator interface.
func (i *fakeIterator) Close() error {
	return nil
}

func (i *fakeIterator) Scan() bool {
	for {
		if len(i.recs) == 0 {
			return false
		}
		i.rec = i.recs[0]
		i.recs = i.recs[1:]
		if overlaps(i.rec, i.refID, i.start0, i.end) {
			return true
		}
	}
}

func (i *fakeIterator) Record() *sam.Record {
	// Return a copy so that the code under test cannot alter the
	// original test input data.
	copy := *i.rec
	return &copy
}
