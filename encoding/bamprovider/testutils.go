package bamprovider

import (
	"bytes"
	"os"
	"testing"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/grailbio/base/vcontext"
	"github.com/stretchr/testify/require"
)

// TestRefLen is the length of every reference created by NewTestHeader.
const TestRefLen = 1000000

// NewTestHeader creates a coordinate-sorted header with one reference of
// length TestRefLen per name, in the given order.
func NewTestHeader(t testing.TB, names ...string) *sam.Header {
	refs := make([]*sam.Reference, 0, len(names))
	for _, name := range names {
		ref, err := sam.NewReference(name, "", "", TestRefLen, nil, nil)
		require.NoError(t, err)
		refs = append(refs, ref)
	}
	header, err := sam.NewHeader(nil, refs)
	require.NoError(t, err)
	header.SortOrder = sam.Coordinate
	return header
}

// NewTestRecord creates a mapped record at the 0-based position pos of ref.
// The sequence and qualities are filled in to match the query length of
// cigar.
func NewTestRecord(name string, ref *sam.Reference, pos int, cigar sam.Cigar) *sam.Record {
	readLen := 0
	for _, co := range cigar {
		readLen += co.Len() * co.Type().Consumes().Query
	}
	return &sam.Record{
		Name:    name,
		Ref:     ref,
		Pos:     pos,
		MapQ:    60,
		Cigar:   cigar,
		MatePos: -1,
		Seq:     sam.NewSeq(bytes.Repeat([]byte{'A'}, readLen)),
		Qual:    bytes.Repeat([]byte{30}, readLen),
	}
}

// WriteTestBAM writes recs to a BAM file at path and indexes it into
// path + ".bai". recs must be sorted by coordinate.
func WriteTestBAM(t testing.TB, path string, header *sam.Header, recs []*sam.Record) {
	out, err := os.Create(path)
	require.NoError(t, err)
	w, err := bam.NewWriter(out, header, 1)
	require.NoError(t, err)
	for _, r := range recs {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Close())
	require.NoError(t, out.Close())
	require.NoError(t, WriteIndex(vcontext.Background(), path, ""))
}
