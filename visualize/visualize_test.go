package visualize_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/bamviz/encoding/bamprovider"
	"github.com/grailbio/bamviz/interval"
	"github.com/grailbio/bamviz/pileup"
	"github.com/grailbio/bamviz/visualize"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

// countingProvider records how a Visualizer uses its provider.
type countingProvider struct {
	bamprovider.Provider
	nIter, nClose int
}

func (p *countingProvider) NewIterator(r interval.Region) bamprovider.Iterator {
	p.nIter++
	return p.Provider.NewIterator(r)
}

func (p *countingProvider) Close() error {
	p.nClose++
	return p.Provider.Close()
}

func cigar(t *testing.T, s string) sam.Cigar {
	c, err := sam.ParseCigar([]byte(s))
	require.NoError(t, err)
	return c
}

func testRecords(t *testing.T, header *sam.Header) []*sam.Record {
	chr1, chr16 := header.Refs()[0], header.Refs()[1]
	return []*sam.Record{
		bamprovider.NewTestRecord("a", chr1, 10300, cigar(t, "50M")),
		// chr16:10201-10250
		bamprovider.NewTestRecord("b", chr16, 10200, cigar(t, "50M")),
		// chr16:10301-10400
		bamprovider.NewTestRecord("c", chr16, 10300, cigar(t, "100M")),
		// chr16:10351-10450, with a deletion
		bamprovider.NewTestRecord("d", chr16, 10350, cigar(t, "40M20D40M")),
		// chr16:10501-10600
		bamprovider.NewTestRecord("e", chr16, 10500, cigar(t, "100M")),
		// chr16:20001-20010
		bamprovider.NewTestRecord("f", chr16, 20000, cigar(t, "10M")),
	}
}

func writeTestBAM(t *testing.T, dir string) string {
	header := bamprovider.NewTestHeader(t, "chr1", "chr16")
	path := filepath.Join(dir, "test.bam")
	bamprovider.WriteTestBAM(t, path, header, testRecords(t, header))
	return path
}

func depthAt(t *testing.T, r visualize.Result, pos pileup.PosType) uint32 {
	i := int(pos - r.Region.Start)
	require.True(t, i >= 0 && i < len(r.Coverage), "pos %d", pos)
	expect.EQ(t, r.Coverage[i].Pos, pos)
	return r.Coverage[i].Count
}

func TestVisualize(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := writeTestBAM(t, dir)

	v := visualize.New(visualize.DefaultOpts)
	r := v.Visualize(path, "chr16:10,239-10,543")
	require.True(t, r.OK(), "%v", r.Err)
	expect.EQ(t, r.Region, interval.Region{RefName: "chr16", Start: 10239, End: 10543})
	expect.EQ(t, r.NumRecords, 4)
	expect.EQ(t, len(r.Coverage), 305)
	expect.EQ(t, r.Names, []string{"b", "c", "d", "e"})
	expect.EQ(t, r.Spans, []pileup.Span{
		{Index: 0, Start: 10239, End: 10250},
		{Index: 1, Start: 10301, End: 10400},
		{Index: 2, Start: 10351, End: 10450},
		{Index: 3, Start: 10501, End: 10543},
	})
	expect.EQ(t, depthAt(t, r, 10239), uint32(1))
	expect.EQ(t, depthAt(t, r, 10250), uint32(1))
	expect.EQ(t, depthAt(t, r, 10251), uint32(0))
	expect.EQ(t, depthAt(t, r, 10351), uint32(2))
	expect.EQ(t, depthAt(t, r, 10395), uint32(2)) // Inside the deletion.
	expect.EQ(t, depthAt(t, r, 10401), uint32(1))
	expect.EQ(t, depthAt(t, r, 10500), uint32(0))
	expect.EQ(t, depthAt(t, r, 10543), uint32(1))
	expect.EQ(t, pileup.MaxDepth(r.Coverage), uint32(2))
	expect.EQ(t, v.State(), visualize.Idle)
	expect.EQ(t, v.Log().Len(), 0)

	// Same inputs, same result.
	r2 := v.Visualize(path, "chr16:10,239-10,543")
	expect.EQ(t, r2, r)
}

func TestVisualizeEmpty(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := writeTestBAM(t, dir)

	v := visualize.New(visualize.DefaultOpts)
	for _, region := range []string{"chr16:1-100", "chrX:1-100", "chr16:900000-900010"} {
		r := v.Visualize(path, region)
		require.True(t, r.OK(), "%s: %v", region, r.Err)
		expect.EQ(t, r.NumRecords, 0, region)
		expect.EQ(t, len(r.Spans), 0, region)
		expect.EQ(t, len(r.Coverage), r.Region.Len(), region)
		expect.EQ(t, pileup.MaxDepth(r.Coverage), uint32(0), region)
	}
}

func TestVisualizeErrors(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := writeTestBAM(t, dir)
	require.NoError(t, os.Rename(path, filepath.Join(dir, "noindex.bam")))
	require.NoError(t, os.Rename(path+".bai", filepath.Join(dir, "other.bai")))

	tests := []struct {
		path, region string
		kind         visualize.Kind
		msg          string
	}{
		{"", "chr16:1-100", visualize.NoFileSelected, "Please select a BAM file."},
		{"./test.txt", "chr16:1-100", visualize.NoFileSelected, "Please select a BAM file."},
		{"./test.BAM", "chr16:1-100", visualize.NoFileSelected, "Please select a BAM file."},
		// The path is checked before the region.
		{"", "invalid", visualize.NoFileSelected, "Please select a BAM file."},
		{"x.bam", "invalid", visualize.InvalidRegionFormat, "Invalid region format. Please use the format: chromosome:start-end"},
		{"x.bam", "16:1-100", visualize.InvalidRegionFormat, "Invalid region format. Please use the format: chromosome:start-end"},
		{"x.bam", "chr1:1000-1", visualize.InvalidRegionRange, "Invalid region. Start position cannot be greater than the end position."},
		{"x.bam", "chr1:0-10", visualize.InvalidRegionRange, ""},
		{"x.bam", "chr1:1-20000000", visualize.InvalidRegionRange, ""},
		{filepath.Join(dir, "missing.bam"), "chr16:1-100", visualize.FileOpenError, ""},
		{filepath.Join(dir, "noindex.bam"), "chr16:1-100", visualize.FileOpenError, ""},
	}
	var notified []string
	opts := visualize.DefaultOpts
	opts.Notify = func(msg string) { notified = append(notified, msg) }
	v := visualize.New(opts)
	for i, test := range tests {
		r := v.Visualize(test.path, test.region)
		require.False(t, r.OK(), "%+v", test)
		expect.EQ(t, r.Err.Kind, test.kind, test)
		expect.True(t, visualize.Is(test.kind, r.Err), test)
		if test.msg != "" {
			expect.EQ(t, r.Err.Message, test.msg, test)
		}
		if test.kind == visualize.FileOpenError {
			expect.True(t, strings.HasPrefix(r.Err.Message, "Error reading BAM file: "), r.Err.Message)
			expect.NotNil(t, r.Err.Cause, test)
		}
		expect.EQ(t, r.NumRecords, 0, test)
		expect.EQ(t, len(r.Coverage), 0, test)
		expect.EQ(t, len(r.Spans), 0, test)
		expect.EQ(t, v.State(), visualize.Idle, test)
		expect.EQ(t, v.Log().Len(), i+1, test)
		expect.EQ(t, v.Log().Last(), r.Err.Message, test)
	}
	expect.EQ(t, notified, v.Log().Entries())
}

func TestVisualizeNoIOBeforeValidation(t *testing.T) {
	called := 0
	opts := visualize.DefaultOpts
	opts.NewProvider = func(path string, _ ...bamprovider.ProviderOpts) bamprovider.Provider {
		called++
		return bamprovider.NewFakeProvider(nil, nil)
	}
	v := visualize.New(opts)
	for _, args := range [][2]string{
		{"", "chr1:1-10"},
		{"./test.txt", "chr1:1-10"},
		{"a.bam", "invalid"},
		{"a.bam", "chr1:10-1"},
	} {
		r := v.Visualize(args[0], args[1])
		expect.False(t, r.OK(), args)
	}
	expect.EQ(t, called, 0)
}

func TestVisualizePrepare(t *testing.T) {
	header := bamprovider.NewTestHeader(t, "chr1", "chr16")
	var prepared []string
	var prepareErr error
	opened := 0
	opts := visualize.DefaultOpts
	opts.Prepare = func(path string) error {
		prepared = append(prepared, path)
		return prepareErr
	}
	opts.NewProvider = func(path string, _ ...bamprovider.ProviderOpts) bamprovider.Provider {
		opened++
		return bamprovider.NewFakeProvider(header, testRecords(t, header))
	}
	v := visualize.New(opts)

	for _, args := range [][2]string{{"x.txt", "chr1:1-10"}, {"a.bam", "invalid"}, {"a.bam", "chr1:10-1"}} {
		expect.False(t, v.Visualize(args[0], args[1]).OK(), args)
	}
	expect.EQ(t, len(prepared), 0)

	r := v.Visualize("a.bam", "chr16:10239-10543")
	require.True(t, r.OK(), "%v", r.Err)
	expect.EQ(t, prepared, []string{"a.bam"})
	expect.EQ(t, opened, 1)

	prepareErr = os.ErrPermission
	r = v.Visualize("a.bam", "chr16:10239-10543")
	require.False(t, r.OK())
	expect.EQ(t, r.Err.Kind, visualize.FileOpenError)
	expect.EQ(t, r.Err.Message, "Error reading BAM file: "+os.ErrPermission.Error())
	expect.EQ(t, opened, 1)
	expect.EQ(t, v.State(), visualize.Idle)
}

func TestVisualizeClosesProvider(t *testing.T) {
	header := bamprovider.NewTestHeader(t, "chr1", "chr16")
	recs := testRecords(t, header)

	var providers []*countingProvider
	newVisualizer := func(p bamprovider.Provider) *visualize.Visualizer {
		opts := visualize.DefaultOpts
		opts.NewProvider = func(path string, _ ...bamprovider.ProviderOpts) bamprovider.Provider {
			cp := &countingProvider{Provider: p}
			providers = append(providers, cp)
			return cp
		}
		return visualize.New(opts)
	}

	v := newVisualizer(bamprovider.NewFakeProvider(header, recs))
	r := v.Visualize("fake.bam", "chr16:10239-10543")
	require.True(t, r.OK(), "%v", r.Err)
	expect.EQ(t, r.NumRecords, 4)

	v = newVisualizer(bamprovider.NewFailingProvider(header, os.ErrNotExist))
	r = v.Visualize("fake.bam", "chr16:10239-10543")
	require.False(t, r.OK())
	expect.EQ(t, r.Err.Kind, visualize.FileOpenError)
	expect.EQ(t, r.Err.Message, "Error reading BAM file: "+os.ErrNotExist.Error())

	require.Equal(t, 2, len(providers))
	for _, p := range providers {
		expect.EQ(t, p.nIter, 1)
		expect.EQ(t, p.nClose, 1)
	}
}

func TestOperationLog(t *testing.T) {
	var l visualize.OperationLog
	expect.EQ(t, l.Len(), 0)
	expect.EQ(t, l.Last(), "")
	l.Append("one")
	l.Append("two")
	entries := l.Entries()
	expect.EQ(t, entries, []string{"one", "two"})
	entries[0] = "changed"
	expect.EQ(t, l.Entries(), []string{"one", "two"})
	expect.EQ(t, l.Last(), "two")
}

func TestStateString(t *testing.T) {
	expect.EQ(t, visualize.Idle.String(), "Idle")
	expect.EQ(t, visualize.Failed.String(), "Failed")
	expect.EQ(t, visualize.State(42).String(), "State(42)")
	expect.EQ(t, visualize.FileOpenError.String(), "FileOpenError")
}
