package bamprovider

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/bgzf/index"
	"github.com/biogo/hts/sam"
	"github.com/grailbio/bamviz/interval"
	"github.com/grailbio/base/errorreporter"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"v.io/x/lib/vlog"
)

// BAMProvider implements Provider for BAM files.  The BAM and index paths are
// opened with grailbio/base/file, so any registered file implementation may
// serve them.
type BAMProvider struct {
	// Path of the *.bam file. Must be nonempty.
	Path string
	// Index is the pathname of *.bam.bai file. If "", see ProviderOpts.Index.
	Index string
	err   errorreporter.T

	mu      sync.Mutex
	nActive int
	header  *sam.Header
}

type bamIterator struct {
	provider *BAMProvider
	in       file.File
	reader   *bam.Reader
	iter     *bam.Iterator
	// Reference ID and 0-based half-open range to read.
	refID        int
	start0, end  int
	err          error
	rec          *sam.Record
	done, closed bool
}

func (b *BAMProvider) indexPath(ctx context.Context) string {
	if b.Index != "" {
		return b.Index
	}
	index := b.Path + ".bai"
	if _, err := file.Stat(ctx, index); err != nil && strings.HasSuffix(b.Path, ".bam") {
		alt := strings.TrimSuffix(b.Path, ".bam") + ".bai"
		if _, err := file.Stat(ctx, alt); err == nil {
			return alt
		}
	}
	return index
}

// GetHeader implements the Provider interface.
func (b *BAMProvider) GetHeader() (*sam.Header, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.header != nil {
		return b.header, nil
	}

	ctx := vcontext.Background()
	in, err := file.Open(ctx, b.Path)
	if err != nil {
		err = errors.E(err, "open", b.Path)
		b.err.Set(err)
		return nil, err
	}
	defer in.Close(ctx)
	bamReader, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		err = errors.E(err, "read header", b.Path)
		b.err.Set(err)
		return nil, err
	}
	defer bamReader.Close()
	b.header = bamReader.Header()
	return b.header, nil
}

// Close implements the Provider interface.
func (b *BAMProvider) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.nActive > 0 {
		vlog.Fatalf("%d iterators still active for %+v", b.nActive, b.Path)
	}
	return b.err.Err()
}

// NewIterator implements the Provider interface.
func (b *BAMProvider) NewIterator(region interval.Region) Iterator {
	ctx := vcontext.Background()
	iter := &bamIterator{
		provider: b,
		start0:   int(region.Start0()),
		end:      int(region.End),
	}
	if iter.in, iter.err = file.Open(ctx, b.Path); iter.err != nil {
		iter.err = errors.E(iter.err, "open", b.Path)
		b.err.Set(iter.err)
		return NewErrorIterator(iter.err)
	}
	b.mu.Lock()
	b.nActive++
	b.mu.Unlock()

	idx, err := readIndex(ctx, b.indexPath(ctx))
	if err != nil {
		iter.err = err
		return iter
	}
	if iter.reader, iter.err = bam.NewReader(iter.in.Reader(ctx), 1); iter.err != nil {
		iter.err = errors.E(iter.err, "read header", b.Path)
		return iter
	}
	ref := findRef(iter.reader.Header(), region.RefName)
	if ref == nil {
		log.Debug.Printf("%s: reference %s not in header", b.Path, region.RefName)
		iter.done = true
		return iter
	}
	iter.refID = ref.ID()
	chunks, err := idx.Chunks(ref, iter.start0, iter.end)
	// ErrInvalid is returned for a start beyond the reference's last indexed
	// tile, including references with no records.
	if err == index.ErrNoReference || err == index.ErrInvalid || (err == nil && len(chunks) == 0) {
		// Nothing was ever indexed in this range.
		iter.done = true
		return iter
	}
	if err != nil {
		iter.err = errors.E(err, "query index", b.Path, region.String())
		return iter
	}
	if iter.iter, iter.err = bam.NewIterator(iter.reader, chunks); iter.err != nil {
		iter.err = errors.E(iter.err, "seek", b.Path, region.String())
	}
	return iter
}

func readIndex(ctx context.Context, path string) (idx *bam.Index, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open index", path)
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	if idx, err = bam.ReadIndex(in.Reader(ctx)); err != nil {
		return nil, errors.E(err, "read index", path)
	}
	return idx, nil
}

// Scan implements the Iterator interface.
func (i *bamIterator) Scan() bool {
	if i.err != nil || i.done {
		return false
	}
	for i.iter.Next() {
		rec := i.iter.Record()
		if overlaps(rec, i.refID, i.start0, i.end) {
			i.rec = rec
			return true
		}
		if rec.Ref != nil && rec.Ref.ID() == i.refID && rec.Pos >= i.end {
			// Records are sorted, so nothing later can overlap.
			break
		}
	}
	if err := i.iter.Error(); err != nil && err != io.EOF {
		i.err = errors.E(err, "read", i.provider.Path)
	}
	i.done = true
	return false
}

// Record implements the Iterator interface.
func (i *bamIterator) Record() *sam.Record {
	return i.rec
}

// Err implements the Iterator interface.
func (i *bamIterator) Err() error {
	if i.err == io.EOF {
		return nil
	}
	return i.err
}

// Close implements the Iterator interface.
func (i *bamIterator) Close() error {
	if i.closed {
		vlog.Fatalf("%s: iterator closed twice", i.provider.Path)
	}
	i.closed = true
	ctx := vcontext.Background()
	if i.iter != nil {
		if err := i.iter.Close(); err != nil && err != io.EOF && i.err == nil {
			i.err = errors.E(err, "close", i.provider.Path)
		}
	}
	if i.reader != nil {
		if err := i.reader.Close(); err != nil && i.err == nil {
			i.err = errors.E(err, "close", i.provider.Path)
		}
	}
	if err := i.in.Close(ctx); err != nil && i.err == nil {
		i.err = errors.E(err, "close", i.provider.Path)
	}
	err := i.Err()
	b := i.provider
	if err != nil {
		b.err.Set(err)
	}
	b.mu.Lock()
	b.nActive--
	if b.nActive < 0 {
		vlog.Fatalf("Negative active count for %+v", b.Path)
	}
	b.mu.Unlock()
	return err
}
