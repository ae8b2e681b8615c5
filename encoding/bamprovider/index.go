package bamprovider

import (
	"context"
	"io"

	"github.com/biogo/hts/bam"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
)

// WriteIndex reads the coordinate-sorted BAM file at bamPath and writes its
// BAI index to indexPath.  If indexPath is "", it defaults to bamPath + ".bai".
func WriteIndex(ctx context.Context, bamPath, indexPath string) (err error) {
	if indexPath == "" {
		indexPath = bamPath + ".bai"
	}
	in, err := file.Open(ctx, bamPath)
	if err != nil {
		return errors.E(err, "open", bamPath)
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	// Single-threaded decompression keeps LastChunk() exact for each record.
	reader, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		return errors.E(err, "read header", bamPath)
	}
	defer func() {
		if e := reader.Close(); e != nil && err == nil {
			err = e
		}
	}()

	var idx bam.Index
	nRecs := 0
	for {
		rec, e := reader.Read()
		if e == io.EOF {
			break
		}
		if e != nil {
			return errors.E(e, "read", bamPath)
		}
		if e := idx.Add(rec, reader.LastChunk()); e != nil {
			return errors.E(e, "index", bamPath, "(is the file coordinate-sorted?)")
		}
		nRecs++
	}

	out, err := file.Create(ctx, indexPath)
	if err != nil {
		return errors.E(err, "create", indexPath)
	}
	if err = bam.WriteIndex(out.Writer(ctx), &idx); err != nil {
		out.Close(ctx)
		return errors.E(err, "write index", indexPath)
	}
	if err = out.Close(ctx); err != nil {
		return errors.E(err, "close", indexPath)
	}
	log.Debug.Printf("%s: indexed %d records", indexPath, nRecs)
	return nil
}
