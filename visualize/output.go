package visualize

import (
	"context"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/hts/bgzf"
	"github.com/klauspost/compress/gzip"
)

// Format is the file format of the datasets written by WriteResult.
type Format int

const (
	// TSV is plain tab-separated text.
	TSV Format = iota
	// TSVGzip is gzip-compressed TSV.
	TSVGzip
	// TSVBgzip is BGZF-compressed TSV, readable by gzip and indexable by tabix.
	TSVBgzip
)

var formatNames = map[string]Format{
	"tsv":     TSV,
	"tsv-gz":  TSVGzip,
	"tsv-bgz": TSVBgzip,
}

// ParseFormat parses "tsv", "tsv-gz" or "tsv-bgz".
func ParseFormat(name string) (Format, error) {
	f, ok := formatNames[name]
	if !ok {
		return TSV, errors.E(errors.Invalid, "unknown output format", name)
	}
	return f, nil
}

func (f Format) suffix() string {
	switch f {
	case TSVGzip, TSVBgzip:
		return ".tsv.gz"
	}
	return ".tsv"
}

// CoveragePath returns the path of the coverage dataset for prefix.
func CoveragePath(prefix string, format Format) string {
	return prefix + ".coverage" + format.suffix()
}

// SpansPath returns the path of the spans dataset for prefix.
func SpansPath(prefix string, format Format) string {
	return prefix + ".spans" + format.suffix()
}

// WriteCoverage writes one "#CHROM POS DEPTH" line per entry of r.Coverage.
func WriteCoverage(w io.Writer, r Result) error {
	tw := tsv.NewWriter(w)
	tw.WriteString("#CHROM")
	tw.WriteString("POS")
	tw.WriteString("DEPTH")
	if err := tw.EndLine(); err != nil {
		return err
	}
	for _, d := range r.Coverage {
		tw.WriteString(r.Region.RefName)
		tw.WriteUint32(uint32(d.Pos))
		tw.WriteUint32(d.Count)
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteSpans writes one "#RECORD NAME START END" line per entry of r.Spans.
// RECORD is the 1-based record number in query order.  NAME is taken from
// r.Names, or "*" if r.Names has no entry for the record.  Spans that don't
// intersect the region are written as is, with START > END.
func WriteSpans(w io.Writer, r Result) error {
	tw := tsv.NewWriter(w)
	tw.WriteString("#RECORD")
	tw.WriteString("NAME")
	tw.WriteString("START")
	tw.WriteString("END")
	if err := tw.EndLine(); err != nil {
		return err
	}
	for _, s := range r.Spans {
		tw.WriteUint32(uint32(s.Index + 1))
		name := "*"
		if s.Index >= 0 && s.Index < len(r.Names) {
			name = r.Names[s.Index]
		}
		tw.WriteString(name)
		tw.WriteUint32(uint32(s.Start))
		tw.WriteUint32(uint32(s.End))
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteResult writes the coverage and spans datasets of a successful Result
// to CoveragePath(prefix, format) and SpansPath(prefix, format).
func WriteResult(ctx context.Context, r Result, prefix string, format Format) error {
	if !r.OK() {
		return errors.E(errors.Precondition, "cannot write a failed result:", r.Err.Message)
	}
	if err := writeFile(ctx, CoveragePath(prefix, format), format, r, WriteCoverage); err != nil {
		return err
	}
	return writeFile(ctx, SpansPath(prefix, format), format, r, WriteSpans)
}

func writeFile(ctx context.Context, path string, format Format, r Result, write func(io.Writer, Result) error) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "create", path)
	}
	defer func() {
		if e := out.Close(ctx); e != nil && err == nil {
			err = errors.E(e, "close", path)
		}
	}()
	var (
		w  io.Writer = out.Writer(ctx)
		zw io.WriteCloser
	)
	switch format {
	case TSVGzip:
		zw = gzip.NewWriter(w)
	case TSVBgzip:
		zw = bgzf.NewWriter(w, 1)
	}
	if zw != nil {
		w = zw
	}
	if err = write(w, r); err != nil {
		return errors.E(err, "write", path)
	}
	if zw != nil {
		if err = zw.Close(); err != nil {
			return errors.E(err, "compress", path)
		}
	}
	log.Printf("wrote %s", path)
	return nil
}
