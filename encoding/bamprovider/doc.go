// Package bamprovider provides region queries over an indexed BAM file.
//
// The Provider is an interface for reading the records of a BAM file that
// overlap a genomic region, using the file's BAI index to seek directly to the
// relevant BGZF chunks.
//
// A fake in-memory Provider and helpers to write small indexed BAM fixtures
// are provided for tests.
package bamprovider
