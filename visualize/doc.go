// Package visualize runs the bamviz pipeline for one user action: validate
// the BAM path and region text, query the BAM index, and compute the coverage
// and alignment-span datasets.
//
// Visualize never panics or exits on bad input.  Every failure is returned as
// part of the Result, appended to the Visualizer's OperationLog, and passed
// to the Opts.Notify hook, so that the caller can retry with new input.
package visualize
