package visualize

import (
	"fmt"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/bamviz/encoding/bamprovider"
	"github.com/grailbio/bamviz/interval"
	"github.com/grailbio/bamviz/pileup"
	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
)

// State is the stage a Visualizer is in.  Outside of a Visualize call the
// state is always Idle.
type State int

const (
	// Idle means no Visualize call is running.
	Idle State = iota
	// Validating checks the BAM path and parses the region text.
	Validating
	// Querying reads the overlapping records from the BAM file.
	Querying
	// Aggregating computes coverage and spans.
	Aggregating
	// Rendering hands the datasets to the caller.
	Rendering
	// Failed is entered when a call fails, right before returning to Idle.
	Failed
)

var stateNames = [...]string{"Idle", "Validating", "Querying", "Aggregating", "Rendering", "Failed"}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Opts defines the behavior of a Visualizer.
type Opts struct {
	// Index is the BAM index path. If "", the provider's default lookup is
	// used (bampath + ".bai", then bampath with ".bam" replaced by ".bai").
	Index string
	// MaxRegionLen bounds the number of positions in a region.  0 means no
	// limit.
	MaxRegionLen int
	// Notify, if not nil, is called with the message of every failure.
	Notify func(msg string)
	// Prepare, if not nil, is called with the BAM path once the inputs are
	// valid, before the file is opened.  An error fails the call with
	// FileOpenError.
	Prepare func(bamPath string) error
	// NewProvider opens the BAM file.  Defaults to bamprovider.NewProvider.
	NewProvider func(path string, opts ...bamprovider.ProviderOpts) bamprovider.Provider
}

// DefaultOpts are the options used by the bio-bamviz command.
var DefaultOpts = Opts{
	MaxRegionLen: 10000000,
}

// Result is the outcome of one Visualize call.  Exactly one of the following
// holds:
//   - Err == nil, and Region, NumRecords, Coverage, Spans and Names are set.
//   - Err != nil, and all the other fields are zero.
type Result struct {
	Region interval.Region
	// NumRecords is the number of records that overlapped Region.
	NumRecords int
	// Coverage has one entry per position of Region.
	Coverage []pileup.Depth
	// Spans has one entry per overlapping record, in query order.
	Spans []pileup.Span
	// Names are the record names, indexed like Spans.
	Names []string
	Err   *Error
}

// OK returns true if the call succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Visualizer computes the bamviz datasets for (BAM path, region) pairs.  A
// Visualizer may be used for any number of calls, but not concurrently.
type Visualizer struct {
	opts  Opts
	state State
	log   OperationLog
}

// New creates a Visualizer.
func New(opts Opts) *Visualizer {
	if opts.NewProvider == nil {
		opts.NewProvider = bamprovider.NewProvider
	}
	return &Visualizer{opts: opts}
}

// State returns the current state.
func (v *Visualizer) State() State {
	return v.state
}

// Log returns the log of failure messages.
func (v *Visualizer) Log() *OperationLog {
	return &v.log
}

func (v *Visualizer) setState(s State) {
	log.Debug.Printf("bamviz: %v -> %v", v.state, s)
	v.state = s
}

// Visualize validates bamPath and regionText, reads the records of the BAM
// file overlapping the region, and returns their coverage and clipped spans.
//
// The path is checked first: it must be nonempty and end in ".bam".  The
// region text must be of the form accepted by interval.ParseRegion.  Nothing
// is retried; on failure the Result carries the error and the caller may call
// Visualize again.
func (v *Visualizer) Visualize(bamPath, regionText string) Result {
	v.setState(Validating)
	if bamPath == "" || bamprovider.GuessFileType(bamPath) != bamprovider.BAM {
		return v.fail(&Error{Kind: NoFileSelected, Message: msgNoFileSelected})
	}
	region, err := interval.ParseRegion(regionText)
	if err != nil {
		return v.fail(regionError(err))
	}
	if v.opts.MaxRegionLen > 0 && region.Len() > v.opts.MaxRegionLen {
		return v.fail(&Error{
			Kind:    InvalidRegionRange,
			Message: fmt.Sprintf("Invalid region. The region spans %d positions; at most %d are allowed.", region.Len(), v.opts.MaxRegionLen),
		})
	}

	v.setState(Querying)
	if v.opts.Prepare != nil {
		if err := v.opts.Prepare(bamPath); err != nil {
			return v.fail(fileError(err))
		}
	}
	recs, err := v.query(bamPath, region)
	if err != nil {
		return v.fail(fileError(err))
	}

	v.setState(Aggregating)
	result := Result{
		Region:     region,
		NumRecords: len(recs),
		Coverage:   pileup.Coverage(region, recs),
		Spans:      pileup.Spans(region, recs),
		Names:      make([]string, len(recs)),
	}
	for i, r := range recs {
		result.Names[i] = r.Name
	}

	v.setState(Rendering)
	log.Debug.Printf("bamviz: %s: %d records, max depth %d", region, len(recs), pileup.MaxDepth(result.Coverage))
	v.setState(Idle)
	return result
}

// query reads all the records of the BAM file that overlap region.  The file
// is opened here and closed before returning, on all paths.
func (v *Visualizer) query(bamPath string, region interval.Region) (recs []*sam.Record, err error) {
	provider := v.opts.NewProvider(bamPath, bamprovider.ProviderOpts{Index: v.opts.Index})
	defer func() {
		if e := provider.Close(); e != nil && err == nil {
			err = e
		}
	}()
	iter := provider.NewIterator(region)
	for iter.Scan() {
		recs = append(recs, iter.Record())
	}
	if err = iter.Close(); err != nil {
		return nil, err
	}
	return recs, nil
}

func (v *Visualizer) fail(e *Error) Result {
	v.setState(Failed)
	v.log.Append(e.Message)
	if v.opts.Notify != nil {
		v.opts.Notify(e.Message)
	}
	v.setState(Idle)
	return Result{Err: e}
}

func fileError(err error) *Error {
	return &Error{Kind: FileOpenError, Message: msgFileOpenPrefix + err.Error(), Cause: err}
}

// regionError converts an interval.ParseRegion error.
func regionError(err error) *Error {
	switch errors.Cause(err) {
	case interval.ErrInvalidRange:
		return &Error{Kind: InvalidRegionRange, Message: msgStartAfterEnd, Cause: err}
	case interval.ErrOutOfRange:
		return &Error{
			Kind:    InvalidRegionRange,
			Message: fmt.Sprintf("Invalid region. Positions must be between 1 and %d.", interval.PosTypeMax-1),
			Cause:   err,
		}
	}
	return &Error{Kind: InvalidRegionFormat, Message: msgInvalidFormat, Cause: err}
}
