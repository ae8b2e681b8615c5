package visualize

import (
	"fmt"
)

// Kind classifies a Visualize failure.
type Kind int

const (
	// NoFileSelected means that no BAM path was given, or that the path does
	// not end in ".bam".
	NoFileSelected Kind = iota + 1
	// InvalidRegionFormat means that the region text is not of the form
	// "chr:start-end".
	InvalidRegionFormat
	// InvalidRegionRange means that the region text is well formed but its
	// coordinates are unusable, e.g. start > end.
	InvalidRegionRange
	// FileOpenError means that the BAM file or its index could not be opened
	// or read.
	FileOpenError
)

var kindNames = map[Kind]string{
	NoFileSelected:      "NoFileSelected",
	InvalidRegionFormat: "InvalidRegionFormat",
	InvalidRegionRange:  "InvalidRegionRange",
	FileOpenError:       "FileOpenError",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// User-facing messages.
const (
	msgNoFileSelected = "Please select a BAM file."
	msgInvalidFormat  = "Invalid region format. Please use the format: chromosome:start-end"
	msgStartAfterEnd  = "Invalid region. Start position cannot be greater than the end position."
	msgFileOpenPrefix = "Error reading BAM file: "
)

// Error describes a failed Visualize call.  Message is the text shown to the
// user and recorded in the OperationLog.
type Error struct {
	Kind    Kind
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is returns true if err is a *Error of the given kind.
func Is(kind Kind, err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
