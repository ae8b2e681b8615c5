package visualize

import (
	"github.com/grailbio/base/log"
)

// OperationLog is an append-only record of the messages produced by failed
// Visualize calls.  Each message is also written to the process log.
//
// OperationLog is not thread safe; it is owned by a single Visualizer.
type OperationLog struct {
	entries []string
}

// Append adds msg to the log.
func (l *OperationLog) Append(msg string) {
	l.entries = append(l.entries, msg)
	log.Error.Printf("bamviz: %s", msg)
}

// Len returns the number of messages logged so far.
func (l *OperationLog) Len() int {
	return len(l.entries)
}

// Last returns the most recent message, or "" if the log is empty.
func (l *OperationLog) Last() string {
	if len(l.entries) == 0 {
		return ""
	}
	return l.entries[len(l.entries)-1]
}

// Entries returns a copy of all the messages, oldest first.
func (l *OperationLog) Entries() []string {
	return append([]string(nil), l.entries...)
}
