// Package buildlog collects a sandboxed child's log stream into a bounded
// in-memory buffer, for callers that have no log file to hand the runner.
package buildlog

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Capture owns the write end of a pipe whose read end is drained into a
// bounded buffer by a background goroutine. The write end is what gets
// passed to the sandbox runner as the log sink; the caller must close it
// (after the child is gone) and then wait on Done before reading Buffer.
type Capture struct {
	W      *os.File
	Max    int64
	Buffer *bytes.Buffer
	Done   <-chan struct{}
}

// NewCapture creates the pipe and starts the drain goroutine. At most
// max+1 bytes are retained, so an overrun is detectable; the remainder of
// the stream is discarded rather than blocking the child.
func NewCapture(max int64) (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	buffer := new(bytes.Buffer)
	done := make(chan struct{})
	go func() {
		io.CopyN(buffer, r, max+1)
		close(done)
		// drain to avoid blocking / SIGPIPE on the writer side
		io.Copy(io.Discard, r)
		r.Close()
	}()
	return &Capture{W: w, Max: max, Buffer: buffer, Done: done}, nil
}

// Truncated reports whether the child wrote more than Max bytes.
func (c *Capture) Truncated() bool {
	return int64(c.Buffer.Len()) > c.Max
}

func (c *Capture) String() string {
	return fmt.Sprintf("Capture[%d/%d]", c.Buffer.Len(), c.Max)
}
