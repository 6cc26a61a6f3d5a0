// Package action describes and performs build actions. Looking inputs up
// in the cache, moving outputs into it and scheduling the graph are the
// caller's concern; an action only transforms inputs into outputs and a
// build log.
package action

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/zopsicle/snowflake/pkg/hash"
)

// Perform is the environment in which one action runs.
type Perform struct {
	// BuildLog receives everything the action writes while performing.
	// For RunCommand it becomes the command's stdout and stderr.
	BuildLog *os.File

	// Scratch is a directory the action may use freely. Outputs are
	// produced there.
	Scratch string
}

// Summary describes a successfully performed action. Success can still
// fail the build later, for example when a declared output turns out not
// to exist.
type Summary struct {
	// OutputPaths are relative to the scratch directory. The count
	// equals Outputs().
	OutputPaths []string

	// Warnings reports whether the action emitted warnings.
	Warnings bool
}

// Action is a unit of work in the build graph.
type Action interface {
	// Inputs is the number of inputs to the action.
	Inputs() int

	// Outputs is the number of outputs of the action.
	Outputs() int

	// Perform performs the action. inputPaths must have Inputs()
	// elements.
	Perform(p *Perform, inputPaths []string) (Summary, error)

	// Hash computes the action's cache key. inputHashes must have
	// Inputs() elements.
	Hash(inputHashes []hash.Hash) hash.Hash
}

// TimeoutError reports that a command exceeded its wall clock budget.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout after %v", e.Timeout)
}

// ExitStatusError reports a command that terminated unsuccessfully.
type ExitStatusError struct {
	WaitStatus unix.WaitStatus
}

func (e *ExitStatusError) Error() string {
	if e.WaitStatus.Signaled() {
		return fmt.Sprintf("command killed by signal %d", e.WaitStatus.Signal())
	}
	return fmt.Sprintf("command exited with status %d", e.WaitStatus.ExitStatus())
}
