package forkexec

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Result is the outcome of supervising one child process.
type Result struct {
	Status Status

	// WaitStatus is the raw kernel wait status word, to be decoded with
	// Exited / ExitStatus / Signaled and friends. Only meaningful when
	// Status is StatusChildTerminated.
	WaitStatus unix.WaitStatus

	// PreExecLen is the number of payload bytes the child wrote into
	// ErrorBuffer. Only meaningful when Status is StatusFailurePreExecve.
	PreExecLen int

	// Err is the underlying cause for failure statuses that have one;
	// it is nil for StatusFailureTimeout. For StatusFailurePreExecve it
	// holds the decoded ChildError when at least the four errno bytes
	// were read, and is nil otherwise.
	Err error
}

func (r Result) String() string {
	switch r.Status {
	case StatusChildTerminated:
		switch {
		case r.WaitStatus.Exited():
			return fmt.Sprintf("Result[Exited(%d)]", r.WaitStatus.ExitStatus())
		case r.WaitStatus.Signaled():
			return fmt.Sprintf("Result[Signaled(%v)]", r.WaitStatus.Signal())
		default:
			return fmt.Sprintf("Result[Wait(%#x)]", int(r.WaitStatus))
		}

	case StatusFailurePreExecve:
		return fmt.Sprintf("Result[PreExecve(%v)]", r.Err)

	default:
		return fmt.Sprintf("Result[%v(%v)]", r.Status, r.Err)
	}
}
