package forkexec

// Status is the supervision outcome of a Run invocation. The declaration
// order is the wire order of the C ABI enum and must not change.
type Status int32

// Status values for the sandbox runner
const (
	StatusChildTerminated   Status = iota // child reaped, WaitStatus valid
	StatusFailurePipeCreate               // pipe2 failed, nothing launched
	StatusFailureClone                    // clone3 refused the namespace set
	StatusFailureRead                     // read on the error pipe failed
	StatusFailurePreExecve                // child failed before execve, payload in ErrorBuffer
	StatusFailurePoll                     // ppoll on the pidfd failed
	StatusFailureTimeout                  // child exceeded the deadline
	StatusFailureWait                     // waitpid did not return the child
)

var statusString = []string{
	"child terminated",
	"pipe create failed",
	"clone failed",
	"read failed",
	"pre-execve failure",
	"poll failed",
	"timeout",
	"wait failed",
}

func (s Status) String() string {
	if s >= StatusChildTerminated && s <= StatusFailureWait {
		return statusString[s]
	}
	return "invalid"
}
