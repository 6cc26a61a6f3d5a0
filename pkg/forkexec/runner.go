package forkexec

import (
	"time"
)

// Runner is the configuration for a single sandboxed command: the execve
// parameters, the log sink and the wall clock budget. The child is created
// in new cgroup, IPC, net, mount, pid, user and UTS namespaces and sees
// itself as uid 0, gid 0, pid 1 in an otherwise empty world.
type Runner struct {
	// Path is the pathname passed to execve. execve performs no PATH
	// search, so this should be absolute.
	Path string

	// argv and env for execve syscall for the child process.
	// Args[0] is the child's view of its own name and may differ
	// from Path.
	Args []string
	Env  []string

	// LogFile is an already open writable file descriptor that becomes
	// the child's stdout and stderr. Stdin is closed in the child.
	// The caller must keep it open for the duration of Run; it is not
	// duplicated by the parent.
	LogFile uintptr

	// Timeout is the wall clock budget for the child. When it expires
	// the child is killed with SIGKILL; there is no grace period.
	Timeout time.Duration

	// ErrorBuffer receives the payload the child writes on the error
	// pipe when it fails between clone3 and execve. Reads are capped to
	// PIPE_BUF, within which a single pipe write is atomic. May be nil
	// if the caller does not care about the payload bytes.
	ErrorBuffer []byte
}
