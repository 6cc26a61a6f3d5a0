package forkexec

import (
	"syscall"
	"time"
	_ "unsafe" // required for go:linkname.

	"golang.org/x/sys/unix"
)

//go:linkname beforeFork syscall.runtime_BeforeFork
func beforeFork()

//go:linkname afterFork syscall.runtime_AfterFork
func afterFork()

//go:linkname afterForkInChild syscall.runtime_AfterForkInChild
func afterForkInChild()

// Run spawns the command in a fresh namespace set and blocks until the
// child terminates or the timeout expires. Reentrant across threads as
// long as each call has its own LogFile and ErrorBuffer.
func (r *Runner) Run() Result {
	argv0, argv, env, err := prepareExec(r.Path, r.Args, r.Env)
	if err != nil {
		// a NUL byte inside an argument can never reach clone3
		return Result{Status: StatusFailureClone, Err: err}
	}

	// Identity maps for the new user namespace, formatted while
	// allocation is still safe. The child writes them to /proc/self.
	uidMap, gidMap := prepareIDMaps()

	// The error pipe. O_CLOEXEC on the write end is how the parent
	// learns that execve succeeded: EOF without payload.
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
		return Result{Status: StatusFailurePipeCreate, Err: err}
	}

	pid, pidfd, err1 := r.forkAndExecInChild(argv0, argv, env, uidMap, gidMap, p)

	// restore all signals
	afterFork()
	syscall.ForkLock.Unlock()

	// The write end belongs to the child; close it before reading or the
	// read below would never see EOF.
	unix.Close(p[1])

	if err1 != 0 {
		// no child, no pidfd
		unix.Close(p[0])
		return Result{Status: StatusFailureClone, Err: err1}
	}

	return r.superviseChild(int(pid), pidfd, p[0])
}

// superviseChild owns the child pid, the pidfd and the pipe read end.
// Deferred actions release the pidfd and, unless dismissed by a successful
// reap, kill and reap the child; the pipe read end is closed as soon as it
// has been drained. Every return path releases all three.
func (r *Runner) superviseChild(pid, pidfd, pipeRead int) Result {
	reaped := false
	defer func() {
		if !reaped {
			killAndReap(pid)
		}
		unix.Close(pidfd)
	}()

	// A zero length read would be indistinguishable from EOF, so an
	// absent caller buffer is substituted with a scratch one.
	var scratch [64]byte
	buf := r.ErrorBuffer
	if len(buf) == 0 {
		buf = scratch[:]
	}
	if len(buf) > pipeBufSize {
		// a single read is only guaranteed the whole payload within
		// PIPE_BUF
		buf = buf[:pipeBufSize]
	}

	n, err := readRetry(pipeRead, buf)
	unix.Close(pipeRead)
	if err != nil {
		return Result{Status: StatusFailureRead, Err: err}
	}
	if n > 0 {
		// execve never happened; the payload names the failing
		// syscall. The child has already exited, the guard reaps it.
		res := Result{Status: StatusFailurePreExecve, PreExecLen: n}
		if ce, ok := DecodeChildError(buf[:n]); ok {
			res.Err = ce
		}
		return res
	}

	// EOF: execve closed the write end. Wait for the pidfd to become
	// readable, which happens when the child terminates.
	timedOut, err := pollPidfd(pidfd, r.Timeout)
	if err != nil {
		return Result{Status: StatusFailurePoll, Err: err}
	}
	if timedOut {
		return Result{Status: StatusFailureTimeout}
	}

	var wstatus unix.WaitStatus
	wpid, err := waitRetry(pid, &wstatus)
	if err != nil || wpid != pid {
		return Result{Status: StatusFailureWait, Err: err}
	}
	reaped = true
	return Result{Status: StatusChildTerminated, WaitStatus: wstatus}
}

// readRetry resumes reads interrupted by the runtime's own signals.
func readRetry(fd int, buf []byte) (int, error) {
	for {
		n, err := unix.Read(fd, buf)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

// pollPidfd ppolls the pidfd with the remaining budget. EINTR resumption
// recomputes the budget from a fixed deadline so retries never extend the
// timeout. Returns true if the deadline expired before the child died.
func pollPidfd(pidfd int, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}
		ts := unix.NsecToTimespec(remaining.Nanoseconds())
		fds := [1]unix.PollFd{{Fd: int32(pidfd), Events: unix.POLLIN}}
		n, err := unix.Ppoll(fds[:], &ts, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		return n == 0, nil
	}
}

func waitRetry(pid int, wstatus *unix.WaitStatus) (int, error) {
	for {
		wpid, err := unix.Wait4(pid, wstatus, 0, nil)
		if err == unix.EINTR {
			continue
		}
		return wpid, err
	}
}

// killAndReap is the child guard: the child gets no chance to clean up,
// but it is sandboxed, there is nothing to clean up. Reaping prevents
// zombie accumulation.
func killAndReap(pid int) {
	unix.Kill(pid, unix.SIGKILL)
	var wstatus unix.WaitStatus
	_, err := unix.Wait4(pid, &wstatus, 0, nil)
	for err == unix.EINTR {
		_, err = unix.Wait4(pid, &wstatus, 0, nil)
	}
}
