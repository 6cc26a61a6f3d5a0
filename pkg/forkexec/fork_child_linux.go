package forkexec

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// forkAndExecInChild invokes clone3 and, in the child, performs the
// namespace identity setup and the final execve. The child shares heap
// metadata with the parent until execve while sibling threads may hold the
// allocator lock, so the code between clone3 and execve calls nothing but
// raw syscalls on pre-built arguments.
// Reference to src/syscall/exec_linux.go
//
//go:norace
func (r *Runner) forkAndExecInChild(argv0 *byte, argv, env []*byte, uidMap, gidMap []byte, p [2]int) (pid uintptr, pidfd int, err1 syscall.Errno) {
	var pidfd32 int32 = -1
	logFile := r.LogFile
	pipe := p[1]

	// Acquire the fork lock so that no other threads
	// create new fds that are not yet close-on-exec
	// before we fork.
	syscall.ForkLock.Lock()

	// About to call clone3.
	// No more allocation or calls of non-assembly functions.
	beforeFork()

	// SIGCHLD as exit signal, otherwise waitpid fails with ECHILD.
	// CLONE_PIDFD stores a pollable fd bound to this child, immune to
	// pid reuse, in the parent's memory.
	clone3 := cloneArgs{
		flags:      nsFlags | unix.CLONE_PIDFD,
		pidFD:      uint64(uintptr(unsafe.Pointer(&pidfd32))),
		exitSignal: uint64(syscall.SIGCHLD),
	}
	pid, _, err1 = syscall.RawSyscall(unix.SYS_CLONE3, uintptr(unsafe.Pointer(&clone3)), unsafe.Sizeof(clone3), 0)
	if err1 != 0 || pid != 0 {
		// in parent process, immediate return
		pidfd = int(pidfd32)
		return
	}

	// In child process
	afterForkInChild()
	// Notice: cannot call any GO functions beyond this point.

	// Close the read end of the pipe; the write end is ours now.
	if _, _, err1 = syscall.RawSyscall(syscall.SYS_CLOSE, uintptr(p[0]), 0, 0); err1 != 0 {
		childExitError(pipe, siteClose, err1)
	}

	// Map the sole uid/gid inside the new user namespace to the invoking
	// user. setgroups must be denied before gid_map is written from an
	// unprivileged user namespace.
	childWriteFile(pipe, &procSetgroups[0], setgroupsDeny)
	childWriteFile(pipe, &procUIDMap[0], uidMap)
	childWriteFile(pipe, &procGIDMap[0], gidMap)

	// No input is piped in.
	if _, _, err1 = syscall.RawSyscall(syscall.SYS_CLOSE, 0, 0, 0); err1 != 0 {
		childExitError(pipe, siteClose, err1)
	}

	// Both stdout and stderr point at the log sink. dup3 with zero flags
	// leaves close-on-exec off for the new descriptors. dup3 rejects
	// equal descriptors, so a log sink that already is fd 1 or 2 is left
	// in place, as dup2 would.
	if logFile != 1 {
		if _, _, err1 = syscall.RawSyscall(unix.SYS_DUP3, logFile, 1, 0); err1 != 0 {
			childExitError(pipe, siteDup2, err1)
		}
	}
	if logFile != 2 {
		if _, _, err1 = syscall.RawSyscall(unix.SYS_DUP3, logFile, 2, 0); err1 != 0 {
			childExitError(pipe, siteDup2, err1)
		}
	}

	// Time to exec. On success the kernel closes the write end of the
	// pipe for us and the parent reads EOF.
	_, _, err1 = syscall.RawSyscall(unix.SYS_EXECVE, uintptr(unsafe.Pointer(argv0)),
		uintptr(unsafe.Pointer(&argv[0])), uintptr(unsafe.Pointer(&env[0])))
	childExitError(pipe, siteExecve, err1)
	return
}

// childWriteFile opens pathname write-only and writes data with a single
// write, as the /proc id-map files demand. Child side only.
//
//go:nosplit
func childWriteFile(pipe int, pathname *byte, data []byte) {
	fd, _, err1 := syscall.RawSyscall6(syscall.SYS_OPENAT, uintptr(_AT_FDCWD),
		uintptr(unsafe.Pointer(pathname)), uintptr(syscall.O_WRONLY|syscall.O_CLOEXEC), 0, 0, 0)
	if err1 != 0 {
		childExitError(pipe, siteOpen, err1)
	}
	n, _, err1 := syscall.RawSyscall(syscall.SYS_WRITE, fd, uintptr(unsafe.Pointer(&data[0])), uintptr(len(data)))
	if err1 != 0 {
		childExitError(pipe, siteWrite, err1)
	}
	if n != uintptr(len(data)) {
		// id-map writes are all or nothing
		childExitError(pipe, siteWrite, syscall.EINVAL)
	}
	if _, _, err1 = syscall.RawSyscall(syscall.SYS_CLOSE, fd, 0, 0); err1 != 0 {
		childExitError(pipe, siteClose, err1)
	}
}

// childExitError serializes the pre-execve payload, errno first in little
// endian then the site tag, in one write so that the parent's single read
// sees the whole payload. The child then exits with status 1.
//
//go:nosplit
func childExitError(pipe int, site []byte, err syscall.Errno) {
	var payload [4 + maxSiteLen]byte
	payload[0] = byte(err)
	payload[1] = byte(err >> 8)
	payload[2] = byte(err >> 16)
	payload[3] = byte(err >> 24)
	n := 4
	for i := 0; i < len(site) && i < maxSiteLen; i++ {
		payload[n] = site[i]
		n++
	}
	syscall.RawSyscall(unix.SYS_WRITE, uintptr(pipe), uintptr(unsafe.Pointer(&payload[0])), uintptr(n))
	for {
		syscall.RawSyscall(unix.SYS_EXIT_GROUP, 1, 0, 0)
	}
}
