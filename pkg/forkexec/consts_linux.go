package forkexec

import (
	"golang.org/x/sys/unix"
)

const (
	// nsFlags is the namespace set given to clone3. The user namespace
	// gives the child a legal uid 0 over the others without any host
	// privilege.
	nsFlags = unix.CLONE_NEWCGROUP | unix.CLONE_NEWIPC | unix.CLONE_NEWNET |
		unix.CLONE_NEWNS | unix.CLONE_NEWPID | unix.CLONE_NEWUSER |
		unix.CLONE_NEWUTS

	// pipeBufSize bounds a single read of the error pipe; pipe writes up
	// to PIPE_BUF bytes are atomic (Linux pins PIPE_BUF at 4096).
	pipeBufSize = 4096

	// maxSiteLen bounds the payload site tag in the child's stack buffer.
	maxSiteLen = 8
)

// pathnames and payloads written by the child, NUL terminated where the
// kernel expects C strings; prepared here because the child cannot allocate
var (
	procSetgroups = []byte("/proc/self/setgroups\x00")
	procUIDMap    = []byte("/proc/self/uid_map\x00")
	procGIDMap    = []byte("/proc/self/gid_map\x00")
	setgroupsDeny = []byte("deny\n")

	siteOpen   = []byte(SiteOpen)
	siteWrite  = []byte(SiteWrite)
	siteClose  = []byte(SiteClose)
	siteDup2   = []byte(SiteDup2)
	siteExecve = []byte(SiteExecve)

	// go does not allow constant uintptr to be negative...
	_AT_FDCWD = unix.AT_FDCWD
)
