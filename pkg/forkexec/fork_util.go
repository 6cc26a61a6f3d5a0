package forkexec

import (
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

// prepareExec prepares execve parameters
func prepareExec(path string, args, env []string) (*byte, []*byte, []*byte, error) {
	// make exec path
	argv0, err := syscall.BytePtrFromString(path)
	if err != nil {
		return nil, nil, nil, err
	}
	// make exec args
	argv, err := syscall.SlicePtrFromStrings(args)
	if err != nil {
		return nil, nil, nil, err
	}
	// make env
	envv, err := syscall.SlicePtrFromStrings(env)
	if err != nil {
		return nil, nil, nil, err
	}
	return argv0, argv, envv, nil
}

// prepareIDMaps formats the identity map writes for the new user
// namespace: uid 0 and gid 0 inside are the invoker's real ids outside.
func prepareIDMaps() (uidMap, gidMap []byte) {
	uidMap = []byte("0 " + strconv.Itoa(unix.Getuid()) + " 1\n")
	gidMap = []byte("0 " + strconv.Itoa(unix.Getgid()) + " 1\n")
	return uidMap, gidMap
}
