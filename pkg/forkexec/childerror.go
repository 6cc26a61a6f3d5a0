package forkexec

import (
	"encoding/binary"
	"syscall"
)

// Syscall site tags as they appear on the error pipe. The tag names the
// syscall that failed in the child between clone3 and execve.
const (
	SiteOpen   = "open"
	SiteWrite  = "write"
	SiteClose  = "close"
	SiteDup2   = "dup2"
	SiteExecve = "execve"
)

// ChildError is the decoded pre-execve error payload: the errno captured
// immediately after the failing syscall and the site tag identifying it.
type ChildError struct {
	Err  syscall.Errno
	Site string
}

func (e ChildError) Error() string {
	return e.Site + ": " + e.Err.Error()
}

func (e ChildError) Unwrap() error {
	return e.Err
}

// DecodeChildError parses an error pipe payload: a little-endian int32
// errno followed by the ASCII site tag, delimited by the end of the
// payload. Returns false if the payload is too short to carry an errno.
func DecodeChildError(payload []byte) (ChildError, bool) {
	if len(payload) < 4 {
		return ChildError{}, false
	}
	return ChildError{
		Err:  syscall.Errno(int32(binary.LittleEndian.Uint32(payload[:4]))),
		Site: string(payload[4:]),
	}, true
}
