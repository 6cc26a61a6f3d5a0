// Package forkexec runs a command inside a fresh set of Linux namespaces
// and supervises it with a wall clock timeout.
//
// clone3 with CLONE_PIDFD requires kernel >= 5.3
// setgroups deny before gid_map write requires kernel >= 3.19
// pipe2, dup3 requires kernel >= 2.6.27
package forkexec
