// Package main builds libsnowflake, the C ABI over the sandbox runner and
// the script backend. Build with -buildmode=c-shared.
//
// The exported surface is flat C: the runner is one call, the backend is
// a create / run / drop lifecycle keyed by opaque handles. Handles are
// cgo handles, never raw Go pointers.
package main

/*
#include <stdbool.h>
#include <stddef.h>
#include <stdint.h>
#include <time.h>
*/
import "C"

import (
	"runtime/cgo"
	"time"
	"unsafe"

	"github.com/zopsicle/snowflake/pkg/forkexec"
	"github.com/zopsicle/snowflake/pkg/sekka"
)

// goStrings copies a NULL-terminated array of C strings.
func goStrings(arr **C.char) []string {
	if arr == nil {
		return nil
	}
	var out []string
	for i := 0; ; i++ {
		p := *(**C.char)(unsafe.Add(unsafe.Pointer(arr), uintptr(i)*unsafe.Sizeof(*arr)))
		if p == nil {
			return out
		}
		out = append(out, C.GoString(p))
	}
}

// run_command runs execve_pathname inside the sandbox and blocks until it
// terminates or the timeout expires. The return value is the Status enum
// in declaration order; *wait_status_out is filled only for
// child-terminated, and error_buffer only for pre-execve failure.
//
//export run_command
func run_command(
	waitStatusOut *C.int,
	errorBuffer *C.uchar, errorBufferLen C.size_t,
	logFile C.int,
	execvePathname *C.char,
	execveArgv **C.char,
	execveEnvp **C.char,
	timeout C.struct_timespec,
) C.int {
	var buf []byte
	if errorBuffer != nil && errorBufferLen > 0 {
		buf = unsafe.Slice((*byte)(unsafe.Pointer(errorBuffer)), int(errorBufferLen))
	}

	r := forkexec.Runner{
		Path:        C.GoString(execvePathname),
		Args:        goStrings(execveArgv),
		Env:         goStrings(execveEnvp),
		LogFile:     uintptr(logFile),
		Timeout:     time.Duration(timeout.tv_sec)*time.Second + time.Duration(timeout.tv_nsec),
		ErrorBuffer: buf,
	}
	res := r.Run()

	if res.Status == forkexec.StatusChildTerminated && waitStatusOut != nil {
		*waitStatusOut = C.int(res.WaitStatus)
	}
	return C.int(res.Status)
}

// backend_init initializes process-wide engine state. Call once, before
// any backend_new; first-callers must be sequenced by the caller.
//
//export backend_init
func backend_init() {
	sekka.Init()
}

// backend_new creates a backend. Returns 0 if backend creation failed.
//
//export backend_new
func backend_new() C.uintptr_t {
	b := sekka.New()
	if b == nil {
		return 0
	}
	return C.uintptr_t(cgo.NewHandle(b))
}

// backend_run_js runs JavaScript code. Returns false if running the code
// failed.
//
//export backend_run_js
func backend_run_js(handle C.uintptr_t, jsPtr *C.char, jsLen C.size_t) (ok C.bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	b := cgo.Handle(handle).Value().(*sekka.Backend)
	src := C.GoBytes(unsafe.Pointer(jsPtr), C.int(jsLen))
	return C.bool(b.RunJS(src))
}

// backend_drop drops a backend.
//
//export backend_drop
func backend_drop(handle C.uintptr_t) {
	h := cgo.Handle(handle)
	if b, ok := h.Value().(*sekka.Backend); ok {
		b.Drop()
	}
	h.Delete()
}

func main() {}
