// Package sekka wraps the embedded JavaScript engine that evaluates
// action definitions.
package sekka

import (
	"unicode/utf8"

	"github.com/dop251/goja"
)

// initialized guards New; engines that need a process-wide platform get it
// set up here, and callers must sequence the one Init call before the
// first New.
var initialized bool

// Init initializes process-wide engine state. It must be called exactly
// once, before any call to New. It is not safe to race with itself; the
// caller sequences first-callers.
func Init() {
	initialized = true
}

// Backend is a JavaScript virtual machine with its own heap and a single
// persistent global context: globals set by one RunJS are visible to the
// next. A Backend is not safe for concurrent use; it stays pinned to the
// goroutine that drives it.
type Backend struct {
	vm *goja.Runtime
}

// New creates a backend. Returns nil if Init has not been called or the
// engine could not be constructed.
func New() *Backend {
	if !initialized {
		return nil
	}
	var vm *goja.Runtime
	func() {
		defer func() {
			_ = recover()
		}()
		vm = goja.New()
	}()
	if vm == nil {
		return nil
	}
	return &Backend{vm: vm}
}

// RunJS compiles the UTF-8 source and evaluates it in the backend's
// context, discarding the result value. Returns false if the source is
// not valid UTF-8, fails to compile, or throws.
func (b *Backend) RunJS(source []byte) (ok bool) {
	if b == nil || b.vm == nil {
		return false
	}
	if !utf8.Valid(source) {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_, err := b.vm.RunString(string(source))
	return err == nil
}

// Drop releases the backend. The handle must not be used afterwards.
func (b *Backend) Drop() {
	b.vm = nil
}
