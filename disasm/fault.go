package disasm

import (
	"fmt"
	"runtime/debug"
)

// guardFaults makes memory faults on the calling goroutine panic instead of
// crashing the process. The returned func restores the previous setting.
func guardFaults() func() {
	old := debug.SetPanicOnFault(true)
	return func() { debug.SetPanicOnFault(old) }
}

// recoverFault must be deferred directly. It turns a fault panic into
// ErrSourceChanged and re-panics on anything else.
func recoverFault(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if fault, ok := r.(interface{ Addr() uintptr }); ok {
		*err = fmt.Errorf("%w: fault at %#x", ErrSourceChanged, fault.Addr())
		return
	}
	panic(r)
}
