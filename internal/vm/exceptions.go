package vm

import (
	"fmt"

	"github.com/altolang/alto/internal/value"
)

// throw implements OpThrow: converts raw into an Exception (passing
// an already-Exception value through as-is, so a `rethrow` of a caught
// exception keeps its original Stack), then propagates it.
func (vm *VM) throw(fr *callFrame, raw value.Value) (done bool, result value.Value, exc *value.Exception) {
	var e *value.Exception
	if raw.IsException() {
		e = raw.AsException()
	} else {
		e = &value.Exception{Message: value.Stringify(raw), Payload: raw}
	}
	return vm.propagate(fr, e)
}

// propagate appends a stack-trace frame to exc and routes it through the
// handler chain: found means some enclosing try will resume execution
// (propagate returns done=false, letting the main loop simply continue,
// since raise already repositioned fr.ip and the operand stack); not found
// means the exception has escaped the whole call: every frame has already
// been unwound by raise's search, so the caller should return (done=true)
// with exc.
func (vm *VM) propagate(fr *callFrame, exc *value.Exception) (done bool, result value.Value, out *value.Exception) {
	exc.WithStackFrame(fmt.Sprintf("%s:%d", frameLabel(fr), currentLine(fr)))
	if vm.raise(exc) {
		return false, value.Value{}, nil
	}
	return true, value.Null(), exc
}

func frameLabel(fr *callFrame) string {
	if fr.name == "" {
		return "<module>"
	}
	return fr.name
}

func currentLine(fr *callFrame) int {
	addr := fr.ip - 1
	if addr < 0 || addr >= len(fr.chunk.Lines) {
		return 0
	}
	return fr.chunk.Lines[addr]
}

// raise searches the handler stack from innermost outward: each
// candidate belongs to some frame at or below the current top of the frame
// stack; once found, every frame above it is discarded, that frame's
// operand stack and pending-finally list are rolled back to the point its
// try was entered, the exception value is pushed for the landing bytecode
// to consume (a catch binds it; a finally-only landing stashes it
// underneath the finally body and rethrows once it completes), and
// execution resumes at the handler's target address.
func (vm *VM) raise(exc *value.Exception) bool {
	for len(vm.handlers) > 0 {
		h := vm.handlers[len(vm.handlers)-1]
		vm.handlers = vm.handlers[:len(vm.handlers)-1]
		if h.frameIndex >= len(vm.frames) {
			continue
		}
		for len(vm.frames)-1 > h.frameIndex {
			vm.popFrame()
		}
		fr := &vm.frames[h.frameIndex]
		// Roll pending finally-return addresses back to where this try was
		// entered; not all the way to the frame's base. A crossing that was
		// in flight when the try was entered (a return already routing
		// through an enclosing finally) must survive an exception this try
		// catches; crossings begun inside the try are abandoned, which is
		// what lets a throwing finally override an in-flight return.
		if len(vm.finallyReturns) > h.finallyBase {
			vm.finallyReturns = vm.finallyReturns[:h.finallyBase]
		}
		vm.stack = vm.stack[:h.stackBase]
		vm.push(value.FromException(exc))
		fr.ip = h.target
		return true
	}
	return false
}
