// Package vm executes compiled bytecode.Chunks: a single flat loop
// over a stack of call frames and one shared operand stack, so a thrown
// exception can unwind straight across frame boundaries without recursing
// through Go's own call stack.
package vm

import (
	"fmt"
	"io"

	"github.com/altolang/alto/internal/bytecode"
	"github.com/altolang/alto/internal/module"
	"github.com/altolang/alto/internal/value"
)

// callFrame is one activation of a chunk: its own locals array, the closure
// chain captured when its Function was created (nil for a module's own top
// chunk), and the slice of vm.stack it owns.
type callFrame struct {
	chunk   *bytecode.Chunk
	ip      int
	locals  []value.Value
	closure *value.ClosureFrame
	this    value.Value
	args    []value.Value

	stackBase   int // vm.stack index where this frame's operand stack begins
	handlerBase int // vm.handlers index where this frame's handlers begin
	finallyBase int // vm.finallyReturns index where this frame's pending entries begin

	module *module.Module // the module this chunk belongs to, for OpExport
	name   string          // for stack-trace rendering
}

// handlerEntry is one active try's exception landing site: when an
// exception unwinds to here, the VM truncates the operand stack back to
// stackBase, pushes the exception value, and resumes at target. The
// landing bytecode itself (compiled by the emitter) is what distinguishes a
// catch handler from a finally-only one; raise never needs to know which.
type handlerEntry struct {
	frameIndex  int
	stackBase   int
	finallyBase int // vm.finallyReturns depth when the try was entered
	target      int
}

// VM is one interpreter instance. It is not safe for concurrent use; the
// module system runs each module's top-level code to completion before
// any other module observes its exports, so nothing in the core loop needs
// synchronization.
type VM struct {
	stack          []value.Value
	frames         []callFrame
	handlers       []handlerEntry
	finallyReturns []int

	output io.Writer
}

// New creates a VM whose Console-style host output (wired up by
// internal/hostlib) goes to out. A nil out discards output.
func New(out io.Writer) *VM {
	return &VM{
		stack:  make([]value.Value, 0, 256),
		frames: make([]callFrame, 0, 16),
		output: out,
	}
}

// Output returns the writer host collaborators should print to.
func (vm *VM) Output() io.Writer { return vm.output }

// Run executes mod's top-level chunk to completion, returning the value its
// final implicit `return` (see emitter.compileFunction's fall-off) yields.
// The module's receiver (`this` at module scope) is bound directly to its
// Exports table, so `this.name = value` and `export const name = value`
// both write into mod.Exports: the first through Value.Set (which honours
// a Property stored under that key), the second directly with SetRawStr.
// Run does not itself call
// FixupImports; callers resolving a module graph (internal/hostlib's
// loader) do that first.
func (vm *VM) Run(mod *module.Module) (value.Value, *value.Exception) {
	vm.pushFrame(mod.Chunk, nil, value.FromTable(mod.Exports), nil, mod, mod.Chunk.Name)
	return vm.execute()
}

// Invoke calls fn (native or bytecode-bodied) with the given receiver and
// arguments and runs it to completion, for host code (internal/hostlib)
// that needs to call back into user script from a native function body.
func (vm *VM) Invoke(fn value.Value, this value.Value, args []value.Value) (value.Value, *value.Exception) {
	depthBefore := len(vm.frames)
	if exc := vm.call(fn, this, args); exc != nil {
		return value.Null(), exc
	}
	if len(vm.frames) == depthBefore {
		// A native call already pushed its result directly; pop it back out
		// for the caller rather than leaving it on the shared stack.
		return vm.pop(), nil
	}
	return vm.executeUntil(depthBefore)
}

func (vm *VM) pushFrame(chunk *bytecode.Chunk, closure *value.ClosureFrame, this value.Value, args []value.Value, mod *module.Module, name string) {
	vm.frames = append(vm.frames, callFrame{
		chunk:       chunk,
		locals:      make([]value.Value, chunk.StackAllocation),
		closure:     closure,
		this:        this,
		args:        args,
		stackBase:   len(vm.stack),
		handlerBase: len(vm.handlers),
		finallyBase: len(vm.finallyReturns),
		module:      mod,
		name:        name,
	})
}

// execute runs the main loop until every frame has returned.
func (vm *VM) execute() (value.Value, *value.Exception) {
	return vm.executeUntil(0)
}

// executeUntil runs the main loop until the frame stack depth falls back to
// floor, returning the value left on the stack by the frame at floor's
// return. Used both for a fresh top-level run (floor 0) and for a
// host-initiated re-entrant Invoke call (floor = depth before the call).
func (vm *VM) executeUntil(floor int) (value.Value, *value.Exception) {
	for len(vm.frames) > floor {
		fr := &vm.frames[len(vm.frames)-1]

		if fr.ip >= len(fr.chunk.Code) {
			// Every compiled chunk ends in an explicit PushNull;Return, so
			// this only fires for a zero-instruction chunk (e.g. a native
			// stub mistakenly given a bytecode frame).
			result := vm.popFrameResult()
			if len(vm.frames) == floor {
				return result, nil
			}
			vm.push(result)
			continue
		}

		instr := fr.chunk.Code[fr.ip]
		fr.ip++

		if done, result, exc := vm.step(fr, instr, floor); done {
			return result, exc
		}
	}
	return value.Null(), nil
}

// popFrameResult pops the top-of-stack value (the callee's result) and
// discards its frame, restoring the caller's operand-stack view.
func (vm *VM) popFrameResult() value.Value {
	v := vm.pop()
	vm.popFrame()
	return v
}

func (vm *VM) popFrame() {
	fr := vm.frames[len(vm.frames)-1]
	vm.stack = vm.stack[:fr.stackBase]
	vm.handlers = vm.handlers[:fr.handlerBase]
	vm.finallyReturns = vm.finallyReturns[:fr.finallyBase]
	vm.frames = vm.frames[:len(vm.frames)-1]
}

func (vm *VM) runtimeFault(format string, args ...any) *value.Exception {
	return value.NewException(fmt.Sprintf(format, args...))
}
