package vm

import (
	"github.com/altolang/alto/internal/module"
	"github.com/altolang/alto/internal/value"
)

// call dispatches a callee invocation: a native function runs
// synchronously and leaves its result on the operand stack directly; a
// bytecode-bodied Function instead pushes a new callFrame for the main loop
// to execute, and the eventual OpReturn leaves the result on the stack in
// its place. Either way the caller sees exactly one pushed value once the
// callee has run to completion; synchronously for native, or after the
// loop advances through the new frame for bytecode.
func (vm *VM) call(callee value.Value, this value.Value, args []value.Value) *value.Exception {
	if !callee.IsFunction() {
		if alt := callee.Get(".call"); alt.IsFunction() {
			return vm.call(alt, callee, args)
		}
		return vm.runtimeFault("%s is not callable", callee.TypeName())
	}
	fn := callee.AsFunction()
	if fn == nil {
		return vm.runtimeFault("not callable")
	}
	if fn.BoundThis != nil {
		this = *fn.BoundThis
	}
	if fn.Native != nil {
		result, exc := fn.Native(this, args)
		if exc != nil {
			return exc
		}
		vm.push(result)
		return nil
	}
	if fn.Chunk == nil {
		return vm.runtimeFault("function %q has no body", fn.Name)
	}
	vm.pushFrame(fn.Chunk, fn.Closure, this, args, vm.currentModule(), fn.Name)
	return nil
}

// apply is the spread-argument counterpart to call: argList must be
// a List or the call fails with a NotAList-shaped fault rather than
// reaching call with a garbage argument vector.
func (vm *VM) apply(callee, this, argList value.Value) *value.Exception {
	if !argList.IsList() {
		return vm.runtimeFault("apply: argument is not a list")
	}
	list := argList.AsList()
	args := make([]value.Value, list.Len())
	for i := range args {
		args[i] = list.Get(i)
	}
	return vm.call(callee, this, args)
}

// currentModule reports the module owning the frame currently executing, so
// a nested function created inside a module's top-level code still writes
// OpExport into that module's exports table (module-scope export const
// never actually compiles inside a nested function, so in practice this is
// only ever read from the top frame; kept as a method for that frame to
// propagate down if script-embedding code ever needs it).
func (vm *VM) currentModule() *module.Module {
	if len(vm.frames) == 0 {
		return nil
	}
	return vm.frames[len(vm.frames)-1].module
}
