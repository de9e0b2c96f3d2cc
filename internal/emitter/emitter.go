// Package emitter lowers a resolved AST (every Ident carrying a Slot, every
// scope carrying its resolver-assigned storage layout) into bytecode.Chunks.
// One Chunk is produced per function literal, each fully
// self-contained with its own FunctionTable of further-nested chunks, so
// jump targets never need to address across a function boundary.
package emitter

import (
	"github.com/altolang/alto/internal/ast"
	"github.com/altolang/alto/internal/bytecode"
	"github.com/altolang/alto/internal/errors"
	"github.com/altolang/alto/internal/module"
)

// Emit compiles a fully resolved program into its module chunk. errs is
// non-empty only for emitter-internal invariant violations (an unresolved
// Slot reaching codegen is a resolver bug, not a user-facing mistake); by
// the time a program reaches Emit, parser/resolver diagnostics have already
// been reported and compilation aborted.
func Emit(prog *ast.Program) (*bytecode.Chunk, []module.ImportBinding, []*errors.CompilerError) {
	e := &emitterState{globals: new([]any)}
	chunk := e.compileFunction(prog.Scope, prog.Stmts, "", nil)
	return chunk, e.imports, e.errs
}

// emitterState is shared across every function chunk compiled for one
// program: the import table being built up and the (shared-by-pointer)
// globals array every chunk's bytecode.Chunk.Globals field points at.
type emitterState struct {
	errs    []*errors.CompilerError
	imports []module.ImportBinding
	globals *[]any
}

// funcEmitter holds the mutable state for compiling a single function's
// (or the module's) statement list into one bytecode.Chunk. curScope
// tracks the lexical scope of the statement/expression currently being
// emitted, walked in lockstep with block/loop/try nesting so loadSlot and
// storeSlot can compute closure depth relative to exactly where a
// reference appears, not just where the enclosing function starts.
type funcEmitter struct {
	e        *emitterState
	scope    *ast.Scope
	curScope *ast.Scope
	chunk    *bytecode.Chunk

	loops []*loopCtx
	exits []exitEntry
}

// loopCtx tracks the pending jump patch-ups for break/continue inside the
// loop currently being emitted. breaks/continues hold addresses of Jump
// instructions whose target operand is filled in once the loop's break
// stub (breaks) or continue stub (continues) address is known.
type loopCtx struct {
	breaks    []int
	continues []int
}

// exitKind distinguishes what emitBreak/emitContinue/emitReturn
// need to know about while walking outward from the statement to the
// construct it is exiting: a pending-finally crossing, a catch-only try
// whose handler must be popped on the way out, or the loop boundary that
// stops a break/continue's walk (return never stops there).
type exitKind int

const (
	exitFinally exitKind = iota
	exitTry
	exitLoop
)

// exitEntry is one frame of the lexical exit stack. For exitFinally,
// pendingJumps collects the addresses of Jump-to-finally instructions
// synthesized by crossFinally, patched to the finally block's address
// once it has been emitted. For exitLoop, loop is the loopCtx break/
// continue should record into.
type exitEntry struct {
	kind         exitKind
	pendingJumps *[]int
	loop         *loopCtx
}

// compileFunction compiles one function body (or the module's top-level
// statements, when params is nil and name is "") into its own chunk.
func (e *emitterState) compileFunction(scope *ast.Scope, stmts []ast.Stmt, name string, params []ast.Param) *bytecode.Chunk {
	chunk := &bytecode.Chunk{
		Name:              name,
		StackAllocation:   scope.StackAllocation,
		ClosureSize:       len(scope.ClosureLayout),
		NeedsClosureFrame: scope.ContainsClosureRefs,
		Globals:           e.globals,
		Symbols:           map[int]string{},
		Params:            paramNames(params),
		HasRest:           hasRestParam(params),
	}
	f := &funcEmitter{e: e, scope: scope, curScope: scope, chunk: chunk}

	if chunk.NeedsClosureFrame {
		f.emit(bytecode.OpEnterClosure, 0, chunk.ClosureSize, 0)
	}
	f.emitParamPrologue(scope, params)
	for _, st := range stmts {
		f.emitStmt(st)
	}
	// Implicit fall-off return: push null and return. A closure frame
	// entered for the function's own top-level scope does not need an
	// explicit LeaveClosure here; the VM discards the whole call frame
	// (and with it any reference to that frame's ClosureFrame) on return.
	f.emit(bytecode.OpPushNull, 0, 0, 0)
	f.emit(bytecode.OpReturn, 0, 0, 0)
	return chunk
}

// emitParamPrologue binds each parameter slot from the incoming argument
// vector. Parameter slots are always declared first in scope.Slots, before
// any of the function body's own locals, so scope.Slots[:len(params)]
// gives exactly the parameter slots in declaration order.
func (f *funcEmitter) emitParamPrologue(scope *ast.Scope, params []ast.Param) {
	for i := range params {
		if i >= len(scope.Slots) {
			break
		}
		slot := scope.Slots[i]
		switch slot.Source {
		case ast.SourceArgument:
			f.emit(bytecode.OpPushArg, 0, slot.SourceIndex, 0)
		case ast.SourceArgumentSlice:
			f.emit(bytecode.OpPushRestArgs, 0, slot.SourceIndex, 0)
		default:
			continue
		}
		f.storeSlot(slot, 0)
		f.emit(bytecode.OpPop, 0, 0, 0)
	}
}

func paramNames(params []ast.Param) []string {
	if len(params) == 0 {
		return nil
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

func hasRestParam(params []ast.Param) bool {
	return len(params) > 0 && params[len(params)-1].Rest
}

// emit appends one instruction and its source line, returning the address
// it was written to (used by callers that need to patch it later).
func (f *funcEmitter) emit(op bytecode.OpCode, param, value, line int) int {
	addr := len(f.chunk.Code)
	f.chunk.Code = append(f.chunk.Code, bytecode.Encode(op, param, value))
	f.chunk.Lines = append(f.chunk.Lines, line)
	return addr
}

// patchValue rewrites the value operand of a previously emitted instruction,
// keeping its opcode and param; used to back-patch forward jumps once the
// target address is known.
func (f *funcEmitter) patchValue(addr, newValue int) {
	instr := f.chunk.Code[addr]
	f.chunk.Code[addr] = bytecode.Encode(instr.Op(), instr.Param(), newValue)
}

func (f *funcEmitter) here() int { return len(f.chunk.Code) }

// internConst appends v to the chunk's constant pool and returns its index,
// reusing an existing entry when one already holds an identical value so
// repeated literals don't bloat the pool.
func (f *funcEmitter) internConst(v any) int {
	for i, existing := range f.chunk.Data {
		if existing == v {
			return i
		}
	}
	f.chunk.Data = append(f.chunk.Data, v)
	return len(f.chunk.Data) - 1
}

func line(n ast.Node) int { return n.Pos().Line }

// closureDepth counts how many ContainsClosureRefs ancestor scopes separate
// from (the scope the reference appears in) from target (the scope whose
// closure layout holds the slot) exclusive of target itself. This matches
// how many ClosureFrame.Parent hops the VM must walk at runtime, since a
// runtime ClosureFrame only exists for a scope that had ContainsClosureRefs
// set by the resolver's layout pass; every other scope contributes no link
// to the chain at all.
func closureDepth(from, target *ast.Scope) int {
	depth := 0
	for s := from; s != nil && s != target; s = s.Outer {
		if s.ContainsClosureRefs {
			depth++
		}
	}
	return depth
}

// crossFinally emits the EnterFinally/Jump pair that routes a break,
// continue, or return across one enclosing try/finally on its way out:
// EnterFinally records where to resume once the finally body runs
// to completion (the address right after this Jump, which is exactly
// where the caller's next emitted instruction lands), and the Jump itself
// targets the finally body, patched in once it has been emitted. Callers
// crossing out of a still-armed try emit the LeaveTry themselves, before
// this pair; the exception landing path must not (raise already popped
// its handler).
func (f *funcEmitter) crossFinally(pendingJumps *[]int, pos int) {
	resume := f.here() + 2
	f.emit(bytecode.OpEnterFinally, 0, resume, pos)
	addr := f.emit(bytecode.OpJump, 0, 0, pos)
	*pendingJumps = append(*pendingJumps, addr)
}

// internalError records an emitter-side invariant violation (an unresolved
// Slot reaching codegen), which should never happen once the resolver has
// run clean.
func (f *funcEmitter) internalError(n ast.Node, format string, args ...any) {
	f.e.errs = append(f.e.errs, errors.New(errors.ResolveError, n.Pos(), "", format, args...))
}
