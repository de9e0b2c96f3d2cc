package emitter

import (
	"github.com/altolang/alto/internal/ast"
	"github.com/altolang/alto/internal/bytecode"
)

// maxInlineInt is 2^21, one past the largest magnitude the signed 22-bit
// Value field bytecode.Instruction packs into: only integers strictly
// between -maxInlineInt and maxInlineInt are inlined as an OpPushInt
// operand, and any other number literal is interned in the chunk's
// constant pool.
const maxInlineInt = 1 << 21

func (f *funcEmitter) emitExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.NullLit:
		f.emit(bytecode.OpPushNull, 0, 0, line(e))
	case *ast.BoolLit:
		if e.Value {
			f.emit(bytecode.OpPushTrue, 0, 0, line(e))
		} else {
			f.emit(bytecode.OpPushFalse, 0, 0, line(e))
		}
	case *ast.NumberLit:
		f.emitNumberLit(e)
	case *ast.StringLit:
		idx := f.internConst(e.Value)
		f.emit(bytecode.OpPushConst, 0, idx, line(e))
	case *ast.ThisExpr:
		f.emit(bytecode.OpPushThis, 0, 0, line(e))
	case *ast.Ident:
		f.emitIdent(e)
	case *ast.ListLit:
		f.emitListLit(e)
	case *ast.TableLit:
		f.emitTableLit(e)
	case *ast.UnaryExpr:
		f.emitUnary(e)
	case *ast.BinaryExpr:
		f.emitBinary(e)
	case *ast.LogicalExpr:
		f.emitLogical(e)
	case *ast.AssignExpr:
		f.emitAssign(e)
	case *ast.TernaryExpr:
		f.emitTernary(e)
	case *ast.CallExpr:
		f.emitCall(e)
	case *ast.IndexExpr:
		f.emitExpr(e.X)
		f.emitExpr(e.Index)
		f.emit(bytecode.OpGetIndex, 0, 0, line(e))
	case *ast.MemberExpr:
		f.emitExpr(e.X)
		idx := f.internConst(e.Name)
		f.emit(bytecode.OpGetMember, 0, idx, line(e))
	case *ast.FunctionLit:
		f.emitFunctionLit(e)
	case *ast.ThrowExpr:
		f.emitExpr(e.Value)
		f.emit(bytecode.OpThrow, 0, 0, line(e))
	default:
		f.internalError(expr, "emitter: unhandled expression type %T", expr)
	}
}

func (f *funcEmitter) emitNumberLit(e *ast.NumberLit) {
	pos := line(e)
	if n := int(e.Value); float64(n) == e.Value && n > -maxInlineInt && n < maxInlineInt {
		f.emit(bytecode.OpPushInt, 0, n, pos)
		return
	}
	idx := f.internConst(e.Value)
	f.emit(bytecode.OpPushConst, 0, idx, pos)
}

func (f *funcEmitter) emitIdent(e *ast.Ident) {
	if e.Slot == nil {
		f.internalError(e, "emitter: identifier %q has no resolved slot", e.Name)
		return
	}
	f.loadSlot(e.Slot, line(e))
}

func (f *funcEmitter) loadSlot(slot *ast.Slot, pos int) {
	switch slot.Storage {
	case ast.StorageLocal:
		f.emit(bytecode.OpLoadLocal, 0, slot.Index, pos)
	case ast.StorageGlobal:
		f.emit(bytecode.OpLoadGlobal, 0, slot.Index, pos)
	case ast.StorageClosure:
		depth := closureDepth(f.curScope, slot.ClosureScope)
		f.emit(bytecode.OpLoadClosure, depth, slot.Index, pos)
	default:
		f.emit(bytecode.OpPushNull, 0, 0, pos)
	}
}

func (f *funcEmitter) storeSlot(slot *ast.Slot, pos int) {
	switch slot.Storage {
	case ast.StorageLocal:
		f.emit(bytecode.OpStoreLocal, 0, slot.Index, pos)
	case ast.StorageGlobal:
		f.emit(bytecode.OpStoreGlobal, 0, slot.Index, pos)
	case ast.StorageClosure:
		depth := closureDepth(f.curScope, slot.ClosureScope)
		f.emit(bytecode.OpStoreClosure, depth, slot.Index, pos)
	}
}

func (f *funcEmitter) emitListLit(e *ast.ListLit) {
	for _, el := range e.Elements {
		f.emitExpr(el)
	}
	f.emit(bytecode.OpNewList, 0, len(e.Elements), line(e))
}

func (f *funcEmitter) emitTableLit(e *ast.TableLit) {
	for _, ent := range e.Entries {
		f.emitExpr(ent.Key)
		f.emitExpr(ent.Value)
	}
	f.emit(bytecode.OpNewTable, 0, len(e.Entries), line(e))
}

// emitUnary has no dedicated opcode for unary "+" (numeric coercion with
// no sign change): two Neg in a row gives to_number(x) for every finite
// value and leaves NaN as NaN, which is exactly what a bare unary "+"
// means, since Neg already routes through to_number.
func (f *funcEmitter) emitUnary(e *ast.UnaryExpr) {
	pos := line(e)
	f.emitExpr(e.X)
	switch e.Op {
	case "-":
		f.emit(bytecode.OpNeg, 0, 0, pos)
	case "+":
		f.emit(bytecode.OpNeg, 0, 0, pos)
		f.emit(bytecode.OpNeg, 0, 0, pos)
	case "!":
		f.emit(bytecode.OpNot, 0, 0, pos)
	default:
		f.internalError(e, "emitter: unknown unary operator %q", e.Op)
	}
}

var binaryOps = map[string]bytecode.OpCode{
	"+": bytecode.OpAdd, "-": bytecode.OpSub, "*": bytecode.OpMul,
	"/": bytecode.OpDiv, "%": bytecode.OpMod,
	"&": bytecode.OpBitAnd, "|": bytecode.OpBitOr, "^": bytecode.OpBitXor,
	"==": bytecode.OpEq, "!=": bytecode.OpNeq,
	"<": bytecode.OpLt, "<=": bytecode.OpLte, ">": bytecode.OpGt, ">=": bytecode.OpGte,
}

func (f *funcEmitter) emitBinary(e *ast.BinaryExpr) {
	pos := line(e)
	f.emitExpr(e.X)
	f.emitExpr(e.Y)
	op, ok := binaryOps[e.Op]
	if !ok {
		f.internalError(e, "emitter: unknown binary operator %q", e.Op)
		return
	}
	f.emit(op, 0, 0, pos)
}

// emitLogical compiles && / || with short-circuit semantics: the
// left operand is duplicated before the conditional jump so a
// short-circuited expression leaves it (not a coerced boolean) as the
// expression's value, matching how `a || b` yields a itself when a is
// truthy.
func (f *funcEmitter) emitLogical(e *ast.LogicalExpr) {
	pos := line(e)
	f.emitExpr(e.X)
	f.emit(bytecode.OpDup, 0, 0, pos)
	var jmp int
	switch e.Op {
	case "&&":
		jmp = f.emit(bytecode.OpJumpIfFalse, 0, 0, pos)
	case "||":
		jmp = f.emit(bytecode.OpJumpIfTrue, 0, 0, pos)
	default:
		f.internalError(e, "emitter: unknown logical operator %q", e.Op)
		return
	}
	f.emit(bytecode.OpPop, 0, 0, pos)
	f.emitExpr(e.Y)
	f.patchValue(jmp, f.here())
}

func (f *funcEmitter) emitTernary(e *ast.TernaryExpr) {
	pos := line(e)
	f.emitExpr(e.Cond)
	jmpFalse := f.emit(bytecode.OpJumpIfFalse, 0, 0, pos)
	f.emitExpr(e.Then)
	skip := f.emit(bytecode.OpJump, 0, 0, pos)
	f.patchValue(jmpFalse, f.here())
	f.emitExpr(e.Else)
	f.patchValue(skip, f.here())
}

var compoundOps = map[string]bytecode.OpCode{
	"+=": bytecode.OpAdd, "-=": bytecode.OpSub, "*=": bytecode.OpMul,
	"/=": bytecode.OpDiv, "%=": bytecode.OpMod,
	"&=": bytecode.OpBitAnd, "|=": bytecode.OpBitOr, "^=": bytecode.OpBitXor,
}

// emitAssign compiles both plain "=" and compound ("+=" etc) assignment:
// a compound form to a member/index target duplicates the receiver (and
// key, for index) with Copy between the read and the write so the
// container is only evaluated once.
func (f *funcEmitter) emitAssign(e *ast.AssignExpr) {
	pos := line(e)
	switch target := e.Target.(type) {
	case *ast.Ident:
		if target.Slot == nil {
			f.internalError(e, "emitter: assignment target %q has no resolved slot", target.Name)
			return
		}
		if e.Op == "=" {
			f.emitExpr(e.Value)
		} else {
			f.loadSlot(target.Slot, pos)
			f.emitExpr(e.Value)
			f.emitCompound(e, pos)
		}
		f.storeSlot(target.Slot, pos)

	case *ast.MemberExpr:
		f.emitExpr(target.X)
		idx := f.internConst(target.Name)
		if e.Op == "=" {
			f.emitExpr(e.Value)
		} else {
			f.emit(bytecode.OpCopy, 0, 1, pos)
			f.emit(bytecode.OpGetMember, 0, idx, pos)
			f.emitExpr(e.Value)
			f.emitCompound(e, pos)
		}
		f.emit(bytecode.OpSetMember, 0, idx, pos)

	case *ast.IndexExpr:
		f.emitExpr(target.X)
		f.emitExpr(target.Index)
		if e.Op == "=" {
			f.emitExpr(e.Value)
		} else {
			f.emit(bytecode.OpCopy, 0, 2, pos)
			f.emit(bytecode.OpGetIndex, 0, 0, pos)
			f.emitExpr(e.Value)
			f.emitCompound(e, pos)
		}
		f.emit(bytecode.OpSetIndex, 0, 0, pos)

	default:
		f.internalError(e, "emitter: invalid assignment target %T", e.Target)
	}
}

func (f *funcEmitter) emitCompound(e *ast.AssignExpr, pos int) {
	op, ok := compoundOps[e.Op]
	if !ok {
		f.internalError(e, "emitter: unknown compound assignment operator %q", e.Op)
		return
	}
	f.emit(op, 0, 0, pos)
}

// emitCall distinguishes a method call (receiver bound to `this`) from a
// plain call by looking at the callee's shape: `a.b(...)` and
// `a[i](...)` duplicate the receiver before fetching the callee so both
// end up on the stack in the order OpCallMethod expects, receiver then
// callee then arguments.
func (f *funcEmitter) emitCall(e *ast.CallExpr) {
	pos := line(e)
	switch callee := e.Callee.(type) {
	case *ast.MemberExpr:
		f.emitExpr(callee.X)
		f.emit(bytecode.OpDup, 0, 0, pos)
		idx := f.internConst(callee.Name)
		f.emit(bytecode.OpGetMember, 0, idx, pos)
		for _, a := range e.Args {
			f.emitExpr(a)
		}
		f.emit(bytecode.OpCallMethod, 0, len(e.Args), pos)

	case *ast.IndexExpr:
		f.emitExpr(callee.X)
		f.emit(bytecode.OpDup, 0, 0, pos)
		f.emitExpr(callee.Index)
		f.emit(bytecode.OpGetIndex, 0, 0, pos)
		for _, a := range e.Args {
			f.emitExpr(a)
		}
		f.emit(bytecode.OpCallMethod, 0, len(e.Args), pos)

	default:
		f.emitExpr(e.Callee)
		for _, a := range e.Args {
			f.emitExpr(a)
		}
		f.emit(bytecode.OpCall, 0, len(e.Args), pos)
	}
}

func (f *funcEmitter) emitFunctionLit(e *ast.FunctionLit) {
	sub := f.e.compileFunction(e.Scope, e.Body.Stmts, e.Name, e.Params)
	idx := len(f.chunk.FunctionTable)
	f.chunk.FunctionTable = append(f.chunk.FunctionTable, sub)
	f.emit(bytecode.OpMakeFunction, 0, idx, line(e))
}
