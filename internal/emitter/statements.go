package emitter

import (
	"github.com/altolang/alto/internal/ast"
	"github.com/altolang/alto/internal/bytecode"
	"github.com/altolang/alto/internal/module"
)

func (f *funcEmitter) emitStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		f.emitVarDecl(s)
	case *ast.BlockStmt:
		f.emitBlock(s)
	case *ast.IfStmt:
		f.emitIf(s)
	case *ast.WhileStmt:
		f.emitWhile(s)
	case *ast.ForStmt:
		f.emitFor(s)
	case *ast.BreakStmt:
		f.emitBreak(s)
	case *ast.ContinueStmt:
		f.emitContinue(s)
	case *ast.ReturnStmt:
		f.emitReturn(s)
	case *ast.TryStmt:
		f.emitTry(s)
	case *ast.ImportDecl:
		f.emitImport(s)
	case *ast.ExportConstDecl:
		f.emitExportConst(s)
	case *ast.ExprStmt:
		f.emitExpr(s.X)
		f.emit(bytecode.OpPop, 0, 0, line(s))
	default:
		f.internalError(stmt, "emitter: unhandled statement type %T", stmt)
	}
}

func (f *funcEmitter) emitVarDecl(s *ast.VarDecl) {
	pos := line(s)
	if s.Init != nil {
		f.emitExpr(s.Init)
	} else {
		f.emit(bytecode.OpPushNull, 0, 0, pos)
	}
	f.storeSlot(s.Slot, pos)
	f.emit(bytecode.OpPop, 0, 0, pos)
}

// emitBlock switches curScope to the block's own scope for the duration of
// its statements. Loop bodies and a function's own top-level statements
// share their enclosing scope object directly (the resolver aliases
// BlockStmt.Scope to the LoopScope/FuncScope in that case), so this is a
// no-op change in those cases.
func (f *funcEmitter) emitBlock(b *ast.BlockStmt) {
	prev := f.curScope
	if b.Scope != nil {
		f.curScope = b.Scope
	}
	for _, st := range b.Stmts {
		f.emitStmt(st)
	}
	f.curScope = prev
}

func (f *funcEmitter) emitIf(s *ast.IfStmt) {
	pos := line(s)
	f.emitExpr(s.Cond)
	jmpFalse := f.emit(bytecode.OpJumpIfFalse, 0, 0, pos)
	f.emitStmt(s.Then)
	if s.Else == nil {
		f.patchValue(jmpFalse, f.here())
		return
	}
	skip := f.emit(bytecode.OpJump, 0, 0, pos)
	f.patchValue(jmpFalse, f.here())
	f.emitStmt(s.Else)
	f.patchValue(skip, f.here())
}

// emitWhile gives the loop body a fresh closure frame every iteration
// (entered only after the condition has already passed), so a closure
// created inside the body each time around captures that iteration's own
// cells rather than cells shared across iterations. The condition-false
// exit never entered a frame for that check, so it skips straight past
// the cleanup stubs that break/continue (which did enter one) run through.
func (f *funcEmitter) emitWhile(s *ast.WhileStmt) {
	pos := line(s)
	condAddr := f.here()
	f.emitExpr(s.Cond)
	jmpFalseAddr := f.emit(bytecode.OpJumpIfFalse, 0, 0, pos)

	hasClosure := s.LoopScope.ContainsClosureRefs
	if hasClosure {
		f.emit(bytecode.OpEnterClosure, 0, len(s.LoopScope.ClosureLayout), pos)
	}

	lc := &loopCtx{}
	f.loops = append(f.loops, lc)
	f.exits = append(f.exits, exitEntry{kind: exitLoop, loop: lc})
	prevScope := f.curScope
	f.curScope = s.LoopScope
	f.emitStmt(s.Body)
	f.curScope = prevScope
	f.exits = f.exits[:len(f.exits)-1]
	f.loops = f.loops[:len(f.loops)-1]

	continueStub := f.here()
	if hasClosure {
		f.emit(bytecode.OpLeaveClosure, 0, 0, pos)
	}
	f.emit(bytecode.OpJump, 0, condAddr, pos)

	breakStub := f.here()
	if hasClosure {
		f.emit(bytecode.OpLeaveClosure, 0, 0, pos)
	}
	breakJump := f.emit(bytecode.OpJump, 0, 0, pos)

	endAddr := f.here()
	f.patchValue(jmpFalseAddr, endAddr)
	f.patchValue(breakJump, endAddr)
	for _, addr := range lc.breaks {
		f.patchValue(addr, breakStub)
	}
	for _, addr := range lc.continues {
		f.patchValue(addr, continueStub)
	}
}

// emitFor enters the loop's closure frame once before Init, unlike
// emitWhile's frame entered after each passing condition: a for-loop's own
// counter lives in its LoopScope and must carry its value from one
// iteration to the next. At the end of every iteration, before Next runs,
// the frame's cells are copied into a fresh frame, so a closure created in
// an earlier iteration keeps that iteration's cells. The normal
// condition-false exit and an explicit break share the same cleanup stub,
// since both leave the one frame that is current at that point.
func (f *funcEmitter) emitFor(s *ast.ForStmt) {
	pos := line(s)
	prevScope := f.curScope
	f.curScope = s.LoopScope

	hasClosure := s.LoopScope.ContainsClosureRefs
	if hasClosure {
		f.emit(bytecode.OpEnterClosure, 0, len(s.LoopScope.ClosureLayout), pos)
	}
	if s.Init != nil {
		f.emitStmt(s.Init)
	}

	condAddr := f.here()
	var jmpFalseAddr int
	hasCond := s.Cond != nil
	if hasCond {
		f.emitExpr(s.Cond)
		jmpFalseAddr = f.emit(bytecode.OpJumpIfFalse, 0, 0, pos)
	}

	lc := &loopCtx{}
	f.loops = append(f.loops, lc)
	f.exits = append(f.exits, exitEntry{kind: exitLoop, loop: lc})
	f.emitStmt(s.Body)
	f.exits = f.exits[:len(f.exits)-1]
	f.loops = f.loops[:len(f.loops)-1]

	continueStub := f.here()
	if hasClosure {
		n := len(s.LoopScope.ClosureLayout)
		for i := 0; i < n; i++ {
			f.emit(bytecode.OpLoadClosure, 0, i, pos)
		}
		f.emit(bytecode.OpLeaveClosure, 0, 0, pos)
		f.emit(bytecode.OpEnterClosure, 0, n, pos)
		for i := n - 1; i >= 0; i-- {
			f.emit(bytecode.OpStoreClosure, 0, i, pos)
			f.emit(bytecode.OpPop, 0, 0, pos)
		}
	}
	if s.Next != nil {
		f.emitExpr(s.Next)
		f.emit(bytecode.OpPop, 0, 0, pos)
	}
	f.emit(bytecode.OpJump, 0, condAddr, pos)

	breakStub := f.here()
	if hasClosure {
		f.emit(bytecode.OpLeaveClosure, 0, 0, pos)
	}
	breakJump := f.emit(bytecode.OpJump, 0, 0, pos)

	endAddr := f.here()
	if hasCond {
		f.patchValue(jmpFalseAddr, breakStub)
	}
	f.patchValue(breakJump, endAddr)
	for _, addr := range lc.breaks {
		f.patchValue(addr, breakStub)
	}
	for _, addr := range lc.continues {
		f.patchValue(addr, continueStub)
	}
	f.curScope = prevScope
}

// crossToLoop walks the exit stack outward from the current position,
// popping the handler of every try being exited and routing through every
// pending finally between here and the innermost enclosing loop, then
// stops (break/continue never cross a loop boundary; they only ever
// target the loop they're lexically inside).
func (f *funcEmitter) crossToLoop(pos int) {
	for i := len(f.exits) - 1; i >= 0; i-- {
		ent := f.exits[i]
		switch ent.kind {
		case exitLoop:
			return
		case exitTry:
			f.emit(bytecode.OpLeaveTry, 0, 0, pos)
		case exitFinally:
			f.emit(bytecode.OpLeaveTry, 0, 0, pos)
			f.crossFinally(ent.pendingJumps, pos)
		}
	}
}

func (f *funcEmitter) emitBreak(s *ast.BreakStmt) {
	pos := line(s)
	if len(f.loops) == 0 {
		f.internalError(s, "emitter: break outside of a loop")
		return
	}
	lc := f.loops[len(f.loops)-1]
	f.crossToLoop(pos)
	addr := f.emit(bytecode.OpJump, 0, 0, pos)
	lc.breaks = append(lc.breaks, addr)
}

func (f *funcEmitter) emitContinue(s *ast.ContinueStmt) {
	pos := line(s)
	if len(f.loops) == 0 {
		f.internalError(s, "emitter: continue outside of a loop")
		return
	}
	lc := f.loops[len(f.loops)-1]
	f.crossToLoop(pos)
	addr := f.emit(bytecode.OpJump, 0, 0, pos)
	lc.continues = append(lc.continues, addr)
}

// emitReturn crosses every enclosing finally on its way out, innermost
// first, so a finally that itself returns overrides every crossing still
// pending above it.
func (f *funcEmitter) emitReturn(s *ast.ReturnStmt) {
	pos := line(s)
	if s.Value != nil {
		f.emitExpr(s.Value)
	} else {
		f.emit(bytecode.OpPushNull, 0, 0, pos)
	}
	for i := len(f.exits) - 1; i >= 0; i-- {
		ent := f.exits[i]
		switch ent.kind {
		case exitTry:
			f.emit(bytecode.OpLeaveTry, 0, 0, pos)
		case exitFinally:
			f.emit(bytecode.OpLeaveTry, 0, 0, pos)
			f.crossFinally(ent.pendingJumps, pos)
		}
	}
	f.emit(bytecode.OpReturn, 0, 0, pos)
}

// emitTry dispatches on which of catch/finally are present. A TryStmt with
// both is rewritten into a finally-only try wrapping a catch-only try (a
// try/catch nested inside a try/finally), letting the two simpler shapes
// below do the actual emission.
func (f *funcEmitter) emitTry(s *ast.TryStmt) {
	if s.HasCatch && s.HasFinally {
		inner := &ast.TryStmt{
			Base:       s.Base,
			Body:       s.Body,
			CatchParam: s.CatchParam,
			HasCatch:   true,
			CatchBody:  s.CatchBody,
			CatchSlot:  s.CatchSlot,
		}
		outer := &ast.TryStmt{
			Base:        s.Base,
			Body:        &ast.BlockStmt{Base: s.Base, Stmts: []ast.Stmt{inner}},
			HasFinally:  true,
			FinallyBody: s.FinallyBody,
		}
		f.emitTry(outer)
		return
	}
	if s.HasFinally {
		f.emitTryFinally(s)
		return
	}
	f.emitTryCatch(s)
}

func (f *funcEmitter) emitTryCatch(s *ast.TryStmt) {
	pos := line(s)
	enterAddr := f.emit(bytecode.OpEnterTry, 0, 0, pos)
	f.exits = append(f.exits, exitEntry{kind: exitTry})
	f.emitStmt(s.Body)
	f.exits = f.exits[:len(f.exits)-1]
	f.emit(bytecode.OpLeaveTry, 0, 0, pos)
	endJump := f.emit(bytecode.OpJump, 0, 0, pos)

	catchAddr := f.here()
	f.patchValue(enterAddr, catchAddr)
	if s.CatchParam != "" && s.CatchSlot != nil {
		prev := f.curScope
		f.curScope = s.CatchBody.Scope
		f.storeSlot(s.CatchSlot, pos)
		f.curScope = prev
	}
	f.emit(bytecode.OpPop, 0, 0, pos)
	f.emitStmt(s.CatchBody)

	f.patchValue(endJump, f.here())
}

func (f *funcEmitter) emitTryFinally(s *ast.TryStmt) {
	pos := line(s)
	enterAddr := f.emit(bytecode.OpEnterTry, 0, 0, pos)

	pending := []int{}
	marker := exitEntry{kind: exitFinally, pendingJumps: &pending}
	f.exits = append(f.exits, marker)
	f.emitStmt(s.Body)
	f.exits = f.exits[:len(f.exits)-1]

	f.emit(bytecode.OpLeaveTry, 0, 0, pos)
	f.crossFinally(&pending, pos) // normal completion -> finally
	skipJump := f.emit(bytecode.OpJump, 0, 0, pos)

	throwLanding := f.here()
	f.patchValue(enterAddr, throwLanding)
	f.crossFinally(&pending, pos) // exception path -> finally
	f.emit(bytecode.OpThrow, 0, 0, pos)

	finallyAddr := f.here()
	f.emitStmt(s.FinallyBody)
	f.emit(bytecode.OpLeaveFinally, 0, 0, pos)

	for _, addr := range pending {
		f.patchValue(addr, finallyAddr)
	}
	f.patchValue(skipJump, f.here())
}

func (f *funcEmitter) emitImport(s *ast.ImportDecl) {
	if s.Slot == nil {
		f.internalError(s, "emitter: import %q missing resolved slot", s.Name)
		return
	}
	f.e.imports = append(f.e.imports, module.ImportBinding{
		Name:        s.Name,
		Path:        s.Path,
		GlobalIndex: s.Slot.Index,
	})
}

// emitExportConst stores the value into its own const slot (Store* leaves
// it on the stack) and then lets OpExport pop that same value into the
// module's exports table, so the two writes share one evaluation of Init.
func (f *funcEmitter) emitExportConst(s *ast.ExportConstDecl) {
	pos := line(s)
	f.emitExpr(s.Init)
	f.storeSlot(s.Slot, pos)
	idx := f.internConst(s.Name)
	f.emit(bytecode.OpExport, 0, idx, pos)
}
