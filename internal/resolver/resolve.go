package resolver

import (
	"github.com/altolang/alto/internal/ast"
	"github.com/altolang/alto/internal/errors"
)

// resolveStmt is the second pass: every scope in the program has already
// been declared (build.go), so this walk only looks up references and
// marks captures: a reference is capturing when its enclosing function is
// deeper than the referenced slot's declaring function.
func (r *Resolver) resolveStmt(stmt ast.Stmt, scope *ast.Scope) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		r.resolveExpr(s.Init, scope)

	case *ast.BlockStmt:
		for _, st := range s.Stmts {
			r.resolveStmt(st, s.Scope)
		}

	case *ast.IfStmt:
		r.resolveExpr(s.Cond, scope)
		r.resolveStmt(s.Then, scope)
		if s.Else != nil {
			r.resolveStmt(s.Else, scope)
		}

	case *ast.WhileStmt:
		r.resolveExpr(s.Cond, scope)
		r.resolveStmt(s.Body, s.LoopScope)

	case *ast.ForStmt:
		if s.Init != nil {
			r.resolveStmt(s.Init, s.LoopScope)
		}
		r.resolveExpr(s.Cond, s.LoopScope)
		r.resolveExpr(s.Next, s.LoopScope)
		r.resolveStmt(s.Body, s.LoopScope)

	case *ast.TryStmt:
		r.resolveStmt(s.Body, scope)
		if s.HasCatch {
			r.resolveStmt(s.CatchBody, scope)
		}
		if s.HasFinally {
			r.resolveStmt(s.FinallyBody, scope)
		}

	case *ast.ReturnStmt:
		r.resolveExpr(s.Value, scope)

	case *ast.ExprStmt:
		r.resolveExpr(s.X, scope)

	case *ast.ExportConstDecl:
		r.resolveExpr(s.Init, scope)

	case *ast.ImportDecl, *ast.BreakStmt, *ast.ContinueStmt:
		// nothing to resolve
	}
}

func (r *Resolver) resolveExpr(expr ast.Expr, scope *ast.Scope) {
	switch e := expr.(type) {
	case nil, *ast.NullLit, *ast.BoolLit, *ast.NumberLit, *ast.StringLit, *ast.ThisExpr:
		// leaves

	case *ast.Ident:
		r.resolveIdent(e, scope)

	case *ast.ListLit:
		for _, el := range e.Elements {
			r.resolveExpr(el, scope)
		}

	case *ast.TableLit:
		for _, ent := range e.Entries {
			r.resolveExpr(ent.Key, scope)
			r.resolveExpr(ent.Value, scope)
		}

	case *ast.UnaryExpr:
		r.resolveExpr(e.X, scope)

	case *ast.BinaryExpr:
		r.resolveExpr(e.X, scope)
		r.resolveExpr(e.Y, scope)

	case *ast.LogicalExpr:
		r.resolveExpr(e.X, scope)
		r.resolveExpr(e.Y, scope)

	case *ast.AssignExpr:
		r.resolveAssignTarget(e.Target, scope)
		r.resolveExpr(e.Value, scope)

	case *ast.TernaryExpr:
		r.resolveExpr(e.Cond, scope)
		r.resolveExpr(e.Then, scope)
		r.resolveExpr(e.Else, scope)

	case *ast.CallExpr:
		r.resolveExpr(e.Callee, scope)
		for _, a := range e.Args {
			r.resolveExpr(a, scope)
		}

	case *ast.IndexExpr:
		r.resolveExpr(e.X, scope)
		r.resolveExpr(e.Index, scope)

	case *ast.MemberExpr:
		r.resolveExpr(e.X, scope)

	case *ast.ThrowExpr:
		r.resolveExpr(e.Value, scope)

	case *ast.FunctionLit:
		for _, st := range e.Body.Stmts {
			r.resolveStmt(st, e.Scope)
		}
	}
}

func (r *Resolver) resolveAssignTarget(target ast.Expr, scope *ast.Scope) {
	if id, ok := target.(*ast.Ident); ok {
		r.resolveIdent(id, scope)
		if id.Slot != nil && id.Slot.ReadOnly {
			r.errorf(errors.ParseError, id, "cannot assign to read-only binding %q", id.Name)
		}
		return
	}
	r.resolveExpr(target, scope)
}

func (r *Resolver) resolveIdent(id *ast.Ident, scope *ast.Scope) {
	slot, declScope := scope.Lookup(id.Name)
	if slot == nil {
		r.errorf(errors.ResolveError, id, "undefined name %q", id.Name)
		return
	}
	id.Slot = slot

	if slot.Kind == ast.SlotImport {
		return // already global; never captured into a closure
	}
	if scope.EnclosingFunction != declScope.EnclosingFunction {
		slot.Storage = ast.StorageClosure
	}
}
