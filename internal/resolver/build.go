package resolver

import (
	"github.com/altolang/alto/internal/ast"
	"github.com/altolang/alto/internal/errors"
)

// buildStmt walks stmt, declaring every name it introduces into scope and
// constructing child scopes for nested blocks/loops/functions. It never
// resolves a reference; that happens in the second pass (resolve.go) once
// every scope in the program has been fully declared, so forward and
// sibling references within a function all see the same picture.
func (r *Resolver) buildStmt(stmt ast.Stmt, scope *ast.Scope) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		s.Slot = r.declareLocal(scope, s.Name, ast.SlotVariable, s.Const, s)
		r.buildExpr(s.Init, scope)

	case *ast.BlockStmt:
		s.Scope = ast.NewScope(ast.BlockScope, scope)
		r.buildBlockUsingScope(s, s.Scope)

	case *ast.IfStmt:
		r.buildExpr(s.Cond, scope)
		r.buildStmt(s.Then, scope)
		if s.Else != nil {
			r.buildStmt(s.Else, scope)
		}

	case *ast.WhileStmt:
		r.buildExpr(s.Cond, scope)
		loopScope := ast.NewScope(ast.LoopScope, scope)
		s.LoopScope = loopScope
		r.buildLoopBody(s.Body, loopScope)

	case *ast.ForStmt:
		loopScope := ast.NewScope(ast.LoopScope, scope)
		s.LoopScope = loopScope
		if s.Init != nil {
			r.buildStmt(s.Init, loopScope)
		}
		r.buildExpr(s.Cond, loopScope)
		r.buildExpr(s.Next, loopScope)
		r.buildLoopBody(s.Body, loopScope)

	case *ast.TryStmt:
		s.Body.Scope = ast.NewScope(ast.BlockScope, scope)
		r.buildBlockUsingScope(s.Body, s.Body.Scope)
		if s.HasCatch {
			catchScope := ast.NewScope(ast.BlockScope, scope)
			if s.CatchParam != "" {
				slot := &ast.Slot{Name: s.CatchParam, Kind: ast.SlotVariable}
				catchScope.Declare(slot)
				s.CatchSlot = slot
			}
			s.CatchBody.Scope = catchScope
			r.buildBlockUsingScope(s.CatchBody, catchScope)
		}
		if s.HasFinally {
			s.FinallyBody.Scope = ast.NewScope(ast.BlockScope, scope)
			r.buildBlockUsingScope(s.FinallyBody, s.FinallyBody.Scope)
		}

	case *ast.ReturnStmt:
		r.buildExpr(s.Value, scope)

	case *ast.ExprStmt:
		r.buildExpr(s.X, scope)

	case *ast.ImportDecl:
		slot := &ast.Slot{Name: s.Name, Kind: ast.SlotImport, ReadOnly: true}
		slot.Storage = ast.StorageGlobal
		slot.Index = r.nextGlobal
		r.nextGlobal++
		scope.Declare(slot)
		s.Slot = slot

	case *ast.ExportConstDecl:
		slot := &ast.Slot{Name: s.Name, Kind: ast.SlotVariable, ReadOnly: true}
		scope.Declare(slot)
		s.Slot = slot
		r.buildExpr(s.Init, scope)

	case *ast.BreakStmt, *ast.ContinueStmt:
		// no names introduced

	default:
		r.errorf(errors.ResolveError, stmt, "resolver: unhandled statement type %T", stmt)
	}
}

func (r *Resolver) buildBlockUsingScope(blk *ast.BlockStmt, scope *ast.Scope) {
	for _, st := range blk.Stmts {
		r.buildStmt(st, scope)
	}
}

// buildLoopBody declares body's locals directly into loopScope when body
// is a brace block (so a `for`/`while` body's own scope IS the loop
// scope, letting step 3 anchor captured slots there for per-iteration
// closure semantics), or directly in loopScope for a braceless body.
func (r *Resolver) buildLoopBody(body ast.Stmt, loopScope *ast.Scope) {
	if blk, ok := body.(*ast.BlockStmt); ok {
		blk.Scope = loopScope
		r.buildBlockUsingScope(blk, loopScope)
		return
	}
	r.buildStmt(body, loopScope)
}

// declareLocal adds a new slot named name to scope, reporting a ParseError
// if scope (not any ancestor) already declares that name.
func (r *Resolver) declareLocal(scope *ast.Scope, name string, kind ast.SlotKind, readOnly bool, node ast.Node) *ast.Slot {
	for _, existing := range scope.Slots {
		if existing.Name == name {
			r.errorf(errors.ParseError, node, "%q is already declared in this scope", name)
			break
		}
	}
	slot := &ast.Slot{Name: name, Kind: kind, ReadOnly: readOnly}
	scope.Declare(slot)
	return slot
}

func (r *Resolver) buildExpr(expr ast.Expr, scope *ast.Scope) {
	switch e := expr.(type) {
	case nil, *ast.NullLit, *ast.BoolLit, *ast.NumberLit, *ast.StringLit, *ast.ThisExpr, *ast.Ident:
		// leaves: nothing to declare; Ident references are resolved later

	case *ast.ListLit:
		for _, el := range e.Elements {
			r.buildExpr(el, scope)
		}

	case *ast.TableLit:
		for _, ent := range e.Entries {
			r.buildExpr(ent.Key, scope)
			r.buildExpr(ent.Value, scope)
		}

	case *ast.UnaryExpr:
		r.buildExpr(e.X, scope)

	case *ast.BinaryExpr:
		r.buildExpr(e.X, scope)
		r.buildExpr(e.Y, scope)

	case *ast.LogicalExpr:
		r.buildExpr(e.X, scope)
		r.buildExpr(e.Y, scope)

	case *ast.AssignExpr:
		r.buildExpr(e.Target, scope)
		r.buildExpr(e.Value, scope)

	case *ast.TernaryExpr:
		r.buildExpr(e.Cond, scope)
		r.buildExpr(e.Then, scope)
		r.buildExpr(e.Else, scope)

	case *ast.CallExpr:
		r.buildExpr(e.Callee, scope)
		for _, a := range e.Args {
			r.buildExpr(a, scope)
		}

	case *ast.IndexExpr:
		r.buildExpr(e.X, scope)
		r.buildExpr(e.Index, scope)

	case *ast.MemberExpr:
		r.buildExpr(e.X, scope)

	case *ast.ThrowExpr:
		r.buildExpr(e.Value, scope)

	case *ast.FunctionLit:
		fnScope := ast.NewScope(ast.FunctionScope, scope)
		e.Scope = fnScope
		r.functionScopes = append(r.functionScopes, fnScope)
		for i, param := range e.Params {
			src := ast.SourceArgument
			if param.Rest {
				src = ast.SourceArgumentSlice
			}
			fnScope.Declare(&ast.Slot{Name: param.Name, Kind: ast.SlotParameter, Source: src, SourceIndex: i})
		}
		e.Body.Scope = fnScope
		r.buildBlockUsingScope(e.Body, fnScope)

	default:
		r.errorf(errors.ResolveError, expr, "resolver: unhandled expression type %T", expr)
	}
}
