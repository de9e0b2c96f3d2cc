// Package resolver implements Alto's scope analysis and closure-capture
// pass: it walks the parsed AST, builds the LexicalScope tree,
// marks which slots are captured by a nested function, decides where each
// captured slot's closure cell lives, and lays out dense local-stack and
// closure-frame indices. The emitter consumes its output (populated Slot
// and Scope fields on the AST) directly; nothing here touches bytecode.
package resolver

import (
	"github.com/altolang/alto/internal/ast"
	"github.com/altolang/alto/internal/errors"
)

// Resolver carries the diagnostics accumulated across a single Resolve
// call. It has no other state: the scope tree itself lives on the AST.
type Resolver struct {
	errs []*errors.CompilerError

	// nextGlobal assigns dense indices to import slots, the only slots
	// ever given StorageGlobal; globals are for imports only.
	nextGlobal int

	// functionScopes collects every FunctionScope discovered while
	// building the scope tree (the module scope plus one per FunctionLit),
	// so the final layout step can run independently over each of them.
	functionScopes []*ast.Scope
}

// Resolve runs the full four-step algorithm over prog and returns any
// ResolveError/ParseError diagnostics it produced. An empty result means
// prog's Slot/Scope fields are now fully populated and ready for codegen.
func Resolve(prog *ast.Program) []*errors.CompilerError {
	r := &Resolver{}

	module := ast.NewScope(ast.FunctionScope, nil)
	prog.Scope = module
	r.functionScopes = append(r.functionScopes, module)
	for _, stmt := range prog.Stmts {
		r.buildStmt(stmt, module)
	}

	for _, stmt := range prog.Stmts {
		r.resolveStmt(stmt, module)
	}

	for _, fn := range r.functionScopes {
		r.layoutFunction(fn)
	}
	return r.errs
}

func (r *Resolver) errorf(kind errors.Kind, node ast.Node, format string, args ...any) {
	r.errs = append(r.errs, errors.New(kind, node.Pos(), "", format, args...))
}
