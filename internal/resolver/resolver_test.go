package resolver

import (
	"testing"

	"github.com/altolang/alto/internal/ast"
	"github.com/altolang/alto/internal/errors"
	"github.com/altolang/alto/internal/lexer"
	"github.com/altolang/alto/internal/parser"
)

func resolveSource(t *testing.T, src string) []*errors.CompilerError {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return Resolve(prog)
}

func TestResolveAcceptsWellFormedProgram(t *testing.T) {
	errs := resolveSource(t, `
var x = 1
const y = 2
var addXY = (n) => n + x + y
`)
	if len(errs) != 0 {
		t.Fatalf("unexpected resolve errors: %v", errs)
	}
}

func TestResolveRejectsConstReassignment(t *testing.T) {
	errs := resolveSource(t, `
const x = 1
x = 2
`)
	if len(errs) == 0 {
		t.Fatal("expected a ParseError for assigning to a const binding")
	}
	if errs[0].Kind != errors.ParseError {
		t.Fatalf("kind = %v, want ParseError", errs[0].Kind)
	}
}

func TestResolveRejectsRedeclarationInSameScope(t *testing.T) {
	errs := resolveSource(t, `
var x = 1
var x = 2
`)
	if len(errs) == 0 {
		t.Fatal("expected a ParseError for redeclaring x in the same scope")
	}
	if errs[0].Kind != errors.ParseError {
		t.Fatalf("kind = %v, want ParseError", errs[0].Kind)
	}
}

func TestResolveAllowsShadowingInNestedScope(t *testing.T) {
	errs := resolveSource(t, `
var x = 1
if (true) {
  var x = 2
}
`)
	if len(errs) != 0 {
		t.Fatalf("shadowing in a nested block should be legal, got: %v", errs)
	}
}

func TestResolveRejectsUnresolvedIdentifier(t *testing.T) {
	errs := resolveSource(t, `export const result = undeclaredName`)
	if len(errs) == 0 {
		t.Fatal("expected a ResolveError for an undeclared identifier")
	}
	if errs[0].Kind != errors.ResolveError {
		t.Fatalf("kind = %v, want ResolveError", errs[0].Kind)
	}
}

func TestResolveMarksCapturedSlotAsClosureStorage(t *testing.T) {
	p := parser.New(lexer.New(`
var n = 1
var f = () => n
`))
	prog, err := p.ParseProgram()
	if err != nil || len(p.Errors()) > 0 {
		t.Fatalf("parse failed: %v %v", err, p.Errors())
	}
	if errs := Resolve(prog); len(errs) != 0 {
		t.Fatalf("unexpected resolve errors: %v", errs)
	}
	decl := prog.Stmts[0].(*ast.VarDecl)
	if decl.Slot == nil || decl.Slot.Storage != ast.StorageClosure {
		t.Fatalf("captured n has storage %v, want StorageClosure", decl.Slot)
	}
}
