package vm

import (
	"bytes"
	"math"
	"testing"

	"github.com/altolang/alto/internal/emitter"
	"github.com/altolang/alto/internal/hostlib"
	"github.com/altolang/alto/internal/lexer"
	"github.com/altolang/alto/internal/module"
	"github.com/altolang/alto/internal/parser"
	"github.com/altolang/alto/internal/resolver"
	"github.com/altolang/alto/internal/value"
)

func init() {
	hostlib.InstallAll()
}

// compileAndRun runs src through the full front end and executes the
// resulting module, failing the test on any compile-time or runtime error.
func compileAndRun(t *testing.T, out *bytes.Buffer, src string) *module.Module {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if errs := resolver.Resolve(prog); len(errs) > 0 {
		t.Fatalf("resolve errors: %v", errs)
	}
	chunk, imports, errs := emitter.Emit(prog)
	if len(errs) > 0 {
		t.Fatalf("emit errors: %v", errs)
	}
	mod := module.New("<test>", chunk, imports)
	if err := mod.FixupImports(func(path string) (*value.Table, error) {
		return nil, nil
	}); err != nil {
		t.Fatalf("FixupImports: %v", err)
	}
	machine := New(out)
	if _, exc := machine.Run(mod); exc != nil {
		t.Fatalf("Run raised: %s", exc.Message)
	}
	return mod
}

func exportNumber(t *testing.T, mod *module.Module, name string) float64 {
	t.Helper()
	v, ok := mod.Exports.RawStr(name)
	if !ok {
		t.Fatalf("no export named %q", name)
	}
	return v.AsNumber()
}

func TestArithmeticAndComparison(t *testing.T) {
	cases := []struct {
		name string
		expr string
		want float64
	}{
		{"add", "1 + 2", 3},
		{"sub", "5 - 8", -3},
		{"mul", "3 * 4", 12},
		{"div", "7 / 2", 3.5},
		{"mod", "7 % 3", 1},
		{"precedence", "2 + 3 * 4", 14},
		{"unary neg", "-5 + 2", -3},
		{"unary plus passthrough", "+5 + 1", 6},
		{"unary plus on non-number is NaN", `+"3" + 1`, math.NaN()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			mod := compileAndRun(t, &buf, "export const result = "+c.expr)
			got := exportNumber(t, mod, "result")
			if math.IsNaN(c.want) {
				if !math.IsNaN(got) {
					t.Errorf("%s = %v, want NaN", c.expr, got)
				}
				return
			}
			if got != c.want {
				t.Errorf("%s = %v, want %v", c.expr, got, c.want)
			}
		})
	}
}

func TestComparisonOperatorsProduceBooleans(t *testing.T) {
	cases := []struct {
		name string
		expr string
		want bool
	}{
		{"lt true", "1 < 2", true},
		{"gte false", "1 >= 2", false},
		{"eq", "3 == 3", true},
		{"neq", `3 == "3"`, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			mod := compileAndRun(t, &buf, "export const result = "+c.expr)
			v, ok := mod.Exports.RawStr("result")
			if !ok || v.AsBool() != c.want {
				t.Errorf("%s = %v, want %v", c.expr, v, c.want)
			}
		})
	}
}

func TestStringPlusIsArithmeticNotConcatenation(t *testing.T) {
	var buf bytes.Buffer
	mod := compileAndRun(t, &buf, `export const result = "3" + "4"`)
	got := exportNumber(t, mod, "result")
	if got == got { // NaN is the only float64 that compares unequal to itself
		t.Fatalf(`"3" + "4" = %v, want NaN (+ is arithmetic only)`, got)
	}
}

func TestWhileLoopAccumulates(t *testing.T) {
	var buf bytes.Buffer
	mod := compileAndRun(t, &buf, `
var sum = 0
var i = 0
while (i < 5) {
  sum += i
  i += 1
}
export const result = sum
`)
	if got := exportNumber(t, mod, "result"); got != 10 {
		t.Fatalf("sum 0..4 = %v, want 10", got)
	}
}

func TestForLoopClosureCapturesOwnIteration(t *testing.T) {
	var buf bytes.Buffer
	mod := compileAndRun(t, &buf, `
var fns = []
for (var i = 0; i < 3; i += 1) {
  fns.push(() => i)
}
export const a = fns[0]()
export const b = fns[1]()
export const c = fns[2]()
`)
	if got := exportNumber(t, mod, "a"); got != 0 {
		t.Errorf("a = %v, want 0", got)
	}
	if got := exportNumber(t, mod, "b"); got != 1 {
		t.Errorf("b = %v, want 1", got)
	}
	if got := exportNumber(t, mod, "c"); got != 2 {
		t.Errorf("c = %v, want 2", got)
	}
}

func TestTryCatchBindsThrownValue(t *testing.T) {
	var buf bytes.Buffer
	mod := compileAndRun(t, &buf, `
var caught = null
try {
  throw "boom"
} catch (e) {
  caught = e.value
}
export const result = caught
`)
	v, ok := mod.Exports.RawStr("result")
	if !ok || v.AsString() != "boom" {
		t.Fatalf("caught.value = %v, want %q", v, "boom")
	}
}

func TestRecursiveFunctionCall(t *testing.T) {
	var buf bytes.Buffer
	mod := compileAndRun(t, &buf, `
var fib = (n) => {
  if (n < 2) { return n }
  return fib(n - 1) + fib(n - 2)
}
export const result = fib(10)
`)
	if got := exportNumber(t, mod, "result"); got != 55 {
		t.Fatalf("fib(10) = %v, want 55", got)
	}
}

func TestConsoleOutputReachesProvidedWriter(t *testing.T) {
	var buf bytes.Buffer
	l := lexer.New(`import console from 'console'
console.println("hi")
`)
	p := parser.New(l)
	prog, err := p.ParseProgram()
	if err != nil || len(p.Errors()) > 0 {
		t.Fatalf("parse failed: %v %v", err, p.Errors())
	}
	if errs := resolver.Resolve(prog); len(errs) > 0 {
		t.Fatalf("resolve errors: %v", errs)
	}
	chunk, imports, errs := emitter.Emit(prog)
	if len(errs) > 0 {
		t.Fatalf("emit errors: %v", errs)
	}
	mod := module.New("<test>", chunk, imports)
	console := hostlib.Console(&buf)
	if err := mod.FixupImports(func(path string) (*value.Table, error) {
		if path == "console" {
			return console, nil
		}
		return nil, nil
	}); err != nil {
		t.Fatalf("FixupImports: %v", err)
	}
	machine := New(&buf)
	if _, exc := machine.Run(mod); exc != nil {
		t.Fatalf("Run raised: %s", exc.Message)
	}
	if buf.String() != "hi\n" {
		t.Fatalf("console output = %q, want %q", buf.String(), "hi\n")
	}
}
