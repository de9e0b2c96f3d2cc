package alto

import (
	"bytes"
	"math"
	"testing"

	"github.com/altolang/alto/internal/value"
)

// exportsOf compiles and runs src with a fresh Engine, failing the test if
// either step raises, and returns the module's exports table.
func exportsOf(t *testing.T, src string) *value.Table {
	t.Helper()
	var buf bytes.Buffer
	e, err := New(WithOutput(&buf), WithBaseDir(t.TempDir()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mod, err := e.Compile("<test>", src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := e.RunModule(mod); err != nil {
		t.Fatalf("RunModule: %v", err)
	}
	return mod.Exports
}

// TestLoopCaptureIsPerIteration: a function created inside a loop body
// closes over that iteration's own variables, not the final value left
// after the loop ends.
func TestLoopCaptureIsPerIteration(t *testing.T) {
	src := `
var f = [null, null]
var i = 0
while (i < 2) {
  var n = 1
  for (var j = 0; j < 1; j += 1) { f[i] = (c) => n += c }
  i += 1
}
this.a = f[0](2)
this.b = f[1](4)
`
	exports := exportsOf(t, src)
	a, ok := exports.RawStr("a")
	if !ok || a.AsNumber() != 3 {
		t.Fatalf("export a = %v, want 3", a)
	}
	b, ok := exports.RawStr("b")
	if !ok || b.AsNumber() != 5 {
		t.Fatalf("export b = %v, want 5", b)
	}
}

// manOrBoy returns Knuth's man-or-boy test program parameterized on k,
// testing the implementation's ability to resolve correctly nested
// closures over mutable reference parameters.
func manOrBoy(k int) string {
	return `
var A = (k, x1, x2, x3, x4, x5) => {
  var B = () => {
    k -= 1
    return A(k, B, x1, x2, x3, x4)
  }
  if (k <= 0) {
    return x4() + x5()
  }
  return B()
}
var I = (n) => () => n
export const result = A(` + itoa(k) + `, I(1), I(-1), I(-1), I(1), I(0))
`
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

func TestManOrBoy(t *testing.T) {
	cases := []struct {
		k    int
		want float64
	}{
		{7, -1}, {8, -10}, {9, -30}, {10, -67}, {11, -138},
	}
	for _, c := range cases {
		exports := exportsOf(t, manOrBoy(c.k))
		got, ok := exports.RawStr("result")
		if !ok {
			t.Fatalf("k=%d: no export named result", c.k)
		}
		if got.AsNumber() != c.want {
			t.Errorf("manOrBoy(%d) = %v, want %v", c.k, got.AsNumber(), c.want)
		}
	}
}

// TestTryFinallyOutermostReturnWins: when every nested level returns from
// its own finally, the outermost finally's return value is the one the
// function yields.
func TestTryFinallyOutermostReturnWins(t *testing.T) {
	src := `
var f = () => {
  try {
    try {
      try {
        try { return 1 } finally { return 2 }
      } finally { return 3 }
    } finally { return 4 }
  } finally { return 5 }
}
export const result = f()
`
	exports := exportsOf(t, src)
	got, _ := exports.RawStr("result")
	if got.AsNumber() != 5 {
		t.Fatalf("result = %v, want 5", got.AsNumber())
	}
}

// TestFinallyRunsBeforeReturn checks that a finally without its own return
// still runs (and can observe side effects) before the try's return value
// escapes the function.
func TestFinallyRunsBeforeReturn(t *testing.T) {
	src := `
var log = []
var f = () => {
  try { return 1 } finally { log.push("cleanup") }
}
export const result = f()
export const logLen = log.length
`
	exports := exportsOf(t, src)
	result, _ := exports.RawStr("result")
	if result.AsNumber() != 1 {
		t.Fatalf("result = %v, want 1", result.AsNumber())
	}
	logLen, _ := exports.RawStr("logLen")
	if logLen.AsNumber() != 1 {
		t.Fatalf("logLen = %v, want 1 (finally should have run)", logLen.AsNumber())
	}
}

// TestExceptionAsExpression: `throw` may appear inside an expression
// (here, the right side of `||`), and the caught exception's `.value` is
// the original payload.
func TestExceptionAsExpression(t *testing.T) {
	src := `
var n = null
var caught = null
try {
  var m = n || throw 1
} catch (e) {
  caught = e.value
}
export const result = caught
`
	exports := exportsOf(t, src)
	got, _ := exports.RawStr("result")
	if got.AsNumber() != 1 {
		t.Fatalf("caught.value = %v, want 1", got.AsNumber())
	}
}

// TestNullChainNavigation: member access on a missing or null
// intermediate never raises, it just keeps producing Null.
func TestNullChainNavigation(t *testing.T) {
	exports := exportsOf(t, `
export const chain = ({a: 3.14}).a.b.c
export const nullIndex = (null)[null]
`)
	chain, _ := exports.RawStr("chain")
	if !chain.IsNull() {
		t.Fatalf("{a:3.14}.a.b.c = %v, want null", chain)
	}
	nullIndex, _ := exports.RawStr("nullIndex")
	if !nullIndex.IsNull() {
		t.Fatalf("(null)[null] = %v, want null", nullIndex)
	}
}

// TestConstReassignmentFailsAtCompileTime: assigning to a const binding
// is a compile-time ParseError, not a runtime fault.
func TestConstReassignmentFailsAtCompileTime(t *testing.T) {
	var buf bytes.Buffer
	e, _ := New(WithOutput(&buf))
	_, err := e.Run("<test>", "const x = 1\nx = 2\n")
	if err == nil {
		t.Fatal("expected a compile error assigning to a const binding")
	}
}

// TestDuplicateDeclarationFails: redeclaring a name already visible in
// the same scope is rejected at compile time.
func TestDuplicateDeclarationFails(t *testing.T) {
	var buf bytes.Buffer
	e, _ := New(WithOutput(&buf))
	_, err := e.Run("<test>", "var x = 1\nvar x = 2\n")
	if err == nil {
		t.Fatal("expected a compile error for a duplicate declaration")
	}
}

// TestModuleImportUnresolved: running a module whose import never
// resolves raises ImportUnresolved rather than silently binding null.
func TestModuleImportUnresolved(t *testing.T) {
	var buf bytes.Buffer
	e, err := New(WithOutput(&buf), WithImportResolver(func(path string) (*value.Table, error) {
		return nil, nil
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = e.Run("<test>", "import missing from 'nowhere'\n")
	if err == nil {
		t.Fatal("expected ImportUnresolved for a module whose resolver returns nothing")
	}
}

// TestPrototypeToStringOverride: overriding toString on a Table routes
// stringification (here, console's implicit stringification of its
// arguments) through that function.
func TestPrototypeToStringOverride(t *testing.T) {
	var buf bytes.Buffer
	e, err := New(WithOutput(&buf), WithBaseDir(t.TempDir()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = e.Run("<test>", `
import console from 'console'
var t = {toString: () => "custom"}
console.println(t)
`)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := buf.String(); got != "custom\n" {
		t.Fatalf("console.println(t) = %q, want %q", got, "custom\n")
	}
}

// TestStringLengthIsCodepointCount exercises the string prototype's
// `length`, which must count runes, not bytes, for multi-byte content.
func TestStringLengthIsCodepointCount(t *testing.T) {
	exports := exportsOf(t, `export const result = "héllo".length`)
	result, _ := exports.RawStr("result")
	if result.AsNumber() != 5 {
		t.Fatalf("\"héllo\".length = %v, want 5", result.AsNumber())
	}
}

// TestToBooleanRules pins the to_boolean table: Null, false, 0 and NaN
// are falsy; everything else (including the empty string) is truthy.
func TestToBooleanRules(t *testing.T) {
	cases := []struct {
		name string
		v    value.Value
		want bool
	}{
		{"null", value.Null(), false},
		{"false", value.Bool(false), false},
		{"true", value.Bool(true), true},
		{"zero", value.Number(0), false},
		{"nan", value.Number(math.NaN()), false},
		{"negative", value.Number(-1), true},
		{"positive", value.Number(1), true},
		{"empty string", value.String(""), true},
	}
	for _, c := range cases {
		if got := c.v.ToBoolean(); got != c.want {
			t.Errorf("%s.ToBoolean() = %v, want %v", c.name, got, c.want)
		}
	}
}

// TestNaNEqualityRules pins the two distinct NaN-equality rules:
// `==` never treats NaN as equal to itself, but StructuralEquals (used for
// Table keys) does.
func TestNaNEqualityRules(t *testing.T) {
	nan := value.Number(math.NaN())
	if nan.Equals(nan) {
		t.Fatal("NaN == NaN should be false under Equals")
	}
	if !nan.StructuralEquals(nan) {
		t.Fatal("NaN should structurally equal itself")
	}
	if nan.StructuralHash() != nan.StructuralHash() {
		t.Fatal("StructuralHash must be stable for the same NaN-bearing Value")
	}
}
