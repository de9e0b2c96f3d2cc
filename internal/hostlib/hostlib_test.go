package hostlib

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/altolang/alto/internal/value"
)

func init() {
	InstallAll()
}

func TestConsolePrintAndPrintln(t *testing.T) {
	var buf bytes.Buffer
	c := Console(&buf)
	print, _ := c.Raw(value.String("print"))
	print.Apply(value.Null(), []value.Value{value.String("a"), value.String("b")})
	println_, _ := c.Raw(value.String("println"))
	println_.Apply(value.Null(), []value.Value{value.String("c")})

	got := buf.String()
	want := "ab" + "c\n"
	if got != want {
		t.Fatalf("console output = %q, want %q", got, want)
	}
}

func TestMathFunctions(t *testing.T) {
	m := Math()
	sqrt, _ := m.Raw(value.String("sqrt"))
	r, exc := sqrt.Apply(value.Null(), []value.Value{value.Number(9)})
	if exc != nil {
		t.Fatalf("sqrt raised: %v", exc)
	}
	if r.AsNumber() != 3 {
		t.Fatalf("sqrt(9) = %v, want 3", r.AsNumber())
	}

	maxFn, _ := m.Raw(value.String("max"))
	r, _ = maxFn.Apply(value.Null(), []value.Value{value.Number(1), value.Number(5), value.Number(3)})
	if r.AsNumber() != 5 {
		t.Fatalf("max(1,5,3) = %v, want 5", r.AsNumber())
	}
}

func TestStringPrototypeSubAndCase(t *testing.T) {
	sub, _ := value.StringProto.Raw(value.String("sub"))
	r, _ := sub.Apply(value.String("hello"), []value.Value{value.Number(1), value.Number(3)})
	if r.AsString() != "ell" {
		t.Fatalf("sub(1,3) = %q, want %q", r.AsString(), "ell")
	}

	upper, _ := value.StringProto.Raw(value.String("toUpperCase"))
	r, _ = upper.Apply(value.String("café"), nil)
	if r.AsString() != "CAFÉ" {
		t.Fatalf("toUpperCase = %q, want %q", r.AsString(), "CAFÉ")
	}
}

func TestListPrototypePushPop(t *testing.T) {
	l := value.FromList(value.NewList([]value.Value{value.Number(1), value.Number(2)}))
	push, _ := value.ListProto.Raw(value.String("push"))
	n, _ := push.Apply(l, []value.Value{value.Number(3)})
	if n.AsNumber() != 3 {
		t.Fatalf("push returned length %v, want 3", n.AsNumber())
	}

	pop, _ := value.ListProto.Raw(value.String("pop"))
	popped, _ := pop.Apply(l, nil)
	if popped.AsNumber() != 3 {
		t.Fatalf("pop() = %v, want 3", popped.AsNumber())
	}
}

func TestLoaderResolvesBuiltinByName(t *testing.T) {
	console := Console(nil)
	loader := NewLoader(".", map[string]*value.Table{"console": console}, nil)
	got, err := loader.Resolve("console")
	if err != nil {
		t.Fatalf("Resolve(console) error: %v", err)
	}
	if got != console {
		t.Fatalf("Resolve(console) returned a different table")
	}
}

func TestLoaderCompilesFilesystemModule(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "util.alto")
	if err := os.WriteFile(path, []byte("export const x = 1;"), 0o644); err != nil {
		t.Fatal(err)
	}

	called := false
	compile := func(p, src string) (*value.Table, error) {
		called = true
		out := value.NewTable()
		out.SetRawStr("x", value.Number(1))
		return out, nil
	}
	loader := NewLoader(dir, nil, compile)

	exports, err := loader.Resolve("util")
	if err != nil {
		t.Fatalf("Resolve(util) error: %v", err)
	}
	if !called {
		t.Fatal("expected Compile to be invoked for a filesystem module")
	}
	x, _ := exports.Raw(value.String("x"))
	if x.AsNumber() != 1 {
		t.Fatalf("exports.x = %v, want 1", x.AsNumber())
	}

	// Second resolve of the same path must hit the cache, not recompile.
	called = false
	if _, err := loader.Resolve("util"); err != nil {
		t.Fatalf("second Resolve(util) error: %v", err)
	}
	if called {
		t.Fatal("expected second Resolve to be served from cache")
	}
}

func TestLoaderMissingFileReturnsError(t *testing.T) {
	loader := NewLoader(t.TempDir(), nil, nil)
	if _, err := loader.Resolve("nope"); err == nil {
		t.Fatal("expected an error resolving a nonexistent module")
	}
}
