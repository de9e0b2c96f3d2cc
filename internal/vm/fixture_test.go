package vm

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/altolang/alto/internal/bytecode"
	"github.com/altolang/alto/internal/emitter"
	"github.com/altolang/alto/internal/lexer"
	"github.com/altolang/alto/internal/module"
	"github.com/altolang/alto/internal/parser"
	"github.com/altolang/alto/internal/resolver"
	"github.com/altolang/alto/internal/value"
	"github.com/gkampitakis/go-snaps/snaps"
)

// fixtures are end-to-end scripts snapshotted both for their disassembly
// and their exports: arithmetic, closure capture and try/catch/finally.
// Only each script's top-level chunk is disassembled, so code inside
// nested functions does not appear in the snapshots.
var fixtures = []struct {
	name string
	src  string
}{
	{"arithmetic", `export const result = (2 + 3) * 4 - 1`},
	{"closure_capture", `
var make = (start) => {
  var n = start
  return () => n += 1
}
var counter = make(10)
export const a = counter()
export const b = counter()
`},
	{"try_finally", `
var log = []
try {
  log.push("try")
  throw "boom"
} catch (e) {
  log.push(e.value)
} finally {
  log.push("finally")
}
export const joined = log.join(",")
`},
}

func compileFixture(t *testing.T, src string) (*module.Module, *bytecode.Chunk) {
	t.Helper()
	p := parser.New(lexer.New(src))
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
	mod := module.New("<fixture>", chunk, imports)
	if err := mod.FixupImports(func(string) (*value.Table, error) { return nil, nil }); err != nil {
		t.Fatalf("FixupImports: %v", err)
	}
	return mod, chunk
}

// TestFixtureDisassembly snapshots each fixture's compiled bytecode, so an
// accidental change to the emitter's output shape for any of the opcode
// families exercised here shows up as a diff instead of silently compiling
// to something different.
func TestFixtureDisassembly(t *testing.T) {
	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			_, chunk := compileFixture(t, f.src)
			snaps.MatchSnapshot(t, fmt.Sprintf("%s_bytecode", f.name), bytecode.Disassemble(chunk))
		})
	}
}

// TestFixtureOutput snapshots each fixture's exported bindings after running
// it end to end through the VM; console output is not part of the snapshot.
func TestFixtureOutput(t *testing.T) {
	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			mod, _ := compileFixture(t, f.src)
			var out bytes.Buffer
			machine := New(&out)
			if _, exc := machine.Run(mod); exc != nil {
				t.Fatalf("Run raised: %s", exc.Message)
			}
			snaps.MatchSnapshot(t, fmt.Sprintf("%s_exports", f.name), renderExports(mod))
		})
	}
}

func renderExports(mod *module.Module) string {
	var sb bytes.Buffer
	for _, key := range mod.Exports.Keys() {
		v, _ := mod.Exports.Raw(key)
		fmt.Fprintf(&sb, "%s = %s\n", value.Stringify(key), value.Stringify(v))
	}
	return sb.String()
}
