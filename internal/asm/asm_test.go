package asm

import (
	"strings"
	"testing"

	"github.com/altolang/alto/internal/bytecode"
	"github.com/altolang/alto/internal/module"
	"github.com/altolang/alto/internal/value"
	"github.com/altolang/alto/internal/vm"
)

func run(t *testing.T, src string) (value.Value, *value.Exception) {
	t.Helper()
	res, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	mod := module.New("<asm>", res.Chunk, res.Imports)
	machine := vm.New(nil)
	return machine.Run(mod)
}

func TestAssembleArithmetic(t *testing.T) {
	src := `
		PushInt 0 2
		PushInt 0 3
		Add
		Return
	`
	got, exc := run(t, src)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc.Message)
	}
	if got.AsNumber() != 5 {
		t.Fatalf("want 5, got %v", got.AsNumber())
	}
}

func TestAssembleLabelsAndJump(t *testing.T) {
	// a forward jump over a PushInt that would otherwise make this return
	// 999, proving the label resolves to the address *after* the jump.
	src := `
		Jump skip
		PushInt 0 999
		Return
	skip:
		PushInt 0 0
		Return
	`
	got, exc := run(t, src)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc.Message)
	}
	if got.AsNumber() != 0 {
		t.Fatalf("want 0, got %v", got.AsNumber())
	}
}

func TestAssembleStringConstant(t *testing.T) {
	src := `
		PushConst 'hello'
		Return
	`
	got, exc := run(t, src)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc.Message)
	}
	if got.AsString() != "hello" {
		t.Fatalf("want hello, got %q", got.AsString())
	}
}

func TestAssembleRejectsUnknownMnemonic(t *testing.T) {
	_, err := Assemble("Bogus 0 0\n")
	if err == nil {
		t.Fatal("expected an error for an unknown mnemonic")
	}
}

func TestAssembleRejectsMissingRequiredOperand(t *testing.T) {
	_, err := Assemble("PushInt\n")
	if err == nil {
		t.Fatal("expected an error for a missing required operand")
	}
}

func TestAssembleGlobalDirective(t *testing.T) {
	src := `
		global counter 41
		LoadGlobal counter
		PushInt 0 1
		Add
		Return
	`
	got, exc := run(t, src)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc.Message)
	}
	if got.AsNumber() != 42 {
		t.Fatalf("want 42, got %v", got.AsNumber())
	}
}

func TestAssembleDisassembleRoundTripsSymbols(t *testing.T) {
	src := `
	loop:
		PushTrue
		JumpIfFalse done
		Jump loop
	done:
		PushNull
		Return
	`
	res, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	out := bytecode.Disassemble(res.Chunk)
	if out == "" {
		t.Fatal("expected non-empty disassembly")
	}
	for _, label := range []string{"loop:\n", "done:\n"} {
		if !strings.Contains(out, label) {
			t.Errorf("disassembly missing label %q, got:\n%s", label, out)
		}
	}
}
