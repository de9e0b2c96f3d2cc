package bytecode

import (
	"strings"
	"testing"
)

func TestDisassembleRendersOneLinePerInstruction(t *testing.T) {
	chunk := &Chunk{
		Code: []Instruction{
			Encode(OpPushInt, 0, 2),
			Encode(OpPushInt, 0, 3),
			Encode(OpAdd, 0, 0),
			Encode(OpReturn, 0, 0),
		},
		Lines: []int{1, 1, 1, 1},
	}
	out := Disassemble(chunk)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != len(chunk.Code) {
		t.Fatalf("got %d disassembly lines, want %d", len(lines), len(chunk.Code))
	}
	if !strings.Contains(lines[2], "Add") {
		t.Errorf("line 2 = %q, want it to mention Add", lines[2])
	}
}

func TestDisassembleInsertsSectionLabels(t *testing.T) {
	chunk := &Chunk{
		Code: []Instruction{
			Encode(OpJump, 0, 2),
			Encode(OpPushNull, 0, 0),
			Encode(OpReturn, 0, 0),
		},
		Lines:   []int{1, 1, 1},
		Symbols: map[int]string{2: "end"},
	}
	out := Disassemble(chunk)
	if !strings.Contains(out, "end:\n") {
		t.Errorf("disassembly missing section label, got:\n%s", out)
	}
}

func TestDisassembleAnnotatesConstAndGlobalOperands(t *testing.T) {
	globals := []any{value42{}}
	chunk := &Chunk{
		Code: []Instruction{
			Encode(OpPushConst, 0, 0),
			Encode(OpLoadGlobal, 0, 0),
		},
		Data:    []any{"hello"},
		Lines:   []int{1, 1},
		Globals: &globals,
	}
	out := Disassemble(chunk)
	if !strings.Contains(out, "; hello") {
		t.Errorf("expected a comment naming the interned constant, got:\n%s", out)
	}
	if !strings.Contains(out, "; <global>") {
		t.Errorf("expected a comment naming the global's value, got:\n%s", out)
	}
}

type value42 struct{}

func (value42) String() string { return "<global>" }
