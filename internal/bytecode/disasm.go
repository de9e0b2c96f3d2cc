package bytecode

import (
	"fmt"
	"strings"
)

// Chunk is a compiled unit of code: the instruction stream, the constant
// data pool numeric/string literals are interned into, and a parallel
// source-map recording the originating line for each instruction. It
// carries no identity of its own; internal/module.Module wraps one with
// import fix-up and an exports table.
type Chunk struct {
	Code  []Instruction
	Data  []any // Number (float64)/String (string) constants; resolved import values live in Globals
	Lines []int // Lines[i] is the source line OpCode at Code[i] was emitted from

	// FunctionTable holds one Chunk per function literal nested directly
	// in this one; OpMakeFunction's Value operand indexes into it. Each
	// nested function is fully self-contained (its own Code/Data/Lines
	// and, recursively, its own FunctionTable), so jump targets are always
	// local to a single Chunk and never need cross-function address math.
	FunctionTable []*Chunk

	// StackAllocation is how many locals slots a call frame executing
	// this chunk must pre-allocate (from the resolver's dense layout).
	StackAllocation int
	// ClosureSize is how many cells this chunk's own closure frame needs,
	// when NeedsClosureFrame is true.
	ClosureSize       int
	NeedsClosureFrame bool

	Name string // for diagnostics/disassembly; "" for the top-level module chunk

	// Params and HasRest describe a function chunk's parameter list purely
	// for introspection (value.Function's .name/.length and disassembly
	// headers); the actual argument binding is compiled straight into the
	// chunk's prologue as OpPushArg/OpPushRestArgs + a store.
	Params  []string
	HasRest bool

	// Globals is shared by every chunk in a module (the top chunk and
	// every function nested anywhere inside it point at the same backing
	// slice): OpLoadGlobal/OpStoreGlobal always address this array
	// regardless of which chunk is currently executing, since import
	// bindings only ever exist at module scope but the code that reads
	// one may live deep inside a nested function.
	Globals *[]any

	Symbols map[int]string // optional section entry labels, for Disassemble and the assembler
}

// Disassemble renders chunk as human-readable text: one `addr LINE op
// param value  ; comment` row per instruction, with section labels from
// Symbols inserted ahead of the instruction they name.
func Disassemble(chunk *Chunk) string {
	var sb strings.Builder
	for addr, instr := range chunk.Code {
		if label, ok := chunk.Symbols[addr]; ok {
			fmt.Fprintf(&sb, "%s:\n", label)
		}
		line := 0
		if addr < len(chunk.Lines) {
			line = chunk.Lines[addr]
		}
		fmt.Fprintf(&sb, "%6d  %4d  %-14s %3d %8d", addr, line, instr.Op(), instr.Param(), instr.Value())
		if comment := operandComment(chunk, instr); comment != "" {
			fmt.Fprintf(&sb, "  ; %s", comment)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func operandComment(chunk *Chunk, instr Instruction) string {
	switch instr.Op() {
	case OpPushConst:
		if v := instr.Value(); v >= 0 && v < len(chunk.Data) {
			return fmt.Sprintf("%v", chunk.Data[v])
		}
	case OpLoadGlobal, OpStoreGlobal:
		if chunk.Globals != nil {
			if v := instr.Value(); v >= 0 && v < len(*chunk.Globals) {
				return fmt.Sprintf("%v", (*chunk.Globals)[v])
			}
		}
	case OpJump, OpJumpIfFalse, OpJumpIfTrue, OpEnterTry:
		return fmt.Sprintf("-> %d", instr.Value())
	}
	return ""
}
