// Package asm implements the optional assembly-text format: a
// line-oriented surface over internal/bytecode's packed instruction word,
// independent of the lexer/parser/resolver/emitter front end, so the VM and
// disassembler can be exercised directly by a test fixture. Labels may be
// referenced before they're defined; a second pass resolves them once
// every line has been scanned.
package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/altolang/alto/internal/bytecode"
	"github.com/altolang/alto/internal/module"
	"github.com/altolang/alto/internal/value"
)

// arity describes whether a mnemonic's param/value operand is required,
// optional (defaulting to 0), or forbidden, so a malformed assembly line
// is rejected instead of silently encoding garbage.
type arity int

const (
	forbidden arity = iota
	optional
	required
)

type opSpec struct {
	op    bytecode.OpCode
	param arity
	value arity
}

// specs gives every mnemonic its Alto spelling (matching bytecode.OpCode's
// String()) and declared operand arity. Mnemonics not listed here take no
// operands and are rejected if any are supplied.
var specs = map[string]opSpec{
	"PushNull":      {bytecode.OpPushNull, forbidden, forbidden},
	"PushTrue":      {bytecode.OpPushTrue, forbidden, forbidden},
	"PushFalse":     {bytecode.OpPushFalse, forbidden, forbidden},
	"PushInt":       {bytecode.OpPushInt, forbidden, required},
	"PushConst":     {bytecode.OpPushConst, forbidden, required},
	"Pop":           {bytecode.OpPop, forbidden, forbidden},
	"Dup":           {bytecode.OpDup, forbidden, forbidden},
	"Copy":          {bytecode.OpCopy, forbidden, required},
	"Swap":          {bytecode.OpSwap, forbidden, forbidden},
	"NewList":       {bytecode.OpNewList, forbidden, required},
	"NewTable":      {bytecode.OpNewTable, forbidden, required},
	"LoadLocal":     {bytecode.OpLoadLocal, forbidden, required},
	"StoreLocal":    {bytecode.OpStoreLocal, forbidden, required},
	"LoadGlobal":    {bytecode.OpLoadGlobal, forbidden, required},
	"StoreGlobal":   {bytecode.OpStoreGlobal, forbidden, required},
	"LoadClosure":   {bytecode.OpLoadClosure, required, required},
	"StoreClosure":  {bytecode.OpStoreClosure, required, required},
	"EnterClosure":  {bytecode.OpEnterClosure, forbidden, required},
	"LeaveClosure":  {bytecode.OpLeaveClosure, forbidden, forbidden},
	"MakeFunction":  {bytecode.OpMakeFunction, optional, required},
	"PushArg":       {bytecode.OpPushArg, forbidden, required},
	"PushRestArgs":  {bytecode.OpPushRestArgs, forbidden, required},
	"PushThis":      {bytecode.OpPushThis, forbidden, forbidden},
	"GetMember":     {bytecode.OpGetMember, forbidden, required},
	"SetMember":     {bytecode.OpSetMember, forbidden, required},
	"GetIndex":      {bytecode.OpGetIndex, forbidden, forbidden},
	"SetIndex":      {bytecode.OpSetIndex, forbidden, forbidden},
	"Add":           {bytecode.OpAdd, forbidden, forbidden},
	"Sub":           {bytecode.OpSub, forbidden, forbidden},
	"Mul":           {bytecode.OpMul, forbidden, forbidden},
	"Div":           {bytecode.OpDiv, forbidden, forbidden},
	"Mod":           {bytecode.OpMod, forbidden, forbidden},
	"Neg":           {bytecode.OpNeg, forbidden, forbidden},
	"Not":           {bytecode.OpNot, forbidden, forbidden},
	"BitAnd":        {bytecode.OpBitAnd, forbidden, forbidden},
	"BitOr":         {bytecode.OpBitOr, forbidden, forbidden},
	"BitXor":        {bytecode.OpBitXor, forbidden, forbidden},
	"Eq":            {bytecode.OpEq, forbidden, forbidden},
	"Neq":           {bytecode.OpNeq, forbidden, forbidden},
	"Lt":            {bytecode.OpLt, forbidden, forbidden},
	"Lte":           {bytecode.OpLte, forbidden, forbidden},
	"Gt":            {bytecode.OpGt, forbidden, forbidden},
	"Gte":           {bytecode.OpGte, forbidden, forbidden},
	"Jump":          {bytecode.OpJump, forbidden, required},
	"JumpIfFalse":   {bytecode.OpJumpIfFalse, forbidden, required},
	"JumpIfTrue":    {bytecode.OpJumpIfTrue, forbidden, required},
	"EnterTry":      {bytecode.OpEnterTry, optional, required},
	"LeaveTry":      {bytecode.OpLeaveTry, forbidden, forbidden},
	"Throw":         {bytecode.OpThrow, forbidden, forbidden},
	"EnterFinally":  {bytecode.OpEnterFinally, forbidden, required},
	"LeaveFinally":  {bytecode.OpLeaveFinally, forbidden, forbidden},
	"Call":          {bytecode.OpCall, forbidden, required},
	"CallMethod":    {bytecode.OpCallMethod, forbidden, required},
	"Return":        {bytecode.OpReturn, forbidden, forbidden},
	"Apply":         {bytecode.OpApply, forbidden, forbidden},
	"Export":        {bytecode.OpExport, forbidden, required},
}

// Result is the output of assembling one text unit: a single top-level
// chunk (assembly text has no notion of nested function literals; a
// MakeFunction's Value operand is expected to already be meaningful to a
// FunctionTable the caller assembles separately and attaches) plus any
// import bindings the text declared.
type Result struct {
	Chunk   *bytecode.Chunk
	Imports []module.ImportBinding
}

// Assemble parses src (assembler text) into a Result. Directives (global,
// import, const) may appear anywhere; label definitions (`name:`) may
// precede any instruction line on the same or an earlier line.
func Assemble(src string) (*Result, error) {
	lines := splitLines(src)

	p := &parser{lines: lines, symbols: predefined()}
	if err := p.firstPass(); err != nil {
		return nil, err
	}

	chunk := &bytecode.Chunk{Globals: &p.globals, Symbols: map[int]string{}}
	if err := p.secondPass(chunk); err != nil {
		return nil, err
	}
	return &Result{Chunk: chunk, Imports: p.imports}, nil
}

func predefined() map[string]int {
	return map[string]int{"false": 0, "true": 1}
}

func splitLines(src string) []string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	return strings.Split(src, "\n")
}

// stripComment trims a trailing `; ...` comment, respecting single-quoted
// strings so a `;` inside a string literal isn't mistaken for one.
func stripComment(line string) string {
	inString := false
	for i, r := range line {
		switch r {
		case '\'':
			inString = !inString
		case ';':
			if !inString {
				return line[:i]
			}
		}
	}
	return line
}

type parser struct {
	lines   []string
	symbols map[string]int // labels, global/import slot indices, const values
	globals []any
	imports []module.ImportBinding
	// addr tracks the instruction address reached by the first pass, so a
	// label seen on line N resolves to the address of the next emitted
	// instruction, wherever in the text that ends up being.
	addr int
}

// firstPass walks the text computing each label's address and resolving
// every global/import/const directive's symbol immediately (they need no
// forward reference: their value never depends on code layout).
func (p *parser) firstPass() error {
	for lineNo, raw := range p.lines {
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "global":
			if len(fields) < 2 {
				return fmt.Errorf("line %d: global directive needs a name", lineNo+1)
			}
			idx := len(p.globals)
			var init value.Value = value.Number(0)
			if len(fields) >= 3 {
				n, err := strconv.ParseFloat(fields[2], 64)
				if err != nil {
					return fmt.Errorf("line %d: bad global initializer %q: %w", lineNo+1, fields[2], err)
				}
				init = value.Number(n)
			}
			p.globals = append(p.globals, init)
			p.symbols[fields[1]] = idx
		case "import":
			if len(fields) < 3 {
				return fmt.Errorf("line %d: import directive needs a name and a path", lineNo+1)
			}
			path := strings.Trim(fields[2], "'")
			idx := len(p.globals)
			p.globals = append(p.globals, value.Null())
			p.symbols[fields[1]] = idx
			p.imports = append(p.imports, module.ImportBinding{Name: fields[1], Path: path, GlobalIndex: idx})
		case "const":
			if len(fields) < 3 {
				return fmt.Errorf("line %d: const directive needs a name and a value", lineNo+1)
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return fmt.Errorf("line %d: bad const value %q: %w", lineNo+1, fields[2], err)
			}
			p.symbols[fields[1]] = n
		default:
			rest := fields
			for len(rest) > 0 && strings.HasSuffix(rest[0], ":") {
				label := strings.TrimSuffix(rest[0], ":")
				p.symbols[label] = p.addr
				rest = rest[1:]
			}
			if len(rest) > 0 {
				p.addr++
			}
		}
	}
	return nil
}

// secondPass re-walks the text, this time emitting instructions (and
// interning string-literal operands into the data pool as they're
// encountered; label/global/import/const symbols were already resolved in
// firstPass, so only operand *order of appearance* matters here).
func (p *parser) secondPass(chunk *bytecode.Chunk) error {
	for lineNo, raw := range p.lines {
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "global", "import", "const":
			continue
		}
		rest := fields
		for len(rest) > 0 && strings.HasSuffix(rest[0], ":") {
			chunk.Symbols[len(chunk.Code)] = strings.TrimSuffix(rest[0], ":")
			rest = rest[1:]
		}
		if len(rest) == 0 {
			continue
		}
		if err := p.emitInstruction(chunk, rest, lineNo+1); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) emitInstruction(chunk *bytecode.Chunk, fields []string, lineNo int) error {
	spec, ok := specs[fields[0]]
	if !ok {
		return fmt.Errorf("line %d: unknown mnemonic %q", lineNo, fields[0])
	}
	operands := fields[1:]

	// Operand order on a line is `mnemonic [param] [value]`: with two
	// operands the first is the param, with one it binds to the value
	// field (every single-operand mnemonic's param is implicit), and an
	// explicit zero param is tolerated even for mnemonics that declare no
	// param, so disassembler-shaped two-column output round-trips.
	param := 0
	value := 0
	var err error
	switch len(operands) {
	case 0:
		if spec.param == required || spec.value == required {
			return fmt.Errorf("line %d: %s requires an operand", lineNo, fields[0])
		}
	case 1:
		switch {
		case spec.param == required && spec.value == required:
			return fmt.Errorf("line %d: %s requires param and value operands", lineNo, fields[0])
		case spec.value != forbidden:
			if value, err = p.resolveOperand(operands[0], chunk); err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
		case spec.param != forbidden:
			if param, err = p.resolveOperand(operands[0], chunk); err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
		default:
			return fmt.Errorf("line %d: %s takes no operands", lineNo, fields[0])
		}
	case 2:
		if spec.value == forbidden {
			return fmt.Errorf("line %d: %s takes no value operand", lineNo, fields[0])
		}
		if param, err = p.resolveOperand(operands[0], chunk); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if spec.param == forbidden && param != 0 {
			return fmt.Errorf("line %d: %s takes no param operand", lineNo, fields[0])
		}
		if value, err = p.resolveOperand(operands[1], chunk); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	default:
		return fmt.Errorf("line %d: %s given %d operands, at most 2 allowed", lineNo, fields[0], len(operands))
	}

	chunk.Code = append(chunk.Code, bytecode.Encode(spec.op, param, value))
	chunk.Lines = append(chunk.Lines, lineNo)
	return nil
}

// resolveOperand turns one operand token into an integer: a quoted string
// is interned into the data pool and resolves to its index, a bare integer
// parses directly, and anything else is looked up as a label/global/
// import/const symbol.
func (p *parser) resolveOperand(tok string, chunk *bytecode.Chunk) (int, error) {
	if strings.HasPrefix(tok, "'") && strings.HasSuffix(tok, "'") && len(tok) >= 2 {
		return internConst(chunk, strings.Trim(tok, "'")), nil
	}
	if n, err := strconv.Atoi(tok); err == nil {
		return n, nil
	}
	if tok == "null" {
		return 0, nil
	}
	if v, ok := p.symbols[tok]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("unresolved symbol %q", tok)
}

func internConst(chunk *bytecode.Chunk, v string) int {
	for i, existing := range chunk.Data {
		if s, ok := existing.(string); ok && s == v {
			return i
		}
	}
	chunk.Data = append(chunk.Data, v)
	return len(chunk.Data) - 1
}
