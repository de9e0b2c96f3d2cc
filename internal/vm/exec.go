package vm

import (
	"github.com/altolang/alto/internal/bytecode"
	"github.com/altolang/alto/internal/value"
)

// step executes one decoded instruction against frame fr (always
// &vm.frames[len(vm.frames)-1] at the moment of the call; passed in so
// every case avoids re-indexing). done reports whether execution has
// unwound past floor (a normal return from the floor frame, or an
// exception that escaped it entirely), in which case result/exc are the
// values executeUntil should return.
func (vm *VM) step(fr *callFrame, instr bytecode.Instruction, floor int) (done bool, result value.Value, exc *value.Exception) {
	switch instr.Op() {

	case bytecode.OpPushNull:
		vm.push(value.Null())
	case bytecode.OpPushTrue:
		vm.push(value.Bool(true))
	case bytecode.OpPushFalse:
		vm.push(value.Bool(false))
	case bytecode.OpPushInt:
		vm.push(value.Number(float64(instr.Value())))
	case bytecode.OpPushConst:
		vm.push(constValue(fr.chunk, instr.Value()))

	case bytecode.OpPop:
		vm.pop()
	case bytecode.OpDup:
		vm.push(vm.peek(0))
	case bytecode.OpCopy:
		vm.copyTop(instr.Value())
	case bytecode.OpSwap:
		a := vm.pop()
		b := vm.pop()
		vm.push(a)
		vm.push(b)

	case bytecode.OpNewList:
		elems := vm.popN(instr.Value())
		vm.push(value.FromList(value.NewList(elems)))
	case bytecode.OpNewTable:
		n := instr.Value()
		pairs := vm.popN(2 * n)
		t := value.NewTable()
		for i := 0; i < n; i++ {
			t.SetRaw(pairs[2*i], pairs[2*i+1])
		}
		vm.push(value.FromTable(t))

	case bytecode.OpLoadLocal:
		vm.push(localAt(fr, instr.Value()))
	case bytecode.OpStoreLocal:
		idx := instr.Value()
		if idx >= 0 && idx < len(fr.locals) {
			fr.locals[idx] = vm.peek(0)
		}
	case bytecode.OpLoadGlobal:
		vm.push(globalAt(fr.chunk, instr.Value()))
	case bytecode.OpStoreGlobal:
		setGlobal(fr.chunk, instr.Value(), vm.peek(0))
	case bytecode.OpLoadClosure:
		vm.push(fr.closure.Cell(instr.Param(), instr.Value()))
	case bytecode.OpStoreClosure:
		if fr.closure != nil {
			fr.closure.SetCell(instr.Param(), instr.Value(), vm.peek(0))
		}

	case bytecode.OpEnterClosure:
		fr.closure = &value.ClosureFrame{Cells: make([]value.Value, instr.Value()), Parent: fr.closure}
	case bytecode.OpLeaveClosure:
		if fr.closure != nil {
			fr.closure = fr.closure.Parent
		}

	case bytecode.OpMakeFunction:
		vm.push(makeFunction(fr, instr.Value()))
	case bytecode.OpPushArg:
		i := instr.Value()
		if i >= 0 && i < len(fr.args) {
			vm.push(fr.args[i])
		} else {
			vm.push(value.Null())
		}
	case bytecode.OpPushRestArgs:
		i := instr.Value()
		if i < 0 || i > len(fr.args) {
			i = len(fr.args)
		}
		rest := append([]value.Value{}, fr.args[i:]...)
		vm.push(value.FromList(value.NewList(rest)))

	case bytecode.OpPushThis:
		vm.push(fr.this)
	case bytecode.OpGetMember:
		receiver := vm.pop()
		vm.push(receiver.Get(constString(fr.chunk, instr.Value())))
	case bytecode.OpSetMember:
		val := vm.pop()
		receiver := vm.pop()
		receiver.Set(constString(fr.chunk, instr.Value()), val)
		vm.push(val)
	case bytecode.OpGetIndex:
		idx := vm.pop()
		receiver := vm.pop()
		vm.push(receiver.GetIndex(idx))
	case bytecode.OpSetIndex:
		val := vm.pop()
		idx := vm.pop()
		receiver := vm.pop()
		receiver.SetIndex(idx, val)
		vm.push(val)

	case bytecode.OpAdd:
		b, a := vm.pop(), vm.pop()
		vm.push(opAdd(a, b))
	case bytecode.OpSub:
		b, a := vm.pop(), vm.pop()
		vm.push(opSub(a, b))
	case bytecode.OpMul:
		b, a := vm.pop(), vm.pop()
		vm.push(opMul(a, b))
	case bytecode.OpDiv:
		b, a := vm.pop(), vm.pop()
		vm.push(opDiv(a, b))
	case bytecode.OpMod:
		b, a := vm.pop(), vm.pop()
		vm.push(opMod(a, b))
	case bytecode.OpNeg:
		vm.push(opNeg(vm.pop()))
	case bytecode.OpNot:
		vm.push(opNot(vm.pop()))
	case bytecode.OpBitAnd:
		b, a := vm.pop(), vm.pop()
		vm.push(opBitAnd(a, b))
	case bytecode.OpBitOr:
		b, a := vm.pop(), vm.pop()
		vm.push(opBitOr(a, b))
	case bytecode.OpBitXor:
		b, a := vm.pop(), vm.pop()
		vm.push(opBitXor(a, b))
	case bytecode.OpEq:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Bool(a.Equals(b)))
	case bytecode.OpNeq:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Bool(!a.Equals(b)))
	case bytecode.OpLt:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Bool(opLt(a, b)))
	case bytecode.OpLte:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Bool(opLte(a, b)))
	case bytecode.OpGt:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Bool(opGt(a, b)))
	case bytecode.OpGte:
		b, a := vm.pop(), vm.pop()
		vm.push(value.Bool(opGte(a, b)))

	case bytecode.OpJump:
		fr.ip = instr.Value()
	case bytecode.OpJumpIfFalse:
		if !vm.pop().ToBoolean() {
			fr.ip = instr.Value()
		}
	case bytecode.OpJumpIfTrue:
		if vm.pop().ToBoolean() {
			fr.ip = instr.Value()
		}

	case bytecode.OpEnterTry:
		vm.handlers = append(vm.handlers, handlerEntry{
			frameIndex:  len(vm.frames) - 1,
			stackBase:   len(vm.stack),
			finallyBase: len(vm.finallyReturns),
			target:      instr.Value(),
		})
	case bytecode.OpLeaveTry:
		if len(vm.handlers) > 0 {
			vm.handlers = vm.handlers[:len(vm.handlers)-1]
		}
	case bytecode.OpThrow:
		raw := vm.pop()
		return vm.throw(fr, raw)
	case bytecode.OpEnterFinally:
		vm.finallyReturns = append(vm.finallyReturns, instr.Value())
	case bytecode.OpLeaveFinally:
		n := len(vm.finallyReturns)
		if n == 0 {
			return true, value.Null(), vm.runtimeFault("LeaveFinally without matching EnterFinally")
		}
		fr.ip = vm.finallyReturns[n-1]
		vm.finallyReturns = vm.finallyReturns[:n-1]

	case bytecode.OpCall:
		args := vm.popN(instr.Value())
		callee := vm.pop()
		if callErr := vm.call(callee, value.Null(), args); callErr != nil {
			return vm.propagate(fr, callErr)
		}
	case bytecode.OpCallMethod:
		args := vm.popN(instr.Value())
		callee := vm.pop()
		receiver := vm.pop()
		if callErr := vm.call(callee, receiver, args); callErr != nil {
			return vm.propagate(fr, callErr)
		}
	case bytecode.OpApply:
		argList := vm.pop()
		receiver := vm.pop()
		callee := vm.pop()
		if callErr := vm.apply(callee, receiver, argList); callErr != nil {
			return vm.propagate(fr, callErr)
		}
	case bytecode.OpReturn:
		res := vm.pop()
		vm.popFrame()
		if len(vm.frames) == floor {
			return true, res, nil
		}
		vm.push(res)

	case bytecode.OpExport:
		val := vm.pop()
		if fr.module != nil && fr.module.Exports != nil {
			fr.module.Exports.SetRawStr(constString(fr.chunk, instr.Value()), val)
		}

	default:
		return true, value.Null(), vm.runtimeFault("unimplemented opcode %s", instr.Op())
	}

	return false, value.Value{}, nil
}

func localAt(fr *callFrame, idx int) value.Value {
	if idx < 0 || idx >= len(fr.locals) {
		return value.Null()
	}
	return fr.locals[idx]
}

func constValue(chunk *bytecode.Chunk, idx int) value.Value {
	if idx < 0 || idx >= len(chunk.Data) {
		return value.Null()
	}
	switch v := chunk.Data[idx].(type) {
	case float64:
		return value.Number(v)
	case string:
		return value.String(v)
	case value.Value:
		return v
	default:
		return value.Null()
	}
}

func constString(chunk *bytecode.Chunk, idx int) string {
	if idx < 0 || idx >= len(chunk.Data) {
		return ""
	}
	if s, ok := chunk.Data[idx].(string); ok {
		return s
	}
	return ""
}

func globalAt(chunk *bytecode.Chunk, idx int) value.Value {
	if chunk.Globals == nil || idx < 0 || idx >= len(*chunk.Globals) {
		return value.Null()
	}
	switch v := (*chunk.Globals)[idx].(type) {
	case value.Value:
		return v
	default:
		return value.Null()
	}
}

func setGlobal(chunk *bytecode.Chunk, idx int, v value.Value) {
	if chunk.Globals == nil || idx < 0 {
		return
	}
	for len(*chunk.Globals) <= idx {
		*chunk.Globals = append(*chunk.Globals, value.Null())
	}
	(*chunk.Globals)[idx] = v
}

func makeFunction(fr *callFrame, idx int) value.Value {
	if idx < 0 || idx >= len(fr.chunk.FunctionTable) {
		return value.Null()
	}
	sub := fr.chunk.FunctionTable[idx]
	return value.FromFunction(&value.Function{
		Name:    sub.Name,
		Params:  sub.Params,
		HasRest: sub.HasRest,
		Chunk:   sub,
		Closure: fr.closure,
	})
}
