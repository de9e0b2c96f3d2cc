package value

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Prototype tables for each non-container kind. They start nil (the core
// value model carries no host policy of its own) and are installed once by
// whatever assembles the running engine: internal/hostlib's reference
// String/Number/List prototypes, or a caller-supplied replacement.
var (
	StringProto    *Table
	NumberProto    *Table
	BooleanProto   *Table
	ListProto      *Table
	FunctionProto  *Table
	ExceptionProto *Table
)

// Get implements the get operation: member access on every kind,
// including null-chain navigation (reading a member of null yields null
// rather than faulting) and prototype fallthrough for kinds that aren't
// themselves Tables.
func (v Value) Get(key string) Value {
	switch v.kind {
	case KindNull:
		return Null()

	case KindTable:
		return getFromTable(v, v.tbl, String(key))

	case KindList:
		if key == "length" {
			return Number(float64(v.list.Len()))
		}
		return protoGet(ListProto, v, key)

	case KindString:
		if key == "length" {
			return Number(float64(utf8.RuneCountInString(v.s)))
		}
		return protoGet(StringProto, v, key)

	case KindNumber:
		return protoGet(NumberProto, v, key)

	case KindBoolean:
		return protoGet(BooleanProto, v, key)

	case KindFunction:
		if v.fn != nil {
			switch key {
			case "name":
				return String(v.fn.Name)
			case "length":
				return Number(float64(len(v.fn.Params)))
			}
		}
		return protoGet(FunctionProto, v, key)

	case KindImport:
		if v.imp == nil || v.imp.Target == nil {
			return Null()
		}
		return getFromTable(v, v.imp.Target, String(key))

	case KindException:
		if v.exc != nil {
			switch key {
			case "message":
				return String(v.exc.Message)
			case "value", "payload":
				// "value" is the property name the language surface uses
				// for the original thrown operand; "payload" is kept as
				// an alias for callers that prefer the internal name.
				return v.exc.Payload
			case "stack":
				return String(strings.Join(v.exc.Stack, "\n"))
			}
		}
		return protoGet(ExceptionProto, v, key)

	default:
		return Null()
	}
}

func getFromTable(receiver Value, t *Table, key Value) Value {
	for cur := t; cur != nil; cur = cur.Proto {
		if raw, ok := cur.Raw(key); ok {
			if raw.kind == KindProperty {
				if raw.prop == nil {
					return Null()
				}
				if raw.prop.Get != nil {
					return raw.prop.Get(receiver)
				}
				return raw.prop.Value
			}
			return raw
		}
	}
	return Null()
}

func protoGet(proto *Table, receiver Value, key string) Value {
	if proto == nil {
		return Null()
	}
	return getFromTable(receiver, proto, String(key))
}

// Set implements the set operation. Only Table and Import targets
// are assignable; every other kind reports false, which the emitter/VM
// surface as a silent no-op. Member assignment on non-object values never
// faults; arithmetic and comparisons are where type mismatches surface.
func (v Value) Set(key string, val Value) bool {
	switch v.kind {
	case KindTable:
		return setTableKey(v.tbl, String(key), val)

	case KindImport:
		if v.imp == nil || v.imp.Target == nil {
			return false
		}
		v.imp.Target.SetRawStr(key, val)
		return true

	default:
		return false
	}
}

// setTableKey implements the shared Table-write semantics used by both
// dotted assignment (Set) and bracket assignment (SetIndex): an existing
// Property is invoked (its setter, if any, or silently dropped), anything
// else is a plain overwrite.
func setTableKey(t *Table, key, val Value) bool {
	if t == nil {
		return false
	}
	if raw, ok := t.Raw(key); ok && raw.kind == KindProperty {
		if raw.prop == nil || raw.prop.Set == nil {
			return true
		}
		return raw.prop.Set(FromTable(t), val)
	}
	t.SetRaw(key, val)
	return true
}

// Call invokes v with no bound receiver. Apply invokes it with an explicit
// `this`. Both only actually execute Native functions here: a
// bytecode-bodied Function must be invoked by the VM, which pushes a new
// interpreter frame using Chunk/Entry/Closure directly; these methods
// exist so native code (e.g. a host List.forEach) can call back into a
// user-supplied native callback without reaching into the VM.
func (v Value) Call(args []Value) (Value, *Exception) {
	return v.Apply(Null(), args)
}

func (v Value) Apply(this Value, args []Value) (Value, *Exception) {
	if v.kind != KindFunction || v.fn == nil {
		return Null(), NewException(fmt.Sprintf("%s is not callable", v.kind))
	}
	if v.fn.BoundThis != nil {
		this = *v.fn.BoundThis
	}
	if v.fn.Native != nil {
		return v.fn.Native(this, args)
	}
	return Null(), NewException("function has a bytecode body and must be invoked through the VM")
}
