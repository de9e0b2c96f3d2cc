// Package value implements Alto's dynamic value model: a tagged
// union over Null, Boolean, Number, String, List, Table, Function, Import,
// Property and Exception, plus the handful of operations every kind
// supports (to_boolean, to_number, equals, structural hashing, and the
// get/set/call/apply member-access protocol with null-chain navigation and
// prototype dispatch).
package value

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
)

// Kind discriminates the tagged union. Zero value is Null, so a
// zero-initialized Value is already the correct null value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindList
	KindTable
	KindFunction
	KindImport
	KindProperty
	KindException
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindTable:
		return "table"
	case KindFunction:
		return "function"
	case KindImport:
		return "import"
	case KindProperty:
		return "property"
	case KindException:
		return "exception"
	default:
		return "unknown"
	}
}

// Value is Alto's runtime value: small enough to pass by copy, with
// reference kinds (List/Table/Function/Import/Property/Exception) holding
// a pointer to their shared backing object.
type Value struct {
	kind Kind

	b bool
	n float64
	s string

	list *List
	tbl  *Table
	fn   *Function
	imp  *Import
	prop *Property
	exc  *Exception
}

// Null is the single null value; the zero Value already equals it, this is
// just the readable spelling.
func Null() Value { return Value{kind: KindNull} }

func Bool(b bool) Value   { return Value{kind: KindBoolean, b: b} }
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }
func String(s string) Value  { return Value{kind: KindString, s: s} }

func FromList(l *List) Value           { return Value{kind: KindList, list: l} }
func FromTable(t *Table) Value         { return Value{kind: KindTable, tbl: t} }
func FromFunction(fn *Function) Value  { return Value{kind: KindFunction, fn: fn} }
func FromImport(imp *Import) Value     { return Value{kind: KindImport, imp: imp} }
func FromProperty(p *Property) Value   { return Value{kind: KindProperty, prop: p} }
func FromException(e *Exception) Value { return Value{kind: KindException, exc: e} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsBoolean() bool   { return v.kind == KindBoolean }
func (v Value) IsNumber() bool    { return v.kind == KindNumber }
func (v Value) IsString() bool    { return v.kind == KindString }
func (v Value) IsList() bool      { return v.kind == KindList }
func (v Value) IsTable() bool     { return v.kind == KindTable }
func (v Value) IsFunction() bool  { return v.kind == KindFunction }
func (v Value) IsImport() bool    { return v.kind == KindImport }
func (v Value) IsProperty() bool  { return v.kind == KindProperty }
func (v Value) IsException() bool { return v.kind == KindException }

// AsBool, AsNumber, AsString and the reference-kind accessors return the
// zero value for the Go type when v is not of that kind, mirroring
// jsonvalue's kind-gated getters rather than panicking.
func (v Value) AsBool() bool {
	if v.kind != KindBoolean {
		return false
	}
	return v.b
}

func (v Value) AsNumber() float64 {
	if v.kind != KindNumber {
		return 0
	}
	return v.n
}

func (v Value) AsString() string {
	if v.kind != KindString {
		return ""
	}
	return v.s
}

func (v Value) AsList() *List { return v.list }
func (v Value) AsTable() *Table { return v.tbl }
func (v Value) AsFunction() *Function { return v.fn }
func (v Value) AsImport() *Import { return v.imp }
func (v Value) AsProperty() *Property { return v.prop }
func (v Value) AsException() *Exception { return v.exc }

// ToBoolean implements to_boolean: Null is false, Boolean passes
// through, Number is false only for zero and NaN (`n<0 || 0<n`), and every
// other kind (including the empty string) is true. Unlike many
// JavaScript-shaped languages, Alto's empty string is truthy; only Number
// gets a magnitude-based falsy rule.
func (v Value) ToBoolean() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBoolean:
		return v.b
	case KindNumber:
		return v.n < 0 || 0 < v.n
	default:
		return true
	}
}

// ToNumber implements to_number: a Number converts to itself;
// everything else, including Boolean and numeric-looking strings,
// converts to NaN. Arithmetic on a non-Number then naturally propagates
// NaN rather than silently coercing.
func (v Value) ToNumber() float64 {
	if v.kind == KindNumber {
		return v.n
	}
	return math.NaN()
}

// Equals implements `==`: strict by kind, and NaN never equals
// anything including itself (standard IEEE-754 float comparison).
func (v Value) Equals(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBoolean:
		return v.b == other.b
	case KindNumber:
		return v.n == other.n
	case KindString:
		return v.s == other.s
	case KindList:
		return v.list == other.list
	case KindTable:
		return v.tbl == other.tbl
	case KindFunction:
		return v.fn == other.fn
	case KindImport:
		return v.imp == other.imp
	case KindProperty:
		return v.prop == other.prop
	case KindException:
		return v.exc == other.exc
	default:
		return false
	}
}

// StructuralEquals implements the structural equality used for Table key
// comparison and hashing consistency: unlike Equals (`==`),
// NaN is structurally equal to itself, so a NaN key reliably finds itself
// again on a later lookup even though `nan == nan` remains false.
func (v Value) StructuralEquals(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	if v.kind == KindNumber {
		if math.IsNaN(v.n) && math.IsNaN(other.n) {
			return true
		}
	}
	return v.Equals(other)
}

// StructuralHash implements structural_hash: used when a Value is
// used as a Table key. Reference kinds hash by identity; NaN is
// canonicalized to a single bit pattern so every NaN hashes the same way,
// and -0 hashes like +0 (SameValueZero, the same rule JS Map uses for
// keys) even though
// Equals still reports NaN != NaN for `==`.
func (v Value) StructuralHash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	switch v.kind {
	case KindNull:
		h.Write([]byte{0})
	case KindBoolean:
		if v.b {
			h.Write([]byte{1, 1})
		} else {
			h.Write([]byte{1, 0})
		}
	case KindNumber:
		bits := math.Float64bits(v.n)
		if math.IsNaN(v.n) {
			bits = 0x7ff8000000000000
		} else if v.n == 0 {
			bits = 0
		}
		binary.BigEndian.PutUint64(buf[:], bits)
		h.Write([]byte{2})
		h.Write(buf[:])
	case KindString:
		h.Write([]byte{3})
		h.Write([]byte(v.s))
	case KindList:
		fmt.Fprintf(h, "4:%p", v.list)
	case KindTable:
		fmt.Fprintf(h, "5:%p", v.tbl)
	case KindFunction:
		fmt.Fprintf(h, "6:%p", v.fn)
	case KindImport:
		fmt.Fprintf(h, "7:%p", v.imp)
	case KindProperty:
		fmt.Fprintf(h, "8:%p", v.prop)
	case KindException:
		fmt.Fprintf(h, "9:%p", v.exc)
	}
	return h.Sum64()
}

// TypeName reports the name a running program would see from a
// `typeof`-style introspection built on top of Kind.
func (v Value) TypeName() string { return v.kind.String() }
