package vm

import (
	"math"

	"github.com/altolang/alto/internal/value"
)

// numericBinOp implements the arithmetic/bitwise instruction group:
// every one of them operates over to_number, never over a value's own
// kind; so `"3" + 4` is NaN, not string concatenation or 7. This is a
// deliberate divergence from the usual dynamic-language `+` overload:
// Alto's `+` is pure arithmetic, and string-building goes through
// String's own prototype methods instead.
func numericBinOp(op func(a, b float64) float64, a, b value.Value) value.Value {
	return value.Number(op(a.ToNumber(), b.ToNumber()))
}

func opAdd(a, b value.Value) value.Value { return numericBinOp(func(x, y float64) float64 { return x + y }, a, b) }
func opSub(a, b value.Value) value.Value { return numericBinOp(func(x, y float64) float64 { return x - y }, a, b) }
func opMul(a, b value.Value) value.Value { return numericBinOp(func(x, y float64) float64 { return x * y }, a, b) }
func opDiv(a, b value.Value) value.Value { return numericBinOp(func(x, y float64) float64 { return x / y }, a, b) }
func opMod(a, b value.Value) value.Value {
	return numericBinOp(func(x, y float64) float64 { return math.Mod(x, y) }, a, b)
}

func opNeg(a value.Value) value.Value { return value.Number(-a.ToNumber()) }

func opNot(a value.Value) value.Value { return value.Bool(!a.ToBoolean()) }

// toInt32 truncates a to_number result to a bitwise operand, treating NaN
// and infinities as 0 (there being no well-defined bit pattern for either).
func toInt32(v value.Value) int64 {
	n := v.ToNumber()
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return int64(n)
}

func opBitAnd(a, b value.Value) value.Value { return value.Number(float64(toInt32(a) & toInt32(b))) }
func opBitOr(a, b value.Value) value.Value  { return value.Number(float64(toInt32(a) | toInt32(b))) }
func opBitXor(a, b value.Value) value.Value { return value.Number(float64(toInt32(a) ^ toInt32(b))) }

// opLt, opLte, opGt and opGte implement the Less-family: false whenever either operand
// isn't a Number, which falls out for free since ToNumber yields NaN for
// every non-Number kind and every NaN comparison is false in IEEE-754.
func opLt(a, b value.Value) bool  { return a.ToNumber() < b.ToNumber() }
func opLte(a, b value.Value) bool { return a.ToNumber() <= b.ToNumber() }
func opGt(a, b value.Value) bool  { return a.ToNumber() > b.ToNumber() }
func opGte(a, b value.Value) bool { return a.ToNumber() >= b.ToNumber() }
