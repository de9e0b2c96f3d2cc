package hostlib

import (
	"math"
	"math/rand"

	"github.com/altolang/alto/internal/value"
)

// Math builds the `import math from 'math'` module: thin wrappers over the
// standard math package, exposed as a plain Table of Functions rather than
// a prototype, since Number already dispatches `.length`-shaped intrinsics
// through value.NumberProto and these are free functions, not methods.
func Math() *value.Table {
	t := value.NewTable()
	unary(t, "abs", math.Abs)
	unary(t, "floor", math.Floor)
	unary(t, "ceil", math.Ceil)
	unary(t, "round", math.Round)
	unary(t, "sqrt", math.Sqrt)
	unary(t, "sin", math.Sin)
	unary(t, "cos", math.Cos)
	unary(t, "log", math.Log)
	t.SetRawStr("pi", value.Number(math.Pi))
	method(t, "pow", func(_ value.Value, args []value.Value) (value.Value, *value.Exception) {
		return value.Number(math.Pow(argNumber(args, 0), argNumber(args, 1))), nil
	})
	method(t, "min", func(_ value.Value, args []value.Value) (value.Value, *value.Exception) {
		return value.Number(reduce(args, math.Min, math.Inf(1))), nil
	})
	method(t, "max", func(_ value.Value, args []value.Value) (value.Value, *value.Exception) {
		return value.Number(reduce(args, math.Max, math.Inf(-1))), nil
	})
	method(t, "random", func(_ value.Value, _ []value.Value) (value.Value, *value.Exception) {
		return value.Number(rand.Float64()), nil
	})
	return t
}

func unary(t *value.Table, name string, fn func(float64) float64) {
	method(t, name, func(_ value.Value, args []value.Value) (value.Value, *value.Exception) {
		return value.Number(fn(argNumber(args, 0))), nil
	})
}

func reduce(args []value.Value, fn func(a, b float64) float64, seed float64) float64 {
	acc := seed
	for _, a := range args {
		acc = fn(acc, a.ToNumber())
	}
	return acc
}
