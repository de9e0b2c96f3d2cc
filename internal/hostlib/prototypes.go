package hostlib

import (
	"strconv"

	"github.com/altolang/alto/internal/value"
)

// InstallListPrototype builds and installs value.ListProto: the methods
// every List falls through to via prototype dispatch once `.length`
// (handled directly in value.Get) has already been ruled out.
func InstallListPrototype() {
	t := value.NewTable()
	method(t, "push", func(this value.Value, args []value.Value) (value.Value, *value.Exception) {
		l := this.AsList()
		if l == nil {
			return value.Null(), nil
		}
		for _, a := range args {
			l.Push(a)
		}
		return value.Number(float64(l.Len())), nil
	})
	method(t, "pop", func(this value.Value, _ []value.Value) (value.Value, *value.Exception) {
		l := this.AsList()
		if l == nil || l.Len() == 0 {
			return value.Null(), nil
		}
		v := l.Elements[l.Len()-1]
		l.Elements = l.Elements[:l.Len()-1]
		return v, nil
	})
	method(t, "indexOf", func(this value.Value, args []value.Value) (value.Value, *value.Exception) {
		l := this.AsList()
		if l == nil || len(args) == 0 {
			return value.Number(-1), nil
		}
		for i, e := range l.Elements {
			if e.Equals(args[0]) {
				return value.Number(float64(i)), nil
			}
		}
		return value.Number(-1), nil
	})
	method(t, "slice", func(this value.Value, args []value.Value) (value.Value, *value.Exception) {
		l := this.AsList()
		if l == nil {
			return value.FromList(value.NewList(nil)), nil
		}
		start, end := int(argNumber(args, 0)), l.Len()
		if len(args) > 1 {
			end = int(argNumber(args, 1))
		}
		if start < 0 {
			start = 0
		}
		if end > l.Len() {
			end = l.Len()
		}
		if start >= end {
			return value.FromList(value.NewList(nil)), nil
		}
		out := append([]value.Value{}, l.Elements[start:end]...)
		return value.FromList(value.NewList(out)), nil
	})
	method(t, "join", func(this value.Value, args []value.Value) (value.Value, *value.Exception) {
		l := this.AsList()
		sep := ","
		if len(args) > 0 {
			sep = argString(args, 0)
		}
		var sb []byte
		for i, e := range l.Elements {
			if i > 0 {
				sb = append(sb, sep...)
			}
			sb = append(sb, value.Stringify(e)...)
		}
		return value.String(string(sb)), nil
	})
	method(t, "forEach", func(this value.Value, args []value.Value) (value.Value, *value.Exception) {
		l := this.AsList()
		if l == nil || len(args) == 0 {
			return value.Null(), nil
		}
		fn := args[0]
		for i, e := range l.Elements {
			if _, exc := fn.Apply(value.Null(), []value.Value{e, value.Number(float64(i))}); exc != nil {
				return value.Null(), exc
			}
		}
		return value.Null(), nil
	})
	method(t, "map", func(this value.Value, args []value.Value) (value.Value, *value.Exception) {
		l := this.AsList()
		if l == nil || len(args) == 0 {
			return value.FromList(value.NewList(nil)), nil
		}
		fn := args[0]
		out := make([]value.Value, l.Len())
		for i, e := range l.Elements {
			r, exc := fn.Apply(value.Null(), []value.Value{e, value.Number(float64(i))})
			if exc != nil {
				return value.Null(), exc
			}
			out[i] = r
		}
		return value.FromList(value.NewList(out)), nil
	})
	method(t, "toString", func(this value.Value, _ []value.Value) (value.Value, *value.Exception) {
		return value.String(value.Stringify(this)), nil
	})
	value.ListProto = t
}

// InstallNumberPrototype builds and installs value.NumberProto.
func InstallNumberPrototype() {
	t := value.NewTable()
	method(t, "toFixed", func(this value.Value, args []value.Value) (value.Value, *value.Exception) {
		digits := int(argNumber(args, 0))
		return value.String(strconv.FormatFloat(this.AsNumber(), 'f', digits, 64)), nil
	})
	method(t, "toString", func(this value.Value, _ []value.Value) (value.Value, *value.Exception) {
		return value.String(value.Stringify(this)), nil
	})
	value.NumberProto = t
}

// InstallBooleanPrototype builds and installs value.BooleanProto.
func InstallBooleanPrototype() {
	t := value.NewTable()
	method(t, "toString", func(this value.Value, _ []value.Value) (value.Value, *value.Exception) {
		return value.String(value.Stringify(this)), nil
	})
	value.BooleanProto = t
}

// InstallFunctionPrototype builds and installs value.FunctionProto: `bind`
// mirrors JavaScript's Function.prototype.bind, producing a new Function
// whose BoundThis permanently overrides whatever receiver a later Call
// supplies.
func InstallFunctionPrototype() {
	t := value.NewTable()
	method(t, "bind", func(this value.Value, args []value.Value) (value.Value, *value.Exception) {
		fn := this.AsFunction()
		if fn == nil {
			return value.Null(), nil
		}
		bound := *fn
		receiver := value.Null()
		if len(args) > 0 {
			receiver = args[0]
		}
		bound.BoundThis = &receiver
		return value.FromFunction(&bound), nil
	})
	value.FunctionProto = t
}

// InstallExceptionPrototype builds and installs value.ExceptionProto.
func InstallExceptionPrototype() {
	t := value.NewTable()
	method(t, "toString", func(this value.Value, _ []value.Value) (value.Value, *value.Exception) {
		return value.String(value.Stringify(this)), nil
	})
	value.ExceptionProto = t
}

// InstallAll installs every reference prototype. cmd/alto and pkg/alto's
// default Engine call this once per process; a host that wants different
// string/list semantics can skip it and install its own tables instead.
func InstallAll() {
	InstallStringPrototype()
	InstallListPrototype()
	InstallNumberPrototype()
	InstallBooleanPrototype()
	InstallFunctionPrototype()
	InstallExceptionPrototype()
}
