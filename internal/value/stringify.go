package value

import (
	"math"
	"strconv"
	"strings"
)

// Stringify is type-driven, with a
// fall-through to a prototype (or own-table) `toString` method when one is
// present; the same lookup `Get` uses for ordinary member access, so a
// Table that assigns a `toString` function to itself overrides how
// `String(t)` renders it.
func Stringify(v Value) string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBoolean:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.n)
	case KindString:
		return v.s
	case KindList:
		return stringifyList(v)
	case KindTable:
		if fn := lookupToString(v); !fn.IsNull() {
			result, exc := fn.Apply(v, nil)
			if exc != nil {
				return "[Exception " + exc.Message + "]"
			}
			return Stringify(result)
		}
		return stringifyTable(v)
	case KindFunction:
		name := ""
		if v.fn != nil {
			name = v.fn.Name
		}
		if name == "" {
			return "[Function]"
		}
		return "[Function " + name + "]"
	case KindImport:
		path := ""
		if v.imp != nil {
			path = v.imp.Path
		}
		return "[Import " + path + "]"
	case KindProperty:
		return "[Property]"
	case KindException:
		if v.exc != nil {
			return v.exc.Message
		}
		return "[Exception]"
	default:
		return "null"
	}
}

// lookupToString finds an overriding `toString` member, checking the
// table's own entries (and its prototype chain) but never falling back to
// a host-installed default (there is none for Table).
func lookupToString(v Value) Value {
	if v.tbl == nil {
		return Null()
	}
	fn := getFromTable(v, v.tbl, String("toString"))
	if fn.IsFunction() {
		return fn
	}
	return Null()
}

func stringifyList(v Value) string {
	if v.list == nil {
		return "[]"
	}
	parts := make([]string, len(v.list.Elements))
	for i, e := range v.list.Elements {
		parts[i] = Stringify(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func stringifyTable(v Value) string {
	if v.tbl == nil || v.tbl.Len() == 0 {
		return "{}"
	}
	keys := v.tbl.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		raw, _ := v.tbl.Raw(k)
		if raw.kind == KindProperty {
			raw = getFromTable(v, v.tbl, k)
		}
		label := Stringify(k)
		if k.kind != KindString {
			label = "[" + label + "]"
		}
		parts = append(parts, label+": "+Stringify(raw))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// formatNumber renders a float64 the way user-facing output wants it:
// integral values print without a trailing ".0", everything else uses the
// shortest round-trippable decimal form.
func formatNumber(n float64) string {
	if n != n {
		return "NaN"
	}
	if math.IsInf(n, 1) {
		return "Infinity"
	}
	if math.IsInf(n, -1) {
		return "-Infinity"
	}
	if n == float64(int64(n)) && n < 1e15 && n > -1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
