// Package hostlib implements the reference host collaborators: Console,
// Math, String prototype methods, and a filesystem-backed module loader.
// It exists so cmd/alto run and the fixture corpus have something
// observable to drive the value model, parser, resolver, emitter and VM
// with. Casing and normalization are Unicode-aware rather than byte-wise
// ASCII conversion, since UTF-8 strings can have multi-byte characters.
package hostlib

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/altolang/alto/internal/value"
)

// InstallStringPrototype builds and installs value.StringProto: the method
// set every String value falls through to via prototype dispatch once
// `.length` (handled directly in value.Get, not here) has already been
// ruled out.
func InstallStringPrototype() {
	t := value.NewTable()
	method(t, "toUpperCase", func(this value.Value, _ []value.Value) (value.Value, *value.Exception) {
		return value.String(cases.Upper(language.Und).String(this.AsString())), nil
	})
	method(t, "toLowerCase", func(this value.Value, _ []value.Value) (value.Value, *value.Exception) {
		return value.String(cases.Lower(language.Und).String(this.AsString())), nil
	})
	method(t, "normalize", func(this value.Value, _ []value.Value) (value.Value, *value.Exception) {
		return value.String(norm.NFC.String(this.AsString())), nil
	})
	method(t, "trim", func(this value.Value, _ []value.Value) (value.Value, *value.Exception) {
		return value.String(strings.TrimSpace(this.AsString())), nil
	})
	method(t, "charAt", func(this value.Value, args []value.Value) (value.Value, *value.Exception) {
		runes := []rune(this.AsString())
		i := int(argNumber(args, 0))
		if i < 0 || i >= len(runes) {
			return value.String(""), nil
		}
		return value.String(string(runes[i])), nil
	})
	method(t, "sub", func(this value.Value, args []value.Value) (value.Value, *value.Exception) {
		return value.String(runeSubstr(this.AsString(), int(argNumber(args, 0)), int(argNumber(args, 1)))), nil
	})
	method(t, "indexOf", func(this value.Value, args []value.Value) (value.Value, *value.Exception) {
		needle := argString(args, 0)
		runes := []rune(this.AsString())
		needleRunes := []rune(needle)
		for i := 0; i+len(needleRunes) <= len(runes); i++ {
			if string(runes[i:i+len(needleRunes)]) == needle {
				return value.Number(float64(i)), nil
			}
		}
		return value.Number(-1), nil
	})
	method(t, "split", func(this value.Value, args []value.Value) (value.Value, *value.Exception) {
		sep := argString(args, 0)
		var parts []string
		if sep == "" {
			for _, r := range this.AsString() {
				parts = append(parts, string(r))
			}
		} else {
			parts = strings.Split(this.AsString(), sep)
		}
		elems := make([]value.Value, len(parts))
		for i, p := range parts {
			elems[i] = value.String(p)
		}
		return value.FromList(value.NewList(elems)), nil
	})
	method(t, "toString", func(this value.Value, _ []value.Value) (value.Value, *value.Exception) {
		return this, nil
	})
	value.StringProto = t
}

// runeSubstr returns count runes of s starting at the 0-based position
// start, clamped to s's bounds.
func runeSubstr(s string, start, count int) string {
	runes := []rune(s)
	if start < 0 {
		start = 0
	}
	if start >= len(runes) || count <= 0 {
		return ""
	}
	end := start + count
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start:end])
}

func method(t *value.Table, name string, fn value.NativeFunc) {
	t.SetRawStr(name, value.FromFunction(&value.Function{Name: name, Native: fn}))
}

func argNumber(args []value.Value, i int) float64 {
	if i < 0 || i >= len(args) {
		return 0
	}
	return args[i].ToNumber()
}

func argString(args []value.Value, i int) string {
	if i < 0 || i >= len(args) {
		return ""
	}
	return args[i].AsString()
}
