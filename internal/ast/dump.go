package ast

import (
	"fmt"
	"reflect"
	"strings"
)

// Dump renders n as an indented tree for debugging (cmd/alto run
// --dump-ast): one line per node naming its Go type, recursing into any
// field that is itself a Node, a slice of Nodes, or a pointer to one.
// Position and resolver-only bookkeeping (Slot, Scope) are omitted; they
// clutter a source-level reading of the tree and have their own
// disassembly-adjacent representation once slots are assigned.
func Dump(n Node) string {
	var sb strings.Builder
	dumpNode(&sb, reflect.ValueOf(n), 0)
	return sb.String()
}

func dumpNode(sb *strings.Builder, v reflect.Value, depth int) {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}

	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%s%s\n", indent, v.Type().Name())

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		switch field.Name {
		case "Base", "Slot", "Scope":
			continue
		}
		fv := v.Field(i)
		dumpField(sb, field.Name, fv, depth+1)
	}
}

func dumpField(sb *strings.Builder, name string, v reflect.Value, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v.Kind() {
	case reflect.Slice:
		if v.Len() == 0 {
			return
		}
		fmt.Fprintf(sb, "%s%s:\n", indent, name)
		for i := 0; i < v.Len(); i++ {
			elem := v.Index(i)
			if isNodeLike(elem) {
				dumpNode(sb, elem, depth+1)
			} else {
				fmt.Fprintf(sb, "%s  %v\n", indent, elem.Interface())
			}
		}
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return
		}
		if isNodeLike(v) {
			fmt.Fprintf(sb, "%s%s:\n", indent, name)
			dumpNode(sb, v, depth+1)
			return
		}
		fmt.Fprintf(sb, "%s%s: %v\n", indent, name, v.Elem().Interface())
	case reflect.Struct:
		if isNodeLike(v) {
			fmt.Fprintf(sb, "%s%s:\n", indent, name)
			dumpNode(sb, v, depth+1)
			return
		}
		fmt.Fprintf(sb, "%s%s: %+v\n", indent, name, v.Interface())
	default:
		fmt.Fprintf(sb, "%s%s: %v\n", indent, name, v.Interface())
	}
}

var nodeType = reflect.TypeOf((*Node)(nil)).Elem()

func isNodeLike(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}
	t := v.Type()
	if t.Implements(nodeType) {
		return true
	}
	return reflect.PtrTo(t).Implements(nodeType)
}
