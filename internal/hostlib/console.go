package hostlib

import (
	"fmt"
	"io"

	"github.com/altolang/alto/internal/value"
)

// Console builds the `import console from 'console'` module: print writes
// its arguments with no separator and no trailing newline; println joins
// them with single spaces and adds a newline.
// Output goes to an io.Writer the host controls.
func Console(out io.Writer) *value.Table {
	if out == nil {
		out = io.Discard
	}
	t := value.NewTable()
	method(t, "print", func(_ value.Value, args []value.Value) (value.Value, *value.Exception) {
		fmt.Fprint(out, joinStringify(args, ""))
		return value.Null(), nil
	})
	method(t, "println", func(_ value.Value, args []value.Value) (value.Value, *value.Exception) {
		fmt.Fprintln(out, joinStringify(args, " "))
		return value.Null(), nil
	})
	return t
}

func joinStringify(args []value.Value, sep string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += sep
		}
		out += value.Stringify(a)
	}
	return out
}
