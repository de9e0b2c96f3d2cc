package value

import "github.com/altolang/alto/internal/bytecode"

// ClosureFrame is one link of the closure chain: a dense array of
// captured cells plus a pointer to the enclosing closure frame active
// when the function literal was created.
type ClosureFrame struct {
	Cells  []Value
	Parent *ClosureFrame
}

// Cell returns the value captured at (depth, index) by walking depth hops
// up the chain from f, matching the VM's (depth, index) variable
// addressing for StorageClosure slots.
func (f *ClosureFrame) Cell(depth, index int) Value {
	cur := f
	for ; depth > 0 && cur != nil; depth-- {
		cur = cur.Parent
	}
	if cur == nil || index < 0 || index >= len(cur.Cells) {
		return Null()
	}
	return cur.Cells[index]
}

func (f *ClosureFrame) SetCell(depth, index int, v Value) bool {
	cur := f
	for ; depth > 0 && cur != nil; depth-- {
		cur = cur.Parent
	}
	if cur == nil || index < 0 || index >= len(cur.Cells) {
		return false
	}
	cur.Cells[index] = v
	return true
}

// NativeFunc is a host-provided function body: given `this` and the
// call arguments, it returns either a result or a thrown Exception.
type NativeFunc func(this Value, args []Value) (Value, *Exception)

// Function is Alto's callable value: either bytecode-bodied (Chunk/Entry
// name the compiled section, Closure the chain captured at creation time)
// or host-native (Native is set and Chunk is nil). BoundThis is set on the
// Function produced by the function prototype's `bind` method, so a later
// Call uses the bound receiver even if the resulting Function value is
// passed around and invoked standalone.
type Function struct {
	Name    string
	Params  []string
	HasRest bool

	Chunk   *bytecode.Chunk
	Entry   int
	Closure *ClosureFrame

	Native NativeFunc

	BoundThis *Value
}

// Import is the runtime value produced once a module's import has been
// resolved: a read-through proxy onto the target module's exports
// table. Target is nil for an import whose slot is still unresolved; the
// module loader is responsible for raising ImportUnresolved in that case,
// not this package.
type Import struct {
	Path   string
	Target *Table
}

// Property is a bound accessor associated with a Table entry: storing a
// Property as a table value turns reads/writes of that key into calls to
// Get/Set instead of returning the Property value itself. A nil Get falls
// back to the plain Value; a nil Set makes the property read-only. The
// Property itself is never observable through member access; Get/Set
// unwrap it before anything reaches script code.
type Property struct {
	Get   func(receiver Value) Value
	Set   func(receiver Value, v Value) bool
	Value Value
}

// Exception is the runtime-visible value a `throw` raises and a `catch`
// intercepts; distinct from the Go-level CompilerError/RuntimeFault
// types, which never reach script code.
type Exception struct {
	Message string
	Payload Value
	Stack   []string
}

func NewException(message string) *Exception {
	return &Exception{Message: message, Payload: Null()}
}

func (e *Exception) WithStackFrame(frame string) *Exception {
	e.Stack = append(e.Stack, frame)
	return e
}
