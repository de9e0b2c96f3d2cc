package value

// tableEntry is one (key, value) pair stored on a Table, keyed by an
// arbitrary Value rather than a string: table keys compare by structural
// Equals, and Null is a permitted key.
type tableEntry struct {
	key   Value
	value Value
}

// Table is Alto's object/map value: an insertion-ordered dictionary keyed
// by arbitrary Values (compared via StructuralHash/StructuralEquals, the
// same rule Table keys use for hashing) with an optional prototype for
// member-lookup fallthrough. Dotted member access
// (`a.b`) and the common case of string-literal table-literal keys both
// simply use a String Value as the key.
type Table struct {
	entries []tableEntry
	index   map[uint64][]int
	Proto   *Table
}

func NewTable() *Table {
	return &Table{index: make(map[uint64][]int)}
}

func (t *Table) find(key Value) int {
	if t == nil {
		return -1
	}
	h := key.StructuralHash()
	for _, i := range t.index[h] {
		if t.entries[i].key.StructuralEquals(key) {
			return i
		}
	}
	return -1
}

// Raw returns the entry stored directly on t (not falling through Proto,
// and not unwrapping a Property), reporting whether key is present.
func (t *Table) Raw(key Value) (Value, bool) {
	i := t.find(key)
	if i < 0 {
		return Null(), false
	}
	return t.entries[i].value, true
}

// RawStr is a convenience wrapper for the common case of a string key
// (dotted member access, bareword table-literal keys, export names).
func (t *Table) RawStr(key string) (Value, bool) { return t.Raw(String(key)) }

// SetRaw stores value directly under key, preserving insertion order for a
// new key.
func (t *Table) SetRaw(key, v Value) {
	if t == nil {
		return
	}
	if i := t.find(key); i >= 0 {
		t.entries[i].value = v
		return
	}
	if t.index == nil {
		t.index = make(map[uint64][]int)
	}
	idx := len(t.entries)
	t.entries = append(t.entries, tableEntry{key: key, value: v})
	h := key.StructuralHash()
	t.index[h] = append(t.index[h], idx)
}

func (t *Table) SetRawStr(key string, v Value) { t.SetRaw(String(key), v) }

// Delete removes key if present, reporting whether it was removed.
func (t *Table) Delete(key Value) bool {
	i := t.find(key)
	if i < 0 {
		return false
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	t.rebuildIndex()
	return true
}

func (t *Table) rebuildIndex() {
	t.index = make(map[uint64][]int)
	for i, e := range t.entries {
		h := e.key.StructuralHash()
		t.index[h] = append(t.index[h], i)
	}
}

// Keys returns t's own keys in insertion order (Proto keys are not
// included, matching how `for key in table` iteration should behave).
func (t *Table) Keys() []Value {
	if t == nil {
		return nil
	}
	out := make([]Value, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.key
	}
	return out
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// List is Alto's array value.
type List struct {
	Elements []Value
}

func NewList(elems []Value) *List {
	return &List{Elements: elems}
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Elements)
}

func (l *List) Get(i int) Value {
	if l == nil || i < 0 || i >= len(l.Elements) {
		return Null()
	}
	return l.Elements[i]
}

func (l *List) Set(i int, v Value) bool {
	if l == nil || i < 0 || i >= len(l.Elements) {
		return false
	}
	l.Elements[i] = v
	return true
}

func (l *List) Push(v Value) {
	l.Elements = append(l.Elements, v)
}
