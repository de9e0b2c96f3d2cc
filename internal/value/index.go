package value

// GetIndex implements bracket indexing (`x[i]`), distinct from Get's dotted
// member access: a List is indexed by a truncated Number, a Table by the
// key Value itself (structurally compared, so `t[1]` and `t["1"]` are
// distinct entries and `t[null]` is a valid, addressable key), and a
// String by rune position.
func (v Value) GetIndex(idx Value) Value {
	switch v.kind {
	case KindList:
		return v.list.Get(int(idx.ToNumber()))
	case KindTable:
		return getFromTable(v, v.tbl, idx)
	case KindString:
		runes := []rune(v.s)
		i := int(idx.ToNumber())
		if i < 0 || i >= len(runes) {
			return Null()
		}
		return String(string(runes[i]))
	default:
		return Null()
	}
}

// SetIndex implements bracket-index assignment. A List accepts an in-bounds
// index or exactly len(Elements) (append-by-assignment, the one form of
// growth index assignment supports; anything further out of range is
// silently rejected rather than sparsely padding the list). A Table accepts
// any Value as a key, structurally compared.
func (v Value) SetIndex(idx, val Value) bool {
	switch v.kind {
	case KindList:
		if v.list == nil {
			return false
		}
		i := int(idx.ToNumber())
		if i == v.list.Len() {
			v.list.Push(val)
			return true
		}
		return v.list.Set(i, val)
	case KindTable:
		return setTableKey(v.tbl, idx, val)
	default:
		return false
	}
}
