package ast

// ScopeKind distinguishes the three lexical scope shapes the resolver
// reasons about.
type ScopeKind int

const (
	FunctionScope ScopeKind = iota
	BlockScope
	LoopScope
)

// SlotKind classifies what declared the Slot.
type SlotKind int

const (
	SlotVariable SlotKind = iota
	SlotParameter
	SlotImport
)

// SlotSource records how a parameter slot's initial value is produced;
// zero value (SourceNone) applies to ordinary variables and imports.
type SlotSource int

const (
	SourceNone SlotSource = iota
	SourceArgument
	SourceArgumentSlice
)

// StorageKind is filled in by the resolver once it knows where a slot
// ultimately lives.
type StorageKind int

const (
	StorageUnresolved StorageKind = iota
	StorageGlobal
	StorageLocal
	StorageClosure
)

// Slot is the compile-time binding record for one declared name.
type Slot struct {
	Name           string
	DeclaringScope *Scope
	Kind           SlotKind
	Source         SlotSource
	SourceIndex    int // argument index when Source != SourceNone

	Storage      StorageKind
	Index        int // meaning depends on Storage: global/local/closure index
	ClosureScope *Scope // the scope whose closure layout this slot lives in, when Storage == StorageClosure

	ReadOnly bool
}

// Scope is a compile-time lexical scope.
type Scope struct {
	Kind  ScopeKind
	Outer *Scope
	Inner []*Scope

	Slots         []*Slot
	ClosureLayout []*Slot

	StackAllocation         int
	ContainsClosureRefs     bool

	// EnclosingFunction is this scope itself if Kind == FunctionScope,
	// otherwise the nearest FunctionScope ancestor. Used to compare
	// "declaring function" depth when marking captures.
	EnclosingFunction *Scope
	// FuncDepth is the nesting depth of EnclosingFunction, 0 at module
	// scope, incrementing once per nested function literal.
	FuncDepth int
}

// FuncScope is an alias used on AST nodes (FunctionLit.Scope,
// Program.Scope) to make clear that only a Kind==FunctionScope value is
// ever stored there.
type FuncScope = Scope

// NewScope creates a scope nested inside outer (outer may be nil for the
// module's implicit top scope).
func NewScope(kind ScopeKind, outer *Scope) *Scope {
	s := &Scope{Kind: kind, Outer: outer}
	if outer == nil {
		s.EnclosingFunction = s
		s.FuncDepth = 0
	} else if kind == FunctionScope {
		s.EnclosingFunction = s
		s.FuncDepth = outer.EnclosingFunction.FuncDepth + 1
	} else {
		s.EnclosingFunction = outer.EnclosingFunction
		s.FuncDepth = outer.FuncDepth
	}
	if outer != nil {
		outer.Inner = append(outer.Inner, s)
	}
	return s
}

// Declare adds a new slot to this scope. Callers are responsible for
// duplicate-declaration checks (the parser/resolver surfaces those as
// ParseErrors).
func (s *Scope) Declare(slot *Slot) {
	slot.DeclaringScope = s
	s.Slots = append(s.Slots, slot)
}

// Lookup walks outward from s looking for a slot named name, returning the
// slot and the scope chain distance in function-scope hops is computed
// separately by the resolver (it needs to know which scopes were crossed,
// not just whether the name was found).
func (s *Scope) Lookup(name string) (*Slot, *Scope) {
	for scope := s; scope != nil; scope = scope.Outer {
		for _, slot := range scope.Slots {
			if slot.Name == name {
				return slot, scope
			}
		}
	}
	return nil, nil
}

// IsFunction reports whether s is a function-level scope.
func (s *Scope) IsFunction() bool { return s.Kind == FunctionScope }
