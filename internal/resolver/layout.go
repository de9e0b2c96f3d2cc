package resolver

import "github.com/altolang/alto/internal/ast"

// closureScopeFor anchors a captured slot's closure cell at the innermost
// ancestor scope (inclusive) that never crosses a LoopScope boundary on
// its way up to the owning function. That keeps a
// captured loop-body variable's cell per-iteration instead of hoisting it
// to the whole function, which is what makes `for (var i...) fns.push(() =>
// i)` close over a distinct i per iteration rather than the final one.
func closureScopeFor(declaringScope *ast.Scope) *ast.Scope {
	for s := declaringScope; s != nil; s = s.Outer {
		if s.Kind == ast.LoopScope || s.Kind == ast.FunctionScope {
			return s
		}
	}
	return declaringScope
}

// layoutFunction assigns dense local-stack indices to every
// non-captured, non-global slot reachable from fn without crossing into a
// nested function's own scope, and dense closure-frame indices to every
// captured slot whose closure scope (from closureScopeFor) falls within
// fn's reach. Sibling scopes reuse the same starting index, since their
// locals are never simultaneously live.
func (r *Resolver) layoutFunction(fn *ast.Scope) {
	maxSlots := 0

	var walk func(s *ast.Scope, nextIndex int)
	walk = func(s *ast.Scope, nextIndex int) {
		for _, slot := range s.Slots {
			switch slot.Storage {
			case ast.StorageGlobal:
				// already assigned when the import was declared
			case ast.StorageClosure:
				cs := closureScopeFor(slot.DeclaringScope)
				slot.ClosureScope = cs
				cs.ContainsClosureRefs = true
				slot.Index = len(cs.ClosureLayout)
				cs.ClosureLayout = append(cs.ClosureLayout, slot)
			default:
				slot.Storage = ast.StorageLocal
				slot.Index = nextIndex
				nextIndex++
			}
		}
		if nextIndex > maxSlots {
			maxSlots = nextIndex
		}
		for _, child := range s.Inner {
			if child.Kind == ast.FunctionScope {
				continue // laid out independently, via its own functionScopes entry
			}
			walk(child, nextIndex)
		}
	}

	walk(fn, 0)
	fn.StackAllocation = maxSlots
}
