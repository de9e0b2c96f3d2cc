// Package module implements Alto's Module object: the compiled
// (code, data, source-map) triple the emitter produces, an exports table
// populated as `export const` statements execute, and the first-run import
// fix-up that patches each import's global data slot in place so later
// reads are a direct array access.
package module

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/altolang/alto/internal/bytecode"
	"github.com/altolang/alto/internal/errors"
	"github.com/altolang/alto/internal/value"
)

// ImportBinding records one `import name from 'path'` declaration the
// emitter found at module scope: which data-pool index holds (once
// resolved) the value.Import proxy for it.
type ImportBinding struct {
	Name        string
	Path        string
	GlobalIndex int
}

// Module is one compiled, loadable Alto unit.
type Module struct {
	ID      uuid.UUID
	Path    string
	Chunk   *bytecode.Chunk
	Exports *value.Table
	Imports []ImportBinding

	resolved bool
}

// New wraps a freshly emitted chunk as a loadable Module, stamping it with
// a fresh random ID, so two Modules built from the same path still carry
// distinct IDs.
func New(path string, chunk *bytecode.Chunk, imports []ImportBinding) *Module {
	return &Module{
		ID:      uuid.New(),
		Path:    path,
		Chunk:   chunk,
		Exports: value.NewTable(),
		Imports: imports,
	}
}

// Resolve looks up the exports table for an import path. Supplying it is
// the host's job; the module loader that walks the filesystem and this
// function's concrete implementation live in internal/hostlib, not here.
type Resolve func(path string) (*value.Table, error)

// FixupImports performs the first-run resolution step: each import
// still unresolved has its target module's exports table looked up via
// resolve and patched into the owning chunk's data pool in place. A
// second FixupImports call on an already-resolved module is a no-op, since
// reentrant execution of the same module must not re-resolve.
func (m *Module) FixupImports(resolve Resolve) error {
	if m.resolved {
		return nil
	}
	for _, imp := range m.Imports {
		target, err := resolve(imp.Path)
		if err != nil {
			return &ImportUnresolvedError{Path: imp.Path, Name: imp.Name, Cause: err}
		}
		if target == nil {
			return &ImportUnresolvedError{Path: imp.Path, Name: imp.Name}
		}
		globals := m.Chunk.Globals
		for len(*globals) <= imp.GlobalIndex {
			*globals = append(*globals, value.Null())
		}
		(*globals)[imp.GlobalIndex] = value.FromImport(&value.Import{Path: imp.Path, Target: target})
	}
	m.resolved = true
	return nil
}

// ImportUnresolvedError is raised when a module's import still has no
// target after FixupImports runs.
type ImportUnresolvedError struct {
	Path  string
	Name  string
	Cause error
}

func (e *ImportUnresolvedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("import %q (from %q) could not be resolved: %v", e.Name, e.Path, e.Cause)
	}
	return fmt.Sprintf("import %q (from %q) could not be resolved", e.Name, e.Path)
}

func (e *ImportUnresolvedError) Kind() errors.Kind { return errors.ImportUnresolvedError }
