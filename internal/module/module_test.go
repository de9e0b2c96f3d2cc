package module

import (
	"errors"
	"testing"

	"github.com/altolang/alto/internal/bytecode"
	"github.com/altolang/alto/internal/value"
)

func newChunkWithOneImport(globalIndex int) *bytecode.Chunk {
	globals := make([]any, globalIndex+1)
	return &bytecode.Chunk{Globals: &globals}
}

func TestNewStampsUniqueIdentity(t *testing.T) {
	a := New("a.alto", &bytecode.Chunk{Globals: new([]any)}, nil)
	b := New("b.alto", &bytecode.Chunk{Globals: new([]any)}, nil)
	if a.ID == b.ID {
		t.Error("two distinct modules should not share a UUID")
	}
	if a.Exports == b.Exports {
		t.Error("two distinct modules should not share an exports table")
	}
}

func TestFixupImportsPatchesGlobalSlot(t *testing.T) {
	chunk := newChunkWithOneImport(0)
	mod := New("main.alto", chunk, []ImportBinding{{Name: "util", Path: "util", GlobalIndex: 0}})

	target := value.NewTable()
	target.SetRawStr("x", value.Number(1))

	err := mod.FixupImports(func(path string) (*value.Table, error) {
		if path == "util" {
			return target, nil
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("FixupImports: %v", err)
	}

	got := (*chunk.Globals)[0]
	gv, ok := got.(value.Value)
	if !ok {
		t.Fatalf("global slot holds %T, want value.Value", got)
	}
	if !gv.IsImport() || gv.AsImport().Target != target {
		t.Fatalf("global slot was not patched to the resolved import")
	}
}

func TestFixupImportsIsIdempotent(t *testing.T) {
	chunk := newChunkWithOneImport(0)
	mod := New("main.alto", chunk, []ImportBinding{{Name: "util", Path: "util", GlobalIndex: 0}})

	calls := 0
	resolve := func(path string) (*value.Table, error) {
		calls++
		return value.NewTable(), nil
	}
	if err := mod.FixupImports(resolve); err != nil {
		t.Fatalf("first FixupImports: %v", err)
	}
	if err := mod.FixupImports(resolve); err != nil {
		t.Fatalf("second FixupImports: %v", err)
	}
	if calls != 1 {
		t.Fatalf("resolve was called %d times, want 1 (second FixupImports should be a no-op)", calls)
	}
}

func TestFixupImportsReportsUnresolvedOnResolverError(t *testing.T) {
	chunk := newChunkWithOneImport(0)
	mod := New("main.alto", chunk, []ImportBinding{{Name: "missing", Path: "missing", GlobalIndex: 0}})

	wantCause := errors.New("file not found")
	err := mod.FixupImports(func(path string) (*value.Table, error) {
		return nil, wantCause
	})
	if err == nil {
		t.Fatal("expected an ImportUnresolvedError")
	}
	var unresolved *ImportUnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("error = %T, want *ImportUnresolvedError", err)
	}
	if unresolved.Path != "missing" {
		t.Errorf("unresolved.Path = %q, want %q", unresolved.Path, "missing")
	}
}

func TestFixupImportsReportsUnresolvedOnNilTargetWithoutError(t *testing.T) {
	chunk := newChunkWithOneImport(0)
	mod := New("main.alto", chunk, []ImportBinding{{Name: "missing", Path: "missing", GlobalIndex: 0}})

	err := mod.FixupImports(func(path string) (*value.Table, error) {
		return nil, nil
	})
	var unresolved *ImportUnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("error = %T, want *ImportUnresolvedError", err)
	}
}
