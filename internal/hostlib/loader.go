package hostlib

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/altolang/alto/internal/value"
)

// Compile turns the source text found at path into an already-run module's
// exports table. The loader never compiles anything itself; pkg/alto
// supplies this callback so hostlib (an internal package other internal
// packages may depend on) never has to import the public facade that in
// turn depends on hostlib for its defaults.
type Compile func(path, src string) (*value.Table, error)

// Loader is the reference filesystem module resolver: relative import
// paths resolve against BaseDir (the importing file's directory), a fixed
// set of built-in module names resolve to the reference Console/Math
// tables, and each distinct path is compiled at most once.
type Loader struct {
	BaseDir  string
	Builtins map[string]*value.Table
	Compile  Compile

	cache map[string]*value.Table
}

// NewLoader builds a Loader rooted at baseDir. builtins maps a module name
// (as used in `import x from 'name'`) to its exports table; the caller
// (pkg/alto) populates it with the reference Console/Math tables plus
// whatever native functions Engine.RegisterFunction has accumulated.
func NewLoader(baseDir string, builtins map[string]*value.Table, compile Compile) *Loader {
	if builtins == nil {
		builtins = map[string]*value.Table{}
	}
	return &Loader{
		BaseDir:  baseDir,
		Builtins: builtins,
		Compile:  compile,
		cache:    map[string]*value.Table{},
	}
}

// Resolve implements module.Resolve.
func (l *Loader) Resolve(path string) (*value.Table, error) {
	if t, ok := l.Builtins[path]; ok {
		return t, nil
	}
	if t, ok := l.cache[path]; ok {
		return t, nil
	}

	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(l.BaseDir, full)
	}
	if filepath.Ext(full) == "" {
		full += ".alto"
	}

	src, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("import %q: %w", path, err)
	}
	if l.cache == nil {
		l.cache = map[string]*value.Table{}
	}
	// Mark the path as in-progress with an empty table before compiling,
	// so a dependency cycle resolves to a (momentarily incomplete) exports
	// table instead of recursing forever.
	placeholder := value.NewTable()
	l.cache[path] = placeholder

	exports, err := l.Compile(full, string(src))
	if err != nil {
		delete(l.cache, path)
		return nil, err
	}
	l.cache[path] = exports
	return exports, nil
}
