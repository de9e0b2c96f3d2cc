// Package alto is Alto's public embedding facade: a single Engine type
// assembled with functional options (New(opts...), output/import-resolver
// options, RegisterFunction via reflection, Compile/Run) fronting Alto's dynamic
// value model.
package alto

import (
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/altolang/alto/internal/ast"
	"github.com/altolang/alto/internal/bytecode"
	"github.com/altolang/alto/internal/emitter"
	"github.com/altolang/alto/internal/errors"
	"github.com/altolang/alto/internal/hostlib"
	"github.com/altolang/alto/internal/lexer"
	"github.com/altolang/alto/internal/module"
	"github.com/altolang/alto/internal/parser"
	"github.com/altolang/alto/internal/resolver"
	"github.com/altolang/alto/internal/value"
	"github.com/altolang/alto/internal/vm"
)

// Inspector is invoked once a Run completes, with the final result and any
// exception the top-level script left unhandled. A richer per-instruction
// hook would need the VM itself to grow a callback on its hot loop; this
// coarser whole-run hook is the one thing Engine can offer without that.
type Inspector func(result value.Value, exc *value.Exception)

// Engine is a reusable compiler+VM pair: one Engine can Compile and Run
// many scripts, accumulating RegisterFunction bindings and import
// resolution state across them.
type Engine struct {
	out      io.Writer
	resolve  module.Resolve
	inspect  Inspector
	builtins map[string]*value.Table
	host     *value.Table
	baseDir  string

	protosInstalled bool
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithOutput directs Console.print/println (and any host-registered
// function that writes through the Engine's writer) to out.
func WithOutput(out io.Writer) Option {
	return func(e *Engine) { e.out = out }
}

// WithImportResolver overrides the default filesystem-backed loader
// (internal/hostlib.Loader) entirely; a host embedding Alto in, say, a
// single-binary tool with no filesystem may want imports served from an
// in-memory map instead.
func WithImportResolver(resolve module.Resolve) Option {
	return func(e *Engine) { e.resolve = resolve }
}

// WithInspector registers a callback invoked after each top-level Run.
func WithInspector(fn Inspector) Option {
	return func(e *Engine) { e.inspect = fn }
}

// WithBaseDir sets the directory relative imports resolve against, for
// engines that Run inline source (no file path to derive it from).
func WithBaseDir(dir string) Option {
	return func(e *Engine) { e.baseDir = dir }
}

// New builds an Engine. With no options, it writes Console output to
// os.Stdout and resolves imports against the current working directory.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{out: os.Stdout, host: value.NewTable()}
	for _, opt := range opts {
		opt(e)
	}
	if e.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			e.baseDir = wd
		}
	}
	if !e.protosInstalled {
		hostlib.InstallAll()
		e.protosInstalled = true
	}
	e.builtins = map[string]*value.Table{
		"console": hostlib.Console(e.out),
		"math":    hostlib.Math(),
		"host":    e.host,
	}
	if e.resolve == nil {
		loader := hostlib.NewLoader(e.baseDir, e.builtins, e.compileExports)
		e.resolve = loader.Resolve
	}
	return e, nil
}

// RegisterFunction wraps a Go function as a native Value Function via
// reflection and exposes it to script code under name via `import host
// from 'host'`.
func (e *Engine) RegisterFunction(name string, fn any) error {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return fmt.Errorf("alto: RegisterFunction(%q): not a func", name)
	}
	rt := rv.Type()
	native := func(_ value.Value, args []value.Value) (value.Value, *value.Exception) {
		in := make([]reflect.Value, rt.NumIn())
		for i := 0; i < rt.NumIn(); i++ {
			in[i] = reflectArg(rt.In(i), args, i)
		}
		out := rv.Call(in)
		return reflectResult(out)
	}
	e.host.SetRawStr(name, value.FromFunction(&value.Function{Name: name, Native: native}))
	return nil
}

func reflectArg(t reflect.Type, args []value.Value, i int) reflect.Value {
	var v value.Value
	if i < len(args) {
		v = args[i]
	}
	switch t.Kind() {
	case reflect.Float64, reflect.Float32:
		return reflect.ValueOf(v.ToNumber()).Convert(t)
	case reflect.Int, reflect.Int32, reflect.Int64:
		return reflect.ValueOf(int64(v.ToNumber())).Convert(t)
	case reflect.String:
		return reflect.ValueOf(value.Stringify(v)).Convert(t)
	case reflect.Bool:
		return reflect.ValueOf(v.ToBoolean())
	default:
		return reflect.Zero(t)
	}
}

func reflectResult(out []reflect.Value) (value.Value, *value.Exception) {
	if len(out) == 0 {
		return value.Null(), nil
	}
	last := out[len(out)-1]
	if last.Type().Implements(reflect.TypeOf((*error)(nil)).Elem()) && !last.IsNil() {
		return value.Null(), value.NewException(last.Interface().(error).Error())
	}
	if len(out) == 1 && !out[0].Type().Implements(reflect.TypeOf((*error)(nil)).Elem()) {
		return goToValue(out[0]), nil
	}
	if len(out) >= 1 {
		return goToValue(out[0]), nil
	}
	return value.Null(), nil
}

func goToValue(v reflect.Value) value.Value {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int32, reflect.Int64:
		return value.Number(toFloat(v))
	case reflect.String:
		return value.String(v.String())
	case reflect.Bool:
		return value.Bool(v.Bool())
	default:
		return value.Null()
	}
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	default:
		return float64(v.Int())
	}
}

// Compile lexes, parses, resolves and emits src (named path for
// diagnostics) into a loadable Module, without running it.
func (e *Engine) Compile(path, src string) (*module.Module, error) {
	l := lexer.New(src)
	p := parser.New(l)
	prog, _ := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, formatParseErrors(errs)
	}
	if rerrs := resolver.Resolve(prog); len(rerrs) > 0 {
		return nil, formatErrors(rerrs)
	}
	chunk, imports, everrs := emitter.Emit(prog)
	if len(everrs) > 0 {
		return nil, formatErrors(everrs)
	}
	return module.New(path, chunk, imports), nil
}

// Run compiles and executes src to completion, resolving its imports
// through the Engine's configured resolver first.
func (e *Engine) Run(path, src string) (value.Value, error) {
	mod, err := e.Compile(path, src)
	if err != nil {
		return value.Null(), err
	}
	return e.RunModule(mod)
}

// RunModule resolves mod's imports through the Engine's configured
// resolver and executes it, for callers (cmd/alto's dump-ast/dump-bytecode
// paths) that already drove the lex/parse/resolve/emit pipeline themselves
// to inspect an intermediate stage.
func (e *Engine) RunModule(mod *module.Module) (value.Value, error) {
	if err := mod.FixupImports(e.resolve); err != nil {
		return value.Null(), err
	}
	machine := vm.New(e.out)
	result, exc := machine.Run(mod)
	if e.inspect != nil {
		e.inspect(result, exc)
	}
	if exc != nil {
		return value.Null(), fmt.Errorf("%s", exc.Message)
	}
	return result, nil
}

// RunFile reads filename and Runs it, using its directory as the base for
// relative imports unless WithBaseDir already overrode that.
func (e *Engine) RunFile(filename string) (value.Value, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return value.Null(), err
	}
	return e.Run(filename, string(src))
}

// compileExports is the hostlib.Compile callback wired into the default
// filesystem loader: compile path/src, run it, and hand back its exports
// table for the importing module's Import proxy to read through.
func (e *Engine) compileExports(path, src string) (*value.Table, error) {
	mod, err := e.Compile(path, src)
	if err != nil {
		return nil, err
	}
	if err := mod.FixupImports(e.resolve); err != nil {
		return nil, err
	}
	machine := vm.New(e.out)
	if _, exc := machine.Run(mod); exc != nil {
		return nil, fmt.Errorf("%s: %s", path, exc.Message)
	}
	return mod.Exports, nil
}

// Dump renders prog's AST for debugging (cmd/alto run --dump-ast), and is
// exposed here so cmd/alto doesn't need its own parser-stage wiring.
func Dump(prog *ast.Program) string {
	return ast.Dump(prog)
}

// Disassemble is a convenience re-export so cmd/alto doesn't need to
// import internal/bytecode directly just to print a Module's code.
func Disassemble(mod *module.Module) string {
	return bytecode.Disassemble(mod.Chunk)
}

func formatParseErrors(errs []*parser.Error) error {
	var ces []*errors.CompilerError
	for _, e := range errs {
		ces = append(ces, errors.New(errors.ParseError, e.Pos, e.Line, "%s", e.Message))
	}
	return fmt.Errorf("%s", errors.FormatAll(ces, false))
}

func formatErrors(errs []*errors.CompilerError) error {
	return fmt.Errorf("%s", errors.FormatAll(errs, false))
}
