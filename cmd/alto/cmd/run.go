package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/altolang/alto/internal/ast"
	"github.com/altolang/alto/internal/bytecode"
	"github.com/altolang/alto/internal/emitter"
	"github.com/altolang/alto/internal/errors"
	"github.com/altolang/alto/internal/lexer"
	"github.com/altolang/alto/internal/module"
	"github.com/altolang/alto/internal/parser"
	"github.com/altolang/alto/internal/resolver"
	"github.com/altolang/alto/pkg/alto"
	"github.com/spf13/cobra"
)

var (
	runEval      string
	dumpAST      bool
	dumpBytecode bool
	traceExec    bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run an Alto file or expression",
	Long: `Execute an Alto program from a file or inline expression.

Examples:
  alto run script.alto
  alto run -e "console.println('Hello, World!');"
  alto run --dump-ast script.alto
  alto run --dump-bytecode script.alto`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEval, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST before running")
	runCmd.Flags().BoolVar(&dumpBytecode, "dump-bytecode", false, "dump the emitted bytecode before running")
	runCmd.Flags().BoolVar(&traceExec, "trace", false, "announce execution start (for debugging)")
}

func runScript(_ *cobra.Command, args []string) error {
	input, filename, err := readInput(runEval, args)
	if err != nil {
		return err
	}

	eng, err := alto.New(alto.WithBaseDir(filepath.Dir(filename)))
	if err != nil {
		return err
	}

	if !dumpAST && !dumpBytecode {
		return execute(eng, filename, input)
	}

	// The dump flags need access to the intermediate AST/Chunk, so this
	// path drives the pipeline stage by stage instead of going straight
	// through Engine.Run, which only hands back a finished Module.
	l := lexer.New(input)
	p := parser.New(l)
	prog, _ := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return reportParseErrors(errs, filename)
	}

	if dumpAST {
		fmt.Println("AST:")
		fmt.Println(ast.Dump(prog))
		fmt.Println()
	}

	if rerrs := resolver.Resolve(prog); len(rerrs) > 0 {
		return reportCompilerErrors(rerrs, filename)
	}

	chunk, imports, everrs := emitter.Emit(prog)
	if len(everrs) > 0 {
		return reportCompilerErrors(everrs, filename)
	}

	if dumpBytecode {
		fmt.Println("Bytecode:")
		fmt.Println(bytecode.Disassemble(chunk))
		fmt.Println()
	}

	if traceExec {
		fmt.Fprintf(os.Stderr, "[trace] executing %s\n", filename)
	}

	mod := module.New(filename, chunk, imports)
	if _, err := eng.RunModule(mod); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("execution failed")
	}
	return nil
}

func execute(eng *alto.Engine, filename, input string) error {
	if traceExec {
		fmt.Fprintf(os.Stderr, "[trace] executing %s\n", filename)
	}
	if _, err := eng.Run(filename, input); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("execution failed")
	}
	return nil
}

func reportParseErrors(errs []*parser.Error, filename string) error {
	for _, e := range errs {
		ce := errors.New(errors.ParseError, e.Pos, e.Line, "%s", e.Message)
		ce.File = filename
		fmt.Fprintln(os.Stderr, ce.Format(true))
	}
	return fmt.Errorf("parsing failed with %d error(s)", len(errs))
}

func reportCompilerErrors(errs []*errors.CompilerError, filename string) error {
	for _, e := range errs {
		e.File = filename
		fmt.Fprintln(os.Stderr, e.Format(true))
	}
	return fmt.Errorf("compilation failed with %d error(s)", len(errs))
}
