package cmd

import (
	"fmt"

	"github.com/altolang/alto/internal/bytecode"
	"github.com/altolang/alto/internal/emitter"
	"github.com/altolang/alto/internal/lexer"
	"github.com/altolang/alto/internal/parser"
	"github.com/altolang/alto/internal/resolver"
	"github.com/spf13/cobra"
)

var compileEval string

var compileCmd = &cobra.Command{
	Use:     "compile [file]",
	Aliases: []string{"disasm"},
	Short:   "Compile an Alto file to bytecode and print its disassembly",
	Long: `Compile (but do not run) an Alto program and print the resulting
bytecode as a disassembly listing: one row per instruction giving its
address, source line, opcode, param and value.

Examples:
  alto compile script.alto
  alto compile -e "var x = 1 + 2"`,
	Args: cobra.MaximumNArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVarP(&compileEval, "eval", "e", "", "compile inline code instead of reading from file")
}

func compileScript(_ *cobra.Command, args []string) error {
	input, filename, err := readInput(compileEval, args)
	if err != nil {
		return err
	}

	l := lexer.New(input)
	p := parser.New(l)
	prog, _ := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return reportParseErrors(errs, filename)
	}

	if rerrs := resolver.Resolve(prog); len(rerrs) > 0 {
		return reportCompilerErrors(rerrs, filename)
	}

	chunk, _, everrs := emitter.Emit(prog)
	if len(everrs) > 0 {
		return reportCompilerErrors(everrs, filename)
	}

	fmt.Println(bytecode.Disassemble(chunk))
	return nil
}
