package cmd

import (
	"fmt"

	"github.com/altolang/alto/internal/ast"
	"github.com/altolang/alto/internal/lexer"
	"github.com/altolang/alto/internal/parser"
	"github.com/spf13/cobra"
)

var parseEval string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse an Alto file and dump its AST",
	Long: `Parse (but do not run) an Alto program and print its AST tree.

Examples:
  alto parse script.alto
  alto parse -e "var x = 1 + 2"`,
	Args: cobra.MaximumNArgs(1),
	RunE: parseScript,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline code instead of reading from file")
}

func parseScript(_ *cobra.Command, args []string) error {
	input, filename, err := readInput(parseEval, args)
	if err != nil {
		return err
	}

	l := lexer.New(input)
	p := parser.New(l)
	prog, _ := p.ParseProgram()

	if errs := p.Errors(); len(errs) > 0 {
		return reportParseErrors(errs, filename)
	}

	fmt.Println(ast.Dump(prog))
	return nil
}
