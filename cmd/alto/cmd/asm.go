package cmd

import (
	"fmt"
	"os"

	"github.com/altolang/alto/internal/asm"
	"github.com/altolang/alto/internal/bytecode"
	"github.com/altolang/alto/internal/module"
	"github.com/altolang/alto/internal/value"
	"github.com/altolang/alto/internal/vm"
	"github.com/spf13/cobra"
)

var (
	asmRun  bool
	asmEval string
)

var asmCmd = &cobra.Command{
	Use:   "asm [file]",
	Short: "Assemble and optionally run Alto's text bytecode format",
	Long: `Assemble a hand-written bytecode listing (one mnemonic or directive
per line, with optional labels) into a Chunk, then either print its
disassembly back or execute it directly with --run. The disassembly that
'alto compile' prints has address and line columns and is not accepted
as input.

Examples:
  alto asm prog.altoasm
  alto asm --run prog.altoasm`,
	Args: cobra.MaximumNArgs(1),
	RunE: assembleFile,
}

func init() {
	rootCmd.AddCommand(asmCmd)
	asmCmd.Flags().BoolVar(&asmRun, "run", false, "execute the assembled chunk instead of printing its disassembly")
	asmCmd.Flags().StringVarP(&asmEval, "eval", "e", "", "assemble inline listing instead of reading from file")
}

func assembleFile(_ *cobra.Command, args []string) error {
	src, filename, err := readInput(asmEval, args)
	if err != nil {
		return err
	}

	res, err := asm.Assemble(src)
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}

	if !asmRun {
		fmt.Println(bytecode.Disassemble(res.Chunk))
		return nil
	}

	mod := module.New(filename, res.Chunk, res.Imports)
	noImports := func(path string) (*value.Table, error) {
		return nil, fmt.Errorf("alto asm --run does not resolve imports; %q requested", path)
	}
	if err := mod.FixupImports(noImports); err != nil {
		return err
	}
	machine := vm.New(os.Stdout)
	if _, exc := machine.Run(mod); exc != nil {
		return fmt.Errorf("%s", value.Stringify(value.FromException(exc)))
	}
	return nil
}
