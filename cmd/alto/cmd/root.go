package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "alto",
	Short: "Alto scripting language interpreter and compiler",
	Long: `alto is a Go implementation of the Alto scripting language.

Alto is a small dynamic language with:
  - JavaScript-like values (null, boolean, number, string, list, table, function)
  - Prototype-based method dispatch
  - Exceptions with try/catch/finally
  - A module system with explicit import/export

This CLI exposes every stage of the pipeline (lex, parse, compile, run)
individually, plus a text assembler for hand-written bytecode.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}

// readInput resolves the (evalExpr, args) pair every subcommand accepts
// into source text plus a diagnostic filename: either an inline -e
// expression or a single file argument.
func readInput(evalExpr string, args []string) (input, filename string, err error) {
	switch {
	case evalExpr != "":
		return evalExpr, "<eval>", nil
	case len(args) == 1:
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	default:
		return "", "", fmt.Errorf("either provide a file path or use -e/--eval for inline code")
	}
}
