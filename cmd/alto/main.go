// Command alto is the CLI front end for the Alto scripting language: lex,
// parse, compile, assemble and run subcommands built on pkg/alto.
package main

import (
	"fmt"
	"os"

	"github.com/altolang/alto/cmd/alto/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
