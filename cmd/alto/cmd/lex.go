package cmd

import (
	"fmt"

	"github.com/altolang/alto/internal/lexer"
	"github.com/altolang/alto/internal/token"
	"github.com/spf13/cobra"
)

var (
	lexEval       string
	showPos       bool
	showLexType   bool
	onlyLexErrors bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize an Alto file or expression",
	Long: `Tokenize (lex) an Alto program and print the resulting tokens.

Examples:
  alto lex script.alto
  alto lex -e "println('hi');"
  alto lex --show-type --show-pos script.alto
  alto lex --only-errors script.alto`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showLexType, "show-type", false, "show token kind names")
	lexCmd.Flags().BoolVar(&onlyLexErrors, "only-errors", false, "show only illegal tokens")
}

func lexScript(_ *cobra.Command, args []string) error {
	input, filename, err := readInput(lexEval, args)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Printf("Tokenizing: %s\n", filename)
		fmt.Println("---")
	}

	l := lexer.New(input)
	toks := l.Tokens()

	errorCount := 0
	for _, tok := range toks {
		isIllegal := tok.Kind == token.Illegal
		if isIllegal {
			errorCount++
		}
		if onlyLexErrors && !isIllegal {
			continue
		}
		printToken(tok)
	}

	if verbose {
		fmt.Println("---")
		fmt.Printf("Total tokens: %d\n", len(toks))
		if errorCount > 0 {
			fmt.Printf("Errors: %d\n", errorCount)
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("found %d illegal token(s)", errorCount)
	}
	return nil
}

func printToken(tok token.Token) {
	var out string
	if showLexType {
		out = fmt.Sprintf("[%-12s]", tok.Kind)
	}
	switch {
	case tok.Kind == token.End:
		out += " End"
	case tok.Kind == token.Illegal:
		out += fmt.Sprintf(" ILLEGAL: %q", tok.Lexeme)
	case tok.Text == "":
		out += fmt.Sprintf(" %s", tok.Lexeme)
	default:
		out += fmt.Sprintf(" %q", tok.Text)
	}
	if showPos {
		out += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	fmt.Println(out)
}
