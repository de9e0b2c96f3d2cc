// Package errors formats Alto's diagnostics with source context, caret
// indicators, and optional ANSI color, in the style of a compiler error
// reporter. It also defines the Kind taxonomy every compiler pass (lexer,
// parser, resolver, module loader, VM) tags its diagnostics with.
package errors

import (
	"fmt"
	"strings"

	"github.com/altolang/alto/internal/token"
)

// Kind classifies a CompilerError by which pass raised it.
type Kind int

const (
	LexError Kind = iota
	ParseError
	ResolveError
	ImportUnresolvedError
	RuntimeFault
)

func (k Kind) String() string {
	switch k {
	case LexError:
		return "LexError"
	case ParseError:
		return "ParseError"
	case ResolveError:
		return "ResolveError"
	case ImportUnresolvedError:
		return "ImportUnresolved"
	case RuntimeFault:
		return "RuntimeFault"
	default:
		return "Error"
	}
}

// CompilerError is a single diagnostic with enough context to render a
// caret-pointed source excerpt.
type CompilerError struct {
	Kind    Kind
	Pos     token.Position
	Message string
	Line    string // the source line the error occurred on, if known
	File    string
}

func New(kind Kind, pos token.Position, line, format string, args ...any) *CompilerError {
	return &CompilerError{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...), Line: line}
}

func (e *CompilerError) Error() string { return e.Format(false) }

// Format renders the diagnostic with a line/column header, the offending
// source line, and a caret under the column. color enables ANSI styling
// for terminal output.
func (e *CompilerError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "%s:%d:%d: %s: %s\n", e.File, e.Pos.Line, e.Pos.Column, e.Kind, e.Message)
	} else {
		fmt.Fprintf(&sb, "%d:%d: %s: %s\n", e.Pos.Line, e.Pos.Column, e.Kind, e.Message)
	}

	if e.Line != "" {
		const gutter = "    | "
		sb.WriteString(gutter)
		sb.WriteString(e.Line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(gutter)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatAll renders a batch of diagnostics, one per line, separated by
// blank lines, with a summary header when there is more than one.
func FormatAll(errs []*CompilerError, color bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(color)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors:\n\n", len(errs))
	for i, e := range errs {
		sb.WriteString(e.Format(color))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
