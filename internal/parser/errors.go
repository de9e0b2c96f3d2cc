package parser

import (
	"fmt"

	"github.com/altolang/alto/internal/token"
)

// Error is a single parse-time diagnostic: an unexpected token, a missing
// required token, or a disallowed construct.
type Error struct {
	Pos     token.Position
	Message string
	Line    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}
