// Package parser implements Alto's configurable top-down
// operator-precedence (Pratt) engine: per-token-identity rules for
// unary/primitive, left-binary, right-binary, declaration, and statement
// parsing, plus the lookahead helpers the grammar is built from.
package parser

import (
	"fmt"

	"github.com/altolang/alto/internal/ast"
	"github.com/altolang/alto/internal/lexer"
	"github.com/altolang/alto/internal/token"
)

// Binding powers, highest binds tightest.
const (
	powNone           = 0
	powAssign         = 10
	powTernary        = 20
	powOr             = 30
	powAnd            = 35
	powEquality       = 40
	powBitOr          = 45
	powBitXor         = 50
	powBitAnd         = 55
	powRelational     = 60
	powAdditive       = 65
	powMultiplicative = 70
	powUnary          = 80
	powPostfix        = 90
)

type prefixFn func(p *Parser) ast.Expr
type infixFn func(p *Parser, left ast.Expr) ast.Expr

// rule is the per-token-identity entry: a primitive
// (nud) handler and/or a binary (led) handler with its binding powers.
// RightAssoc binary operators recurse at Power (not Power+1), achieving
// right-associativity by letting the same-precedence operator to their
// right bind first.
type rule struct {
	prefix     prefixFn
	infix      infixFn
	power      int
	rightPower int // power passed to the recursive Expression call in infix position
}

// Parser is a hand-rolled recursive-descent driver around the Pratt
// expression engine. It tokenizes the whole input up front into a
// finite token stream, which makes the arrow-function-vs-grouping lookahead
// in parseParenOrArrow trivial arbitrary-distance lookahead instead of
// lexer-state snapshotting.
type Parser struct {
	toks []token.Token
	pos  int

	rules map[string]*rule

	errs []*Error

	// atModuleScope tracks whether the parser is at the outermost
	// (program) scope, where import/export declarations are legal.
	atModuleScope bool
	loopDepth     int
	funcDepth     int
}

// New constructs a Parser over the token stream produced by l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{toks: l.Tokens(), atModuleScope: true}
	for _, e := range l.Errors() {
		p.errs = append(p.errs, &Error{Pos: e.Pos, Message: e.Error()})
	}
	p.installRules()
	return p
}

// Errors returns every diagnostic collected during parsing (including
// lexical errors forwarded from the lexer).
func (p *Parser) Errors() []*Error { return p.errs }

func (p *Parser) errorf(pos token.Position, line string, format string, args ...any) {
	p.errs = append(p.errs, &Error{Pos: pos, Message: fmt.Sprintf(format, args...), Line: line})
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // End
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(offset int) token.Token {
	i := p.pos + offset
	if i < 0 || i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) atEnd() bool { return p.cur().Kind == token.End }

// Optional consumes the current token if it is punctuation/word matching
// text, reporting whether it matched.
func (p *Parser) Optional(text string) bool {
	if p.cur().Is(text) {
		p.advance()
		return true
	}
	return false
}

// Required consumes the current token if it matches text, else records a
// ParseError and returns the zero Token so callers can keep going
// (error-tolerant parsing).
func (p *Parser) Required(text string) token.Token {
	if p.cur().Is(text) {
		return p.advance()
	}
	p.errorf(p.cur().Pos, p.cur().Line, "expected %q, got %q", text, p.cur().Lexeme)
	return token.Token{}
}

// Match reports whether the upcoming tokens (starting at the current one)
// match seq exactly, without consuming anything.
func (p *Parser) Match(seq ...string) bool {
	for i, s := range seq {
		if !p.peekAt(i).Is(s) {
			return false
		}
	}
	return true
}

func (p *Parser) installRules() {
	p.rules = map[string]*rule{}

	infixLeft := func(text string, power int, fn infixFn) {
		p.rules[text] = &rule{infix: fn, power: power, rightPower: power + 1}
	}
	infixRight := func(text string, power int, fn infixFn) {
		p.rules[text] = &rule{infix: fn, power: power, rightPower: power}
	}

	binOp := func(op string) infixFn {
		return func(p *Parser, left ast.Expr) ast.Expr {
			r := p.rules[op]
			pos := p.advance().Pos
			right := p.Expression(r.rightPower)
			return &ast.BinaryExpr{Base: ast.Base{P: pos}, Op: op, X: left, Y: right}
		}
	}
	logicalOp := func(op string) infixFn {
		return func(p *Parser, left ast.Expr) ast.Expr {
			r := p.rules[op]
			pos := p.advance().Pos
			right := p.Expression(r.rightPower)
			return &ast.LogicalExpr{Base: ast.Base{P: pos}, Op: op, X: left, Y: right}
		}
	}
	assignOp := func(op string) infixFn {
		return func(p *Parser, left ast.Expr) ast.Expr {
			pos := p.advance().Pos
			value := p.Expression(powAssign) // right-assoc: same power
			return &ast.AssignExpr{Base: ast.Base{P: pos}, Op: op, Target: left, Value: value}
		}
	}

	infixLeft("*", powMultiplicative, binOp("*"))
	infixLeft("/", powMultiplicative, binOp("/"))
	infixLeft("%", powMultiplicative, binOp("%"))
	infixLeft("+", powAdditive, binOp("+"))
	infixLeft("-", powAdditive, binOp("-"))
	infixLeft("<", powRelational, binOp("<"))
	infixLeft("<=", powRelational, binOp("<="))
	infixLeft(">", powRelational, binOp(">"))
	infixLeft(">=", powRelational, binOp(">="))
	infixLeft("&", powBitAnd, binOp("&"))
	infixLeft("^", powBitXor, binOp("^"))
	infixLeft("|", powBitOr, binOp("|"))
	infixLeft("==", powEquality, binOp("=="))
	infixLeft("!=", powEquality, binOp("!="))
	infixLeft("&&", powAnd, logicalOp("&&"))
	infixLeft("||", powOr, logicalOp("||"))

	infixRight("?", powTernary, parseTernary)

	for _, op := range []string{"=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^="} {
		infixRight(op, powAssign, assignOp(op))
	}

	p.rules["("] = &rule{power: powPostfix, rightPower: powPostfix, infix: parseCall}
	p.rules["["] = &rule{power: powPostfix, rightPower: powPostfix, infix: parseIndex}
	p.rules["."] = &rule{power: powPostfix, rightPower: powPostfix, infix: parseMember}
}
