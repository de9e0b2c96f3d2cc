package parser

import (
	"github.com/altolang/alto/internal/ast"
	"github.com/altolang/alto/internal/token"
)

// Expression parses an expression, stopping at the first operator whose
// binding power is below minPower. This is the Pratt engine's core loop:
// Expression(0) parses a full expression; higher minPower values
// are used by operator handlers to enforce precedence/associativity on
// their own operands.
func (p *Parser) Expression(minPower int) ast.Expr {
	left := p.parsePrefix()
	for {
		t := p.cur()
		if t.Kind != token.Punctuation {
			break
		}
		r, ok := p.rules[t.Text]
		if !ok || r.infix == nil || r.power < minPower {
			break
		}
		left = r.infix(p, left)
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expr {
	t := p.cur()
	switch t.Kind {
	case token.Number:
		p.advance()
		return &ast.NumberLit{Base: ast.Base{P: t.Pos}, Value: t.Number}
	case token.String:
		p.advance()
		return &ast.StringLit{Base: ast.Base{P: t.Pos}, Value: t.Text}
	case token.Word:
		return p.parseWordPrimary()
	case token.Punctuation:
		switch t.Text {
		case "-", "+", "!":
			p.advance()
			x := p.Expression(powUnary)
			return &ast.UnaryExpr{Base: ast.Base{P: t.Pos}, Op: t.Text, X: x}
		case "(":
			return p.parseParenOrArrow()
		case "[":
			return p.parseListLiteral()
		case "{":
			return p.parseTableLiteral()
		}
	}
	p.errorf(t.Pos, t.Line, "unexpected token %q", t.Lexeme)
	if t.Kind != token.End {
		p.advance()
	}
	return &ast.NullLit{Base: ast.Base{P: t.Pos}}
}

func (p *Parser) parseWordPrimary() ast.Expr {
	t := p.cur()
	switch t.Text {
	case "null":
		p.advance()
		return &ast.NullLit{Base: ast.Base{P: t.Pos}}
	case "true":
		p.advance()
		return &ast.BoolLit{Base: ast.Base{P: t.Pos}, Value: true}
	case "false":
		p.advance()
		return &ast.BoolLit{Base: ast.Base{P: t.Pos}, Value: false}
	case "this":
		p.advance()
		return &ast.ThisExpr{Base: ast.Base{P: t.Pos}}
	case "function":
		return p.parseFunctionLiteral()
	case "throw":
		p.advance()
		val := p.Expression(powAssign)
		return &ast.ThrowExpr{Base: ast.Base{P: t.Pos}, Value: val}
	default:
		if p.peekAt(1).Is("=>") {
			p.advance() // the identifier
			p.advance() // "=>"
			return p.parseArrowBody(t.Pos, []ast.Param{{Name: t.Text}})
		}
		p.advance()
		return &ast.Ident{Base: ast.Base{P: t.Pos}, Name: t.Text}
	}
}

// parseParenOrArrow disambiguates `( expr )` grouping from an arrow
// function's parameter list by scanning ahead for a matching close paren
// immediately followed by "=>".
func (p *Parser) parseParenOrArrow() ast.Expr {
	openPos := p.cur().Pos
	closeIdx := p.matchingClose(p.pos, "(", ")")
	if closeIdx >= 0 && p.tokAt(closeIdx+1).Is("=>") {
		p.advance() // "("
		var params []ast.Param
		for !p.cur().Is(")") {
			if p.cur().Is("...") {
				p.advance()
				name := p.cur().Text
				p.advance()
				params = append(params, ast.Param{Name: name, Rest: true})
			} else {
				name := p.cur().Text
				p.advance()
				params = append(params, ast.Param{Name: name})
			}
			if !p.cur().Is(")") {
				p.Required(",")
			}
		}
		p.Required(")")
		p.Required("=>")
		return p.parseArrowBody(openPos, params)
	}

	p.advance() // "("
	expr := p.Expression(0)
	p.Required(")")
	return expr
}

func (p *Parser) parseArrowBody(pos token.Position, params []ast.Param) ast.Expr {
	p.funcDepth++
	savedLoopDepth := p.loopDepth
	p.loopDepth = 0
	var body *ast.BlockStmt
	if p.cur().Is("{") {
		body = p.parseBlock()
	} else {
		val := p.Expression(powAssign)
		body = &ast.BlockStmt{Base: ast.Base{P: pos}, Stmts: []ast.Stmt{&ast.ReturnStmt{Base: ast.Base{P: pos}, Value: val}}}
	}
	p.loopDepth = savedLoopDepth
	p.funcDepth--
	return &ast.FunctionLit{Base: ast.Base{P: pos}, Params: params, Body: body, Arrow: true}
}

func (p *Parser) parseFunctionLiteral() ast.Expr {
	pos := p.advance().Pos // "function"
	name := ""
	if p.cur().Kind == token.Word {
		name = p.cur().Text
		p.advance()
	}
	p.Required("(")
	var params []ast.Param
	for !p.cur().Is(")") {
		if p.cur().Is("...") {
			p.advance()
			pname := p.cur().Text
			p.advance()
			params = append(params, ast.Param{Name: pname, Rest: true})
		} else {
			pname := p.cur().Text
			p.advance()
			params = append(params, ast.Param{Name: pname})
		}
		if !p.cur().Is(")") {
			p.Required(",")
		}
	}
	p.Required(")")
	p.funcDepth++
	savedLoopDepth := p.loopDepth
	p.loopDepth = 0
	body := p.parseBlock()
	p.loopDepth = savedLoopDepth
	p.funcDepth--
	return &ast.FunctionLit{Base: ast.Base{P: pos}, Name: name, Params: params, Body: body}
}

func (p *Parser) parseListLiteral() ast.Expr {
	pos := p.advance().Pos // "["
	var elems []ast.Expr
	for !p.cur().Is("]") {
		elems = append(elems, p.Expression(powAssign))
		if !p.cur().Is("]") {
			p.Required(",")
		}
	}
	p.Required("]")
	return &ast.ListLit{Base: ast.Base{P: pos}, Elements: elems}
}

func (p *Parser) parseTableLiteral() ast.Expr {
	pos := p.advance().Pos // "{"
	var entries []ast.TableEntry
	for !p.cur().Is("}") {
		var key ast.Expr
		if p.cur().Is("[") {
			p.advance()
			key = p.Expression(0)
			p.Required("]")
		} else {
			kt := p.cur()
			key = &ast.StringLit{Base: ast.Base{P: kt.Pos}, Value: kt.Text}
			p.advance()
		}
		p.Required(":")
		val := p.Expression(powAssign)
		entries = append(entries, ast.TableEntry{Key: key, Value: val})
		if !p.cur().Is("}") {
			p.Required(",")
		}
	}
	p.Required("}")
	return &ast.TableLit{Base: ast.Base{P: pos}, Entries: entries}
}

func parseTernary(p *Parser, left ast.Expr) ast.Expr {
	pos := p.advance().Pos // "?"
	then := p.Expression(0)
	p.Required(":")
	elseB := p.Expression(powTernary)
	return &ast.TernaryExpr{Base: ast.Base{P: pos}, Cond: left, Then: then, Else: elseB}
}

func parseCall(p *Parser, left ast.Expr) ast.Expr {
	pos := p.advance().Pos // "("
	var args []ast.Expr
	for !p.cur().Is(")") {
		args = append(args, p.Expression(powAssign))
		if !p.cur().Is(")") {
			p.Required(",")
		}
	}
	p.Required(")")
	return &ast.CallExpr{Base: ast.Base{P: pos}, Callee: left, Args: args}
}

func parseIndex(p *Parser, left ast.Expr) ast.Expr {
	pos := p.advance().Pos // "["
	idx := p.Expression(0)
	p.Required("]")
	return &ast.IndexExpr{Base: ast.Base{P: pos}, X: left, Index: idx}
}

func parseMember(p *Parser, left ast.Expr) ast.Expr {
	pos := p.advance().Pos // "."
	name := p.cur().Text
	if p.cur().Kind == token.Word {
		p.advance()
	} else {
		p.errorf(p.cur().Pos, p.cur().Line, "expected member name, got %q", p.cur().Lexeme)
	}
	return &ast.MemberExpr{Base: ast.Base{P: pos}, X: left, Name: name}
}

// matchingClose scans forward from openIdx (which must hold open) for the
// token index of its matching close, or -1 if the stream ends first.
func (p *Parser) matchingClose(openIdx int, open, close string) int {
	depth := 0
	for i := openIdx; i < len(p.toks); i++ {
		if p.toks[i].Kind != token.Punctuation {
			continue
		}
		switch p.toks[i].Text {
		case open:
			depth++
		case close:
			depth--
		}
		if depth == 0 {
			return i
		}
	}
	return -1
}

func (p *Parser) tokAt(i int) token.Token {
	if i < 0 || i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}
