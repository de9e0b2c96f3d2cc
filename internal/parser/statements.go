package parser

import (
	"github.com/altolang/alto/internal/ast"
	"github.com/altolang/alto/internal/token"
)

// ParseProgram is the parser's entry point: a flat sequence of statements
// at module scope. Semicolons are optional throughout.
func (p *Parser) ParseProgram() (*ast.Program, []*Error) {
	pos := p.cur().Pos
	var stmts []ast.Stmt
	for !p.atEnd() {
		stmts = append(stmts, p.parseStatement())
	}
	return &ast.Program{Base: ast.Base{P: pos}, Stmts: stmts}, p.errs
}

func (p *Parser) consumeSemicolon() {
	p.Optional(";")
}

func (p *Parser) parseBlock() *ast.BlockStmt {
	pos := p.Required("{").Pos
	wasModule := p.atModuleScope
	p.atModuleScope = false
	var stmts []ast.Stmt
	for !p.cur().Is("}") && !p.atEnd() {
		stmts = append(stmts, p.parseStatement())
	}
	p.atModuleScope = wasModule
	p.Required("}")
	return &ast.BlockStmt{Base: ast.Base{P: pos}, Stmts: stmts}
}

// parseBody parses either a brace-delimited block or a single statement,
// as is legal after if/while/for headers.
func (p *Parser) parseBody() ast.Stmt {
	if p.cur().Is("{") {
		return p.parseBlock()
	}
	return p.parseStatement()
}

func (p *Parser) parseStatement() ast.Stmt {
	t := p.cur()
	if t.Kind == token.Word {
		switch t.Text {
		case "var":
			return p.parseVarDecl(false)
		case "const":
			return p.parseVarDecl(true)
		case "if":
			return p.parseIf()
		case "while":
			return p.parseWhile()
		case "for":
			return p.parseFor()
		case "try":
			return p.parseTry()
		case "break":
			pos := p.advance().Pos
			if p.loopDepth == 0 {
				p.errorf(pos, t.Line, "break outside of a loop")
			}
			p.consumeSemicolon()
			return &ast.BreakStmt{Base: ast.Base{P: pos}}
		case "continue":
			pos := p.advance().Pos
			if p.loopDepth == 0 {
				p.errorf(pos, t.Line, "continue outside of a loop")
			}
			p.consumeSemicolon()
			return &ast.ContinueStmt{Base: ast.Base{P: pos}}
		case "return":
			pos := p.advance().Pos
			if p.funcDepth == 0 {
				p.errorf(pos, t.Line, "return outside of a function")
			}
			var val ast.Expr
			if !p.cur().Is(";") && !p.cur().Is("}") && !p.atEnd() && p.cur().Pos.Line == pos.Line {
				val = p.Expression(0)
			}
			p.consumeSemicolon()
			return &ast.ReturnStmt{Base: ast.Base{P: pos}, Value: val}
		case "import":
			return p.parseImport()
		case "export":
			return p.parseExport()
		}
	}
	if t.Is("{") {
		return p.parseBlock()
	}
	return p.parseExprStatement()
}

func (p *Parser) parseVarDecl(isConst bool) ast.Stmt {
	pos := p.advance().Pos // "var" / "const"
	name := p.cur().Text
	p.advance()
	var init ast.Expr
	if p.Optional("=") {
		init = p.Expression(powAssign)
	} else if isConst {
		p.errorf(pos, p.cur().Line, "const %q requires an initializer", name)
	}
	p.consumeSemicolon()
	return &ast.VarDecl{Base: ast.Base{P: pos}, Name: name, Init: init, Const: isConst}
}

func (p *Parser) parseIf() ast.Stmt {
	pos := p.advance().Pos // "if"
	p.Required("(")
	cond := p.Expression(0)
	p.Required(")")
	then := p.parseBody()
	var elseStmt ast.Stmt
	if p.Optional("else") {
		if p.cur().Is("if") {
			elseStmt = p.parseIf()
		} else {
			elseStmt = p.parseBody()
		}
	}
	return &ast.IfStmt{Base: ast.Base{P: pos}, Cond: cond, Then: then, Else: elseStmt}
}

func (p *Parser) parseWhile() ast.Stmt {
	pos := p.advance().Pos // "while"
	p.Required("(")
	cond := p.Expression(0)
	p.Required(")")
	p.loopDepth++
	body := p.parseBody()
	p.loopDepth--
	return &ast.WhileStmt{Base: ast.Base{P: pos}, Cond: cond, Body: body}
}

func (p *Parser) parseFor() ast.Stmt {
	pos := p.advance().Pos // "for"
	p.Required("(")
	var init ast.Stmt
	if !p.cur().Is(";") {
		if p.cur().Is("var") || p.cur().Is("const") {
			init = p.parseVarDecl(p.cur().Is("const"))
		} else {
			init = p.parseExprStatement()
		}
	} else {
		p.advance() // ";"
	}
	var cond ast.Expr
	if !p.cur().Is(";") {
		cond = p.Expression(0)
	}
	p.Required(";")
	var next ast.Expr
	if !p.cur().Is(")") {
		next = p.Expression(0)
	}
	p.Required(")")
	p.loopDepth++
	body := p.parseBody()
	p.loopDepth--
	return &ast.ForStmt{Base: ast.Base{P: pos}, Init: init, Cond: cond, Next: next, Body: body}
}

func (p *Parser) parseTry() ast.Stmt {
	pos := p.advance().Pos // "try"
	body := p.parseBlock()
	stmt := &ast.TryStmt{Base: ast.Base{P: pos}, Body: body}
	if p.Optional("catch") {
		stmt.HasCatch = true
		if p.Optional("(") {
			stmt.CatchParam = p.cur().Text
			p.advance()
			p.Required(")")
		}
		stmt.CatchBody = p.parseBlock()
	}
	if p.Optional("finally") {
		stmt.HasFinally = true
		stmt.FinallyBody = p.parseBlock()
	}
	if !stmt.HasCatch && !stmt.HasFinally {
		p.errorf(pos, p.cur().Line, "try requires a catch, a finally, or both")
	}
	return stmt
}

func (p *Parser) parseImport() ast.Stmt {
	pos := p.advance().Pos // "import"
	if !p.atModuleScope {
		p.errorf(pos, p.cur().Line, "import is only allowed at module scope")
	}
	name := p.cur().Text
	p.advance()
	p.Required("from")
	pathTok := p.cur()
	p.advance()
	p.consumeSemicolon()
	return &ast.ImportDecl{Base: ast.Base{P: pos}, Name: name, Path: pathTok.Text}
}

func (p *Parser) parseExport() ast.Stmt {
	pos := p.advance().Pos // "export"
	if !p.atModuleScope {
		p.errorf(pos, p.cur().Line, "export is only allowed at module scope")
	}
	p.Required("const")
	name := p.cur().Text
	p.advance()
	p.Required("=")
	init := p.Expression(powAssign)
	p.consumeSemicolon()
	return &ast.ExportConstDecl{Base: ast.Base{P: pos}, Name: name, Init: init}
}

// parseExprStatement covers the remaining statement forms: bare calls,
// assignments, and throw; the grammar restricts expression-statements to
// these, but the parser is lenient and lets the resolver/emitter ignore
// dead sub-expressions rather than rejecting them outright.
func (p *Parser) parseExprStatement() ast.Stmt {
	pos := p.cur().Pos
	expr := p.Expression(0)
	p.consumeSemicolon()
	return &ast.ExprStmt{Base: ast.Base{P: pos}, X: expr}
}
