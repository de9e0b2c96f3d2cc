// Package lexer implements Alto's lexical analyzer: source text in, a
// finite token stream out, terminated by a sentinel End token.
package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/altolang/alto/internal/token"
)

// Error is a lexical error with source position (row/column are 1-based).
type Error struct {
	Pos     token.Position
	Message string
}

func (e *Error) Error() string { return e.Message }

// longest-first so "..." is tried before ".", and each two-character
// operator before its one-character prefix.
var punctuation = []string{
	"...",
	"=>", "==", "!=", "<=", ">=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"(", ")", "[", "]", "{", "}", ",", ".", ";", ":", "?",
	"+", "-", "*", "/", "%", "=", "<", ">", "!", "&", "|", "^",
}

// Lexer scans Alto source text into a Token stream. Columns and the
// per-line Line text are tracked in runes, not bytes, so multi-byte UTF-8
// source (identifiers, string contents) reports stable positions.
type Lexer struct {
	src   []rune
	lines []string
	pos   int // rune index into src
	row   int // 1-based
	col   int // 1-based, within the current row
	errs  []*Error
}

// New constructs a Lexer over source text, skipping a leading `#!` shebang
// line if present.
func New(src string) *Lexer {
	text := src
	if strings.HasPrefix(text, "#!") {
		if i := strings.IndexAny(text, "\n\r"); i >= 0 {
			text = text[i:]
		} else {
			text = ""
		}
	}
	lines := splitLines(text)
	return &Lexer{src: []rune(text), lines: lines, row: 1, col: 1}
}

// splitLines splits on \n, \r\n, or lone \r.
func splitLines(s string) []string {
	var lines []string
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c == '\r' {
			lines = append(lines, b.String())
			b.Reset()
			if i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			continue
		}
		if c == '\n' {
			lines = append(lines, b.String())
			b.Reset()
			continue
		}
		b.WriteRune(c)
	}
	lines = append(lines, b.String())
	return lines
}

// Errors returns the lexical errors accumulated so far.
func (l *Lexer) Errors() []*Error { return l.errs }

func (l *Lexer) peekRune(offset int) (rune, bool) {
	i := l.pos + offset
	if i < 0 || i >= len(l.src) {
		return 0, false
	}
	return l.src[i], true
}

func (l *Lexer) currentLine() string {
	if l.row-1 < len(l.lines) {
		return l.lines[l.row-1]
	}
	return ""
}

func (l *Lexer) advance() (rune, bool) {
	c, ok := l.peekRune(0)
	if !ok {
		return 0, false
	}
	l.pos++
	if c == '\n' || c == '\r' {
		if c == '\r' {
			if n, ok := l.peekRune(0); ok && n == '\n' {
				l.pos++
			}
		}
		l.row++
		l.col = 1
	} else {
		l.col++
	}
	return c, true
}

func isIdentStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isIdentPart(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}

// Next scans and returns the next token. After End has been returned once,
// every subsequent call returns End again.
func (l *Lexer) Next() token.Token {
	l.skipTrivia()

	startRow, startCol := l.row, l.col
	line := l.currentLine()

	c, ok := l.peekRune(0)
	if !ok {
		return token.Token{Kind: token.End, Pos: token.Position{Line: startRow, Column: startCol}, Line: line}
	}

	switch {
	case isIdentStart(c):
		return l.scanWord(startRow, startCol, line)
	case unicode.IsDigit(c):
		return l.scanNumber(startRow, startCol, line)
	case c == '"' || c == '\'':
		return l.scanString(startRow, startCol, line)
	default:
		if tok, ok := l.scanPunctuation(startRow, startCol, line); ok {
			return tok
		}
		l.advance()
		msg := "unexpected character " + strconv.QuoteRune(c)
		l.errs = append(l.errs, &Error{Pos: token.Position{Line: startRow, Column: startCol}, Message: msg})
		return token.Token{
			Kind: token.Illegal, Text: string(c), Lexeme: string(c),
			Pos: token.Position{Line: startRow, Column: startCol}, Line: line,
		}
	}
}

func (l *Lexer) skipTrivia() {
	for {
		c, ok := l.peekRune(0)
		if !ok {
			return
		}
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			l.advance()
			continue
		}
		if c == '/' {
			if n, ok := l.peekRune(1); ok && n == '/' {
				for {
					c, ok := l.peekRune(0)
					if !ok || c == '\n' || c == '\r' {
						break
					}
					l.advance()
				}
				continue
			}
		}
		return
	}
}

func (l *Lexer) scanWord(row, col int, line string) token.Token {
	var b strings.Builder
	for {
		c, ok := l.peekRune(0)
		if !ok || !isIdentPart(c) {
			break
		}
		b.WriteRune(c)
		l.advance()
	}
	text := b.String()
	return token.Token{Kind: token.Word, Text: text, Lexeme: text, Pos: token.Position{Line: row, Column: col}, Line: line}
}

func (l *Lexer) scanNumber(row, col int, line string) token.Token {
	var b strings.Builder
	for {
		c, ok := l.peekRune(0)
		if !ok || !unicode.IsDigit(c) {
			break
		}
		b.WriteRune(c)
		l.advance()
	}
	if c, ok := l.peekRune(0); ok && c == '.' {
		if n, ok := l.peekRune(1); ok && unicode.IsDigit(n) {
			b.WriteRune(c)
			l.advance()
			for {
				c, ok := l.peekRune(0)
				if !ok || !unicode.IsDigit(c) {
					break
				}
				b.WriteRune(c)
				l.advance()
			}
		}
	}
	if c, ok := l.peekRune(0); ok && (c == 'e' || c == 'E') {
		save := l.pos
		var exp strings.Builder
		exp.WriteRune(c)
		l.advance()
		if s, ok := l.peekRune(0); ok && (s == '+' || s == '-') {
			exp.WriteRune(s)
			l.advance()
		}
		digits := 0
		for {
			d, ok := l.peekRune(0)
			if !ok || !unicode.IsDigit(d) {
				break
			}
			exp.WriteRune(d)
			l.advance()
			digits++
		}
		if digits > 0 {
			b.WriteString(exp.String())
		} else {
			l.pos = save
		}
	}
	text := b.String()
	n, _ := strconv.ParseFloat(text, 64)
	return token.Token{Kind: token.Number, Text: text, Lexeme: text, Number: n, Pos: token.Position{Line: row, Column: col}, Line: line}
}

func (l *Lexer) scanString(row, col int, line string) token.Token {
	quote, _ := l.advance()
	var b strings.Builder
	var raw strings.Builder
	raw.WriteRune(quote)
	for {
		c, ok := l.peekRune(0)
		if !ok {
			l.errs = append(l.errs, &Error{Pos: token.Position{Line: row, Column: col}, Message: "unterminated string literal"})
			break
		}
		if c == quote {
			l.advance()
			raw.WriteRune(c)
			break
		}
		if c == '\\' {
			l.advance()
			raw.WriteRune(c)
			esc, ok := l.peekRune(0)
			if !ok {
				l.errs = append(l.errs, &Error{Pos: token.Position{Line: row, Column: col}, Message: "unterminated string literal"})
				break
			}
			l.advance()
			raw.WriteRune(esc)
			switch esc {
			case 'n':
				b.WriteRune('\n')
			case 'r':
				b.WriteRune('\r')
			case '"':
				b.WriteRune('"')
			case '\'':
				b.WriteRune('\'')
			case '\\':
				b.WriteRune('\\')
			default:
				b.WriteRune(esc)
			}
			continue
		}
		l.advance()
		b.WriteRune(c)
		raw.WriteRune(c)
	}
	return token.Token{Kind: token.String, Text: b.String(), Lexeme: raw.String(), Pos: token.Position{Line: row, Column: col}, Line: line}
}

func (l *Lexer) scanPunctuation(row, col int, line string) (token.Token, bool) {
	for _, p := range punctuation {
		if l.matchAt(p) {
			for range []rune(p) {
				l.advance()
			}
			return token.Token{Kind: token.Punctuation, Text: p, Lexeme: p, Pos: token.Position{Line: row, Column: col}, Line: line}, true
		}
	}
	return token.Token{}, false
}

func (l *Lexer) matchAt(s string) bool {
	runes := []rune(s)
	for i, r := range runes {
		c, ok := l.peekRune(i)
		if !ok || c != r {
			return false
		}
	}
	return true
}

// Tokens drains the full stream, including the terminating End token.
func (l *Lexer) Tokens() []token.Token {
	var out []token.Token
	for {
		t := l.Next()
		out = append(out, t)
		if t.Kind == token.End {
			return out
		}
	}
}

// RuneCount reports the number of runes consumed so far; exposed mainly for
// tests that want to assert the lexer advances monotonically.
func (l *Lexer) RuneCount() int { return utf8.RuneCountInString(string(l.src[:l.pos])) }
