// Package scanner tokenizes Lox source text for the compiler, following the
// lazy, pull-based shape of the teacher's scanner: construct once, call
// Scan repeatedly, and report lexical errors through a caller-supplied
// handler rather than an internally owned error slice.
package scanner

import (
	"go/scanner"

	"github.com/loxlang/golox/lang/token"
)

type (
	// Error and ErrorList are re-exported from the standard library's
	// go/scanner package, matching the teacher's lang/scanner.Error /
	// lang/scanner.ErrorList aliases: there is no reason to hand-roll an
	// error-accumulation type when the stdlib already ships one that
	// sorts by position.
	Error     = scanner.Error
	ErrorList = scanner.ErrorList
)

// PrintError is re-exported for callers that want the stdlib's default
// error-list formatting.
var PrintError = scanner.PrintError

// Token pairs a scanned token with its lexeme and source line.
type Token struct {
	Kind   token.Token
	Lexeme string
	Line   int
}

// Scanner tokenizes a single Lox source file on demand.
type Scanner struct {
	filename string
	src      []byte
	err      func(pos token.Position, msg string)

	start   int
	current int
	line    int
}

// Init (re)initializes the scanner to tokenize src. errHandler is invoked
// for every lexical error encountered (unterminated string, unexpected
// character); it may be nil to silently ignore errors (not recommended
// outside of tests).
func (s *Scanner) Init(filename string, src []byte, errHandler func(token.Position, string)) {
	s.filename = filename
	s.src = src
	s.err = errHandler
	s.start = 0
	s.current = 0
	s.line = 1
}

func (s *Scanner) error(line int, msg string) {
	if s.err != nil {
		s.err(token.Position{Filename: s.filename, Line: line}, msg)
	}
}

func (s *Scanner) atEnd() bool { return s.current >= len(s.src) }

func (s *Scanner) advance() byte {
	c := s.src[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *Scanner) match(expected byte) bool {
	if s.atEnd() || s.src[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlphaNumeric(c byte) bool { return isAlpha(c) || isDigit(c) }

// skipWhitespace consumes spaces, tabs, carriage returns, newlines, and
// "//" line comments (spec.md §4.1: "Whitespace and // line comments are
// skipped").
func (s *Scanner) skipWhitespace() {
	for !s.atEnd() {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekNext() == '/' {
				for !s.atEnd() && s.peek() != '\n' {
					s.advance()
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func (s *Scanner) make(kind token.Token) Token {
	return Token{Kind: kind, Lexeme: string(s.src[s.start:s.current]), Line: s.line}
}

// Scan returns the next token in the source. It returns a token.EOF-kind
// Token once the source is exhausted, and keeps returning it on further
// calls.
func (s *Scanner) Scan() Token {
	s.skipWhitespace()
	s.start = s.current

	if s.atEnd() {
		return Token{Kind: token.EOF, Line: s.line}
	}

	c := s.advance()

	if isAlpha(c) {
		return s.identifier()
	}
	if isDigit(c) {
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LPAREN)
	case ')':
		return s.make(token.RPAREN)
	case '{':
		return s.make(token.LBRACE)
	case '}':
		return s.make(token.RBRACE)
	case ';':
		return s.make(token.SEMICOLON)
	case ',':
		return s.make(token.COMMA)
	case '.':
		return s.make(token.DOT)
	case '-':
		return s.make(token.MINUS)
	case '+':
		return s.make(token.PLUS)
	case '/':
		return s.make(token.SLASH)
	case '*':
		return s.make(token.STAR)
	case '!':
		if s.match('=') {
			return s.make(token.BANG_EQ)
		}
		return s.make(token.BANG)
	case '=':
		if s.match('=') {
			return s.make(token.EQEQ)
		}
		return s.make(token.EQ)
	case '<':
		if s.match('=') {
			return s.make(token.LE)
		}
		return s.make(token.LT)
	case '>':
		if s.match('=') {
			return s.make(token.GE)
		}
		return s.make(token.GT)
	case '"':
		return s.string()
	}

	s.error(s.line, "Unexpected character.")
	return s.make(token.ILLEGAL)
}

func (s *Scanner) identifier() Token {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	lexeme := string(s.src[s.start:s.current])
	return Token{Kind: token.LookupIdent(lexeme), Lexeme: lexeme, Line: s.line}
}

// number scans a decimal literal with an optional fractional part. Spec.md
// §4.1: "no exponent, no leading-dot".
func (s *Scanner) number() Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance() // consume the '.'
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.make(token.NUMBER)
}

// string scans a string literal. Escape sequences are not processed
// (spec.md §4.1); a bare '"' closes the literal.
func (s *Scanner) string() Token {
	startLine := s.line
	for !s.atEnd() && s.peek() != '"' {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		s.error(startLine, "Unterminated string.")
		return Token{Kind: token.ILLEGAL, Lexeme: string(s.src[s.start:s.current]), Line: startLine}
	}
	s.advance() // closing quote
	// Lexeme excludes the surrounding quotes.
	return Token{Kind: token.STRING, Lexeme: string(s.src[s.start+1 : s.current-1]), Line: startLine}
}
