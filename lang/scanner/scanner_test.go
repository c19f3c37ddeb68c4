package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loxlang/golox/lang/scanner"
	"github.com/loxlang/golox/lang/token"
)

func scanAll(t *testing.T, src string) ([]scanner.Token, []string) {
	t.Helper()

	var errs []string
	var s scanner.Scanner
	s.Init("test.lox", []byte(src), func(pos token.Position, msg string) {
		errs = append(errs, msg)
	})

	var toks []scanner.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks, errs
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks, errs := scanAll(t, "(){};,.+-*!!====<<=>>=/")
	require.Empty(t, errs)

	want := []token.Token{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.SEMICOLON,
		token.COMMA, token.DOT, token.PLUS, token.MINUS, token.STAR,
		token.BANG, token.BANG_EQ, token.EQEQ, token.EQ, token.LT, token.LE, token.GT,
		token.GE, token.SLASH, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, k := range want {
		require.Equalf(t, k, toks[i].Kind, "token %d", i)
	}
}

func TestScanLineComment(t *testing.T) {
	toks, errs := scanAll(t, "var x = 1; // a comment\nprint x;")
	require.Empty(t, errs)
	require.Equal(t, token.VAR, toks[0].Kind)
	// the comment must not produce any tokens, and line tracking continues
	last := toks[len(toks)-1]
	require.Equal(t, token.EOF, last.Kind)
	require.Equal(t, 2, last.Line)
}

func TestScanString(t *testing.T) {
	toks, errs := scanAll(t, `"hello world"`)
	require.Empty(t, errs)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "hello world", toks[0].Lexeme)
}

func TestScanUnterminatedString(t *testing.T) {
	toks, errs := scanAll(t, `"hello`)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "Unterminated string")
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
}

func TestScanNumbers(t *testing.T) {
	toks, errs := scanAll(t, "123 1.5 0.25")
	require.Empty(t, errs)
	require.Equal(t, "123", toks[0].Lexeme)
	require.Equal(t, "1.5", toks[1].Lexeme)
	require.Equal(t, "0.25", toks[2].Lexeme)
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks, errs := scanAll(t, "class fun this super nil true false myVar")
	require.Empty(t, errs)
	want := []token.Token{
		token.CLASS, token.FUN, token.THIS, token.SUPER, token.NIL, token.TRUE,
		token.FALSE, token.IDENT, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, k := range want {
		require.Equalf(t, k, toks[i].Kind, "token %d", i)
	}
}

func TestScanUnexpectedCharacter(t *testing.T) {
	_, errs := scanAll(t, "@")
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "Unexpected character")
}
