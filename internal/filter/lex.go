// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"fmt"
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind is the kind of a lexical token.
type TokenKind int

const (
	TokenEOF           TokenKind = iota // end of input
	TokenSymbol                         // name or bare value
	TokenAnd                            // AND, &, &&
	TokenOr                             // OR, |, ||
	TokenNot                            // NOT, ~, !, -
	TokenColon                          // :
	TokenLparen                         // (
	TokenRparen                         // )
	TokenQuoted                         // "text"
	TokenDate                           // 2006-1-2
	TokenDotDot                         // ..
	TokenComma                          // ,
	TokenSemicolon                      // ;
	TokenStar                           // *
	TokenLessThan                       // <
	TokenLessThanEquals                 // <=
	TokenGreaterThan                    // >
	TokenGreaterThanEquals              // >=
)

var tokenKindStrings = [...]string{
	TokenEOF:               "EOF",
	TokenSymbol:            "symbol",
	TokenAnd:               "AND",
	TokenOr:                "OR",
	TokenNot:               "NOT",
	TokenColon:             ":",
	TokenLparen:            "(",
	TokenRparen:            ")",
	TokenQuoted:            "quoted string",
	TokenDate:              "date",
	TokenDotDot:            "..",
	TokenComma:             ",",
	TokenSemicolon:         ";",
	TokenStar:              "*",
	TokenLessThan:          "<",
	TokenLessThanEquals:    "<=",
	TokenGreaterThan:       ">",
	TokenGreaterThanEquals: ">=",
}

// String returns the string representation of a TokenKind.
func (tk TokenKind) String() string {
	if tk < 0 || int(tk) >= len(tokenKindStrings) {
		return fmt.Sprintf("TokenKind(%d)", int(tk))
	}
	return tokenKindStrings[tk]
}

// Token is a lexical token read from a filter string.
type Token struct {
	Kind TokenKind
	Text string // source text; for TokenQuoted, the text between the quotes
	Pos  int    // 1-based column of the first byte of the token
}

// String returns a description of the token for error messages.
func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return "end of input"
	case TokenSymbol, TokenDate:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	case TokenQuoted:
		return fmt.Sprintf("%s %q", t.Kind, `"`+t.Text+`"`)
	}
	return fmt.Sprintf("%q", t.Text)
}

// A LexError reports a character that cannot start any token.
// An unterminated quoted string is reported with Char '"'.
type LexError struct {
	Char rune
	Pos  int // 1-based column
}

func (e *LexError) Error() string {
	if e.Char == '"' {
		return fmt.Sprintf("%d: unterminated quoted string", e.Pos)
	}
	return fmt.Sprintf("%d: unrecognized character %q", e.Pos, e.Char)
}

// Tokenize converts input into a sequence of tokens
// that always ends with a single [TokenEOF].
func Tokenize(input string) ([]Token, error) {
	var toks []Token
	for tok, err := range Tokens(input) {
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
	}
	return toks, nil
}

// Tokens returns an iterator over the tokens of input.
// The final token is [TokenEOF]. If the lexer finds a bad
// character the iterator yields a zero Token and the error, and stops.
// Every call to the returned iterator lexes input from the beginning.
func Tokens(input string) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		lex := lexer{input: input}
		for {
			tok, err := lex.nextToken()
			if err != nil {
				yield(Token{}, err)
				return
			}
			if !yield(tok, nil) || tok.Kind == TokenEOF {
				return
			}
		}
	}
}

// lexer is used to convert a string into a sequence of tokens.
type lexer struct {
	input string
	off   int // byte offset of the next unread byte
}

// nextToken returns the next token from the string.
// At the end of the input this returns TokenEOF.
func (lex *lexer) nextToken() (Token, error) {
	lex.skipWhite()
	start := lex.off
	rest := lex.input[start:]
	if rest == "" {
		return Token{Kind: TokenEOF, Pos: start + 1}, nil
	}

	tok := func(kind TokenKind, n int) (Token, error) {
		lex.off += n
		return Token{Kind: kind, Text: rest[:n], Pos: start + 1}, nil
	}

	// and/or are operators in any case; only upper-case NOT is,
	// so that "not" can appear as text.
	if n := lex.word(); n > 0 {
		switch w := rest[:n]; {
		case strings.EqualFold(w, "AND"):
			return tok(TokenAnd, n)
		case strings.EqualFold(w, "OR"):
			return tok(TokenOr, n)
		case w == "NOT":
			return tok(TokenNot, n)
		}
	}

	switch {
	case strings.HasPrefix(rest, "&&"):
		return tok(TokenAnd, 2)
	case rest[0] == '&':
		return tok(TokenAnd, 1)
	case strings.HasPrefix(rest, "||"):
		return tok(TokenOr, 2)
	case rest[0] == '|':
		return tok(TokenOr, 1)
	case rest[0] == '~', rest[0] == '!', rest[0] == '-':
		return tok(TokenNot, 1)
	}

	if n := dateLen(rest); n > 0 {
		return tok(TokenDate, n)
	}

	if n := symbolLen(rest); n > 0 {
		return tok(TokenSymbol, n)
	}

	switch rest[0] {
	case ':':
		return tok(TokenColon, 1)
	case '(':
		return tok(TokenLparen, 1)
	case ')':
		return tok(TokenRparen, 1)
	case '"':
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			return Token{}, &LexError{Char: '"', Pos: start + 1}
		}
		lex.off += end + 2
		return Token{Kind: TokenQuoted, Text: rest[1 : end+1], Pos: start + 1}, nil
	case ',':
		return tok(TokenComma, 1)
	case ';':
		return tok(TokenSemicolon, 1)
	case '*':
		return tok(TokenStar, 1)
	case '.':
		if strings.HasPrefix(rest, "..") {
			return tok(TokenDotDot, 2)
		}
	case '<':
		if strings.HasPrefix(rest, "<=") {
			return tok(TokenLessThanEquals, 2)
		}
		return tok(TokenLessThan, 1)
	case '>':
		if strings.HasPrefix(rest, ">=") {
			return tok(TokenGreaterThanEquals, 2)
		}
		return tok(TokenGreaterThan, 1)
	}

	r, _ := utf8.DecodeRuneInString(rest)
	return Token{}, &LexError{Char: r, Pos: start + 1}
}

// skipWhite skips over white space.
func (lex *lexer) skipWhite() {
	for lex.off < len(lex.input) {
		r, size := utf8.DecodeRuneInString(lex.input[lex.off:])
		if !unicode.IsSpace(r) {
			return
		}
		lex.off += size
	}
}

// word returns the length of the run of letters at the
// current position, or 0 if that run is followed by another
// symbol character and so is not a whole word.
func (lex *lexer) word() int {
	rest := lex.input[lex.off:]
	n := 0
	for n < len(rest) && ('A' <= rest[n] && rest[n] <= 'Z' || 'a' <= rest[n] && rest[n] <= 'z') {
		n++
	}
	if n == 0 || n > 3 {
		return 0
	}
	if n < len(rest) {
		if r, _ := utf8.DecodeRuneInString(rest[n:]); isSymbolRune(r) {
			return 0
		}
	}
	return n
}

// dateLen returns the length of the YYYY-M-D date at the start of s,
// or 0 if s does not start with one.
func dateLen(s string) int {
	n := digits(s, 4, 4)
	if n == 0 || n >= len(s) || s[n] != '-' {
		return 0
	}
	m := digits(s[n+1:], 1, 2)
	if m == 0 {
		return 0
	}
	n += 1 + m
	if n >= len(s) || s[n] != '-' {
		return 0
	}
	d := digits(s[n+1:], 1, 2)
	if d == 0 {
		return 0
	}
	return n + 1 + d
}

// digits returns the number of leading ASCII digits in s
// if that number is between min and max, and 0 otherwise.
// At most max digits are counted.
func digits(s string, min, max int) int {
	n := 0
	for n < len(s) && n < max && isDigit(rune(s[n])) {
		n++
	}
	if n < min {
		return 0
	}
	return n
}

// symbolLen returns the length of the symbol at the start of s,
// or 0 if s does not start with one.
func symbolLen(s string) int {
	r, size := utf8.DecodeRuneInString(s)
	if r != '#' && !isAlnum(r) {
		return 0
	}
	n := size
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if !isSymbolRune(r) {
			break
		}
		n += size
	}
	return n
}

// isSymbolRune reports whether r may appear after the
// first character of a symbol.
func isSymbolRune(r rune) bool {
	switch r {
	case '/', '.', '\'', '+', '-':
		return true
	}
	return isAlnum(r)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
