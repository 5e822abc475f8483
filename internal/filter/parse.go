// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// parseTrace can be set by tests to trace the parser.
var parseTrace bool

// Operator precedence, from loosest to tightest.
const (
	precNone = iota
	precDisjunction
	precConjunction
	precPrefix
)

// A ParseError reports malformed filter input.
type ParseError struct {
	Token Token  // token at which the error was found; zero for validation errors
	Msg   string // description of the problem
	Kind  Kind   // qualifier kind at fault, for validation errors

	incomplete bool // input ended early; more input might fix it
}

func (e *ParseError) Error() string {
	if e.Token.Pos == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%d: %s", e.Token.Pos, e.Msg)
}

// Parse parses a filter into an [Expr].
// The empty string parses as [EmptyQualifier].
// Qualifier names are resolved with [LookupKind];
// unknown names are kept as written and reported by [Validate].
// Errors are of type [*LexError] or [*ParseError].
func Parse(input string) (Expr, error) {
	if input == "" {
		return EmptyQualifier(), nil
	}
	toks, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.expr(precNone)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != TokenEOF {
		return nil, p.errorf(tok, "unexpected %s after expression", tok)
	}
	return e, nil
}

// Check reports whether input is a valid filter or
// a prefix of one: it returns false only for input that
// no amount of further typing can make valid.
func Check(input string) bool {
	_, err := Parse(input)
	if err == nil {
		return true
	}
	switch err := err.(type) {
	case *ParseError:
		return err.incomplete
	case *LexError:
		return err.Char == '"'
	}
	return false
}

// parser holds the state of a single parse.
type parser struct {
	toks []Token // always ends with TokenEOF
	i    int     // index of the next token
}

// peek returns the next token without consuming it.
func (p *parser) peek() Token {
	return p.peekAt(0)
}

// peekAt returns the token n places past the next one.
// Past the end of the input it returns the EOF token.
func (p *parser) peekAt(n int) Token {
	return p.toks[min(p.i+n, len(p.toks)-1)]
}

// next consumes and returns the next token.
func (p *parser) next() Token {
	tok := p.peek()
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return tok
}

func (p *parser) errorf(tok Token, format string, args ...any) error {
	return &ParseError{Token: tok, Msg: fmt.Sprintf(format, args...)}
}

// unexpected reports that tok is not allowed where it appears.
// An EOF token makes the error an incomplete-input error.
func (p *parser) unexpected(tok Token, format string, args ...any) error {
	err := &ParseError{Token: tok, Msg: fmt.Sprintf(format, args...)}
	if tok.Kind == TokenEOF {
		err.incomplete = true
	}
	return err
}

// infixPrec returns the precedence of kind when it follows
// an expression. Tokens that can start an expression
// are an implicit AND.
func infixPrec(kind TokenKind) int {
	switch kind {
	case TokenAnd, TokenSymbol, TokenNot, TokenLparen, TokenQuoted:
		return precConjunction
	case TokenOr:
		return precDisjunction
	}
	return precNone
}

// expr parses an expression whose operators bind tighter than prec.
func (p *parser) expr(prec int) (e Expr, err error) {
	fn := trace("Expr")
	defer func() { fn(e, err) }()

	tok := p.next()
	var left Expr
	switch tok.Kind {
	case TokenLparen:
		left, err = p.group()
	case TokenNot:
		var x Expr
		x, err = p.expr(precPrefix)
		left = &Negation{Expr: x}
	case TokenQuoted:
		left = &Qualifier{Kind: KindKeyword, Content: Text(tok.Text)}
	case TokenSymbol:
		left, err = p.qualifier(tok)
	default:
		return nil, p.unexpected(tok, "expected expression, found %s", tok)
	}
	if err != nil {
		return nil, err
	}

	for prec < infixPrec(p.peek().Kind) {
		op := p.peek()
		switch op.Kind {
		case TokenOr:
			p.next()
			right, err := p.expr(precDisjunction)
			if err != nil {
				return nil, err
			}
			left = &Disjunction{Left: left, Right: right}
		case TokenAnd:
			p.next()
			fallthrough
		default:
			right, err := p.expr(precConjunction)
			if err != nil {
				return nil, err
			}
			left = &Conjunction{Left: left, Right: right}
		}
	}
	return left, nil
}

// group parses the rest of a parenthesized expression.
func (p *parser) group() (e Expr, err error) {
	fn := trace("Group")
	defer func() { fn(e, err) }()

	e, err = p.expr(precNone)
	if err != nil {
		return nil, err
	}
	if tok := p.next(); tok.Kind != TokenRparen {
		return nil, p.unexpected(tok, "expected ), found %s", tok)
	}
	return e, nil
}

// qualifier parses a qualifier whose name is tok.
func (p *parser) qualifier(tok Token) (e Expr, err error) {
	fn := trace("Qualifier")
	defer func() { fn(e, err) }()

	kind, ok := LookupKind(tok.Text)
	if !ok {
		switch strings.ToLower(tok.Text) {
		case string(KindEmpty), string(KindFalse), string(KindKeyword):
			return nil, p.errorf(tok, "unknown qualifier %q", tok.Text)
		}
		kind = Kind(tok.Text)
	}

	switch next := p.next(); next.Kind {
	case TokenColon:
		e, err = p.colonContent(kind)
		for err == nil && p.peek().Kind == TokenSemicolon {
			p.next()
			var right Expr
			right, err = p.colonContent(kind)
			e = &Disjunction{Left: e, Right: right}
		}
		if err != nil {
			return nil, err
		}
		return e, nil
	case TokenLparen:
		return p.parenContent(kind)
	default:
		return nil, p.unexpected(next, "expected : or ( after %s, found %s", tok.Text, next)
	}
}

// colonContent parses the content after kind:.
func (p *parser) colonContent(kind Kind) (Expr, error) {
	tok := p.peek()
	switch {
	case kind == KindSort:
		return p.sortKeys()
	case kind == KindID && p.isCompoundID():
		return p.compoundID()
	}

	switch tok.Kind {
	case TokenLessThan, TokenLessThanEquals, TokenGreaterThan, TokenGreaterThanEquals:
		return p.rangeOp(kind)
	case TokenDate:
		return p.dateOrRange(kind)
	case TokenQuoted:
		p.next()
		if c, ok := quotedRange(kind, tok.Text); ok {
			return &Qualifier{Kind: kind, Content: c}, nil
		}
		return &Qualifier{Kind: kind, Content: Text(tok.Text)}, nil
	case TokenSymbol:
		if _, err := strconv.Atoi(tok.Text); err == nil {
			return p.numberOrRange(kind)
		}
		p.next()
		return &Qualifier{Kind: kind, Content: symbolContent(kind, tok.Text)}, nil
	}
	return nil, p.unexpected(tok, "invalid content for %s: %s", kind, tok)
}

// quotedRange reports whether the quoted colon content s,
// such as " > 2014-5-1 " or "3 .. 5", is a comparison or range
// and if so returns it. A single quoted date or number
// stays text, as in title:"2014".
func quotedRange(kind Kind, s string) (Content, bool) {
	if kind == KindSort {
		return nil, false
	}
	toks, err := Tokenize(s)
	if err != nil || len(toks) < 3 {
		return nil, false
	}
	switch toks[0].Kind {
	case TokenLessThan, TokenLessThanEquals, TokenGreaterThan, TokenGreaterThanEquals, TokenDate:
	case TokenSymbol:
		if _, err := strconv.Atoi(toks[0].Text); err != nil {
			return nil, false
		}
	default:
		return nil, false
	}
	sub := &parser{toks: toks}
	e, err := sub.colonContent(kind)
	if err != nil || sub.peek().Kind != TokenEOF {
		return nil, false
	}
	q, ok := e.(*Qualifier)
	if !ok {
		return nil, false
	}
	switch q.Content.(type) {
	case DateRange, NumberRange:
		return q.Content, true
	}
	return nil, false
}

// isCompoundID reports whether the next tokens are an
// owner/repo#number reference, which lexes as a symbol
// immediately followed by a symbol starting with #.
func (p *parser) isCompoundID() bool {
	repo, num := p.peekAt(0), p.peekAt(1)
	return repo.Kind == TokenSymbol && num.Kind == TokenSymbol &&
		strings.HasPrefix(num.Text, "#") && !strings.HasPrefix(repo.Text, "#") &&
		repo.Pos+len(repo.Text) == num.Pos
}

// compoundID parses owner/repo#number into
// repo:owner/repo id:number.
func (p *parser) compoundID() (Expr, error) {
	repo := p.next()
	num := p.next()
	n, err := strconv.Atoi(num.Text[1:])
	if err != nil {
		return nil, p.errorf(num, "invalid issue number %s", num.Text)
	}
	return &Conjunction{
		Left:  &Qualifier{Kind: KindRepo, Content: Text(repo.Text)},
		Right: &Qualifier{Kind: KindID, Content: Number(n)},
	}, nil
}

// symbolContent returns the content for a non-numeric symbol.
// An id may be written #number.
func symbolContent(kind Kind, s string) Content {
	if kind == KindID && strings.HasPrefix(s, "#") {
		if n, err := strconv.Atoi(s[1:]); err == nil {
			return Number(n)
		}
	}
	return Text(s)
}

// rangeOp parses a comparison such as >=5 or <2014-1-1.
func (p *parser) rangeOp(kind Kind) (Expr, error) {
	op := p.next()
	var lower bool // bound is the start of the range
	var strict bool
	switch op.Kind {
	case TokenGreaterThan:
		lower, strict = true, true
	case TokenGreaterThanEquals:
		lower = true
	case TokenLessThan:
		strict = true
	}

	tok := p.next()
	switch tok.Kind {
	case TokenDate:
		d, err := p.date(tok)
		if err != nil {
			return nil, err
		}
		var r DateRange
		if lower {
			r, err = NewDateRange(&d, nil, strict)
		} else {
			r, err = NewDateRange(nil, &d, strict)
		}
		if err != nil {
			panic("can't happen")
		}
		return &Qualifier{Kind: kind, Content: r}, nil
	case TokenSymbol:
		n, err := strconv.Atoi(tok.Text)
		if err != nil {
			break
		}
		var r NumberRange
		if lower {
			r, err = NewNumberRange(&n, nil, strict)
		} else {
			r, err = NewNumberRange(nil, &n, strict)
		}
		if err != nil {
			panic("can't happen")
		}
		return &Qualifier{Kind: kind, Content: r}, nil
	}
	return nil, p.unexpected(tok, "operator %s needs a number or date, found %s", op.Text, tok)
}

// dateOrRange parses a date or a date range.
func (p *parser) dateOrRange(kind Kind) (Expr, error) {
	start, err := p.date(p.next())
	if err != nil {
		return nil, err
	}
	if p.peek().Kind != TokenDotDot {
		return &Qualifier{Kind: kind, Content: Date{start}}, nil
	}
	p.next()

	var r DateRange
	switch tok := p.next(); tok.Kind {
	case TokenDate:
		end, err := p.date(tok)
		if err != nil {
			return nil, err
		}
		r, err = NewDateRange(&start, &end, false)
	case TokenStar:
		r, err = NewDateRange(&start, nil, false)
	default:
		return nil, p.unexpected(tok, "right side of .. must be a date or *, found %s", tok)
	}
	if err != nil {
		panic("can't happen")
	}
	return &Qualifier{Kind: kind, Content: r}, nil
}

// numberOrRange parses a number or a number range.
func (p *parser) numberOrRange(kind Kind) (Expr, error) {
	start, err := strconv.Atoi(p.next().Text)
	if err != nil {
		panic("can't happen")
	}
	if p.peek().Kind != TokenDotDot {
		return &Qualifier{Kind: kind, Content: Number(start)}, nil
	}
	p.next()

	var r NumberRange
	tok := p.next()
	switch tok.Kind {
	case TokenSymbol:
		end, err := strconv.Atoi(tok.Text)
		if err != nil {
			return nil, p.errorf(tok, "right side of .. must be a number or *, found %s", tok)
		}
		r, err = NewNumberRange(&start, &end, false)
	case TokenStar:
		r, err = NewNumberRange(&start, nil, false)
	default:
		return nil, p.unexpected(tok, "right side of .. must be a number or *, found %s", tok)
	}
	if err != nil {
		panic("can't happen")
	}
	return &Qualifier{Kind: kind, Content: r}, nil
}

// date converts a date token to a civil.Date.
func (p *parser) date(tok Token) (civil.Date, error) {
	var f [3]int
	for i, s := range strings.SplitN(tok.Text, "-", 3) {
		f[i], _ = strconv.Atoi(s)
	}
	d := civil.Date{Year: f[0], Month: time.Month(f[1]), Day: f[2]}
	if !d.IsValid() {
		return civil.Date{}, p.errorf(tok, "invalid date %s", tok.Text)
	}
	return d, nil
}

// sortKeys parses a comma-separated list of sort keys,
// each optionally preceded by a negation.
func (p *parser) sortKeys() (Expr, error) {
	var keys SortKeys
	for {
		var key SortKey
		if p.peek().Kind == TokenNot {
			p.next()
			key.Inverted = true
		}
		tok := p.next()
		if tok.Kind != TokenSymbol {
			return nil, p.unexpected(tok, "expected sort key, found %s", tok)
		}
		key.Field = tok.Text
		keys = append(keys, key)
		if p.peek().Kind != TokenComma {
			return &Qualifier{Kind: KindSort, Content: keys}, nil
		}
		p.next()
	}
}

// parenContent parses the content of kind(...),
// after the opening parenthesis.
func (p *parser) parenContent(kind Kind) (e Expr, err error) {
	if kind == KindSort {
		e, err := p.sortKeys()
		if err != nil {
			return nil, err
		}
		if tok := p.next(); tok.Kind != TokenRparen {
			return nil, p.unexpected(tok, "expected ), found %s", tok)
		}
		return e, nil
	}

	var words []Token
	for {
		tok := p.next()
		switch tok.Kind {
		case TokenSymbol, TokenQuoted, TokenDate:
			words = append(words, tok)
			continue
		case TokenRparen:
		default:
			return nil, p.unexpected(tok, "expected ), found %s", tok)
		}
		break
	}

	if len(words) != 1 {
		var texts []string
		for _, w := range words {
			texts = append(texts, w.Text)
		}
		return &Qualifier{Kind: kind, Content: Text(strings.Join(texts, " "))}, nil
	}

	w := words[0]
	switch w.Kind {
	case TokenDate:
		d, err := p.date(w)
		if err != nil {
			return nil, err
		}
		return &Qualifier{Kind: kind, Content: Date{d}}, nil
	case TokenSymbol:
		if n, err := strconv.Atoi(w.Text); err == nil {
			return &Qualifier{Kind: kind, Content: Number(n)}, nil
		}
		return &Qualifier{Kind: kind, Content: symbolContent(kind, w.Text)}, nil
	}
	return &Qualifier{Kind: kind, Content: Text(w.Text)}, nil
}

// Validate reports the first qualifier in e that cannot be
// evaluated: one with an unknown kind, or a count that is not
// a number. The error is a [*ParseError].
func Validate(e Expr) error {
	for _, q := range Find(e, func(*Qualifier) bool { return true }) {
		if !q.Kind.Known() {
			return &ParseError{Kind: q.Kind, Msg: fmt.Sprintf("unknown qualifier %q", string(q.Kind))}
		}
		if q.Kind == KindCount {
			if _, ok := q.Content.(Number); !ok {
				return &ParseError{Kind: q.Kind, Msg: fmt.Sprintf("count must be %s, not %v", KindCount.ValidInputs(), q.Content)}
			}
		}
	}
	return nil
}

var traceIndent = 0

// trace is used to trace the parser.
func trace(fn string) func(Expr, error) {
	if parseTrace {
		fmt.Printf("%*s%s\n", traceIndent, "", fn)
		traceIndent++
		return func(e Expr, err error) {
			traceIndent--
			fmt.Printf("%*s%s returning ", traceIndent, "", fn)
			if e == nil && err == nil {
				fmt.Printf("nil, nil\n")
			} else if e == nil {
				fmt.Printf("error %v\n", err)
			} else if err == nil {
				fmt.Printf("%s\n", e)
			} else {
				fmt.Printf("error %v %s\n", err, e)
			}
		}
	}
	return func(Expr, error) {}
}
