package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/symflow/symx"
)

// Expression syntax, loosest to tightest binding:
//
//	|  ^  &  <<|>>|>>>  +|-  *|/|%  unary -|~
//
// Leaves are integer literals (decimal or 0x hex) and variables, both with
// an optional width suffix (a:32, 255:8). The default width is 64 bits.

const defaultWidth = 64

// tokenize splits input into tokens, recognising the multi-char shift
// operators and the width-suffix colon.
func tokenize(input string) ([]string, error) {
	var tokens []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(input); i++ {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t':
			flush()

		case ch == '<' && i+1 < len(input) && input[i+1] == '<':
			flush()
			tokens = append(tokens, "<<")
			i++
		case ch == '>' && strings.HasPrefix(input[i:], ">>>"):
			flush()
			tokens = append(tokens, ">>>")
			i += 2
		case ch == '>' && i+1 < len(input) && input[i+1] == '>':
			flush()
			tokens = append(tokens, ">>")
			i++

		case strings.ContainsRune("()|^&+-*/%~:", rune(ch)):
			flush()
			tokens = append(tokens, string(ch))

		case ch == '_' || unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch)):
			cur.WriteByte(ch)

		default:
			return nil, fmt.Errorf("unexpected character %q", ch)
		}
	}
	flush()
	return tokens, nil
}

// parser is a recursive-descent parser over the token stream.
type parser struct {
	tokens []string
	pos    int
}

// parseExpr parses a full expression from input.
func parseExpr(input string) (*symx.Expr, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	expr, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok != "" {
		return nil, fmt.Errorf("unexpected token %q", tok)
	}
	return expr, nil
}

// Binary operators by precedence level, loosest first.
var precedence = [][]string{
	{"|"},
	{"^"},
	{"&"},
	{"<<", ">>", ">>>"},
	{"+", "-"},
	{"*", "/", "%"},
}

var binaryOps = map[string]symx.Op{
	"|":   symx.Or,
	"^":   symx.Xor,
	"&":   symx.And,
	"<<":  symx.Shl,
	">>":  symx.LShr,
	">>>": symx.AShr,
	"+":   symx.Add,
	"-":   symx.Sub,
	"*":   symx.Mul,
	"/":   symx.UDiv,
	"%":   symx.URem,
}

func (p *parser) parseBinary(level int) (*symx.Expr, error) {
	if level >= len(precedence) {
		return p.parseUnary()
	}

	lhs, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for contains(precedence[level], p.peek()) {
		op := binaryOps[p.next()]
		rhs, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		if expr, err := buildBinary(op, lhs, rhs); err != nil {
			return nil, err
		} else {
			lhs = expr
		}
	}
	return lhs, nil
}

func (p *parser) parseUnary() (*symx.Expr, error) {
	switch p.peek() {
	case "-":
		p.next()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return symx.NewUnary(symx.Neg, rhs), nil
	case "~":
		p.next()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return symx.NewUnary(symx.Not, rhs), nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (*symx.Expr, error) {
	tok := p.next()
	switch {
	case tok == "":
		return nil, fmt.Errorf("unexpected end of expression")

	case tok == "(":
		expr, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing != ")" {
			return nil, fmt.Errorf("expected ), found %q", closing)
		}
		return expr, nil

	case unicode.IsDigit(rune(tok[0])):
		value, err := strconv.ParseUint(tok, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", tok)
		}
		width, err := p.parseWidthSuffix()
		if err != nil {
			return nil, err
		}
		return symx.NewConstant(value, width), nil

	case tok[0] == '_' || unicode.IsLetter(rune(tok[0])):
		width, err := p.parseWidthSuffix()
		if err != nil {
			return nil, err
		}
		return symx.NewVariable(tok, width), nil

	default:
		return nil, fmt.Errorf("unexpected token %q", tok)
	}
}

// parseWidthSuffix consumes an optional ":width" after a leaf.
func (p *parser) parseWidthSuffix() (uint, error) {
	if p.peek() != ":" {
		return defaultWidth, nil
	}
	p.next()
	tok := p.next()
	width, err := strconv.ParseUint(tok, 10, 8)
	if err != nil || width < 1 || width > 64 {
		return 0, fmt.Errorf("invalid width %q", tok)
	}
	return uint(width), nil
}

// buildBinary constructs a binary node, turning engine width asserts into
// parse errors.
func buildBinary(op symx.Op, lhs, rhs *symx.Expr) (expr *symx.Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return symx.NewBinary(op, lhs, rhs), nil
}

func (p *parser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *parser) next() string {
	tok := p.peek()
	if tok != "" {
		p.pos++
	}
	return tok
}

func contains(list []string, s string) bool {
	if s == "" {
		return false
	}
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
