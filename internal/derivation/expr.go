package derivation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Minimal arithmetic interpreter for custom derivation formulas. The grammar
// covers exactly what the formula whitelist admits — numbers, parentheses and
// the four operators — so the safety check and the evaluation are the same
// trusted code path.
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = { "+" | "-" } primary
//	primary = number | "(" expr ")"

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	num  float64
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	runes := []rune(input)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '+':
			tokens = append(tokens, token{kind: tokPlus})
			i++
		case r == '-':
			tokens = append(tokens, token{kind: tokMinus})
			i++
		case r == '*':
			tokens = append(tokens, token{kind: tokStar})
			i++
		case r == '/':
			tokens = append(tokens, token{kind: tokSlash})
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen})
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			lit := string(runes[start:i])
			if strings.Count(lit, ".") > 1 {
				return nil, fmt.Errorf("malformed number %q", lit)
			}
			n, err := strconv.ParseFloat(lit, 64)
			if err != nil {
				return nil, fmt.Errorf("malformed number %q", lit)
			}
			tokens = append(tokens, token{kind: tokNumber, num: n})
		default:
			return nil, fmt.Errorf("unexpected character %q", r)
		}
	}
	return tokens, nil
}

type exprParser struct {
	tokens []token
	pos    int
}

// evalExpr parses and evaluates a basic arithmetic expression.
func evalExpr(input string) (float64, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return 0, err
	}
	if len(tokens) == 0 {
		return 0, fmt.Errorf("empty expression")
	}
	p := &exprParser{tokens: tokens}
	n, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.tokens) {
		return 0, fmt.Errorf("unexpected trailing input")
	}
	return n, nil
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		switch {
		case p.accept(tokPlus):
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case p.accept(tokMinus):
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		switch {
		case p.accept(tokStar):
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case p.accept(tokSlash):
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseUnary() (float64, error) {
	negate := false
	for {
		if p.accept(tokMinus) {
			negate = !negate
			continue
		}
		if p.accept(tokPlus) {
			continue
		}
		break
	}
	n, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	if negate {
		n = -n
	}
	return n, nil
}

func (p *exprParser) parsePrimary() (float64, error) {
	if p.pos >= len(p.tokens) {
		return 0, fmt.Errorf("unexpected end of expression")
	}
	tok := p.tokens[p.pos]
	switch tok.kind {
	case tokNumber:
		p.pos++
		return tok.num, nil
	case tokLParen:
		p.pos++
		n, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if !p.accept(tokRParen) {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected token")
	}
}

func (p *exprParser) accept(kind tokenKind) bool {
	if p.pos < len(p.tokens) && p.tokens[p.pos].kind == kind {
		p.pos++
		return true
	}
	return false
}
