package calculation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// The incentive formula language is deliberately tiny: the four arithmetic
// operators, parentheses, unary minus, numeric literals and a fixed set of
// named variables. Expressions are parsed with a hand-rolled recursive
// descent parser; there is no dynamic code execution anywhere in the path.

// InvalidFormulaError reports a formula that could not be evaluated. It
// names the rule and the offending expression so the caller can render an
// actionable message.
type InvalidFormulaError struct {
	RuleName   string
	Expression string
	Reason     string
}

func (e *InvalidFormulaError) Error() string {
	return fmt.Sprintf("invalid formula for rule %q: %s (expression: %q)", e.RuleName, e.Reason, e.Expression)
}

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenIdent
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenLParen
	tokenRParen
	tokenEOF
)

type token struct {
	kind tokenKind
	text string
}

// tokenize splits an expression into tokens, rejecting anything outside the
// formula language.
func tokenize(expr string) ([]token, error) {
	var tokens []token
	runes := []rune(expr)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '+':
			tokens = append(tokens, token{tokenPlus, "+"})
			i++
		case r == '-':
			tokens = append(tokens, token{tokenMinus, "-"})
			i++
		case r == '*':
			tokens = append(tokens, token{tokenStar, "*"})
			i++
		case r == '/':
			tokens = append(tokens, token{tokenSlash, "/"})
			i++
		case r == '(':
			tokens = append(tokens, token{tokenLParen, "("})
			i++
		case r == ')':
			tokens = append(tokens, token{tokenRParen, ")"})
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			text := string(runes[start:i])
			if strings.Count(text, ".") > 1 {
				return nil, fmt.Errorf("malformed number %q", text)
			}
			tokens = append(tokens, token{tokenNumber, text})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, token{tokenIdent, string(runes[start:i])})
		default:
			return nil, fmt.Errorf("unrecognized token %q", string(r))
		}
	}

	tokens = append(tokens, token{tokenEOF, ""})
	return tokens, nil
}

// formulaParser is a recursive descent parser/evaluator. Evaluation happens
// during the parse; the grammar is small enough that a separate AST buys
// nothing.
type formulaParser struct {
	tokens []token
	pos    int
	vars   map[string]decimal.Decimal
}

func (p *formulaParser) peek() token { return p.tokens[p.pos] }

func (p *formulaParser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}
	return t
}

// parseExpr handles addition and subtraction.
func (p *formulaParser) parseExpr() (decimal.Decimal, error) {
	left, err := p.parseTerm()
	if err != nil {
		return decimal.Zero, err
	}

	for {
		switch p.peek().kind {
		case tokenPlus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Add(right)
		case tokenMinus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Sub(right)
		default:
			return left, nil
		}
	}
}

// parseTerm handles multiplication and division.
func (p *formulaParser) parseTerm() (decimal.Decimal, error) {
	left, err := p.parseFactor()
	if err != nil {
		return decimal.Zero, err
	}

	for {
		switch p.peek().kind {
		case tokenStar:
			p.next()
			right, err := p.parseFactor()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Mul(right)
		case tokenSlash:
			p.next()
			right, err := p.parseFactor()
			if err != nil {
				return decimal.Zero, err
			}
			if right.IsZero() {
				return decimal.Zero, fmt.Errorf("division by zero")
			}
			left = left.Div(right)
		default:
			return left, nil
		}
	}
}

// parseFactor handles literals, variables, parentheses and unary signs.
func (p *formulaParser) parseFactor() (decimal.Decimal, error) {
	t := p.next()
	switch t.kind {
	case tokenNumber:
		d, err := decimal.NewFromString(t.text)
		if err != nil {
			return decimal.Zero, fmt.Errorf("malformed number %q", t.text)
		}
		return d, nil
	case tokenIdent:
		value, ok := p.vars[t.text]
		if !ok {
			return decimal.Zero, fmt.Errorf("unknown variable %q", t.text)
		}
		return value, nil
	case tokenLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return decimal.Zero, err
		}
		if p.next().kind != tokenRParen {
			return decimal.Zero, fmt.Errorf("missing closing parenthesis")
		}
		return inner, nil
	case tokenMinus:
		inner, err := p.parseFactor()
		if err != nil {
			return decimal.Zero, err
		}
		return inner.Neg(), nil
	case tokenPlus:
		return p.parseFactor()
	case tokenEOF:
		return decimal.Zero, fmt.Errorf("unexpected end of expression")
	default:
		return decimal.Zero, fmt.Errorf("unexpected token %q", t.text)
	}
}

// evaluateExpression evaluates a formula expression against the named
// variables. Any syntactic or semantic failure is returned as an error; the
// result is never silently coerced.
func evaluateExpression(expr string, vars map[string]decimal.Decimal) (decimal.Decimal, error) {
	if strings.TrimSpace(expr) == "" {
		return decimal.Zero, fmt.Errorf("empty expression")
	}

	tokens, err := tokenize(expr)
	if err != nil {
		return decimal.Zero, err
	}

	p := &formulaParser{tokens: tokens, vars: vars}
	result, err := p.parseExpr()
	if err != nil {
		return decimal.Zero, err
	}
	if p.peek().kind != tokenEOF {
		return decimal.Zero, fmt.Errorf("unexpected trailing token %q", p.peek().text)
	}

	return result, nil
}
