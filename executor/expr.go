package executor

import (
	"strconv"
	"strings"

	"github.com/ShapelessCat/leveled-signal-proc/errors"
)

// expr is the small closed sublanguage node_decl payloads embed for
// mappers, accumulator filters, latch filters, state-machine
// transitions, window emitters, and diff expressions: C-like infix
// expressions over a fixed set of bind variables, with the usual
// comparison/logical/arithmetic operators, a ternary, and parens. This
// is design notes option (b): the executor ships its own closed
// interpreter rather than compiling node_decl to a backend language.
type expr interface {
	eval(env map[string]interface{}) (interface{}, error)
}

// parseExpr parses a bind-var expression once at node construction
// time; the returned expr is evaluated on every moment.
func parseExpr(src string) (expr, error) {
	p := &exprParser{toks: lexExpr(src), src: src}
	e, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, errors.Newf("evaluation_fatal: unexpected trailing input in expression %q", src)
	}
	return e, nil
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokNumber
	tokString
	tokOp
	tokLParen
	tokRParen
	tokComma
	tokQuestion
	tokColon
)

type token struct {
	kind tokKind
	text string
}

func lexExpr(src string) []token {
	var toks []token
	i := 0
	n := len(src)
	for i < n {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ","})
			i++
		case c == '?':
			toks = append(toks, token{tokQuestion, "?"})
			i++
		case c == ':':
			toks = append(toks, token{tokColon, ":"})
			i++
		case c == '"':
			j := i + 1
			for j < n && src[j] != '"' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			toks = append(toks, token{tokString, src[i : j+1]})
			i = j + 1
		case isIdentStart(c):
			j := i + 1
			for j < n && isIdentPart(src[j]) {
				j++
			}
			toks = append(toks, token{tokIdent, src[i:j]})
			i = j
		case isDigit(c):
			j := i + 1
			for j < n && (isDigit(src[j]) || src[j] == '.' || isIdentPart(src[j])) {
				j++
			}
			toks = append(toks, token{tokNumber, src[i:j]})
			i = j
		default:
			// multi-char operators first
			two := ""
			if i+1 < n {
				two = src[i : i+2]
			}
			switch two {
			case "==", "!=", "<=", ">=", "&&", "||":
				toks = append(toks, token{tokOp, two})
				i += 2
				continue
			}
			toks = append(toks, token{tokOp, string(c)})
			i++
		}
	}
	return toks
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

type exprParser struct {
	toks []token
	pos  int
	src  string
}

func (p *exprParser) peek() token {
	if p.pos >= len(p.toks) {
		return token{kind: tokEOF}
	}
	return p.toks[p.pos]
}

func (p *exprParser) next() token {
	t := p.peek()
	p.pos++
	return t
}

func (p *exprParser) parseTernary() (expr, error) {
	cond, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokQuestion {
		p.next()
		then, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokColon {
			return nil, errors.Newf("evaluation_fatal: expected ':' in ternary expression %q", p.src)
		}
		p.next()
		els, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		return &ternaryExpr{cond, then, els}, nil
	}
	return cond, nil
}

// precedence climbing over the binary operators, lowest to highest.
var precedence = map[string]int{
	"||": 1, "^": 1,
	"&&": 2,
	"==": 3, "!=": 3, "<": 3, ">": 3, "<=": 3, ">=": 3,
	"+": 4, "-": 4,
	"*": 5, "/": 5,
}

func (p *exprParser) parseBinary(minPrec int) (expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp {
			break
		}
		prec, ok := precedence[t.text]
		if !ok || prec < minPrec {
			break
		}
		p.next()
		rhs, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		lhs = &binaryExpr{op: t.text, lhs: lhs, rhs: rhs}
	}
	return lhs, nil
}

func (p *exprParser) parseUnary() (expr, error) {
	t := p.peek()
	if t.kind == tokOp && (t.text == "!" || t.text == "-") {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryExpr{op: t.text, operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (expr, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		e, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if p.peek().kind == tokComma {
			// tuple literal: (a0,a1,...)
			elems := []expr{e}
			for p.peek().kind == tokComma {
				p.next()
				next, err := p.parseTernary()
				if err != nil {
					return nil, err
				}
				elems = append(elems, next)
			}
			if p.peek().kind != tokRParen {
				return nil, errors.Newf("evaluation_fatal: expected ')' in expression %q", p.src)
			}
			p.next()
			return &tupleExpr{elems}, nil
		}
		if p.peek().kind != tokRParen {
			return nil, errors.Newf("evaluation_fatal: expected ')' in expression %q", p.src)
		}
		p.next()
		return e, nil
	case tokIdent:
		switch t.text {
		case "true":
			return &literalExpr{true}, nil
		case "false":
			return &literalExpr{false}, nil
		}
		return &identExpr{t.text}, nil
	case tokNumber:
		return parseNumberLiteral(t.text)
	case tokString:
		unquoted, err := strconv.Unquote(t.text)
		if err != nil {
			return nil, errors.Wrapf(err, "evaluation_fatal: bad string literal %q", t.text)
		}
		return &literalExpr{unquoted}, nil
	}
	return nil, errors.Newf("evaluation_fatal: unexpected token in expression %q", p.src)
}

func parseNumberLiteral(text string) (expr, error) {
	// strip width/signedness suffix the same way RenderLiteral adds one
	// (e.g. "5i32", "2.5f64"); a bare number with no suffix is parsed as
	// a float if it contains '.', else an int64.
	i := 0
	for i < len(text) && (isDigit(text[i]) || text[i] == '.') {
		i++
	}
	numPart := text[:i]
	if strings.Contains(numPart, ".") {
		f, err := strconv.ParseFloat(numPart, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "evaluation_fatal: bad numeric literal %q", text)
		}
		return &literalExpr{f}, nil
	}
	iv, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluation_fatal: bad numeric literal %q", text)
	}
	return &literalExpr{iv}, nil
}

type literalExpr struct{ v interface{} }

func (e *literalExpr) eval(map[string]interface{}) (interface{}, error) { return e.v, nil }

type identExpr struct{ name string }

func (e *identExpr) eval(env map[string]interface{}) (interface{}, error) {
	v, ok := env[e.name]
	if !ok {
		return nil, errors.Newf("evaluation_fatal: unbound identifier %q", e.name)
	}
	return v, nil
}

type tupleExpr struct{ elems []expr }

func (e *tupleExpr) eval(env map[string]interface{}) (interface{}, error) {
	out := make([]interface{}, len(e.elems))
	for i, el := range e.elems {
		v, err := el.eval(env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

type unaryExpr struct {
	op      string
	operand expr
}

func (e *unaryExpr) eval(env map[string]interface{}) (interface{}, error) {
	v, err := e.operand.eval(env)
	if err != nil {
		return nil, err
	}
	switch e.op {
	case "!":
		b, err := asBool(v)
		if err != nil {
			return nil, err
		}
		return !b, nil
	case "-":
		return negateNumeric(v)
	}
	return nil, errors.Newf("evaluation_fatal: unknown unary operator %q", e.op)
}

type binaryExpr struct {
	op       string
	lhs, rhs expr
}

func (e *binaryExpr) eval(env map[string]interface{}) (interface{}, error) {
	l, err := e.lhs.eval(env)
	if err != nil {
		return nil, err
	}
	// short-circuit && / ||
	if e.op == "&&" || e.op == "||" {
		lb, err := asBool(l)
		if err != nil {
			return nil, err
		}
		if e.op == "&&" && !lb {
			return false, nil
		}
		if e.op == "||" && lb {
			return true, nil
		}
		r, err := e.rhs.eval(env)
		if err != nil {
			return nil, err
		}
		return asBool(r)
	}
	r, err := e.rhs.eval(env)
	if err != nil {
		return nil, err
	}
	return applyBinaryOp(e.op, l, r)
}

type ternaryExpr struct {
	cond, then, els expr
}

func (e *ternaryExpr) eval(env map[string]interface{}) (interface{}, error) {
	c, err := e.cond.eval(env)
	if err != nil {
		return nil, err
	}
	b, err := asBool(c)
	if err != nil {
		return nil, err
	}
	if b {
		return e.then.eval(env)
	}
	return e.els.eval(env)
}
