// Package parser turns the text form of an expression into an expr.Expr tree of generic
// applications, ready to be folded.
package parser

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/leftmike/sqlexpr/expr"
	"github.com/leftmike/sqlexpr/ops"
	"github.com/leftmike/sqlexpr/parser/scanner"
	"github.com/leftmike/sqlexpr/parser/token"
	"github.com/leftmike/sqlexpr/sql"
)

type Parser interface {
	ParseExpr() (expr.Expr, error)
}

type parser struct {
	scanner   scanner.Scanner
	sctx      scanner.ScanCtx
	unscanned bool
	scanned   rune
}

func NewParser(rr io.RuneReader, fn string) Parser {
	var p parser
	p.scanner.Init(rr, fn)
	return &p
}

// ParseExpr parses exactly one expression from rr.
func ParseExpr(rr io.RuneReader, fn string) (expr.Expr, error) {
	return NewParser(rr, fn).ParseExpr()
}

// MustParseExpr parses s and panics if it is not a valid expression.
func MustParseExpr(s string) expr.Expr {
	e, err := ParseExpr(strings.NewReader(s), "expr")
	if err != nil {
		panic(err)
	}
	return e
}

func (p *parser) ParseExpr() (e expr.Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(runtime.Error); ok {
				panic(r)
			}
			err = &expr.ParseError{Err: r.(error)}
			e = nil
		}
	}()

	e = p.parseExpr(0)
	p.expectEOF()
	return
}

func (p *parser) error(msg string) {
	panic(fmt.Errorf("%s: %s", p.sctx.Position, msg))
}

func (p *parser) scan() rune {
	if p.unscanned {
		p.unscanned = false
		return p.scanned
	}

	p.scanner.Scan(&p.sctx)
	p.scanned = p.sctx.Token
	if p.scanned == token.Error {
		p.error(p.sctx.Error.Error())
	}
	return p.scanned
}

func (p *parser) unscan() {
	p.unscanned = true
}

func (p *parser) got() string {
	switch p.scanned {
	case token.EOF:
		return "end of expression"
	case token.Identifier:
		return fmt.Sprintf("identifier %s", p.sctx.Identifier)
	case token.Reserved:
		return fmt.Sprintf("reserved identifier %s", p.sctx.Identifier)
	case token.String:
		return fmt.Sprintf("string %q", p.sctx.String)
	case token.Integer:
		return fmt.Sprintf("integer %d", p.sctx.Integer)
	case token.Float:
		return fmt.Sprintf("float %f", p.sctx.Float)
	}

	return token.Format(p.scanned)
}

func (p *parser) expectReserved(ids ...sql.Identifier) sql.Identifier {
	t := p.scan()
	if t == token.Reserved {
		for _, kw := range ids {
			if kw == p.sctx.Identifier {
				return kw
			}
		}
	}

	var msg string
	if len(ids) == 1 {
		msg = ids[0].String()
	} else {
		for i, kw := range ids {
			if i == len(ids)-1 {
				msg += ", or "
			} else if i > 0 {
				msg += ", "
			}
			msg += kw.String()
		}
	}

	p.error(fmt.Sprintf("expected keyword %s got %s", msg, p.got()))
	return 0
}

func (p *parser) optionalReserved(ids ...sql.Identifier) bool {
	t := p.scan()
	if t == token.Reserved {
		for _, kw := range ids {
			if kw == p.sctx.Identifier {
				return true
			}
		}
	}

	p.unscan()
	return false
}

func (p *parser) expectTokens(tokens ...rune) rune {
	t := p.scan()
	for _, r := range tokens {
		if t == r {
			return r
		}
	}

	var msg string
	if len(tokens) == 1 {
		msg = token.Format(tokens[0])
	} else {
		for i, r := range tokens {
			if i == len(tokens)-1 {
				msg += ", or "
			} else if i > 0 {
				msg += ", "
			}
			msg += token.Format(r)
		}
	}

	p.error(fmt.Sprintf("expected %s got %s", msg, p.got()))
	return 0
}

func (p *parser) maybeToken(mr rune) bool {
	if p.scan() == mr {
		return true
	}
	p.unscan()
	return false
}

func (p *parser) expectEOF() {
	if p.scan() != token.EOF {
		p.error(fmt.Sprintf("expected the end of the expression got %s", p.got()))
	}
}

/*
<expr>:
      <literal>
    | <variable>
    | - <expr>
    | ! <expr>
    | NOT <expr>
    | ( <expr> )
    | [ [<expr> [, ...]] ]
    | { [<key> : <expr> [, ...]] }
    | <expr> <op> <expr>
    | <expr> IS [NOT] NULL
    | <expr> . <field>
    | <expr> [ <integer> ]
    | <func> ( [<expr> [, ...]] )
    | <aggregate> [ [<expr> [, ...]] ] ( [<expr> [, ...]] )
<op>:
      ^
    | * / %
    | + - ++
    | ~
    | = == != <> < <= > >=
    | AND | &&
    | OR | ||
*/

var binaryOps = map[rune]expr.OpCode{
	token.AmpAmp:       expr.AndOp,
	token.BarBar:       expr.OrOp,
	token.Tilde:        expr.CoalesceOp,
	token.Equal:        expr.EqualOp,
	token.EqualEqual:   expr.EqualOp,
	token.BangEqual:    expr.NotEqualOp,
	token.LessGreater:  expr.NotEqualOp,
	token.Greater:      expr.GreaterThanOp,
	token.GreaterEqual: expr.GreaterEqualOp,
	token.Less:         expr.LessThanOp,
	token.LessEqual:    expr.LessEqualOp,
	token.Plus:         expr.AddOp,
	token.Minus:        expr.SubtractOp,
	token.PlusPlus:     expr.StrCatOp,
	token.Star:         expr.MultiplyOp,
	token.Slash:        expr.DivideOp,
	token.Percent:      expr.ModuloOp,
	token.Caret:        expr.PowerOp,
}

func apply(op expr.OpCode, args ...expr.Expr) *expr.Apply {
	return &expr.Apply{Op: ops.Builtin(op), Args: args}
}

// binaryOp scans the next token and returns the operator it stands for; IS is returned as
// IsNullOp and the caller parses the rest of the test.
func (p *parser) binaryOp() (expr.OpCode, bool) {
	r := p.scan()
	if op, ok := binaryOps[r]; ok {
		return op, true
	} else if r == token.Reserved {
		switch p.sctx.Identifier {
		case sql.AND:
			return expr.AndOp, true
		case sql.OR:
			return expr.OrOp, true
		case sql.IS:
			return expr.IsNullOp, true
		}
	}
	p.unscan()
	return expr.NoOp, false
}

func (p *parser) parseExpr(minPrec int) expr.Expr {
	e := p.parseUnary()

	for {
		op, ok := p.binaryOp()
		if !ok {
			return e
		}
		prec := op.Precedence()
		if prec < minPrec {
			p.unscan()
			return e
		}

		if op == expr.IsNullOp {
			// <expr> IS [NOT] NULL
			if p.optionalReserved(sql.NOT) {
				op = expr.NotNullOp
			}
			p.expectReserved(sql.NULL)
			e = apply(op, e)
			continue
		}

		next := prec + 1
		if op == expr.PowerOp {
			next = prec
		}
		e2 := p.parseExpr(next)

		if a, ok := e.(*expr.Apply); ok && op.IsVariadic() && a.Op.Name() == op.String() {
			a.Args = append(a.Args, e2)
		} else {
			e = apply(op, e, e2)
		}
	}
}

func (p *parser) parseUnary() expr.Expr {
	r := p.scan()
	if r == token.Minus {
		// - <expr>
		e := p.parseUnary()
		if l, ok := e.(*expr.Literal); ok {
			switch v := l.Value.(type) {
			case sql.Int64Value:
				return &expr.Literal{Value: -v}
			case sql.Float64Value:
				return &expr.Literal{Value: -v}
			}
		}
		return apply(expr.MinusOp, e)
	} else if r == token.Bang {
		// ! <expr>
		return apply(expr.NotNullOp, p.parseUnary())
	} else if r == token.Reserved && p.sctx.Identifier == sql.NOT {
		// NOT <expr>
		return apply(expr.NegateOp, p.parseExpr(expr.NegateOp.Precedence()+1))
	}

	p.unscan()
	return p.parsePostfix(p.parsePrimary())
}

func (p *parser) parsePostfix(e expr.Expr) expr.Expr {
	for {
		if p.maybeToken(token.Dot) {
			// <expr> . <field>
			var field string
			switch p.scan() {
			case token.Identifier:
				field = p.sctx.Identifier.String()
			case token.Reserved:
				field = strings.ToLower(p.sctx.Identifier.String())
			case token.String:
				field = p.sctx.String
			default:
				p.error(fmt.Sprintf("expected a field got %s", p.got()))
			}
			e = &expr.FieldAccess{Field: field, Expr: e}
		} else if p.maybeToken(token.LBracket) {
			// <expr> [ <integer> ]
			sign := int64(1)
			if p.maybeToken(token.Minus) {
				sign = -1
			}
			if p.scan() != token.Integer {
				p.error(fmt.Sprintf("expected an index got %s", p.got()))
			}
			idx := int(p.sctx.Integer * sign)
			p.expectTokens(token.RBracket)
			e = &expr.IndexAccess{Index: idx, Expr: e}
		} else {
			return e
		}
	}
}

func (p *parser) parseExprList(end rune) []expr.Expr {
	var exprs []expr.Expr
	if p.maybeToken(end) {
		return exprs
	}
	for {
		exprs = append(exprs, p.parseExpr(0))
		if p.expectTokens(token.Comma, end) == end {
			return exprs
		}
	}
}

func (p *parser) parsePrimary() expr.Expr {
	r := p.scan()
	switch r {
	case token.Reserved:
		switch p.sctx.Identifier {
		case sql.TRUE:
			return expr.True()
		case sql.FALSE:
			return expr.False()
		case sql.NULL:
			return expr.Nil()
		}
		p.error(fmt.Sprintf("unexpected %s", p.got()))
	case token.String:
		return expr.StringLiteral(p.sctx.String)
	case token.Integer:
		return expr.Int64Literal(p.sctx.Integer)
	case token.Float:
		return expr.Float64Literal(p.sctx.Float)
	case token.Identifier:
		return p.parseIdentifier(p.sctx.Identifier.String())
	case token.LParen:
		// ( <expr> )
		e := p.parseExpr(0)
		if p.scan() != token.RParen {
			p.error(fmt.Sprintf("expected closing parenthesis got %s", p.got()))
		}
		return e
	case token.LBracket:
		// [ [<expr> [, ...]] ]
		return expr.List(p.parseExprList(token.RBracket))
	case token.LBrace:
		// { [<key> : <expr> [, ...]] }
		return p.parseDict()
	}

	p.error(fmt.Sprintf("expected an expression got %s", p.got()))
	return nil
}

func (p *parser) parseIdentifier(name string) expr.Expr {
	if p.maybeToken(token.LParen) {
		// <func> ( [<expr> [, ...]] )
		args := p.parseExprList(token.RParen)
		if op, ok := ops.Lookup(name); ok {
			if err := ops.CheckArity(op, len(args)); err != nil {
				p.error(err.Error())
			}
			return &expr.Apply{Op: op, Args: args}
		} else if agg, ok := ops.LookupAgg(name); ok {
			return &expr.ApplyAgg{Op: agg, Args: args}
		}
		p.error(fmt.Sprintf("unknown function %s", name))
	}

	if agg, ok := ops.LookupAgg(name); ok && p.maybeToken(token.LBracket) {
		// <aggregate> [ [<expr> [, ...]] ] ( [<expr> [, ...]] )
		seeds := p.parseExprList(token.RBracket)
		p.expectTokens(token.LParen)
		args := p.parseExprList(token.RParen)
		return &expr.ApplyAgg{Op: agg, Seeds: seeds, Args: args}
	}

	return expr.Variable(name)
}

func (p *parser) parseDict() expr.Expr {
	d := expr.Dict{}
	if p.maybeToken(token.RBrace) {
		return d
	}
	for {
		var key string
		switch p.scan() {
		case token.Identifier:
			key = p.sctx.Identifier.String()
		case token.Reserved:
			key = strings.ToLower(p.sctx.Identifier.String())
		case token.String:
			key = p.sctx.String
		default:
			p.error(fmt.Sprintf("expected a key got %s", p.got()))
		}
		if _, dup := d[key]; dup {
			p.error(fmt.Sprintf("duplicate key %s", key))
		}
		p.expectTokens(token.Colon)
		d[key] = p.parseExpr(0)

		if p.expectTokens(token.Comma, token.RBrace) == token.RBrace {
			return d
		}
	}
}
