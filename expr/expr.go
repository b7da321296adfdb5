package expr

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/leftmike/sqlexpr/sql"
)

// Expr is a node of an expression tree. A tree is built by the parser, rewritten by Fold and
// then Specialize, and afterwards only read by Eval.
type Expr interface {
	fmt.Stringer
	Equal(e Expr) bool
}

type Literal struct {
	Value sql.Value
}

func (l *Literal) String() string {
	return sql.Format(l.Value)
}

func (l *Literal) Equal(e Expr) bool {
	l2, ok := e.(*Literal)
	if !ok {
		return false
	}
	return sql.Equal(l.Value, l2.Value)
}

func Nil() *Literal {
	return &Literal{nil}
}

func True() *Literal {
	return &Literal{sql.BoolValue(true)}
}

func False() *Literal {
	return &Literal{sql.BoolValue(false)}
}

func Int64Literal(i int64) *Literal {
	return &Literal{sql.Int64Value(i)}
}

func Float64Literal(f float64) *Literal {
	return &Literal{sql.Float64Value(f)}
}

func StringLiteral(s string) *Literal {
	return &Literal{sql.StringValue(s)}
}

func isNullLiteral(e Expr) bool {
	l, ok := e.(*Literal)
	return ok && l.Value == nil
}

// Variable is a free variable; Fold replaces it with whatever the FoldContext resolves
// it to.
type Variable string

func (v Variable) String() string {
	return string(v)
}

func (v Variable) Equal(e Expr) bool {
	v2, ok := e.(Variable)
	return ok && v == v2
}

type TableCol struct {
	Table  sql.TableID
	Column sql.ColumnID
}

func (tc TableCol) String() string {
	return fmt.Sprintf("[%s.%s]", tc.Table, tc.Column)
}

func (tc TableCol) Equal(e Expr) bool {
	tc2, ok := e.(TableCol)
	return ok && tc == tc2
}

type TupleIdx sql.TupleIdx

func (ti TupleIdx) String() string {
	return sql.TupleIdx(ti).String()
}

func (ti TupleIdx) Equal(e Expr) bool {
	ti2, ok := e.(TupleIdx)
	return ok && ti == ti2
}

type List []Expr

func (l List) String() string {
	return "[" + joinExprs(l) + "]"
}

func (l List) Equal(e Expr) bool {
	l2, ok := e.(List)
	return ok && equalExprs(l, l2)
}

// Dict maps keys to expressions; it is always visited in key order.
type Dict map[string]Expr

// Keys returns the keys of the dict in order.
func (d Dict) Keys() []string {
	keys := maps.Keys(d)
	slices.Sort(keys)
	return keys
}

func (d Dict) String() string {
	var buf strings.Builder
	buf.WriteRune('{')
	for i, k := range d.Keys() {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s: %s", sql.StringValue(k), d[k])
	}
	buf.WriteRune('}')
	return buf.String()
}

func (d Dict) Equal(e Expr) bool {
	d2, ok := e.(Dict)
	if !ok || len(d) != len(d2) {
		return false
	}
	for k, v := range d {
		v2, ok := d2[k]
		if !ok || !v.Equal(v2) {
			return false
		}
	}
	return true
}

type FieldAccess struct {
	Field string
	Expr  Expr
}

func (fa *FieldAccess) String() string {
	return fmt.Sprintf("%s.%s", fa.Expr, fa.Field)
}

func (fa *FieldAccess) Equal(e Expr) bool {
	fa2, ok := e.(*FieldAccess)
	return ok && fa.Field == fa2.Field && fa.Expr.Equal(fa2.Expr)
}

type IndexAccess struct {
	Index int
	Expr  Expr
}

func (ia *IndexAccess) String() string {
	return fmt.Sprintf("%s[%d]", ia.Expr, ia.Index)
}

func (ia *IndexAccess) Equal(e Expr) bool {
	ia2, ok := e.(*IndexAccess)
	return ok && ia.Index == ia2.Index && ia.Expr.Equal(ia2.Expr)
}

func quoteName(name string) string {
	for _, r := range name {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9')) {

			return fmt.Sprintf("\"%s\"", name)
		}
	}
	return name
}

// Apply is the generic application of an operator; the number of arguments is only
// checked by the operator itself.
type Apply struct {
	Op   Operator
	Args []Expr
}

func (a *Apply) String() string {
	return fmt.Sprintf("%s(%s)", quoteName(a.Op.Name()), joinExprs(a.Args))
}

func (a *Apply) Equal(e Expr) bool {
	a2, ok := e.(*Apply)
	return ok && a.Op.Name() == a2.Op.Name() && equalExprs(a.Args, a2.Args)
}

type ApplyAgg struct {
	Op    AggOperator
	Seeds []Expr
	Args  []Expr
}

func (aa *ApplyAgg) String() string {
	if len(aa.Seeds) == 0 {
		return fmt.Sprintf("%s(%s)", quoteName(aa.Op.Name()), joinExprs(aa.Args))
	}
	return fmt.Sprintf("%s[%s](%s)", quoteName(aa.Op.Name()), joinExprs(aa.Seeds),
		joinExprs(aa.Args))
}

func (aa *ApplyAgg) Equal(e Expr) bool {
	aa2, ok := e.(*ApplyAgg)
	return ok && aa.Op.Name() == aa2.Op.Name() && equalExprs(aa.Seeds, aa2.Seeds) &&
		equalExprs(aa.Args, aa2.Args)
}

// Binary is a specialized application of a built-in binary operator; only Specialize
// creates them.
type Binary struct {
	Op    OpCode
	Left  Expr
	Right Expr

	nonNull TwoNonNullEvaluator
	twoFn   TwoEvaluator
}

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

func (b *Binary) Equal(e Expr) bool {
	b2, ok := e.(*Binary)
	return ok && b.Op == b2.Op && b.Left.Equal(b2.Left) && b.Right.Equal(b2.Right)
}

// Unary is a specialized application of a built-in unary operator; only Specialize
// creates them.
type Unary struct {
	Op   OpCode
	Expr Expr

	nonNull OneNonNullEvaluator
	oneFn   OneEvaluator
}

func (u *Unary) String() string {
	return fmt.Sprintf("(%s %s)", u.Op, u.Expr)
}

func (u *Unary) Equal(e Expr) bool {
	u2, ok := e.(*Unary)
	return ok && u.Op == u2.Op && u.Expr.Equal(u2.Expr)
}

func joinExprs(exprs []Expr) string {
	var buf strings.Builder
	for i, e := range exprs {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(e.String())
	}
	return buf.String()
}

func equalExprs(exprs1, exprs2 []Expr) bool {
	if len(exprs1) != len(exprs2) {
		return false
	}
	for i := range exprs1 {
		if !exprs1[i].Equal(exprs2[i]) {
			return false
		}
	}
	return true
}
