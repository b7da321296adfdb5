package expr

import (
	"fmt"
)

// Specialize rewrites applications of the built-in operators into Binary and Unary nodes
// and turns variadic coalesce, or, and and into left associated chains of Binary nodes. It
// must only be given trees which have already been through Fold.
func Specialize(e Expr) Expr {
	switch e := e.(type) {
	case *Literal, Variable, TableCol, TupleIdx, *Binary, *Unary:
		return e
	case List:
		return List(specializeExprs(e))
	case Dict:
		d := make(Dict, len(e))
		for k, v := range e {
			d[k] = Specialize(v)
		}
		return d
	case *FieldAccess:
		return &FieldAccess{Field: e.Field, Expr: Specialize(e.Expr)}
	case *IndexAccess:
		return &IndexAccess{Index: e.Index, Expr: Specialize(e.Expr)}
	case *Apply:
		if op, ok := LookupOpCode(e.Op.Name()); ok {
			if se, ok := specializeApply(op, e); ok {
				return se
			}
		}
		return &Apply{Op: e.Op, Args: specializeExprs(e.Args)}
	case *ApplyAgg:
		return &ApplyAgg{
			Op:    e.Op,
			Seeds: specializeExprs(e.Seeds),
			Args:  specializeExprs(e.Args),
		}
	default:
		panic(fmt.Sprintf("missing case for expr: %#v", e))
	}
}

func specializeExprs(exprs []Expr) []Expr {
	specialized := make([]Expr, len(exprs))
	for i, e := range exprs {
		specialized[i] = Specialize(e)
	}
	return specialized
}

func specializeApply(op OpCode, a *Apply) (Expr, bool) {
	switch ops[op].family {
	case nonNullBinary:
		fn, ok := a.Op.(TwoNonNullEvaluator)
		if !ok || len(a.Args) != 2 {
			return nil, false
		}
		return &Binary{
			Op:      op,
			Left:    Specialize(a.Args[0]),
			Right:   Specialize(a.Args[1]),
			nonNull: fn,
		}, true
	case nonNullUnary:
		fn, ok := a.Op.(OneNonNullEvaluator)
		if !ok || len(a.Args) != 1 {
			return nil, false
		}
		return &Unary{Op: op, Expr: Specialize(a.Args[0]), nonNull: fn}, true
	case nullUnary:
		fn, ok := a.Op.(OneEvaluator)
		if !ok || len(a.Args) != 1 {
			return nil, false
		}
		return &Unary{Op: op, Expr: Specialize(a.Args[0]), oneFn: fn}, true
	case threeValued:
		fn, ok := a.Op.(TwoEvaluator)
		if !ok || len(a.Args) == 0 || (len(a.Args) == 1 && op != CoalesceOp) {
			// or and and with one operand stay generic so Eval checks the operand is a bool
			return nil, false
		}
		e := Specialize(a.Args[0])
		for _, arg := range a.Args[1:] {
			e = &Binary{Op: op, Left: e, Right: Specialize(arg), twoFn: fn}
		}
		return e, true
	}
	return nil, false
}
