package expr

import (
	"fmt"
)

// Rewrite walks e bottom up; fn is called on each node after its children have been
// rewritten and returns the node to use in its place. Specialized nodes keep their
// evaluators, so Rewrite may be used on a tree at any stage.
func Rewrite(e Expr, fn func(e Expr) (Expr, error)) (Expr, error) {
	switch e := e.(type) {
	case *Literal, Variable, TableCol, TupleIdx:
		return fn(e)
	case List:
		l, err := rewriteExprs(e, fn)
		if err != nil {
			return nil, err
		}
		return fn(List(l))
	case Dict:
		d := make(Dict, len(e))
		for _, k := range e.Keys() {
			var err error
			d[k], err = Rewrite(e[k], fn)
			if err != nil {
				return nil, err
			}
		}
		return fn(d)
	case *FieldAccess:
		re, err := Rewrite(e.Expr, fn)
		if err != nil {
			return nil, err
		}
		return fn(&FieldAccess{Field: e.Field, Expr: re})
	case *IndexAccess:
		re, err := Rewrite(e.Expr, fn)
		if err != nil {
			return nil, err
		}
		return fn(&IndexAccess{Index: e.Index, Expr: re})
	case *Apply:
		args, err := rewriteExprs(e.Args, fn)
		if err != nil {
			return nil, err
		}
		return fn(&Apply{Op: e.Op, Args: args})
	case *ApplyAgg:
		seeds, err := rewriteExprs(e.Seeds, fn)
		if err != nil {
			return nil, err
		}
		args, err := rewriteExprs(e.Args, fn)
		if err != nil {
			return nil, err
		}
		return fn(&ApplyAgg{Op: e.Op, Seeds: seeds, Args: args})
	case *Binary:
		l, err := Rewrite(e.Left, fn)
		if err != nil {
			return nil, err
		}
		r, err := Rewrite(e.Right, fn)
		if err != nil {
			return nil, err
		}
		return fn(&Binary{Op: e.Op, Left: l, Right: r, nonNull: e.nonNull, twoFn: e.twoFn})
	case *Unary:
		re, err := Rewrite(e.Expr, fn)
		if err != nil {
			return nil, err
		}
		return fn(&Unary{Op: e.Op, Expr: re, nonNull: e.nonNull, oneFn: e.oneFn})
	default:
		panic(fmt.Sprintf("missing case for expr: %#v", e))
	}
}

func rewriteExprs(exprs []Expr, fn func(e Expr) (Expr, error)) ([]Expr, error) {
	rewritten := make([]Expr, len(exprs))
	for i, e := range exprs {
		var err error
		rewritten[i], err = Rewrite(e, fn)
		if err != nil {
			return nil, err
		}
	}
	return rewritten, nil
}
