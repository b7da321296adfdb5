package expr

import (
	"fmt"

	"github.com/leftmike/sqlexpr/sql"
)

// FoldContext resolves the free variables of an expression at plan time.
type FoldContext interface {
	// Resolve returns the expression a variable stands for; it need not be a constant.
	Resolve(name string) (Expr, bool)

	// ResolveTableCol returns the column referred to by binding.field, if binding is a table.
	ResolveTableCol(binding, field string) (sql.TableID, sql.ColumnID, bool)
}

// Fold resolves variables and table columns using fctx and replaces everything which can be
// computed ahead of time by its value. What is left is deferred to Eval. Fold must run before
// Specialize; it fails with ErrSpecializedBeforeFold otherwise.
func Fold(e Expr, fctx FoldContext) (Expr, error) {
	return fold(e, fctx, true)
}

func foldExprs(exprs []Expr, fctx FoldContext, hook bool) ([]Expr, error) {
	folded := make([]Expr, len(exprs))
	for i, e := range exprs {
		var err error
		folded[i], err = fold(e, fctx, hook)
		if err != nil {
			return nil, err
		}
	}
	return folded, nil
}

func resolveVariable(v Variable, fctx FoldContext) (Expr, error) {
	if fctx != nil {
		if re, ok := fctx.Resolve(string(v)); ok {
			return re, nil
		}
	}
	return nil, &UnresolvedVariableError{Name: string(v)}
}

func deferred(e Expr) bool {
	switch e.(type) {
	case *IndexAccess, *FieldAccess, TableCol, TupleIdx, *Apply, *ApplyAgg:
		return true
	}
	return false
}

func fold(e Expr, fctx FoldContext, hook bool) (Expr, error) {
	switch e := e.(type) {
	case *Literal, TableCol, TupleIdx:
		return e, nil
	case List:
		l, err := foldExprs(e, fctx, hook)
		if err != nil {
			return nil, err
		}
		return List(l), nil
	case Dict:
		d := make(Dict, len(e))
		for _, k := range e.Keys() {
			var err error
			d[k], err = fold(e[k], fctx, hook)
			if err != nil {
				return nil, err
			}
		}
		return d, nil
	case Variable:
		re, err := resolveVariable(e, fctx)
		if err != nil {
			return nil, err
		}
		return fold(re, fctx, hook)
	case *FieldAccess:
		var inner Expr
		if v, ok := e.Expr.(Variable); ok {
			if fctx != nil {
				if tid, cid, ok := fctx.ResolveTableCol(string(v), e.Field); ok {
					return TableCol{Table: tid, Column: cid}, nil
				}
			}
			re, err := resolveVariable(v, fctx)
			if err != nil {
				return nil, err
			}
			inner, err = fold(re, fctx, hook)
			if err != nil {
				return nil, err
			}
		} else {
			var err error
			inner, err = fold(e.Expr, fctx, hook)
			if err != nil {
				return nil, err
			}
		}
		return foldFieldAccess(e.Field, inner)
	case *IndexAccess:
		inner, err := fold(e.Expr, fctx, hook)
		if err != nil {
			return nil, err
		}
		return foldIndexAccess(e.Index, inner)
	case *Apply:
		args, err := foldExprs(e.Args, fctx, hook)
		if err != nil {
			return nil, err
		}
		if hook && !e.Op.HasSideEffect() {
			re, err := e.Op.Fold(args)
			if err != nil {
				return nil, err
			} else if re != nil {
				return re, nil
			}
		}
		return &Apply{Op: e.Op, Args: args}, nil
	case *ApplyAgg:
		seeds, err := foldExprs(e.Seeds, fctx, hook)
		if err != nil {
			return nil, err
		}
		args, err := foldExprs(e.Args, fctx, hook)
		if err != nil {
			return nil, err
		}
		if hook && !e.Op.HasSideEffect() {
			re, err := e.Op.FoldAgg(seeds, args)
			if err != nil {
				return nil, err
			} else if re != nil {
				return re, nil
			}
		}
		return &ApplyAgg{Op: e.Op, Seeds: seeds, Args: args}, nil
	case *Binary, *Unary:
		return nil, ErrSpecializedBeforeFold
	default:
		panic(fmt.Sprintf("missing case for expr: %#v", e))
	}
}

func foldFieldAccess(field string, inner Expr) (Expr, error) {
	switch inner := inner.(type) {
	case *Literal:
		switch v := inner.Value.(type) {
		case nil:
			return Nil(), nil
		case sql.MapValue:
			return &Literal{v[field]}, nil
		}
	case Dict:
		if fe, ok := inner[field]; ok {
			return fe, nil
		}
		return Nil(), nil
	}

	if deferred(inner) {
		return &FieldAccess{Field: field, Expr: inner}, nil
	}
	return nil, &FieldAccessError{Field: field, Value: inner.String()}
}

func foldIndexAccess(idx int, inner Expr) (Expr, error) {
	switch inner := inner.(type) {
	case *Literal:
		switch v := inner.Value.(type) {
		case nil:
			return Nil(), nil
		case sql.ListValue:
			if idx < 0 || idx >= len(v) {
				return Nil(), nil
			}
			return &Literal{v[idx]}, nil
		}
	case List:
		if idx < 0 || idx >= len(inner) {
			return Nil(), nil
		}
		return inner[idx], nil
	}

	if deferred(inner) {
		return &IndexAccess{Index: idx, Expr: inner}, nil
	}
	return nil, &IndexAccessError{Index: idx, Value: inner.String()}
}
