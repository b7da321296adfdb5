package expr

import (
	"fmt"

	"github.com/leftmike/sqlexpr/sql"
)

// EvalContext supplies the values of the current row.
type EvalContext interface {
	EvalTuple(idx sql.TupleIdx) (sql.Value, error)
}

// Eval computes the value of a folded and specialized expression for one row. The tree is
// only read, so it may be shared by concurrent calls as long as each ectx is safe to use.
func Eval(e Expr, ectx EvalContext) (sql.Value, error) {
	switch e := e.(type) {
	case *Literal:
		return e.Value, nil
	case List:
		l := make(sql.ListValue, len(e))
		for i, le := range e {
			var err error
			l[i], err = Eval(le, ectx)
			if err != nil {
				return nil, err
			}
		}
		return l, nil
	case Dict:
		m := make(sql.MapValue, len(e))
		for _, k := range e.Keys() {
			var err error
			m[k], err = Eval(e[k], ectx)
			if err != nil {
				return nil, err
			}
		}
		return m, nil
	case Variable:
		return nil, &UnresolvedVariableError{Name: string(e)}
	case TableCol:
		return nil, &UnresolvedTableColError{Table: e.Table, Column: e.Column}
	case TupleIdx:
		if ectx == nil {
			return nil, &UnresolvedTupleError{Idx: sql.TupleIdx(e)}
		}
		return ectx.EvalTuple(sql.TupleIdx(e))
	case *Apply:
		var hasNull bool
		args := make([]sql.Value, len(e.Args))
		for i, a := range e.Args {
			var err error
			args[i], err = Eval(a, ectx)
			if err != nil {
				return nil, err
			} else if args[i] == nil {
				hasNull = true
			}
		}
		return e.Op.Eval(hasNull, args)
	case *ApplyAgg:
		return nil, &AggregateContextError{Name: e.Op.Name()}
	case *FieldAccess:
		v, err := Eval(e.Expr, ectx)
		if err != nil {
			return nil, err
		}
		switch v := v.(type) {
		case nil:
			return nil, nil
		case sql.MapValue:
			return v[e.Field], nil
		}
		return nil, &FieldAccessError{Field: e.Field, Value: sql.Format(v)}
	case *IndexAccess:
		v, err := Eval(e.Expr, ectx)
		if err != nil {
			return nil, err
		}
		switch v := v.(type) {
		case nil:
			return nil, nil
		case sql.ListValue:
			if e.Index < 0 || e.Index >= len(v) {
				return nil, nil
			}
			return v[e.Index], nil
		}
		return nil, &IndexAccessError{Index: e.Index, Value: sql.Format(v)}
	case *Binary:
		v1, err := Eval(e.Left, ectx)
		if err != nil {
			return nil, err
		}
		v2, err := Eval(e.Right, ectx)
		if err != nil {
			return nil, err
		}
		if e.nonNull != nil {
			if v1 == nil || v2 == nil {
				return nil, nil
			}
			return e.nonNull.EvalTwoNonNull(v1, v2)
		}
		return e.twoFn.EvalTwo(v1, v2)
	case *Unary:
		v, err := Eval(e.Expr, ectx)
		if err != nil {
			return nil, err
		}
		if e.nonNull != nil {
			if v == nil {
				return nil, nil
			}
			return e.nonNull.EvalOneNonNull(v)
		}
		return e.oneFn.EvalOne(v)
	default:
		panic(fmt.Sprintf("missing case for expr: %#v", e))
	}
}
