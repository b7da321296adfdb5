package ops

import (
	"github.com/leftmike/sqlexpr/expr"
	"github.com/leftmike/sqlexpr/sql"
)

var (
	Not = &unaryOp{
		name: expr.NegateOp.String(),
		fn: func(v sql.Value) (sql.Value, error) {
			if b, ok := v.(sql.BoolValue); ok {
				return !b, nil
			}
			return nil, typeMismatch(expr.NegateOp.String(), v)
		},
	}

	IsNull = &nullTestOp{
		name: expr.IsNullOp.String(),
		fn: func(v sql.Value) sql.Value {
			return sql.BoolValue(v == nil)
		},
	}

	NotNull = &nullTestOp{
		name: expr.NotNullOp.String(),
		fn: func(v sql.Value) sql.Value {
			return sql.BoolValue(v != nil)
		},
	}

	Coalesce = &logicOp{
		name: expr.CoalesceOp.String(),
		fn: func(v1, v2 sql.Value) (sql.Value, error) {
			if v1 != nil {
				return v1, nil
			}
			return v2, nil
		},
		fold: foldCoalesce,
	}

	// Or is true if either side is true, null if either side is null, and false otherwise.
	Or = &logicOp{
		name: expr.OrOp.String(),
		fn: func(v1, v2 sql.Value) (sql.Value, error) {
			b1, ok1, err := boolArg(expr.OrOp, v1, v2, v1)
			if err != nil {
				return nil, err
			}
			b2, ok2, err := boolArg(expr.OrOp, v1, v2, v2)
			if err != nil {
				return nil, err
			}
			if (ok1 && b1) || (ok2 && b2) {
				return sql.BoolValue(true), nil
			} else if !ok1 || !ok2 {
				return nil, nil
			}
			return sql.BoolValue(false), nil
		},
		one: boolOrNull(expr.OrOp),
	}

	// And is false if either side is false, null if either side is null, and true otherwise.
	And = &logicOp{
		name: expr.AndOp.String(),
		fn: func(v1, v2 sql.Value) (sql.Value, error) {
			b1, ok1, err := boolArg(expr.AndOp, v1, v2, v1)
			if err != nil {
				return nil, err
			}
			b2, ok2, err := boolArg(expr.AndOp, v1, v2, v2)
			if err != nil {
				return nil, err
			}
			if (ok1 && !b1) || (ok2 && !b2) {
				return sql.BoolValue(false), nil
			} else if !ok1 || !ok2 {
				return nil, nil
			}
			return sql.BoolValue(true), nil
		},
		one: boolOrNull(expr.AndOp),
	}
)

// boolOrNull checks the only operand of a one argument or or and.
func boolOrNull(op expr.OpCode) func(v sql.Value) error {
	return func(v sql.Value) error {
		switch v.(type) {
		case nil, sql.BoolValue:
			return nil
		}
		return typeMismatch(op.String(), v)
	}
}

// boolArg returns the boolean value of v and false if v is null.
func boolArg(op expr.OpCode, v1, v2, v sql.Value) (bool, bool, error) {
	switch v := v.(type) {
	case nil:
		return false, false, nil
	case sql.BoolValue:
		return bool(v), true, nil
	}
	return false, false, typeMismatch(op.String(), v1, v2)
}

// foldCoalesce drops leading null literals and stops at the first literal which is not
// null.
func foldCoalesce(lo *logicOp, args []expr.Expr) (expr.Expr, error) {
	if len(args) == 0 {
		return nil, &expr.ArityError{Op: lo.name, Args: 0}
	}

	rest := args
	for len(rest) > 0 {
		l, ok := rest[0].(*expr.Literal)
		if !ok {
			break
		}
		if l.Value != nil {
			return l, nil
		}
		rest = rest[1:]
	}

	if len(rest) == 0 {
		return expr.Nil(), nil
	} else if len(rest) == 1 {
		return rest[0], nil
	} else if len(rest) < len(args) {
		return &expr.Apply{Op: lo, Args: rest}, nil
	}
	return nil, nil
}
