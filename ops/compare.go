package ops

import (
	"github.com/leftmike/sqlexpr/expr"
	"github.com/leftmike/sqlexpr/sql"
)

var (
	Equal = &binaryOp{
		name: expr.EqualOp.String(),
		fn: func(v1, v2 sql.Value) (sql.Value, error) {
			return sql.BoolValue(sql.Compare(v1, v2) == 0), nil
		},
	}

	NotEqual = &binaryOp{
		name: expr.NotEqualOp.String(),
		fn: func(v1, v2 sql.Value) (sql.Value, error) {
			return sql.BoolValue(sql.Compare(v1, v2) != 0), nil
		},
	}

	GreaterThan = compareOp(expr.GreaterThanOp, func(cmp int) bool {
		return cmp > 0
	})

	GreaterEqual = compareOp(expr.GreaterEqualOp, func(cmp int) bool {
		return cmp >= 0
	})

	LessThan = compareOp(expr.LessThanOp, func(cmp int) bool {
		return cmp < 0
	})

	LessEqual = compareOp(expr.LessEqualOp, func(cmp int) bool {
		return cmp <= 0
	})
)

// compareOp orders numbers, strings, booleans, bytes, lists and maps; values of
// different types may not be ordered.
func compareOp(op expr.OpCode, test func(cmp int) bool) *binaryOp {
	return &binaryOp{
		name: op.String(),
		fn: func(v1, v2 sql.Value) (sql.Value, error) {
			cmp, err := v1.Compare(v2)
			if err != nil {
				return nil, typeMismatch(op.String(), v1, v2)
			}
			return sql.BoolValue(test(cmp)), nil
		},
	}
}
