package ops

import (
	"fmt"
	"math"

	"github.com/leftmike/sqlexpr/expr"
	"github.com/leftmike/sqlexpr/sql"
)

var (
	Add = &binaryOp{
		name: expr.AddOp.String(),
		fn: func(v1, v2 sql.Value) (sql.Value, error) {
			return numFunc(expr.AddOp, v1, v2,
				func(i1, i2 sql.Int64Value) sql.Value {
					return i1 + i2
				},
				func(f1, f2 sql.Float64Value) sql.Value {
					return f1 + f2
				})
		},
	}

	Subtract = &binaryOp{
		name: expr.SubtractOp.String(),
		fn: func(v1, v2 sql.Value) (sql.Value, error) {
			return numFunc(expr.SubtractOp, v1, v2,
				func(i1, i2 sql.Int64Value) sql.Value {
					return i1 - i2
				},
				func(f1, f2 sql.Float64Value) sql.Value {
					return f1 - f2
				})
		},
	}

	Multiply = &binaryOp{
		name: expr.MultiplyOp.String(),
		fn: func(v1, v2 sql.Value) (sql.Value, error) {
			return numFunc(expr.MultiplyOp, v1, v2,
				func(i1, i2 sql.Int64Value) sql.Value {
					return i1 * i2
				},
				func(f1, f2 sql.Float64Value) sql.Value {
					return f1 * f2
				})
		},
	}

	// Divide always produces a float: 1 / 10 is 0.1.
	Divide = &binaryOp{
		name: expr.DivideOp.String(),
		fn: func(v1, v2 sql.Value) (sql.Value, error) {
			f1, f2, err := floatArgs(expr.DivideOp, v1, v2)
			if err != nil {
				return nil, err
			}
			return f1 / f2, nil
		},
	}

	Power = &binaryOp{
		name: expr.PowerOp.String(),
		fn: func(v1, v2 sql.Value) (sql.Value, error) {
			f1, f2, err := floatArgs(expr.PowerOp, v1, v2)
			if err != nil {
				return nil, err
			}
			return sql.Float64Value(math.Pow(float64(f1), float64(f2))), nil
		},
	}

	Modulo = &binaryOp{
		name: expr.ModuloOp.String(),
		fn: func(v1, v2 sql.Value) (sql.Value, error) {
			if i2, ok := v2.(sql.Int64Value); ok && i2 == 0 {
				if _, ok := v1.(sql.Int64Value); ok {
					return nil, fmt.Errorf("sqlexpr: %s modulo by zero", sql.Format(v1))
				}
			}
			return numFunc(expr.ModuloOp, v1, v2,
				func(i1, i2 sql.Int64Value) sql.Value {
					return i1 % i2
				},
				func(f1, f2 sql.Float64Value) sql.Value {
					return sql.Float64Value(math.Mod(float64(f1), float64(f2)))
				})
		},
	}

	StrCat = &binaryOp{
		name: expr.StrCatOp.String(),
		fn: func(v1, v2 sql.Value) (sql.Value, error) {
			if s1, ok := v1.(sql.StringValue); ok {
				if s2, ok := v2.(sql.StringValue); ok {
					return s1 + s2, nil
				}
			}
			return nil, typeMismatch(expr.StrCatOp.String(), v1, v2)
		},
	}

	Minus = &unaryOp{
		name: expr.MinusOp.String(),
		fn: func(v sql.Value) (sql.Value, error) {
			switch v := v.(type) {
			case sql.Float64Value:
				return -v, nil
			case sql.Int64Value:
				if v == math.MinInt64 {
					return nil, outOfRange(expr.MinusOp.String(), v)
				}
				return -v, nil
			}
			return nil, typeMismatch(expr.MinusOp.String(), v)
		},
	}
)

func numFunc(op expr.OpCode, v1, v2 sql.Value, ifn func(i1, i2 sql.Int64Value) sql.Value,
	ffn func(f1, f2 sql.Float64Value) sql.Value) (sql.Value, error) {

	switch v1 := v1.(type) {
	case sql.Float64Value:
		switch v2 := v2.(type) {
		case sql.Float64Value:
			return ffn(v1, v2), nil
		case sql.Int64Value:
			return ffn(v1, sql.Float64Value(v2)), nil
		}
	case sql.Int64Value:
		switch v2 := v2.(type) {
		case sql.Float64Value:
			return ffn(sql.Float64Value(v1), v2), nil
		case sql.Int64Value:
			return ifn(v1, v2), nil
		}
	}
	return nil, typeMismatch(op.String(), v1, v2)
}

func floatArgs(op expr.OpCode, v1, v2 sql.Value) (sql.Float64Value, sql.Float64Value, error) {
	var f1, f2 sql.Float64Value
	switch v := v1.(type) {
	case sql.Float64Value:
		f1 = v
	case sql.Int64Value:
		f1 = sql.Float64Value(v)
	default:
		return 0, 0, typeMismatch(op.String(), v1, v2)
	}
	switch v := v2.(type) {
	case sql.Float64Value:
		f2 = v
	case sql.Int64Value:
		f2 = sql.Float64Value(v)
	default:
		return 0, 0, typeMismatch(op.String(), v1, v2)
	}
	return f1, f2, nil
}
