package ops

import (
	"math"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/leftmike/sqlexpr/expr"
	"github.com/leftmike/sqlexpr/sql"
)

// callOp is a function which is not specialized; it is always evaluated through Eval.
type callOp struct {
	name       string
	minArgs    int
	maxArgs    int
	sideEffect bool
	handleNull bool
	fn         func(args []sql.Value) (sql.Value, error)
}

func (co *callOp) Name() string {
	return co.name
}

func (co *callOp) Arity() int {
	if co.minArgs != co.maxArgs {
		return expr.Variadic
	}
	return co.minArgs
}

func (co *callOp) HasSideEffect() bool {
	return co.sideEffect
}

func (co *callOp) Eval(hasNull bool, args []sql.Value) (sql.Value, error) {
	if len(args) < co.minArgs || len(args) > co.maxArgs {
		return nil, &expr.ArityError{Op: co.name, Args: len(args)}
	}
	if hasNull && !co.handleNull {
		return nil, nil
	}
	return co.fn(args)
}

func (co *callOp) Fold(args []expr.Expr) (expr.Expr, error) {
	if len(args) < co.minArgs || len(args) > co.maxArgs {
		return nil, &expr.ArityError{Op: co.name, Args: len(args)}
	}
	return foldLiterals(co, args)
}

// CheckArity returns an error if op can not be applied to n arguments.
func CheckArity(op expr.Operator, n int) error {
	if co, ok := op.(*callOp); ok {
		if n < co.minArgs || n > co.maxArgs {
			return &expr.ArityError{Op: co.name, Args: n}
		}
		return nil
	}
	return checkArity(op, n)
}

var (
	Abs = &callOp{
		name:    "abs",
		minArgs: 1,
		maxArgs: 1,
		fn: func(args []sql.Value) (sql.Value, error) {
			switch a0 := args[0].(type) {
			case sql.Float64Value:
				return sql.Float64Value(math.Abs(float64(a0))), nil
			case sql.Int64Value:
				if a0 == math.MinInt64 {
					return nil, outOfRange("abs", a0)
				} else if a0 < 0 {
					return -a0, nil
				}
				return a0, nil
			}
			return nil, typeMismatch("abs", args...)
		},
	}

	Concat = &callOp{
		name:       "concat",
		minArgs:    1,
		maxArgs:    math.MaxInt16,
		handleNull: true,
		fn: func(args []sql.Value) (sql.Value, error) {
			var buf strings.Builder
			for _, a := range args {
				switch a := a.(type) {
				case nil:
					continue
				case sql.StringValue:
					buf.WriteString(string(a))
				case sql.BoolValue, sql.Int64Value, sql.Float64Value:
					buf.WriteString(a.String())
				default:
					return nil, typeMismatch("concat", args...)
				}
			}
			return sql.StringValue(buf.String()), nil
		},
	}

	Lower = &callOp{
		name:    "lower",
		minArgs: 1,
		maxArgs: 1,
		fn: func(args []sql.Value) (sql.Value, error) {
			if s, ok := args[0].(sql.StringValue); ok {
				return sql.StringValue(strings.ToLower(string(s))), nil
			}
			return nil, typeMismatch("lower", args...)
		},
	}

	Upper = &callOp{
		name:    "upper",
		minArgs: 1,
		maxArgs: 1,
		fn: func(args []sql.Value) (sql.Value, error) {
			if s, ok := args[0].(sql.StringValue); ok {
				return sql.StringValue(strings.ToUpper(string(s))), nil
			}
			return nil, typeMismatch("upper", args...)
		},
	}

	Length = &callOp{
		name:    "length",
		minArgs: 1,
		maxArgs: 1,
		fn: func(args []sql.Value) (sql.Value, error) {
			switch a0 := args[0].(type) {
			case sql.StringValue:
				return sql.Int64Value(utf8.RuneCountInString(string(a0))), nil
			case sql.BytesValue:
				return sql.Int64Value(len(a0)), nil
			case sql.ListValue:
				return sql.Int64Value(len(a0)), nil
			case sql.MapValue:
				return sql.Int64Value(len(a0)), nil
			}
			return nil, typeMismatch("length", args...)
		},
	}

	// If returns its second argument when the first is true, and its third otherwise; a
	// null condition is not true.
	If = &callOp{
		name:       "if",
		minArgs:    3,
		maxArgs:    3,
		handleNull: true,
		fn: func(args []sql.Value) (sql.Value, error) {
			switch c := args[0].(type) {
			case nil:
				return args[2], nil
			case sql.BoolValue:
				if c {
					return args[1], nil
				}
				return args[2], nil
			}
			return nil, typeMismatch("if", args...)
		},
	}

	Rand = &callOp{
		name:       "rand",
		minArgs:    0,
		maxArgs:    0,
		sideEffect: true,
		fn: func(args []sql.Value) (sql.Value, error) {
			return sql.Float64Value(rand.Float64()), nil
		},
	}

	Now = &callOp{
		name:       "now",
		minArgs:    0,
		maxArgs:    0,
		sideEffect: true,
		fn: func(args []sql.Value) (sql.Value, error) {
			return sql.StringValue(time.Now().UTC().Format(time.RFC3339Nano)), nil
		},
	}
)
