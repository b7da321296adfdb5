// Package ops implements the built-in operators and functions and keeps the registry the
// parser looks them up in.
package ops

import (
	"fmt"
	"strings"
	"sync"

	"github.com/leftmike/sqlexpr/expr"
	"github.com/leftmike/sqlexpr/sql"
)

var (
	registryMutex sync.RWMutex
	registry      = map[string]expr.Operator{}
	aggRegistry   = map[string]expr.AggOperator{}
)

// Register makes an operator available by name to the parser; it panics if the name is
// already taken.
func Register(op expr.Operator) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	nam := strings.ToLower(op.Name())
	if _, dup := registry[nam]; dup {
		panic("ops: register called twice for operator: " + nam)
	}
	if _, dup := aggRegistry[nam]; dup {
		panic("ops: operator already registered as an aggregate: " + nam)
	}
	registry[nam] = op
}

func RegisterAgg(op expr.AggOperator) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	nam := strings.ToLower(op.Name())
	if _, dup := aggRegistry[nam]; dup {
		panic("ops: register called twice for aggregate: " + nam)
	}
	if _, dup := registry[nam]; dup {
		panic("ops: aggregate already registered as an operator: " + nam)
	}
	aggRegistry[nam] = op
}

func Lookup(nam string) (expr.Operator, bool) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	op, ok := registry[strings.ToLower(nam)]
	return op, ok
}

func LookupAgg(nam string) (expr.AggOperator, bool) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	op, ok := aggRegistry[strings.ToLower(nam)]
	return op, ok
}

// Builtin returns the operator implementing a built-in op code.
func Builtin(op expr.OpCode) expr.Operator {
	bop, ok := Lookup(op.String())
	if !ok {
		panic(fmt.Sprintf("ops: missing builtin for %s", op))
	}
	return bop
}

func checkArity(op expr.Operator, n int) error {
	if ar := op.Arity(); (ar == expr.Variadic && n == 0) || (ar != expr.Variadic && ar != n) {
		return &expr.ArityError{Op: op.Name(), Args: n}
	}
	return nil
}

func literalValues(args []expr.Expr) ([]sql.Value, bool, bool) {
	vals := make([]sql.Value, len(args))
	var hasNull bool
	for i, a := range args {
		l, ok := a.(*expr.Literal)
		if !ok {
			return nil, false, false
		}
		vals[i] = l.Value
		if l.Value == nil {
			hasNull = true
		}
	}
	return vals, hasNull, true
}

// foldLiterals evaluates op ahead of time when every argument is a literal.
func foldLiterals(op expr.Operator, args []expr.Expr) (expr.Expr, error) {
	vals, hasNull, ok := literalValues(args)
	if !ok {
		return nil, nil
	}
	v, err := op.Eval(hasNull, vals)
	if err != nil {
		return nil, err
	}
	return &expr.Literal{Value: v}, nil
}

func outOfRange(op string, v sql.Value) error {
	return fmt.Errorf("sqlexpr: %s(%s) is out of range", op, sql.Format(v))
}

func typeMismatch(op string, args ...sql.Value) error {
	return &expr.TypeMismatchError{Op: op, Args: args}
}

type binaryOp struct {
	name string
	fn   func(v1, v2 sql.Value) (sql.Value, error)
}

func (bo *binaryOp) Name() string {
	return bo.name
}

func (_ *binaryOp) Arity() int {
	return 2
}

func (_ *binaryOp) HasSideEffect() bool {
	return false
}

func (bo *binaryOp) Eval(hasNull bool, args []sql.Value) (sql.Value, error) {
	if err := checkArity(bo, len(args)); err != nil {
		return nil, err
	}
	if hasNull {
		return nil, nil
	}
	return bo.fn(args[0], args[1])
}

func (bo *binaryOp) EvalTwoNonNull(v1, v2 sql.Value) (sql.Value, error) {
	return bo.fn(v1, v2)
}

func (bo *binaryOp) Fold(args []expr.Expr) (expr.Expr, error) {
	return foldLiterals(bo, args)
}

type unaryOp struct {
	name string
	fn   func(v sql.Value) (sql.Value, error)
}

func (uo *unaryOp) Name() string {
	return uo.name
}

func (_ *unaryOp) Arity() int {
	return 1
}

func (_ *unaryOp) HasSideEffect() bool {
	return false
}

func (uo *unaryOp) Eval(hasNull bool, args []sql.Value) (sql.Value, error) {
	if err := checkArity(uo, len(args)); err != nil {
		return nil, err
	}
	if hasNull {
		return nil, nil
	}
	return uo.fn(args[0])
}

func (uo *unaryOp) EvalOneNonNull(v sql.Value) (sql.Value, error) {
	return uo.fn(v)
}

func (uo *unaryOp) Fold(args []expr.Expr) (expr.Expr, error) {
	return foldLiterals(uo, args)
}

// nullTestOp is a unary operator which sees null.
type nullTestOp struct {
	name string
	fn   func(v sql.Value) sql.Value
}

func (nt *nullTestOp) Name() string {
	return nt.name
}

func (_ *nullTestOp) Arity() int {
	return 1
}

func (_ *nullTestOp) HasSideEffect() bool {
	return false
}

func (nt *nullTestOp) Eval(hasNull bool, args []sql.Value) (sql.Value, error) {
	if err := checkArity(nt, len(args)); err != nil {
		return nil, err
	}
	return nt.fn(args[0]), nil
}

func (nt *nullTestOp) EvalOne(v sql.Value) (sql.Value, error) {
	return nt.fn(v), nil
}

func (nt *nullTestOp) Fold(args []expr.Expr) (expr.Expr, error) {
	return foldLiterals(nt, args)
}

// logicOp is a variadic operator with three-valued semantics, evaluated pairwise from the
// left.
type logicOp struct {
	name string
	fn   func(v1, v2 sql.Value) (sql.Value, error)
	one  func(v sql.Value) error
	fold func(lo *logicOp, args []expr.Expr) (expr.Expr, error)
}

func (lo *logicOp) Name() string {
	return lo.name
}

func (_ *logicOp) Arity() int {
	return expr.Variadic
}

func (_ *logicOp) HasSideEffect() bool {
	return false
}

func (lo *logicOp) Eval(hasNull bool, args []sql.Value) (sql.Value, error) {
	if err := checkArity(lo, len(args)); err != nil {
		return nil, err
	}

	v := args[0]
	if len(args) == 1 && lo.one != nil {
		if err := lo.one(v); err != nil {
			return nil, err
		}
	}
	for _, a := range args[1:] {
		var err error
		v, err = lo.fn(v, a)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (lo *logicOp) EvalTwo(v1, v2 sql.Value) (sql.Value, error) {
	return lo.fn(v1, v2)
}

func (lo *logicOp) Fold(args []expr.Expr) (expr.Expr, error) {
	if lo.fold != nil {
		return lo.fold(lo, args)
	}
	return foldLiterals(lo, args)
}
