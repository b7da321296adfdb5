package expr

import (
	"github.com/leftmike/sqlexpr/sql"
)

// Variadic is the Arity of an operator which accepts any number of arguments.
const Variadic = -1

// Operator is a scalar operator applied to a list of arguments.
type Operator interface {
	Name() string
	Arity() int
	HasSideEffect() bool

	// Eval is the generic entry point: it gets every argument, evaluated, along with whether
	// any of them was null, and implements its own null policy.
	Eval(hasNull bool, args []sql.Value) (sql.Value, error)

	// Fold may replace an application of the operator to already folded arguments by a
	// simpler expression; it returns nil when it declines.
	Fold(args []Expr) (Expr, error)
}

// AggOperator is an aggregate; it is recognized and folded here but evaluated by a
// group aware component.
type AggOperator interface {
	Name() string
	HasSideEffect() bool
	FoldAgg(seeds, args []Expr) (Expr, error)
}

// TwoNonNullEvaluator is implemented by binary operators which propagate null; neither
// argument is ever null.
type TwoNonNullEvaluator interface {
	EvalTwoNonNull(v1, v2 sql.Value) (sql.Value, error)
}

// OneNonNullEvaluator is implemented by unary operators which propagate null.
type OneNonNullEvaluator interface {
	EvalOneNonNull(v sql.Value) (sql.Value, error)
}

// OneEvaluator is implemented by unary operators which need to see null.
type OneEvaluator interface {
	EvalOne(v sql.Value) (sql.Value, error)
}

// TwoEvaluator is implemented by binary operators with three-valued semantics.
type TwoEvaluator interface {
	EvalTwo(v1, v2 sql.Value) (sql.Value, error)
}

// OpCode enumerates the built-in operators which get specialized nodes.
type OpCode int

const (
	NoOp OpCode = iota
	AddOp
	AndOp
	CoalesceOp
	DivideOp
	EqualOp
	GreaterEqualOp
	GreaterThanOp
	IsNullOp
	LessEqualOp
	LessThanOp
	MinusOp
	ModuloOp
	MultiplyOp
	NegateOp
	NotEqualOp
	NotNullOp
	OrOp
	PowerOp
	StrCatOp
	SubtractOp
)

type opFamily int

const (
	noFamily       opFamily = iota
	nonNullBinary           // Add .. Le: null on either side is null
	nonNullUnary            // Negate, Minus: null is null
	nullUnary               // IsNull, NotNull: see null
	threeValued             // Coalesce, Or, And: see null, left folded when variadic
)

var ops = [...]struct {
	name       string
	precedence int
	family     opFamily
}{
	NoOp:           {"", 12, noFamily},
	AddOp:          {"+", 8, nonNullBinary},
	AndOp:          {"and", 2, threeValued},
	CoalesceOp:     {"coalesce", 5, threeValued},
	DivideOp:       {"/", 9, nonNullBinary},
	EqualOp:        {"==", 4, nonNullBinary},
	GreaterEqualOp: {">=", 4, nonNullBinary},
	GreaterThanOp:  {">", 4, nonNullBinary},
	IsNullOp:       {"is_null", 4, nullUnary},
	LessEqualOp:    {"<=", 4, nonNullBinary},
	LessThanOp:     {"<", 4, nonNullBinary},
	MinusOp:        {"minus", 11, nonNullUnary},
	ModuloOp:       {"%", 9, nonNullBinary},
	MultiplyOp:     {"*", 9, nonNullBinary},
	NegateOp:       {"not", 3, nonNullUnary},
	NotEqualOp:     {"!=", 4, nonNullBinary},
	NotNullOp:      {"not_null", 4, nullUnary},
	OrOp:           {"or", 1, threeValued},
	PowerOp:        {"^", 10, nonNullBinary},
	StrCatOp:       {"++", 8, nonNullBinary},
	SubtractOp:     {"-", 8, nonNullBinary},
}

var opCodes = map[string]OpCode{}

func init() {
	for op := range ops {
		if op == int(NoOp) {
			continue
		}
		if _, ok := opCodes[ops[op].name]; ok {
			panic("duplicate operator name: " + ops[op].name)
		}
		opCodes[ops[op].name] = OpCode(op)
	}
}

// LookupOpCode returns the built-in matching the name of an operator.
func LookupOpCode(name string) (OpCode, bool) {
	op, ok := opCodes[name]
	return op, ok
}

func (op OpCode) String() string {
	return ops[op].name
}

func (op OpCode) Precedence() int {
	return ops[op].precedence
}

func (op OpCode) IsBinary() bool {
	f := ops[op].family
	return f == nonNullBinary || f == threeValued
}

func (op OpCode) IsUnary() bool {
	f := ops[op].family
	return f == nonNullUnary || f == nullUnary
}

// IsVariadic is true for the built-ins which take any number of operands, evaluated pairwise
// from the left.
func (op OpCode) IsVariadic() bool {
	return ops[op].family == threeValued
}

// PropagatesNull is true for the built-ins whose result is null whenever an operand is null;
// they are never called with a null operand.
func (op OpCode) PropagatesNull() bool {
	f := ops[op].family
	return f == nonNullBinary || f == nonNullUnary
}
