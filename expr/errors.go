package expr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leftmike/sqlexpr/sql"
)

// ErrSpecializedBeforeFold is returned by Fold when the tree has already been through
// Specialize.
var ErrSpecializedBeforeFold = errors.New("sqlexpr: specialized expression passed to fold")

type UnresolvedVariableError struct {
	Name string
}

func (e *UnresolvedVariableError) Error() string {
	return fmt.Sprintf("sqlexpr: unresolved variable \"%s\"", e.Name)
}

type UnresolvedTableColError struct {
	Table  sql.TableID
	Column sql.ColumnID
}

func (e *UnresolvedTableColError) Error() string {
	return fmt.Sprintf("sqlexpr: unresolved table column %s.%s", e.Table, e.Column)
}

type UnresolvedTupleError struct {
	Idx sql.TupleIdx
}

func (e *UnresolvedTupleError) Error() string {
	return fmt.Sprintf("sqlexpr: unresolved tuple index %s", e.Idx)
}

type FieldAccessError struct {
	Field string
	Value string
}

func (e *FieldAccessError) Error() string {
	return fmt.Sprintf("sqlexpr: cannot access field %s for %s", e.Field, e.Value)
}

type IndexAccessError struct {
	Index int
	Value string
}

func (e *IndexAccessError) Error() string {
	return fmt.Sprintf("sqlexpr: cannot access index %d for %s", e.Index, e.Value)
}

// ParseError wraps an error from the parser without changing its message.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type TypeMismatchError struct {
	Op   string
	Args []sql.Value
}

func (e *TypeMismatchError) Error() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = sql.Format(a)
	}
	return fmt.Sprintf("sqlexpr: cannot apply \"%s\" to %s", e.Op, strings.Join(args, ", "))
}

type ArityError struct {
	Op   string
	Args int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("sqlexpr: arity mismatch for \"%s\", %d arguments given", e.Op, e.Args)
}

type AggregateContextError struct {
	Name string
}

func (e *AggregateContextError) Error() string {
	return fmt.Sprintf("sqlexpr: aggregate \"%s\" used in scalar context", e.Name)
}
