// Package tupleset names the tables an expression can refer to and lays out the rows it is
// evaluated against.
package tupleset

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	log "github.com/sirupsen/logrus"

	"github.com/leftmike/sqlexpr/expr"
	"github.com/leftmike/sqlexpr/flags"
	"github.com/leftmike/sqlexpr/sql"
)

// Binding is a table visible to expressions under Name; its tuples are Set in each Row.
type Binding struct {
	Name    string
	Table   sql.TableID
	Columns []string
	Set     int

	columns map[string]sql.ColumnID
}

type TupleSet struct {
	bindings []*Binding
	byName   map[string]*Binding
	vars     map[string]expr.Expr
	rows     [][][]sql.Value
	lastID   int
}

func New() *TupleSet {
	return &TupleSet{
		byName: map[string]*Binding{},
		vars:   map[string]expr.Expr{},
	}
}

// AddBinding makes a table with columns visible as name; the columns are numbered from zero
// in order.
func (ts *TupleSet) AddBinding(name string, columns ...string) (*Binding, error) {
	if _, ok := ts.byName[name]; ok {
		return nil, fmt.Errorf("tupleset: binding %s already exists", name)
	}
	if _, ok := ts.vars[name]; ok {
		return nil, fmt.Errorf("tupleset: binding %s is already a variable", name)
	}

	ts.lastID += 1
	b := &Binding{
		Name:    name,
		Table:   sql.TableID{Temp: true, ID: ts.lastID},
		Columns: columns,
		Set:     len(ts.bindings),
		columns: map[string]sql.ColumnID{},
	}
	for cdx, col := range columns {
		if _, ok := b.columns[col]; ok {
			return nil, fmt.Errorf("tupleset: binding %s: duplicate column %s", name, col)
		}
		b.columns[col] = sql.ColumnID(cdx)
	}

	ts.bindings = append(ts.bindings, b)
	ts.byName[name] = b
	ts.rows = append(ts.rows, nil)
	log.WithFields(log.Fields{"binding": name, "table": b.Table, "columns": columns}).Debug(
		"add binding")
	return b, nil
}

// AddRow appends a tuple to the rows of a binding.
func (ts *TupleSet) AddRow(name string, tuple []sql.Value) error {
	b, ok := ts.byName[name]
	if !ok {
		return fmt.Errorf("tupleset: binding %s not found", name)
	}
	if len(tuple) != len(b.Columns) {
		return fmt.Errorf("tupleset: binding %s: want %d values got %d", name, len(b.Columns),
			len(tuple))
	}
	ts.rows[b.Set] = append(ts.rows[b.Set], tuple)
	return nil
}

func (ts *TupleSet) Bindings() []*Binding {
	return ts.bindings
}

// SetVariable makes name stand for e; e is folded wherever name is used, so e must not refer
// to name, directly or through other variables.
func (ts *TupleSet) SetVariable(name string, e expr.Expr) error {
	if _, ok := ts.byName[name]; ok {
		return fmt.Errorf("tupleset: variable %s is already a binding", name)
	}
	if ts.refersTo(e, name, mapset.NewThreadUnsafeSet[string]()) {
		return fmt.Errorf("tupleset: variable %s refers to itself", name)
	}
	ts.vars[name] = e
	return nil
}

func (ts *TupleSet) refersTo(e expr.Expr, name string, seen mapset.Set[string]) bool {
	for _, v := range expr.Variables(e).ToSlice() {
		if v == name {
			return true
		}
		if !seen.Add(v) {
			continue
		}
		if ve, ok := ts.vars[v]; ok && ts.refersTo(ve, name, seen) {
			return true
		}
	}
	return false
}

func (ts *TupleSet) UnsetVariable(name string) bool {
	_, ok := ts.vars[name]
	delete(ts.vars, name)
	return ok
}

func (ts *TupleSet) Variables() map[string]expr.Expr {
	return ts.vars
}

func (ts *TupleSet) Resolve(name string) (expr.Expr, bool) {
	e, ok := ts.vars[name]
	return e, ok
}

func (ts *TupleSet) ResolveTableCol(binding, field string) (sql.TableID, sql.ColumnID, bool) {
	b, ok := ts.byName[binding]
	if !ok {
		return sql.TableID{}, 0, false
	}
	cid, ok := b.columns[field]
	return b.Table, cid, ok
}

// Bind replaces the table columns of e by their positions in a Row.
func (ts *TupleSet) Bind(e expr.Expr) (expr.Expr, error) {
	return expr.Rewrite(e, func(e expr.Expr) (expr.Expr, error) {
		tc, ok := e.(expr.TableCol)
		if !ok {
			return e, nil
		}
		for _, b := range ts.bindings {
			if b.Table == tc.Table && int(tc.Column) < len(b.Columns) {
				return expr.TupleIdx{Set: b.Set, Col: int(tc.Column)}, nil
			}
		}
		return nil, &expr.UnresolvedTableColError{Table: tc.Table, Column: tc.Column}
	})
}

// Compile folds and specializes e in the context of the tuple set and binds it to the row
// layout, ready for Eval with a Row.
func (ts *TupleSet) Compile(e expr.Expr, flgs flags.Flags) (expr.Expr, error) {
	ce, err := expr.Compile(e, ts, flgs)
	if err != nil {
		return nil, err
	}
	return ts.Bind(ce)
}

// Rows calls fn with every combination of one tuple from each binding; there are no rows if
// any binding is empty.
func (ts *TupleSet) Rows(fn func(r Row) error) error {
	if len(ts.bindings) == 0 {
		return nil
	}
	r := make(Row, len(ts.bindings))
	return ts.rowsFrom(0, r, fn)
}

func (ts *TupleSet) rowsFrom(set int, r Row, fn func(r Row) error) error {
	if set == len(r) {
		return fn(r)
	}
	for _, tuple := range ts.rows[set] {
		r[set] = tuple
		err := ts.rowsFrom(set+1, r, fn)
		if err != nil {
			return err
		}
	}
	return nil
}

// Row is one tuple for each binding of a TupleSet, in order.
type Row [][]sql.Value

func (r Row) EvalTuple(idx sql.TupleIdx) (sql.Value, error) {
	if idx.Key || idx.Set < 0 || idx.Set >= len(r) || idx.Col < 0 ||
		idx.Col >= len(r[idx.Set]) {

		return nil, &expr.UnresolvedTupleError{Idx: idx}
	}
	return r[idx.Set][idx.Col], nil
}
