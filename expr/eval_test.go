package expr_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/leftmike/sqlexpr/expr"
	"github.com/leftmike/sqlexpr/flags"
	"github.com/leftmike/sqlexpr/sql"
	"github.com/leftmike/sqlexpr/testutil"
)

func TestEval(t *testing.T) {
	testutil.SetupLogger("sqlexpr_test.log")

	cases := []struct {
		s string
		r row
		v sql.Value
	}{
		{s: "2*3+1/10", v: sql.Float64Value(6.1)},
		{s: "'123' ++ '457.1'", v: sql.StringValue("123457.1")},
		{s: "1 > null", v: nil},
		{s: "!null", v: sql.BoolValue(false)},
		{s: "coalesce(null, null, 5)", v: sql.Int64Value(5)},
		{s: "x + 1", r: row{sql.Int64Value(41)}, v: sql.Int64Value(42)},
		{s: "x + 1", r: row{nil}, v: nil},
		{s: "x + 1.5", r: row{sql.Int64Value(1)}, v: sql.Float64Value(2.5)},
		{s: "x / y", r: row{sql.Int64Value(1), sql.Int64Value(4)}, v: sql.Float64Value(0.25)},
		{s: "x % y", r: row{sql.Int64Value(7), sql.Int64Value(4)}, v: sql.Int64Value(3)},
		{s: "x ^ y", r: row{sql.Int64Value(2), sql.Int64Value(10)}, v: sql.Float64Value(1024)},
		{s: "-x", r: row{sql.Float64Value(1.5)}, v: sql.Float64Value(-1.5)},
		{s: "-x", r: row{nil}, v: nil},
		{s: "not x", r: row{sql.BoolValue(true)}, v: sql.BoolValue(false)},
		{s: "not x", r: row{nil}, v: nil},
		{s: "x is null", r: row{nil}, v: sql.BoolValue(true)},
		{s: "x is null", r: row{sql.Int64Value(0)}, v: sql.BoolValue(false)},
		{s: "!x", r: row{nil}, v: sql.BoolValue(false)},
		{s: "!x", r: row{sql.StringValue("")}, v: sql.BoolValue(true)},
		{s: "x ~ y ~ 3", r: row{nil, nil}, v: sql.Int64Value(3)},
		{s: "x ~ y ~ 3", r: row{nil, sql.Int64Value(2)}, v: sql.Int64Value(2)},
		{s: "x ~ y", r: row{nil, nil}, v: nil},
		{s: "x = y", r: row{sql.Int64Value(1), sql.Float64Value(1)}, v: sql.BoolValue(true)},
		{s: "x != y", r: row{sql.StringValue("a"), sql.StringValue("b")},
			v: sql.BoolValue(true)},
		{s: "x < y", r: row{sql.StringValue("a"), sql.StringValue("b")}, v: sql.BoolValue(true)},
		{s: "x <= y", r: row{sql.Int64Value(2), sql.Float64Value(1.5)},
			v: sql.BoolValue(false)},
		{s: "x = y", r: row{sql.Int64Value(1), nil}, v: nil},
		{s: "x.k", r: row{sql.MapValue{"k": sql.StringValue("v")}}, v: sql.StringValue("v")},
		{s: "x.z", r: row{sql.MapValue{"k": sql.StringValue("v")}}, v: nil},
		{s: "x.k", r: row{nil}, v: nil},
		{s: "x[1]", r: row{sql.ListValue{sql.Int64Value(1), sql.Int64Value(2)}},
			v: sql.Int64Value(2)},
		{s: "x[2]", r: row{sql.ListValue{sql.Int64Value(1), sql.Int64Value(2)}}, v: nil},
		{s: "x[0]", r: row{nil}, v: nil},
		{s: "[x, y]", r: row{sql.Int64Value(1), nil}, v: sql.ListValue{sql.Int64Value(1), nil}},
		{s: "{a: x}", r: row{sql.BoolValue(true)}, v: sql.MapValue{"a": sql.BoolValue(true)}},
		{s: "abs(x)", r: row{sql.Int64Value(-3)}, v: sql.Int64Value(3)},
		{s: "abs(x)", r: row{nil}, v: nil},
		{s: "concat(x, '-', y)", r: row{sql.StringValue("a"), nil}, v: sql.StringValue("a-")},
		{s: "if(x, 'y', 'n')", r: row{nil}, v: sql.StringValue("n")},
		{s: "length(x)", r: row{sql.StringValue("héllo")}, v: sql.Int64Value(5)},
		{s: "t.c + 1", r: row{sql.Int64Value(1)}, v: nil},
		{s: "0.0/0 == 1", v: sql.BoolValue(false)},
		{s: "0.0/0 >= 1", v: sql.BoolValue(false)},
		{s: "0.0/0 < 1", v: sql.BoolValue(true)},
		{s: "x / y = x / y", r: row{sql.Int64Value(0), sql.Int64Value(0)},
			v: sql.BoolValue(true)},
		{s: "x / y > -1e308 * 10", r: row{sql.Float64Value(0), sql.Int64Value(0)},
			v: sql.BoolValue(false)},
	}

	for _, c := range cases {
		e, err := expr.Compile(parse(t, c.s), testContext, nil)
		if err != nil {
			t.Errorf("Compile(%q) failed with %s", c.s, err)
			continue
		}
		if c.s == "t.c + 1" {
			// Table columns are only bound to tuples by the tuple set.
			_, err = expr.Eval(e, c.r)
			var uerr *expr.UnresolvedTableColError
			if !errors.As(err, &uerr) {
				t.Errorf("Eval(%q) got %v want unresolved table column", c.s, err)
			}
			continue
		}
		v, err := expr.Eval(e, c.r)
		if err != nil {
			t.Errorf("Eval(%q) failed with %s", c.s, err)
		} else if !sql.Equal(v, c.v) {
			t.Errorf("Eval(%q) got %s want %s", c.s, sql.Format(v), sql.Format(c.v))
		}
	}
}

var logicValues = []sql.Value{sql.BoolValue(true), sql.BoolValue(false), nil}

func logicLiteral(v sql.Value) string {
	return sql.Format(v)
}

func TestThreeValuedLogic(t *testing.T) {
	or := map[[2]string]sql.Value{}
	and := map[[2]string]sql.Value{}
	for _, v1 := range logicValues {
		for _, v2 := range logicValues {
			k := [2]string{sql.Format(v1), sql.Format(v2)}
			b1, ok1 := v1.(sql.BoolValue)
			b2, ok2 := v2.(sql.BoolValue)

			if (ok1 && bool(b1)) || (ok2 && bool(b2)) {
				or[k] = sql.BoolValue(true)
			} else if ok1 && ok2 {
				or[k] = sql.BoolValue(false)
			} else {
				or[k] = nil
			}

			if (ok1 && !bool(b1)) || (ok2 && !bool(b2)) {
				and[k] = sql.BoolValue(false)
			} else if ok1 && ok2 {
				and[k] = sql.BoolValue(true)
			} else {
				and[k] = nil
			}
		}
	}

	for _, v1 := range logicValues {
		for _, v2 := range logicValues {
			k := [2]string{sql.Format(v1), sql.Format(v2)}
			for _, c := range []struct {
				op string
				v  sql.Value
			}{
				{"or", or[k]},
				{"and", and[k]},
			} {
				s := fmt.Sprintf("%s %s %s", logicLiteral(v1), c.op, logicLiteral(v2))
				e := parse(t, s)

				// Generic, specialized, and row based evaluation must all agree.
				v, err := expr.Eval(e, nil)
				if err != nil {
					t.Errorf("Eval(%q) failed with %s", s, err)
				} else if !sql.Equal(v, c.v) {
					t.Errorf("Eval(%q) got %s want %s", s, sql.Format(v), sql.Format(c.v))
				}

				se := expr.Specialize(e)
				v, err = expr.Eval(se, nil)
				if err != nil {
					t.Errorf("Eval(Specialize(%q)) failed with %s", s, err)
				} else if !sql.Equal(v, c.v) {
					t.Errorf("Eval(Specialize(%q)) got %s want %s", s, sql.Format(v),
						sql.Format(c.v))
				}

				ce, err := expr.Compile(parse(t, "x "+c.op+" y"), testContext, nil)
				if err != nil {
					t.Fatalf("Compile(x %s y) failed with %s", c.op, err)
				}
				v, err = expr.Eval(ce, row{v1, v2})
				if err != nil {
					t.Errorf("Eval(x %s y) with %s failed with %s", c.op, k, err)
				} else if !sql.Equal(v, c.v) {
					t.Errorf("Eval(x %s y) with %s got %s want %s", c.op, k, sql.Format(v),
						sql.Format(c.v))
				}
			}
		}
	}
}

func TestEvalErrors(t *testing.T) {
	cases := []struct {
		e     expr.Expr
		ectx  expr.EvalContext
		check func(err error) bool
	}{
		{
			e: expr.Variable("v"),
			check: func(err error) bool {
				var uerr *expr.UnresolvedVariableError
				return errors.As(err, &uerr) && uerr.Name == "v"
			},
		},
		{
			e: expr.TupleIdx{Set: 1, Col: 2},
			check: func(err error) bool {
				var uerr *expr.UnresolvedTupleError
				return errors.As(err, &uerr) && uerr.Idx == sql.TupleIdx{Set: 1, Col: 2}
			},
		},
		{
			e:    expr.TupleIdx{Set: 1, Col: 2},
			ectx: row{},
			check: func(err error) bool {
				var uerr *expr.UnresolvedTupleError
				return errors.As(err, &uerr)
			},
		},
		{
			e: parse(t, "count(1)"),
			check: func(err error) bool {
				var aerr *expr.AggregateContextError
				return errors.As(err, &aerr) && aerr.Name == "count"
			},
		},
		{
			e: expr.Specialize(parse(t, "1 + 'a'")),
			check: func(err error) bool {
				var terr *expr.TypeMismatchError
				return errors.As(err, &terr) && terr.Op == "+" && len(terr.Args) == 2
			},
		},
		{
			e: expr.Specialize(parse(t, "true and 1")),
			check: func(err error) bool {
				var terr *expr.TypeMismatchError
				return errors.As(err, &terr) && terr.Op == "and"
			},
		},
		{
			e: parse(t, "'a'.b"),
			check: func(err error) bool {
				var ferr *expr.FieldAccessError
				return errors.As(err, &ferr) && ferr.Value == "'a'"
			},
		},
		{
			e: parse(t, "1[0]"),
			check: func(err error) bool {
				var ierr *expr.IndexAccessError
				return errors.As(err, &ierr) && ierr.Value == "1"
			},
		},
		{
			e: &expr.Apply{Op: stubOp{name: "stub"}, Args: []expr.Expr{expr.Nil()}},
			check: func(err error) bool {
				return err == errStubCalled
			},
		},
	}

	for _, c := range cases {
		v, err := expr.Eval(c.e, c.ectx)
		if err == nil {
			t.Errorf("Eval(%s) did not fail, got %s", c.e, sql.Format(v))
		} else if !c.check(err) {
			t.Errorf("Eval(%s) failed with unexpected error %s", c.e, err)
		}
	}
}

func TestCompileFlags(t *testing.T) {
	cases := []struct {
		s       string
		fold    bool
		special bool
		r       string
	}{
		{"a + 1", true, true, "3"},
		{"a + 1", false, true, "(2 + 1)"},
		{"a + 1", true, false, "3"},
		{"a + x", false, false, "\"+\"(2, @0.0)"},
		{"coalesce(null, x)", false, true, "(null coalesce @0.0)"},
		{"m.k", false, false, "1"},
	}

	for _, c := range cases {
		flgs := flags.Default()
		flgs[flags.FoldConstants] = c.fold
		flgs[flags.SpecializeOps] = c.special

		e, err := expr.Compile(parse(t, c.s), testContext, flgs)
		if err != nil {
			t.Errorf("Compile(%q) failed with %s", c.s, err)
		} else if e.String() != c.r {
			t.Errorf("Compile(%q, %v, %v) got %s want %s", c.s, c.fold, c.special, e, c.r)
		}
	}
}

func TestEvalConcurrent(t *testing.T) {
	e, err := expr.Compile(parse(t, "x * 2 + coalesce(y, 1)"), testContext, nil)
	if err != nil {
		t.Fatalf("Compile() failed with %s", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				v, err := expr.Eval(e, row{sql.Int64Value(i), nil})
				if err != nil {
					errs[i] = err
					return
				} else if v != sql.Int64Value(i*2+1) {
					errs[i] = fmt.Errorf("got %s want %d", sql.Format(v), i*2+1)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Eval(goroutine %d) failed with %s", i, err)
		}
	}
}

func TestEvalBothSides(t *testing.T) {
	// The rows only have x, so evaluating y fails.
	cases := []struct {
		s string
		r row
	}{
		{"x + y", row{nil}},
		{"x * y", row{nil}},
		{"x = y", row{nil}},
		{"x ++ y", row{nil}},
		{"x ~ y", row{sql.Int64Value(1)}},
		{"x or y", row{sql.BoolValue(true)}},
		{"x and y", row{sql.BoolValue(false)}},
		{"x ~ y ~ 3", row{sql.Int64Value(1)}},
	}

	for _, c := range cases {
		e, err := expr.Compile(parse(t, c.s), testContext, nil)
		if err != nil {
			t.Errorf("Compile(%q) failed with %s", c.s, err)
			continue
		}
		if _, ok := e.(*expr.Binary); !ok {
			t.Errorf("Compile(%q) got %s want a binary node", c.s, e)
		}

		v, err := expr.Eval(e, c.r)
		var uerr *expr.UnresolvedTupleError
		if err == nil {
			t.Errorf("Eval(%q) did not fail, got %s", c.s, sql.Format(v))
		} else if !errors.As(err, &uerr) || uerr.Idx != (sql.TupleIdx{Col: 1}) {
			t.Errorf("Eval(%q) got %s want unresolved tuple index @0.1", c.s, err)
		}
	}
}
