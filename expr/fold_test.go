package expr_test

import (
	"errors"
	"testing"

	"github.com/leftmike/sqlexpr/expr"
)

func TestFold(t *testing.T) {
	cases := []struct {
		s string
		r string
	}{
		{"1 + 2", "3"},
		{"2 * 3 + 1 / 10", "6.1"},
		{"'123' ++ '457.1'", "'123457.1'"},
		{"1 > null", "null"},
		{"!null", "false"},
		{"!1", "true"},
		{"null IS NULL", "true"},
		{"1 is not null", "true"},
		{"coalesce(null, null, 5)", "5"},
		{"null ~ null", "null"},
		{"coalesce(null, x, 5)", "coalesce(@0.0, 5)"},
		{"coalesce(null, x)", "@0.0"},
		{"coalesce(x, null)", "coalesce(@0.0, null)"},
		{"a + 1", "3"},
		{"b * 2", "6"},
		{"x + a", "\"+\"(@0.0, 2)"},
		{"x + 1 + 2", "\"+\"(\"+\"(@0.0, 1), 2)"},
		{"t.c", "[#1.c2]"},
		{"t.c + 1", "\"+\"([#1.c2], 1)"},
		{"m.k", "1"},
		{"m.z", "null"},
		{"l[1]", "'q'"},
		{"l[2]", "null"},
		{"l[-1]", "null"},
		{"n.k", "null"},
		{"n[0]", "null"},
		{"{k: a}.k", "2"},
		{"{k: a}.z", "null"},
		{"[a, x][1]", "@0.0"},
		{"[a, x][0]", "2"},
		{"[a, x][2]", "null"},
		{"x.k", "@0.0.k"},
		{"x[0].k", "@0.0[0].k"},
		{"(x + 1).k", "\"+\"(@0.0, 1).k"},
		{"[a, b, x]", "[2, 3, @0.0]"},
		{"{p: a, q: x}", "{'p': 2, 'q': @0.0}"},
		{"rand() + 1", "\"+\"(rand(), 1)"},
		{"abs(-2)", "2"},
		{"abs(0 - 2.5)", "2.5"},
		{"concat('a', 1, null)", "'a1'"},
		{"if(null, 1, 2)", "2"},
		{"if(1 < 2, 'y', 'n')", "'y'"},
		{"upper('ab')", "'AB'"},
		{"lower('AB')", "'ab'"},
		{"length('abc')", "3"},
		{"7 % 3", "1"},
		{"2 ^ 3", "8"},
		{"-(1)", "-1"},
		{"-(x)", "minus(@0.0)"},
		{"-(a)", "-2"},
		{"not true", "false"},
		{"not null", "null"},
		{"x is not null", "not_null(@0.0)"},
		{"true or x", "or(true, @0.0)"},
		{"true or false", "true"},
		{"null and false", "false"},
		{"null or false", "null"},
		{"1 == 1.0", "true"},
		{"'a' < 'b'", "true"},
		{"count(x)", "count(@0.0)"},
		{"collect[a](x)", "collect[2](@0.0)"},
	}

	for _, c := range cases {
		e, err := expr.Fold(parse(t, c.s), testContext)
		if err != nil {
			t.Errorf("Fold(%q) failed with %s", c.s, err)
		} else if e.String() != c.r {
			t.Errorf("Fold(%q) got %s want %s", c.s, e, c.r)
		}
	}
}

func TestFoldErrors(t *testing.T) {
	cases := []struct {
		s     string
		check func(err error) bool
	}{
		{"z", func(err error) bool {
			var uerr *expr.UnresolvedVariableError
			return errors.As(err, &uerr) && uerr.Name == "z"
		}},
		{"t.d", func(err error) bool {
			var uerr *expr.UnresolvedVariableError
			return errors.As(err, &uerr) && uerr.Name == "t"
		}},
		{"1 + 'a'", func(err error) bool {
			var terr *expr.TypeMismatchError
			return errors.As(err, &terr) && terr.Op == "+"
		}},
		{"1 < 'a'", func(err error) bool {
			var terr *expr.TypeMismatchError
			return errors.As(err, &terr)
		}},
		{"not 1", func(err error) bool {
			var terr *expr.TypeMismatchError
			return errors.As(err, &terr) && terr.Op == "not"
		}},
		{"1 or true", func(err error) bool {
			var terr *expr.TypeMismatchError
			return errors.As(err, &terr) && terr.Op == "or"
		}},
		{"7 % 0", func(err error) bool {
			return err != nil
		}},
		{"'abc'.a", func(err error) bool {
			var ferr *expr.FieldAccessError
			return errors.As(err, &ferr) && ferr.Field == "a" && ferr.Value == "'abc'"
		}},
		{"a[0]", func(err error) bool {
			var ierr *expr.IndexAccessError
			return errors.As(err, &ierr) && ierr.Index == 0 && ierr.Value == "2"
		}},
		{"[1, z]", func(err error) bool {
			var uerr *expr.UnresolvedVariableError
			return errors.As(err, &uerr)
		}},
		{"collect[1, 2](x)", func(err error) bool {
			var aerr *expr.ArityError
			return errors.As(err, &aerr) && aerr.Op == "collect"
		}},
	}

	for _, c := range cases {
		e, err := expr.Fold(parse(t, c.s), testContext)
		if err == nil {
			t.Errorf("Fold(%q) did not fail, got %s", c.s, e)
		} else if !c.check(err) {
			t.Errorf("Fold(%q) failed with unexpected error %s", c.s, err)
		}
	}
}

func TestFoldNilContext(t *testing.T) {
	e, err := expr.Fold(parse(t, "1 + 2 * 3"), nil)
	if err != nil {
		t.Errorf("Fold(nil context) failed with %s", err)
	} else if e.String() != "7" {
		t.Errorf("Fold(nil context) got %s want 7", e)
	}

	_, err = expr.Fold(parse(t, "a"), nil)
	var uerr *expr.UnresolvedVariableError
	if !errors.As(err, &uerr) {
		t.Errorf("Fold(a) got %v want unresolved variable", err)
	}
}

func TestFoldIdempotent(t *testing.T) {
	cases := []string{
		"1 + 2",
		"x + a",
		"coalesce(null, x, y, 5)",
		"x.k[1]",
		"t.c * 2",
		"[a, {k: x}]",
		"rand() < 0.5",
		"x is null or y > b",
		"count(x + 1)",
	}

	for _, s := range cases {
		e1, err := expr.Fold(parse(t, s), testContext)
		if err != nil {
			t.Errorf("Fold(%q) failed with %s", s, err)
			continue
		}
		e2, err := expr.Fold(e1, testContext)
		if err != nil {
			t.Errorf("Fold(Fold(%q)) failed with %s", s, err)
		} else if !e1.Equal(e2) {
			t.Errorf("Fold(Fold(%q)) got %s want %s", s, e2, e1)
		}
	}
}

func TestFoldSpecialized(t *testing.T) {
	cases := []string{
		"x + 1",
		"!x",
		"[x + 1]",
		"abs(x - 1)",
	}

	for _, s := range cases {
		e, err := expr.Fold(parse(t, s), testContext)
		if err != nil {
			t.Fatalf("Fold(%q) failed with %s", s, err)
		}
		_, err = expr.Fold(expr.Specialize(e), testContext)
		if err != expr.ErrSpecializedBeforeFold {
			t.Errorf("Fold(Specialize(%q)) got %v want %s", s, err, expr.ErrSpecializedBeforeFold)
		}
	}
}

func TestFoldSideEffects(t *testing.T) {
	e, err := expr.Fold(parse(t, "rand()"), nil)
	if err != nil {
		t.Fatalf("Fold(rand()) failed with %s", err)
	}
	if _, ok := e.(*expr.Apply); !ok {
		t.Errorf("Fold(rand()) got %s want apply", e)
	}
}
