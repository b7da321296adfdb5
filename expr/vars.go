package expr

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Variables returns the free variables of an expression; the bindings of field accesses of
// a variable are included.
func Variables(e Expr) mapset.Set[string] {
	vars := mapset.NewThreadUnsafeSet[string]()
	variables(e, vars)
	return vars
}

func variables(e Expr, vars mapset.Set[string]) {
	switch e := e.(type) {
	case Variable:
		vars.Add(string(e))
	case List:
		for _, le := range e {
			variables(le, vars)
		}
	case Dict:
		for _, de := range e {
			variables(de, vars)
		}
	case *FieldAccess:
		variables(e.Expr, vars)
	case *IndexAccess:
		variables(e.Expr, vars)
	case *Apply:
		for _, a := range e.Args {
			variables(a, vars)
		}
	case *ApplyAgg:
		for _, s := range e.Seeds {
			variables(s, vars)
		}
		for _, a := range e.Args {
			variables(a, vars)
		}
	case *Binary:
		variables(e.Left, vars)
		variables(e.Right, vars)
	case *Unary:
		variables(e.Expr, vars)
	}
}
