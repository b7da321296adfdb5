package ops

import (
	"github.com/leftmike/sqlexpr/expr"
)

// aggOp is recognized by the parser and carried through folding; it is computed by the
// aggregation layer, not by expr.Eval.
type aggOp struct {
	name     string
	minSeeds int
	maxSeeds int
}

func (ao *aggOp) Name() string {
	return ao.name
}

func (_ *aggOp) HasSideEffect() bool {
	return false
}

func (ao *aggOp) FoldAgg(seeds, args []expr.Expr) (expr.Expr, error) {
	if len(seeds) < ao.minSeeds || len(seeds) > ao.maxSeeds {
		return nil, &expr.ArityError{Op: ao.name, Args: len(seeds)}
	}
	return nil, nil
}

var (
	Count = &aggOp{name: "count"}
	Sum   = &aggOp{name: "sum"}
	Min   = &aggOp{name: "min"}
	Max   = &aggOp{name: "max"}

	// Collect gathers its argument into a list; the optional seed limits the length.
	Collect = &aggOp{name: "collect", maxSeeds: 1}
)
