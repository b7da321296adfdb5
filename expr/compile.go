package expr

import (
	log "github.com/sirupsen/logrus"

	"github.com/leftmike/sqlexpr/flags"
)

// Compile prepares an expression for Eval: it is folded using fctx and then specialized,
// always in that order. Variables and table columns are resolved even when the flags turn
// off the fold hooks of the operators.
func Compile(e Expr, fctx FoldContext, flgs flags.Flags) (Expr, error) {
	if flgs == nil {
		flgs = flags.Default()
	}

	log.WithField("expr", e).Trace("compile")
	ce, err := fold(e, fctx, flgs.GetFlag(flags.FoldConstants))
	if err != nil {
		log.WithFields(log.Fields{"expr": e, "error": err}).Debug("fold failed")
		return nil, err
	}
	log.WithField("expr", ce).Trace("folded")

	if flgs.GetFlag(flags.SpecializeOps) {
		ce = Specialize(ce)
		log.WithField("expr", ce).Trace("specialized")
	}
	return ce, nil
}
