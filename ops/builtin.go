package ops

func init() {
	for _, op := range []*binaryOp{Add, Subtract, Multiply, Divide, Power, Modulo, StrCat,
		Equal, NotEqual, GreaterThan, GreaterEqual, LessThan, LessEqual} {

		Register(op)
	}
	Register(Minus)
	Register(Not)
	Register(IsNull)
	Register(NotNull)
	Register(Coalesce)
	Register(Or)
	Register(And)

	for _, op := range []*callOp{Abs, Concat, Lower, Upper, Length, If, Rand, Now} {
		Register(op)
	}

	for _, op := range []*aggOp{Count, Sum, Min, Max, Collect} {
		RegisterAgg(op)
	}
}
