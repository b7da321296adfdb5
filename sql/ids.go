package sql

import (
	"fmt"
)

// TableID identifies a table known to the catalog; Temp tables live only for the
// duration of a query.
type TableID struct {
	Temp bool
	ID   int
}

func (tid TableID) String() string {
	if tid.Temp {
		return fmt.Sprintf("t%d", tid.ID)
	}
	return fmt.Sprintf("#%d", tid.ID)
}

type ColumnID int

func (cid ColumnID) String() string {
	return fmt.Sprintf("c%d", int(cid))
}

// TupleIdx locates a value in the current row: the tuple Set within the row, whether the
// value is part of the Key or the payload, and the Col within that part.
type TupleIdx struct {
	Key bool
	Set int
	Col int
}

func (idx TupleIdx) String() string {
	if idx.Key {
		return fmt.Sprintf("@%d.k%d", idx.Set, idx.Col)
	}
	return fmt.Sprintf("@%d.%d", idx.Set, idx.Col)
}
