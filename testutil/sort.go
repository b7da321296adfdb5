package testutil

import (
	"golang.org/x/exp/slices"

	"github.com/leftmike/sqlexpr/sql"
)

// SortRows orders rows by the values in cols, in turn; a negative col sorts on column
// -col-1 in reverse.
func SortRows(rows [][]sql.Value, cols ...int) {
	slices.SortStableFunc(rows, func(r1, r2 []sql.Value) bool {
		for _, col := range cols {
			rev := col < 0
			if rev {
				col = -col - 1
			}
			cmp := sql.Compare(r1[col], r2[col])
			if cmp < 0 {
				return !rev
			} else if cmp > 0 {
				return rev
			}
		}
		return false
	})
}
