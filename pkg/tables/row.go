package tables

import (
	"fmt"

	"github.com/google/btree"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/common"
)

// Row is one stamped version of a tuple. Columns[0] is the primary key.
// Rows are never modified after construction.
type Row struct {
	Columns []uint64
	Stamp   uint64
}

func NewRow(stamp uint64, columns []uint64) *Row {
	cols := make([]uint64, len(columns))
	copy(cols, columns)
	return &Row{
		Columns: cols,
		Stamp:   stamp,
	}
}

func (row *Row) Key() uint64 { return row.Columns[0] }

// Restamp returns a copy of the row stamped with ts. The column slice is
// shared since neither row mutates it.
func (row *Row) Restamp(ts uint64) *Row {
	return &Row{
		Columns: row.Columns,
		Stamp:   ts,
	}
}

func (row *Row) String() string {
	return fmt.Sprintf("ROW[%d]%v", row.Stamp, row.Columns)
}

// version is an index entry ordered by (stamp, gen). gen is allocated per
// table and never reused, so two versions never compare equal.
type version struct {
	row  *Row
	gen  uint64
	dead bool
}

func (v *version) Less(item btree.Item) bool {
	o := item.(*version)
	if c := common.CompareUint64(v.row.Stamp, o.row.Stamp); c != 0 {
		return c < 0
	}
	return v.gen < o.gen
}

func pivot(stamp uint64) *version {
	return &version{
		row: &Row{Stamp: stamp},
	}
}
