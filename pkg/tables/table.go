package tables

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/roaring64"
	"github.com/google/btree"
	"github.com/sirupsen/logrus"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/catalog"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/common"
)

const DefaultIndexDegree = 32

// Table is the version store of one relation.
//
// live maps a primary key to its current version. index holds every version
// a validation may observe: live rows plus tombstones, ordered by stamp.
// stamps mirrors the stamps in index and may keep stale bits for versions
// that were overwritten in place; it is only a prefilter.
//
// Once Prune(mark) ran, no version stamped at or below mark is indexed.
// Live rows stay in live regardless, a later delete still needs them.
type Table struct {
	schema     *catalog.Schema
	live       map[uint64]*version
	index      *btree.BTree
	stamps     *roaring64.Bitmap
	gen        uint64
	tombstones int
	horizon    uint64
	pruned     bool
}

func NewTable(schema *catalog.Schema, degree int) *Table {
	if degree < 2 {
		degree = DefaultIndexDegree
	}
	return &Table{
		schema: schema,
		live:   make(map[uint64]*version),
		index:  btree.New(degree),
		stamps: roaring64.NewBitmap(),
	}
}

func (table *Table) GetSchema() *catalog.Schema { return table.schema }
func (table *Table) GetID() uint32              { return table.schema.ID }

// Rows returns the number of live rows.
func (table *Table) Rows() int { return len(table.live) }

// HistoryLen returns the number of indexed tombstones.
func (table *Table) HistoryLen() int { return table.tombstones }

// Versions returns the number of indexed versions, live and dead.
func (table *Table) Versions() int { return table.index.Len() }

func (table *Table) Get(key uint64) (*Row, bool) {
	v, ok := table.live[key]
	if !ok {
		return nil, false
	}
	return v.row, true
}

func (table *Table) newVersion(row *Row, dead bool) *version {
	table.gen++
	return &version{
		row:  row,
		gen:  table.gen,
		dead: dead,
	}
}

func (table *Table) isPruned(stamp uint64) bool {
	return table.pruned && stamp <= table.horizon
}

func (table *Table) indexVersion(v *version) {
	if table.isPruned(v.row.Stamp) {
		return
	}
	table.index.ReplaceOrInsert(v)
	table.stamps.Add(v.row.Stamp)
	if v.dead {
		table.tombstones++
	}
}

// Insert stores columns as the live row of its primary key, stamped ts. An
// existing live row is replaced without leaving a tombstone.
func (table *Table) Insert(ts uint64, columns []uint64) (overwritten bool, err error) {
	if err = table.schema.CheckRow(columns); err != nil {
		return
	}
	row := NewRow(ts, columns)
	if old, ok := table.live[row.Key()]; ok {
		table.index.Delete(old)
		overwritten = true
	}
	v := table.newVersion(row, false)
	table.live[row.Key()] = v
	table.indexVersion(v)
	return
}

// Delete removes the live row of key. The removed row stays visible at its
// own stamp and a copy is recorded at ts. A missing key is not an error.
func (table *Table) Delete(ts uint64, key uint64) bool {
	v, ok := table.live[key]
	if !ok {
		return false
	}
	delete(table.live, key)
	if !table.isPruned(v.row.Stamp) {
		v.dead = true
		table.tombstones++
	}
	table.indexVersion(table.newVersion(v.row.Restamp(ts), true))
	return true
}

// MayContain reports whether any version might be stamped in [from, to].
func (table *Table) MayContain(from, to uint64) bool {
	if from > to || table.index.Len() == 0 {
		return false
	}
	var below uint64
	if from > 0 {
		below = table.stamps.Rank(from - 1)
	}
	return table.stamps.Rank(to) > below
}

// Scan calls fn on every indexed version stamped in [from, to] in stamp
// order until fn returns false. Scan must not run concurrently with a
// mutation, concurrent scans are fine.
func (table *Table) Scan(from, to uint64, fn func(row *Row) bool) {
	if !table.MayContain(from, to) {
		return
	}
	table.index.AscendGreaterOrEqual(pivot(from), func(item btree.Item) bool {
		v := item.(*version)
		if v.row.Stamp > to {
			return false
		}
		return fn(v.row)
	})
}

// Prune drops every indexed version stamped at or below mark and returns the
// number dropped. The cost is proportional to what is dropped.
func (table *Table) Prune(mark uint64) int {
	if table.pruned && mark <= table.horizon {
		return 0
	}
	table.horizon = mark
	table.pruned = true
	removed := 0
	for {
		item := table.index.Min()
		if item == nil {
			break
		}
		v := item.(*version)
		if v.row.Stamp > mark {
			break
		}
		table.index.DeleteMin()
		if v.dead {
			table.tombstones--
		}
		removed++
	}
	if mark == common.MaxTxnID {
		table.stamps.Clear()
	} else {
		table.stamps.RemoveRange(0, mark+1)
	}
	if removed > 0 {
		logrus.Debugf("%s pruned %d versions at or below %d", table.String(), removed, mark)
	}
	return removed
}

// History returns the indexed tombstones in stamp order.
func (table *Table) History() []*Row {
	rows := make([]*Row, 0, table.tombstones)
	table.index.Ascend(func(item btree.Item) bool {
		v := item.(*version)
		if v.dead {
			rows = append(rows, v.row)
		}
		return true
	})
	return rows
}

func (table *Table) PPString(level common.PPLevel, depth int, prefix string) string {
	s := fmt.Sprintf("%s%s%s", common.RepeatStr("\t", depth), prefix, table.String())
	if level == common.PPL0 {
		return s
	}
	table.index.Ascend(func(item btree.Item) bool {
		v := item.(*version)
		state := "L"
		if v.dead {
			state = "D"
		}
		s = fmt.Sprintf("%s\n%s%s[%s]%s", s, common.RepeatStr("\t", depth+1), prefix, state, v.row.String())
		return true
	})
	return s
}

func (table *Table) String() string {
	return fmt.Sprintf("TABLE<%d>[cols=%d,live=%d,history=%d,versions=%d]",
		table.schema.ID, table.schema.ColumnCount, len(table.live), table.tombstones, table.index.Len())
}
