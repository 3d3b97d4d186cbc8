package tables

import (
	"fmt"

	"github.com/transactionalblog/sigmod-contest-2015/pkg/catalog"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/common"
)

// Tables holds one Table per catalog relation, addressed by ordinal.
type Tables struct {
	catalog *catalog.Catalog
	tables  []*Table
}

func NewTables(c *catalog.Catalog, degree int) *Tables {
	ts := &Tables{
		catalog: c,
		tables:  make([]*Table, c.Len()),
	}
	for i, schema := range c.Schemas() {
		ts.tables[i] = NewTable(schema, degree)
	}
	return ts
}

func (ts *Tables) GetCatalog() *catalog.Catalog { return ts.catalog }
func (ts *Tables) Len() int                     { return len(ts.tables) }

func (ts *Tables) Get(id uint32) (*Table, error) {
	if int(id) >= len(ts.tables) {
		return nil, fmt.Errorf("relation %d of %d: %w", id, len(ts.tables), catalog.ErrRelationNotFound)
	}
	return ts.tables[id], nil
}

// Prune applies a retention mark to every table.
func (ts *Tables) Prune(mark uint64) int {
	removed := 0
	for _, table := range ts.tables {
		removed += table.Prune(mark)
	}
	return removed
}

func (ts *Tables) PPString(level common.PPLevel, depth int, prefix string) string {
	s := fmt.Sprintf("%s%sTABLES[%d]", common.RepeatStr("\t", depth), prefix, len(ts.tables))
	for _, table := range ts.tables {
		s = fmt.Sprintf("%s\n%s", s, table.PPString(level, depth+1, prefix))
	}
	return s
}
