package txn

import (
	"fmt"

	"github.com/transactionalblog/sigmod-contest-2015/pkg/tables"
)

// DeleteBatch lists primary keys to delete from one relation.
type DeleteBatch struct {
	Relation uint32
	Keys     []uint64
}

// InsertBatch lists full column vectors to insert into one relation.
type InsertBatch struct {
	Relation uint32
	Rows     [][]uint64
}

// Txn is one decoded transaction. All deletes are applied before any insert.
type Txn struct {
	ID      uint64
	Deletes []DeleteBatch
	Inserts []InsertBatch
}

type ApplyStats struct {
	Deleted     int
	Missed      int
	Inserted    int
	Overwritten int
}

func (stats ApplyStats) String() string {
	return fmt.Sprintf("deleted=%d,missed=%d,inserted=%d,overwritten=%d",
		stats.Deleted, stats.Missed, stats.Inserted, stats.Overwritten)
}

func (txn *Txn) Repr() string {
	return fmt.Sprintf("[Txn-%d]", txn.ID)
}

func (txn *Txn) String() string {
	deletes, inserts := 0, 0
	for _, batch := range txn.Deletes {
		deletes += len(batch.Keys)
	}
	for _, batch := range txn.Inserts {
		inserts += len(batch.Rows)
	}
	return fmt.Sprintf("%s[deletes=%d,inserts=%d]", txn.Repr(), deletes, inserts)
}

// Check verifies relation ids and row shapes of every batch without
// touching any table.
func (txn *Txn) Check(ts *tables.Tables) error {
	for _, batch := range txn.Deletes {
		if _, err := ts.Get(batch.Relation); err != nil {
			return fmt.Errorf("%s delete: %w", txn.Repr(), err)
		}
	}
	for _, batch := range txn.Inserts {
		table, err := ts.Get(batch.Relation)
		if err != nil {
			return fmt.Errorf("%s insert: %w", txn.Repr(), err)
		}
		for _, row := range batch.Rows {
			if err = table.GetSchema().CheckRow(row); err != nil {
				return fmt.Errorf("%s insert: %w", txn.Repr(), err)
			}
		}
	}
	return nil
}
