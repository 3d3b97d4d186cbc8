package txn

import (
	"github.com/transactionalblog/sigmod-contest-2015/pkg/tables"
)

// Apply checks txn and then applies its deletes followed by its inserts.
// A txn that fails the check leaves every table untouched.
func Apply(ts *tables.Tables, txn *Txn) (stats ApplyStats, err error) {
	if err = txn.Check(ts); err != nil {
		return
	}
	for _, batch := range txn.Deletes {
		table, _ := ts.Get(batch.Relation)
		for _, key := range batch.Keys {
			if table.Delete(txn.ID, key) {
				stats.Deleted++
			} else {
				stats.Missed++
			}
		}
	}
	for _, batch := range txn.Inserts {
		table, _ := ts.Get(batch.Relation)
		for _, row := range batch.Rows {
			overwritten, err := table.Insert(txn.ID, row)
			if err != nil {
				panic(err)
			}
			if overwritten {
				stats.Overwritten++
			}
			stats.Inserted++
		}
	}
	return
}
