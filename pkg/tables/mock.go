package tables

import "github.com/transactionalblog/sigmod-contest-2015/pkg/catalog"

func MockTables(columnCounts ...uint32) *Tables {
	return NewTables(catalog.MockCatalog(columnCounts...), DefaultIndexDegree)
}
