package vdb

import (
	"github.com/transactionalblog/sigmod-contest-2015/pkg/predicate"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/txn"
)

type SchemaDesc struct {
	ColumnCounts []uint32
}

type TransactionDesc struct {
	ID      uint64
	Deletes []txn.DeleteBatch
	Inserts []txn.InsertBatch
}

type ClauseDesc struct {
	Relation   uint32
	Predicates []predicate.Predicate
}

type ValidationDesc struct {
	ID      uint64
	From    uint64
	To      uint64
	Clauses []ClauseDesc
}

type FlushDesc struct {
	Reference uint64
}

type ForgetDesc struct {
	Reference uint64
}
