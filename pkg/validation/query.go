package validation

import (
	"fmt"

	"github.com/transactionalblog/sigmod-contest-2015/pkg/predicate"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/tables"
)

// Clause asks whether any row of Relation matching Preds exists.
type Clause struct {
	Relation uint32
	Preds    predicate.Set

	table *tables.Table
}

func NewClause(relation uint32, preds []predicate.Predicate) Clause {
	return Clause{
		Relation: relation,
		Preds:    predicate.NewSet(preds),
	}
}

// Query is one validation request over the transaction range [From, To].
type Query struct {
	ID      uint64
	From    uint64
	To      uint64
	Clauses []Clause
}

func (q *Query) Repr() string {
	return fmt.Sprintf("[Validation-%d]", q.ID)
}

func (q *Query) String() string {
	return fmt.Sprintf("%s[%d-%d](clauses=%d)", q.Repr(), q.From, q.To, len(q.Clauses))
}

// Result is a computed but unreleased validation outcome. Outcome is true
// when no clause found a matching row.
type Result struct {
	ID      uint64
	Outcome bool
}

// Byte renders the outcome the way release writes it.
func (r Result) Byte() byte {
	if r.Outcome {
		return '0'
	}
	return '1'
}
