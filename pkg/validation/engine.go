package validation

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/tables"
)

const DefaultParallelClauses = 4

// Engine evaluates validation queries against the version store. When a pool
// is given, queries with at least parallelClauses clauses fan their clauses
// out over it. Scans are read only and the caller never mutates the store
// while Validate runs.
type Engine struct {
	tables          *tables.Tables
	pool            *ants.Pool
	parallelClauses int
}

func NewEngine(ts *tables.Tables, pool *ants.Pool, parallelClauses int) *Engine {
	if parallelClauses < 2 {
		parallelClauses = DefaultParallelClauses
	}
	return &Engine{
		tables:          ts,
		pool:            pool,
		parallelClauses: parallelClauses,
	}
}

// Bind resolves every clause relation and checks its predicates.
func (e *Engine) Bind(q *Query) error {
	for i := range q.Clauses {
		clause := &q.Clauses[i]
		table, err := e.tables.Get(clause.Relation)
		if err != nil {
			return fmt.Errorf("%s clause %d: %w", q.Repr(), i, err)
		}
		if err = clause.Preds.Bind(table.GetSchema().ColumnCount); err != nil {
			return fmt.Errorf("%s clause %d: %w", q.Repr(), i, err)
		}
		clause.table = table
	}
	return nil
}

// Validate binds q and returns true iff no clause finds a matching row
// stamped in [q.From, q.To].
func (e *Engine) Validate(q *Query) (bool, error) {
	if err := e.Bind(q); err != nil {
		return false, err
	}
	if q.From > q.To {
		return true, nil
	}
	var violated int32
	if e.pool != nil && len(q.Clauses) >= e.parallelClauses {
		e.fanOut(q, &violated)
	} else {
		for i := range q.Clauses {
			if e.violates(q, &q.Clauses[i], &violated) {
				break
			}
		}
	}
	outcome := atomic.LoadInt32(&violated) == 0
	logrus.Debugf("%s Outcome=%v", q.String(), outcome)
	return outcome, nil
}

func (e *Engine) fanOut(q *Query, violated *int32) {
	var wg sync.WaitGroup
	for i := range q.Clauses {
		clause := &q.Clauses[i]
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if atomic.LoadInt32(violated) != 0 {
				return
			}
			e.violates(q, clause, violated)
		}
		if err := e.pool.Submit(task); err != nil {
			logrus.Warnf("%s submit: %v", q.Repr(), err)
			task()
		}
	}
	wg.Wait()
}

// violates scans the clause range and sets violated on the first match. It
// stops early once violated is set by any clause.
func (e *Engine) violates(q *Query, clause *Clause, violated *int32) bool {
	found := false
	scanned := 0
	clause.table.Scan(q.From, q.To, func(row *tables.Row) bool {
		if clause.Preds.Matches(row.Columns) {
			found = true
			return false
		}
		scanned++
		if scanned&0xff == 0 && atomic.LoadInt32(violated) != 0 {
			return false
		}
		return true
	})
	if found {
		atomic.StoreInt32(violated, 1)
	}
	return found
}
