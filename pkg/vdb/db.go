package vdb

import (
	"errors"
	"fmt"
	"io"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/catalog"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/config"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/metrics"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/retention"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/tables"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/txn"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/validation"
)

var (
	ErrSchemaUndefined = errors.New("validator: schema not defined")
	ErrSchemaRedefined = errors.New("validator: schema already defined")
	ErrClosed          = errors.New("validator: db closed")
)

// VDB is the command surface of the engine, one method per command kind.
type VDB interface {
	DefineSchema(desc *SchemaDesc) error
	ApplyTransaction(desc *TransactionDesc) error
	Validate(desc *ValidationDesc) error
	Release(w io.Writer, desc *FlushDesc) (int, error)
	SetRetentionMark(desc *ForgetDesc) error
	Close() error
}

// DB owns all engine state. It is driven by a single command loop and is not
// safe for concurrent use.
type DB struct {
	opts      config.Options
	catalog   *catalog.Catalog
	tables    *tables.Tables
	txnMgr    *txn.TxnManager
	engine    *validation.Engine
	pending   *validation.PendingQueue
	retention retention.Tracker
	pool      *ants.Pool
	metrics   *metrics.Metrics
	closed    bool
}

func Open(opts config.Options) (*DB, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	db := &DB{
		opts:    opts,
		pending: validation.NewPendingQueue(opts.QueueCapacity),
		metrics: metrics.New(),
	}
	if opts.Workers > 0 {
		pool, err := ants.NewPool(opts.Workers)
		if err != nil {
			return nil, err
		}
		db.pool = pool
	}
	return db, nil
}

func (db *DB) GetCatalog() *catalog.Catalog { return db.catalog }
func (db *DB) GetTables() *tables.Tables    { return db.tables }
func (db *DB) Metrics() *metrics.Metrics    { return db.metrics }
func (db *DB) Pending() int                 { return db.pending.Len() }

// ColumnCount serves the wire decoder, which needs the relation shape to
// split insert payloads into rows.
func (db *DB) ColumnCount(relation uint32) (uint32, error) {
	if db.catalog == nil {
		return 0, ErrSchemaUndefined
	}
	return db.catalog.ColumnCount(relation)
}

func (db *DB) checkReady() error {
	if db.closed {
		return ErrClosed
	}
	if db.catalog == nil {
		return ErrSchemaUndefined
	}
	return nil
}

func (db *DB) DefineSchema(desc *SchemaDesc) error {
	if db.closed {
		return ErrClosed
	}
	if db.catalog != nil {
		return ErrSchemaRedefined
	}
	c, err := catalog.NewCatalog(desc.ColumnCounts)
	if err != nil {
		return err
	}
	db.catalog = c
	db.tables = tables.NewTables(c, db.opts.IndexDegree)
	db.txnMgr = txn.NewTxnManager(db.tables)
	db.txnMgr.Strict = db.opts.StrictTxnOrder
	db.engine = validation.NewEngine(db.tables, db.pool, db.opts.ParallelClauses)
	if mark, ok := db.retention.Mark(); ok {
		db.tables.Prune(mark)
	}
	logrus.Infof("Schema defined: %s", c.String())
	return nil
}

func (db *DB) ApplyTransaction(desc *TransactionDesc) error {
	if err := db.checkReady(); err != nil {
		return err
	}
	stats, err := db.txnMgr.OnTxn(&txn.Txn{
		ID:      desc.ID,
		Deletes: desc.Deletes,
		Inserts: desc.Inserts,
	})
	if err != nil {
		return err
	}
	db.metrics.Transactions.Inc()
	db.metrics.RowsInserted.Add(float64(stats.Inserted))
	db.metrics.RowsOverwritten.Add(float64(stats.Overwritten))
	db.metrics.RowsDeleted.Add(float64(stats.Deleted))
	db.metrics.DeleteMisses.Add(float64(stats.Missed))
	return nil
}

func (db *DB) Validate(desc *ValidationDesc) error {
	if err := db.checkReady(); err != nil {
		return err
	}
	q := &validation.Query{
		ID:      desc.ID,
		From:    desc.From,
		To:      desc.To,
		Clauses: make([]validation.Clause, len(desc.Clauses)),
	}
	for i, clause := range desc.Clauses {
		q.Clauses[i] = validation.NewClause(clause.Relation, clause.Predicates)
	}
	if db.retention.Covers(q.From) {
		logrus.Debugf("%s starts at or below %s", q.String(), db.retention.String())
	}
	outcome, err := db.engine.Validate(q)
	if err != nil {
		return err
	}
	db.pending.Push(validation.Result{ID: q.ID, Outcome: outcome})
	db.metrics.ObserveValidation(outcome)
	db.metrics.Pending.Set(float64(db.pending.Len()))
	return nil
}

// Release writes one byte per released result to w, '0' for a passed
// validation and '1' for a conflict, and returns the number written.
func (db *DB) Release(w io.Writer, desc *FlushDesc) (int, error) {
	if db.closed {
		return 0, ErrClosed
	}
	released := db.pending.Release(desc.Reference)
	db.metrics.Pending.Set(float64(db.pending.Len()))
	logrus.Debugf("Flushing %d results up to %d", len(released), desc.Reference)
	if len(released) == 0 {
		return 0, nil
	}
	buf := make([]byte, len(released))
	for i, r := range released {
		buf[i] = r.Byte()
	}
	db.metrics.Released.Add(float64(len(released)))
	n, err := w.Write(buf)
	if err != nil {
		return n, fmt.Errorf("release up to %d: %w", desc.Reference, err)
	}
	return n, nil
}

// SetRetentionMark advances the retention mark and prunes every relation.
// A mark below the current one is ignored.
func (db *DB) SetRetentionMark(desc *ForgetDesc) error {
	if db.closed {
		return ErrClosed
	}
	moved, err := db.retention.Advance(desc.Reference)
	if errors.Is(err, retention.ErrRetentionUnderflow) {
		logrus.Warn(err)
		db.metrics.RetentionUnderflows.Inc()
		return nil
	}
	if err != nil {
		return err
	}
	if !moved {
		return nil
	}
	db.metrics.RetentionMark.Set(float64(desc.Reference))
	if db.tables == nil {
		return nil
	}
	removed := db.tables.Prune(desc.Reference)
	db.metrics.PrunedVersions.Add(float64(removed))
	logrus.Debugf("%s pruned %d versions", db.retention.String(), removed)
	return nil
}

func (db *DB) Close() error {
	if db.closed {
		return ErrClosed
	}
	db.closed = true
	if db.pool != nil {
		db.pool.Release()
	}
	if db.pending.Len() > 0 {
		logrus.Warnf("Closing with %d unreleased results", db.pending.Len())
	}
	logrus.Info(db.metrics.String())
	return nil
}
