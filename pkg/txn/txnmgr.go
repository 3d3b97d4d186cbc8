package txn

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/tables"
)

// TxnManager applies transactions in arrival order and remembers the last
// applied id. Ids are expected to increase, a regression is logged and
// reported through OnTxn's error only when Strict is set.
type TxnManager struct {
	tables  *tables.Tables
	Strict  bool
	lastID  uint64
	applied uint64
}

func NewTxnManager(ts *tables.Tables) *TxnManager {
	return &TxnManager{
		tables: ts,
	}
}

func (mgr *TxnManager) LastID() uint64  { return mgr.lastID }
func (mgr *TxnManager) Applied() uint64 { return mgr.applied }

func (mgr *TxnManager) OnTxn(txn *Txn) (stats ApplyStats, err error) {
	if mgr.applied > 0 && txn.ID <= mgr.lastID {
		if mgr.Strict {
			err = fmt.Errorf("%s after %d: %w", txn.Repr(), mgr.lastID, ErrTxnOutOfOrder)
			return
		}
		logrus.Warnf("%s arrived after Txn-%d", txn.Repr(), mgr.lastID)
	}
	if stats, err = Apply(mgr.tables, txn); err != nil {
		return
	}
	if txn.ID > mgr.lastID || mgr.applied == 0 {
		mgr.lastID = txn.ID
	}
	mgr.applied++
	logrus.Debugf("%s Applied: %s", txn.String(), stats.String())
	return
}
