package txn

import "errors"

var (
	ErrTxnOutOfOrder = errors.New("validator: txn id not increasing")
)
