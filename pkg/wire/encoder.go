package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/transactionalblog/sigmod-contest-2015/pkg/common"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/txn"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/vdb"
)

// Encoder writes framed messages. It produces the input streams of the
// tests and of replay tooling.
type Encoder struct {
	w      io.Writer
	layout Layout
	body   bytes.Buffer
}

func NewEncoder(w io.Writer, layout Layout) *Encoder {
	return &Encoder{w: w, layout: layout}
}

func (e *Encoder) flush(t MessageType) (n int64, err error) {
	defer e.body.Reset()
	var head bytes.Buffer
	if _, err = common.WriteUint32(uint32(e.body.Len()), &head); err != nil {
		return
	}
	if _, err = common.WriteUint32(uint32(t), &head); err != nil {
		return
	}
	nn, err := e.w.Write(head.Bytes())
	n += int64(nn)
	if err != nil {
		return
	}
	nn, err = e.w.Write(e.body.Bytes())
	n += int64(nn)
	return
}

func (e *Encoder) WriteDone() (int64, error) {
	return e.flush(MsgDone)
}

func (e *Encoder) WriteSchema(desc *vdb.SchemaDesc) (int64, error) {
	common.WriteUint32(uint32(len(desc.ColumnCounts)), &e.body)
	for _, cnt := range desc.ColumnCounts {
		common.WriteUint32(cnt, &e.body)
	}
	return e.flush(MsgDefineSchema)
}

func (e *Encoder) writeDeletes(batches []txn.DeleteBatch) {
	for _, batch := range batches {
		common.WriteUint32(batch.Relation, &e.body)
		common.WriteUint32(uint32(len(batch.Keys)), &e.body)
		common.WriteUint64s(batch.Keys, &e.body)
	}
}

func (e *Encoder) writeInserts(batches []txn.InsertBatch) {
	for _, batch := range batches {
		common.WriteUint32(batch.Relation, &e.body)
		common.WriteUint32(uint32(len(batch.Rows)), &e.body)
		for _, row := range batch.Rows {
			common.WriteUint64s(row, &e.body)
		}
	}
}

func (e *Encoder) WriteTransaction(desc *vdb.TransactionDesc) (int64, error) {
	common.WriteUint64(desc.ID, &e.body)
	switch e.layout {
	case LayoutContest:
		common.WriteUint32(uint32(len(desc.Deletes)), &e.body)
		common.WriteUint32(uint32(len(desc.Inserts)), &e.body)
		e.writeDeletes(desc.Deletes)
		e.writeInserts(desc.Inserts)
	case LayoutInterleaved:
		common.WriteUint32(uint32(len(desc.Deletes)), &e.body)
		e.writeDeletes(desc.Deletes)
		common.WriteUint32(uint32(len(desc.Inserts)), &e.body)
		e.writeInserts(desc.Inserts)
	default:
		e.body.Reset()
		return 0, fmt.Errorf("layout %d: %w", e.layout, ErrUnknownLayout)
	}
	return e.flush(MsgTransaction)
}

func (e *Encoder) WriteValidation(desc *vdb.ValidationDesc) (int64, error) {
	common.WriteUint64(desc.ID, &e.body)
	common.WriteUint64(desc.From, &e.body)
	common.WriteUint64(desc.To, &e.body)
	common.WriteUint32(uint32(len(desc.Clauses)), &e.body)
	for _, clause := range desc.Clauses {
		common.WriteUint32(clause.Relation, &e.body)
		common.WriteUint32(uint32(len(clause.Predicates)), &e.body)
		for _, pred := range clause.Predicates {
			common.WriteUint32(pred.Column, &e.body)
			common.WriteUint32(uint32(pred.Op), &e.body)
			common.WriteUint64(pred.Value, &e.body)
		}
	}
	return e.flush(MsgValidationQueries)
}

func (e *Encoder) WriteFlush(desc *vdb.FlushDesc) (int64, error) {
	common.WriteUint64(desc.Reference, &e.body)
	return e.flush(MsgFlush)
}

func (e *Encoder) WriteForget(desc *vdb.ForgetDesc) (int64, error) {
	common.WriteUint64(desc.Reference, &e.body)
	return e.flush(MsgForget)
}
