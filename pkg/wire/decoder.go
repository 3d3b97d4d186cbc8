package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/predicate"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/txn"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/vdb"
)

const DefaultReadBufferSize = 1 << 16

// ColumnCounter resolves the column count of a relation. Insert groups carry
// no row width of their own.
type ColumnCounter interface {
	ColumnCount(relation uint32) (uint32, error)
}

// Message is one decoded command. Desc holds the matching vdb descriptor,
// nil for MsgDone.
type Message struct {
	Head
	Desc interface{}
}

type Decoder struct {
	r      *bufio.Reader
	layout Layout
	buf    []byte
}

func NewDecoder(r io.Reader, layout Layout) *Decoder {
	return &Decoder{
		r:      bufio.NewReaderSize(r, DefaultReadBufferSize),
		layout: layout,
	}
}

// ReadHead reads the next message head. io.EOF is returned only when the
// stream ends exactly on a message boundary.
func (d *Decoder) ReadHead() (head Head, err error) {
	var p [HeadSize]byte
	if _, err = io.ReadFull(d.r, p[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			err = fmt.Errorf("read head: %w", ErrShortBody)
		}
		return
	}
	head.Len = binary.LittleEndian.Uint32(p[0:])
	head.Type = MessageType(binary.LittleEndian.Uint32(p[4:]))
	return
}

// ReadBody reads the body of head. The returned slice is reused by the next
// call.
func (d *Decoder) ReadBody(head Head) ([]byte, error) {
	if cap(d.buf) < int(head.Len) {
		d.buf = make([]byte, head.Len)
	}
	p := d.buf[:head.Len]
	if _, err := io.ReadFull(d.r, p); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("read %s: %w", head.String(), ErrShortBody)
		}
		return nil, err
	}
	return p, nil
}

// Next reads and decodes one message. counter is consulted for transaction
// messages only.
func (d *Decoder) Next(counter ColumnCounter) (msg Message, err error) {
	if msg.Head, err = d.ReadHead(); err != nil {
		return
	}
	if msg.Type > MsgForget {
		err = fmt.Errorf("%s: %w", msg.Head.String(), ErrUnknownMessage)
		return
	}
	p, err := d.ReadBody(msg.Head)
	if err != nil {
		return
	}
	logrus.Debugf("Decoding %s", msg.Head.String())
	switch msg.Type {
	case MsgDone:
		err = newBody(p).finish()
	case MsgDefineSchema:
		msg.Desc, err = DecodeSchema(p)
	case MsgTransaction:
		msg.Desc, err = DecodeTransaction(p, counter, d.layout)
	case MsgValidationQueries:
		msg.Desc, err = DecodeValidation(p)
	case MsgFlush:
		msg.Desc, err = DecodeFlush(p)
	case MsgForget:
		msg.Desc, err = DecodeForget(p)
	}
	if err != nil {
		err = fmt.Errorf("decode %s: %w", msg.Head.String(), err)
	}
	return
}

func DecodeSchema(p []byte) (*vdb.SchemaDesc, error) {
	b := newBody(p)
	n := b.count(4)
	desc := &vdb.SchemaDesc{ColumnCounts: make([]uint32, n)}
	for i := range desc.ColumnCounts {
		desc.ColumnCounts[i] = b.u32()
	}
	return desc, b.finish()
}

func decodeDeletes(b *body, n uint32) []txn.DeleteBatch {
	batches := make([]txn.DeleteBatch, 0, n)
	for i := uint32(0); i < n && b.err == nil; i++ {
		batch := txn.DeleteBatch{Relation: b.u32()}
		batch.Keys = b.u64s(b.count(8))
		batches = append(batches, batch)
	}
	return batches
}

func decodeInserts(b *body, n uint32, counter ColumnCounter) ([]txn.InsertBatch, error) {
	batches := make([]txn.InsertBatch, 0, n)
	for i := uint32(0); i < n && b.err == nil; i++ {
		batch := txn.InsertBatch{Relation: b.u32()}
		if b.err != nil {
			break
		}
		width, err := counter.ColumnCount(batch.Relation)
		if err != nil {
			return nil, err
		}
		rows := b.count(int(width) * 8)
		values := b.u64s(rows * width)
		batch.Rows = make([][]uint64, 0, rows)
		for r := uint32(0); r < rows && values != nil; r++ {
			batch.Rows = append(batch.Rows, values[r*width:(r+1)*width:(r+1)*width])
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// DecodeTransaction decodes a transaction body in the given layout.
func DecodeTransaction(p []byte, counter ColumnCounter, layout Layout) (*vdb.TransactionDesc, error) {
	var err error
	b := newBody(p)
	desc := &vdb.TransactionDesc{ID: b.u64()}
	switch layout {
	case LayoutContest:
		deletes := b.count(8)
		inserts := b.count(8)
		desc.Deletes = decodeDeletes(b, deletes)
		desc.Inserts, err = decodeInserts(b, inserts, counter)
	case LayoutInterleaved:
		desc.Deletes = decodeDeletes(b, b.count(8))
		desc.Inserts, err = decodeInserts(b, b.count(8), counter)
	default:
		return nil, fmt.Errorf("layout %d: %w", layout, ErrUnknownLayout)
	}
	if err != nil {
		return nil, err
	}
	return desc, b.finish()
}

func DecodeValidation(p []byte) (*vdb.ValidationDesc, error) {
	b := newBody(p)
	desc := &vdb.ValidationDesc{
		ID:   b.u64(),
		From: b.u64(),
		To:   b.u64(),
	}
	n := b.count(8)
	desc.Clauses = make([]vdb.ClauseDesc, 0, n)
	for i := uint32(0); i < n && b.err == nil; i++ {
		clause := vdb.ClauseDesc{Relation: b.u32()}
		preds := b.count(16)
		clause.Predicates = make([]predicate.Predicate, preds)
		for j := range clause.Predicates {
			clause.Predicates[j] = predicate.Predicate{
				Column: b.u32(),
				Op:     predicate.Op(b.u32()),
				Value:  b.u64(),
			}
		}
		desc.Clauses = append(desc.Clauses, clause)
	}
	return desc, b.finish()
}

func DecodeFlush(p []byte) (*vdb.FlushDesc, error) {
	b := newBody(p)
	desc := &vdb.FlushDesc{Reference: b.u64()}
	return desc, b.finish()
}

func DecodeForget(p []byte) (*vdb.ForgetDesc, error) {
	b := newBody(p)
	desc := &vdb.ForgetDesc{Reference: b.u64()}
	return desc, b.finish()
}
