package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/vdb"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/wire"
)

// serve runs the command loop until a Done message. Released bytes are
// flushed to out after every release.
func serve(db *vdb.DB, in io.Reader, out io.Writer, layout wire.Layout) error {
	dec := wire.NewDecoder(in, layout)
	w := bufio.NewWriter(out)
	var messages uint64
	for {
		msg, err := dec.Next(db)
		if errors.Is(err, io.EOF) {
			logrus.Warnf("Input ended without Done after %d messages", messages)
			return nil
		}
		if err != nil {
			return fmt.Errorf("message %d: %w", messages, err)
		}
		messages++
		switch desc := msg.Desc.(type) {
		case nil:
			logrus.Infof("Done after %d messages", messages)
			return w.Flush()
		case *vdb.SchemaDesc:
			err = db.DefineSchema(desc)
		case *vdb.TransactionDesc:
			err = db.ApplyTransaction(desc)
		case *vdb.ValidationDesc:
			err = db.Validate(desc)
		case *vdb.FlushDesc:
			if _, err = db.Release(w, desc); err == nil {
				err = w.Flush()
			}
		case *vdb.ForgetDesc:
			err = db.SetRetentionMark(desc)
		default:
			panic("logic error")
		}
		if err != nil {
			return fmt.Errorf("%s: %w", msg.Head.String(), err)
		}
	}
}
