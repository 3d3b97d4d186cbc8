package wire

import (
	"errors"
	"fmt"
)

var (
	ErrShortBody      = errors.New("validator: short message body")
	ErrTrailingBytes  = errors.New("validator: trailing message bytes")
	ErrUnknownMessage = errors.New("validator: unknown message type")
	ErrUnknownLayout  = errors.New("validator: unknown transaction layout")
)

type MessageType uint32

const (
	MsgDone MessageType = iota
	MsgDefineSchema
	MsgTransaction
	MsgValidationQueries
	MsgFlush
	MsgForget
)

func (t MessageType) String() string {
	switch t {
	case MsgDone:
		return "Done"
	case MsgDefineSchema:
		return "DefineSchema"
	case MsgTransaction:
		return "Transaction"
	case MsgValidationQueries:
		return "ValidationQueries"
	case MsgFlush:
		return "Flush"
	case MsgForget:
		return "Forget"
	}
	return fmt.Sprintf("Unknown(%d)", uint32(t))
}

// HeadSize is the encoded size of a Head.
const HeadSize = 8

type Head struct {
	Len  uint32
	Type MessageType
}

func (h Head) String() string {
	return fmt.Sprintf("HEAD[%s,len=%d]", h.Type, h.Len)
}

// Layout is the field order of a transaction body.
type Layout int

const (
	// LayoutContest puts both group counts right after the transaction id.
	LayoutContest Layout = iota
	// LayoutInterleaved puts each group count in front of its groups.
	LayoutInterleaved
)

func ParseLayout(s string) (Layout, error) {
	switch s {
	case "contest":
		return LayoutContest, nil
	case "interleaved":
		return LayoutInterleaved, nil
	}
	return LayoutContest, fmt.Errorf("%q: %w", s, ErrUnknownLayout)
}

func (l Layout) String() string {
	if l == LayoutInterleaved {
		return "interleaved"
	}
	return "contest"
}
