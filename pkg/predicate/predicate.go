package predicate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownOperator  = errors.New("validator: unknown predicate operator")
	ErrColumnOutOfRange = errors.New("validator: predicate column out of range")
)

type Op uint32

const (
	OpEqual Op = iota
	OpNotEqual
	OpLess
	OpLessOrEqual
	OpGreater
	OpGreaterOrEqual
	OpAlwaysTrue
)

func (op Op) Valid() bool {
	return op <= OpAlwaysTrue
}

func (op Op) String() string {
	switch op {
	case OpEqual:
		return "="
	case OpNotEqual:
		return "!="
	case OpLess:
		return "<"
	case OpLessOrEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterOrEqual:
		return ">="
	case OpAlwaysTrue:
		return "*"
	}
	return fmt.Sprintf("Op(%d)", uint32(op))
}

type Predicate struct {
	Column uint32
	Op     Op
	Value  uint64
}

func AlwaysTrue() Predicate {
	return Predicate{Column: 0, Op: OpAlwaysTrue}
}

// Eval tests the predicate against one row. The column index and operator
// must have been checked by Set.Bind.
func (p Predicate) Eval(columns []uint64) bool {
	if p.Op == OpAlwaysTrue {
		return true
	}
	v := columns[p.Column]
	switch p.Op {
	case OpEqual:
		return v == p.Value
	case OpNotEqual:
		return v != p.Value
	case OpLess:
		return v < p.Value
	case OpLessOrEqual:
		return v <= p.Value
	case OpGreater:
		return v > p.Value
	case OpGreaterOrEqual:
		return v >= p.Value
	}
	panic("logic error")
}

func (p Predicate) String() string {
	if p.Op == OpAlwaysTrue {
		return "*"
	}
	return fmt.Sprintf("c%d%s%d", p.Column, p.Op, p.Value)
}

// Set is a conjunction of predicates. An empty clause is represented by a
// single AlwaysTrue predicate on column 0.
type Set []Predicate

func NewSet(preds []Predicate) Set {
	if len(preds) == 0 {
		return Set{AlwaysTrue()}
	}
	return Set(preds)
}

// Bind checks every predicate against a relation with columnCount columns.
func (s Set) Bind(columnCount uint32) error {
	for i, p := range s {
		if !p.Op.Valid() {
			return fmt.Errorf("predicate %d op %d: %w", i, uint32(p.Op), ErrUnknownOperator)
		}
		if p.Column >= columnCount {
			return fmt.Errorf("predicate %d column %d of %d: %w", i, p.Column, columnCount, ErrColumnOutOfRange)
		}
	}
	return nil
}

func (s Set) Matches(columns []uint64) bool {
	for _, p := range s {
		if !p.Eval(columns) {
			return false
		}
	}
	return true
}

func (s Set) String() string {
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = p.String()
	}
	return strings.Join(parts, "&")
}
