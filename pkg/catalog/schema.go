package catalog

import (
	"fmt"

	"github.com/transactionalblog/sigmod-contest-2015/pkg/common"
)

// Schema describes one relation. The first column is always the primary key.
type Schema struct {
	ID          uint32
	ColumnCount uint32
}

func NewSchema(id, columnCount uint32) *Schema {
	return &Schema{
		ID:          id,
		ColumnCount: columnCount,
	}
}

func (s *Schema) Validate() error {
	if s.ColumnCount == 0 {
		return fmt.Errorf("relation %d has no columns: %w", s.ID, ErrInvalidSchema)
	}
	return nil
}

func (s *Schema) CheckRow(columns []uint64) error {
	if uint32(len(columns)) != s.ColumnCount {
		return fmt.Errorf("relation %d expects %d columns, got %d: %w", s.ID, s.ColumnCount, len(columns), ErrColumnCount)
	}
	return nil
}

func (s *Schema) PPString(level common.PPLevel, depth int, prefix string) string {
	return fmt.Sprintf("%s%s%s", common.RepeatStr("\t", depth), prefix, s.String())
}

func (s *Schema) String() string {
	return fmt.Sprintf("RELATION<%d>[cols=%d]", s.ID, s.ColumnCount)
}
