package catalog

import (
	"errors"
	"fmt"

	"github.com/transactionalblog/sigmod-contest-2015/pkg/common"
)

var (
	ErrRelationNotFound = errors.New("validator: relation not found")
	ErrInvalidSchema    = errors.New("validator: invalid schema")
	ErrColumnCount      = errors.New("validator: column count mismatch")
)

// Catalog is the fixed sequence of relation schemas. It is established once
// and never resized.
type Catalog struct {
	schemas []*Schema
}

func NewCatalog(columnCounts []uint32) (*Catalog, error) {
	catalog := &Catalog{
		schemas: make([]*Schema, len(columnCounts)),
	}
	for i, cnt := range columnCounts {
		schema := NewSchema(uint32(i), cnt)
		if err := schema.Validate(); err != nil {
			return nil, err
		}
		catalog.schemas[i] = schema
	}
	return catalog, nil
}

func (catalog *Catalog) Len() int { return len(catalog.schemas) }

func (catalog *Catalog) GetSchema(id uint32) (*Schema, error) {
	if int(id) >= len(catalog.schemas) {
		return nil, fmt.Errorf("relation %d of %d: %w", id, len(catalog.schemas), ErrRelationNotFound)
	}
	return catalog.schemas[id], nil
}

func (catalog *Catalog) ColumnCount(id uint32) (uint32, error) {
	schema, err := catalog.GetSchema(id)
	if err != nil {
		return 0, err
	}
	return schema.ColumnCount, nil
}

func (catalog *Catalog) Schemas() []*Schema { return catalog.schemas }

func (catalog *Catalog) PPString(level common.PPLevel, depth int, prefix string) string {
	s := fmt.Sprintf("%s%sCATALOG[relations=%d]", common.RepeatStr("\t", depth), prefix, len(catalog.schemas))
	if level == common.PPL0 {
		return s
	}
	for _, schema := range catalog.schemas {
		s = fmt.Sprintf("%s\n%s", s, schema.PPString(level, depth+1, prefix))
	}
	return s
}

func (catalog *Catalog) String() string {
	return catalog.PPString(common.PPL0, 0, "")
}
