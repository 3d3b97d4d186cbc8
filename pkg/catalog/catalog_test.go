package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/transactionalblog/sigmod-contest-2015/pkg/common"
)

func TestNewCatalog(t *testing.T) {
	catalog, err := NewCatalog([]uint32{2, 5, 1})
	assert.Nil(t, err)
	assert.Equal(t, 3, catalog.Len())

	for i, cnt := range []uint32{2, 5, 1} {
		schema, err := catalog.GetSchema(uint32(i))
		assert.Nil(t, err)
		assert.Equal(t, uint32(i), schema.ID)
		assert.Equal(t, cnt, schema.ColumnCount)
	}

	_, err = catalog.GetSchema(3)
	assert.ErrorIs(t, err, ErrRelationNotFound)
	_, err = catalog.ColumnCount(100)
	assert.ErrorIs(t, err, ErrRelationNotFound)

	cnt, err := catalog.ColumnCount(1)
	assert.Nil(t, err)
	assert.Equal(t, uint32(5), cnt)
	t.Log(catalog.PPString(common.PPL1, 0, ""))
}

func TestInvalidSchema(t *testing.T) {
	_, err := NewCatalog([]uint32{2, 0})
	assert.ErrorIs(t, err, ErrInvalidSchema)

	catalog, err := NewCatalog(nil)
	assert.Nil(t, err)
	assert.Equal(t, 0, catalog.Len())
	_, err = catalog.GetSchema(0)
	assert.ErrorIs(t, err, ErrRelationNotFound)
}

func TestCheckRow(t *testing.T) {
	schema := MockCatalog(3).Schemas()[0]
	assert.Nil(t, schema.CheckRow([]uint64{1, 2, 3}))
	assert.ErrorIs(t, schema.CheckRow([]uint64{1, 2}), ErrColumnCount)
	assert.ErrorIs(t, schema.CheckRow([]uint64{1, 2, 3, 4}), ErrColumnCount)
}
