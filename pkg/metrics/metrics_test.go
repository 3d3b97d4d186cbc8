package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	m := New()
	m.Transactions.Inc()
	m.Transactions.Inc()
	m.ObserveValidation(true)
	m.ObserveValidation(false)
	m.ObserveValidation(false)
	m.Pending.Set(3)

	snapshot, err := m.Snapshot()
	require.Nil(t, err)
	assert.Equal(t, float64(2), snapshot["validator_transactions_total"])
	assert.Equal(t, float64(1), snapshot[`validator_validations_total{outcome="pass"}`])
	assert.Equal(t, float64(2), snapshot[`validator_validations_total{outcome="conflict"}`])
	assert.Equal(t, float64(3), snapshot["validator_pending_results"])
	assert.Equal(t, float64(0), snapshot["validator_rows_inserted_total"])
	t.Log(m.String())
}

func TestIndependentRegistries(t *testing.T) {
	m1 := New()
	m2 := New()
	m1.Released.Add(5)
	s2, err := m2.Snapshot()
	require.Nil(t, err)
	assert.Equal(t, float64(0), s2["validator_released_total"])
}
