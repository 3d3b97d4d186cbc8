package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	opts, err := FromEnv()
	require.Nil(t, err)
	assert.Equal(t, Default(), opts)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("VALIDATOR_WORKERS", "8")
	t.Setenv("VALIDATOR_TXN_LAYOUT", LayoutInterleaved)
	t.Setenv("VALIDATOR_LOG_LEVEL", "debug")
	t.Setenv("VALIDATOR_STRICT_TXN_ORDER", "true")
	opts, err := FromEnv()
	require.Nil(t, err)
	assert.Equal(t, 8, opts.Workers)
	assert.Equal(t, LayoutInterleaved, opts.TxnLayout)
	assert.Equal(t, "debug", opts.LogLevel)
	assert.True(t, opts.StrictTxnOrder)
	assert.Equal(t, uint32(1024), opts.QueueCapacity)
}

func TestValidate(t *testing.T) {
	opts := Default()
	assert.Nil(t, opts.Validate())

	opts.TxnLayout = "bogus"
	assert.ErrorIs(t, opts.Validate(), ErrInvalidOptions)

	opts = Default()
	opts.Workers = -1
	assert.ErrorIs(t, opts.Validate(), ErrInvalidOptions)

	opts = Default()
	opts.IndexDegree = 1
	assert.ErrorIs(t, opts.Validate(), ErrInvalidOptions)

	opts = Default()
	opts.LogLevel = "loud"
	assert.ErrorIs(t, opts.Validate(), ErrInvalidOptions)
}
