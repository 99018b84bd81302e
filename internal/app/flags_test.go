package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	t.Parallel()

	f := formatValue("text")
	assert.Equal(t, "text", f.String())
	assert.Equal(t, "<format>", f.Type())

	require.NoError(t, f.Set("json"))
	assert.Equal(t, "json", f.String())

	require.NoError(t, f.Set("text"))
	assert.Equal(t, "text", f.String())

	err := f.Set("yaml")
	require.Error(t, err)
	assert.Equal(t, "text", f.String(), "failed Set must not change the value")
}
