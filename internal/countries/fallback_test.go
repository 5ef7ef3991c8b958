package countries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackDesignation(t *testing.T) {
	ca, cs, ok := fallbackDesignation("IN")
	require.True(t, ok)
	require.NotNil(t, ca)
	require.NotNil(t, cs)
	assert.Equal(t, "Chartered Accountant", *ca)
	assert.Equal(t, "Company Secretary", *cs)

	_, _, ok = fallbackDesignation("ZZ")
	assert.False(t, ok)
}
