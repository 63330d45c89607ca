package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyValuePairs(t *testing.T) {
	got, err := ParseKeyValuePairs([]string{"env=prod", "region=us-west-2", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"env": "prod", "region": "us-west-2", "empty": ""}, got)
}

func TestParseKeyValuePairs_ValueContainsEquals(t *testing.T) {
	got, err := ParseKeyValuePairs([]string{"conn=host=db;port=5432"})
	require.NoError(t, err)
	assert.Equal(t, "host=db;port=5432", got["conn"])
}

func TestParseKeyValuePairs_MissingSeparator(t *testing.T) {
	_, err := ParseKeyValuePairs([]string{"justakey"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key=value")
}

func TestParseKeyValuePairs_EmptyKey(t *testing.T) {
	_, err := ParseKeyValuePairs([]string{"=value"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty key")
}

func TestParseKeyValuePairs_Empty(t *testing.T) {
	got, err := ParseKeyValuePairs(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
