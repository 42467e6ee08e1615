package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{"2025-06-05", "05/06/2025", "2025-06-05T14:30:00Z"} {
		got, err := ParseDate(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}

func TestParseDateEmptyAndBad(t *testing.T) {
	got, err := ParseDate("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ParseDate("05-06-2025x")
	assert.Error(t, err)
}
