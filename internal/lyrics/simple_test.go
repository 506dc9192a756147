package lyrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSimple(t *testing.T) {
	got, err := GenerateSimple([]string{"sun", "Moon"}, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"The sun leads my way",
		"Moon in the night",
		"I feel the sun inside",
		"When moon calls my name",
	}, got)

	got, err = GenerateSimple([]string{"rain"}, 6)
	require.NoError(t, err)
	assert.Len(t, got, 6)
	assert.Equal(t, "My rain never fades", got[5])
}

func TestGenerateSimpleEdgeCases(t *testing.T) {
	got, err := GenerateSimple(nil, 4)
	require.NoError(t, err)
	assert.Empty(t, got)

	for _, n := range []int{0, 3, 5, 8} {
		_, err := GenerateSimple([]string{"sun"}, n)
		assert.ErrorIs(t, err, ErrInvalidLength, "length %d", n)
	}
}
