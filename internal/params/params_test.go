package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat(t *testing.T) {
	m := map[string]any{"a": 1.5, "b": 2, "c": "nope"}

	v, ok := Float(m, "a", 0)
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	v, ok = Float(m, "b", 0)
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	v, ok = Float(m, "missing", 9)
	assert.False(t, ok)
	assert.Equal(t, 9.0, v)

	_, ok = Float(m, "c", 0)
	assert.False(t, ok)
}

func TestFloatPairs(t *testing.T) {
	t.Run("reads breakpoint lists", func(t *testing.T) {
		pairs, ok := FloatPairs([]any{
			[]any{0.0, 220.0},
			[]any{10, 440},
		})
		require.True(t, ok)
		assert.Equal(t, [][2]float64{{0, 220}, {10, 440}}, pairs)
	})

	t.Run("rejects scalars and malformed points", func(t *testing.T) {
		_, ok := FloatPairs(440.0)
		assert.False(t, ok)

		_, ok = FloatPairs([]any{[]any{0.0}})
		assert.False(t, ok)

		_, ok = FloatPairs([]any{[]any{0.0, "x"}})
		assert.False(t, ok)
	})
}
