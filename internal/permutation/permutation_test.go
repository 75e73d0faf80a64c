package permutation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	for n := 2; n <= 5; n++ {
		codec, err := NewCodec(n)
		require.NoError(t, err)

		factorial := 1
		for i := 2; i <= n; i++ {
			factorial *= i
		}
		require.Equal(t, factorial, codec.Classes())

		seen := make(map[int]bool)
		for k := 0; k < codec.Classes(); k++ {
			perm, err := codec.Decode(k)
			require.NoError(t, err)

			back, err := codec.Encode(perm)
			require.NoError(t, err)
			assert.Equal(t, k, back, "n=%d class=%d perm=%v", n, k, perm)

			assert.False(t, seen[back], "class %d emitted twice", back)
			seen[back] = true
		}
	}
}

func TestCodecLexicographicOrder(t *testing.T) {
	codec, err := NewCodec(3)
	require.NoError(t, err)

	want := [][]int{
		{0, 1, 2},
		{0, 2, 1},
		{1, 0, 2},
		{1, 2, 0},
		{2, 0, 1},
		{2, 1, 0},
	}
	for k, perm := range want {
		got, err := codec.Decode(k)
		require.NoError(t, err)
		assert.Equal(t, perm, got, "class %d", k)
	}
}

func TestCodecIdentityAndReverse(t *testing.T) {
	codec, err := NewCodec(4)
	require.NoError(t, err)

	class, err := codec.Encode([]int{0, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0, class)

	class, err = codec.Encode([]int{3, 2, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, codec.Classes()-1, class)
}

func TestCodecRejectsBadInput(t *testing.T) {
	codec, err := NewCodec(3)
	require.NoError(t, err)

	_, err = codec.Encode([]int{0, 1})
	assert.Error(t, err, "wrong length")

	_, err = codec.Encode([]int{0, 1, 1})
	assert.Error(t, err, "duplicate element")

	_, err = codec.Encode([]int{0, 1, 3})
	assert.Error(t, err, "out of range element")

	_, err = codec.Decode(-1)
	assert.Error(t, err)

	_, err = codec.Decode(6)
	assert.Error(t, err)
}

func TestNewCodecRejectsBadArity(t *testing.T) {
	_, err := NewCodec(1)
	assert.Error(t, err)

	_, err = NewCodec(MaxArity + 1)
	assert.Error(t, err)
}
