package infra

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

type userID uint32

func TestKeyCompare(t *testing.T) {
	require.Equal(t, 0, KeyCompare(1, 1))
	require.Equal(t, -1, KeyCompare(1, 2))
	require.Equal(t, 1, KeyCompare(2, 1))

	require.Equal(t, -1, KeyCompare("a", "b"))
	require.Equal(t, 1, KeyCompare("b", "a"))
	require.Equal(t, 0, KeyCompare("ab", "ab"))

	require.Equal(t, -1, KeyCompare(1.5, 1.75))
	require.Equal(t, 1, KeyCompare(userID(9), userID(3)))
}

func TestKeyIsNaN(t *testing.T) {
	require.True(t, KeyIsNaN(math.NaN()))
	require.True(t, KeyIsNaN(float32(math.NaN())))
	require.False(t, KeyIsNaN(math.Inf(1)))
	require.False(t, KeyIsNaN(0.0))
	require.False(t, KeyIsNaN(7))
	require.False(t, KeyIsNaN(""))
}
