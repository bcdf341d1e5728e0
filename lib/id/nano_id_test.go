package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNanoID(t *testing.T) {
	_, err := NewNanoID(1)
	require.Error(t, err)
	_, err = NewNanoID(256)
	require.Error(t, err)

	gen, err := NewNanoID(21)
	require.NoError(t, err)
	seen := make(map[string]struct{}, 2048)
	// Enough draws to refill the random pool several times.
	for i := 0; i < 2048; i++ {
		id := gen()
		require.Len(t, id, 21)
		require.Empty(t, strings.Trim(id, nanoIDAlphabet))
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
