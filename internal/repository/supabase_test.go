package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaleIDs(t *testing.T) {
	stored := []string{"17", "a", "b", "c"}
	require.Equal(t, []string{"17", "c"}, staleIDs(stored, []string{"b", "a", "new"}))
	require.Empty(t, staleIDs(stored, stored))
	require.Equal(t, stored, staleIDs(stored, nil))
}

func TestChunk_BoundsDeleteFilters(t *testing.T) {
	ids := make([]string, 0, 2*deleteChunk+5)
	for i := 0; i < cap(ids); i++ {
		ids = append(ids, rowID(TableTransactions, "42", fmt.Sprint(i)))
	}

	batches := chunk(ids, deleteChunk)
	require.Len(t, batches, 3)
	require.Len(t, batches[0], deleteChunk)
	require.Len(t, batches[1], deleteChunk)
	require.Len(t, batches[2], 5)

	var joined []string
	for _, b := range batches {
		joined = append(joined, b...)
	}
	require.Equal(t, ids, joined)

	require.Empty(t, chunk(nil, deleteChunk))
	require.Len(t, chunk(ids[:deleteChunk], deleteChunk), 1)
}
