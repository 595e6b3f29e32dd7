package susp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmitSingleRegionWhenItFits(t *testing.T) {
	content := []Entry{&PXEntry{Mode: 0o755}, &NMEntry{Name: []byte("a.txt")}}
	regions, err := Emit(content, 255, nil)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	require.Nil(t, regions[0].Dest)
}

func TestEmitSpillsToContinuation(t *testing.T) {
	longName := make([]byte, 200)
	for i := range longName {
		longName[i] = byte('a' + i%26)
	}
	content := []Entry{
		&PXEntry{Mode: 0o755, Links: 1, UID: 1000, GID: 1000},
		&NMEntry{Name: longName},
		&TFEntry{Flags: TFModification},
	}

	var allocations int
	alloc := func(requested int) (uint32, uint32, int, error) {
		allocations++
		return uint32(allocations), 0, requested + 32, nil
	}

	regions, err := Emit(content, 40, alloc)
	require.NoError(t, err)
	require.Greater(t, len(regions), 1)
	require.Nil(t, regions[0].Dest)
	for _, r := range regions[1:] {
		require.NotNil(t, r.Dest)
	}

	// Every region but the last ends with a CE pointing at the next region's
	// exact destination and serialized length.
	for i := 0; i < len(regions)-1; i++ {
		last := regions[i].Entries[len(regions[i].Entries)-1]
		ce, ok := last.(*CEEntry)
		require.True(t, ok)
		require.Equal(t, regions[i+1].Dest.Block, ce.Block)
		require.Equal(t, regions[i+1].Dest.Offset, ce.Offset)
		require.EqualValues(t, serializedLen(regions[i+1].Entries), ce.Length)
	}
}
