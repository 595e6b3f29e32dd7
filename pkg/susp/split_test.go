package susp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitNMFitsWhole(t *testing.T) {
	e := &NMEntry{Name: []byte("short.txt")}
	first, second, ok := SplitNM(e, 64)
	require.True(t, ok)
	require.Equal(t, e.Name, first.Name)
	require.Zero(t, first.Flags&NMContinue)
	require.Empty(t, second.Name)
}

func TestSplitNMSplitsLongName(t *testing.T) {
	name := make([]byte, 40)
	for i := range name {
		name[i] = byte('a' + i%26)
	}
	e := &NMEntry{Name: name}
	budget := 20 // usable = 15
	first, second, ok := SplitNM(e, budget)
	require.True(t, ok)
	require.LessOrEqual(t, len(first.Serialize()), budget)
	require.NotZero(t, first.Flags&NMContinue)
	require.Equal(t, name, append(append([]byte(nil), first.Name...), second.Name...))
}

func TestSplitNMQuantifiedProperty(t *testing.T) {
	for b := 5; b < 40; b++ {
		name := []byte("a-reasonably-long-file-name.ext")
		e := &NMEntry{Name: name}
		first, second, ok := SplitNM(e, b)
		if !ok {
			continue
		}
		require.LessOrEqual(t, len(first.Serialize()), b)
		recombined := append(append([]byte(nil), first.Name...), second.Name...)
		require.Equal(t, name, recombined)
	}
}

func TestSplitSLAcrossComponents(t *testing.T) {
	e := &SLEntry{Components: []SLComponent{
		{Bytes: []byte("usr")},
		{Bytes: []byte("local")},
		{Bytes: []byte("bin")},
	}}
	first, second, ok := SplitSL(e, 14) // usable = 9: fits "usr" (5) + part of "local"
	require.True(t, ok)
	require.True(t, first.ContinuesInNext)
	require.NotEmpty(t, first.Components)
	// Recombine byte content across the split boundary.
	var firstBytes, secondBytes []byte
	for _, c := range first.Components {
		firstBytes = append(firstBytes, c.Bytes...)
	}
	for _, c := range second.Components {
		secondBytes = append(secondBytes, c.Bytes...)
	}
	require.Equal(t, "usrlocalbin", string(firstBytes)+string(secondBytes))
}

func TestSplitSLImpossibleBudget(t *testing.T) {
	e := &SLEntry{Components: []SLComponent{{Bytes: []byte("x")}}}
	_, _, ok := SplitSL(e, 0)
	require.False(t, ok)
}
