package susp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAreaCompletesWithoutCE(t *testing.T) {
	trailer := append((&PXEntry{Mode: 0o644}).Serialize(), (&STEntry{}).Serialize()...)
	area := NewArea(trailer)
	require.True(t, area.Complete())
	_, needs := area.NeedsContinuation()
	require.False(t, needs)
	require.Len(t, area.Compact(), 1)
}

func TestAreaFollowsCEChain(t *testing.T) {
	nm := &NMEntry{Name: []byte("file.txt")}
	trailer := append((&PXEntry{Mode: 0o644}).Serialize(), (&CEEntry{Block: 100, Offset: 0, Length: uint32(len(nm.Serialize()))}).Serialize()...)
	area := NewArea(trailer)
	require.False(t, area.Complete())
	ce, needs := area.NeedsContinuation()
	require.True(t, needs)
	require.EqualValues(t, 100, ce.Block)

	ok := area.AddContinuation(nm.Serialize())
	require.True(t, ok)
	require.True(t, area.Complete())

	compact := area.Compact()
	require.Len(t, compact, 2)
}

func TestAreaRefusesSelfLoop(t *testing.T) {
	ce := &CEEntry{Block: 5, Offset: 0, Length: 4}
	trailer := ce.Serialize()
	area := NewArea(trailer)
	loopBack := ce.Serialize() // continuation that repeats the same CE coordinate
	ok := area.AddContinuation(loopBack)
	require.False(t, ok)
	require.True(t, area.Complete())
}

func TestAreaAddContinuationZeroEntriesFails(t *testing.T) {
	ce := &CEEntry{Block: 5, Offset: 0, Length: 0}
	area := NewArea(ce.Serialize())
	ok := area.AddContinuation([]byte{})
	require.False(t, ok)
}

func TestAreaMergesMultiFragmentNM(t *testing.T) {
	frag1 := &NMEntry{Flags: NMContinue, Name: []byte("part-one-")}
	frag2 := &NMEntry{Flags: 0, Name: []byte("part-two")}
	trailer := append(frag1.Serialize(), frag2.Serialize()...)
	area := NewArea(trailer)
	compact := area.Compact()
	require.Len(t, compact, 1)
	nm := compact[0].(*NMEntry)
	require.Equal(t, "part-one-part-two", string(nm.Name))
	require.Zero(t, nm.Flags&NMContinue)
}
