package pathtable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordRoundTripBothEndians(t *testing.T) {
	rec := &Record{ExtentLBA: 0x1234, ParentNumber: 7, IdentifierBytes: []byte("ABC")}
	for _, end := range []Endianness{LittleEndian, BigEndian} {
		data := rec.Serialize(end)
		require.Zero(t, len(data)%2)
		got, n, err := Parse(data, end)
		require.NoError(t, err)
		require.Equal(t, len(data), n)
		require.Equal(t, rec.ExtentLBA, got.ExtentLBA)
		require.Equal(t, rec.ParentNumber, got.ParentNumber)
		require.Equal(t, rec.IdentifierBytes, got.IdentifierBytes)
	}
}

func TestTableParseAll(t *testing.T) {
	recs := Table{
		{ExtentLBA: 1, ParentNumber: 1, IdentifierBytes: []byte{0}},
		{ExtentLBA: 2, ParentNumber: 1, IdentifierBytes: []byte("SUB")},
	}
	data := recs.Serialize(LittleEndian)
	got, err := ParseAll(data, LittleEndian)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, recs.ByteLen(), len(data))
}
