package susp

import (
	"testing"
	"time"

	"github.com/rstms/isokit/pkg/encoding"
	"github.com/stretchr/testify/require"
)

func TestParseSerializeRoundTrip(t *testing.T) {
	entries := []Entry{
		&CEEntry{Block: 12, Offset: 34, Length: 56},
		&PDEntry{Bytes: []byte{1, 2, 3}},
		&SPEntry{Skip: 0},
		&RREntry{},
		&PXEntry{Mode: 0o755, Links: 2, UID: 1000, GID: 1000},
		&PNEntry{High: 1, Low: 2},
		&NMEntry{Flags: 0, Name: []byte("hello.txt")},
		&SLEntry{Components: []SLComponent{{Flags: CompParent, Bytes: nil}, {Bytes: []byte("bin")}}},
		&SFEntry{VirtualSize: 0x1_0000_0002},
		&OpaqueEntry{Sig: "ZZ", Version: 1, Payload: []byte{9, 9}},
	}
	for _, e := range entries {
		data := e.Serialize()
		got, n, err := Parse(data)
		require.NoError(t, err)
		require.Equal(t, len(data), n)
		require.Equal(t, e.Signature(), got.Signature())
		require.Equal(t, data, got.Serialize())
	}
}

func TestParseSTTerminates(t *testing.T) {
	data := (&STEntry{}).Serialize()
	got, n, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, "ST", got.Signature())
	require.Equal(t, 4, n)
}

func TestParseInvalidLength(t *testing.T) {
	_, _, err := Parse([]byte{'N', 'M', 2, 1}) // length 2 < header len 4
	require.Error(t, err)
}

func TestTFRoundTripShortForm(t *testing.T) {
	t1, err := time.Parse(time.RFC3339, "2024-01-02T03:04:05Z")
	require.NoError(t, err)
	t2, err := time.Parse(time.RFC3339, "2024-06-07T08:09:10Z")
	require.NoError(t, err)
	tf := &TFEntry{
		Flags: TFCreation | TFModification,
		Recorded: map[byte]encoding.RecordedDate{
			TFCreation:     encoding.RecordedDateFromTime(t1),
			TFModification: encoding.RecordedDateFromTime(t2),
		},
		Long: map[byte]encoding.LongDate{},
	}
	data := tf.Serialize()
	got, n, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, data, got.Serialize())
}
