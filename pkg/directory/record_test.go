package directory

import (
	"testing"
	"time"

	"github.com/rstms/isokit/pkg/encoding"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	rec := &Record{
		ExtAttrRecordLength: 0,
		ExtentLBA:           100,
		DataLength:          2048,
		RecordedDate:        encoding.RecordedDateFromTime(mustTime()),
		Flags:               FlagDirectory,
		VolumeSeqNumber:     1,
		IdentifierBytes:     []byte("HELLO"),
		SystemUse:           []byte{'P', 'X', 5, 1, 0},
	}
	data, err := rec.Serialize()
	require.NoError(t, err)
	require.Zero(t, len(data)%2)

	got, n, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, rec.IdentifierBytes, got.IdentifierBytes)
	require.Equal(t, rec.SystemUse, got.SystemUse)
	require.Equal(t, rec.ExtentLBA, got.ExtentLBA)
	require.Equal(t, rec.DataLength, got.DataLength)
}

func TestRecordDotAndDotDot(t *testing.T) {
	dot := &Record{IdentifierBytes: []byte{0x00}, RecordedDate: encoding.RecordedDateFromTime(mustTime())}
	require.True(t, dot.IsDot())
	dotdot := &Record{IdentifierBytes: []byte{0x01}, RecordedDate: encoding.RecordedDateFromTime(mustTime())}
	require.True(t, dotdot.IsDotDot())
}

func TestRecordZeroIdentifierLengthInvalid(t *testing.T) {
	data := make([]byte, headerSize)
	data[0] = headerSize
	data[32] = 0
	_, _, err := Parse(data)
	require.Error(t, err)
}

func TestRecordRejectsOverlongSerialize(t *testing.T) {
	rec := &Record{
		IdentifierBytes: make([]byte, 200),
		SystemUse:       make([]byte, 100),
	}
	_, err := rec.Serialize()
	require.Error(t, err)
}

func TestZeroLengthByteSignalsEndOfSector(t *testing.T) {
	rec, n, err := Parse([]byte{0x00, 0, 0, 0})
	require.NoError(t, err)
	require.Nil(t, rec)
	require.Zero(t, n)
}

func TestSetDirectoryClearsMutualExclusion(t *testing.T) {
	flags := FlagAssociated | FlagRecord | FlagMultiExtent
	flags = SetDirectory(byte(flags), true)
	require.NotZero(t, flags&FlagDirectory)
	require.Zero(t, flags&FlagAssociated)
	require.Zero(t, flags&FlagRecord)
	require.Zero(t, flags&FlagMultiExtent)
}

func mustTime() time.Time {
	return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
}
