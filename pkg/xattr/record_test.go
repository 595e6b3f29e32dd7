package xattr

import (
	"testing"
	"time"

	"github.com/rstms/isokit/pkg/encoding"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	rec := &Record{
		OwnerID:          501,
		GroupID:          20,
		Permissions:      0x0140,
		Creation:         encoding.LongDateFromTime(mustTime()),
		Modification:     encoding.LongDateFromTime(mustTime()),
		Expiration:       encoding.LongDateFromTime(mustTime()),
		Effective:        encoding.LongDateFromTime(mustTime()),
		RecordFormat:     0,
		RecordAttributes: 0,
		RecordLength:     0,
		SystemIdentifier: "LINUX",
		SystemUse:        []byte("hello"),
		EscapeSequences:  []byte{0x25, 0x2F, 0x45},
		ApplicationUse:   []byte("app data"),
	}

	data := rec.Serialize()
	require.Equal(t, fixedPrefixLen+len(rec.ApplicationUse)+len(rec.EscapeSequences), len(data))

	got, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, rec.OwnerID, got.OwnerID)
	require.Equal(t, rec.GroupID, got.GroupID)
	require.Equal(t, byte(1), got.Version)
	require.Equal(t, "LINUX", got.SystemIdentifier)
	require.Equal(t, rec.EscapeSequences, got.EscapeSequences)
	require.Equal(t, rec.ApplicationUse, got.ApplicationUse)
	require.NotZero(t, got.Permissions&reservedPermBits)
}

func TestRecordRejectsAppUseTooLarge(t *testing.T) {
	data := make([]byte, fixedPrefixLen)
	encoding.WriteUint32BothEndian(data[246:254], maxAppUseLen+1)
	_, err := Parse(data)
	require.Error(t, err)
}

func TestRecordTooShort(t *testing.T) {
	_, err := Parse(make([]byte, 10))
	require.Error(t, err)
}

func mustTime() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}
