package encoding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBothEndianRoundTrip16(t *testing.T) {
	buf := make([]byte, 4)
	for _, v := range []uint16{0, 1, 0x1234, 0xFFFF} {
		WriteUint16BothEndian(buf, v)
		got, err := ReadUint16BothEndian(buf)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestBothEndianRoundTrip32(t *testing.T) {
	buf := make([]byte, 8)
	for _, v := range []uint32{0, 1, 0x12345678, 0xFFFFFFFF} {
		WriteUint32BothEndian(buf, v)
		got, err := ReadUint32BothEndian(buf)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestBothEndianMismatchIsCorruption(t *testing.T) {
	buf := make([]byte, 8)
	WriteUint32BothEndian(buf, 42)
	buf[7] ^= 0xFF // corrupt the big-endian half
	_, err := ReadUint32BothEndian(buf)
	require.Error(t, err)
}

func TestRecordedDateAbsentRoundTrip(t *testing.T) {
	d, err := DecodeRecordedDate(make([]byte, 7))
	require.NoError(t, err)
	require.True(t, d.IsAbsent())
	require.Equal(t, make([]byte, 7), d.Encode())
}

func TestLongDateAbsentRoundTrip(t *testing.T) {
	payload := make([]byte, 17)
	for i := 0; i < 16; i++ {
		payload[i] = '0'
	}
	d, err := DecodeLongDate(payload)
	require.NoError(t, err)
	require.True(t, d.IsAbsent())
	require.Equal(t, make([]byte, 17), d.Encode())
}

func TestLongDateRoundTrip(t *testing.T) {
	d := LongDate{Year: 2024, Month: 3, Day: 14, Hour: 9, Minute: 26, Second: 53, Hundredths: 58, TZOffset: 4}
	got, err := DecodeLongDate(d.Encode())
	require.NoError(t, err)
	require.Equal(t, d, got)
}

func TestPaddedStringRoundTripASCII(t *testing.T) {
	padded := PadString("HELLO", 16, ASCII, ' ')
	require.Len(t, padded, 16)
	require.Equal(t, "HELLO", UnpadString(padded, ASCII, ' '))
}

func TestPaddedStringNeverSplitsUCS2CodeUnit(t *testing.T) {
	padded := PadString("abc", 5, UCS2BigEndian, ' ') // 5 is odd; 2-byte units can't align
	require.LessOrEqual(t, len(padded), 5)
	decoded := UCS2BigEndian.Decode(padded)
	require.True(t, len(decoded) <= 3)
}

func TestValidateStringCharSets(t *testing.T) {
	require.True(t, ValidateString("", DCharSet))
	require.True(t, ValidateString("ABC_123", DCharSet))
	require.False(t, ValidateString("abc", DCharSet))
	require.True(t, ValidateString("READ.ME;1", DOrSepCharSet))
}

func TestIdentifierOrFileRoundTrip(t *testing.T) {
	cases := []IdentifierOrFile{
		{Kind: IdentifierEmpty},
		{Kind: IdentifierLiteral, Value: "HELLO"},
		{Kind: IdentifierFile, Value: "README.TXT"},
	}
	for _, c := range cases {
		b := c.Serialize(32, ASCII)
		got := ParseIdentifierOrFile(b, ASCII)
		require.Equal(t, c, got)
	}
}
