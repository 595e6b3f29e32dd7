// Package encoding implements the primitive on-disc codecs shared by every
// higher-level structure: dual-endian integers, the two ECMA-119 date
// formats, the A-/D-character sets, padded identifier strings, and the
// identifier-or-file variant used by directory and path table records.
package encoding

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// WriteUint16BothEndian writes the little-endian then big-endian encoding of
// v into dst, which must be at least 4 bytes.
func WriteUint16BothEndian(dst []byte, v uint16) {
	_ = dst[3]
	binary.LittleEndian.PutUint16(dst[0:2], v)
	binary.BigEndian.PutUint16(dst[2:4], v)
}

// WriteUint32BothEndian writes the little-endian then big-endian encoding of
// v into dst, which must be at least 8 bytes.
func WriteUint32BothEndian(dst []byte, v uint32) {
	_ = dst[7]
	binary.LittleEndian.PutUint32(dst[0:4], v)
	binary.BigEndian.PutUint32(dst[4:8], v)
}

// ReadUint16BothEndian reads the native-endian half of a both-endian 16-bit
// field and, as a best-effort corruption check, verifies the other half
// agrees.
func ReadUint16BothEndian(data []byte) (uint16, error) {
	if len(data) < 4 {
		return 0, io.ErrUnexpectedEOF
	}
	le := binary.LittleEndian.Uint16(data[0:2])
	be := binary.BigEndian.Uint16(data[2:4])
	if le != be {
		return 0, fmt.Errorf("both-endian 16-bit mismatch: le=%d be=%d", le, be)
	}
	return le, nil
}

// ReadUint32BothEndian reads the native-endian half of a both-endian 32-bit
// field and verifies the other half agrees.
func ReadUint32BothEndian(data []byte) (uint32, error) {
	if len(data) < 8 {
		return 0, io.ErrUnexpectedEOF
	}
	le := binary.LittleEndian.Uint32(data[0:4])
	be := binary.BigEndian.Uint32(data[4:8])
	if le != be {
		return 0, fmt.Errorf("both-endian 32-bit mismatch: le=%d be=%d", le, be)
	}
	return le, nil
}

// RecordedDate is the 7-byte directory-record timestamp. A zero value
// serializes as, and deserializes from, all-zero bytes ("absent").
type RecordedDate struct {
	Year    int // Years since 1900; 0 when absent (see IsAbsent).
	Month   int
	Day     int
	Hour    int
	Minute  int
	Second  int
	TZOffset int8 // 15-minute intervals from GMT.
	absent  bool
}

// IsAbsent reports whether the date deserialized from an all-zero payload.
func (d RecordedDate) IsAbsent() bool { return d.absent }

// DecodeRecordedDate parses the 7-byte directory-record date format.
func DecodeRecordedDate(data []byte) (RecordedDate, error) {
	if len(data) != 7 {
		return RecordedDate{}, fmt.Errorf("recorded date requires 7 bytes, got %d", len(data))
	}
	allZero := true
	for _, b := range data {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return RecordedDate{absent: true}, nil
	}
	return RecordedDate{
		Year:     int(data[0]),
		Month:    int(data[1]),
		Day:      int(data[2]),
		Hour:     int(data[3]),
		Minute:   int(data[4]),
		Second:   int(data[5]),
		TZOffset: int8(data[6]),
	}, nil
}

// Encode serializes the date into 7 bytes, or all-zeros when absent.
func (d RecordedDate) Encode() []byte {
	out := make([]byte, 7)
	if d.absent {
		return out
	}
	out[0] = byte(d.Year)
	out[1] = byte(d.Month)
	out[2] = byte(d.Day)
	out[3] = byte(d.Hour)
	out[4] = byte(d.Minute)
	out[5] = byte(d.Second)
	out[6] = byte(d.TZOffset)
	return out
}

// RecordedDateFromTime builds a RecordedDate from a time.Time.
func RecordedDateFromTime(t time.Time) RecordedDate {
	_, offsetSeconds := t.Zone()
	return RecordedDate{
		Year:     t.Year() - 1900,
		Month:    int(t.Month()),
		Day:      t.Day(),
		Hour:     t.Hour(),
		Minute:   t.Minute(),
		Second:   t.Second(),
		TZOffset: int8(offsetSeconds / 60 / 15),
	}
}

// Time converts the date back to a time.Time; the zero time is returned when
// absent.
func (d RecordedDate) Time() time.Time {
	if d.absent {
		return time.Time{}
	}
	loc := time.FixedZone("", int(d.TZOffset)*15*60)
	return time.Date(d.Year+1900, time.Month(d.Month), d.Day, d.Hour, d.Minute, d.Second, 0, loc)
}

// LongDate is the 17-byte ASCII volume-descriptor timestamp:
// "YYYYMMDDHHMMSShh" followed by a one-byte timezone offset.
type LongDate struct {
	Year, Month, Day          int
	Hour, Minute, Second      int
	Hundredths                int
	TZOffset                  int8
	absent                    bool
}

func (d LongDate) IsAbsent() bool { return d.absent }

// DecodeLongDate parses the 17-byte volume-descriptor date format. Sixteen
// ASCII zeros followed by a zero tz byte deserializes to absent.
func DecodeLongDate(data []byte) (LongDate, error) {
	if len(data) != 17 {
		return LongDate{}, fmt.Errorf("long date requires 17 bytes, got %d", len(data))
	}
	allZero := true
	for _, b := range data[:16] {
		if b != '0' && b != 0 {
			allZero = false
			break
		}
	}
	if allZero && data[16] == 0 {
		return LongDate{absent: true}, nil
	}
	digits := func(s []byte) int {
		n := 0
		for _, b := range s {
			n = n*10 + int(b-'0')
		}
		return n
	}
	return LongDate{
		Year:       digits(data[0:4]),
		Month:      digits(data[4:6]),
		Day:        digits(data[6:8]),
		Hour:       digits(data[8:10]),
		Minute:     digits(data[10:12]),
		Second:     digits(data[12:14]),
		Hundredths: digits(data[14:16]),
		TZOffset:   int8(data[16]),
	}, nil
}

// Encode serializes the date into 17 bytes, or absent's canonical zero form.
func (d LongDate) Encode() []byte {
	if d.absent {
		return make([]byte, 17)
	}
	s := fmt.Sprintf("%04d%02d%02d%02d%02d%02d%02d",
		d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second, d.Hundredths)
	out := make([]byte, 17)
	copy(out, s)
	out[16] = byte(d.TZOffset)
	return out
}

// LongDateFromTime builds a LongDate from a time.Time.
func LongDateFromTime(t time.Time) LongDate {
	_, offsetSeconds := t.Zone()
	return LongDate{
		Year:       t.Year(),
		Month:      int(t.Month()),
		Day:        t.Day(),
		Hour:       t.Hour(),
		Minute:     t.Minute(),
		Second:     t.Second(),
		Hundredths: t.Nanosecond() / 1e7,
		TZOffset:   int8(offsetSeconds / 60 / 15),
	}
}

func (d LongDate) Time() time.Time {
	if d.absent {
		return time.Time{}
	}
	loc := time.FixedZone("", int(d.TZOffset)*15*60)
	return time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, d.Second, d.Hundredths*1e7, loc)
}
