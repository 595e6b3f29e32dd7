// Package pathtable implements the fixed-header, even-padded path table
// record used by both the L-endian and M-endian path tables of a volume.
package pathtable

import (
	"encoding/binary"
	"fmt"
)

// Endianness selects which byte order a path table (and its records) uses.
type Endianness int

const (
	LittleEndian Endianness = iota
	BigEndian
)

func (e Endianness) order() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Record is one parsed (or about-to-be-serialized) path table record.
type Record struct {
	ExtAttrRecordLength byte
	ExtentLBA           uint32
	ParentNumber        uint16
	IdentifierBytes     []byte
}

// Len reports the record's total on-disc length, including the single
// zero-pad byte when the identifier length is odd.
func (r *Record) Len() int {
	n := 8 + len(r.IdentifierBytes)
	if len(r.IdentifierBytes)%2 != 0 {
		n++
	}
	return n
}

// Parse decodes one path table record using endianness end. It returns the
// record and the number of bytes consumed.
func Parse(data []byte, end Endianness) (*Record, int, error) {
	if len(data) < 8 {
		return nil, 0, fmt.Errorf("path table record: header truncated")
	}
	idLen := int(data[0])
	extAttrLen := data[1]
	order := end.order()
	extent := order.Uint32(data[2:6])
	parent := order.Uint16(data[6:8])

	total := 8 + idLen
	if idLen%2 != 0 {
		total++
	}
	if total > len(data) {
		return nil, 0, fmt.Errorf("path table record: overruns buffer")
	}
	identifier := append([]byte(nil), data[8:8+idLen]...)

	return &Record{
		ExtAttrRecordLength: extAttrLen,
		ExtentLBA:           extent,
		ParentNumber:        parent,
		IdentifierBytes:     identifier,
	}, total, nil
}

// Serialize renders the record using endianness end.
func (r *Record) Serialize(end Endianness) []byte {
	idLen := len(r.IdentifierBytes)
	total := r.Len()
	out := make([]byte, total)
	out[0] = byte(idLen)
	out[1] = r.ExtAttrRecordLength
	order := end.order()
	order.PutUint32(out[2:6], r.ExtentLBA)
	order.PutUint16(out[6:8], r.ParentNumber)
	copy(out[8:], r.IdentifierBytes)
	return out
}

// Table is an ordered sequence of path table records as they appear on disc
// (declaration order, not sorted by name).
type Table []*Record

// ParseAll decodes every record in a contiguous path table byte range.
func ParseAll(data []byte, end Endianness) (Table, error) {
	var out Table
	offset := 0
	for offset < len(data) {
		rec, n, err := Parse(data[offset:], end)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		out = append(out, rec)
		offset += n
	}
	return out, nil
}

// Serialize renders every record back-to-back.
func (t Table) Serialize(end Endianness) []byte {
	var out []byte
	for _, r := range t {
		out = append(out, r.Serialize(end)...)
	}
	return out
}

// ByteLen is the total serialized length of the table.
func (t Table) ByteLen() int {
	n := 0
	for _, r := range t {
		n += r.Len()
	}
	return n
}
