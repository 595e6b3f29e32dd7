// Package directory implements the ISO 9660 directory record: the
// variable-length, 33-byte-header structure that names one entry (file,
// directory, ".", or "..") inside a directory extent, plus its embedded
// system-use (SUSP) trailer.
package directory

import (
	"fmt"

	"github.com/rstms/isokit/pkg/encoding"
	"github.com/rstms/isokit/pkg/isoerr"
)

const headerSize = 33

// Record is one parsed (or about-to-be-serialized) directory record.
type Record struct {
	ExtAttrRecordLength byte
	ExtentLBA           uint32
	DataLength          uint32
	RecordedDate        encoding.RecordedDate
	Flags               byte
	FileUnitSize        byte
	InterleaveGap       byte
	VolumeSeqNumber     uint16

	// IdentifierBytes is the raw, encoding-specific identifier payload. A
	// single 0x00 byte means ".", a single 0x01 byte means "..".
	IdentifierBytes []byte

	// SystemUse is the record's system-use trailer (SUSP area), or nil.
	SystemUse []byte
}

// IsDot reports whether the identifier is the special "." self-reference.
func (r *Record) IsDot() bool {
	return len(r.IdentifierBytes) == 1 && r.IdentifierBytes[0] == 0x00
}

// IsDotDot reports whether the identifier is the special ".." parent reference.
func (r *Record) IsDotDot() bool {
	return len(r.IdentifierBytes) == 1 && r.IdentifierBytes[0] == 0x01
}

// IsDirectory reports whether the directory flag is set.
func (r *Record) IsDirectory() bool {
	return r.Flags&FlagDirectory != 0
}

// Parse decodes one directory record starting at the front of data. It
// returns the record and the number of bytes consumed (the record's own
// Length field, which the caller uses to advance within the extent). A
// zero-length leading byte signals "no more records in this sector"; Parse
// reports that by returning a nil record and consumed == 0.
func Parse(data []byte) (*Record, int, error) {
	if len(data) == 0 {
		return nil, 0, fmt.Errorf("directory record: empty input")
	}
	length := int(data[0])
	if length == 0 {
		return nil, 0, nil
	}
	if length < headerSize || length > len(data) {
		return nil, 0, fmt.Errorf("directory record: invalid length %d", length)
	}

	extAttrLen := data[1]
	extent, err := encoding.ReadUint32BothEndian(data[2:10])
	if err != nil {
		return nil, 0, fmt.Errorf("directory record: extent LBA: %w", err)
	}
	dataLen, err := encoding.ReadUint32BothEndian(data[10:18])
	if err != nil {
		return nil, 0, fmt.Errorf("directory record: data length: %w", err)
	}
	recDate, err := encoding.DecodeRecordedDate(data[18:25])
	if err != nil {
		return nil, 0, fmt.Errorf("directory record: date: %w", err)
	}
	flags := data[25]
	fileUnitSize := data[26]
	interleave := data[27]
	volSeq, err := encoding.ReadUint16BothEndian(data[28:32])
	if err != nil {
		return nil, 0, fmt.Errorf("directory record: volume sequence: %w", err)
	}
	idLen := int(data[32])
	if idLen == 0 {
		return nil, 0, fmt.Errorf("directory record: %w: zero identifier length", isoerr.ErrInvalidImage)
	}
	if headerSize+idLen > length {
		return nil, 0, fmt.Errorf("directory record: identifier overruns record")
	}
	identifier := append([]byte(nil), data[headerSize:headerSize+idLen]...)

	padding := 0
	if idLen%2 == 0 {
		padding = 1
	}
	suStart := headerSize + idLen + padding
	var systemUse []byte
	if suStart < length {
		systemUse = append([]byte(nil), data[suStart:length]...)
	}

	return &Record{
		ExtAttrRecordLength: extAttrLen,
		ExtentLBA:           extent,
		DataLength:          dataLen,
		RecordedDate:        recDate,
		Flags:               flags,
		FileUnitSize:        fileUnitSize,
		InterleaveGap:       interleave,
		VolumeSeqNumber:     volSeq,
		IdentifierBytes:     identifier,
		SystemUse:           systemUse,
	}, length, nil
}

// Serialize renders the record to its on-disc bytes, recomputing Length and
// rounding the total up to an even number of bytes. It returns an error if
// the computed length would exceed 255.
func (r *Record) Serialize() ([]byte, error) {
	idLen := len(r.IdentifierBytes)
	padding := 0
	if idLen%2 == 0 {
		padding = 1
	}
	length := headerSize + idLen + padding + len(r.SystemUse)
	if length%2 != 0 {
		length++
	}
	if length > 255 {
		return nil, fmt.Errorf("directory record: computed length %d exceeds 255", length)
	}

	out := make([]byte, length)
	out[0] = byte(length)
	out[1] = r.ExtAttrRecordLength
	encoding.WriteUint32BothEndian(out[2:10], r.ExtentLBA)
	encoding.WriteUint32BothEndian(out[10:18], r.DataLength)
	copy(out[18:25], r.RecordedDate.Encode())
	out[25] = r.Flags
	out[26] = r.FileUnitSize
	out[27] = r.InterleaveGap
	encoding.WriteUint16BothEndian(out[28:32], r.VolumeSeqNumber)
	out[32] = byte(idLen)
	copy(out[headerSize:], r.IdentifierBytes)
	suOffset := headerSize + idLen + padding
	copy(out[suOffset:], r.SystemUse)
	return out, nil
}

// SetDirectory sets or clears the directory flag, enforcing the mutual
// exclusion with associated/record/multi-extent.
func (r *Record) SetDirectory(isDir bool) {
	r.Flags = SetDirectory(r.Flags, isDir)
}

// SetIdentifier replaces the identifier bytes, preserving any existing
// system-use trailer.
func (r *Record) SetIdentifier(id []byte) {
	r.IdentifierBytes = id
}

// SetSystemUse replaces the system-use trailer; nil truncates the record to
// just its header and identifier.
func (r *Record) SetSystemUse(su []byte) {
	r.SystemUse = su
}
