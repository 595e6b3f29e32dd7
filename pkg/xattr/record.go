// Package xattr implements the Extended Attribute Record: owner, group,
// permissions, four timestamps, and a system/application-use area that can
// optionally precede a file or directory's data extent.
package xattr

import (
	"fmt"

	"github.com/rstms/isokit/pkg/encoding"
)

const (
	fixedPrefixLen = 254
	systemIDLen    = 32
	systemUseLen   = 64
	maxAppUseLen   = 65535

	reservedPermBits = 0xAA00 // forced-to-one reserved bits, ECMA-119 layout
)

// Record is one parsed (or about-to-be-serialized) extended attribute record.
type Record struct {
	OwnerID, GroupID uint16
	Permissions      uint16 // reserved bits forced to 1 on serialize
	Creation         encoding.LongDate
	Modification     encoding.LongDate
	Expiration       encoding.LongDate
	Effective        encoding.LongDate
	RecordFormat     byte
	RecordAttributes byte
	RecordLength     uint16
	SystemIdentifier string
	SystemUse        []byte // fixed 64 bytes
	Version          byte
	EscapeSequences  []byte
	ApplicationUse   []byte
}

// Serialize renders the record to its on-disc byte form.
func (r *Record) Serialize() []byte {
	out := make([]byte, fixedPrefixLen)
	encoding.WriteUint16BothEndian(out[0:4], r.OwnerID)
	encoding.WriteUint16BothEndian(out[4:8], r.GroupID)
	perms := r.Permissions | reservedPermBits
	out[8] = byte(perms >> 8)
	out[9] = byte(perms)
	copy(out[10:27], r.Creation.Encode())
	copy(out[27:44], r.Modification.Encode())
	copy(out[44:61], r.Expiration.Encode())
	copy(out[61:78], r.Effective.Encode())
	out[78] = r.RecordFormat
	out[79] = r.RecordAttributes
	encoding.WriteUint16BothEndian(out[80:84], r.RecordLength)
	sysID := encoding.PadString(r.SystemIdentifier, systemIDLen, encoding.ASCII, ' ')
	copy(out[84:84+systemIDLen], sysID)
	copy(out[116:116+systemUseLen], r.SystemUse)
	version := r.Version
	if version == 0 {
		version = 1
	}
	out[180] = version
	out[181] = byte(len(r.EscapeSequences))
	// out[182:246] reserved, left zero
	encoding.WriteUint32BothEndian(out[246:254], uint32(len(r.ApplicationUse)))

	out = append(out, r.ApplicationUse...)
	out = append(out, r.EscapeSequences...)
	return out
}

// Parse decodes one extended attribute record from data.
func Parse(data []byte) (*Record, error) {
	if len(data) < fixedPrefixLen {
		return nil, fmt.Errorf("extended attribute record: too short (%d bytes)", len(data))
	}
	ownerID, err := encoding.ReadUint16BothEndian(data[0:4])
	if err != nil {
		return nil, fmt.Errorf("extended attribute record: owner id: %w", err)
	}
	groupID, err := encoding.ReadUint16BothEndian(data[4:8])
	if err != nil {
		return nil, fmt.Errorf("extended attribute record: group id: %w", err)
	}
	perms := uint16(data[8])<<8 | uint16(data[9])

	creation, err := encoding.DecodeLongDate(data[10:27])
	if err != nil {
		return nil, err
	}
	modification, err := encoding.DecodeLongDate(data[27:44])
	if err != nil {
		return nil, err
	}
	expiration, err := encoding.DecodeLongDate(data[44:61])
	if err != nil {
		return nil, err
	}
	effective, err := encoding.DecodeLongDate(data[61:78])
	if err != nil {
		return nil, err
	}
	recordFormat := data[78]
	recordAttrs := data[79]
	recordLength, err := encoding.ReadUint16BothEndian(data[80:84])
	if err != nil {
		return nil, fmt.Errorf("extended attribute record: record length: %w", err)
	}
	sysID := encoding.UnpadString(data[84:84+systemIDLen], encoding.ASCII, ' ')
	systemUse := append([]byte(nil), data[116:116+systemUseLen]...)
	version := data[180]
	escLen := int(data[181])

	appUseLen, err := encoding.ReadUint32BothEndian(data[246:254])
	if err != nil {
		return nil, fmt.Errorf("extended attribute record: app use length: %w", err)
	}
	if appUseLen > maxAppUseLen {
		return nil, fmt.Errorf("extended attribute record: app use length %d too large", appUseLen)
	}
	off := fixedPrefixLen
	if off+int(appUseLen)+escLen > len(data) {
		return nil, fmt.Errorf("extended attribute record: application use/escape sequences overrun buffer")
	}
	appUse := append([]byte(nil), data[off:off+int(appUseLen)]...)
	off += int(appUseLen)
	esc := append([]byte(nil), data[off:off+escLen]...)

	return &Record{
		OwnerID:          ownerID,
		GroupID:          groupID,
		Permissions:      perms,
		Creation:         creation,
		Modification:     modification,
		Expiration:       expiration,
		Effective:        effective,
		RecordFormat:     recordFormat,
		RecordAttributes: recordAttrs,
		RecordLength:     recordLength,
		SystemIdentifier: sysID,
		SystemUse:        systemUse,
		Version:          version,
		EscapeSequences:  esc,
		ApplicationUse:   appUse,
	}, nil
}
