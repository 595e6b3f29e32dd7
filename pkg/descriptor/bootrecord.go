package descriptor

import (
	"fmt"
	"strings"

	"github.com/rstms/isokit/pkg/consts"
)

// BootRecord is a Boot Record Volume Descriptor. Its BootSystemUse payload is
// opaque to this package except when BootSystemIdentifier matches the El
// Torito magic, in which case pkg/eltorito knows how to parse it further.
type BootRecord struct {
	Header

	BootSystemIdentifier string
	BootIdentifier       string
	BootSystemUse        []byte
}

// ParseBootRecord decodes a 2048-byte Boot Record Volume Descriptor sector.
func ParseBootRecord(data []byte) (*BootRecord, error) {
	hdr, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if hdr.VDType != TypeBootRecord {
		return nil, fmt.Errorf("boot record volume descriptor: wrong type %v", hdr.VDType)
	}
	if len(data) < consts.DefaultSectorSize {
		return nil, fmt.Errorf("boot record volume descriptor: sector too short (%d bytes)", len(data))
	}

	brvd := &BootRecord{
		Header:               hdr,
		BootSystemIdentifier: strings.TrimRight(string(data[7:39]), "\x00 "),
		BootIdentifier:       strings.TrimRight(string(data[39:71]), "\x00 "),
		BootSystemUse:        append([]byte(nil), data[71:consts.DefaultSectorSize]...),
	}
	return brvd, nil
}

// IsElTorito reports whether the boot system identifier matches the El
// Torito magic string.
func (brvd *BootRecord) IsElTorito() bool {
	return brvd.BootSystemIdentifier == consts.ElToritoBootSystemID
}

// Serialize renders the Boot Record Volume Descriptor into a 2048-byte sector.
func (brvd *BootRecord) Serialize() ([]byte, error) {
	out := make([]byte, consts.DefaultSectorSize)
	out[0] = byte(TypeBootRecord)
	copy(out[1:6], consts.StdIdentifier)
	out[6] = consts.VolumeDescVersion
	copy(out[7:39], brvd.BootSystemIdentifier)
	copy(out[39:71], brvd.BootIdentifier)
	copy(out[71:], brvd.BootSystemUse)
	return out, nil
}

// Partition is a Partition Volume Descriptor, carried verbatim: this library
// neither interprets nor synthesizes partition layouts.
type Partition struct {
	Header
	Raw []byte
}

// ParsePartition decodes a Partition Volume Descriptor, retaining the full
// sector for passthrough.
func ParsePartition(data []byte) (*Partition, error) {
	hdr, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if hdr.VDType != TypePartition {
		return nil, fmt.Errorf("partition volume descriptor: wrong type %v", hdr.VDType)
	}
	return &Partition{Header: hdr, Raw: append([]byte(nil), data...)}, nil
}

// Terminator is the Volume Descriptor Set Terminator that ends the set.
type Terminator struct {
	Header
}

// ParseTerminator decodes a Volume Descriptor Set Terminator sector.
func ParseTerminator(data []byte) (*Terminator, error) {
	hdr, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if hdr.VDType != TypeSetTerminator {
		return nil, fmt.Errorf("volume descriptor set terminator: wrong type %v", hdr.VDType)
	}
	return &Terminator{Header: hdr}, nil
}

// Serialize renders the terminator into a 2048-byte sector.
func (t *Terminator) Serialize() []byte {
	out := make([]byte, consts.DefaultSectorSize)
	out[0] = byte(TypeSetTerminator)
	copy(out[1:6], consts.StdIdentifier)
	out[6] = consts.VolumeDescVersion
	return out
}
