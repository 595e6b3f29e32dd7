// Package descriptor implements the ECMA-119 Volume Descriptor Set: the
// common 7-byte header every descriptor starts with, and the Primary,
// Supplementary/Enhanced, Boot Record, Partition, and Set Terminator
// variants that follow it.
package descriptor

import (
	"fmt"

	"github.com/rstms/isokit/pkg/consts"
)

// Type identifies which volume descriptor variant a sector holds.
type Type byte

const (
	TypeBootRecord    Type = 0x00
	TypePrimary       Type = 0x01
	TypeSupplementary Type = 0x02
	TypePartition     Type = 0x03
	TypeSetTerminator Type = 0xFF
)

func (t Type) String() string {
	switch t {
	case TypeBootRecord:
		return "boot record"
	case TypePrimary:
		return "primary"
	case TypeSupplementary:
		return "supplementary"
	case TypePartition:
		return "partition"
	case TypeSetTerminator:
		return "set terminator"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// Header is the 7-byte common prefix of every volume descriptor sector.
type Header struct {
	VDType        Type
	StdIdentifier string
	VDVersion     byte
}

// Type returns the descriptor's type byte.
func (h Header) Type() Type { return h.VDType }

// Identifier returns the standard identifier, normally "CD001".
func (h Header) Identifier() string { return h.StdIdentifier }

// Version returns the descriptor version byte.
func (h Header) Version() byte { return h.VDVersion }

// ParseHeader reads the common header from the front of a descriptor sector.
// It does not itself reject a bad identifier or version; callers decide
// whether to treat those as fatal or merely suspicious.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < consts.VolumeDescHeaderSize {
		return Header{}, fmt.Errorf("volume descriptor header: sector too short (%d bytes)", len(data))
	}
	return Header{
		VDType:        Type(data[0]),
		StdIdentifier: string(data[1:6]),
		VDVersion:     data[6],
	}, nil
}

// Descriptor is the common surface every parsed volume descriptor satisfies.
type Descriptor interface {
	Type() Type
	Identifier() string
	Version() byte
}

// Generic holds the header and raw bytes of a descriptor type this library
// does not otherwise interpret. ParseSet does not produce it: Partition
// descriptors are parsed into their own type, and a sector of unrecognized
// type makes ParseSet fail.
type Generic struct {
	Header
	Raw []byte
}
