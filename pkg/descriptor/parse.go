package descriptor

import (
	"fmt"

	"github.com/rstms/isokit/pkg/consts"
)

// Set is the fully classified Volume Descriptor Set read from sectors 16+.
type Set struct {
	Primary        *Primary
	Supplementary  []*Supplementary
	BootRecords    []*BootRecord
	Partitions     []*Partition
	Terminator     *Terminator
}

// ParseSet reads consecutive descriptor sectors starting at data[0] until a
// Set Terminator is found or the input is exhausted, classifying each one.
func ParseSet(sectors [][]byte) (*Set, error) {
	set := &Set{}
	for i, sector := range sectors {
		hdr, err := ParseHeader(sector)
		if err != nil {
			return nil, fmt.Errorf("volume descriptor set: sector %d: %w", i, err)
		}
		switch hdr.VDType {
		case TypePrimary:
			pvd, err := ParsePrimary(sector)
			if err != nil {
				return nil, fmt.Errorf("volume descriptor set: sector %d: %w", i, err)
			}
			if set.Primary == nil {
				set.Primary = pvd
			}
		case TypeSupplementary:
			svd, err := ParseSupplementary(sector)
			if err != nil {
				return nil, fmt.Errorf("volume descriptor set: sector %d: %w", i, err)
			}
			set.Supplementary = append(set.Supplementary, svd)
		case TypeBootRecord:
			brvd, err := ParseBootRecord(sector)
			if err != nil {
				return nil, fmt.Errorf("volume descriptor set: sector %d: %w", i, err)
			}
			set.BootRecords = append(set.BootRecords, brvd)
		case TypePartition:
			pd, err := ParsePartition(sector)
			if err != nil {
				return nil, fmt.Errorf("volume descriptor set: sector %d: %w", i, err)
			}
			set.Partitions = append(set.Partitions, pd)
		case TypeSetTerminator:
			term, err := ParseTerminator(sector)
			if err != nil {
				return nil, fmt.Errorf("volume descriptor set: sector %d: %w", i, err)
			}
			set.Terminator = term
			return set, nil
		default:
			return nil, fmt.Errorf("volume descriptor set: sector %d: unrecognized type %d", i, sector[0])
		}
	}
	if set.Terminator == nil {
		return nil, fmt.Errorf("volume descriptor set: %w: no set terminator found", errNoTerminator)
	}
	return set, nil
}

var errNoTerminator = fmt.Errorf("missing volume descriptor set terminator")

// Enhanced returns the first Supplementary descriptor in the set whose
// version marks it Enhanced (ISO 9660:1999), or nil.
func (s *Set) Enhanced() *Supplementary {
	for _, svd := range s.Supplementary {
		if svd.IsEnhanced() {
			return svd
		}
	}
	return nil
}

// Joliet returns the first Supplementary descriptor in the set carrying a
// recognized Joliet escape sequence, or nil.
func (s *Set) Joliet() *Supplementary {
	for _, svd := range s.Supplementary {
		if svd.IsJoliet() {
			return svd
		}
	}
	return nil
}

// ValidateLogicalBlockSize reports whether n is a valid ECMA-119 logical
// block size: a power of two, at least 512.
func ValidateLogicalBlockSize(n uint16) bool {
	if n < 512 {
		return false
	}
	return n&(n-1) == 0
}

// ValidateApplicationUse reports whether an application-use payload fits the
// 512-byte field every directory-bearing descriptor reserves for it.
func ValidateApplicationUse(b []byte) bool {
	return len(b) <= consts.ApplicationUseMaxSize
}
