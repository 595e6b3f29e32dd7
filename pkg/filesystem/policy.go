package filesystem

import (
	"fmt"

	"github.com/rstms/isokit/pkg/blockmedium"
	"github.com/rstms/isokit/pkg/descriptor"
	"github.com/rstms/isokit/pkg/directory"
	"github.com/rstms/isokit/pkg/encoding"
	"github.com/rstms/isokit/pkg/susp"
)

// PolicyKind selects which volume descriptor governs path resolution.
type PolicyKind int

const (
	PolicyPrimary PolicyKind = iota
	PolicySupplementary
	PolicyEnhanced
	PolicyAny
)

// Policy is a descriptor-selection policy: which descriptor to resolve
// against, and whether to prefer path-table or directory-record traversal.
type Policy struct {
	Kind      PolicyKind
	PathTable bool
}

// Resolved is the concrete descriptor + encoding a Policy settled on.
type Resolved struct {
	Root   *directory.Record
	Enc    encoding.NameEncoding
	Policy Policy
}

// Resolve picks the concrete descriptor a Policy refers to. For PolicyAny the
// preference order is: Primary if its root carries any SUSP bytes; else
// Supplementary; else Enhanced; else Primary without SUSP.
func Resolve(bio *blockmedium.BlockIO, set *descriptor.Set, policy Policy) (*Resolved, error) {
	switch policy.Kind {
	case PolicyPrimary:
		if set.Primary == nil {
			return nil, fmt.Errorf("filesystem: no primary volume descriptor present")
		}
		return &Resolved{Root: set.Primary.RootDirectoryRecord, Enc: encoding.ASCII, Policy: policy}, nil
	case PolicySupplementary:
		svd := firstPlainSupplementary(set)
		if svd == nil {
			return nil, fmt.Errorf("filesystem: no supplementary volume descriptor present")
		}
		return &Resolved{Root: svd.RootDirectoryRecord, Enc: svd.NameEncoding(), Policy: policy}, nil
	case PolicyEnhanced:
		svd := set.Enhanced()
		if svd == nil {
			return nil, fmt.Errorf("filesystem: no enhanced volume descriptor present")
		}
		return &Resolved{Root: svd.RootDirectoryRecord, Enc: svd.NameEncoding(), Policy: policy}, nil
	case PolicyAny:
		return resolveAny(bio, set, policy)
	default:
		return nil, fmt.Errorf("filesystem: unknown descriptor policy %d", policy.Kind)
	}
}

func resolveAny(bio *blockmedium.BlockIO, set *descriptor.Set, policy Policy) (*Resolved, error) {
	if set.Primary == nil {
		return nil, fmt.Errorf("filesystem: no primary volume descriptor present")
	}
	hasSUSP, err := HasSUSP(bio, set.Primary.RootDirectoryRecord)
	if err != nil {
		return nil, err
	}
	if hasSUSP {
		return &Resolved{Root: set.Primary.RootDirectoryRecord, Enc: encoding.ASCII, Policy: policy}, nil
	}
	if svd := firstPlainSupplementary(set); svd != nil {
		return &Resolved{Root: svd.RootDirectoryRecord, Enc: svd.NameEncoding(), Policy: policy}, nil
	}
	if svd := set.Enhanced(); svd != nil {
		return &Resolved{Root: svd.RootDirectoryRecord, Enc: svd.NameEncoding(), Policy: policy}, nil
	}
	return &Resolved{Root: set.Primary.RootDirectoryRecord, Enc: encoding.ASCII, Policy: policy}, nil
}

func firstPlainSupplementary(set *descriptor.Set) *descriptor.Supplementary {
	for _, svd := range set.Supplementary {
		if !svd.IsEnhanced() {
			return svd
		}
	}
	return nil
}

// HasSUSP implements the SUSP presence probe: read the root extent, iterate
// its directory records (without following CE chains), and report whether
// any record's system-use trailer parses to a non-empty SUSP entry list.
func HasSUSP(bio *blockmedium.BlockIO, root *directory.Record) (bool, error) {
	data, err := bio.ReadBytesAt(root.ExtentLBA, 0, int(root.DataLength))
	if err != nil {
		return false, fmt.Errorf("filesystem: susp probe: %w", err)
	}
	recs, err := splitRecords(data)
	if err != nil {
		return false, fmt.Errorf("filesystem: susp probe: %w", err)
	}
	for _, rec := range recs {
		if len(rec.SystemUse) == 0 {
			continue
		}
		if len(susp.NewArea(rec.SystemUse).Entries) > 0 {
			return true, nil
		}
	}
	return false, nil
}
