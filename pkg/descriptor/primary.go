package descriptor

import (
	"fmt"

	"github.com/rstms/isokit/pkg/consts"
	"github.com/rstms/isokit/pkg/directory"
	"github.com/rstms/isokit/pkg/encoding"
)

// Primary is the Primary Volume Descriptor: the root of the standard
// directory hierarchy, using strict d-/a-character identifiers.
type Primary struct {
	Header

	SystemIdentifier     string
	VolumeIdentifier     string
	VolumeSpaceSize      uint32
	VolumeSetSize        uint16
	VolumeSequenceNumber uint16
	LogicalBlockSize     uint16
	PathTableSize        uint32
	LPathTableLocation   uint32
	LOptPathTableLoc     uint32
	MPathTableLocation   uint32
	MOptPathTableLoc     uint32
	RootDirectoryRecord  *directory.Record

	VolumeSetIdentifier         string
	PublisherIdentifier         encoding.IdentifierOrFile
	DataPreparerIdentifier      encoding.IdentifierOrFile
	ApplicationIdentifier       encoding.IdentifierOrFile
	CopyrightFileIdentifier     string
	AbstractFileIdentifier      string
	BibliographicFileIdentifier string

	VolumeCreationDate     encoding.LongDate
	VolumeModificationDate encoding.LongDate
	VolumeExpirationDate   encoding.LongDate
	VolumeEffectiveDate    encoding.LongDate

	FileStructureVersion byte
	ApplicationUse       []byte
}

// ParsePrimary decodes a 2048-byte Primary Volume Descriptor sector.
func ParsePrimary(data []byte) (*Primary, error) {
	hdr, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if hdr.VDType != TypePrimary {
		return nil, fmt.Errorf("primary volume descriptor: wrong type %v", hdr.VDType)
	}
	if len(data) < 190 {
		return nil, fmt.Errorf("primary volume descriptor: sector too short (%d bytes)", len(data))
	}

	pvd := &Primary{Header: hdr}
	pvd.SystemIdentifier = encoding.UnpadString(data[8:40], encoding.ASCII, ' ')
	pvd.VolumeIdentifier = encoding.UnpadString(data[40:72], encoding.ASCII, ' ')

	var derr error
	pvd.VolumeSpaceSize, derr = encoding.ReadUint32BothEndian(data[80:88])
	if derr != nil {
		return nil, fmt.Errorf("primary volume descriptor: volume space size: %w", derr)
	}
	pvd.VolumeSetSize, derr = encoding.ReadUint16BothEndian(data[120:124])
	if derr != nil {
		return nil, fmt.Errorf("primary volume descriptor: volume set size: %w", derr)
	}
	pvd.VolumeSequenceNumber, derr = encoding.ReadUint16BothEndian(data[124:128])
	if derr != nil {
		return nil, fmt.Errorf("primary volume descriptor: volume sequence number: %w", derr)
	}
	pvd.LogicalBlockSize, derr = encoding.ReadUint16BothEndian(data[128:132])
	if derr != nil {
		return nil, fmt.Errorf("primary volume descriptor: logical block size: %w", derr)
	}
	pvd.PathTableSize, derr = encoding.ReadUint32BothEndian(data[132:140])
	if derr != nil {
		return nil, fmt.Errorf("primary volume descriptor: path table size: %w", derr)
	}

	pvd.LPathTableLocation = leUint32(data[140:144])
	pvd.LOptPathTableLoc = leUint32(data[144:148])
	pvd.MPathTableLocation = beUint32(data[148:152])
	pvd.MOptPathTableLoc = beUint32(data[152:156])

	root, _, err := directory.Parse(data[156:190])
	if err != nil {
		return nil, fmt.Errorf("primary volume descriptor: root directory record: %w", err)
	}
	pvd.RootDirectoryRecord = root

	pvd.VolumeSetIdentifier = encoding.UnpadString(data[190:318], encoding.ASCII, ' ')
	pvd.PublisherIdentifier = encoding.ParseIdentifierOrFile(data[318:446], encoding.ASCII)
	pvd.DataPreparerIdentifier = encoding.ParseIdentifierOrFile(data[446:574], encoding.ASCII)
	pvd.ApplicationIdentifier = encoding.ParseIdentifierOrFile(data[574:702], encoding.ASCII)
	pvd.CopyrightFileIdentifier = encoding.UnpadString(data[702:739], encoding.ASCII, ' ')
	pvd.AbstractFileIdentifier = encoding.UnpadString(data[739:776], encoding.ASCII, ' ')
	pvd.BibliographicFileIdentifier = encoding.UnpadString(data[776:813], encoding.ASCII, ' ')

	if pvd.VolumeCreationDate, err = encoding.DecodeLongDate(data[813:830]); err != nil {
		return nil, fmt.Errorf("primary volume descriptor: creation date: %w", err)
	}
	if pvd.VolumeModificationDate, err = encoding.DecodeLongDate(data[830:847]); err != nil {
		return nil, fmt.Errorf("primary volume descriptor: modification date: %w", err)
	}
	if pvd.VolumeExpirationDate, err = encoding.DecodeLongDate(data[847:864]); err != nil {
		return nil, fmt.Errorf("primary volume descriptor: expiration date: %w", err)
	}
	if pvd.VolumeEffectiveDate, err = encoding.DecodeLongDate(data[864:881]); err != nil {
		return nil, fmt.Errorf("primary volume descriptor: effective date: %w", err)
	}

	pvd.FileStructureVersion = data[881]
	if len(data) >= 1395 {
		pvd.ApplicationUse = append([]byte(nil), data[883:1395]...)
	}

	return pvd, nil
}

// Serialize renders the Primary Volume Descriptor into a 2048-byte sector.
func (pvd *Primary) Serialize() ([]byte, error) {
	if len(pvd.ApplicationUse) > consts.ApplicationUseMaxSize {
		return nil, fmt.Errorf("primary volume descriptor: application use %d exceeds %d", len(pvd.ApplicationUse), consts.ApplicationUseMaxSize)
	}
	out := make([]byte, consts.DefaultSectorSize)
	out[0] = byte(TypePrimary)
	copy(out[1:6], consts.StdIdentifier)
	out[6] = consts.VolumeDescVersion

	copy(out[8:40], encoding.PadString(pvd.SystemIdentifier, 32, encoding.ASCII, ' '))
	copy(out[40:72], encoding.PadString(pvd.VolumeIdentifier, 32, encoding.ASCII, ' '))
	encoding.WriteUint32BothEndian(out[80:88], pvd.VolumeSpaceSize)
	encoding.WriteUint16BothEndian(out[120:124], pvd.VolumeSetSize)
	encoding.WriteUint16BothEndian(out[124:128], pvd.VolumeSequenceNumber)
	encoding.WriteUint16BothEndian(out[128:132], pvd.LogicalBlockSize)
	encoding.WriteUint32BothEndian(out[132:140], pvd.PathTableSize)
	putLE32(out[140:144], pvd.LPathTableLocation)
	putLE32(out[144:148], pvd.LOptPathTableLoc)
	putBE32(out[148:152], pvd.MPathTableLocation)
	putBE32(out[152:156], pvd.MOptPathTableLoc)

	if pvd.RootDirectoryRecord != nil {
		rec, err := pvd.RootDirectoryRecord.Serialize()
		if err != nil {
			return nil, fmt.Errorf("primary volume descriptor: root directory record: %w", err)
		}
		if len(rec) > 34 {
			return nil, fmt.Errorf("primary volume descriptor: root directory record exceeds 34 bytes")
		}
		copy(out[156:190], rec)
	}

	copy(out[190:318], encoding.PadString(pvd.VolumeSetIdentifier, 128, encoding.ASCII, ' '))
	copy(out[318:446], pvd.PublisherIdentifier.Serialize(128, encoding.ASCII))
	copy(out[446:574], pvd.DataPreparerIdentifier.Serialize(128, encoding.ASCII))
	copy(out[574:702], pvd.ApplicationIdentifier.Serialize(128, encoding.ASCII))
	copy(out[702:739], encoding.PadString(pvd.CopyrightFileIdentifier, 37, encoding.ASCII, ' '))
	copy(out[739:776], encoding.PadString(pvd.AbstractFileIdentifier, 37, encoding.ASCII, ' '))
	copy(out[776:813], encoding.PadString(pvd.BibliographicFileIdentifier, 37, encoding.ASCII, ' '))
	copy(out[813:830], pvd.VolumeCreationDate.Encode())
	copy(out[830:847], pvd.VolumeModificationDate.Encode())
	copy(out[847:864], pvd.VolumeExpirationDate.Encode())
	copy(out[864:881], pvd.VolumeEffectiveDate.Encode())
	out[881] = pvd.FileStructureVersion
	copy(out[883:1395], pvd.ApplicationUse)

	return out, nil
}
