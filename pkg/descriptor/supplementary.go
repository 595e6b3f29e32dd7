package descriptor

import (
	"fmt"

	"github.com/rstms/isokit/pkg/consts"
	"github.com/rstms/isokit/pkg/directory"
	"github.com/rstms/isokit/pkg/encoding"
)

// jolietEscapes is the enumerated set of escape sequences that select a
// UCS-2 big-endian name encoding: the three Joliet levels plus the three
// additional registered UCS-2 escape sequences. An Enhanced Volume
// Descriptor carrying any other escape sequence is not Joliet and must not
// have its names decoded as UCS-2; this is the corrected behavior for Open
// Question (a).
var jolietEscapes = map[string]bool{
	consts.JolietLevel1Escape:  true,
	consts.JolietLevel2Escape:  true,
	consts.JolietLevel3Escape:  true,
	consts.UCS2ExtendedEscape1: true,
	consts.UCS2ExtendedEscape2: true,
	consts.UCS2ExtendedEscape3: true,
}

// utf8Escapes is the enumerated set of escape sequences that select a UTF-8
// name encoding on a type-2 descriptor.
var utf8Escapes = map[string]bool{
	consts.UTF8Escape1: true,
	consts.UTF8Escape2: true,
	consts.UTF8Escape3: true,
}

// Supplementary is a Supplementary Volume Descriptor (version 1) or an
// Enhanced Volume Descriptor (version 2, ISO 9660:1999). Its Escape field
// distinguishes plain-ASCII supplementary descriptors from Joliet ones.
type Supplementary struct {
	Header

	VolumeFlags          byte
	SystemIdentifier     string
	VolumeIdentifier     string
	VolumeSpaceSize      uint32
	EscapeSequences      []byte
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

// IsJoliet reports whether the descriptor's escape sequence selects a UCS-2
// big-endian name encoding: one of the three Joliet levels or one of the
// three additional registered UCS-2 escape sequences.
func (svd *Supplementary) IsJoliet() bool {
	if len(svd.EscapeSequences) < 3 {
		return false
	}
	return jolietEscapes[string(svd.EscapeSequences[0:3])]
}

// IsUTF8 reports whether the descriptor's escape sequence selects a UTF-8
// name encoding.
func (svd *Supplementary) IsUTF8() bool {
	if len(svd.EscapeSequences) < 3 {
		return false
	}
	return utf8Escapes[string(svd.EscapeSequences[0:3])]
}

// IsEnhanced reports whether this descriptor is version 2 (ISO 9660:1999
// Enhanced Volume Descriptor) rather than a plain Supplementary one.
func (svd *Supplementary) IsEnhanced() bool {
	return svd.VDVersion == consts.EnhancedVolumeDescVersion
}

// NameEncoding returns the encoding that should be used to decode this
// descriptor's identifier and directory-record name fields: UCS-2 big-endian
// for a recognized Joliet/UCS-2 escape, UTF-8 for a recognized UTF-8 escape,
// ASCII otherwise (including any Enhanced descriptor whose escape sequence
// is not in either enumerated set).
func (svd *Supplementary) NameEncoding() encoding.NameEncoding {
	switch {
	case svd.IsJoliet():
		return encoding.UCS2BigEndian
	case svd.IsUTF8():
		return encoding.UTF8
	default:
		return encoding.ASCII
	}
}

// ParseSupplementary decodes a 2048-byte Supplementary/Enhanced Volume
// Descriptor sector.
func ParseSupplementary(data []byte) (*Supplementary, error) {
	hdr, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if hdr.VDType != TypeSupplementary {
		return nil, fmt.Errorf("supplementary volume descriptor: wrong type %v", hdr.VDType)
	}
	if len(data) < 190 {
		return nil, fmt.Errorf("supplementary volume descriptor: sector too short (%d bytes)", len(data))
	}

	svd := &Supplementary{Header: hdr}
	svd.VolumeFlags = data[7]
	svd.EscapeSequences = append([]byte(nil), data[88:120]...)

	enc := svd.NameEncoding()
	svd.SystemIdentifier = encoding.UnpadString(data[8:40], enc, ' ')
	svd.VolumeIdentifier = encoding.UnpadString(data[40:72], enc, ' ')

	var derr error
	svd.VolumeSpaceSize, derr = encoding.ReadUint32BothEndian(data[80:88])
	if derr != nil {
		return nil, fmt.Errorf("supplementary volume descriptor: volume space size: %w", derr)
	}
	svd.VolumeSetSize, derr = encoding.ReadUint16BothEndian(data[120:124])
	if derr != nil {
		return nil, fmt.Errorf("supplementary volume descriptor: volume set size: %w", derr)
	}
	svd.VolumeSequenceNumber, derr = encoding.ReadUint16BothEndian(data[124:128])
	if derr != nil {
		return nil, fmt.Errorf("supplementary volume descriptor: volume sequence number: %w", derr)
	}
	svd.LogicalBlockSize, derr = encoding.ReadUint16BothEndian(data[128:132])
	if derr != nil {
		return nil, fmt.Errorf("supplementary volume descriptor: logical block size: %w", derr)
	}
	svd.PathTableSize, derr = encoding.ReadUint32BothEndian(data[132:140])
	if derr != nil {
		return nil, fmt.Errorf("supplementary volume descriptor: path table size: %w", derr)
	}

	svd.LPathTableLocation = leUint32(data[140:144])
	svd.LOptPathTableLoc = leUint32(data[144:148])
	svd.MPathTableLocation = beUint32(data[148:152])
	svd.MOptPathTableLoc = beUint32(data[152:156])

	root, _, err := directory.Parse(data[156:190])
	if err != nil {
		return nil, fmt.Errorf("supplementary volume descriptor: root directory record: %w", err)
	}
	svd.RootDirectoryRecord = root

	svd.VolumeSetIdentifier = encoding.UnpadString(data[190:318], enc, ' ')
	svd.PublisherIdentifier = encoding.ParseIdentifierOrFile(data[318:446], enc)
	svd.DataPreparerIdentifier = encoding.ParseIdentifierOrFile(data[446:574], enc)
	svd.ApplicationIdentifier = encoding.ParseIdentifierOrFile(data[574:702], enc)
	svd.CopyrightFileIdentifier = encoding.UnpadString(data[702:739], enc, ' ')
	svd.AbstractFileIdentifier = encoding.UnpadString(data[739:776], enc, ' ')
	svd.BibliographicFileIdentifier = encoding.UnpadString(data[776:813], enc, ' ')

	if svd.VolumeCreationDate, err = encoding.DecodeLongDate(data[813:830]); err != nil {
		return nil, fmt.Errorf("supplementary volume descriptor: creation date: %w", err)
	}
	if svd.VolumeModificationDate, err = encoding.DecodeLongDate(data[830:847]); err != nil {
		return nil, fmt.Errorf("supplementary volume descriptor: modification date: %w", err)
	}
	if svd.VolumeExpirationDate, err = encoding.DecodeLongDate(data[847:864]); err != nil {
		return nil, fmt.Errorf("supplementary volume descriptor: expiration date: %w", err)
	}
	if svd.VolumeEffectiveDate, err = encoding.DecodeLongDate(data[864:881]); err != nil {
		return nil, fmt.Errorf("supplementary volume descriptor: effective date: %w", err)
	}

	svd.FileStructureVersion = data[881]
	if len(data) >= 1395 {
		svd.ApplicationUse = append([]byte(nil), data[883:1395]...)
	}

	return svd, nil
}

// Serialize renders the Supplementary/Enhanced Volume Descriptor into a
// 2048-byte sector.
func (svd *Supplementary) Serialize() ([]byte, error) {
	if len(svd.ApplicationUse) > consts.ApplicationUseMaxSize {
		return nil, fmt.Errorf("supplementary volume descriptor: application use %d exceeds %d", len(svd.ApplicationUse), consts.ApplicationUseMaxSize)
	}
	enc := svd.NameEncoding()

	out := make([]byte, consts.DefaultSectorSize)
	out[0] = byte(TypeSupplementary)
	copy(out[1:6], consts.StdIdentifier)
	version := svd.VDVersion
	if version == 0 {
		version = consts.VolumeDescVersion
	}
	out[6] = version
	out[7] = svd.VolumeFlags

	copy(out[8:40], encoding.PadString(svd.SystemIdentifier, 32, enc, ' '))
	copy(out[40:72], encoding.PadString(svd.VolumeIdentifier, 32, enc, ' '))
	encoding.WriteUint32BothEndian(out[80:88], svd.VolumeSpaceSize)
	copy(out[88:120], svd.EscapeSequences)
	encoding.WriteUint16BothEndian(out[120:124], svd.VolumeSetSize)
	encoding.WriteUint16BothEndian(out[124:128], svd.VolumeSequenceNumber)
	encoding.WriteUint16BothEndian(out[128:132], svd.LogicalBlockSize)
	encoding.WriteUint32BothEndian(out[132:140], svd.PathTableSize)
	putLE32(out[140:144], svd.LPathTableLocation)
	putLE32(out[144:148], svd.LOptPathTableLoc)
	putBE32(out[148:152], svd.MPathTableLocation)
	putBE32(out[152:156], svd.MOptPathTableLoc)

	if svd.RootDirectoryRecord != nil {
		rec, err := svd.RootDirectoryRecord.Serialize()
		if err != nil {
			return nil, fmt.Errorf("supplementary volume descriptor: root directory record: %w", err)
		}
		if len(rec) > 34 {
			return nil, fmt.Errorf("supplementary volume descriptor: root directory record exceeds 34 bytes")
		}
		copy(out[156:190], rec)
	}

	copy(out[190:318], encoding.PadString(svd.VolumeSetIdentifier, 128, enc, ' '))
	copy(out[318:446], svd.PublisherIdentifier.Serialize(128, enc))
	copy(out[446:574], svd.DataPreparerIdentifier.Serialize(128, enc))
	copy(out[574:702], svd.ApplicationIdentifier.Serialize(128, enc))
	copy(out[702:739], encoding.PadString(svd.CopyrightFileIdentifier, 37, enc, ' '))
	copy(out[739:776], encoding.PadString(svd.AbstractFileIdentifier, 37, enc, ' '))
	copy(out[776:813], encoding.PadString(svd.BibliographicFileIdentifier, 37, enc, ' '))
	copy(out[813:830], svd.VolumeCreationDate.Encode())
	copy(out[830:847], svd.VolumeModificationDate.Encode())
	copy(out[847:864], svd.VolumeExpirationDate.Encode())
	copy(out[864:881], svd.VolumeEffectiveDate.Encode())
	out[881] = svd.FileStructureVersion
	copy(out[883:1395], svd.ApplicationUse)

	return out, nil
}
