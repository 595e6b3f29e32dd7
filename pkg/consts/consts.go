// Package consts holds the fixed numeric and string constants defined by ECMA-119
// and its Joliet / Rock Ridge extensions.
package consts

const (
	// SystemAreaSectors is the number of reserved sectors preceding the volume
	// descriptor set.
	SystemAreaSectors = 16

	// StdIdentifier is the standard identifier ("CD001") every non-terminator
	// volume descriptor carries at byte offset 1 of its sector.
	StdIdentifier = "CD001"

	// VolumeDescHeaderSize is the length, in bytes, of the common volume
	// descriptor header (type + identifier + version).
	VolumeDescHeaderSize = 7

	// DefaultSectorSize is the sector size assumed when none is given.
	DefaultSectorSize = 2048

	// ApplicationUseMaxSize bounds the trailing application-use field carried
	// by every directory-bearing volume descriptor.
	ApplicationUseMaxSize = 512

	// Joliet escape sequences, selecting UCS-2 big-endian name encoding.
	JolietLevel1Escape = "%/@"
	JolietLevel2Escape = "%/C"
	JolietLevel3Escape = "%/E"

	// UCS2ExtendedEscape1-3 are additional registered escape sequences that,
	// per SPEC_FULL.md §4.E, also select UCS-2 big-endian name encoding on a
	// type-2 (Supplementary/Enhanced) descriptor, alongside the three Joliet
	// levels above.
	UCS2ExtendedEscape1 = "%/J"
	UCS2ExtendedEscape2 = "%/K"
	UCS2ExtendedEscape3 = "%/L"

	// UTF8Escape1-3 select UTF-8 name encoding on a type-2 descriptor.
	UTF8Escape1 = "%/G"
	UTF8Escape2 = "%/H"
	UTF8Escape3 = "%/I"

	// ElToritoBootSystemID is the boot-system-identifier magic that marks a
	// Boot Record Volume Descriptor as carrying an El Torito catalog.
	ElToritoBootSystemID = "EL TORITO SPECIFICATION"

	// ACharacters is the a-character set (ECMA-119 7.4.1).
	ACharacters = " !\"%&'()*+,-./0123456789:;<=>?ABCDEFGHIJKLMNOPQRSTUVWXYZ_"

	// DCharacters is the d-character set (ECMA-119 7.4.1).
	DCharacters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_"

	// Separator1 and Separator2 are the two identifier separators.
	Separator1 = "."
	Separator2 = ";"

	// Filler is the ASCII space used to pad identifiers and descriptor fields.
	Filler = byte(' ')

	// VolumeDescVersion is the version field value carried by every Primary,
	// Boot Record, and (non-Enhanced) Supplementary Volume Descriptor.
	VolumeDescVersion = 1

	// EnhancedVolumeDescVersion is the version field value that marks a
	// Supplementary Volume Descriptor as an Enhanced (ISO 9660:1999) one.
	EnhancedVolumeDescVersion = 2
)

// ISOType enumerates the disc image formats the library understands. Only
// ISO9660 is implemented; the type exists so the option surface can grow
// without an incompatible change.
type ISOType int

const (
	ISO9660 ISOType = iota
)
