package descriptor

import (
	"testing"
	"time"

	"github.com/rstms/isokit/pkg/consts"
	"github.com/rstms/isokit/pkg/directory"
	"github.com/rstms/isokit/pkg/encoding"
	"github.com/stretchr/testify/require"
)

func samplePrimary() *Primary {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &Primary{
		Header:               Header{VDType: TypePrimary, StdIdentifier: consts.StdIdentifier, VDVersion: consts.VolumeDescVersion},
		SystemIdentifier:     "LINUX",
		VolumeIdentifier:     "MYDISC",
		VolumeSpaceSize:      100,
		VolumeSetSize:        1,
		VolumeSequenceNumber: 1,
		LogicalBlockSize:     2048,
		PathTableSize:        10,
		LPathTableLocation:   20,
		MPathTableLocation:   21,
		RootDirectoryRecord: &directory.Record{
			IdentifierBytes: []byte{0x00},
			Flags:           directory.FlagDirectory,
			ExtentLBA:       22,
			DataLength:      2048,
			RecordedDate:    encoding.RecordedDateFromTime(now),
		},
		VolumeSetIdentifier:    "SET",
		VolumeCreationDate:     encoding.LongDateFromTime(now),
		VolumeModificationDate: encoding.LongDateFromTime(now),
		VolumeExpirationDate:   encoding.LongDate{},
		VolumeEffectiveDate:    encoding.LongDate{},
		FileStructureVersion:   1,
	}
}

func TestPrimaryRoundTrip(t *testing.T) {
	pvd := samplePrimary()
	data, err := pvd.Serialize()
	require.NoError(t, err)
	require.Len(t, data, consts.DefaultSectorSize)

	got, err := ParsePrimary(data)
	require.NoError(t, err)
	require.Equal(t, pvd.VolumeIdentifier, got.VolumeIdentifier)
	require.Equal(t, pvd.SystemIdentifier, got.SystemIdentifier)
	require.Equal(t, pvd.VolumeSpaceSize, got.VolumeSpaceSize)
	require.Equal(t, pvd.LPathTableLocation, got.LPathTableLocation)
	require.Equal(t, pvd.MPathTableLocation, got.MPathTableLocation)
	require.True(t, got.RootDirectoryRecord.IsDot())
}

func TestSupplementaryJolietRoundTrip(t *testing.T) {
	svd := &Supplementary{
		Header:           Header{VDType: TypeSupplementary, StdIdentifier: consts.StdIdentifier, VDVersion: consts.VolumeDescVersion},
		EscapeSequences:  append([]byte(consts.JolietLevel3Escape), make([]byte, 29)...),
		VolumeIdentifier: "MYDISC",
		LogicalBlockSize: 2048,
		RootDirectoryRecord: &directory.Record{
			IdentifierBytes: []byte{0x00},
			Flags:           directory.FlagDirectory,
		},
	}
	require.True(t, svd.IsJoliet())

	data, err := svd.Serialize()
	require.NoError(t, err)

	got, err := ParseSupplementary(data)
	require.NoError(t, err)
	require.True(t, got.IsJoliet())
	require.Equal(t, "MYDISC", got.VolumeIdentifier)
}

func TestSupplementaryNonJolietEnhancedDoesNotDecodeAsUCS2(t *testing.T) {
	svd := &Supplementary{
		Header:           Header{VDType: TypeSupplementary, VDVersion: consts.EnhancedVolumeDescVersion},
		EscapeSequences:  make([]byte, 32),
		VolumeIdentifier: "PLAIN",
		RootDirectoryRecord: &directory.Record{
			IdentifierBytes: []byte{0x00},
		},
	}
	require.False(t, svd.IsJoliet())
	require.True(t, svd.IsEnhanced())
	require.Equal(t, encoding.ASCII, svd.NameEncoding())
}

func TestBootRecordElToritoDetection(t *testing.T) {
	brvd := &BootRecord{
		Header:               Header{VDType: TypeBootRecord},
		BootSystemIdentifier: consts.ElToritoBootSystemID,
		BootSystemUse:        make([]byte, 1977),
	}
	data, err := brvd.Serialize()
	require.NoError(t, err)

	got, err := ParseBootRecord(data)
	require.NoError(t, err)
	require.True(t, got.IsElTorito())
}

func TestParseSetStopsAtTerminator(t *testing.T) {
	pvd := samplePrimary()
	pvdData, err := pvd.Serialize()
	require.NoError(t, err)
	term := &Terminator{Header: Header{VDType: TypeSetTerminator}}

	set, err := ParseSet([][]byte{pvdData, term.Serialize()})
	require.NoError(t, err)
	require.NotNil(t, set.Primary)
	require.NotNil(t, set.Terminator)
}

func TestParseSetMissingTerminatorErrors(t *testing.T) {
	pvd := samplePrimary()
	pvdData, err := pvd.Serialize()
	require.NoError(t, err)
	_, err = ParseSet([][]byte{pvdData})
	require.Error(t, err)
}

func TestValidateLogicalBlockSize(t *testing.T) {
	require.True(t, ValidateLogicalBlockSize(2048))
	require.True(t, ValidateLogicalBlockSize(512))
	require.False(t, ValidateLogicalBlockSize(1500))
	require.False(t, ValidateLogicalBlockSize(100))
}

func TestValidateApplicationUse(t *testing.T) {
	require.True(t, ValidateApplicationUse(make([]byte, 512)))
	require.False(t, ValidateApplicationUse(make([]byte, 513)))
}
