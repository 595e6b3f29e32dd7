package eltorito

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildValidationEntry(platform byte) []byte {
	entry := make([]byte, entrySize)
	entry[0] = 0x01
	entry[1] = platform
	entry[0x1e] = 0x55
	entry[0x1f] = 0xAA

	var checksum uint16
	for i := 0; i < entrySize; i += 2 {
		if i == 0x1c {
			continue // checksum bytes themselves stay zero
		}
		checksum += binary.LittleEndian.Uint16(entry[i : i+2])
	}
	binary.LittleEndian.PutUint16(entry[0x1c:0x1e], -checksum&0xFFFF)
	return entry
}

func buildBootEntry(indicator, media byte, rba uint32) []byte {
	entry := make([]byte, entrySize)
	entry[0] = indicator
	entry[1] = media
	binary.LittleEndian.PutUint16(entry[6:8], 4)
	binary.LittleEndian.PutUint32(entry[8:12], rba)
	return entry
}

func TestParseValidationAndDefaultEntry(t *testing.T) {
	data := append(buildValidationEntry(byte(BIOS)), buildBootEntry(0x88, byte(NoEmulation), 100)...)
	cat, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, BIOS, cat.Validation.Platform)
	require.True(t, cat.Default.Bootable())
	require.Equal(t, uint32(100), cat.Default.LoadRBA)
}

func TestParseRejectsBadValidationChecksum(t *testing.T) {
	entry := make([]byte, entrySize)
	entry[0] = 0x01
	entry[0x1e], entry[0x1f] = 0x55, 0xAA
	entry[2] = 0x01 // perturbs the checksum without fixing it
	data := append(entry, buildBootEntry(0x88, 0, 0)...)
	_, err := Parse(data)
	require.Error(t, err)
}

func TestParseSectionEntries(t *testing.T) {
	header := make([]byte, entrySize)
	header[0] = 0x91
	header[1] = byte(EFI)
	binary.LittleEndian.PutUint16(header[2:4], 1)

	data := append(buildValidationEntry(byte(BIOS)), buildBootEntry(0x88, byte(NoEmulation), 1)...)
	data = append(data, header...)
	data = append(data, buildBootEntry(0x88, byte(HardDiskEmulation), 200)...)

	cat, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, cat.Sections, 1)
	require.Equal(t, EFI, cat.Sections[0].Platform)
	require.Len(t, cat.Sections[0].Entries, 1)
	require.Equal(t, uint32(200), cat.Sections[0].Entries[0].LoadRBA)
}
