package filesystem

import (
	"io"
	"testing"

	"github.com/rstms/isokit/pkg/blockmedium"
	"github.com/rstms/isokit/pkg/descriptor"
	"github.com/rstms/isokit/pkg/directory"
	"github.com/rstms/isokit/pkg/encoding"
	"github.com/stretchr/testify/require"
)

func writeDirectoryExtent(t *testing.T, bio *blockmedium.BlockIO, lba uint32, recs []*directory.Record) uint32 {
	t.Helper()
	var buf []byte
	for _, r := range recs {
		data, err := r.Serialize()
		require.NoError(t, err)
		buf = append(buf, data...)
	}
	for len(buf)%2048 != 0 {
		buf = append(buf, 0)
	}
	for i := 0; i*2048 < len(buf); i++ {
		require.NoError(t, bio.WriteBlock(lba+uint32(i), buf[i*2048:(i+1)*2048]))
	}
	return uint32(len(buf))
}

func TestReadDirectoryBuildsEntries(t *testing.T) {
	med := blockmedium.NewMemoryMedium(2048)
	bio, err := blockmedium.NewBlockIO(med, 2048)
	require.NoError(t, err)

	fileRec := &directory.Record{
		IdentifierBytes: []byte("HELLO.TXT;1"),
		ExtentLBA:       50,
		DataLength:      5,
	}
	dirRec := &directory.Record{
		IdentifierBytes: []byte("SUB"),
		Flags:           directory.FlagDirectory,
		ExtentLBA:       51,
	}
	dot := &directory.Record{IdentifierBytes: []byte{0x00}, Flags: directory.FlagDirectory, ExtentLBA: 20}
	dotdot := &directory.Record{IdentifierBytes: []byte{0x01}, Flags: directory.FlagDirectory, ExtentLBA: 1}

	dataLen := writeDirectoryExtent(t, bio, 20, []*directory.Record{dot, dotdot, fileRec, dirRec})
	dot.DataLength = dataLen

	root := &Resolved{Root: dot, Enc: encoding.ASCII, Policy: Policy{Kind: PolicyPrimary}}
	entries, err := ReadDirectory(bio, root, dot)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	require.Equal(t, KindCurrentDirectory, entries[0].Kind)
	require.Equal(t, KindParentDirectory, entries[1].Kind)
	require.Equal(t, KindFile, entries[2].Kind)
	require.Equal(t, "HELLO.TXT;1", entries[2].Name)
	require.Equal(t, uint32(5), entries[2].Size)
	require.Equal(t, KindDirectory, entries[3].Kind)
	require.Equal(t, "SUB", entries[3].Name)
}

func TestReadDirectoryRejectsNonDirectory(t *testing.T) {
	med := blockmedium.NewMemoryMedium(2048)
	bio, err := blockmedium.NewBlockIO(med, 2048)
	require.NoError(t, err)

	fileRec := &directory.Record{IdentifierBytes: []byte("A"), ExtentLBA: 1, DataLength: 0}
	resolved := &Resolved{Root: fileRec, Enc: encoding.ASCII}
	_, err = ReadDirectory(bio, resolved, fileRec)
	require.Error(t, err)
}

func TestFileReaderRestartableAndBounded(t *testing.T) {
	med := blockmedium.NewMemoryMedium(2048)
	bio, err := blockmedium.NewBlockIO(med, 2048)
	require.NoError(t, err)

	block := make([]byte, 2048)
	copy(block, []byte("hello world"))
	require.NoError(t, bio.WriteBlock(10, block))

	r := NewFileReader(bio, 10, 5)
	buf := make([]byte, 100)
	n, err := r.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n]))

	_, err = r.Read(buf)
	require.ErrorIs(t, err, io.EOF)

	_, err = r.Seek(0, io.SeekStart)
	require.NoError(t, err)
	n, err = r.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n]))
}

func TestResolvePrimaryRequiresPrimaryDescriptor(t *testing.T) {
	med := blockmedium.NewMemoryMedium(2048)
	bio, err := blockmedium.NewBlockIO(med, 2048)
	require.NoError(t, err)

	_, err = Resolve(bio, &descriptor.Set{}, Policy{Kind: PolicyPrimary})
	require.Error(t, err)
}
