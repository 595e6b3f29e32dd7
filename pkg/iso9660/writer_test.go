package iso9660

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rstms/isokit/pkg/blockmedium"
	"github.com/rstms/isokit/pkg/filesystem"
)

func newTestMedium(t *testing.T) *blockmedium.MemoryMedium {
	t.Helper()
	return blockmedium.NewMemoryMedium(2048)
}

func openWriter(t *testing.T, opts WriterOptions) (*Writer, *blockmedium.MemoryMedium) {
	t.Helper()
	medium := newTestMedium(t)
	w, err := NewWriter(medium, opts)
	require.NoError(t, err)
	return w, medium
}

func streamFromMap(contents map[string]string) FileStreamFunc {
	return func(path string) (io.Reader, error) {
		data, ok := contents[path]
		if !ok {
			return nil, fmt.Errorf("no fixture content for %q", path)
		}
		return strings.NewReader(data), nil
	}
}

func TestWriterMinimalPrimaryImage(t *testing.T) {
	w, medium := openWriter(t, WriterOptions{
		VolumeIdentifier:     "MINIMAL",
		IncludeSupplementary: false,
		EnableSUSP:           false,
	})

	require.NoError(t, w.AddDirectory("docs", nil))
	require.NoError(t, w.AddFile("docs/readme.txt", 5, nil))
	require.NoError(t, w.AddFile("top.txt", 3, nil))

	err := w.WriteAndClose(streamFromMap(map[string]string{
		"docs/readme.txt": "hello",
		"top.txt":         "abc",
	}))
	require.NoError(t, err)

	r, err := Open(medium)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, "MINIMAL", r.VolumeID())
	require.False(t, r.HasJoliet())

	entries, err := r.List("/")
	require.NoError(t, err)
	names := map[string]filesystem.FSEntry{}
	for _, e := range entries {
		if e.Kind == filesystem.KindFile || e.Kind == filesystem.KindDirectory {
			names[e.Name] = e
		}
	}
	require.Contains(t, names, "TOP.TXT;1")
	require.Contains(t, names, "DOCS")

	fr, err := r.ReadFile("/top.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(fr)
	require.NoError(t, err)
	require.Equal(t, "abc", string(data))
}

func TestWriterJolietAndRockRidge(t *testing.T) {
	w, medium := openWriter(t, WriterOptions{
		VolumeIdentifier:     "JOLIETRR",
		IncludeSupplementary: true,
		EnableSUSP:           true,
	})

	require.NoError(t, w.AddDirectory("a very long directory name", nil))
	require.NoError(t, w.AddFile("a very long directory name/a long file name.txt", 11, nil))

	err := w.WriteAndClose(streamFromMap(map[string]string{
		"a very long directory name/a long file name.txt": "hello world",
	}))
	require.NoError(t, err)

	r, err := Open(medium, WithPreferJoliet(true))
	require.NoError(t, err)
	defer r.Close()
	require.True(t, r.HasJoliet())

	entries, err := r.List("/")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "a very long directory name", entries[0].Name)

	sub, err := r.List("/a very long directory name")
	require.NoError(t, err)
	var found bool
	for _, e := range sub {
		if e.Name == "a long file name.txt" {
			found = true
		}
	}
	require.True(t, found)

	rPrimary, err := Open(medium)
	require.NoError(t, err)
	defer rPrimary.Close()
	has, err := rPrimary.HasRockRidge()
	require.NoError(t, err)
	require.True(t, has)

	primaryEntries, err := rPrimary.List("/")
	require.NoError(t, err)
	require.Len(t, primaryEntries, 1)
	require.Equal(t, "a very long directory name", primaryEntries[0].Name)
}

func TestWriterLegacyNameUniquification(t *testing.T) {
	w, medium := openWriter(t, WriterOptions{
		VolumeIdentifier:     "UNIQUE",
		IncludeSupplementary: false,
		EnableSUSP:           false,
	})

	require.NoError(t, w.AddFile("superlongname-one.txt", 1, nil))
	require.NoError(t, w.AddFile("superlongname-two.txt", 1, nil))

	err := w.WriteAndClose(streamFromMap(map[string]string{
		"superlongname-one.txt": "a",
		"superlongname-two.txt": "b",
	}))
	require.NoError(t, err)

	r, err := Open(medium)
	require.NoError(t, err)
	defer r.Close()

	entries, err := r.List("/")
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, e := range entries {
		if e.Kind != filesystem.KindFile {
			continue
		}
		require.False(t, seen[e.Name], "duplicate legacy name %q", e.Name)
		seen[e.Name] = true
	}
	require.Len(t, seen, 2)
}

func TestWriterSymlinkRoundTrip(t *testing.T) {
	w, medium := openWriter(t, WriterOptions{
		VolumeIdentifier:     "SYMLINKS",
		IncludeSupplementary: false,
		EnableSUSP:           true,
	})

	require.NoError(t, w.AddFile("target.txt", 4, nil))
	require.NoError(t, w.AddSymlink("link.txt", "target.txt", nil))

	err := w.WriteAndClose(streamFromMap(map[string]string{
		"target.txt": "data",
	}))
	require.NoError(t, err)

	r, err := Open(medium)
	require.NoError(t, err)
	defer r.Close()

	entries, err := r.List("/")
	require.NoError(t, err)
	var link *filesystem.FSEntry
	for i := range entries {
		if entries[i].Kind == filesystem.KindSymlink {
			link = &entries[i]
		}
	}
	require.NotNil(t, link)
	require.Equal(t, "target.txt", link.Target)
}

func TestWriterDualEndianIntegrity(t *testing.T) {
	w, medium := openWriter(t, WriterOptions{
		VolumeIdentifier:     "ENDIAN",
		IncludeSupplementary: true,
		EnableSUSP:           true,
	})
	require.NoError(t, w.AddFile("x.bin", 2048, nil))
	require.NoError(t, w.WriteAndClose(streamFromMap(map[string]string{
		"x.bin": strings.Repeat("Z", 2048),
	})))

	sector, err := medium.ReadSector(16)
	require.NoError(t, err)

	leSize := bytes.NewReader(sector[80:84])
	var le uint32
	for i := 0; i < 4; i++ {
		b, _ := leSize.ReadByte()
		le |= uint32(b) << (8 * i)
	}
	be := uint32(sector[84])<<24 | uint32(sector[85])<<16 | uint32(sector[86])<<8 | uint32(sector[87])
	require.Equal(t, le, be, "both-endian volume space size must agree")
}
