// Package blockmedium implements the block-addressable byte backing that the
// rest of the library reads from and writes to: a disc image file or an
// equivalent in-memory stand-in used by tests.
package blockmedium

import (
	"fmt"
	"io"
	"os"

	"github.com/rstms/isokit/pkg/isoerr"
)

// Medium is the logical-sector I/O contract every reader and writer is built
// on. Implementations need not be safe for concurrent use; higher layers
// never share a Medium across goroutines.
type Medium interface {
	// SectorSize returns the medium's sector size, a power of two >= 2048.
	SectorSize() int
	// IsBlank reports whether the medium has never been written to.
	IsBlank() bool
	// MaxSectors reports the medium's current extent, in sectors.
	MaxSectors() int
	// ReadSector reads one sector. A read past the medium's current end
	// yields a zero-filled sector rather than an error.
	ReadSector(idx int) ([]byte, error)
	// WriteSector writes one sector, extending the medium as needed. len(data)
	// must equal SectorSize(); violating this is a caller bug.
	WriteSector(idx int, data []byte) error
	// Sync durably persists any buffered writes.
	Sync() error
	// Close releases any resources (file handles) held by the medium.
	Close() error
}

// FileMedium is a Medium backed by an *os.File (an .iso file or a block
// device opened for read/write).
type FileMedium struct {
	f          *os.File
	sectorSize int
	blank      bool
}

// OpenFileMedium opens an existing file as a Medium with the given sector
// size.
func OpenFileMedium(path string, sectorSize int) (*FileMedium, error) {
	if !isPowerOfTwo(sectorSize) || sectorSize < 2048 {
		return nil, isoerr.ErrInvalidSectorSize
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &FileMedium{f: f, sectorSize: sectorSize}, nil
}

// CreateFileMedium creates (or truncates) path as a fresh, blank Medium.
func CreateFileMedium(path string, sectorSize int) (*FileMedium, error) {
	if !isPowerOfTwo(sectorSize) || sectorSize < 2048 {
		return nil, isoerr.ErrInvalidSectorSize
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileMedium{f: f, sectorSize: sectorSize, blank: true}, nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func (m *FileMedium) SectorSize() int { return m.sectorSize }

func (m *FileMedium) IsBlank() bool { return m.blank }

func (m *FileMedium) MaxSectors() int {
	info, err := m.f.Stat()
	if err != nil {
		return 0
	}
	return int(info.Size()) / m.sectorSize
}

func (m *FileMedium) ReadSector(idx int) ([]byte, error) {
	buf := make([]byte, m.sectorSize)
	off := int64(idx) * int64(m.sectorSize)
	n, err := m.f.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read sector %d: %w", idx, err)
	}
	// Short or absent reads past the current end yield a zero-filled sector.
	_ = n
	return buf, nil
}

func (m *FileMedium) WriteSector(idx int, data []byte) error {
	if len(data) != m.sectorSize {
		return isoerr.PreconditionFailed(fmt.Sprintf("write sector: expected %d bytes, got %d", m.sectorSize, len(data)))
	}
	off := int64(idx) * int64(m.sectorSize)
	if _, err := m.f.WriteAt(data, off); err != nil {
		return fmt.Errorf("write sector %d: %w", idx, err)
	}
	m.blank = false
	return nil
}

func (m *FileMedium) Sync() error {
	return m.f.Sync()
}

func (m *FileMedium) Close() error {
	return m.f.Close()
}

// MemoryMedium is an in-memory Medium, used by unit tests and small
// round-trip scenarios that would otherwise need a temp file.
type MemoryMedium struct {
	sectorSize int
	sectors    [][]byte
}

// NewMemoryMedium builds a blank in-memory Medium.
func NewMemoryMedium(sectorSize int) *MemoryMedium {
	return &MemoryMedium{sectorSize: sectorSize}
}

func (m *MemoryMedium) SectorSize() int { return m.sectorSize }

func (m *MemoryMedium) IsBlank() bool { return len(m.sectors) == 0 }

func (m *MemoryMedium) MaxSectors() int { return len(m.sectors) }

func (m *MemoryMedium) ReadSector(idx int) ([]byte, error) {
	if idx < 0 {
		return nil, isoerr.PreconditionFailed("negative sector index")
	}
	if idx >= len(m.sectors) {
		return make([]byte, m.sectorSize), nil
	}
	out := make([]byte, m.sectorSize)
	copy(out, m.sectors[idx])
	return out, nil
}

func (m *MemoryMedium) WriteSector(idx int, data []byte) error {
	if len(data) != m.sectorSize {
		return isoerr.PreconditionFailed(fmt.Sprintf("write sector: expected %d bytes, got %d", m.sectorSize, len(data)))
	}
	for idx >= len(m.sectors) {
		m.sectors = append(m.sectors, make([]byte, m.sectorSize))
	}
	copy(m.sectors[idx], data)
	return nil
}

func (m *MemoryMedium) Sync() error { return nil }

func (m *MemoryMedium) Close() error { return nil }
