package blockmedium

import (
	"fmt"

	"github.com/rstms/isokit/pkg/isoerr"
)

// BlockIO adapts a sector-granular Medium to logical-block addressing. In
// the common case block size equals sector size and this is a pass-through;
// the type still validates and carries the distinction explicitly since the
// two are conceptually different (ECMA-119 7.1 vs the medium's physical
// sector), and a future medium with a larger physical sector than the
// logical block size can implement the mapping without changing callers.
type BlockIO struct {
	medium    Medium
	blockSize int
}

// NewBlockIO validates blockSize against the medium's sector size and wraps
// it for logical-block addressed reads and writes.
func NewBlockIO(medium Medium, blockSize int) (*BlockIO, error) {
	if blockSize <= 0 || blockSize&(blockSize-1) != 0 {
		return nil, isoerr.ErrInvalidLogicalBlockSize
	}
	if blockSize > medium.SectorSize() {
		return nil, isoerr.ErrInvalidLogicalBlockSize
	}
	return &BlockIO{medium: medium, blockSize: blockSize}, nil
}

func (b *BlockIO) BlockSize() int { return b.blockSize }

// ReadBlock reads one logical block. When block size equals the medium's
// sector size this is one sector; otherwise it is a sub-range of a sector.
func (b *BlockIO) ReadBlock(lba uint32) ([]byte, error) {
	if b.blockSize == b.medium.SectorSize() {
		return b.medium.ReadSector(int(lba))
	}
	blocksPerSector := b.medium.SectorSize() / b.blockSize
	sectorIdx := int(lba) / blocksPerSector
	within := int(lba) % blocksPerSector
	sector, err := b.medium.ReadSector(sectorIdx)
	if err != nil {
		return nil, err
	}
	start := within * b.blockSize
	out := make([]byte, b.blockSize)
	copy(out, sector[start:start+b.blockSize])
	return out, nil
}

// WriteBlock writes one logical block, read-modify-writing the containing
// sector when block size is smaller than sector size.
func (b *BlockIO) WriteBlock(lba uint32, data []byte) error {
	if len(data) != b.blockSize {
		return isoerr.PreconditionFailed(fmt.Sprintf("write block: expected %d bytes, got %d", b.blockSize, len(data)))
	}
	if b.blockSize == b.medium.SectorSize() {
		return b.medium.WriteSector(int(lba), data)
	}
	blocksPerSector := b.medium.SectorSize() / b.blockSize
	sectorIdx := int(lba) / blocksPerSector
	within := int(lba) % blocksPerSector
	sector, err := b.medium.ReadSector(sectorIdx)
	if err != nil {
		return err
	}
	copy(sector[within*b.blockSize:], data)
	return b.medium.WriteSector(sectorIdx, sector)
}

// ReadBytesAt reads length bytes starting at byte offset (lba*blockSize)+offset,
// spanning as many blocks as necessary. Used by the SUSP continuation engine
// and file extent streaming.
func (b *BlockIO) ReadBytesAt(lba uint32, offset int, length int) ([]byte, error) {
	out := make([]byte, 0, length)
	curLBA := lba
	curOff := offset
	for len(out) < length {
		block, err := b.ReadBlock(curLBA)
		if err != nil {
			return nil, err
		}
		if curOff >= len(block) {
			curLBA += uint32(curOff / b.blockSize)
			curOff %= b.blockSize
			continue
		}
		take := length - len(out)
		if avail := len(block) - curOff; avail < take {
			take = avail
		}
		out = append(out, block[curOff:curOff+take]...)
		curOff += take
		if curOff >= b.blockSize {
			curLBA++
			curOff = 0
		}
	}
	return out, nil
}
