package filesystem

import (
	"fmt"
	"io"

	"github.com/rstms/isokit/pkg/blockmedium"
	"github.com/rstms/isokit/pkg/directory"
)

// splitRecords walks a directory extent's raw bytes and returns every
// directory record found, skipping the zero-length padding at the tail of
// each logical block.
func splitRecords(data []byte) ([]*directory.Record, error) {
	var out []*directory.Record
	offset := 0
	for offset < len(data) {
		rec, n, err := directory.Parse(data[offset:])
		if err != nil {
			return nil, err
		}
		if n == 0 {
			// Zero-length byte: skip to the next block boundary.
			next := (offset/defaultBlockSkip + 1) * defaultBlockSkip
			if next <= offset {
				break
			}
			offset = next
			continue
		}
		out = append(out, rec)
		offset += n
	}
	return out, nil
}

// defaultBlockSkip is the block granularity used to skip padding
// between a directory extent's per-block record runs when no explicit block
// size is threaded through (directory extents are always read whole).
const defaultBlockSkip = 2048

// ReadDirectory enumerates one directory's extent, resolving each record's
// Rock Ridge metadata (including any CE continuations) and building FSEntry
// values for every record, including the "." and ".." self/parent entries;
// skipping those is left to the caller.
func ReadDirectory(bio *blockmedium.BlockIO, resolved *Resolved, rec *directory.Record) ([]FSEntry, error) {
	if !rec.IsDirectory() {
		return nil, fmt.Errorf("filesystem: %q is not a directory", resolved.Enc.Decode(rec.IdentifierBytes))
	}
	data, err := bio.ReadBytesAt(rec.ExtentLBA, 0, int(rec.DataLength))
	if err != nil {
		return nil, fmt.Errorf("filesystem: read directory extent: %w", err)
	}
	records, err := splitRecords(data)
	if err != nil {
		return nil, fmt.Errorf("filesystem: parse directory extent: %w", err)
	}

	entries := make([]FSEntry, 0, len(records))
	for _, r := range records {
		compacted, err := resolveArea(bio, r)
		if err != nil {
			return nil, err
		}
		entries = append(entries, BuildEntry(r, resolved.Enc, compacted, resolved.Policy))
	}
	return entries, nil
}

// FileReader is a restartable, block-aligned, lazy byte stream over a file's
// extent, truncated to its declared data length.
type FileReader struct {
	bio        *blockmedium.BlockIO
	lba        uint32
	dataLength int64
	pos        int64
}

// NewFileReader builds a reader over [lba, lba+ceil(dataLength/blockSize))
// truncated to dataLength bytes.
func NewFileReader(bio *blockmedium.BlockIO, lba uint32, dataLength uint32) *FileReader {
	return &FileReader{bio: bio, lba: lba, dataLength: int64(dataLength)}
}

// Read implements io.Reader, never returning bytes past dataLength.
func (r *FileReader) Read(p []byte) (int, error) {
	if r.pos >= r.dataLength {
		return 0, io.EOF
	}
	remaining := r.dataLength - r.pos
	want := int64(len(p))
	if want > remaining {
		want = remaining
	}
	blockSize := int64(r.bio.BlockSize())
	startLBA := r.lba + uint32(r.pos/blockSize)
	startOff := int(r.pos % blockSize)

	data, err := r.bio.ReadBytesAt(startLBA, startOff, int(want))
	if err != nil {
		return 0, err
	}
	n := copy(p, data)
	r.pos += int64(n)
	return n, nil
}

// Seek supports restarting the stream at an arbitrary offset, per the
// restartable-stream requirement.
func (r *FileReader) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = r.pos + offset
	case io.SeekEnd:
		newPos = r.dataLength + offset
	default:
		return 0, fmt.Errorf("filesystem: invalid whence %d", whence)
	}
	if newPos < 0 {
		return 0, fmt.Errorf("filesystem: negative seek position")
	}
	r.pos = newPos
	return r.pos, nil
}
