package iso9660

import (
	"fmt"
	"io"

	"github.com/rstms/isokit/pkg/consts"
	"github.com/rstms/isokit/pkg/descriptor"
	"github.com/rstms/isokit/pkg/encoding"
	"github.com/rstms/isokit/pkg/isoerr"
	"github.com/rstms/isokit/pkg/pathtable"
)

// jolietEscape is the single Joliet level this writer emits for both the
// Supplementary and Enhanced descriptors, per the Open Question (a)
// resolution recorded in DESIGN.md: an Enhanced descriptor this library
// writes always carries a recognized Joliet escape, so a reader built
// against this same library decodes its names as UCS-2 rather than ASCII.
const jolietEscape = consts.JolietLevel3Escape

// pathTables holds one descriptor's allocated path table locations and its
// serialized L-endian table, from which M-endian and both optional copies
// are trivially re-derived.
type pathTables struct {
	table   pathtable.Table
	lLoc    uint32
	mLoc    uint32
	loLoc   uint32
	moLoc   uint32
	size    uint32
}

// WriteAndClose plans the image's layout, resolves every LBA, and emits the
// system area, volume descriptor set, directory extents, path tables, and
// file data to the medium, streaming file content through streamFn exactly
// once per file. The Writer is unusable after this returns, whether or not
// it returned an error.
func (w *Writer) WriteAndClose(streamFn FileStreamFunc) error {
	if w.closed {
		return isoerr.ErrWriterClosed
	}
	defer func() { w.closed = true }()

	blockSize := w.opts.BlockSize

	primaryView, err := w.buildView(w.root, encoding.ASCII, true, w.opts.EnableSUSP)
	if err != nil {
		return fmt.Errorf("iso9660: build primary view: %w", err)
	}
	var jolietView, enhancedView *viewNode
	if w.opts.IncludeSupplementary {
		jolietView, err = w.buildView(w.root, encoding.UCS2BigEndian, false, false)
		if err != nil {
			return fmt.Errorf("iso9660: build supplementary view: %w", err)
		}
	}
	if w.opts.IncludeEnhanced {
		enhancedView, err = w.buildView(w.root, encoding.UCS2BigEndian, false, false)
		if err != nil {
			return fmt.Errorf("iso9660: build enhanced view: %w", err)
		}
	}

	descriptorSectors := uint32(1) // Primary
	if jolietView != nil {
		descriptorSectors++
	}
	if enhancedView != nil {
		descriptorSectors++
	}
	descriptorSectors++ // Terminator

	cursor := uint32(consts.SystemAreaSectors) + descriptorSectors

	views := []struct {
		v   *viewNode
		enc encoding.NameEncoding
	}{{primaryView, encoding.ASCII}}
	if jolietView != nil {
		views = append(views, struct {
			v   *viewNode
			enc encoding.NameEncoding
		}{jolietView, encoding.UCS2BigEndian})
	}
	if enhancedView != nil {
		views = append(views, struct {
			v   *viewNode
			enc encoding.NameEncoding
		}{enhancedView, encoding.UCS2BigEndian})
	}

	tables := make([]*pathTables, len(views))
	for i, vw := range views {
		if err := allocateDirLBAs(vw.v, blockSize, &cursor); err != nil {
			return fmt.Errorf("iso9660: allocate directory extents: %w", err)
		}
		patchChildLBAs(vw.v)

		table := buildPathTable(vw.v, vw.enc)
		size := uint32(table.ByteLen())
		blocks := blocksFor(size, blockSize)

		pt := &pathTables{table: table, size: size}
		pt.lLoc = cursor
		cursor += blocks
		pt.mLoc = cursor
		cursor += blocks
		if w.opts.CreateOptionalPathTables {
			pt.loLoc = cursor
			cursor += blocks
			pt.moLoc = cursor
			cursor += blocks
		}
		tables[i] = pt
	}

	allocateFileLBAs(w.root, blockSize, &cursor)
	for _, vw := range views {
		patchFileLBAs(vw.v)
	}

	volumeSpaceSize := cursor

	primaryDesc := w.buildPrimaryDescriptor(primaryView, tables[0], volumeSpaceSize)
	var jolietDesc, enhancedDesc *descriptor.Supplementary
	idx := 1
	if jolietView != nil {
		jolietDesc = w.buildSupplementaryDescriptor(jolietView, tables[idx], volumeSpaceSize, consts.VolumeDescVersion)
		idx++
	}
	if enhancedView != nil {
		enhancedDesc = w.buildSupplementaryDescriptor(enhancedView, tables[idx], volumeSpaceSize, consts.EnhancedVolumeDescVersion)
	}

	if err := w.writeSystemArea(); err != nil {
		return err
	}

	lba := uint32(consts.SystemAreaSectors)
	if err := w.writeDescriptorSector(lba, mustSerialize(primaryDesc.Serialize())); err != nil {
		return err
	}
	lba++
	if jolietDesc != nil {
		if err := w.writeDescriptorSector(lba, mustSerialize(jolietDesc.Serialize())); err != nil {
			return err
		}
		lba++
	}
	if enhancedDesc != nil {
		if err := w.writeDescriptorSector(lba, mustSerialize(enhancedDesc.Serialize())); err != nil {
			return err
		}
		lba++
	}
	term := &descriptor.Terminator{}
	if err := w.writeDescriptorSector(lba, term.Serialize()); err != nil {
		return err
	}

	for i, vw := range views {
		if err := w.writeDirectoryTree(vw.v, nil); err != nil {
			return err
		}
		if err := w.writePathTables(tables[i], blockSize); err != nil {
			return err
		}
	}

	if err := w.writeFileData(streamFn); err != nil {
		return err
	}

	w.logger.Debug("wrote image", "volumeSpaceSize", volumeSpaceSize, "blockSize", blockSize)
	return w.medium.Sync()
}

func blocksFor(byteLen uint32, blockSize int) uint32 {
	if byteLen == 0 {
		return 0
	}
	return (byteLen + uint32(blockSize) - 1) / uint32(blockSize)
}

func mustSerialize(b []byte, err error) []byte {
	if err != nil {
		panic(err)
	}
	return b
}

// buildPrimaryDescriptor assembles the Primary Volume Descriptor now that
// the primary view's directory extents and path tables are fully allocated.
func (w *Writer) buildPrimaryDescriptor(v *viewNode, pt *pathTables, volumeSpaceSize uint32) *descriptor.Primary {
	root := selfRecord(v)
	return &descriptor.Primary{
		Header:               descriptor.Header{VDType: descriptor.TypePrimary, StdIdentifier: consts.StdIdentifier, VDVersion: consts.VolumeDescVersion},
		SystemIdentifier:     w.opts.SystemIdentifier,
		VolumeIdentifier:     w.opts.VolumeIdentifier,
		VolumeSpaceSize:      volumeSpaceSize,
		VolumeSetSize:        1,
		VolumeSequenceNumber: 1,
		LogicalBlockSize:     uint16(w.opts.BlockSize),
		PathTableSize:        pt.size,
		LPathTableLocation:   pt.lLoc,
		LOptPathTableLoc:     pt.loLoc,
		MPathTableLocation:   pt.mLoc,
		MOptPathTableLoc:     pt.moLoc,
		RootDirectoryRecord:  root,

		VolumeCreationDate:     encoding.LongDateFromTime(w.stamp),
		VolumeModificationDate: encoding.LongDateFromTime(w.stamp),
		FileStructureVersion:   1,
	}
}

// buildSupplementaryDescriptor assembles a Supplementary or Enhanced Volume
// Descriptor; version distinguishes the two (see consts.VolumeDescVersion /
// consts.EnhancedVolumeDescVersion). Both carry the same Joliet escape so a
// NameEncoding of UCS2BigEndian round-trips through this library's own
// Reader.
func (w *Writer) buildSupplementaryDescriptor(v *viewNode, pt *pathTables, volumeSpaceSize uint32, version byte) *descriptor.Supplementary {
	root := selfRecord(v)
	escape := make([]byte, 32)
	copy(escape, jolietEscape)
	return &descriptor.Supplementary{
		Header:               descriptor.Header{VDType: descriptor.TypeSupplementary, StdIdentifier: consts.StdIdentifier, VDVersion: version},
		SystemIdentifier:     w.opts.SystemIdentifier,
		VolumeIdentifier:     w.opts.VolumeIdentifier,
		VolumeSpaceSize:      volumeSpaceSize,
		EscapeSequences:      escape,
		VolumeSetSize:        1,
		VolumeSequenceNumber: 1,
		LogicalBlockSize:     uint16(w.opts.BlockSize),
		PathTableSize:        pt.size,
		LPathTableLocation:   pt.lLoc,
		LOptPathTableLoc:     pt.loLoc,
		MPathTableLocation:   pt.mLoc,
		MOptPathTableLoc:     pt.moLoc,
		RootDirectoryRecord:  root,

		VolumeCreationDate:     encoding.LongDateFromTime(w.stamp),
		VolumeModificationDate: encoding.LongDateFromTime(w.stamp),
		FileStructureVersion:   1,
	}
}

func (w *Writer) writeSystemArea() error {
	blank := make([]byte, w.opts.BlockSize)
	for i := 0; i < consts.SystemAreaSectors; i++ {
		if err := w.bio.WriteBlock(uint32(i), blank); err != nil {
			return fmt.Errorf("iso9660: write system area: %w", err)
		}
	}
	return nil
}

func (w *Writer) writeDescriptorSector(lba uint32, sector []byte) error {
	if len(sector) != w.opts.BlockSize {
		padded := make([]byte, w.opts.BlockSize)
		copy(padded, sector)
		sector = padded
	}
	if err := w.bio.WriteBlock(lba, sector); err != nil {
		return fmt.Errorf("iso9660: write descriptor sector %d: %w", lba, err)
	}
	return nil
}

// writeDirectoryTree recursively emits one descriptor's directory extents,
// each packed per spec.md §6's sector-boundary rule (see packDirectoryBytes).
func (w *Writer) writeDirectoryTree(v, parent *viewNode) error {
	dot := selfRecord(v)
	dotdot := parentRecord(v, parent)
	packed, err := packDirectoryBytes(dot, dotdot, v.childRecords, w.opts.BlockSize)
	if err != nil {
		return fmt.Errorf("iso9660: pack directory extent: %w", err)
	}
	if uint32(len(packed)) != v.dataLength {
		return isoerr.PreconditionFailed("directory extent size changed between allocation and emission")
	}
	blocks := len(packed) / w.opts.BlockSize
	for i := 0; i < blocks; i++ {
		block := packed[i*w.opts.BlockSize : (i+1)*w.opts.BlockSize]
		if err := w.bio.WriteBlock(v.extentLBA+uint32(i), block); err != nil {
			return fmt.Errorf("iso9660: write directory extent: %w", err)
		}
	}
	for _, c := range v.children {
		if c.kind == nodeDirectory {
			if err := w.writeDirectoryTree(c, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Writer) writePathTables(pt *pathTables, blockSize int) error {
	if err := w.writeTableAt(pt.lLoc, pt.table.Serialize(pathtable.LittleEndian), blockSize); err != nil {
		return err
	}
	if err := w.writeTableAt(pt.mLoc, pt.table.Serialize(pathtable.BigEndian), blockSize); err != nil {
		return err
	}
	if w.opts.CreateOptionalPathTables {
		if err := w.writeTableAt(pt.loLoc, pt.table.Serialize(pathtable.LittleEndian), blockSize); err != nil {
			return err
		}
		if err := w.writeTableAt(pt.moLoc, pt.table.Serialize(pathtable.BigEndian), blockSize); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeTableAt(lba uint32, data []byte, blockSize int) error {
	blocks := blocksFor(uint32(len(data)), blockSize)
	padded := make([]byte, int(blocks)*blockSize)
	copy(padded, data)
	for i := 0; i < int(blocks); i++ {
		if err := w.bio.WriteBlock(lba+uint32(i), padded[i*blockSize:(i+1)*blockSize]); err != nil {
			return fmt.Errorf("iso9660: write path table: %w", err)
		}
	}
	return nil
}

// writeFileData walks the ingestion tree once, streaming each file's bytes
// from streamFn into its already-allocated extent.
func (w *Writer) writeFileData(streamFn FileStreamFunc) error {
	var files []struct {
		path string
		n    *node
	}
	var walk func(prefix string, n *node)
	walk = func(prefix string, n *node) {
		for _, c := range n.sortedChildren() {
			path := c.name
			if prefix != "" {
				path = prefix + "/" + c.name
			}
			if c.kind == nodeFile {
				files = append(files, struct {
					path string
					n    *node
				}{path, c})
			} else if c.kind == nodeDirectory {
				walk(path, c)
			}
		}
	}
	walk("", w.root)

	blockSize := w.opts.BlockSize
	for i, f := range files {
		r, err := streamFn(f.path)
		if err != nil {
			return fmt.Errorf("iso9660: stream %s: %w", f.path, err)
		}
		blocks := blocksFor(f.n.size, blockSize)
		buf := make([]byte, int(blocks)*blockSize)
		if _, err := io.ReadFull(r, buf[:f.n.size]); err != nil {
			return isoerr.PreconditionFailed(fmt.Sprintf("file stream for %s: %v", f.path, err))
		}
		for b := 0; b < int(blocks); b++ {
			if err := w.bio.WriteBlock(f.n.assignedLBA+uint32(b), buf[b*blockSize:(b+1)*blockSize]); err != nil {
				return fmt.Errorf("iso9660: write file data for %s: %w", f.path, err)
			}
		}
		if w.opts.Progress != nil {
			w.opts.Progress(f.path, int64(f.n.size), int64(f.n.size), i+1, len(files))
		}
	}
	return nil
}
