package iso9660

import (
	"sort"
	"time"

	"github.com/rstms/isokit/pkg/directory"
	"github.com/rstms/isokit/pkg/encoding"
	"github.com/rstms/isokit/pkg/isoerr"
	"github.com/rstms/isokit/pkg/pathtable"
	"github.com/rstms/isokit/pkg/rockridge"
	"github.com/rstms/isokit/pkg/susp"
)

// viewNode is one directory or leaf as it appears in a single descriptor's
// tree: its own derived identifier, its children in path-table/directory
// order, and (once allocated) its extent location.
type viewNode struct {
	orig       *node
	kind       nodeKind
	identifier string // derived name, without ";1" version suffix for directories
	altName    string // original ingested name, set only when it differs from identifier

	children     []*viewNode
	childRecords []*directory.Record // aligned with children; directory entries get their ExtentLBA/DataLength patched in after allocation

	extentLBA  uint32
	dataLength uint32
	fileLBA    uint32 // nodeFile only, shared across every view
}

// buildView recursively derives a per-descriptor tree from the ingestion
// tree, deriving identifiers and the (LBA-independent) directory record for
// each child as it goes.
func (w *Writer) buildView(n *node, enc encoding.NameEncoding, isPrimary, enableSUSP bool) (*viewNode, error) {
	v := &viewNode{orig: n, kind: nodeDirectory}
	used := map[string]bool{}
	for _, child := range n.sortedChildren() {
		if child.kind == nodeSymlink && !enableSUSP {
			continue
		}
		var identifier string
		if isPrimary {
			if child.kind == nodeDirectory {
				identifier = deriveLegacyDirName(child.name, used)
			} else {
				identifier = deriveLegacyFileName(child.name, used)
			}
		} else {
			identifier = deriveWideName(child.name, enc, used)
		}
		altName := ""
		if identifier != child.name {
			altName = child.name
		}
		cv := &viewNode{orig: child, kind: child.kind, identifier: identifier, altName: altName}

		var rec *directory.Record
		var err error
		switch child.kind {
		case nodeDirectory:
			cv, err = w.buildViewInto(cv, enc, isPrimary, enableSUSP)
			if err != nil {
				return nil, err
			}
			rec, err = w.buildChildRecord(cv, enc, enableSUSP, 0, 0)
		case nodeFile:
			rec, err = w.buildChildRecord(cv, enc, enableSUSP, child.fileLBAOrZero(), child.size)
		default: // nodeSymlink
			rec, err = w.buildChildRecord(cv, enc, enableSUSP, 0, 0)
		}
		if err != nil {
			return nil, err
		}
		v.children = append(v.children, cv)
		v.childRecords = append(v.childRecords, rec)
	}
	return v, nil
}

// buildViewInto recurses into a directory child in place, reusing cv so the
// caller's slice append sees the fully populated node.
func (w *Writer) buildViewInto(cv *viewNode, enc encoding.NameEncoding, isPrimary, enableSUSP bool) (*viewNode, error) {
	populated, err := w.buildView(cv.orig, enc, isPrimary, enableSUSP)
	if err != nil {
		return nil, err
	}
	cv.children = populated.children
	cv.childRecords = populated.childRecords
	return cv, nil
}

// buildChildRecord renders the (LBA-independent, for directories) directory
// record for one child. Directory children get a zero placeholder extent
// that allocateDirLBAs/patchChildLBAs fill in afterward. File children carry
// their size up front with the fileLBA passed in; views are built before
// allocateFileLBAs runs, and patchFileLBAs writes the final file LBAs later.
func (w *Writer) buildChildRecord(cv *viewNode, enc encoding.NameEncoding, enableSUSP bool, fileLBA, size uint32) (*directory.Record, error) {
	rec := &directory.Record{
		RecordedDate: encoding.RecordedDateFromTime(w.timestampFor(cv.orig)),
	}
	rec.SetIdentifier(enc.EncodeTruncate(cv.identifier, 1<<16))
	switch cv.kind {
	case nodeDirectory:
		rec.SetDirectory(true)
	case nodeFile:
		rec.ExtentLBA = fileLBA
		rec.DataLength = size
	case nodeSymlink:
		// A symlink has no data region of its own; its presence here at all
		// implies SUSP is enabled for this view, where its SL entry is what
		// matters to a Rock Ridge-aware reader.
	}
	if enableSUSP {
		trailer, err := w.buildSUSPTrailer(cv, len(rec.IdentifierBytes))
		if err != nil {
			return nil, err
		}
		rec.SetSystemUse(trailer)
	}
	return rec, nil
}

// buildSUSPTrailer synthesizes the PX/NM/SL/TF trailer for one record, per
// spec.md's fixed emission order, failing if it cannot fit the record's
// 255-byte budget (this writer never allocates CE continuation areas).
func (w *Writer) buildSUSPTrailer(cv *viewNode, idLen int) ([]byte, error) {
	meta := cv.orig.metadataOr(w)
	entries := []susp.Entry{
		&susp.PXEntry{
			Mode:  rockridge.EncodeFileMode(meta.Mode, cv.kind == nodeDirectory),
			Links: 1,
			UID:   meta.UID,
			GID:   meta.GID,
		},
	}
	if cv.altName != "" {
		entries = append(entries, &susp.NMEntry{Name: []byte(cv.altName)})
	}
	if cv.kind == nodeSymlink {
		entries = append(entries, &susp.SLEntry{Components: rockridge.PathToComponents(cv.orig.target)})
	}
	created := w.timestampFor(cv.orig)
	entries = append(entries, &susp.TFEntry{
		Flags: susp.TFCreation | susp.TFModification,
		Recorded: map[byte]encoding.RecordedDate{
			susp.TFCreation:     encoding.RecordedDateFromTime(created),
			susp.TFModification: encoding.RecordedDateFromTime(created),
		},
	})

	pad := 0
	if idLen%2 == 0 {
		pad = 1
	}
	firstBudget := 255 - (33 + idLen + pad)
	if firstBudget < 0 {
		firstBudget = 0
	}
	regions, err := susp.Emit(entries, firstBudget, noContinuationAllocator)
	if err != nil {
		return nil, err
	}
	if len(regions) != 1 {
		return nil, isoerr.PreconditionFailed("SUSP trailer exceeds the 255-byte directory record budget; continuation areas are not supported")
	}
	var out []byte
	for _, e := range regions[0].Entries {
		out = append(out, e.Serialize()...)
	}
	return out, nil
}

func noContinuationAllocator(int) (uint32, uint32, int, error) {
	return 0, 0, 0, isoerr.PreconditionFailed("SUSP trailer exceeds the 255-byte directory record budget; continuation areas are not supported")
}

func (w *Writer) timestampFor(n *node) time.Time {
	if n.hasMeta && !n.meta.Modified.IsZero() {
		return n.meta.Modified
	}
	return w.stamp
}

// allocateFileLBAs walks the ingestion tree once, assigning every file a
// shared LBA region that every descriptor's view points at.
func allocateFileLBAs(n *node, blockSize int, next *uint32) {
	for _, c := range n.sortedChildren() {
		switch c.kind {
		case nodeFile:
			c.assignedLBA = *next
			blocks := (int(c.size) + blockSize - 1) / blockSize
			*next += uint32(blocks)
		case nodeDirectory:
			allocateFileLBAs(c, blockSize, next)
		}
	}
}

// allocateDirLBAs assigns this directory's own extent (pre-order, since its
// size depends only on its already-built child records, not their LBAs),
// then recurses into directory children.
func allocateDirLBAs(v *viewNode, blockSize int, next *uint32) error {
	packed, err := packDirectoryBytes(placeholderDotRecord(), placeholderDotDotRecord(), v.childRecords, blockSize)
	if err != nil {
		return err
	}
	v.extentLBA = *next
	v.dataLength = uint32(len(packed))
	*next += uint32(len(packed)) / uint32(blockSize)
	for _, c := range v.children {
		if c.kind == nodeDirectory {
			if err := allocateDirLBAs(c, blockSize, next); err != nil {
				return err
			}
		}
	}
	return nil
}

func placeholderDotRecord() *directory.Record {
	r := &directory.Record{IdentifierBytes: []byte{0x00}}
	r.SetDirectory(true)
	return r
}

func placeholderDotDotRecord() *directory.Record {
	r := &directory.Record{IdentifierBytes: []byte{0x01}}
	r.SetDirectory(true)
	return r
}

// packDirectoryBytes lays out dot, dotdot, and children back-to-back within
// a directory extent, per spec.md §6: a record never spans a sector (here,
// logical block) boundary; when the next record wouldn't fit the remainder
// of the current block, that remainder is zero-padded and the record starts
// the next block. The result is always an exact multiple of blockSize. This
// same function sizes an extent (given zero-valued placeholder dot/dotdot,
// whose serialized length does not depend on their LBA/DataLength field
// values) and, later, renders its final bytes once every LBA is known.
func packDirectoryBytes(dot, dotdot *directory.Record, children []*directory.Record, blockSize int) ([]byte, error) {
	all := make([]*directory.Record, 0, 2+len(children))
	all = append(all, dot, dotdot)
	all = append(all, children...)

	var out []byte
	pos := 0
	for _, r := range all {
		b, err := r.Serialize()
		if err != nil {
			return nil, err
		}
		if len(b) > blockSize {
			return nil, isoerr.PreconditionFailed("directory record exceeds logical block size")
		}
		if pos+len(b) > blockSize {
			out = append(out, make([]byte, blockSize-pos)...)
			pos = 0
		}
		out = append(out, b...)
		pos += len(b)
	}
	if pos > 0 || len(out) == 0 {
		out = append(out, make([]byte, blockSize-pos)...)
	}
	return out, nil
}

// patchChildLBAs fills each directory child record's ExtentLBA/DataLength
// now that allocateDirLBAs has assigned every directory its extent.
func patchChildLBAs(v *viewNode) {
	for i, c := range v.children {
		if c.kind != nodeDirectory {
			continue
		}
		v.childRecords[i].ExtentLBA = c.extentLBA
		v.childRecords[i].DataLength = c.dataLength
		patchChildLBAs(c)
	}
}

// patchFileLBAs fills each file child record's ExtentLBA now that
// allocateFileLBAs has assigned every file its shared data LBA.
func patchFileLBAs(v *viewNode) {
	for i, c := range v.children {
		switch c.kind {
		case nodeFile:
			v.childRecords[i].ExtentLBA = c.orig.assignedLBA
		case nodeDirectory:
			patchFileLBAs(c)
		}
	}
}

// selfRecord builds a view's "." record from its own (already allocated)
// extent. It never carries a SUSP trailer: 33 header bytes + 1 identifier
// byte is already 34, the maximum a root directory record may occupy in a
// volume descriptor's fixed-size field.
func selfRecord(v *viewNode) *directory.Record {
	r := &directory.Record{ExtentLBA: v.extentLBA, DataLength: v.dataLength, IdentifierBytes: []byte{0x00}}
	r.SetDirectory(true)
	return r
}

// parentRecord builds a view's ".." record. The root directory is its own
// parent.
func parentRecord(v, parent *viewNode) *directory.Record {
	target := parent
	if target == nil {
		target = v
	}
	r := &directory.Record{ExtentLBA: target.extentLBA, DataLength: target.dataLength, IdentifierBytes: []byte{0x01}}
	r.SetDirectory(true)
	return r
}

// buildPathTable walks the view tree breadth-first, assigning 1-based
// directory numbers in traversal order (root is always 1) and recording
// each directory's parent number, per ECMA-119 9.4.
func buildPathTable(root *viewNode, enc encoding.NameEncoding) pathtable.Table {
	table := pathtable.Table{{
		ExtentLBA:       root.extentLBA,
		ParentNumber:    1,
		IdentifierBytes: []byte{0x00},
	}}
	num := map[*viewNode]uint16{root: 1}

	level := []*viewNode{root}
	for len(level) > 0 {
		var next []*viewNode
		for _, d := range level {
			dirs := directoryChildren(d)
			for _, c := range dirs {
				table = append(table, &pathtable.Record{
					ExtentLBA:       c.extentLBA,
					ParentNumber:    num[d],
					IdentifierBytes: enc.EncodeTruncate(c.identifier, 1<<16),
				})
				num[c] = uint16(len(table))
				next = append(next, c)
			}
		}
		level = next
	}
	return table
}

func directoryChildren(v *viewNode) []*viewNode {
	var out []*viewNode
	for _, c := range v.children {
		if c.kind == nodeDirectory {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].identifier < out[j].identifier })
	return out
}
