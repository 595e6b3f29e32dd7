// Package iso9660 is the top-level read/write API: Open parses a disc image
// into a Reader that resolves paths and streams file contents; NewWriter
// plans and emits a fresh image from an in-memory write tree.
package iso9660

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/rstms/isokit/pkg/blockmedium"
	"github.com/rstms/isokit/pkg/consts"
	"github.com/rstms/isokit/pkg/descriptor"
	"github.com/rstms/isokit/pkg/directory"
	"github.com/rstms/isokit/pkg/eltorito"
	"github.com/rstms/isokit/pkg/filesystem"
	"github.com/rstms/isokit/pkg/isoerr"
	"github.com/rstms/isokit/pkg/logging"
	"github.com/rstms/isokit/pkg/pathtable"
	"github.com/rstms/isokit/pkg/systemarea"
)

const maxDescriptorSectors = 64

// Reader is an opened ISO 9660 filesystem: a parsed volume descriptor set
// plus the resolved descriptor policy used to traverse it.
type Reader struct {
	medium blockmedium.Medium
	bio    *blockmedium.BlockIO
	opts   Options
	logger *logging.Logger

	systemArea systemarea.SystemArea
	set        *descriptor.Set
	resolved   *filesystem.Resolved
	bootCatalog *eltorito.Catalog
}

// Open parses medium's system area and volume descriptor set and resolves
// the descriptor policy selected by opts, defaulting to PolicyAny.
func Open(medium blockmedium.Medium, opts ...Option) (*Reader, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	bio, err := blockmedium.NewBlockIO(medium, medium.SectorSize())
	if err != nil {
		return nil, fmt.Errorf("iso9660: %w", err)
	}

	r := &Reader{
		medium: medium,
		bio:    bio,
		opts:   o,
		logger: logging.NewLogger(o.Logger),
	}

	if o.ParseOnOpen {
		if err := r.Parse(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Parse (re-)reads the system area and volume descriptor set and resolves
// the descriptor policy. Open calls this automatically unless
// WithParseOnOpen(false) was given.
func (r *Reader) Parse() error {
	saBytes, err := r.bio.ReadBytesAt(0, 0, systemarea.Size)
	if err != nil {
		return fmt.Errorf("iso9660: read system area: %w", err)
	}
	sa, err := systemarea.Read(saBytes)
	if err != nil {
		return fmt.Errorf("iso9660: %w", err)
	}
	r.systemArea = sa

	var sectors [][]byte
	for i := 0; i < maxDescriptorSectors; i++ {
		sec, err := r.bio.ReadBlock(consts.SystemAreaSectors + uint32(i))
		if err != nil {
			return fmt.Errorf("iso9660: read descriptor sector %d: %w", i, err)
		}
		sectors = append(sectors, sec)
		if len(sec) > 0 && sec[0] == byte(descriptor.TypeSetTerminator) {
			break
		}
	}
	set, err := descriptor.ParseSet(sectors)
	if err != nil {
		return fmt.Errorf("iso9660: %w", err)
	}
	r.set = set
	r.logger.Debug("parsed volume descriptor set", "supplementary", len(set.Supplementary), "bootRecords", len(set.BootRecords))

	if o := r.opts; o.ElToritoEnabled {
		for _, br := range set.BootRecords {
			if !br.IsElTorito() || len(br.BootSystemUse) < 4 {
				continue
			}
			catalogLBA := binary.LittleEndian.Uint32(br.BootSystemUse[0:4])
			catSector, err := r.bio.ReadBlock(catalogLBA)
			if err != nil {
				return fmt.Errorf("iso9660: read el torito catalog: %w", err)
			}
			cat, err := eltorito.Parse(catSector)
			if err != nil {
				return fmt.Errorf("iso9660: parse el torito catalog: %w", err)
			}
			r.bootCatalog = cat
			break
		}
	}

	resolved, err := filesystem.Resolve(r.bio, set, r.opts.descriptorPolicy())
	if err != nil {
		return fmt.Errorf("iso9660: %w", err)
	}
	r.resolved = resolved
	return nil
}

// VolumeID returns the resolved descriptor's volume identifier.
func (r *Reader) VolumeID() string { return r.primaryOrResolvedString(func(p *descriptor.Primary) string { return p.VolumeIdentifier }, func(s *descriptor.Supplementary) string { return s.VolumeIdentifier }) }

// SystemID returns the resolved descriptor's system identifier.
func (r *Reader) SystemID() string {
	return r.primaryOrResolvedString(func(p *descriptor.Primary) string { return p.SystemIdentifier }, func(s *descriptor.Supplementary) string { return s.SystemIdentifier })
}

// VolumeSpaceSize returns the Primary descriptor's volume space size, in blocks.
func (r *Reader) VolumeSpaceSize() uint32 { return r.set.Primary.VolumeSpaceSize }

// CreationTime returns the resolved descriptor's volume creation timestamp.
func (r *Reader) CreationTime() time.Time {
	if svd := r.supplementaryIfResolved(); svd != nil {
		return svd.VolumeCreationDate.Time()
	}
	return r.set.Primary.VolumeCreationDate.Time()
}

// ModificationTime returns the resolved descriptor's volume modification timestamp.
func (r *Reader) ModificationTime() time.Time {
	if svd := r.supplementaryIfResolved(); svd != nil {
		return svd.VolumeModificationDate.Time()
	}
	return r.set.Primary.VolumeModificationDate.Time()
}

// HasJoliet reports whether any Supplementary descriptor carries a
// recognized Joliet escape sequence.
func (r *Reader) HasJoliet() bool { return r.set.Joliet() != nil }

// HasEnhanced reports whether an Enhanced (ISO 9660:1999) descriptor is present.
func (r *Reader) HasEnhanced() bool { return r.set.Enhanced() != nil }

// HasRockRidge reports whether the Primary descriptor's root carries SUSP entries.
func (r *Reader) HasRockRidge() (bool, error) {
	return filesystem.HasSUSP(r.bio, r.set.Primary.RootDirectoryRecord)
}

// HasElTorito reports whether a recognized El Torito boot catalog was found.
func (r *Reader) HasElTorito() bool { return r.bootCatalog != nil }

// BootCatalog returns the decoded El Torito boot catalog, or nil if none was
// present or WithElToritoEnabled(false) was given.
func (r *Reader) BootCatalog() *eltorito.Catalog { return r.bootCatalog }

// Close releases the underlying medium.
func (r *Reader) Close() error { return r.medium.Close() }

func (r *Reader) supplementaryIfResolved() *descriptor.Supplementary {
	for _, svd := range r.set.Supplementary {
		if svd.RootDirectoryRecord == r.resolved.Root {
			return svd
		}
	}
	return nil
}

func (r *Reader) primaryOrResolvedString(fromPrimary func(*descriptor.Primary) string, fromSupplementary func(*descriptor.Supplementary) string) string {
	if svd := r.supplementaryIfResolved(); svd != nil {
		return fromSupplementary(svd)
	}
	return fromPrimary(r.set.Primary)
}

// pathTableLocation returns the L-path-table LBA and byte size of the
// resolved descriptor, found by matching root directory record identity.
func (r *Reader) pathTableLocation() (uint32, uint32) {
	if r.set.Primary != nil && r.resolved.Root == r.set.Primary.RootDirectoryRecord {
		return r.set.Primary.LPathTableLocation, r.set.Primary.PathTableSize
	}
	for _, svd := range r.set.Supplementary {
		if svd.RootDirectoryRecord == r.resolved.Root {
			return svd.LPathTableLocation, svd.PathTableSize
		}
	}
	return 0, 0
}

// directoryRecordFromExtent reads the first record of the directory extent
// starting at lba -- the "." self-reference -- and uses its DataLength,
// since a path table record carries no length of its own.
func (r *Reader) directoryRecordFromExtent(lba uint32) (*directory.Record, error) {
	block, err := r.bio.ReadBlock(lba)
	if err != nil {
		return nil, fmt.Errorf("iso9660: read directory extent %d: %w", lba, err)
	}
	dot, _, err := directory.Parse(block)
	if err != nil {
		return nil, fmt.Errorf("iso9660: parse self-reference record at %d: %w", lba, err)
	}
	if !dot.IsDot() {
		return nil, fmt.Errorf("iso9660: extent %d does not begin with a self-reference record", lba)
	}
	dot.ExtentLBA = lba
	dot.SetDirectory(true)
	return dot, nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func (r *Reader) entryName(e filesystem.FSEntry) string {
	name := e.Name
	if r.opts.StripVersionInfo {
		name = stripVersion(name)
	}
	return name
}

func stripVersion(name string) string {
	if i := strings.LastIndexByte(name, ';'); i >= 0 {
		return name[:i]
	}
	return name
}

func nameMatches(candidate, want string) bool {
	return strings.EqualFold(stripVersion(candidate), stripVersion(want)) || strings.EqualFold(candidate, want)
}

// GetFSEntry resolves path (slash-separated, relative to the volume root)
// to the FSEntry it names.
func (r *Reader) GetFSEntry(path string) (filesystem.FSEntry, error) {
	return r.resolveEntry(path)
}

// List enumerates the entries of the directory at path, excluding the "."
// and ".." self/parent records.
func (r *Reader) List(path string) ([]filesystem.FSEntry, error) {
	entry, err := r.resolveEntry(path)
	if err != nil {
		return nil, err
	}
	rec := entry.Metadata.Record
	if !rec.IsDirectory() {
		return nil, fmt.Errorf("iso9660: %q is not a directory: %w", path, isoerr.ErrInvalidPath)
	}
	all, err := filesystem.ReadDirectory(r.bio, r.resolved, rec)
	if err != nil {
		return nil, err
	}
	out := make([]filesystem.FSEntry, 0, len(all))
	for _, e := range all {
		if e.Kind == filesystem.KindCurrentDirectory || e.Kind == filesystem.KindParentDirectory {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// ReadFile returns a restartable, block-aligned byte stream over the file at path.
func (r *Reader) ReadFile(path string) (*filesystem.FileReader, error) {
	entry, err := r.resolveEntry(path)
	if err != nil {
		return nil, err
	}
	if entry.IsDir() {
		return nil, fmt.Errorf("iso9660: %q is a directory: %w", path, isoerr.ErrInvalidPath)
	}
	rec := entry.Metadata.Record
	return filesystem.NewFileReader(r.bio, rec.ExtentLBA, rec.DataLength), nil
}

// resolveEntry dispatches to path-table or directory-record based
// resolution according to the resolved policy's PathTable flag.
func (r *Reader) resolveEntry(path string) (filesystem.FSEntry, error) {
	comps := splitPath(path)
	if len(comps) == 0 {
		return filesystem.FSEntry{Kind: filesystem.KindDirectory, Metadata: filesystem.Metadata{Record: r.resolved.Root}}, nil
	}
	if r.resolved.Policy.PathTable {
		return r.resolveViaPathTable(comps)
	}
	return r.resolveViaDirectoryRecords(comps)
}

// resolveViaDirectoryRecords implements "Path resolution via directory
// records": start at root, linearly scan each directory's entries by name
// (NM alternate name if present, else the decoded identifier).
func (r *Reader) resolveViaDirectoryRecords(comps []string) (filesystem.FSEntry, error) {
	current := r.resolved.Root
	var match filesystem.FSEntry
	for i, c := range comps {
		entries, err := filesystem.ReadDirectory(r.bio, r.resolved, current)
		if err != nil {
			return filesystem.FSEntry{}, err
		}
		found := false
		for _, e := range entries {
			if e.Kind == filesystem.KindCurrentDirectory || e.Kind == filesystem.KindParentDirectory {
				continue
			}
			if nameMatches(r.entryName(e), c) {
				match = e
				found = true
				break
			}
		}
		if !found {
			return filesystem.FSEntry{}, fmt.Errorf("iso9660: %q: %w", strings.Join(comps[:i+1], "/"), isoerr.ErrInvalidPath)
		}
		if i < len(comps)-1 {
			if !match.IsDir() {
				return filesystem.FSEntry{}, fmt.Errorf("iso9660: %q: %w", strings.Join(comps[:i+1], "/"), isoerr.ErrInvalidPath)
			}
			current = match.Metadata.Record
		}
	}
	return match, nil
}

// resolveViaPathTable implements "Path resolution via path table": walk the
// L-path table in declaration order tracking a running parent-number
// target; the final component falls back to a linear directory scan of the
// last matched parent when it does not itself name a directory.
func (r *Reader) resolveViaPathTable(comps []string) (filesystem.FSEntry, error) {
	lba, size := r.pathTableLocation()
	if lba == 0 {
		return filesystem.FSEntry{}, fmt.Errorf("iso9660: resolved descriptor has no path table")
	}
	data, err := r.bio.ReadBytesAt(lba, 0, int(size))
	if err != nil {
		return filesystem.FSEntry{}, fmt.Errorf("iso9660: read path table: %w", err)
	}
	table, err := pathtable.ParseAll(data, pathtable.LittleEndian)
	if err != nil {
		return filesystem.FSEntry{}, fmt.Errorf("iso9660: parse path table: %w", err)
	}

	target := uint16(1)
	lastDirLBA := r.resolved.Root.ExtentLBA
	for i, c := range comps {
		foundIdx := -1
		for idx, rec := range table {
			name := r.resolved.Enc.Decode(rec.IdentifierBytes)
			if rec.ParentNumber == target && nameMatches(name, c) {
				foundIdx = idx
				break
			}
		}
		if foundIdx == -1 {
			if i != len(comps)-1 {
				return filesystem.FSEntry{}, fmt.Errorf("iso9660: %q: %w", strings.Join(comps[:i+1], "/"), isoerr.ErrInvalidPath)
			}
			parentRec, err := r.directoryRecordFromExtent(lastDirLBA)
			if err != nil {
				return filesystem.FSEntry{}, err
			}
			entries, err := filesystem.ReadDirectory(r.bio, r.resolved, parentRec)
			if err != nil {
				return filesystem.FSEntry{}, err
			}
			for _, e := range entries {
				if e.Kind == filesystem.KindCurrentDirectory || e.Kind == filesystem.KindParentDirectory {
					continue
				}
				if nameMatches(r.entryName(e), c) {
					return e, nil
				}
			}
			return filesystem.FSEntry{}, fmt.Errorf("iso9660: %q: %w", c, isoerr.ErrInvalidPath)
		}
		rec := table[foundIdx]
		lastDirLBA = rec.ExtentLBA
		target = uint16(foundIdx + 1)
	}

	dirRec, err := r.directoryRecordFromExtent(lastDirLBA)
	if err != nil {
		return filesystem.FSEntry{}, err
	}
	return filesystem.FSEntry{
		Kind:     filesystem.KindDirectory,
		Name:     comps[len(comps)-1],
		Metadata: filesystem.Metadata{Record: dirRec},
	}, nil
}
