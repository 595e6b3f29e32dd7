// Package filesystem turns a stream of directory records (plus their
// compacted Rock Ridge metadata) into the tagged FSEntry values the reader
// hands back to callers, and implements the descriptor-selection policy and
// directory/file traversal that produce them.
package filesystem

import (
	"fmt"
	"io/fs"
	"time"

	"github.com/rstms/isokit/pkg/blockmedium"
	"github.com/rstms/isokit/pkg/directory"
	"github.com/rstms/isokit/pkg/encoding"
	"github.com/rstms/isokit/pkg/rockridge"
	"github.com/rstms/isokit/pkg/susp"
)

// Kind discriminates the variants of FSEntry.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
	KindSymlink
	KindCurrentDirectory
	KindParentDirectory
)

// Metadata carries the POSIX-ish attributes of one FSEntry, plus the
// directory record it was built from for extent/size lookups.
type Metadata struct {
	Mode         fs.FileMode
	UID, GID     uint32
	Links        uint32
	Created      time.Time
	Modified     time.Time
	Record       *directory.Record
	UsedPolicy   Policy
	HasRockRidge bool
}

// FSEntry is one filesystem node: a file, directory, symlink, or one of the
// two special self/parent references every directory extent carries.
type FSEntry struct {
	Kind     Kind
	Name     string
	Size     uint32
	Target   string // populated only for KindSymlink
	Metadata Metadata
}

// IsDir reports whether the entry denotes a directory (including "." and "..").
func (e FSEntry) IsDir() bool {
	return e.Kind == KindDirectory || e.Kind == KindCurrentDirectory || e.Kind == KindParentDirectory
}

// BuildEntry constructs an FSEntry from a parsed directory record, decoding
// its identifier with enc and overlaying any Rock Ridge metadata found in its
// (already fully-assembled) compacted SUSP entry list.
func BuildEntry(rec *directory.Record, enc encoding.NameEncoding, compacted []susp.Entry, policy Policy) FSEntry {
	meta := Metadata{
		Record:     rec,
		UsedPolicy: policy,
		Modified:   rec.RecordedDate.Time(),
	}
	var rr rockridge.Metadata
	if len(compacted) > 0 {
		rr = rockridge.FromEntries(compacted)
		meta.HasRockRidge = true
		meta.UID, meta.GID, meta.Links = rr.UID, rr.GID, rr.Links
		if rr.HasPosix {
			meta.Mode = rr.Mode
		}
	}

	switch {
	case rec.IsDot():
		return FSEntry{Kind: KindCurrentDirectory, Metadata: meta}
	case rec.IsDotDot():
		return FSEntry{Kind: KindParentDirectory, Metadata: meta}
	}

	name := enc.Decode(rec.IdentifierBytes)
	if rr.AlternateName != "" {
		name = rr.AlternateName
	}

	if rr.HasSymlink {
		return FSEntry{Kind: KindSymlink, Name: name, Target: rr.SymlinkTarget, Metadata: meta}
	}
	if rec.IsDirectory() {
		return FSEntry{Kind: KindDirectory, Name: name, Metadata: meta}
	}
	return FSEntry{Kind: KindFile, Name: name, Size: rec.DataLength, Metadata: meta}
}

// trimIdentifierVersion strips everything from the last ';' of an identifier
// (its ";N" version suffix); an identifier without ';' is returned unchanged.
func trimIdentifierVersion(id []byte) []byte {
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == ';' {
			return id[:i]
		}
	}
	return id
}

// resolveArea follows a directory record's CE chain to completion, reading
// continuations through bio, then returns the compacted entry list.
func resolveArea(bio *blockmedium.BlockIO, rec *directory.Record) ([]susp.Entry, error) {
	if len(rec.SystemUse) == 0 {
		return nil, nil
	}
	area := susp.NewArea(rec.SystemUse)
	for !area.Complete() {
		ce, ok := area.NeedsContinuation()
		if !ok {
			break
		}
		data, err := bio.ReadBytesAt(ce.Block, int(ce.Offset), int(ce.Length))
		if err != nil {
			return nil, fmt.Errorf("filesystem: susp continuation: %w", err)
		}
		if !area.AddContinuation(data) {
			break
		}
	}
	return area.Compact(), nil
}
