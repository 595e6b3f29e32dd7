// Package rockridge interprets a compacted SUSP entry list (see package susp)
// as RRIP metadata: POSIX mode/uid/gid/links, an alternate name, a symlink
// target, and timestamps.
package rockridge

import (
	"io/fs"
	"strings"

	"github.com/rstms/isokit/pkg/susp"
)

// Metadata is the RRIP-derived view of one directory record.
type Metadata struct {
	Mode          fs.FileMode
	RawMode       uint32
	Links         uint32
	UID, GID      uint32
	AlternateName string
	SymlinkTarget string
	HasPosix      bool
	HasSymlink    bool
}

// FromEntries builds Metadata from a directory record's compacted SUSP
// entries. Entries with no RRIP content yield a zero Metadata.
func FromEntries(entries []susp.Entry) Metadata {
	var m Metadata
	for _, e := range entries {
		switch v := e.(type) {
		case *susp.PXEntry:
			m.HasPosix = true
			m.RawMode = v.Mode
			m.Mode = parseFileMode(v.Mode)
			m.Links = v.Links
			m.UID = v.UID
			m.GID = v.GID
		case *susp.NMEntry:
			m.AlternateName = string(v.Name)
		case *susp.SLEntry:
			m.HasSymlink = true
			m.SymlinkTarget = componentsToPath(v.Components)
		}
	}
	return m
}

func componentsToPath(components []susp.SLComponent) string {
	var parts []string
	for _, c := range components {
		switch {
		case c.Flags&susp.CompVolumeRoot != 0:
			parts = append(parts, "", "")
		case c.Flags&susp.CompRoot != 0:
			parts = append(parts, "")
		case c.Flags&susp.CompCurrent != 0:
			parts = append(parts, ".")
		case c.Flags&susp.CompParent != 0:
			parts = append(parts, "..")
		default:
			parts = append(parts, string(c.Bytes))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "/")
}

// PathToComponents builds the SL component list for a symlink target path,
// interpreting leading "//" as a volume-root reference, leading "/" as a
// root reference, "." and ".." as the current/parent aliases, and anything
// else as a named component.
func PathToComponents(target string) []susp.SLComponent {
	var comps []susp.SLComponent
	if strings.HasPrefix(target, "//") {
		comps = append(comps, susp.SLComponent{Flags: susp.CompVolumeRoot})
		target = strings.TrimPrefix(target, "//")
	} else if strings.HasPrefix(target, "/") {
		comps = append(comps, susp.SLComponent{Flags: susp.CompRoot})
		target = strings.TrimPrefix(target, "/")
	}
	if target == "" {
		return comps
	}
	for _, part := range strings.Split(target, "/") {
		switch part {
		case ".":
			comps = append(comps, susp.SLComponent{Flags: susp.CompCurrent})
		case "..":
			comps = append(comps, susp.SLComponent{Flags: susp.CompParent})
		default:
			comps = append(comps, susp.SLComponent{Bytes: []byte(part)})
		}
	}
	return comps
}

// parseFileMode converts a POSIX mode_t (as carried by a PX entry) into an
// fs.FileMode.
func parseFileMode(mode uint32) fs.FileMode {
	var out fs.FileMode
	switch mode & 0xF000 {
	case 0xC000:
		out |= fs.ModeSocket
	case 0xA000:
		out |= fs.ModeSymlink
	case 0x6000:
		out |= fs.ModeDevice
	case 0x2000:
		out |= fs.ModeCharDevice
	case 0x4000:
		out |= fs.ModeDir
	case 0x1000:
		out |= fs.ModeNamedPipe
	}
	out |= fs.FileMode(mode & 0777)
	if mode&0o4000 != 0 {
		out |= fs.ModeSetuid
	}
	if mode&0o2000 != 0 {
		out |= fs.ModeSetgid
	}
	if mode&0o1000 != 0 {
		out |= fs.ModeSticky
	}
	return out
}

// EncodeFileMode converts an fs.FileMode + POSIX permission bits back into a
// mode_t suitable for a PX entry.
func EncodeFileMode(mode fs.FileMode, isDir bool) uint32 {
	var out uint32
	switch {
	case mode&fs.ModeSymlink != 0:
		out = 0xA000
	case isDir || mode&fs.ModeDir != 0:
		out = 0x4000
	case mode&fs.ModeDevice != 0 && mode&fs.ModeCharDevice != 0:
		out = 0x2000
	case mode&fs.ModeDevice != 0:
		out = 0x6000
	case mode&fs.ModeNamedPipe != 0:
		out = 0x1000
	case mode&fs.ModeSocket != 0:
		out = 0xC000
	default:
		out = 0x8000
	}
	out |= uint32(mode.Perm())
	if mode&fs.ModeSetuid != 0 {
		out |= 0o4000
	}
	if mode&fs.ModeSetgid != 0 {
		out |= 0o2000
	}
	if mode&fs.ModeSticky != 0 {
		out |= 0o1000
	}
	return out
}
