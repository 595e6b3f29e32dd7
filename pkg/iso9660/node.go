package iso9660

import (
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/rstms/isokit/pkg/isoerr"
)

type nodeKind int

const (
	nodeDirectory nodeKind = iota
	nodeFile
	nodeSymlink
)

// NodeMetadata carries the POSIX attributes a Writer attaches to an ingested
// path via Rock Ridge (PX/TF). A nil metadata argument to Add* uses the
// Writer's default uid/gid and a mode appropriate to the node kind.
type NodeMetadata struct {
	Mode     fs.FileMode
	UID, GID uint32
	Created  time.Time
	Modified time.Time
}

// node is one ingested path: a directory, file, or symlink awaiting layout.
type node struct {
	kind        nodeKind
	name        string // raw path component, as supplied to Add*
	size        uint32 // nodeFile only
	target      string // nodeSymlink only
	meta        NodeMetadata
	hasMeta     bool
	children    map[string]*node
	order       []string // insertion order, for stable iteration before sort
	assignedLBA uint32   // nodeFile only, set by allocateFileLBAs
}

// fileLBAOrZero reports the file's allocated data LBA; zero for anything
// that isn't a nodeFile or for a zero-length file that was never advanced
// past the allocator's current position.
func (n *node) fileLBAOrZero() uint32 {
	return n.assignedLBA
}

func newDirNode(name string) *node {
	return &node{kind: nodeDirectory, name: name, children: map[string]*node{}}
}

// sortedChildren returns this directory's children sorted by raw name
// ascending, the order the layout pass materializes records in.
func (n *node) sortedChildren() []*node {
	out := make([]*node, 0, len(n.order))
	for _, name := range n.order {
		out = append(out, n.children[name])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// splitPathComponents splits a slash-separated path into components,
// dropping empty segments produced by leading/trailing/duplicate slashes.
func splitPathComponents(path string) []string {
	var out []string
	for _, c := range strings.Split(path, "/") {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// ensureNode walks (creating intermediate directories as needed) to the node
// named by path, creating or validating a leaf of kind leaf.
func (w *Writer) ensureNode(path string, leaf nodeKind) (*node, error) {
	comps := splitPathComponents(path)
	if len(comps) == 0 {
		return nil, isoerr.InvalidArgument("path", "path must name at least one component")
	}
	cur := w.root
	for i, c := range comps {
		if c == "." || c == ".." {
			return nil, isoerr.InvalidArgument("path", `path components "." and ".." are not allowed`)
		}
		if cur.kind != nodeDirectory {
			return nil, isoerr.PreconditionFailed("parent of " + path + " is not a directory")
		}
		last := i == len(comps)-1
		child, ok := cur.children[c]
		if !ok {
			kind := nodeDirectory
			if last {
				kind = leaf
			}
			if kind == nodeDirectory {
				child = newDirNode(c)
			} else {
				child = &node{kind: kind, name: c}
			}
			cur.children[c] = child
			cur.order = append(cur.order, c)
		} else if last {
			if child.kind != leaf {
				return nil, isoerr.PreconditionFailed("cannot replace existing node at " + path + " with a different kind")
			}
		} else if child.kind != nodeDirectory {
			return nil, isoerr.PreconditionFailed(c + " in " + path + " is not a directory")
		}
		cur = child
	}
	return cur, nil
}

func (w *Writer) defaultMeta(isDir bool) NodeMetadata {
	mode := fs.FileMode(0644)
	if isDir {
		mode = 0755 | fs.ModeDir
	}
	return NodeMetadata{Mode: mode, UID: w.opts.DefaultUID, GID: w.opts.DefaultGID}
}

// AddDirectory ingests a directory at path, creating any missing ancestors.
// Re-adding an existing directory only updates its metadata.
func (w *Writer) AddDirectory(path string, meta *NodeMetadata) error {
	n, err := w.ensureNode(path, nodeDirectory)
	if err != nil {
		return err
	}
	if meta != nil {
		n.meta = *meta
		n.hasMeta = true
	}
	return nil
}

// AddFile ingests a file at path with the given logical size. The actual
// bytes are supplied later, during WriteAndClose, via the caller's
// file-stream callback.
func (w *Writer) AddFile(path string, size uint32, meta *NodeMetadata) error {
	n, err := w.ensureNode(path, nodeFile)
	if err != nil {
		return err
	}
	n.size = size
	if meta != nil {
		n.meta = *meta
		n.hasMeta = true
	}
	return nil
}

// AddSymlink ingests a symbolic link at path pointing at target. Symlinks
// are only representable via Rock Ridge; they are silently omitted from any
// descriptor view with SUSP disabled.
func (w *Writer) AddSymlink(path, target string, meta *NodeMetadata) error {
	n, err := w.ensureNode(path, nodeSymlink)
	if err != nil {
		return err
	}
	n.target = target
	if meta != nil {
		n.meta = *meta
		n.hasMeta = true
	}
	return nil
}

func (n *node) metadataOr(w *Writer) NodeMetadata {
	if n.hasMeta {
		return n.meta
	}
	return w.defaultMeta(n.kind == nodeDirectory)
}
