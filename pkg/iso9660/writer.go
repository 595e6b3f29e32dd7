package iso9660

import (
	"io"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/rstms/isokit/pkg/blockmedium"
	"github.com/rstms/isokit/pkg/consts"
	"github.com/rstms/isokit/pkg/encoding"
	"github.com/rstms/isokit/pkg/isoerr"
	"github.com/rstms/isokit/pkg/logging"
)

// FileStreamFunc supplies the byte content of one previously-added file,
// called exactly once per logical file during WriteAndClose. It must
// produce exactly the byte count declared to AddFile; a short stream is a
// precondition-failed error.
type FileStreamFunc func(path string) (io.Reader, error)

// WriterOptions configures NewWriter.
type WriterOptions struct {
	// VolumeIdentifier is required: a D-string of at most 32 characters,
	// carried on the Primary descriptor (and, re-encoded, on every other
	// descriptor produced).
	VolumeIdentifier string
	SystemIdentifier string

	// BlockSize is the logical block size, a power of two no greater than
	// the medium's sector size. Defaults to 2048.
	BlockSize int

	IncludeSupplementary     bool
	IncludeEnhanced          bool
	EnableSUSP               bool
	CreateOptionalPathTables bool

	DefaultUID uint32
	DefaultGID uint32

	Logger   logr.Logger
	Progress ProgressCallback
}

func defaultWriterOptions() WriterOptions {
	return WriterOptions{
		BlockSize:            consts.DefaultSectorSize,
		IncludeSupplementary: true,
		EnableSUSP:           true,
		Logger:               logr.Discard(),
	}
}

// Writer plans and emits a fresh ISO 9660 image from an in-memory write
// tree built with AddDirectory/AddFile/AddSymlink.
type Writer struct {
	medium blockmedium.Medium
	bio    *blockmedium.BlockIO
	opts   WriterOptions
	logger *logging.Logger

	root   *node
	stamp  time.Time
	closed bool
}

// NewWriter validates opts and returns a Writer ready to accept Add* calls.
// The medium is not touched until WriteAndClose.
func NewWriter(medium blockmedium.Medium, opts WriterOptions) (*Writer, error) {
	o := defaultWriterOptions()
	if opts.BlockSize != 0 {
		o.BlockSize = opts.BlockSize
	}
	o.VolumeIdentifier = opts.VolumeIdentifier
	o.SystemIdentifier = opts.SystemIdentifier
	o.IncludeSupplementary = opts.IncludeSupplementary
	o.IncludeEnhanced = opts.IncludeEnhanced
	o.EnableSUSP = opts.EnableSUSP
	o.CreateOptionalPathTables = opts.CreateOptionalPathTables
	o.DefaultUID = opts.DefaultUID
	o.DefaultGID = opts.DefaultGID
	if opts.Logger.GetSink() != nil {
		o.Logger = opts.Logger
	}
	o.Progress = opts.Progress

	if o.VolumeIdentifier == "" {
		return nil, isoerr.InvalidArgument("VolumeIdentifier", "is required")
	}
	vid := strings.ToUpper(o.VolumeIdentifier)
	if !encoding.ValidateString(vid, encoding.DCharSet) || len(vid) > 32 {
		return nil, isoerr.InvalidIdentifier("VolumeIdentifier", o.VolumeIdentifier)
	}
	o.VolumeIdentifier = vid

	if o.BlockSize <= 0 || o.BlockSize&(o.BlockSize-1) != 0 {
		return nil, isoerr.ErrInvalidLogicalBlockSize
	}
	if o.BlockSize > medium.SectorSize() {
		return nil, isoerr.ErrInvalidLogicalBlockSize
	}

	bio, err := blockmedium.NewBlockIO(medium, o.BlockSize)
	if err != nil {
		return nil, err
	}

	return &Writer{
		medium: medium,
		bio:    bio,
		opts:   o,
		logger: logging.NewLogger(o.Logger),
		root:   newDirNode(""),
		stamp:  time.Now(),
	}, nil
}
