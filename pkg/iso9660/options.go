package iso9660

import (
	"github.com/go-logr/logr"

	"github.com/rstms/isokit/pkg/filesystem"
)

// ProgressCallback is invoked once per chunk (up to 4096 bytes) copied during
// extraction (or once per file emitted during write). Purely observational.
type ProgressCallback func(name string, transferred, total int64, fileIndex, fileCount int)

// Options configures Open.
type Options struct {
	ParseOnOpen      bool
	RockRidgeEnabled bool
	ElToritoEnabled  bool
	PreferJoliet     bool
	PreferEnhancedVD bool
	StripVersionInfo bool
	Logger           logr.Logger
	Progress         ProgressCallback
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		ParseOnOpen:      true,
		RockRidgeEnabled: true,
		ElToritoEnabled:  true,
		Logger:           logr.Discard(),
	}
}

// WithLogger sets the logger used for every component the Reader builds.
func WithLogger(logger logr.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithProgress installs a progress callback invoked during extraction.
func WithProgress(cb ProgressCallback) Option {
	return func(o *Options) { o.Progress = cb }
}

// WithParseOnOpen controls whether Open eagerly parses the descriptor set
// and resolves the descriptor policy. Disabling it requires a later call to
// Parse before any path resolution is possible.
func WithParseOnOpen(enabled bool) Option {
	return func(o *Options) { o.ParseOnOpen = enabled }
}

// WithRockRidgeEnabled sets Options.RockRidgeEnabled. The Reader does not
// consult that field: SUSP/Rock Ridge metadata is always decoded and
// overlaid onto FSEntry values, whatever this option is set to.
func WithRockRidgeEnabled(enabled bool) Option {
	return func(o *Options) { o.RockRidgeEnabled = enabled }
}

// WithElToritoEnabled controls whether a Boot Record's El Torito catalog is
// decoded.
func WithElToritoEnabled(enabled bool) Option {
	return func(o *Options) { o.ElToritoEnabled = enabled }
}

// WithPreferJoliet prefers the first plain Supplementary (Joliet) descriptor
// over Primary when resolving paths, equivalent to descriptor Policy
// PolicySupplementary.
func WithPreferJoliet(enabled bool) Option {
	return func(o *Options) { o.PreferJoliet = enabled }
}

// WithPreferEnhancedVD prefers the Enhanced (ISO 9660:1999) descriptor over
// Primary when resolving paths.
func WithPreferEnhancedVD(enabled bool) Option {
	return func(o *Options) { o.PreferEnhancedVD = enabled }
}

// WithStripVersionInfo strips the trailing ";N" version suffix from the
// names of the files Extract writes, whichever descriptor or Rock Ridge
// name supplied them. Entries returned by List and GetFSEntry keep their
// names unchanged, and path lookups ignore the suffix either way.
func WithStripVersionInfo(enabled bool) Option {
	return func(o *Options) { o.StripVersionInfo = enabled }
}

func (o Options) descriptorPolicy() filesystem.Policy {
	switch {
	case o.PreferJoliet:
		return filesystem.Policy{Kind: filesystem.PolicySupplementary}
	case o.PreferEnhancedVD:
		return filesystem.Policy{Kind: filesystem.PolicyEnhanced}
	default:
		return filesystem.Policy{Kind: filesystem.PolicyAny}
	}
}
