// Package isoerr defines the sentinel error families used across the library,
// per the Spec/API/IO taxonomy: Spec errors report an on-disc or requested
// invariant violation, API errors report caller misuse, and IO errors are the
// underlying medium's errors surfaced verbatim.
package isoerr

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidPath               = errors.New("invalid path")
	ErrInvalidSectorSize         = errors.New("invalid sector size")
	ErrInvalidLogicalBlockSize   = errors.New("invalid logical block size")
	ErrInvalidApplicationUseSize = errors.New("invalid application use size")
	ErrInvalidSUSPSignature      = errors.New("invalid susp signature")
	ErrInvalidVolumeDescriptor   = errors.New("invalid volume descriptor")
	ErrInvalidImage              = errors.New("invalid image")
	ErrWriterClosed              = errors.New("writer closed")
)

// InvalidIdentifier reports that field carries value, which violates the
// character set or length rule for that field.
func InvalidIdentifier(field, value string) error {
	return fmt.Errorf("invalid identifier for field %q: %q", field, value)
}

// PreconditionFailed reports a violated runtime precondition, such as a
// file-stream callback producing fewer bytes than declared.
func PreconditionFailed(reason string) error {
	return fmt.Errorf("precondition failed: %s", reason)
}

// InvalidArgument reports caller misuse of a specific named argument.
func InvalidArgument(name, message string) error {
	return fmt.Errorf("invalid argument %q: %s", name, message)
}

// Wrap attaches a stack trace (via github.com/pkg/errors) to err for
// best-effort diagnostics during read-path parsing, where the caller chooses
// to continue rather than abort.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}
