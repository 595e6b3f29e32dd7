// Package validation checks candidate ISO 9660 identifiers against the
// d-character and a-character sets before a Writer commits them to a
// directory record.
package validation

import (
	"strings"

	"github.com/rstms/isokit/pkg/consts"
)

// FileIdentifier reports whether identifier is a legal ISO 9660 file
// identifier: d-characters plus the "." and ";" separators.
func FileIdentifier(identifier string) bool {
	return validateRunes(identifier, consts.Separator1+consts.Separator2)
}

// DirIdentifier reports whether identifier is a legal ISO 9660 directory
// identifier. The single-byte 0x00/0x01 self/parent identifiers are always
// accepted.
func DirIdentifier(identifier string) bool {
	if len(identifier) == 1 && (identifier[0] == 0x00 || identifier[0] == 0x01) {
		return true
	}
	return validateRunes(identifier, "")
}

func validateRunes(identifier string, extra string) bool {
	allowed := consts.DCharacters + extra
	for _, r := range identifier {
		if !strings.ContainsRune(allowed, r) {
			return false
		}
	}
	return true
}
