package encoding

import (
	"strings"

	"github.com/rstms/isokit/pkg/consts"
)

// CharSet names one of the ECMA-119 code-point sets used to validate
// identifier fields.
type CharSet int

const (
	ACharSet CharSet = iota
	DCharSet
	DOrSepCharSet
)

// ValidateString tests every rune in s against the given character set. The
// empty string always passes.
func ValidateString(s string, set CharSet) bool {
	if s == "" {
		return true
	}
	var allowed string
	switch set {
	case ACharSet:
		allowed = consts.ACharacters
	case DCharSet:
		allowed = consts.DCharacters
	case DOrSepCharSet:
		allowed = consts.DCharacters + consts.Separator1 + consts.Separator2
	}
	for _, r := range s {
		if !strings.ContainsRune(allowed, r) {
			return false
		}
	}
	return true
}
