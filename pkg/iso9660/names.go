package iso9660

import (
	"fmt"
	"strings"

	"github.com/rstms/isokit/pkg/consts"
	"github.com/rstms/isokit/pkg/encoding"
)

// maxWideNameBytes bounds a Supplementary/Enhanced identifier; ECMA-119
// leaves 222 application-defined bytes in a directory record's system-use
// area budget, of which this library reserves headroom for a SUSP trailer.
const maxWideNameBytes = 207

// deriveLegacyFileName computes the Primary descriptor's 8.3;1 identifier
// for a file named original, disambiguating against used (already-assigned
// siblings in the same directory).
func deriveLegacyFileName(original string, used map[string]bool) string {
	base, ext := splitExt(original)
	base = sanitizeDChars(base)
	ext = sanitizeDChars(ext)
	if len(ext) > 3 {
		ext = ext[:3]
	}
	for len(base)+1+len(ext) > 12 {
		base = base[:len(base)-1]
	}
	if base == "" {
		base = "_"
	}
	if c := formatLegacyFile(base, ext); !used[c] {
		used[c] = true
		return c
	}
	for n := 0; n < 10; n++ {
		c := formatLegacyFile(trimTo(base, 7)+fmt.Sprint(n), ext)
		if !used[c] {
			used[c] = true
			return c
		}
	}
	for n := 0; n < 100; n++ {
		c := formatLegacyFile(fmt.Sprintf("%s%02d", trimTo(base, 6), n), ext)
		if !used[c] {
			used[c] = true
			return c
		}
	}
	for n := 0; ; n++ {
		c := formatLegacyFile(fmt.Sprintf("F%07d", n), ext)
		if !used[c] {
			used[c] = true
			return c
		}
	}
}

func formatLegacyFile(base, ext string) string {
	if ext == "" {
		return base + ";1"
	}
	return base + "." + ext + ";1"
}

// deriveLegacyDirName computes the Primary descriptor's 8-character
// identifier for a directory named original.
func deriveLegacyDirName(original string, used map[string]bool) string {
	name := sanitizeDChars(original)
	if len(name) > 8 {
		name = name[:8]
	}
	if name == "" {
		name = "_"
	}
	if !used[name] {
		used[name] = true
		return name
	}
	for n := 0; n < 10; n++ {
		c := trimTo(name, 7) + fmt.Sprint(n)
		if !used[c] {
			used[c] = true
			return c
		}
	}
	for n := 0; n < 100; n++ {
		c := fmt.Sprintf("%s%02d", trimTo(name, 6), n)
		if !used[c] {
			used[c] = true
			return c
		}
	}
	for n := 0; ; n++ {
		c := fmt.Sprintf("D%07d", n)
		if !used[c] {
			used[c] = true
			return c
		}
	}
}

func trimTo(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func sanitizeDChars(s string) string {
	s = strings.ToUpper(s)
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(consts.DCharacters, r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func splitExt(name string) (base, ext string) {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return name, ""
	}
	return name[:idx], name[idx+1:]
}

// deriveWideName encodes original with enc and truncates it at a whole
// code-unit boundary to maxWideNameBytes, disambiguating collisions by
// shortening further to make room for a "~N" suffix.
func deriveWideName(original string, enc encoding.NameEncoding, used map[string]bool) string {
	candidate := enc.Decode(enc.EncodeTruncate(original, maxWideNameBytes))
	if !used[candidate] {
		used[candidate] = true
		return candidate
	}
	for n := 0; ; n++ {
		suffix := fmt.Sprintf("~%d", n)
		budget := maxWideNameBytes - len(enc.EncodeTruncate(suffix, maxWideNameBytes))
		if budget < 0 {
			budget = 0
		}
		c := enc.Decode(enc.EncodeTruncate(original, budget)) + suffix
		if !used[c] {
			used[c] = true
			return c
		}
	}
}
