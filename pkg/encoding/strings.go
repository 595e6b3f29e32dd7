package encoding

import (
	"strings"
	"unicode/utf8"

	"github.com/rstms/isokit/pkg/consts"
	"golang.org/x/text/encoding/unicode"
)

// NameEncoding abstracts over the several character encodings an identifier
// field may use: strict ASCII (A-/D-strings), UCS-2 big-endian (Joliet), and
// UTF-8 (Joliet levels %/G, %/H, %/I).
type NameEncoding interface {
	// EncodeTruncate encodes s, then truncates to at most n bytes without
	// splitting a multi-byte code unit.
	EncodeTruncate(s string, n int) []byte
	Decode(b []byte) string
	// CodeUnitSize is the minimal indivisible unit of the encoding, in bytes.
	CodeUnitSize() int
}

// ASCII is the 1-byte-per-rune encoding used for Primary-descriptor A-/D-strings.
var ASCII NameEncoding = asciiEncoding{}

// UCS2BigEndian is the 2-byte-per-code-unit Joliet encoding.
var UCS2BigEndian NameEncoding = ucs2Encoding{}

// UTF8 is the variable-width encoding used by Joliet levels that select UTF-8.
var UTF8 NameEncoding = utf8Encoding{}

type asciiEncoding struct{}

func (asciiEncoding) CodeUnitSize() int { return 1 }

func (asciiEncoding) EncodeTruncate(s string, n int) []byte {
	b := []byte(s)
	if len(b) > n {
		b = b[:n]
	}
	return b
}

func (asciiEncoding) Decode(b []byte) string {
	return string(b)
}

type utf8Encoding struct{}

func (utf8Encoding) CodeUnitSize() int { return 1 }

func (utf8Encoding) EncodeTruncate(s string, n int) []byte {
	b := []byte(s)
	if len(b) <= n {
		return b
	}
	// Walk back from n to the start of a rune so a multi-byte code point is
	// never split.
	cut := n
	for cut > 0 && !utf8.RuneStart(b[cut]) {
		cut--
	}
	return b[:cut]
}

func (utf8Encoding) Decode(b []byte) string {
	return string(b)
}

type ucs2Encoding struct{}

func (ucs2Encoding) CodeUnitSize() int { return 2 }

func (ucs2Encoding) EncodeTruncate(s string, n int) []byte {
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
	b, err := enc.Bytes([]byte(s))
	if err != nil {
		// Best effort: fall back to encoding rune-by-rune, skipping anything
		// that can't be represented in UCS-2 (e.g. astral-plane runes).
		b = encodeUCS2Lossy(s)
	}
	n -= n % 2
	if len(b) > n {
		b = b[:n]
	}
	return b
}

func encodeUCS2Lossy(s string) []byte {
	var out []byte
	for _, r := range s {
		if r > 0xFFFF {
			r = '_'
		}
		out = append(out, byte(r>>8), byte(r))
	}
	return out
}

func (ucs2Encoding) Decode(b []byte) string {
	// A trailing odd byte is not part of any code unit and is dropped.
	b = b[:len(b)-len(b)%2]
	dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// PadString serializes s into exactly n bytes using enc, greedily encoding
// code points and stopping before any code point that would overflow n (a
// multi-byte code unit is never split), then filling the remainder with
// repetitions of filler (itself encoded with enc), zero-filling any tail
// that cannot hold a whole filler unit.
func PadString(s string, n int, enc NameEncoding, filler byte) []byte {
	encoded := enc.EncodeTruncate(s, n)
	out := make([]byte, n)
	copy(out, encoded)

	fillerUnit := enc.EncodeTruncate(string(rune(filler)), enc.CodeUnitSize())
	if len(fillerUnit) == 0 {
		fillerUnit = []byte{filler}
	}
	for i := len(encoded); i+len(fillerUnit) <= n; i += len(fillerUnit) {
		copy(out[i:i+len(fillerUnit)], fillerUnit)
	}
	return out
}

// UnpadString strips trailing filler (filler encoded with enc, as PadString
// writes it, plus any zero-filled tail shorter than one filler unit) and
// decodes the remainder with enc.
func UnpadString(b []byte, enc NameEncoding, filler byte) string {
	unit := enc.EncodeTruncate(string(rune(filler)), enc.CodeUnitSize())
	if len(unit) == 0 {
		unit = []byte{filler}
	}
	end := len(b)
	for end > 0 && end%len(unit) != 0 && b[end-1] == 0 {
		end--
	}
	for end >= len(unit) && string(b[end-len(unit):end]) == string(unit) {
		end -= len(unit)
	}
	return enc.Decode(b[:end])
}

// IdentifierOrFile represents the three-way choice a Volume Descriptor's
// identifier fields make: a literal identifier, an indirection to a named
// file whose contents supply the value, or nothing at all.
type IdentifierOrFile struct {
	Kind  IdentifierKind
	Value string
}

type IdentifierKind int

const (
	IdentifierEmpty IdentifierKind = iota
	IdentifierLiteral
	IdentifierFile
)

// Serialize renders the value into n bytes per the Kind: Literal emits the
// value as-is, File prefixes it with "_", Empty emits filler only.
func (f IdentifierOrFile) Serialize(n int, enc NameEncoding) []byte {
	switch f.Kind {
	case IdentifierFile:
		return PadString("_"+f.Value, n, enc, consts.Filler)
	case IdentifierLiteral:
		return PadString(f.Value, n, enc, consts.Filler)
	default:
		return PadString("", n, enc, consts.Filler)
	}
}

// ParseIdentifierOrFile decodes an IdentifierOrFile field.
func ParseIdentifierOrFile(b []byte, enc NameEncoding) IdentifierOrFile {
	s := UnpadString(b, enc, consts.Filler)
	if s == "" {
		return IdentifierOrFile{Kind: IdentifierEmpty}
	}
	if strings.HasPrefix(s, "_") {
		return IdentifierOrFile{Kind: IdentifierFile, Value: s[1:]}
	}
	return IdentifierOrFile{Kind: IdentifierLiteral, Value: s}
}
