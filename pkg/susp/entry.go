// Package susp implements the System Use Sharing Protocol entry codec (the
// tagged CE/PD/SP/ST/PX/PN/SL/NM/TF/SF/RR variants and opaque passthrough)
// and the continuation-area assembler built on top of it.
package susp

import (
	"fmt"

	"github.com/rstms/isokit/pkg/encoding"
	"github.com/rstms/isokit/pkg/isoerr"
)

// Entry is any parsed SUSP system use entry. Every concrete type can
// serialize itself back to its exact on-disc form.
type Entry interface {
	Signature() string
	// Serialize renders the full entry, header included.
	Serialize() []byte
}

const headerLen = 4 // signature(2) + length(1) + version(1)

func header(sig string, payloadLen int, version byte) []byte {
	out := make([]byte, headerLen)
	copy(out[0:2], sig)
	out[2] = byte(headerLen + payloadLen)
	out[3] = version
	return out
}

// CEEntry ("CE") points at an external continuation: a run of bytes at
// (Block, Offset) holding Length further bytes of SUSP entries.
type CEEntry struct {
	Block, Offset, Length uint32
}

func (e *CEEntry) Signature() string { return "CE" }

func (e *CEEntry) Serialize() []byte {
	buf := make([]byte, 24)
	encoding.WriteUint32BothEndian(buf[0:8], e.Block)
	encoding.WriteUint32BothEndian(buf[8:16], e.Offset)
	encoding.WriteUint32BothEndian(buf[16:24], e.Length)
	return append(header("CE", len(buf), 1), buf...)
}

// CELen is the fixed serialized length of a CE entry (4-byte header + 24-byte payload).
const CELen = headerLen + 24

func parseCE(payload []byte) (*CEEntry, error) {
	if len(payload) != 24 {
		return nil, fmt.Errorf("CE payload must be 24 bytes, got %d", len(payload))
	}
	block, err := encoding.ReadUint32BothEndian(payload[0:8])
	if err != nil {
		return nil, err
	}
	offset, err := encoding.ReadUint32BothEndian(payload[8:16])
	if err != nil {
		return nil, err
	}
	length, err := encoding.ReadUint32BothEndian(payload[16:24])
	if err != nil {
		return nil, err
	}
	return &CEEntry{Block: block, Offset: offset, Length: length}, nil
}

// PDEntry ("PD") is arbitrary padding.
type PDEntry struct {
	Bytes []byte
}

func (e *PDEntry) Signature() string { return "PD" }
func (e *PDEntry) Serialize() []byte { return append(header("PD", len(e.Bytes), 1), e.Bytes...) }

// SPEntry ("SP") marks the start of the SUSP area on the root directory's "."
// record, carrying the magic bytes 0xBE 0xEF and a skip length.
type SPEntry struct {
	Skip byte
}

func (e *SPEntry) Signature() string { return "SP" }
func (e *SPEntry) Serialize() []byte {
	return append(header("SP", 3, 1), 0xBE, 0xEF, e.Skip)
}

func parseSP(payload []byte) (*SPEntry, error) {
	if len(payload) != 3 || payload[0] != 0xBE || payload[1] != 0xEF {
		return nil, fmt.Errorf("malformed SP entry")
	}
	return &SPEntry{Skip: payload[2]}, nil
}

// STEntry ("ST") terminates the current continuation.
type STEntry struct{}

func (e *STEntry) Signature() string { return "ST" }
func (e *STEntry) Serialize() []byte { return header("ST", 0, 1) }

// RREntry ("RR") is the legacy marker that Rock Ridge entries follow.
type RREntry struct{}

func (e *RREntry) Signature() string { return "RR" }
func (e *RREntry) Serialize() []byte { return header("RR", 0, 1) }

// OpaqueEntry preserves any unrecognized 2-byte signature byte-for-byte.
type OpaqueEntry struct {
	Sig     string
	Version byte
	Payload []byte
}

func (e *OpaqueEntry) Signature() string { return e.Sig }
func (e *OpaqueEntry) Serialize() []byte {
	return append(header(e.Sig, len(e.Payload), e.Version), e.Payload...)
}

// Parse reads one entry from data, returning the entry and the number of
// bytes it consumed. It returns an error on a malformed length; a
// well-formed but unrecognized signature becomes an OpaqueEntry.
func Parse(data []byte) (Entry, int, error) {
	if len(data) < headerLen {
		return nil, 0, fmt.Errorf("%w: truncated entry header", isoerr.ErrInvalidSUSPSignature)
	}
	sig := string(data[0:2])
	length := int(data[2])
	version := data[3]
	if length < headerLen || length > len(data) {
		return nil, 0, fmt.Errorf("%w: invalid length %d", isoerr.ErrInvalidSUSPSignature, length)
	}
	payload := data[headerLen:length]

	var entry Entry
	var err error
	switch sig {
	case "CE":
		entry, err = parseCE(payload)
	case "PD":
		entry = &PDEntry{Bytes: append([]byte(nil), payload...)}
	case "SP":
		entry, err = parseSP(payload)
	case "ST":
		entry = &STEntry{}
	case "RR":
		entry = &RREntry{}
	case "PX":
		entry, err = parsePX(payload)
	case "PN":
		entry, err = parsePN(payload)
	case "SL":
		entry, err = parseSL(payload)
	case "NM":
		entry, err = parseNM(payload)
	case "TF":
		entry, err = parseTF(payload)
	case "SF":
		entry, err = parseSF(payload)
	default:
		entry = &OpaqueEntry{Sig: sig, Version: version, Payload: append([]byte(nil), payload...)}
	}
	if err != nil {
		return nil, 0, err
	}
	return entry, length, nil
}
