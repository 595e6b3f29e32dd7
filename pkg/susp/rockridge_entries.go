package susp

import (
	"fmt"

	"github.com/rstms/isokit/pkg/encoding"
)

// PXEntry ("PX") carries POSIX file mode, link count, uid, gid, and
// optionally a file serial number.
type PXEntry struct {
	Mode, Links, UID, GID uint32
	Serial                uint32
	HasSerial              bool
}

func (e *PXEntry) Signature() string { return "PX" }

func (e *PXEntry) Serialize() []byte {
	n := 32
	if e.HasSerial {
		n = 40
	}
	buf := make([]byte, n)
	encoding.WriteUint32BothEndian(buf[0:8], e.Mode)
	encoding.WriteUint32BothEndian(buf[8:16], e.Links)
	encoding.WriteUint32BothEndian(buf[16:24], e.UID)
	encoding.WriteUint32BothEndian(buf[24:32], e.GID)
	if e.HasSerial {
		encoding.WriteUint32BothEndian(buf[32:40], e.Serial)
	}
	return append(header("PX", len(buf), 1), buf...)
}

func parsePX(payload []byte) (*PXEntry, error) {
	if len(payload) != 32 && len(payload) != 40 {
		return nil, fmt.Errorf("PX payload must be 32 or 40 bytes, got %d", len(payload))
	}
	mode, err := encoding.ReadUint32BothEndian(payload[0:8])
	if err != nil {
		return nil, err
	}
	links, err := encoding.ReadUint32BothEndian(payload[8:16])
	if err != nil {
		return nil, err
	}
	uid, err := encoding.ReadUint32BothEndian(payload[16:24])
	if err != nil {
		return nil, err
	}
	gid, err := encoding.ReadUint32BothEndian(payload[24:32])
	if err != nil {
		return nil, err
	}
	entry := &PXEntry{Mode: mode, Links: links, UID: uid, GID: gid}
	if len(payload) == 40 {
		serial, err := encoding.ReadUint32BothEndian(payload[32:40])
		if err != nil {
			return nil, err
		}
		entry.Serial = serial
		entry.HasSerial = true
	}
	return entry, nil
}

// PNEntry ("PN") carries POSIX device numbers for block/char device nodes.
type PNEntry struct {
	High, Low uint32
}

func (e *PNEntry) Signature() string { return "PN" }

func (e *PNEntry) Serialize() []byte {
	buf := make([]byte, 16)
	encoding.WriteUint32BothEndian(buf[0:8], e.High)
	encoding.WriteUint32BothEndian(buf[8:16], e.Low)
	return append(header("PN", len(buf), 1), buf...)
}

func parsePN(payload []byte) (*PNEntry, error) {
	if len(payload) != 16 {
		return nil, fmt.Errorf("PN payload must be 16 bytes, got %d", len(payload))
	}
	high, err := encoding.ReadUint32BothEndian(payload[0:8])
	if err != nil {
		return nil, err
	}
	low, err := encoding.ReadUint32BothEndian(payload[8:16])
	if err != nil {
		return nil, err
	}
	return &PNEntry{High: high, Low: low}, nil
}

// Component flag bits for an SL entry's component records.
const (
	CompContinue   = 0x01
	CompCurrent    = 0x02
	CompParent     = 0x04
	CompRoot       = 0x08
	CompVolumeRoot = 0x10
	CompHost       = 0x20
)

// SLComponent is one component record of a symlink target.
type SLComponent struct {
	Flags byte
	Bytes []byte
}

func (c SLComponent) serialize() []byte {
	return append([]byte{c.Flags, byte(len(c.Bytes))}, c.Bytes...)
}

// SLEntry ("SL") carries one or more components of a symbolic link target. A
// single logical target may span multiple SL entries (ContinuesInNext) and
// may split a single named component across two entries (component's
// CompContinue bit).
type SLEntry struct {
	ContinuesInNext bool
	Components      []SLComponent
}

func (e *SLEntry) Signature() string { return "SL" }

func (e *SLEntry) Serialize() []byte {
	var payload []byte
	flags := byte(0)
	if e.ContinuesInNext {
		flags = 0x01
	}
	payload = append(payload, flags)
	for _, c := range e.Components {
		payload = append(payload, c.serialize()...)
	}
	return append(header("SL", len(payload), 1), payload...)
}

func parseSL(payload []byte) (*SLEntry, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("SL payload too short")
	}
	entry := &SLEntry{ContinuesInNext: payload[0]&0x01 != 0}
	off := 1
	for off < len(payload) {
		if off+2 > len(payload) {
			return nil, fmt.Errorf("SL component header truncated")
		}
		flags := payload[off]
		clen := int(payload[off+1])
		off += 2
		if off+clen > len(payload) {
			return nil, fmt.Errorf("SL component overruns payload")
		}
		entry.Components = append(entry.Components, SLComponent{Flags: flags, Bytes: append([]byte(nil), payload[off:off+clen]...)})
		off += clen
	}
	return entry, nil
}

// NM flag bits.
const (
	NMContinue  = 0x01
	NMCurrent   = 0x02
	NMParent    = 0x04
	NMHost      = 0x20
)

// NMEntry ("NM") carries an alternate (long) name, possibly spanning
// multiple NM entries via the continue flag.
type NMEntry struct {
	Flags byte
	Name  []byte
}

func (e *NMEntry) Signature() string { return "NM" }

func (e *NMEntry) Serialize() []byte {
	payload := append([]byte{e.Flags}, e.Name...)
	return append(header("NM", len(payload), 1), payload...)
}

func parseNM(payload []byte) (*NMEntry, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("NM payload too short")
	}
	return &NMEntry{Flags: payload[0], Name: append([]byte(nil), payload[1:]...)}, nil
}

// TF flag bits: which timestamp slots are present, and whether they use the
// 17-byte long form instead of the 7-byte recorded-date form.
const (
	TFCreation     = 0x01
	TFModification = 0x02
	TFAccess       = 0x04
	TFAttributes   = 0x08
	TFBackup       = 0x10
	TFExpiration   = 0x20
	TFEffective    = 0x40
	TFLongForm     = 0x80
)

var tfSlotOrder = []byte{TFCreation, TFModification, TFAccess, TFAttributes, TFBackup, TFExpiration, TFEffective}

// TFEntry ("TF") carries a subset of the seven named timestamps, each 7 or 17
// bytes depending on the long-form bit.
type TFEntry struct {
	Flags      byte
	Recorded   map[byte]encoding.RecordedDate
	Long       map[byte]encoding.LongDate
}

func (e *TFEntry) Signature() string { return "TF" }

func (e *TFEntry) longForm() bool { return e.Flags&TFLongForm != 0 }

func (e *TFEntry) Serialize() []byte {
	var payload []byte
	payload = append(payload, e.Flags)
	for _, slot := range tfSlotOrder {
		if e.Flags&slot == 0 {
			continue
		}
		if e.longForm() {
			d := e.Long[slot]
			payload = append(payload, d.Encode()...)
		} else {
			d := e.Recorded[slot]
			payload = append(payload, d.Encode()...)
		}
	}
	return append(header("TF", len(payload), 1), payload...)
}

func parseTF(payload []byte) (*TFEntry, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("TF payload too short")
	}
	entry := &TFEntry{Flags: payload[0], Recorded: map[byte]encoding.RecordedDate{}, Long: map[byte]encoding.LongDate{}}
	stride := 7
	if entry.longForm() {
		stride = 17
	}
	off := 1
	for _, slot := range tfSlotOrder {
		if entry.Flags&slot == 0 {
			continue
		}
		if off+stride > len(payload) {
			return nil, fmt.Errorf("TF payload truncated at slot %#x", slot)
		}
		if entry.longForm() {
			d, err := encoding.DecodeLongDate(payload[off : off+stride])
			if err != nil {
				return nil, err
			}
			entry.Long[slot] = d
		} else {
			d, err := encoding.DecodeRecordedDate(payload[off : off+stride])
			if err != nil {
				return nil, err
			}
			entry.Recorded[slot] = d
		}
		off += stride
	}
	return entry, nil
}

// SFEntry ("SF") carries a sparse file's virtual (logical) size.
type SFEntry struct {
	VirtualSize uint64
}

func (e *SFEntry) Signature() string { return "SF" }

func (e *SFEntry) Serialize() []byte {
	buf := make([]byte, 16)
	encoding.WriteUint32BothEndian(buf[0:8], uint32(e.VirtualSize>>32))
	encoding.WriteUint32BothEndian(buf[8:16], uint32(e.VirtualSize))
	return append(header("SF", len(buf), 1), buf...)
}

func parseSF(payload []byte) (*SFEntry, error) {
	if len(payload) != 16 {
		return nil, fmt.Errorf("SF payload must be 16 bytes, got %d", len(payload))
	}
	hi, err := encoding.ReadUint32BothEndian(payload[0:8])
	if err != nil {
		return nil, err
	}
	lo, err := encoding.ReadUint32BothEndian(payload[8:16])
	if err != nil {
		return nil, err
	}
	return &SFEntry{VirtualSize: uint64(hi)<<32 | uint64(lo)}, nil
}
