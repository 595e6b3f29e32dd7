package susp

import (
	"fmt"

	"github.com/rstms/isokit/pkg/encoding"
)

// Area is the logical concatenation of a directory record's system-use
// trailer with zero or more externally allocated continuations, linked by CE
// entries. Use NewArea to begin assembling one from a record's trailer, then
// call AddContinuation repeatedly (driven by the caller's own block reads)
// until Complete reports true.
type Area struct {
	Entries   []Entry
	pendingCE *CEEntry
	complete  bool
	visited   map[string]bool
}

// NewArea begins assembling a SUSP area from a directory record's system-use
// trailer bytes.
func NewArea(trailer []byte) *Area {
	a := &Area{visited: map[string]bool{}}
	a.ingest(trailer)
	return a
}

func (a *Area) ingest(data []byte) {
	offset := 0
	for offset < len(data) {
		entry, n, err := Parse(data[offset:])
		if err != nil || n <= 0 {
			break
		}
		a.Entries = append(a.Entries, entry)
		offset += n
		if _, isST := entry.(*STEntry); isST {
			a.complete = true
			a.pendingCE = nil
			return
		}
		if ce, isCE := entry.(*CEEntry); isCE {
			a.pendingCE = ce
		}
	}
	if a.pendingCE == nil {
		a.complete = true
	}
}

// Complete reports whether the area has no outstanding CE to follow.
func (a *Area) Complete() bool { return a.complete }

// NeedsContinuation returns the CE entry the caller must resolve (by reading
// Length bytes at Block*blockSize+Offset) to continue assembling the area.
func (a *Area) NeedsContinuation() (*CEEntry, bool) {
	if a.complete || a.pendingCE == nil {
		return nil, false
	}
	return a.pendingCE, true
}

// AddContinuation appends the bytes read for the pending CE. It returns
// false if the area was already complete, if there was no pending CE, or if
// the new continuation parses to zero entries. A CE pointing at the
// coordinate it was itself resolved from is refused (self-loop prevention).
func (a *Area) AddContinuation(data []byte) bool {
	if a.complete || a.pendingCE == nil {
		return false
	}
	ce := a.pendingCE
	key := fmt.Sprintf("%d:%d", ce.Block, ce.Offset)
	if a.visited[key] {
		a.complete = true
		a.pendingCE = nil
		return false
	}
	a.visited[key] = true
	a.pendingCE = nil

	before := len(a.Entries)
	a.ingest(data)
	if next := a.pendingCE; next != nil && a.visited[fmt.Sprintf("%d:%d", next.Block, next.Offset)] {
		a.complete = true
		a.pendingCE = nil
		return false
	}
	return len(a.Entries) > before
}

// Compact produces the canonical entry list: CE/ST/PD are dropped, NM and SL
// fragments are merged into single logical entries, at most one TF survives
// (first entry wins per-slot, later TFs fill only absent slots), and every
// other entry passes through in order.
func (a *Area) Compact() []Entry {
	var out []Entry
	var pendingNM *NMEntry
	nmDone := false
	var pendingSL *SLEntry
	slDone := false
	var mergedTF *TFEntry

	flushNM := func() {
		if pendingNM != nil {
			out = append(out, pendingNM)
			pendingNM = nil
		}
	}
	flushSL := func() {
		if pendingSL != nil {
			out = append(out, pendingSL)
			pendingSL = nil
		}
	}

	for _, e := range a.Entries {
		switch v := e.(type) {
		case *CEEntry, *STEntry, *PDEntry:
			continue
		case *NMEntry:
			if nmDone {
				continue
			}
			if pendingNM == nil {
				pendingNM = &NMEntry{Flags: v.Flags, Name: append([]byte(nil), v.Name...)}
			} else {
				pendingNM.Name = append(pendingNM.Name, v.Name...)
				pendingNM.Flags |= v.Flags
			}
			if v.Flags&NMContinue == 0 {
				pendingNM.Flags &^= NMContinue
				nmDone = true
				flushNM()
			}
		case *SLEntry:
			if slDone {
				continue
			}
			if pendingSL == nil {
				pendingSL = &SLEntry{ContinuesInNext: v.ContinuesInNext, Components: append([]SLComponent(nil), v.Components...)}
			} else {
				pendingSL.Components = append(pendingSL.Components, v.Components...)
				pendingSL.ContinuesInNext = v.ContinuesInNext
			}
			if !v.ContinuesInNext {
				slDone = true
				flushSL()
			}
		case *TFEntry:
			if mergedTF == nil {
				mergedTF = &TFEntry{Flags: v.Flags, Recorded: copyRecordedDates(v.Recorded), Long: copyLongDates(v.Long)}
				continue
			}
			for _, slot := range tfSlotOrder {
				if mergedTF.Flags&slot != 0 {
					continue // first wins
				}
				if v.Flags&slot == 0 {
					continue
				}
				mergedTF.Flags |= slot
				if mergedTF.longForm() {
					mergedTF.Long[slot] = v.Long[slot]
				} else {
					mergedTF.Recorded[slot] = v.Recorded[slot]
				}
			}
		default:
			out = append(out, e)
		}
	}
	flushNM()
	flushSL()
	if mergedTF != nil {
		out = append(out, mergedTF)
	}
	return out
}

func copyRecordedDates(m map[byte]encoding.RecordedDate) map[byte]encoding.RecordedDate {
	out := make(map[byte]encoding.RecordedDate, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyLongDates(m map[byte]encoding.LongDate) map[byte]encoding.LongDate {
	out := make(map[byte]encoding.LongDate, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
