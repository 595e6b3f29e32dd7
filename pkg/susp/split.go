package susp

// SplitNM implements the NM splitting rule of the SUSP area assembler: given
// a soft byte budget (including the 4-byte entry header), return a first
// fragment that fits within budget and a second fragment carrying whatever
// remains. ok is false when budget can't hold an empty NM header, or when it
// holds only that header and the name is non-empty.
func SplitNM(e *NMEntry, budget int) (first, second *NMEntry, ok bool) {
	usable := budget - 5 // 2 sig + 1 len + 1 ver + 1 flags
	if usable < 0 {
		return nil, nil, false
	}
	if len(e.Name) <= usable {
		return &NMEntry{Flags: e.Flags &^ NMContinue, Name: e.Name},
			&NMEntry{Flags: 0, Name: nil},
			true
	}
	if usable == 0 {
		return nil, nil, false
	}
	return &NMEntry{Flags: e.Flags | NMContinue, Name: e.Name[:usable]},
		&NMEntry{Flags: e.Flags, Name: e.Name[usable:]},
		true
}

// SplitSL implements the SL splitting rule. Components that fully fit join
// first; a component that partially fits is split at the byte boundary with
// its component-continue bit set on the fragment placed in first. The
// entry-level continues-in-next flag of first is always true; second's is
// true iff the original continued or components remain.
func SplitSL(e *SLEntry, budget int) (first, second *SLEntry, ok bool) {
	usable := budget - 5
	if usable < 0 {
		return nil, nil, false
	}
	var firstComps, secondComps []SLComponent
	used := 0
	i := 0
	for ; i < len(e.Components); i++ {
		c := e.Components[i]
		need := 2 + len(c.Bytes)
		if used+need <= usable {
			firstComps = append(firstComps, c)
			used += need
			continue
		}
		remaining := usable - used
		if remaining > 2 {
			partialLen := remaining - 2
			firstComps = append(firstComps, SLComponent{Flags: c.Flags | CompContinue, Bytes: c.Bytes[:partialLen]})
			secondComps = append(secondComps, SLComponent{Flags: c.Flags, Bytes: c.Bytes[partialLen:]})
			i++
		}
		break
	}
	secondComps = append(secondComps, e.Components[i:]...)

	if len(firstComps) == 0 {
		return nil, nil, false
	}

	return &SLEntry{ContinuesInNext: true, Components: firstComps},
		&SLEntry{ContinuesInNext: e.ContinuesInNext || len(secondComps) > 0, Components: secondComps},
		true
}
