package susp

// Allocator grants space for one external continuation. It may grant more
// than requested; the granted size becomes the budget for that region.
type Allocator func(requested int) (block, offset uint32, granted int, err error)

// Region is one contiguous chunk of the emitted SUSP area: either the
// in-record region (Dest == nil) or an externally allocated continuation.
type Region struct {
	Entries []Entry
	Dest    *Destination // nil for the in-record region
}

// Destination names where an externally allocated Region lives.
type Destination struct {
	Block, Offset uint32
}

// Emit lays out content across the in-record region (capped at firstBudget
// bytes) and as many external continuations as needed, returning the
// regions in order with every intermediate CE already pointing at its
// successor's exact (block, offset, length).
func Emit(content []Entry, firstBudget int, alloc Allocator) ([]Region, error) {
	if serializedLen(content) <= firstBudget {
		return []Region{{Entries: content}}, nil
	}

	var regions []Region
	remaining := append([]Entry(nil), content...)
	budget := firstBudget
	dest := (*Destination)(nil)

	for {
		var regionEntries []Entry
		sum := 0
		for len(remaining) > 0 {
			e := remaining[0]
			esize := len(e.Serialize())
			if sum+esize+CELen < budget {
				regionEntries = append(regionEntries, e)
				sum += esize
				remaining = remaining[1:]
				continue
			}
			if first, second, ok := trySplit(e, budget-sum-CELen); ok {
				regionEntries = append(regionEntries, first)
				sum += len(first.Serialize())
				if isEmptyFragment(second) {
					remaining = remaining[1:]
				} else {
					remaining[0] = second
				}
				break
			}
			break
		}

		if len(remaining) == 0 {
			regions = append(regions, Region{Entries: regionEntries, Dest: dest})
			return backfillCE(regions, alloc)
		}

		// Whether or not anything fit alongside it, this region must end in
		// a CE pointing at the continuation holding what remains: a region
		// with nothing else in it still needs that CE, or its continuation
		// is unreachable from a reader walking the entries.
		ce := &CEEntry{} // back-filled below
		regionEntries = append(regionEntries, ce)
		regions = append(regions, Region{Entries: regionEntries, Dest: dest})

		block, offset, granted, err := alloc(serializedLen(remaining))
		if err != nil {
			return nil, err
		}
		dest = &Destination{Block: block, Offset: offset}
		budget = granted
	}
}

func trySplit(e Entry, budget int) (Entry, Entry, bool) {
	switch v := e.(type) {
	case *NMEntry:
		a, b, ok := SplitNM(v, budget)
		if !ok {
			return nil, nil, false
		}
		return a, b, true
	case *SLEntry:
		a, b, ok := SplitSL(v, budget)
		if !ok {
			return nil, nil, false
		}
		return a, b, true
	default:
		return nil, nil, false
	}
}

func isEmptyFragment(e Entry) bool {
	switch v := e.(type) {
	case *NMEntry:
		return len(v.Name) == 0 && v.Flags&NMContinue == 0
	case *SLEntry:
		return len(v.Components) == 0 && !v.ContinuesInNext
	}
	return false
}

func serializedLen(entries []Entry) int {
	n := 0
	for _, e := range entries {
		n += len(e.Serialize())
	}
	return n
}

// backfillCE walks the produced regions and sets each intermediate CE's
// Block/Offset/Length to its successor's exact destination and serialized
// length.
func backfillCE(regions []Region, _ Allocator) ([]Region, error) {
	for i := 0; i < len(regions)-1; i++ {
		next := regions[i+1]
		if next.Dest == nil {
			continue
		}
		entries := regions[i].Entries
		if len(entries) == 0 {
			continue
		}
		last, ok := entries[len(entries)-1].(*CEEntry)
		if !ok {
			continue
		}
		last.Block = next.Dest.Block
		last.Offset = next.Dest.Offset
		last.Length = uint32(serializedLen(next.Entries))
	}
	return regions, nil
}
