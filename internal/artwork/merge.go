package artwork

// Interleave merges per-source result lists by round-robin position:
// merged position i draws one candidate from each list at index i, in the
// order the lists are given, skipping lists already exhausted at that
// index. This balances visual representation across providers instead of
// showing one provider's full list before the next.
func Interleave(lists ...[]Candidate) []Candidate {
	total := 0
	longest := 0
	for _, l := range lists {
		total += len(l)
		if len(l) > longest {
			longest = len(l)
		}
	}

	merged := make([]Candidate, 0, total)
	for i := range longest {
		for _, l := range lists {
			if i < len(l) {
				merged = append(merged, l[i])
			}
		}
	}
	return merged
}
