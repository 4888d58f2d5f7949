package planner

import "sort"

// Rank orders combinations by ascending overlap. With a band, ties prefer the
// combination with more in-band sessions; bandTotals[i][j] is the static
// in-band count of candidate j of subject i. Without a band ties keep their
// enumeration order. combos is not modified.
func Rank(combos []Combination, bandTotals [][]int, band Band) []Combination {
	type scored struct {
		combo  Combination
		inBand int
	}
	_, _, useBand := band.Range()

	items := make([]scored, len(combos))
	for i, combo := range combos {
		items[i] = scored{combo: combo}
		if useBand {
			items[i].inBand = inBandTotal(combo, bandTotals)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].combo.Overlap != items[j].combo.Overlap {
			return items[i].combo.Overlap < items[j].combo.Overlap
		}
		return items[i].inBand > items[j].inBand
	})

	ranked := make([]Combination, len(items))
	for i, item := range items {
		ranked[i] = item.combo
	}
	return ranked
}

// Pick returns ranked[k mod len(ranked)] and the index used. ok is false
// when there is nothing to pick.
func Pick(ranked []Combination, k int) (combo Combination, index int, ok bool) {
	if len(ranked) == 0 {
		return Combination{}, 0, false
	}
	index = k % len(ranked)
	if index < 0 {
		index += len(ranked)
	}
	return ranked[index], index, true
}

func inBandTotal(combo Combination, bandTotals [][]int) int {
	total := 0
	for subject, choice := range combo.Choice {
		if subject < len(bandTotals) && choice < len(bandTotals[subject]) {
			total += bandTotals[subject][choice]
		}
	}
	return total
}
