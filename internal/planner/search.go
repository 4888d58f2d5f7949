package planner

import "context"

// DefaultThreshold is the overlap budget used by auto scheduling.
const DefaultThreshold = 12

// Combination picks one candidate index per subject. Overlap is the sum of
// pairwise overlaps between every two chosen classes.
type Combination struct {
	Choice  []int
	Overlap int
}

// Search enumerates every combination whose running overlap never exceeds
// threshold, depth first in subject order. A subject without candidates
// makes the result empty; no subjects at all yields a single empty
// combination. The only error is ctx's.
func Search(ctx context.Context, candidates [][]EncodedClass, threshold int) ([]Combination, error) {
	s := searcher{ctx: ctx, candidates: candidates, threshold: threshold}
	return s.extend([]int{}, 0)
}

type searcher struct {
	ctx        context.Context
	candidates [][]EncodedClass
	threshold  int
}

// extend returns the complete combinations reachable from partial. Each
// frame appends to a capacity-clipped slice, so no frame sees another's
// choices.
func (s searcher) extend(partial []int, running int) ([]Combination, error) {
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}
	depth := len(partial)
	if depth == len(s.candidates) {
		return []Combination{{Choice: partial, Overlap: running}}, nil
	}

	var found []Combination
	for i, candidate := range s.candidates[depth] {
		total, ok := s.accumulate(partial, candidate, running)
		if !ok {
			continue
		}
		next := append(partial[:depth:depth], i)
		sub, err := s.extend(next, total)
		if err != nil {
			return nil, err
		}
		found = append(found, sub...)
	}
	return found, nil
}

// accumulate adds the overlap of candidate against every chosen class and
// stops as soon as the budget is blown.
func (s searcher) accumulate(partial []int, candidate EncodedClass, running int) (int, bool) {
	total := running
	for depth, choice := range partial {
		total += Overlap(s.candidates[depth][choice], candidate)
		if total > s.threshold {
			return total, false
		}
	}
	return total, total <= s.threshold
}
