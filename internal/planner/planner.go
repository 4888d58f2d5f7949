// Package planner picks one class section per subject so that time
// conflicts across a semester are as small as possible, and renders the
// resulting date x session grid. Everything here is a pure function of its
// inputs: results are fresh values and inputs are never modified, so a run
// can be moved to any goroutine without locking.
package planner

import "context"

// Request is the input shared by manual and auto runs.
type Request struct {
	Catalog  Catalog
	Dates    []Date
	Sessions SessionAxis
	// Grid is the caller's current grid. Auto runs hand back a copy of it
	// when no combination fits the budget.
	Grid Grid
}

// AutoRequest adds the search parameters of an auto run.
type AutoRequest struct {
	Request
	Band        Band
	CyclicIndex int
	// Threshold is the overlap budget; callers normally pass DefaultThreshold.
	Threshold int
}

// Result is the outcome of a run.
type Result struct {
	Grid       Grid
	Catalog    Catalog
	IsConflict bool
	// Found is false when an auto run had no combination to pick. The grid
	// and catalog are then the caller's own.
	Found bool
	// Overlap, Candidates, Index and Assignment describe the picked
	// combination of an auto run.
	Overlap    int
	Candidates int
	Index      int
	Assignment []Selection
}

// Manual materializes the grid from the catalog's current selections.
func Manual(req Request) Result {
	grid, conflict := Materialize(req.Catalog, req.Dates, req.Sessions)
	return Result{
		Grid:       grid,
		Catalog:    req.Catalog,
		IsConflict: conflict,
		Found:      true,
	}
}

// Auto searches for the least overlapping combination of classes among the
// displayed subjects, applies the k-th best (k = CyclicIndex, wrapping) to a
// copy of the catalog and materializes its grid. The returned error is only
// ever ctx's.
func Auto(ctx context.Context, req AutoRequest) (Result, error) {
	sessions := req.Sessions
	if len(sessions) == 0 {
		sessions = DefaultSessionAxis()
	}

	displayed := req.Catalog.Displayed()
	candidates := make([][]EncodedClass, len(displayed))
	bandTotals := make([][]int, len(displayed))
	for i, item := range displayed {
		candidates[i] = make([]EncodedClass, 0, len(item.Subject.Classes))
		bandTotals[i] = make([]int, 0, len(item.Subject.Classes))
		for _, opt := range item.Subject.Classes {
			candidates[i] = append(candidates[i], EncodeClass(opt, sessions))
			bandTotals[i] = append(bandTotals[i], BandSessions(opt, req.Band))
		}
	}

	combos, err := Search(ctx, candidates, req.Threshold)
	if err != nil {
		return Result{}, err
	}
	ranked := Rank(combos, bandTotals, req.Band)
	winner, index, ok := Pick(ranked, req.CyclicIndex)
	if !ok {
		return Result{
			Grid:    req.Grid.Clone(),
			Catalog: req.Catalog,
			Found:   false,
		}, nil
	}

	assignment := make([]Selection, 0, len(displayed))
	for i, choice := range winner.Choice {
		item := displayed[i]
		opt := item.Subject.Classes[choice]
		majors := append([]string{item.Major}, opt.Majors...)
		assignment = append(assignment, Selection{
			SubjectName: item.Subject.Name,
			ClassCode:   opt.ClassCode,
			Majors:      majors,
		})
	}

	updated := req.Catalog.WithSelections(assignment)
	grid, _ := Materialize(updated, req.Dates, sessions)
	return Result{
		Grid:       grid,
		Catalog:    updated,
		IsConflict: winner.Overlap > 0,
		Found:      true,
		Overlap:    winner.Overlap,
		Candidates: len(ranked),
		Index:      index,
		Assignment: assignment,
	}, nil
}
