package planner

import "sort"

// Slot addresses one cell of the semester grid.
type Slot struct {
	Date    Date
	Session int
}

// Occupant identifies a class sitting in a slot.
type Occupant struct {
	SubjectName string
	ClassCode   string
	Teacher     string
}

// Table maps every slot of the grid to its occupants.
type Table map[Slot][]Occupant

// Grid is the rendered semester view.
type Grid struct {
	Dates    []Date
	Sessions SessionAxis
	Table    Table
}

// At returns the occupants of a slot.
func (g Grid) At(date Date, session int) []Occupant {
	return g.Table[Slot{Date: date, Session: session}]
}

// Conflicts lists slots holding more than one class, ordered by date then
// session.
func (g Grid) Conflicts() []Slot {
	var slots []Slot
	for slot, occupants := range g.Table {
		if len(occupants) > 1 {
			slots = append(slots, slot)
		}
	}
	sortSlots(slots)
	return slots
}

// Occupied lists non-empty slots ordered by date then session.
func (g Grid) Occupied() []Slot {
	var slots []Slot
	for slot, occupants := range g.Table {
		if len(occupants) > 0 {
			slots = append(slots, slot)
		}
	}
	sortSlots(slots)
	return slots
}

// Clone copies the grid so the result shares nothing with g.
func (g Grid) Clone() Grid {
	clone := Grid{
		Dates:    append([]Date(nil), g.Dates...),
		Sessions: append(SessionAxis(nil), g.Sessions...),
	}
	if g.Table != nil {
		clone.Table = make(Table, len(g.Table))
		for slot, occupants := range g.Table {
			clone.Table[slot] = append([]Occupant(nil), occupants...)
		}
	}
	return clone
}

// Materialize rebuilds the whole table from the selected classes of
// displayed subjects. conflict is true when any slot has more than one
// occupant. A class is listed once per slot however many of its segments
// cover it.
func Materialize(catalog Catalog, dates []Date, sessions SessionAxis) (grid Grid, conflict bool) {
	if len(sessions) == 0 {
		sessions = DefaultSessionAxis()
	}
	selected := catalog.selectedClasses()
	table := make(Table, len(dates)*len(sessions))

	for _, date := range dates {
		for _, session := range sessions {
			var occupants []Occupant
			for _, opt := range selected {
				if occupies(opt, date, session) {
					occupants = append(occupants, Occupant{
						SubjectName: opt.SubjectName,
						ClassCode:   opt.ClassCode,
						Teacher:     opt.Teacher,
					})
				}
			}
			table[Slot{Date: date, Session: session}] = occupants
			if len(occupants) > 1 {
				conflict = true
			}
		}
	}

	return Grid{
		Dates:    append([]Date(nil), dates...),
		Sessions: append(SessionAxis(nil), sessions...),
		Table:    table,
	}, conflict
}

func occupies(opt ClassOption, date Date, session int) bool {
	for _, seg := range opt.Segments {
		if seg.Covers(date, session) {
			return true
		}
	}
	return false
}

func sortSlots(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return slots[i].Session < slots[j].Session
	})
}
