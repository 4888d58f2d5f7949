package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fixtures ---

func mustYMD(t *testing.T, value int) Date {
	t.Helper()
	d, err := DateFromYMD(value)
	require.NoError(t, err)
	return d
}

func weekly(t *testing.T, weekday, startSession, endSession int) Segment {
	return Segment{
		StartDate:    mustYMD(t, 20250901),
		EndDate:      mustYMD(t, 20251201),
		Weekday:      weekday,
		StartSession: startSession,
		EndSession:   endSession,
	}
}

func option(subject, code string, majors []string, segments ...Segment) ClassOption {
	return ClassOption{SubjectName: subject, ClassCode: code, Majors: majors, Segments: segments}
}

// exampleCatalog builds the two-subject scenario: A1 Mon 1-4, A2 Tue 1-4,
// B1 Mon 3-6, B2 Wed 1-4, all over 2025-09-01..2025-12-01.
func exampleCatalog(t *testing.T) Catalog {
	return Catalog{Majors: []Major{{
		Name: "AT19",
		Subjects: []Subject{
			{
				Name:              "A",
				DisplayOnCalendar: true,
				Classes: []ClassOption{
					option("A", "A1", []string{"AT19"}, weekly(t, 1, 1, 4)),
					option("A", "A2", []string{"AT19"}, weekly(t, 2, 1, 4)),
				},
			},
			{
				Name:              "B",
				DisplayOnCalendar: true,
				Classes: []ClassOption{
					option("B", "B1", []string{"AT19"}, weekly(t, 1, 3, 6)),
					option("B", "B2", []string{"AT19"}, weekly(t, 3, 1, 4)),
				},
			},
		},
	}}}
}

func semesterDates(t *testing.T) []Date {
	return DateRange(mustYMD(t, 20250901), mustYMD(t, 20251201))
}

func selectedCodes(c Catalog) map[string]string {
	result := map[string]string{}
	for _, major := range c.Majors {
		for _, subject := range major.Subjects {
			result[major.Name+"/"+subject.Name] = subject.SelectedClass
		}
	}
	return result
}

// --- Tests ---

func TestAutoPicksFirstZeroOverlapCombination(t *testing.T) {
	catalog := exampleCatalog(t)
	res, err := Auto(context.Background(), AutoRequest{
		Request:   Request{Catalog: catalog, Dates: semesterDates(t)},
		Threshold: DefaultThreshold,
	})
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.False(t, res.IsConflict)
	assert.Equal(t, 0, res.Overlap)
	// (A1,B1) overlaps by 28 and is pruned; the remaining three tie at zero.
	assert.Equal(t, 3, res.Candidates)
	assert.Equal(t, map[string]string{"AT19/A": "A1", "AT19/B": "B2"}, selectedCodes(res.Catalog))
	assert.Empty(t, res.Grid.Conflicts())

	// Input catalog is untouched.
	assert.Equal(t, map[string]string{"AT19/A": "", "AT19/B": ""}, selectedCodes(catalog))
}

func TestAutoCyclicIndexWrapsAround(t *testing.T) {
	catalog := exampleCatalog(t)
	run := func(k int) Result {
		res, err := Auto(context.Background(), AutoRequest{
			Request:     Request{Catalog: catalog, Dates: semesterDates(t)},
			Threshold:   DefaultThreshold,
			CyclicIndex: k,
		})
		require.NoError(t, err)
		return res
	}

	second := run(1)
	assert.Equal(t, map[string]string{"AT19/A": "A2", "AT19/B": "B1"}, selectedCodes(second.Catalog))
	assert.Equal(t, 1, second.Index)

	for k := 0; k < 3; k++ {
		assert.Equal(t, selectedCodes(run(k).Catalog), selectedCodes(run(k+3).Catalog))
	}
}

func TestAutoNoViableAssignmentLeavesInputs(t *testing.T) {
	catalog := exampleCatalog(t)
	catalog.Majors[0].Subjects[1].Classes = nil
	current := Grid{
		Dates:    []Date{mustYMD(t, 20250901)},
		Sessions: SessionAxis{1},
		Table:    Table{{Date: mustYMD(t, 20250901), Session: 1}: {{SubjectName: "X", ClassCode: "X1"}}},
	}

	res, err := Auto(context.Background(), AutoRequest{
		Request:   Request{Catalog: catalog, Dates: semesterDates(t), Grid: current},
		Threshold: DefaultThreshold,
	})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.False(t, res.IsConflict)
	assert.Equal(t, current, res.Grid)
	assert.Equal(t, catalog, res.Catalog)
}

func TestAutoZeroDisplayedSubjects(t *testing.T) {
	catalog := exampleCatalog(t)
	for i := range catalog.Majors[0].Subjects {
		catalog.Majors[0].Subjects[i].DisplayOnCalendar = false
	}
	res, err := Auto(context.Background(), AutoRequest{
		Request:   Request{Catalog: catalog, Dates: semesterDates(t)},
		Threshold: DefaultThreshold,
	})
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, 1, res.Candidates)
	assert.Empty(t, res.Assignment)
	assert.Empty(t, res.Grid.Occupied())
}

func TestAutoAppliesChoiceToEveryListedCohort(t *testing.T) {
	shared := option("Math", "M1", []string{"C6", "D5"}, weekly(t, 1, 1, 2))
	catalog := Catalog{Majors: []Major{
		{Name: "C6", Subjects: []Subject{{Name: "Math", DisplayOnCalendar: true, Classes: []ClassOption{shared}}}},
		{Name: "D5", Subjects: []Subject{{Name: "Math", Classes: []ClassOption{shared}}}},
		{Name: "E1", Subjects: []Subject{{Name: "Physics"}}},
	}}

	res, err := Auto(context.Background(), AutoRequest{
		Request:   Request{Catalog: catalog, Dates: semesterDates(t)},
		Threshold: DefaultThreshold,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"C6/Math": "M1", "D5/Math": "M1", "E1/Physics": ""}, selectedCodes(res.Catalog))
	require.Len(t, res.Assignment, 1)
	assert.Equal(t, "M1", res.Assignment[0].ClassCode)
}

func TestAutoHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Auto(ctx, AutoRequest{
		Request:   Request{Catalog: exampleCatalog(t), Dates: semesterDates(t)},
		Threshold: DefaultThreshold,
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManualMarksConflictingSlots(t *testing.T) {
	catalog := exampleCatalog(t).WithSelections([]Selection{
		{SubjectName: "A", ClassCode: "A1", Majors: []string{"AT19"}},
		{SubjectName: "B", ClassCode: "B1", Majors: []string{"AT19"}},
	})
	res := Manual(Request{Catalog: catalog, Dates: semesterDates(t)})

	assert.True(t, res.Found)
	assert.True(t, res.IsConflict)

	conflicts := res.Grid.Conflicts()
	assert.Len(t, conflicts, 28)
	for _, slot := range conflicts {
		assert.Equal(t, 1, slot.Date.Weekday())
		assert.Contains(t, []int{3, 4}, slot.Session)
		assert.Len(t, res.Grid.At(slot.Date, slot.Session), 2)
	}

	monday := mustYMD(t, 20250908)
	assert.Len(t, res.Grid.At(monday, 1), 1)
	assert.Len(t, res.Grid.At(monday, 6), 1)
	assert.Empty(t, res.Grid.At(monday, 7))
	assert.Empty(t, res.Grid.At(monday+1, 3))
}

func TestDisplayedKeepsFirstPositionAndLastClassList(t *testing.T) {
	catalog := Catalog{Majors: []Major{
		{Name: "C6", Subjects: []Subject{
			{Name: "Math", DisplayOnCalendar: true, Classes: []ClassOption{option("Math", "M1", []string{"C6"}, weekly(t, 1, 1, 4))}},
			{Name: "Phys", DisplayOnCalendar: true, Classes: []ClassOption{option("Phys", "P1", []string{"C6"}, weekly(t, 1, 1, 4))}},
		}},
		{Name: "D5", Subjects: []Subject{
			{Name: "Math", DisplayOnCalendar: true, Classes: []ClassOption{option("Math", "M2", []string{"D5"}, weekly(t, 2, 1, 4))}},
		}},
	}}

	displayed := catalog.Displayed()
	require.Len(t, displayed, 2)
	assert.Equal(t, "Math", displayed[0].Subject.Name)
	assert.Equal(t, "D5", displayed[0].Major)
	assert.Equal(t, "M2", displayed[0].Subject.Classes[0].ClassCode)
	assert.Equal(t, "Phys", displayed[1].Subject.Name)

	res, err := Auto(context.Background(), AutoRequest{
		Request:   Request{Catalog: catalog, Dates: semesterDates(t)},
		Threshold: 100,
	})
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, 0, res.Overlap)
	assert.False(t, res.IsConflict)
	require.Len(t, res.Assignment, 2)
	assert.Equal(t, "M2", res.Assignment[0].ClassCode)
	assert.Equal(t, "P1", res.Assignment[1].ClassCode)
	assert.Equal(t, map[string]string{"C6/Math": "", "C6/Phys": "P1", "D5/Math": "M2"}, selectedCodes(res.Catalog))
	assert.Empty(t, res.Grid.Conflicts())
}

func TestMaterializeCountsEachSelectedClassOnce(t *testing.T) {
	monday := mustYMD(t, 20250908)
	shared := option("Math", "M1", []string{"C6", "D5"}, weekly(t, 1, 1, 2))
	overlapping := option("Lab", "L1", []string{"C6"}, weekly(t, 1, 1, 4), weekly(t, 1, 3, 6))

	tests := []struct {
		name         string
		catalog      Catalog
		wantOccupied int
		wantConflict bool
		session      int
		wantAtMonday int
	}{
		{
			name: "unknown selection adds nothing",
			catalog: Catalog{Majors: []Major{{Name: "C6", Subjects: []Subject{
				{Name: "Math", DisplayOnCalendar: true, SelectedClass: "M9", Classes: []ClassOption{shared}},
			}}}},
			session: 1,
		},
		{
			name: "hidden subject keeps its selection off the grid",
			catalog: Catalog{Majors: []Major{{Name: "C6", Subjects: []Subject{
				{Name: "Math", SelectedClass: "M1", Classes: []ClassOption{shared}},
			}}}},
			session: 1,
		},
		{
			name: "own segments covering the same slot",
			catalog: Catalog{Majors: []Major{{Name: "C6", Subjects: []Subject{
				{Name: "Lab", DisplayOnCalendar: true, SelectedClass: "L1", Classes: []ClassOption{overlapping}},
			}}}},
			// 14 Mondays, sessions 1-6.
			wantOccupied: 84,
			session:      3,
			wantAtMonday: 1,
		},
		{
			name: "same class selected by two cohorts",
			catalog: Catalog{Majors: []Major{
				{Name: "C6", Subjects: []Subject{{Name: "Math", DisplayOnCalendar: true, SelectedClass: "M1", Classes: []ClassOption{shared}}}},
				{Name: "D5", Subjects: []Subject{{Name: "Math", DisplayOnCalendar: true, SelectedClass: "M1", Classes: []ClassOption{shared}}}},
			}},
			wantOccupied: 28,
			session:      1,
			wantAtMonday: 1,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			grid, conflict := Materialize(tc.catalog, semesterDates(t), nil)
			assert.Equal(t, tc.wantConflict, conflict)
			assert.Len(t, grid.Occupied(), tc.wantOccupied)
			assert.Empty(t, grid.Conflicts())
			assert.Len(t, grid.At(monday, tc.session), tc.wantAtMonday)
		})
	}
}
