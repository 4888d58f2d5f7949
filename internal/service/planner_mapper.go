package service

import (
	"fmt"
	"sort"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/planner"
)

type classKey struct {
	subject string
	code    string
}

// catalogFromPayload converts the inline subject graph. Every class ends up
// listing all cohorts that offer the same subject and code.
func catalogFromPayload(majors []dto.MajorPayload) planner.Catalog {
	catalog := planner.Catalog{Majors: make([]planner.Major, 0, len(majors))}
	for _, mp := range majors {
		major := planner.Major{Name: mp.Name, Subjects: make([]planner.Subject, 0, len(mp.Subjects))}
		for _, sp := range mp.Subjects {
			subject := planner.Subject{
				Name:              sp.Name,
				DisplayOnCalendar: sp.DisplayOnCalendar,
				SelectedClass:     sp.SelectedClass,
				Classes:           make([]planner.ClassOption, 0, len(sp.Classes)),
			}
			for _, cp := range sp.Classes {
				opt := planner.ClassOption{
					SubjectName: sp.Name,
					ClassCode:   cp.Code,
					Teacher:     cp.Teacher,
					Majors:      append([]string(nil), cp.Majors...),
					Segments:    make([]planner.Segment, 0, len(cp.Segments)),
				}
				for _, seg := range cp.Segments {
					opt.Segments = append(opt.Segments, planner.Segment{
						StartDate:    seg.StartDate,
						EndDate:      seg.EndDate,
						Weekday:      seg.DayOfWeek,
						StartSession: seg.StartSession,
						EndSession:   seg.EndSession,
					})
				}
				subject.Classes = append(subject.Classes, opt)
			}
			major.Subjects = append(major.Subjects, subject)
		}
		catalog.Majors = append(catalog.Majors, major)
	}
	linkSharedClasses(&catalog)
	return catalog
}

// linkSharedClasses sets each class option's Majors to every cohort whose
// graph contains the same subject and code, plus any cohort it already
// listed. The catalog must be freshly built; it is modified in place.
func linkSharedClasses(catalog *planner.Catalog) {
	owners := make(map[classKey][]string)
	seen := make(map[classKey]map[string]struct{})
	add := func(key classKey, major string) {
		if major == "" {
			return
		}
		if seen[key] == nil {
			seen[key] = make(map[string]struct{})
		}
		if _, ok := seen[key][major]; ok {
			return
		}
		seen[key][major] = struct{}{}
		owners[key] = append(owners[key], major)
	}

	for _, major := range catalog.Majors {
		for _, subject := range major.Subjects {
			for _, opt := range subject.Classes {
				add(classKey{subject: subject.Name, code: opt.ClassCode}, major.Name)
			}
		}
	}
	for _, major := range catalog.Majors {
		for _, subject := range major.Subjects {
			for _, opt := range subject.Classes {
				key := classKey{subject: subject.Name, code: opt.ClassCode}
				for _, listed := range opt.Majors {
					add(key, listed)
				}
			}
		}
	}
	for i := range catalog.Majors {
		for j := range catalog.Majors[i].Subjects {
			subject := &catalog.Majors[i].Subjects[j]
			for k := range subject.Classes {
				key := classKey{subject: subject.Name, code: subject.Classes[k].ClassCode}
				subject.Classes[k].Majors = append([]string(nil), owners[key]...)
			}
		}
	}
}

func payloadFromCatalog(catalog planner.Catalog) []dto.MajorPayload {
	majors := make([]dto.MajorPayload, 0, len(catalog.Majors))
	for _, major := range catalog.Majors {
		mp := dto.MajorPayload{Name: major.Name, Subjects: make([]dto.SubjectPayload, 0, len(major.Subjects))}
		for _, subject := range major.Subjects {
			sp := dto.SubjectPayload{
				Name:              subject.Name,
				DisplayOnCalendar: subject.DisplayOnCalendar,
				SelectedClass:     subject.SelectedClass,
				Classes:           make([]dto.ClassPayload, 0, len(subject.Classes)),
			}
			for _, opt := range subject.Classes {
				cp := dto.ClassPayload{
					Code:     opt.ClassCode,
					Teacher:  opt.Teacher,
					Majors:   append([]string(nil), opt.Majors...),
					Segments: make([]dto.SegmentPayload, 0, len(opt.Segments)),
				}
				for _, seg := range opt.Segments {
					cp.Segments = append(cp.Segments, dto.SegmentPayload{
						StartDate:    seg.StartDate,
						EndDate:      seg.EndDate,
						DayOfWeek:    seg.Weekday,
						StartSession: seg.StartSession,
						EndSession:   seg.EndSession,
					})
				}
				sp.Classes = append(sp.Classes, cp)
			}
			mp.Subjects = append(mp.Subjects, sp)
		}
		majors = append(majors, mp)
	}
	return majors
}

// applySelections overlays display toggles and chosen classes onto a copy of
// catalog. Unknown subjects, cohorts and class codes are rejected.
func applySelections(catalog planner.Catalog, selections []dto.SubjectSelection) (planner.Catalog, error) {
	if len(selections) == 0 {
		return catalog, nil
	}
	majors := make([]planner.Major, len(catalog.Majors))
	for i, major := range catalog.Majors {
		majors[i] = planner.Major{Name: major.Name, Subjects: append([]planner.Subject(nil), major.Subjects...)}
	}

	for _, sel := range selections {
		matched := false
		for i := range majors {
			if sel.Major != "" && majors[i].Name != sel.Major {
				continue
			}
			for j := range majors[i].Subjects {
				subject := &majors[i].Subjects[j]
				if subject.Name != sel.Subject {
					continue
				}
				if sel.SelectedClass != "" {
					if _, ok := subject.Class(sel.SelectedClass); !ok {
						return planner.Catalog{}, fmt.Errorf("class %q is not offered for subject %q", sel.SelectedClass, sel.Subject)
					}
				}
				subject.DisplayOnCalendar = sel.DisplayOnCalendar
				subject.SelectedClass = sel.SelectedClass
				matched = true
			}
		}
		if !matched {
			if sel.Major != "" {
				return planner.Catalog{}, fmt.Errorf("subject %q is not offered to %q", sel.Subject, sel.Major)
			}
			return planner.Catalog{}, fmt.Errorf("subject %q is not in the catalog", sel.Subject)
		}
	}
	return planner.Catalog{Majors: majors}, nil
}

// validateCatalog checks every segment and rejects duplicate class codes
// within a subject.
func validateCatalog(catalog planner.Catalog) error {
	for _, major := range catalog.Majors {
		for _, subject := range major.Subjects {
			codes := make(map[string]struct{}, len(subject.Classes))
			for _, opt := range subject.Classes {
				if _, dup := codes[opt.ClassCode]; dup {
					return fmt.Errorf("%s / %s: duplicate class %q", major.Name, subject.Name, opt.ClassCode)
				}
				codes[opt.ClassCode] = struct{}{}
				for _, seg := range opt.Segments {
					if err := seg.Validate(); err != nil {
						return fmt.Errorf("%s / %s / %s: %w", major.Name, subject.Name, opt.ClassCode, err)
					}
				}
			}
		}
	}
	return nil
}

// catalogSpan returns the earliest start and latest end over all segments.
func catalogSpan(catalog planner.Catalog) (from, to planner.Date, ok bool) {
	for _, major := range catalog.Majors {
		for _, subject := range major.Subjects {
			for _, opt := range subject.Classes {
				for _, seg := range opt.Segments {
					if !ok || seg.StartDate < from {
						from = seg.StartDate
					}
					if !ok || seg.EndDate > to {
						to = seg.EndDate
					}
					ok = true
				}
			}
		}
	}
	return from, to, ok
}

func gridFromCells(cells []dto.GridCell, dates []planner.Date, sessions planner.SessionAxis) planner.Grid {
	table := make(planner.Table, len(cells))
	for _, cell := range cells {
		occupants := make([]planner.Occupant, 0, len(cell.Classes))
		for _, oc := range cell.Classes {
			occupants = append(occupants, planner.Occupant{SubjectName: oc.Subject, ClassCode: oc.ClassCode, Teacher: oc.Teacher})
		}
		slot := planner.Slot{Date: cell.Date, Session: cell.Session}
		table[slot] = append(table[slot], occupants...)
	}
	return planner.Grid{Dates: dates, Sessions: sessions, Table: table}
}

// cellsFromGrid lists occupied slots ordered by date then session.
func cellsFromGrid(grid planner.Grid) []dto.GridCell {
	slots := grid.Occupied()
	cells := make([]dto.GridCell, 0, len(slots))
	for _, slot := range slots {
		occupants := grid.At(slot.Date, slot.Session)
		cell := dto.GridCell{
			Date:     slot.Date,
			Session:  slot.Session,
			Conflict: len(occupants) > 1,
			Classes:  make([]dto.OccupantPayload, 0, len(occupants)),
		}
		for _, oc := range occupants {
			cell.Classes = append(cell.Classes, dto.OccupantPayload{Subject: oc.SubjectName, ClassCode: oc.ClassCode, Teacher: oc.Teacher})
		}
		sort.SliceStable(cell.Classes, func(i, j int) bool {
			if cell.Classes[i].Subject != cell.Classes[j].Subject {
				return cell.Classes[i].Subject < cell.Classes[j].Subject
			}
			return cell.Classes[i].ClassCode < cell.Classes[j].ClassCode
		})
		cells = append(cells, cell)
	}
	return cells
}

func assignmentPayload(selections []planner.Selection) []dto.AssignmentPayload {
	if len(selections) == 0 {
		return nil
	}
	result := make([]dto.AssignmentPayload, 0, len(selections))
	for _, sel := range selections {
		result = append(result, dto.AssignmentPayload{
			Subject:   sel.SubjectName,
			ClassCode: sel.ClassCode,
			Majors:    dedupeStrings(sel.Majors),
		})
	}
	return result
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
