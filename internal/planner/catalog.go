package planner

// ClassOption is one selectable section of a subject. Ingestion may already
// have fused theory and practice codes into one "theory.practice" code.
type ClassOption struct {
	SubjectName string
	ClassCode   string
	Teacher     string
	Majors      []string
	Segments    []Segment
}

// Subject is a course offered to a cohort, together with the user's display
// toggle and current choice.
type Subject struct {
	Name              string
	DisplayOnCalendar bool
	SelectedClass     string
	Classes           []ClassOption
}

// Class looks up a class option by code.
func (s Subject) Class(code string) (ClassOption, bool) {
	for _, opt := range s.Classes {
		if opt.ClassCode == code {
			return opt, true
		}
	}
	return ClassOption{}, false
}

// Selected returns the chosen class option when the subject is displayed and
// its selection resolves.
func (s Subject) Selected() (ClassOption, bool) {
	if !s.DisplayOnCalendar || s.SelectedClass == "" {
		return ClassOption{}, false
	}
	return s.Class(s.SelectedClass)
}

// Major groups the subjects offered to one cohort.
type Major struct {
	Name     string
	Subjects []Subject
}

// Catalog is the whole subject graph of a semester grouped by cohort.
type Catalog struct {
	Majors []Major
}

// DisplayedSubject is a displayed subject and the cohort its class list was
// taken from.
type DisplayedSubject struct {
	Major   string
	Subject Subject
}

// Displayed lists displayed subjects in cohort order. A subject shared by
// several cohorts appears once, at the position of its first displayed
// occurrence, but carries the class list of its last one.
func (c Catalog) Displayed() []DisplayedSubject {
	position := make(map[string]int)
	var result []DisplayedSubject
	for _, major := range c.Majors {
		for _, subject := range major.Subjects {
			if !subject.DisplayOnCalendar {
				continue
			}
			item := DisplayedSubject{Major: major.Name, Subject: subject}
			if i, ok := position[subject.Name]; ok {
				result[i] = item
				continue
			}
			position[subject.Name] = len(result)
			result = append(result, item)
		}
	}
	return result
}

// Selection records the class chosen for a subject and the cohorts that
// should receive the choice.
type Selection struct {
	SubjectName string
	ClassCode   string
	Majors      []string
}

// WithSelections returns a catalog where every cohort named by a selection
// has that subject's SelectedClass set. Cohorts without changes are shared
// with c; c itself is never modified.
func (c Catalog) WithSelections(selections []Selection) Catalog {
	type target struct {
		code   string
		majors map[string]struct{}
	}
	targets := make(map[string]target, len(selections))
	for _, sel := range selections {
		t := target{code: sel.ClassCode, majors: make(map[string]struct{}, len(sel.Majors))}
		for _, major := range sel.Majors {
			t.majors[major] = struct{}{}
		}
		targets[sel.SubjectName] = t
	}

	majors := make([]Major, len(c.Majors))
	for i, major := range c.Majors {
		majors[i] = major
		var subjects []Subject
		for j, subject := range major.Subjects {
			t, ok := targets[subject.Name]
			if !ok {
				continue
			}
			if _, listed := t.majors[major.Name]; !listed {
				continue
			}
			if subjects == nil {
				subjects = make([]Subject, len(major.Subjects))
				copy(subjects, major.Subjects)
			}
			subjects[j].SelectedClass = t.code
		}
		if subjects != nil {
			majors[i].Subjects = subjects
		}
	}
	return Catalog{Majors: majors}
}

// selectedClasses collects the distinct selected class options of displayed
// subjects across all cohorts.
func (c Catalog) selectedClasses() []ClassOption {
	type key struct{ subject, code string }
	seen := make(map[key]struct{})
	var result []ClassOption
	for _, major := range c.Majors {
		for _, subject := range major.Subjects {
			opt, ok := subject.Selected()
			if !ok {
				continue
			}
			k := key{subject: subject.Name, code: opt.ClassCode}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			if opt.SubjectName == "" {
				opt.SubjectName = subject.Name
			}
			result = append(result, opt)
		}
	}
	return result
}
