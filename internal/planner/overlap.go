package planner

type encodedSegment struct {
	start   Date
	end     Date
	weekday int
	mask    SessionMask
}

// EncodedClass is a class option with its session masks precomputed for one
// session axis.
type EncodedClass struct {
	segments []encodedSegment
}

// EncodeClass precomputes the masks of every segment of opt.
func EncodeClass(opt ClassOption, axis SessionAxis) EncodedClass {
	segments := make([]encodedSegment, 0, len(opt.Segments))
	for _, seg := range opt.Segments {
		segments = append(segments, encodedSegment{
			start:   seg.StartDate,
			end:     seg.EndDate,
			weekday: seg.Weekday,
			mask:    axis.Mask(seg),
		})
	}
	return EncodedClass{segments: segments}
}

// Overlap counts the session-instances (session x week) two encoded classes
// share across the semester.
func Overlap(a, b EncodedClass) int {
	total := 0
	for _, sa := range a.segments {
		for _, sb := range b.segments {
			if sa.weekday != sb.weekday {
				continue
			}
			shared := (sa.mask & sb.mask).Count()
			if shared == 0 {
				continue
			}
			weeks := weeksBetween(maxDate(sa.start, sb.start), minDate(sa.end, sb.end))
			total += weeks * shared
		}
	}
	return total
}

// OverlapOptions encodes both options on axis and returns their overlap.
func OverlapOptions(a, b ClassOption, axis SessionAxis) int {
	return Overlap(EncodeClass(a, axis), EncodeClass(b, axis))
}

func maxDate(a, b Date) Date {
	if a > b {
		return a
	}
	return b
}

func minDate(a, b Date) Date {
	if a < b {
		return a
	}
	return b
}
