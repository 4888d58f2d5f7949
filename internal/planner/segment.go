package planner

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"
)

// Session numbering bounds. Sessions 1-6 are the morning, 7-12 the
// afternoon and 13-16 the evening.
const (
	MinSession = 1
	MaxSession = 16
)

// ErrInvalidSegment marks a segment that breaks the date or session bounds.
var ErrInvalidSegment = errors.New("invalid segment")

// Segment is one weekly recurring block of a class option.
type Segment struct {
	StartDate    Date
	EndDate      Date
	Weekday      int
	StartSession int
	EndSession   int
}

// Validate checks the normalised invariants produced by ingestion.
func (s Segment) Validate() error {
	if s.EndDate < s.StartDate {
		return fmt.Errorf("%w: end date %s before start date %s", ErrInvalidSegment, s.EndDate, s.StartDate)
	}
	if s.Weekday < 0 || s.Weekday > 6 {
		return fmt.Errorf("%w: weekday %d outside 0-6", ErrInvalidSegment, s.Weekday)
	}
	if s.StartSession < MinSession || s.EndSession > MaxSession || s.StartSession > s.EndSession {
		return fmt.Errorf("%w: sessions %d-%d outside %d-%d", ErrInvalidSegment, s.StartSession, s.EndSession, MinSession, MaxSession)
	}
	return nil
}

// Weeks counts the weekly occurrences spanned by the segment's date range.
func (s Segment) Weeks() int {
	return weeksBetween(s.StartDate, s.EndDate)
}

// Covers reports whether the segment occupies the given day and session.
func (s Segment) Covers(date Date, session int) bool {
	return s.StartDate <= date && date <= s.EndDate &&
		date.Weekday() == s.Weekday &&
		s.StartSession <= session && session <= s.EndSession
}

func weeksBetween(start, end Date) int {
	if end < start {
		return 0
	}
	return int(end-start)/7 + 1
}

// SessionMask is a bitset over the positions of a SessionAxis.
type SessionMask uint32

// Count returns the number of sessions in the mask.
func (m SessionMask) Count() int {
	return bits.OnesCount32(uint32(m))
}

// SessionAxis is the ordered list of sessions shown on the grid.
type SessionAxis []int

// DefaultSessionAxis returns sessions 1 through 16.
func DefaultSessionAxis() SessionAxis {
	axis := make(SessionAxis, 0, MaxSession)
	for s := MinSession; s <= MaxSession; s++ {
		axis = append(axis, s)
	}
	return axis
}

// Normalize sorts and deduplicates the axis and rejects sessions outside
// 1-16. An empty axis normalises to the default one.
func (a SessionAxis) Normalize() (SessionAxis, error) {
	if len(a) == 0 {
		return DefaultSessionAxis(), nil
	}
	seen := make(map[int]struct{}, len(a))
	result := make(SessionAxis, 0, len(a))
	for _, session := range a {
		if session < MinSession || session > MaxSession {
			return nil, fmt.Errorf("session %d outside %d-%d", session, MinSession, MaxSession)
		}
		if _, ok := seen[session]; ok {
			continue
		}
		seen[session] = struct{}{}
		result = append(result, session)
	}
	sort.Ints(result)
	return result, nil
}

// Mask encodes the sessions of seg that appear on the axis. Bit i stands for
// a[i], so masks built from the same axis line up.
func (a SessionAxis) Mask(seg Segment) SessionMask {
	var mask SessionMask
	for i, session := range a {
		if i >= 32 {
			break
		}
		if seg.StartSession <= session && session <= seg.EndSession {
			mask |= 1 << uint(i)
		}
	}
	return mask
}
