package planner

import (
	"fmt"
	"strings"
)

// Band is an optional preference for packing sessions into one part of the
// day. It only breaks ties between equally overlapping combinations.
type Band int

const (
	BandNone Band = iota
	BandMorning
	BandAfternoon
	BandEvening
)

// Range returns the inclusive session bounds of the band. ok is false for
// BandNone.
func (b Band) Range() (start, end int, ok bool) {
	switch b {
	case BandMorning:
		return 1, 6, true
	case BandAfternoon:
		return 7, 12, true
	case BandEvening:
		return 13, 16, true
	default:
		return 0, 0, false
	}
}

func (b Band) String() string {
	switch b {
	case BandMorning:
		return "morning"
	case BandAfternoon:
		return "afternoon"
	case BandEvening:
		return "evening"
	default:
		return "none"
	}
}

// ParseBand accepts none/morning/afternoon/evening and the legacy auto mode
// names (refer-non-overlap, refer-non-overlap-morning, ...).
func ParseBand(raw string) (Band, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.TrimPrefix(name, "refer-non-overlap")
	name = strings.TrimPrefix(name, "-")
	switch name {
	case "", "none":
		return BandNone, nil
	case "morning":
		return BandMorning, nil
	case "afternoon":
		return BandAfternoon, nil
	case "evening":
		return BandEvening, nil
	default:
		return BandNone, fmt.Errorf("unknown band %q", raw)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (b Band) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Band) UnmarshalText(text []byte) error {
	parsed, err := ParseBand(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// BandSessions counts the session-instances of opt that fall inside band
// over the whole semester. It is a static property of the class.
func BandSessions(opt ClassOption, band Band) int {
	start, end, ok := band.Range()
	if !ok {
		return 0
	}
	total := 0
	for _, seg := range opt.Segments {
		lo := max(start, seg.StartSession)
		hi := min(end, seg.EndSession)
		if lo > hi {
			continue
		}
		total += (hi - lo + 1) * seg.Weeks()
	}
	return total
}
