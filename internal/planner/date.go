package planner

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	secondsADay = 24 * 60 * 60
)

// Date is a calendar day counted from 1970-01-01. Dates compare with the
// ordinary integer operators and subtract to a whole number of days.
type Date int

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsADay)
}

// ParseDate reads a YYYY-MM-DD string.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return DateOf(t), nil
}

// DateFromYMD converts the ingestion format (e.g. 20250901) into a Date.
func DateFromYMD(value int) (Date, error) {
	y, m, d := value/10000, value/100%100, value%100
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if value <= 0 || t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return 0, fmt.Errorf("invalid YYYYMMDD date %d", value)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Unix(int64(d)*secondsADay, 0).UTC()
}

// Weekday returns 0-6 with 0 = Sunday.
func (d Date) Weekday() int {
	// 1970-01-01 was a Thursday.
	w := (int(d) + 4) % 7
	if w < 0 {
		w += 7
	}
	return w
}

// YMD returns the ingestion integer form, e.g. 20250901.
func (d Date) YMD() int {
	y, m, day := d.Time().Date()
	return y*10000 + int(m)*100 + day
}

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

// MarshalJSON renders the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD" strings and YYYYMMDD numbers.
func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return fmt.Errorf("date is required")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseDate(s)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("parse date %s: %w", raw, err)
	}
	parsed, err := DateFromYMD(value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		parsed, err := ParseDate(firstDateToken(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		parsed, err := ParseDate(firstDateToken(string(v)))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case int64:
		parsed, err := DateFromYMD(int(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into planner.Date", src)
	}
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.Time(), nil
}

// DateRange lists every day from from to to inclusive. It returns nil when
// to precedes from.
func DateRange(from, to Date) []Date {
	if to < from {
		return nil
	}
	dates := make([]Date, 0, int(to-from)+1)
	for d := from; d <= to; d++ {
		dates = append(dates, d)
	}
	return dates
}

func firstDateToken(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) > len(dateLayout) {
		return raw[:len(dateLayout)]
	}
	return raw
}
