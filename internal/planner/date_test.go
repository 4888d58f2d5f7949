package planner

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateConversions(t *testing.T) {
	d := mustYMD(t, 20250901)
	assert.Equal(t, 1, d.Weekday(), "2025-09-01 is a Monday")
	assert.Equal(t, "2025-09-01", d.String())
	assert.Equal(t, 20250901, d.YMD())
	assert.Equal(t, Date(0).Weekday(), 4)

	parsed, err := ParseDate("2025-09-01")
	require.NoError(t, err)
	assert.Equal(t, d, parsed)
	assert.Equal(t, d, DateOf(time.Date(2025, 9, 1, 23, 59, 0, 0, time.FixedZone("ICT", 7*3600))))

	_, err = DateFromYMD(20250231)
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		From Date `json:"from"`
		To   Date `json:"to"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"from":"2025-09-01","to":20251201}`), &payload))
	assert.Equal(t, mustYMD(t, 20250901), payload.From)
	assert.Equal(t, mustYMD(t, 20251201), payload.To)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"2025-09-01","to":"2025-12-01"}`, string(out))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, mustYMD(t, 20250901), d)
	require.NoError(t, d.Scan([]byte("2025-12-01T00:00:00Z")))
	assert.Equal(t, mustYMD(t, 20251201), d)
	assert.Error(t, d.Scan(3.14))
}

func TestDateRange(t *testing.T) {
	dates := DateRange(mustYMD(t, 20250901), mustYMD(t, 20250907))
	require.Len(t, dates, 7)
	assert.Equal(t, 0, dates[6].Weekday())
	assert.Nil(t, DateRange(mustYMD(t, 20250907), mustYMD(t, 20250901)))
}

func TestSegmentValidate(t *testing.T) {
	assert.NoError(t, weekly(t, 1, 1, 16).Validate())

	bad := []Segment{
		{StartDate: mustYMD(t, 20251201), EndDate: mustYMD(t, 20250901), Weekday: 1, StartSession: 1, EndSession: 2},
		{StartDate: mustYMD(t, 20250901), EndDate: mustYMD(t, 20251201), Weekday: 7, StartSession: 1, EndSession: 2},
		{StartDate: mustYMD(t, 20250901), EndDate: mustYMD(t, 20251201), Weekday: 1, StartSession: 0, EndSession: 2},
		{StartDate: mustYMD(t, 20250901), EndDate: mustYMD(t, 20251201), Weekday: 1, StartSession: 5, EndSession: 4},
		{StartDate: mustYMD(t, 20250901), EndDate: mustYMD(t, 20251201), Weekday: 1, StartSession: 15, EndSession: 17},
	}
	for _, seg := range bad {
		assert.ErrorIs(t, seg.Validate(), ErrInvalidSegment)
	}
}

func TestSessionAxisMask(t *testing.T) {
	seg := weekly(t, 1, 3, 5)
	assert.Equal(t, SessionMask(0b11100), DefaultSessionAxis().Mask(seg))
	assert.Equal(t, SessionMask(0b110), SessionAxis{1, 4, 5, 9}.Mask(seg))
	assert.Equal(t, 3, DefaultSessionAxis().Mask(seg).Count())

	inverted := Segment{StartSession: 5, EndSession: 3}
	assert.Zero(t, DefaultSessionAxis().Mask(inverted))

	normalized, err := SessionAxis{7, 1, 7, 3}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, SessionAxis{1, 3, 7}, normalized)
	_, err = SessionAxis{0}.Normalize()
	assert.Error(t, err)
}
