package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCalendarDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    CalendarDate
		wantErr bool
	}{
		{name: "iso date", input: "2026-03-15", want: CalendarDate{Year: 2026, Month: 3, Day: 15}},
		{name: "day first", input: "15-03-2026", want: CalendarDate{Year: 2026, Month: 3, Day: 15}},
		{name: "with spaces", input: "  2026-03-15  ", want: CalendarDate{Year: 2026, Month: 3, Day: 15}},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "not-a-date", wantErr: true},
		{name: "bad month", input: "2026-13-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCalendarDate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCalendarDateRFC3339(t *testing.T) {
	// Полная метка нормализуется к локальному дню.
	local := time.Date(2026, 7, 9, 14, 30, 0, 0, time.Local)

	got, err := ParseCalendarDate(local.Format(time.RFC3339))
	require.NoError(t, err)
	assert.Equal(t, CalendarDate{Year: 2026, Month: 7, Day: 9}, got)
}

func TestCalendarDateCompare(t *testing.T) {
	d := CalendarDate{Year: 2026, Month: 6, Day: 15}

	assert.Equal(t, 0, d.Compare(CalendarDate{Year: 2026, Month: 6, Day: 15}))
	assert.Equal(t, -1, d.Compare(CalendarDate{Year: 2026, Month: 6, Day: 16}))
	assert.Equal(t, 1, d.Compare(CalendarDate{Year: 2026, Month: 6, Day: 14}))
	assert.Equal(t, -1, d.Compare(CalendarDate{Year: 2027, Month: 1, Day: 1}))
	assert.Equal(t, 1, d.Compare(CalendarDate{Year: 2025, Month: 12, Day: 31}))
}

func TestSameMonthDay(t *testing.T) {
	birthday := CalendarDate{Year: 1990, Month: 8, Day: 29}

	assert.True(t, birthday.SameMonthDay(CalendarDate{Year: 2026, Month: 8, Day: 29}))
	assert.False(t, birthday.SameMonthDay(CalendarDate{Year: 2026, Month: 8, Day: 30}))
	assert.False(t, birthday.SameMonthDay(CalendarDate{Year: 2026, Month: 9, Day: 29}))
}

func TestCalendarDateAt(t *testing.T) {
	d := CalendarDate{Year: 2026, Month: 5, Day: 20}

	got, err := d.At("09:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 20, 9, 30, 0, 0, time.Local), got)

	_, err = d.At("25:00")
	assert.Error(t, err)
}

func TestStartOfDay(t *testing.T) {
	d := CalendarDate{Year: 2026, Month: 5, Day: 20}
	assert.Equal(t, time.Date(2026, 5, 20, 0, 0, 0, 0, time.Local), d.StartOfDay())
}

func TestMinutesOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{input: "00:00", want: 0},
		{input: "09:15", want: 555},
		{input: "22:00", want: 1320},
		{input: "23:59", want: 1439},
		{input: "24:00", wantErr: true},
		{input: "09:60", wantErr: true},
		{input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		got, err := MinutesOfDay(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		assert.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestDateOf(t *testing.T) {
	moment := time.Date(2026, 2, 28, 23, 59, 59, 0, time.Local)
	assert.Equal(t, CalendarDate{Year: 2026, Month: 2, Day: 28}, DateOf(moment))
}
