package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekday(t *testing.T) {
	cases := []struct {
		in   string
		want time.Weekday
	}{
		{"tue", time.Tuesday},
		{"Tuesday", time.Tuesday},
		{" TUES ", time.Tuesday},
		{"mon", time.Monday},
		{"saturday", time.Saturday},
		{"sun", time.Sunday},
	}
	for _, c := range cases {
		got, err := ParseWeekday(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}

	_, err := ParseWeekday("someday")
	assert.Error(t, err)
}

func TestParseTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"09:00", "09:00"},
		{"9:00", "09:00"},
		{"9", "09:00"},
		{"16", "16:00"},
		{"9am", "09:00"},
		{"9 am", "09:00"},
		{"12am", "00:00"},
		{"12pm", "12:00"},
		{"9:30pm", "21:30"},
		{"09h00", "09:00"},
		{"10h", "10:00"},
		{" 7:05 ", "07:05"},
	}
	for _, c := range cases {
		got, err := ParseTime(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "noon", "25:00", "9:75", "99", "13pm"} {
		_, err := ParseTime(in)
		assert.Error(t, err, in)
	}
}

func TestNextDatesFourTuesdays(t *testing.T) {
	// 2025-09-01 is a Monday; the first Tuesday on or after it is the 2nd.
	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	dates := NextDates(time.Tuesday, start, 4)
	require.Len(t, dates, 4)

	want := []string{"2025-09-02", "2025-09-09", "2025-09-16", "2025-09-23"}
	for i, d := range dates {
		assert.Equal(t, want[i], d.Format("2006-01-02"))
		assert.Equal(t, time.Tuesday, d.Weekday())
	}
}

func TestNextDatesStartsOnSameWeekday(t *testing.T) {
	// Starting on a Tuesday includes that very day.
	start := time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)
	dates := NextDates(time.Tuesday, start, 2)
	require.Len(t, dates, 2)
	assert.Equal(t, "2025-09-02", dates[0].Format("2006-01-02"))
	assert.Equal(t, "2025-09-09", dates[1].Format("2006-01-02"))
}

func TestNextDatesZeroWeeks(t *testing.T) {
	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	assert.Nil(t, NextDates(time.Tuesday, start, 0))
	assert.Nil(t, NextDates(time.Tuesday, start, -3))
}

func TestExpandMultiOrdering(t *testing.T) {
	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC) // Monday
	patterns := []Pattern{
		{Weekday: time.Thursday, StartTime: "07:00"},
		{Weekday: time.Tuesday, StartTime: "18:00"},
		{Weekday: time.Tuesday, StartTime: "09:00"},
	}
	occs := ExpandMulti(patterns, start, 2)
	require.Len(t, occs, 6)

	want := []Occurrence{
		{Date: "2025-09-02", StartTime: "09:00"},
		{Date: "2025-09-02", StartTime: "18:00"},
		{Date: "2025-09-04", StartTime: "07:00"},
		{Date: "2025-09-09", StartTime: "09:00"},
		{Date: "2025-09-09", StartTime: "18:00"},
		{Date: "2025-09-11", StartTime: "07:00"},
	}
	assert.Equal(t, want, occs)
}
