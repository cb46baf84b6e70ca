// Package schedule turns weekly recurrence patterns into concrete
// (date, time) occurrences.  Everything here is pure computation; the
// booking service drives the reservation engine once per occurrence.
package schedule

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Pattern is one weekly slot: a weekday plus a start time.
type Pattern struct {
	Weekday   time.Weekday
	StartTime string // "15:04"
}

// Occurrence is a concrete slot generated from a pattern.
type Occurrence struct {
	Date      string // "2006-01-02"
	StartTime string // "15:04"
}

var weekdayNames = map[string]time.Weekday{
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
	"sun": time.Sunday, "sunday": time.Sunday,
}

// ParseWeekday accepts the weekday spellings the chat flows produce
// ("tue", "Tuesday", ...).
func ParseWeekday(s string) (time.Weekday, error) {
	if wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return wd, nil
	}
	return 0, fmt.Errorf("unknown weekday: %q", s)
}

var (
	reHourMin  = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	reHMin     = regexp.MustCompile(`^(\d{1,2})h(\d{2})$`)
	reHOnly    = regexp.MustCompile(`^(\d{1,2})h$`)
	reAmPm     = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)$`)
	reBareHour = regexp.MustCompile(`^(\d{1,2})$`)
)

// ParseTime normalizes the time spellings clients actually type:
// "09:00", "9:00", "9", "9am", "9:30pm", "09h00", "10h".  The result
// is always zero-padded "15:04".
func ParseTime(s string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(s))

	if m := reHMin.FindStringSubmatch(t); m != nil {
		return clockString(atoi(m[1]), atoi(m[2]))
	}
	if m := reHOnly.FindStringSubmatch(t); m != nil {
		return clockString(atoi(m[1]), 0)
	}
	if m := reAmPm.FindStringSubmatch(t); m != nil {
		hh := atoi(m[1])
		mm := 0
		if m[2] != "" {
			mm = atoi(m[2])
		}
		if m[3] == "pm" && hh != 12 {
			hh += 12
		}
		if m[3] == "am" && hh == 12 {
			hh = 0
		}
		return clockString(hh, mm)
	}
	if m := reHourMin.FindStringSubmatch(t); m != nil {
		return clockString(atoi(m[1]), atoi(m[2]))
	}
	if m := reBareHour.FindStringSubmatch(t); m != nil {
		return clockString(atoi(m[1]), 0)
	}
	return "", fmt.Errorf("unrecognised time: %q", s)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func clockString(hh, mm int) (string, error) {
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return "", fmt.Errorf("time out of range: %02d:%02d", hh, mm)
	}
	return fmt.Sprintf("%02d:%02d", hh, mm), nil
}

// NextDates returns weeks dates on the given weekday: the first on or
// after startFrom, then 7-day increments.  weeks <= 0 yields nothing.
func NextDates(weekday time.Weekday, startFrom time.Time, weeks int) []time.Time {
	if weeks <= 0 {
		return nil
	}
	delta := (int(weekday) - int(startFrom.Weekday()) + 7) % 7
	first := startFrom.AddDate(0, 0, delta)
	out := make([]time.Time, 0, weeks)
	for i := 0; i < weeks; i++ {
		out = append(out, first.AddDate(0, 0, 7*i))
	}
	return out
}

// ExpandMulti flattens a set of weekly patterns over weeks weeks into
// a single occurrence list sorted by date then time.
func ExpandMulti(patterns []Pattern, startFrom time.Time, weeks int) []Occurrence {
	out := make([]Occurrence, 0, len(patterns)*weeks)
	for _, p := range patterns {
		for _, d := range NextDates(p.Weekday, startFrom, weeks) {
			out = append(out, Occurrence{
				Date:      d.Format("2006-01-02"),
				StartTime: p.StartTime,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}
