package lms

import "time"

type (
	CalendarDay struct {
		Date   time.Time
		Events []Event
	}

	// Month is a month view of the calendar.
	// Offset is the number of empty cells before the 1st in a week starting on Sunday.
	Month struct {
		Start  time.Time
		Offset int
		Days   []CalendarDay
	}
)

// StartOfMonth returns midnight of the first day of t's month in loc.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = Location()
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}

// MonthGrid lays out every day of `month` with the events starting on it, in source order.
func MonthGrid(month time.Time, events []Event, loc *time.Location) Month {
	start := StartOfMonth(month, loc)
	m := Month{Start: start, Offset: int(start.Weekday())}
	for d := start; d.Month() == start.Month(); d = d.AddDate(0, 0, 1) {
		m.Days = append(m.Days, CalendarDay{Date: d, Events: EventsOn(events, d, start.Location())})
	}
	return m
}

func (m Month) Title() string { return m.Start.Format("January 2006") }

func (m Month) Prev() time.Time { return m.Start.AddDate(0, -1, 0) }

func (m Month) Next() time.Time { return m.Start.AddDate(0, 1, 0) }
