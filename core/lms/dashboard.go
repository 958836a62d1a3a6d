package lms

import "time"

const (
	// DayLayout formats bucket keys, e.g. "Friday, March 7".
	DayLayout = "Monday, January 2"
	// TimeLayout formats times of day, e.g. "3:04 PM".
	TimeLayout = "3:04 PM"

	invalidDate = "Invalid date"
)

// DayBucket holds the dashboard items falling on one calendar day.
type DayBucket struct {
	Key   string          `json:"date"`
	Items []DashboardItem `json:"items"`
}

// DayKey formats t as a bucket key in loc.
func DayKey(t Time, loc *time.Location) string {
	if t.IsZero() {
		return invalidDate
	}
	if loc == nil {
		loc = Location()
	}
	return t.In(loc).Format(DayLayout)
}

// GroupByDay buckets items by the calendar day of their When() timestamp.
// Buckets come out in order of first appearance; items keep their source order within a bucket.
func GroupByDay(items []DashboardItem, loc *time.Location) []DayBucket {
	buckets := make([]DayBucket, 0)
	index := make(map[string]int)
	for _, it := range items {
		key := DayKey(it.When(), loc)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, DayBucket{Key: key})
		}
		buckets[i].Items = append(buckets[i].Items, it)
	}
	return buckets
}

// AggregateUpcoming merges the three feeds into one list of tagged items:
// assignments first, then events, then announcements.
func AggregateUpcoming(assignments []Assignment, events []Event, announcements []Announcement) []DashboardItem {
	items := make([]DashboardItem, 0, len(assignments)+len(events)+len(announcements))
	for _, a := range assignments {
		items = append(items, AssignmentItem(a))
	}
	for _, e := range events {
		items = append(items, EventItem(e))
	}
	for _, a := range announcements {
		items = append(items, AnnouncementItem(a))
	}
	return items
}

// FindCourse returns the course with the given id.
func FindCourse(courses []Course, id string) (Course, bool) {
	for _, c := range courses {
		if c.ID == id {
			return c, true
		}
	}
	return Course{}, false
}
