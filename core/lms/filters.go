package lms

import "time"

// AssignmentsForCourse returns a new slice holding the assignments of courseID.
func AssignmentsForCourse(assignments []Assignment, courseID string) []Assignment {
	res := make([]Assignment, 0)
	for _, a := range assignments {
		if a.CourseID == courseID {
			res = append(res, a)
		}
	}
	return res
}

// AssignmentsWithStatus returns a new slice holding the assignments in the given status.
func AssignmentsWithStatus(assignments []Assignment, status AssignmentStatus) []Assignment {
	res := make([]Assignment, 0)
	for _, a := range assignments {
		if a.Status == status {
			res = append(res, a)
		}
	}
	return res
}

// EventsOn returns the events starting on the calendar day of `day` in loc.
func EventsOn(events []Event, day time.Time, loc *time.Location) []Event {
	if loc == nil {
		loc = Location()
	}
	want := day.In(loc).Format("2006-01-02")
	res := make([]Event, 0)
	for _, e := range events {
		if e.StartTime.IsZero() {
			continue
		}
		if e.StartTime.In(loc).Format("2006-01-02") == want {
			res = append(res, e)
		}
	}
	return res
}
