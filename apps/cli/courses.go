package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/nicolascodet/canvas-remake/core/lms"
)

// minSimilarity is the ratio below which a course id is not suggested.
const minSimilarity = 0.6

var courseWidths = []int{10, 10, 36}

func (cli *commandLine) courses(ctx context.Context) error {
	list, err := cli.api.Courses(ctx)
	if err != nil {
		return errors.Wrap(err, "loading courses")
	}
	if len(list) == 0 {
		cli.println("No courses.")
		return nil
	}
	cli.println(row(courseWidths, "ID", "CODE", "NAME", "TERM"))
	for _, c := range list {
		cli.println(row(courseWidths, c.ID, c.Code, c.Name, c.Term))
	}
	return nil
}

func (cli *commandLine) dashboard(ctx context.Context) error {
	dash, err := cli.api.Dashboard(ctx)
	if err != nil {
		return errors.Wrap(err, "loading dashboard")
	}
	days := lms.GroupByDay(dash.Upcoming, cli.loc)
	if len(days) == 0 {
		cli.println("Nothing coming up.")
		return nil
	}
	for i, day := range days {
		if i > 0 {
			cli.println()
		}
		cli.println(day.Key)
		for _, it := range day.Items {
			cli.println("  " + cli.describe(it))
		}
	}
	return nil
}

func (cli *commandLine) describe(it lms.DashboardItem) string {
	clock := func(t lms.Time) string { return t.In(cli.loc).Format(lms.TimeLayout) }
	switch {
	case it.Assignment != nil:
		a := it.Assignment
		return fmt.Sprintf("[assignment] %s (%s) due %s, %s pts", a.Title, a.CourseID, clock(a.DueDate), points(*a))
	case it.Event != nil:
		e := it.Event
		s := fmt.Sprintf("[event] %s %s-%s", e.Title, clock(e.StartTime), clock(e.EndTime))
		if e.Location != "" {
			s += " @ " + e.Location
		}
		return s
	case it.Announcement != nil:
		return fmt.Sprintf("[%s] %s", strings.ToLower(it.Announcement.Source), it.Announcement.Title)
	}
	return it.Title()
}

func points(a lms.Assignment) string {
	if a.Points == nil {
		return "-"
	}
	return fmt.Sprint(*a.Points)
}

// course resolves id against the course list, suggesting the closest id when it is unknown.
func (cli *commandLine) course(ctx context.Context, id string) (lms.Course, error) {
	list, err := cli.api.Courses(ctx)
	if err != nil {
		return lms.Course{}, errors.Wrap(err, "loading courses")
	}
	if c, ok := lms.FindCourse(list, id); ok {
		return c, nil
	}
	ids := make([]string, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	if s := suggest(id, ids); s != "" {
		return lms.Course{}, errors.Errorf("unknown course %q, did you mean %q?", id, s)
	}
	return lms.Course{}, errors.Errorf("unknown course %q", id)
}

// suggest returns the candidate most similar to s, ignoring case, or "" when none is close enough.
func suggest(s string, candidates []string) string {
	var best string
	var bestRatio float64
	a := strings.Split(strings.ToUpper(s), "")
	for _, c := range candidates {
		m := difflib.NewMatcher(a, strings.Split(strings.ToUpper(c), ""))
		if r := m.Ratio(); r > bestRatio {
			best, bestRatio = c, r
		}
	}
	if bestRatio < minSimilarity {
		return ""
	}
	return best
}

var gradeWidths = []int{44, 14, 6}

func (cli *commandLine) grades(ctx context.Context, courseID string) error {
	course, err := cli.course(ctx, courseID)
	if err != nil {
		return err
	}
	all, err := cli.api.Assignments(ctx)
	if err != nil {
		return errors.Wrap(err, "loading assignments")
	}
	list := lms.AssignmentsForCourse(all, course.ID)
	grade := lms.ComputeGrade(list)

	cli.printf("%s: %s\n\n", course.Code, course.Name)
	cli.println(row(gradeWidths, "ASSIGNMENT", "STATUS", "POINTS"))
	for _, a := range list {
		cli.println(row(gradeWidths, a.Title, string(a.Status), points(a)))
	}
	cli.printf("\nTotal: %d / %d (%s)\n", grade.Earned, grade.Total, grade)
	return nil
}

var assignmentWidths = []int{44, 20, 14}

func (cli *commandLine) assignments(ctx context.Context, courseID, status string) error {
	switch lms.AssignmentStatus(status) {
	case "", lms.StatusNotSubmitted, lms.StatusSubmitted, lms.StatusGraded:
	default:
		return errors.Errorf("unknown status %q", status)
	}

	course, err := cli.course(ctx, courseID)
	if err != nil {
		return err
	}
	all, err := cli.api.Assignments(ctx)
	if err != nil {
		return errors.Wrap(err, "loading assignments")
	}
	list := lms.AssignmentsForCourse(all, course.ID)
	if status != "" {
		list = lms.AssignmentsWithStatus(list, lms.AssignmentStatus(status))
	}
	if len(list) == 0 {
		cli.println("No assignments.")
		return nil
	}
	cli.println(row(assignmentWidths, "ASSIGNMENT", "DUE", "STATUS", "POINTS"))
	for _, a := range list {
		due := "Invalid date"
		if !a.DueDate.IsZero() {
			due = a.DueDate.In(cli.loc).Format("Jan 2 " + lms.TimeLayout)
		}
		cli.println(row(assignmentWidths, a.Title, due, string(a.Status), points(a)))
	}
	return nil
}
