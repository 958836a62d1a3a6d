package lms

import "fmt"

// Grade is the running grade of a course.
type Grade struct {
	Total      int     `json:"total_points"`
	Earned     int     `json:"earned_points"`
	Percentage float64 `json:"percentage"`
}

// ComputeGrade sums the points of every assignment (graded or not) into Total,
// and the points of graded ones into Earned. Percentage is 0 when Total is 0.
func ComputeGrade(assignments []Assignment) Grade {
	var g Grade
	for _, a := range assignments {
		g.Total += a.PointsValue()
		if a.Status == StatusGraded {
			g.Earned += a.PointsValue()
		}
	}
	if g.Total > 0 {
		g.Percentage = float64(g.Earned) / float64(g.Total) * 100
	}
	return g
}

// String renders the percentage with one decimal, e.g. "66.7%".
func (g Grade) String() string {
	return fmt.Sprintf("%.1f%%", g.Percentage)
}
