package lms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func pts(n int) *int { return &n }

func TestComputeGrade(t *testing.T) {
	tests := []struct {
		name        string
		assignments []Assignment
		want        Grade
		wantStr     string
	}{
		{name: "no assignments", want: Grade{}, wantStr: "0.0%"},
		{
			name: "zero total points",
			assignments: []Assignment{
				{ID: "a", Status: StatusGraded},
				{ID: "b", Points: pts(0), Status: StatusSubmitted},
			},
			want: Grade{}, wantStr: "0.0%",
		},
		{
			name: "graded and submitted",
			assignments: []Assignment{
				{ID: "a", Points: pts(100), Status: StatusGraded},
				{ID: "b", Points: pts(50), Status: StatusSubmitted},
			},
			want: Grade{Total: 150, Earned: 100, Percentage: 100 * 100.0 / 150}, wantStr: "66.7%",
		},
		{
			name: "missing points count as zero",
			assignments: []Assignment{
				{ID: "a", Points: pts(42), Status: StatusGraded},
				{ID: "b", Status: StatusGraded},
				{ID: "c", Points: pts(58), Status: StatusNotSubmitted},
			},
			want: Grade{Total: 100, Earned: 42, Percentage: 42}, wantStr: "42.0%",
		},
		{
			name:        "all graded",
			assignments: []Assignment{{Points: pts(10), Status: StatusGraded}, {Points: pts(30), Status: StatusGraded}},
			want:        Grade{Total: 40, Earned: 40, Percentage: 100}, wantStr: "100.0%",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeGrade(tt.assignments)
			assert.Equal(t, tt.want.Total, got.Total)
			assert.Equal(t, tt.want.Earned, got.Earned)
			assert.InDelta(t, tt.want.Percentage, got.Percentage, 1e-9)
			assert.Equal(t, tt.wantStr, got.String())
		})
	}
}

func TestAssignmentsFilters(t *testing.T) {
	list := []Assignment{
		{ID: "hw1", CourseID: "PROCR-101", Status: StatusNotSubmitted},
		{ID: "hw2", CourseID: "MEME-420", Status: StatusGraded},
		{ID: "hw3", CourseID: "MEME-420", Status: StatusNotSubmitted},
	}

	meme := AssignmentsForCourse(list, "MEME-420")
	assert.Equal(t, []string{"hw2", "hw3"}, ids(meme))

	// a different course replaces the result, it never accumulates
	procr := AssignmentsForCourse(list, "PROCR-101")
	assert.Equal(t, []string{"hw1"}, ids(procr))
	assert.Empty(t, AssignmentsForCourse(list, "lol"))
	assert.NotNil(t, AssignmentsForCourse(nil, "lol"))

	assert.Equal(t, []string{"hw1", "hw3"}, ids(AssignmentsWithStatus(list, StatusNotSubmitted)))
	assert.Equal(t, []string{"hw2"}, ids(AssignmentsWithStatus(meme, StatusGraded)))
}

func ids(list []Assignment) []string {
	res := make([]string, 0, len(list))
	for _, a := range list {
		res = append(res, a.ID)
	}
	return res
}
