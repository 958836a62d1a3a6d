package lms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthGrid(t *testing.T) {
	events := []Event{
		{ID: "event1", StartTime: at(2025, time.March, 8, 10)},
		{ID: "event2", StartTime: at(2025, time.March, 8, 8)},
		{ID: "event3", StartTime: at(2025, time.April, 1, 10)},
		{ID: "nodate"},
	}

	m := MonthGrid(time.Date(2025, time.March, 19, 15, 0, 0, 0, time.UTC), events, time.UTC)
	assert.Equal(t, "March 2025", m.Title())
	assert.Equal(t, 6, m.Offset) // March 1st 2025 is a Saturday
	require.Len(t, m.Days, 31)

	eighth := m.Days[7]
	assert.Equal(t, 8, eighth.Date.Day())
	require.Len(t, eighth.Events, 2)
	assert.Equal(t, "event1", eighth.Events[0].ID) // source order
	assert.Equal(t, "event2", eighth.Events[1].ID)
	assert.Empty(t, m.Days[0].Events)

	assert.Equal(t, time.February, m.Prev().Month())
	assert.Equal(t, time.April, m.Next().Month())
}

func TestMonthGrid_december(t *testing.T) {
	m := MonthGrid(time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC), nil, time.UTC)
	assert.Len(t, m.Days, 31)
	assert.Equal(t, 2025, m.Next().Year())
	assert.Equal(t, time.January, m.Next().Month())
}
