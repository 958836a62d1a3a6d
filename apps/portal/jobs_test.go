package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolascodet/canvas-remake/core"
	"github.com/nicolascodet/canvas-remake/core/lms"
	"github.com/nicolascodet/canvas-remake/core/quiz"
	"github.com/nicolascodet/canvas-remake/services/lmsapi"
	"github.com/nicolascodet/canvas-remake/services/logger"
	"github.com/nicolascodet/canvas-remake/storage/cache"
	"github.com/nicolascodet/canvas-remake/tests"
)

func testConfig() *core.Config {
	conf := &core.Config{TestMode: true}
	conf.API.Timeout = 5 * time.Second
	conf.Cache.TTL = time.Minute
	conf.Cache.CourseRefresh = "@every 5m"
	conf.Quiz.IdleTimeout = time.Hour
	conf.Quiz.SweepSchedule = "@every 10m"
	return conf
}

func setupJobs(t *testing.T) (*testutil.FakeAPI, *cache.Courses, *quiz.Manager, *logsvc.MemoryLogger) {
	api := testutil.NewFakeAPI(t)
	client, err := lmsapi.NewClient(lmsapi.Options{BaseURL: api.URL()})
	require.NoError(t, err)
	store := cache.NewStore(client, time.Minute)
	logs := new(logsvc.MemoryLogger)
	quizzes := quiz.NewManager(store)
	t.Cleanup(quizzes.Shutdown)
	return api, cache.NewCourses(store, logs), quizzes, logs
}

func TestNewScheduler(t *testing.T) {
	_, courses, quizzes, logs := setupJobs(t)

	s, err := newScheduler(testConfig(), logs, courses, quizzes)
	require.NoError(t, err)
	assert.Len(t, s.Entries(), 2)

	conf := testConfig()
	conf.Cache.CourseRefresh = "every now and then"
	_, err = newScheduler(conf, logs, courses, quizzes)
	assert.Error(t, err)

	conf = testConfig()
	conf.Quiz.SweepSchedule = "* * *"
	_, err = newScheduler(conf, logs, courses, quizzes)
	assert.Error(t, err)
}

func TestRefreshCoursesJob(t *testing.T) {
	api, courses, _, _ := setupJobs(t)
	require.NoError(t, courses.Init(context.Background()))
	require.Len(t, courses.List(), 4)

	api.Update(func(f *testutil.Fixtures) {
		f.Courses = append(f.Courses, lms.Course{ID: "BEER-110", Code: "BEER-110", Name: "Craft Beer Studies"})
	})
	refreshCoursesJob(testConfig(), courses)()
	assert.Len(t, courses.List(), 5)

	api.Fail("GET /courses", 500)
	refreshCoursesJob(testConfig(), courses)()
	assert.Len(t, courses.List(), 5, "last good list is kept")
}

func TestSweepQuizzesJob(t *testing.T) {
	_, _, quizzes, logs := setupJobs(t)
	quizzes.Session("fresh")

	conf := testConfig()
	sweepQuizzesJob(conf, logs, quizzes)()
	assert.Equal(t, 1, quizzes.Len())
	assert.Empty(t, logs.Messages("INFO"))

	conf.Quiz.IdleTimeout = -time.Minute // everything is idle
	sweepQuizzesJob(conf, logs, quizzes)()
	assert.Zero(t, quizzes.Len())
	assert.Equal(t, []string{"INFO: evicted 1 idle quiz sessions"}, logs.Messages("INFO"))
}
