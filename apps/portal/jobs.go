package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/nicolascodet/canvas-remake/core"
	"github.com/nicolascodet/canvas-remake/core/quiz"
	"github.com/nicolascodet/canvas-remake/storage/cache"
)

// cronLogger routes cron's own messages through a core.Logger.
type cronLogger struct {
	logger core.Logger
}

var _ cron.Logger = cronLogger{}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(fmt.Sprintf("cron: %s %v", msg, keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(fmt.Sprintf("cron: %s %v: %v", msg, keysAndValues, err), err)
}

// newScheduler schedules the course registry refresh and the idle quiz session sweep.
// The returned scheduler is not started.
func newScheduler(conf *core.Config, logger core.Logger, courses *cache.Courses, quizzes *quiz.Manager) (*cron.Cron, error) {
	cl := cronLogger{logger}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	if _, err := c.AddFunc(conf.Cache.CourseRefresh, refreshCoursesJob(conf, courses)); err != nil {
		return nil, errors.Wrapf(err, "scheduling course refresh %q", conf.Cache.CourseRefresh)
	}
	if _, err := c.AddFunc(conf.Quiz.SweepSchedule, sweepQuizzesJob(conf, logger, quizzes)); err != nil {
		return nil, errors.Wrapf(err, "scheduling quiz sweep %q", conf.Quiz.SweepSchedule)
	}
	return c, nil
}

func refreshCoursesJob(conf *core.Config, courses *cache.Courses) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), conf.API.Timeout)
		defer cancel()
		_, _ = courses.Refresh(ctx) // failures are logged by the registry, which keeps its last good list
	}
}

func sweepQuizzesJob(conf *core.Config, logger core.Logger, quizzes *quiz.Manager) func() {
	return func() {
		if n := quizzes.EvictIdle(conf.Quiz.IdleTimeout); n > 0 {
			logger.Info(fmt.Sprintf("evicted %d idle quiz sessions", n))
		}
	}
}
