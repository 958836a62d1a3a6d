package main

import (
	"log"

	container "github.com/nicolascodet/canvas-remake/apps/portal/di"
	echoportal "github.com/nicolascodet/canvas-remake/apps/portal/echo"
	"github.com/nicolascodet/canvas-remake/core"
	"github.com/nicolascodet/canvas-remake/core/quiz"
	"github.com/nicolascodet/canvas-remake/services/logger"
	"github.com/nicolascodet/canvas-remake/storage/cache"
)

func startWithDig() {
	c := container.New()

	must(c.Invoke(func(
		conf *core.Config,
		rollbar *logsvc.RollbarLogger,
		logger core.Logger,
		server *echoportal.Server,
		courses *cache.Courses,
		quizzes *quiz.Manager,
	) {
		defer rollbar.Close()
		run(conf, logger, server, courses, quizzes)
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
