package main

import (
	"context"
	"expvar"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"

	echoportal "github.com/nicolascodet/canvas-remake/apps/portal/echo"
	"github.com/nicolascodet/canvas-remake/core"
	"github.com/nicolascodet/canvas-remake/core/lms"
	"github.com/nicolascodet/canvas-remake/core/quiz"
	"github.com/nicolascodet/canvas-remake/services/lmsapi"
	"github.com/nicolascodet/canvas-remake/services/logger"
	"github.com/nicolascodet/canvas-remake/storage/cache"
)

func main() {
	useDig := flag.Bool("dig", false, "build the dependencies with a dig container")
	flag.Parse()

	if *useDig {
		startWithDig()
		return
	}
	startManual()
}

func startManual() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()
	lms.SetLocation(conf.Location())

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "PORTAL : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	defer logger.Close()

	client, err := lmsapi.NewClientFromConfig(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up LMS API client: %v", err), err)
	}
	store := cache.NewStore(client, conf.Cache.TTL)
	courses := cache.NewCourses(store, logger)
	quizzes := quiz.NewManager(store, quiz.WithAutoSubmit(conf.Quiz.AutoSubmit), quiz.WithLogger(logger))

	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)

	server, err := echoportal.NewServer(echoportal.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Store:      store,
		Courses:    courses,
		Quizzes:    quizzes,
		Validate:   validate,
		Translator: translator,
	})
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up server: %v", err), err)
	}

	run(conf, logger, server, courses, quizzes)
}

// run initializes the app and serves until a shutdown signal or a listener error.
func run(conf *core.Config, logger core.Logger, server *echoportal.Server, courses *cache.Courses, quizzes *quiz.Manager) {
	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	ctx, cancel := context.WithTimeout(context.Background(), conf.API.Timeout)
	if err := courses.Init(ctx); err != nil {
		// the registry retries on schedule; pages fall back to an empty sidebar meanwhile
		logger.Error(fmt.Sprintf("loading courses: %v", err), err)
	}
	cancel()

	scheduler, err := newScheduler(conf, logger, courses, quizzes)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up jobs: %v", err), err)
	}
	scheduler.Start()
	defer func() {
		<-scheduler.Stop().Done()
		quizzes.Shutdown()
	}()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.Publish("quiz_sessions", expvar.Func(func() interface{} { return quizzes.Len() }))

	numCourses := expvar.NewInt("courses")
	numCourses.Set(int64(len(courses.List())))
	updates, unsubscribe := courses.Subscribe()
	defer unsubscribe()
	go func() {
		for list := range updates {
			numCourses.Set(int64(len(list)))
		}
	}()

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Portal Service

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
