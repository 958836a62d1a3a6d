package container

import (
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoportal "github.com/nicolascodet/canvas-remake/apps/portal/echo"
	"github.com/nicolascodet/canvas-remake/core"
	"github.com/nicolascodet/canvas-remake/core/lms"
	"github.com/nicolascodet/canvas-remake/core/quiz"
	"github.com/nicolascodet/canvas-remake/services/lmsapi"
	"github.com/nicolascodet/canvas-remake/services/logger"
	"github.com/nicolascodet/canvas-remake/storage/cache"
)

// NewConfigFunc builds the configuration; tests swap it.
type NewConfigFunc func() *core.Config

type serverParams struct {
	dig.In

	Conf       *core.Config
	Logger     core.Logger
	Store      *cache.Store
	Courses    *cache.Courses
	Quizzes    *quiz.Manager
	Validate   *validator.Validate
	Translator ut.Translator
}

// newRollbarLogger is exposed so the caller can Close it and flush pending reports.
func newRollbarLogger(conf *core.Config) *logsvc.RollbarLogger {
	stdLogger := log.New(os.Stdout, "PORTAL : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newLogger(logger *logsvc.RollbarLogger) core.Logger {
	return logger
}

func newStore(conf *core.Config, client *lmsapi.Client) *cache.Store {
	lms.SetLocation(conf.Location())
	return cache.NewStore(client, conf.Cache.TTL)
}

func newQuizzes(conf *core.Config, store *cache.Store, logger core.Logger) *quiz.Manager {
	return quiz.NewManager(store, quiz.WithAutoSubmit(conf.Quiz.AutoSubmit), quiz.WithLogger(logger))
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate
}

func newServer(p serverParams) (*echoportal.Server, error) {
	return echoportal.NewServer(echoportal.ServerDeps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		Store:      p.Store,
		Courses:    p.Courses,
		Quizzes:    p.Quizzes,
		Validate:   p.Validate,
		Translator: p.Translator,
	})
}

// New returns a new dependency injection dig.Container.
// newConfig defaults to core.NewConfig.
func New(newConfig ...NewConfigFunc) *dig.Container {
	c := dig.New()

	confFn := NewConfigFunc(core.NewConfig)
	if len(newConfig) > 0 && newConfig[0] != nil {
		confFn = newConfig[0]
	}

	must(c.Provide(func() *core.Config { return confFn() }))
	must(c.Provide(newRollbarLogger))
	must(c.Provide(newLogger))
	must(c.Provide(lmsapi.NewClientFromConfig))
	must(c.Provide(newStore))
	must(c.Provide(cache.NewCourses))
	must(c.Provide(newQuizzes))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
