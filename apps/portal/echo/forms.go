package echoportal

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nicolascodet/canvas-remake/core"
)

type (
	postForm struct {
		Title   string `form:"title" json:"title" validate:"required"`
		Content string `form:"content" json:"content" validate:"required"`
	}

	replyForm struct {
		Content string `form:"content" json:"content" validate:"required"`
	}

	// answerForm comes from the option buttons of the quiz page.
	answerForm struct {
		Question string `form:"question" json:"question" validate:"required,number"`
		Option   string `form:"option" json:"option" validate:"required,number"`
	}

	startQuizRequest struct {
		QuizID string `json:"quiz_id" validate:"required"`
	}

	answerRequest struct {
		Question *int `json:"question" validate:"required,min=0"`
		Option   *int `json:"option" validate:"required"`
	}
)

func (f *postForm) clean() {
	f.Title = core.CleanString(f.Title)
	f.Content = core.CleanString(f.Content)
}

func (f *replyForm) clean() {
	f.Content = core.CleanString(f.Content)
}

func (f *answerForm) clean() {
	f.Question = core.CleanString(f.Question)
	f.Option = core.CleanString(f.Option)
}

// ints returns the validated question and option indexes.
func (f answerForm) ints() (question, option int) {
	question, _ = strconv.Atoi(f.Question)
	option, _ = strconv.Atoi(f.Option)
	return question, option
}

func (r *startQuizRequest) clean() {
	r.QuizID = core.CleanString(r.QuizID)
}

func (s *Server) validate(v interface{}) error {
	return core.ValidateStruct(s.Validate, s.Translator, v)
}

// bind binds the request into v and cleans it when it knows how.
func bind(ctx echo.Context, v interface{}) error {
	if err := ctx.Bind(v); err != nil {
		return errors.Wrapf(err, "binding to %T", v)
	}
	if c, ok := v.(interface{ clean() }); ok {
		c.clean()
	}
	return nil
}

// fieldErrors returns the field messages of a validation error, nil for any other error.
func fieldErrors(err error) map[string]string {
	if vErr, ok := errors.Cause(err).(*core.ValidationError); ok {
		return vErr.FieldMap()
	}
	return nil
}
