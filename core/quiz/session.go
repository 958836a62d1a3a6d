package quiz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/nicolascodet/canvas-remake/core"
	"github.com/nicolascodet/canvas-remake/core/lms"
)

// Unanswered marks an answer slot no option was selected for.
const Unanswered = -1

type State int

const (
	Browsing State = iota
	InProgress
	Submitted
)

func (s State) String() string {
	switch s {
	case Browsing:
		return "browsing"
	case InProgress:
		return "in_progress"
	case Submitted:
		return "submitted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	ErrAlreadyStarted     = errors.New("a quiz is already in progress")
	ErrNotInProgress      = errors.New("no quiz in progress")
	ErrNothingToClose     = errors.New("no quiz to close")
	ErrQuestionOutOfRange = errors.New("question index out of range")
	ErrIncompleteAnswers  = errors.New("every question must be answered before submitting")
	ErrSubmitInFlight     = errors.New("a submission is already in flight")
	ErrSessionClosed      = errors.New("quiz was closed before the submission completed")
)

// IsStateError reports whether err is caused by calling an operation in the wrong state.
func IsStateError(err error) bool {
	switch errors.Cause(err) {
	case ErrAlreadyStarted, ErrNotInProgress, ErrNothingToClose, ErrQuestionOutOfRange,
		ErrIncompleteAnswers, ErrSubmitInFlight, ErrSessionClosed:
		return true
	}
	return false
}

// Submitter sends an answer vector to the server.
type Submitter interface {
	SubmitQuiz(ctx context.Context, quizID string, answers []int) (lms.QuizSubmission, error)
}

// nowFunc is mockable in tests.
var nowFunc = time.Now

type Option func(*Session)

// WithAutoSubmit makes the session submit its answers when the countdown reaches zero.
func WithAutoSubmit(enabled bool) Option {
	return func(s *Session) { s.autoSubmit = enabled }
}

// WithTickInterval sets how long one second of the countdown lasts. Non-positive values are ignored.
func WithTickInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.tick = d
		}
	}
}

func WithLogger(logger core.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// Session is one student's attempt at one quiz at a time:
// Browsing -> InProgress -> Submitted -> Browsing.
type Session struct {
	mu         sync.Mutex
	submitter  Submitter
	logger     core.Logger
	autoSubmit bool
	tick       time.Duration

	state      State
	quiz       *lms.Quiz
	answers    []int
	countdown  *Countdown
	expired    bool
	submitting bool
	submission *lms.QuizSubmission
	lastErr    error

	generation uint64 // bumped on every Start and Close; stale callbacks compare against it
	lastActive time.Time
}

func NewSession(submitter Submitter, opts ...Option) *Session {
	s := &Session{
		submitter:  submitter,
		logger:     nopLogger{},
		tick:       time.Second,
		lastActive: nowFunc(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start enters InProgress with every answer unanswered, and starts the countdown when the quiz is timed.
func (s *Session) Start(q lms.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = nowFunc()

	if s.state != Browsing {
		return ErrAlreadyStarted
	}

	s.generation++
	s.state = InProgress
	s.quiz = &q
	s.answers = make([]int, len(q.Questions))
	for i := range s.answers {
		s.answers[i] = Unanswered
	}
	s.expired = false
	s.submitting = false
	s.submission = nil
	s.lastErr = nil

	if secs := q.TimeLimitSeconds(); secs > 0 {
		gen := s.generation
		s.countdown = startCountdown(secs, s.tick, func() { s.expire(gen) })
	}
	return nil
}

// SelectAnswer overwrites the answer of question q. The option index is not checked against the options offered.
func (s *Session) SelectAnswer(q, option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = nowFunc()

	if s.state != InProgress {
		return ErrNotInProgress
	}
	if q < 0 || q >= len(s.answers) {
		return ErrQuestionOutOfRange
	}
	s.answers[q] = option
	return nil
}

// CanSubmit reports whether Submit would send the answers.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkSubmittable() == nil
}

func (s *Session) checkSubmittable() error {
	if s.state != InProgress {
		return ErrNotInProgress
	}
	if s.submitting {
		return ErrSubmitInFlight
	}
	if s.expired {
		return nil // time is up: whatever was answered goes
	}
	for _, a := range s.answers {
		if a == Unanswered {
			return ErrIncompleteAnswers
		}
	}
	return nil
}

// Submit sends the answer vector and moves to Submitted.
// On failure the session stays InProgress with its answers and the error is returned and kept for display.
func (s *Session) Submit(ctx context.Context) (lms.QuizSubmission, error) {
	s.mu.Lock()
	s.lastActive = nowFunc()
	if err := s.checkSubmittable(); err != nil {
		s.mu.Unlock()
		return lms.QuizSubmission{}, err
	}
	return s.send(ctx)
}

// send must be called with s.mu held; it releases it.
func (s *Session) send(ctx context.Context) (lms.QuizSubmission, error) {
	s.submitting = true
	gen := s.generation
	quizID := s.quiz.ID
	answers := append([]int(nil), s.answers...)
	s.mu.Unlock()

	sub, err := s.submitter.SubmitQuiz(ctx, quizID, answers)

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return lms.QuizSubmission{}, ErrSessionClosed
	}
	s.submitting = false
	if err != nil {
		s.lastErr = err
		s.mu.Unlock()
		s.logger.Error(fmt.Sprintf("submitting quiz %s: %v", quizID, err), err)
		return lms.QuizSubmission{}, errors.Wrap(err, "submitting quiz")
	}
	s.lastErr = nil
	s.submission = &sub
	s.state = Submitted
	cd := s.countdown
	s.countdown = nil
	s.mu.Unlock()

	if cd != nil {
		cd.Stop()
	}
	return sub, nil
}

// expire runs on the countdown goroutine when time is up.
func (s *Session) expire(gen uint64) {
	s.mu.Lock()
	if s.generation != gen || s.state != InProgress {
		s.mu.Unlock()
		return
	}
	s.expired = true
	if !s.autoSubmit || s.submitting {
		s.mu.Unlock()
		return
	}
	quizID := s.quiz.ID
	s.logger.Info(fmt.Sprintf("time is up on quiz %s: submitting", quizID))
	_, _ = s.send(context.Background()) // failure is kept in lastErr
}

// Close returns to Browsing, discarding the answers and stopping the countdown.
func (s *Session) Close() error {
	s.mu.Lock()
	s.lastActive = nowFunc()
	if s.state == Browsing {
		s.mu.Unlock()
		return ErrNothingToClose
	}
	s.generation++
	s.state = Browsing
	s.quiz = nil
	s.answers = nil
	s.expired = false
	s.submitting = false
	s.submission = nil
	s.lastErr = nil
	cd := s.countdown
	s.countdown = nil
	s.mu.Unlock()

	if cd != nil {
		cd.Stop()
	}
	return nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastActive returns when the session was last touched by an operation.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// View is a point-in-time copy of a Session for rendering.
type View struct {
	State      State               `json:"-"`
	StateName  string              `json:"state"`
	Quiz       *lms.Quiz           `json:"quiz,omitempty"`
	Answers    []int               `json:"answers"`
	HasTimer   bool                `json:"has_timer"`
	Remaining  int                 `json:"remaining_seconds"`
	Expired    bool                `json:"expired"`
	Submitting bool                `json:"submitting"`
	CanSubmit  bool                `json:"can_submit"`
	Submission *lms.QuizSubmission `json:"submission,omitempty"`
	Err        error               `json:"-"`
	ErrMsg     string              `json:"error,omitempty"`
}

func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		State:      s.state,
		StateName:  s.state.String(),
		Quiz:       s.quiz,
		Answers:    append([]int(nil), s.answers...),
		Expired:    s.expired,
		Submitting: s.submitting,
		CanSubmit:  s.checkSubmittable() == nil,
		Submission: s.submission,
		Err:        s.lastErr,
	}
	if v.Answers == nil {
		v.Answers = []int{}
	}
	if s.countdown != nil {
		v.HasTimer = true
		v.Remaining = s.countdown.Remaining()
	}
	if s.lastErr != nil {
		v.ErrMsg = s.lastErr.Error()
	}
	return v
}

// Selected reports whether option opt is the current answer to question q.
func (v View) Selected(q, opt int) bool {
	return q >= 0 && q < len(v.Answers) && v.Answers[q] == opt
}

// TimeLeft renders the remaining time as m:ss.
func (v View) TimeLeft() string {
	return FormatRemaining(v.Remaining)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}
