package main

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/nicolascodet/canvas-remake/core/lms"
	"github.com/nicolascodet/canvas-remake/core/quiz"
	"github.com/nicolascodet/canvas-remake/services/lmsapi"
)

const (
	quizHelp   = `Answer with the option number. "s" submits, "q" quits.`
	submitPoll = 50 * time.Millisecond
)

func (cli *commandLine) takeQuiz(ctx context.Context, id string) error {
	q, err := cli.api.Quiz(ctx, id)
	if err != nil {
		if lmsapi.IsNotFound(err) {
			return errors.Errorf("unknown quiz %q", id)
		}
		return errors.Wrap(err, "loading quiz")
	}

	sess := quiz.NewSession(cli.api,
		quiz.WithAutoSubmit(cli.autoSubmit),
		quiz.WithTickInterval(cli.tick),
		quiz.WithLogger(cli.logger),
	)
	if err := sess.Start(q); err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	cli.printf("%s: %d questions, %d pts\n", q.Title, len(q.Questions), q.TotalPoints)
	if secs := q.TimeLimitSeconds(); secs > 0 {
		cli.printf("Time limit: %s\n", quiz.FormatRemaining(secs))
	}
	cli.println(quizHelp)

	stopTimer := cli.startTimerLine(sess)
	defer stopTimer()

	current := 0
	timeUpShown := false
	for {
		v := sess.Snapshot()
		if v.State == quiz.Submitted {
			cli.printScore(v)
			return nil
		}
		if v.Expired && cli.autoSubmit {
			if v.Submitting { // the countdown is submitting already
				time.Sleep(submitPoll)
				continue
			}
			cli.println("Time is up, submitting your answers.")
			if _, err := sess.Submit(ctx); err != nil && errors.Cause(err) != quiz.ErrSubmitInFlight {
				return err
			}
			continue
		}
		if v.Expired && !timeUpShown {
			cli.println(`Time is up. "s" hands in your answers.`)
			timeUpShown = true
		}

		if current >= len(q.Questions) {
			current = firstUnanswered(v.Answers)
		}
		if current < 0 {
			cli.printf("\nAll questions answered. \"s\" submits, a question number changes an answer, \"q\" quits.\n")
		} else {
			cli.printQuestion(q, current, v)
		}
		cli.prompt(sess)

		line, err := cli.readLine()
		if err != nil {
			return errors.Wrap(err, "reading answer")
		}
		if v := sess.Snapshot(); v.State != quiz.InProgress || (v.Expired && cli.autoSubmit) {
			continue // time ran out while waiting
		}

		switch line {
		case "q":
			cli.println("Quiz closed without submitting.")
			return nil
		case "s":
			if _, err := sess.Submit(ctx); err != nil {
				if quiz.IsStateError(err) {
					cli.println(errors.Cause(err).Error() + ".")
					current = firstUnanswered(sess.Snapshot().Answers)
					continue
				}
				cli.printf("Could not submit your answers: %v\n", err)
			}
			continue
		}

		n, err := strconv.Atoi(line)
		switch {
		case err != nil:
			cli.println(quizHelp)
		case current < 0:
			if n < 1 || n > len(q.Questions) {
				cli.printf("Enter a question number between 1 and %d.\n", len(q.Questions))
				break
			}
			current = n - 1
		default:
			if n < 1 || n > len(q.Questions[current].Options) {
				cli.printf("Enter a number between 1 and %d.\n", len(q.Questions[current].Options))
				break
			}
			if err := sess.SelectAnswer(current, n-1); err != nil {
				return err
			}
			current++
		}
	}
}

func firstUnanswered(answers []int) int {
	for i, a := range answers {
		if a == quiz.Unanswered {
			return i
		}
	}
	return -1
}

func (cli *commandLine) printQuestion(q lms.Quiz, i int, v quiz.View) {
	qq := q.Questions[i]
	cli.printf("\n%d/%d. %s (%d pts)\n", i+1, len(q.Questions), qq.Question, qq.Points)
	for oi, opt := range qq.Options {
		mark := " "
		if v.Selected(i, oi) {
			mark = "*"
		}
		cli.printf(" %s %d) %s\n", mark, oi+1, opt)
	}
}

func (cli *commandLine) prompt(sess *quiz.Session) {
	v := sess.Snapshot()
	switch {
	case v.HasTimer && cli.tty:
		cli.printf("[%5s] > ", v.TimeLeft())
	case v.HasTimer:
		cli.printf("(time left %s) > ", v.TimeLeft())
	default:
		cli.printf("> ")
	}
}

func (cli *commandLine) printScore(v quiz.View) {
	score := "-"
	if v.Submission != nil && v.Submission.Score != nil {
		score = strconv.FormatFloat(*v.Submission.Score, 'f', -1, 64)
	}
	total := 0
	if v.Quiz != nil {
		total = v.Quiz.TotalPoints
	}
	cli.printf("\nSubmitted. Score: %s / %d\n", score, total)
}

// startTimerLine keeps the remaining time of the prompt up to date while waiting for input.
// It only runs on a terminal and for timed quizzes.
func (cli *commandLine) startTimerLine(sess *quiz.Session) (stop func()) {
	if !cli.tty || !sess.Snapshot().HasTimer {
		return func() {}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		every := time.Second
		if cli.tick > 0 {
			every = cli.tick
		}
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
			}
			line, last := timerLine(sess.Snapshot())
			if line != "" {
				cli.printf("%s", line)
			}
			if last {
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}

// timerLine returns what the timer writes for v, and whether it is done.
// A manual submit ends the timer silently.
func timerLine(v quiz.View) (line string, last bool) {
	switch {
	case v.State == quiz.Submitted && v.Expired:
		return "\nTime is up, your answers were submitted. Press Enter.", true
	case v.State != quiz.InProgress:
		return "", true
	}
	// save the cursor, rewrite the time at the start of the prompt, restore the cursor
	return fmt.Sprintf("\0337\r[%5s]\0338", v.TimeLeft()), v.Expired && !v.Submitting
}
