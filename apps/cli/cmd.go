package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/nicolascodet/canvas-remake/core"
	"github.com/nicolascodet/canvas-remake/storage/cache"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	api        cache.API
	logger     core.Logger
	loc        *time.Location
	autoSubmit bool
	tick       time.Duration // length of a quiz countdown second; zero is a real second
	in         *bufio.Reader

	outMu sync.Mutex // the quiz timer writes from its own goroutine
	out   io.Writer
	// tty is set when out is an interactive terminal
	tty bool
}

func newCommandLine(conf *core.Config, api cache.API, logger core.Logger, in io.Reader, out *os.File) *commandLine {
	return &commandLine{
		api:        api,
		logger:     logger,
		loc:        conf.Location(),
		autoSubmit: conf.Quiz.AutoSubmit,
		in:         bufio.NewReader(in),
		out:        out,
		tty:        isTerminalFunc(int(out.Fd())),
	}
}

func (cli *commandLine) printf(format string, args ...interface{}) {
	cli.outMu.Lock()
	defer cli.outMu.Unlock()
	_, _ = fmt.Fprintf(cli.out, format, args...)
}

func (cli *commandLine) println(args ...interface{}) {
	cli.outMu.Lock()
	defer cli.outMu.Unlock()
	_, _ = fmt.Fprintln(cli.out, args...)
}

func (cli *commandLine) printUsage() {
	cli.println("Usage:")
	cli.println("  courses                                  - list your courses")
	cli.println("  dashboard                                - upcoming assignments, events and announcements by day")
	cli.println("  grades -course ID                        - grade summary of a course")
	cli.println("  assignments -course ID [-status STATUS]  - assignments of a course")
	cli.println("  quiz -id ID                              - take a quiz")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	gradesCmd := flag.NewFlagSet("grades", flag.ContinueOnError)
	gradesCmd.SetOutput(cli.out)
	gradesCourse := gradesCmd.String("course", "", "The course id, e.g. MEME-420.")

	assignmentsCmd := flag.NewFlagSet("assignments", flag.ContinueOnError)
	assignmentsCmd.SetOutput(cli.out)
	assignmentsCourse := assignmentsCmd.String("course", "", "The course id, e.g. MEME-420.")
	assignmentsStatus := assignmentsCmd.String("status", "", `Only list assignments in this status: "not submitted", "submitted" or "graded".`)

	quizCmd := flag.NewFlagSet("quiz", flag.ContinueOnError)
	quizCmd.SetOutput(cli.out)
	quizID := quizCmd.String("id", "", "The quiz id.")

	switch args[1] {
	case "courses":
		return cli.courses(ctx)
	case "dashboard":
		return cli.dashboard(ctx)
	case "grades":
		if err := gradesCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *gradesCourse == "" {
			gradesCmd.Usage()
			return errHelp
		}
		return cli.grades(ctx, *gradesCourse)
	case "assignments":
		if err := assignmentsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *assignmentsCourse == "" {
			assignmentsCmd.Usage()
			return errHelp
		}
		return cli.assignments(ctx, *assignmentsCourse, *assignmentsStatus)
	case "quiz":
		if err := quizCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *quizID == "" {
			quizCmd.Usage()
			return errHelp
		}
		return cli.takeQuiz(ctx, *quizID)
	default:
		cli.printUsage()
		return errHelp
	}
}

// readLine returns the next trimmed line of input.
func (cli *commandLine) readLine() (string, error) {
	line, err := cli.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// row pads every cell to its width, measured in terminal columns.
func row(widths []int, cells ...string) string {
	var sb strings.Builder
	for i, cell := range cells {
		if i < len(widths) && i < len(cells)-1 {
			sb.WriteString(runewidth.FillRight(runewidth.Truncate(cell, widths[i], "…"), widths[i]))
			sb.WriteString("  ")
			continue
		}
		sb.WriteString(cell)
	}
	return strings.TrimRight(sb.String(), " ")
}
