// Package shell reads command lines, dispatches builtins and runs everything
// else as a pipeline of OS processes.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/josephlewis42/sish/core/history"
	"github.com/josephlewis42/sish/core/logger"
	"github.com/josephlewis42/sish/core/pipeline"
)

const (
	DefaultPrompt   = "sish> "
	DefaultArgLimit = 25

	exitCommand = "exit"

	// maxReplayDepth bounds history replays that replay other replays.
	maxReplayDepth = 32
)

var (
	ColorBoldGreen = color.New(color.FgGreen, color.Bold)
	ColorBoldRed   = color.New(color.FgRed, color.Bold)
)

type Shell struct {
	History *history.Buffer

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Prompt   string
	ArgLimit int
	Env      []string
	Color    bool

	log          *logger.SessionLogger
	onClear      []func()
	wd           string
	chdirProcess bool

	lastStatus int
	depth      int
}

// New creates a shell attached to the process's standard streams and
// working directory.
func New(options ...ShellOption) (*Shell, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	s := &Shell{
		History:  history.New(history.DefaultCapacity),
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Prompt:   DefaultPrompt,
		ArgLimit: DefaultArgLimit,
		log:      logger.Nop().NewSession(),
		wd:       wd,
	}
	for _, opt := range options {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Dir returns the working directory commands are started in.
func (s *Shell) Dir() string {
	return s.wd
}

// Status returns the exit status of the last line.
func (s *Shell) Status() int {
	return s.lastStatus
}

// Chdir changes the working directory of subsequent commands. On failure the
// directory is left unchanged.
func (s *Shell) Chdir(dir string) error {
	target := dir
	if !filepath.IsAbs(target) {
		target = filepath.Join(s.wd, target)
	}

	info, err := os.Stat(target)
	if err != nil {
		return &DirectoryError{Dir: dir, Err: unwrapPathError(err)}
	}
	if !info.IsDir() {
		return &DirectoryError{Dir: dir, Err: syscall.ENOTDIR}
	}
	if s.chdirProcess {
		if err := os.Chdir(target); err != nil {
			return &DirectoryError{Dir: dir, Err: unwrapPathError(err)}
		}
	}

	s.wd = target
	s.log.Record(logger.Chdir{Dir: target})
	return nil
}

func unwrapPathError(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

func (s *Shell) prompt() string {
	if s.Color {
		return ColorBoldGreen.Sprint(s.Prompt)
	}
	return s.Prompt
}

// Run reads and executes lines until the input ends or a line terminates
// the shell. Errors from individual lines are reported on Stderr and don't
// stop the loop.
//
// While Run is active an interrupt only reaches the running commands, the
// shell itself keeps going. The signal is handled rather than ignored so
// children start with the default disposition.
func (s *Shell) Run(r LineReader) error {
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	_, interactive := r.(*readline.Instance)
	s.log.Record(logger.SessionStart{Interactive: interactive, Dir: s.wd})

	for {
		drain(interrupts)
		r.SetPrompt(s.prompt())
		line, err := r.Readline()

		switch {
		case errors.Is(err, io.EOF):
			s.terminate()
			return nil // Input closed, quit.

		case errors.Is(err, readline.ErrInterrupt):
			continue // Interrupt clears the line.

		case err != nil:
			return err
		}

		if err := s.Execute(line); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			s.Report(err)
		}
	}
}

// drain discards interrupts delivered while the last line ran.
func drain(ch <-chan os.Signal) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

// Execute records line in the history and runs it. It returns ErrExit if the
// line terminated the shell.
func (s *Shell) Execute(line string) error {
	if IsBlank(line) {
		return nil
	}
	s.History.Append(line)
	return s.dispatch(line)
}

// Report prints each error joined in err to Stderr.
func (s *Shell) Report(err error) {
	for _, e := range splitErrors(err) {
		msg := fmt.Sprintf("sish: %v", e)
		if s.Color {
			msg = ColorBoldRed.Sprint(msg)
		}
		fmt.Fprintln(s.Stderr, msg)
	}
}

// dispatch parses line from scratch and routes it. History replays re-enter
// here with the stored line.
func (s *Shell) dispatch(line string) error {
	p, err := ParseLine(line, s.ArgLimit)
	if err != nil {
		s.lastStatus = 2
		s.log.Record(logger.InvalidInvocation{Command: []string{line}, Error: err.Error()})
		return err
	}

	switch {
	case len(p) == 0:
		return nil
	case len(p) == 1:
		return s.runCommand(p[0])
	}

	for _, c := range p {
		if c.Name() == exitCommand {
			err := &ArgumentError{Cmd: exitCommand, Msg: "cannot be used in a pipeline"}
			s.lastStatus = 2
			s.log.Record(logger.InvalidInvocation{Command: c, Error: err.Error()})
			return err
		}
	}
	return s.runPipeline(p)
}

func (s *Shell) runCommand(c pipeline.Command) error {
	if c.Name() == exitCommand {
		s.terminate()
		return ErrExit
	}

	builtin, ok := AllBuiltins[c.Name()]
	if !ok {
		return s.runPipeline(pipeline.Pipeline{c})
	}

	err := builtin.Main(s, c)
	var replayed *replayError
	switch {
	case err == nil:
		s.lastStatus = 0
	case errors.As(err, &replayed):
		// Already recorded by the replayed line.
		return replayed.Err
	default:
		var argErr *ArgumentError
		var offErr *InvalidOffsetError
		var dirErr *DirectoryError
		if errors.As(err, &argErr) || errors.As(err, &offErr) || errors.As(err, &dirErr) {
			s.lastStatus = 1
			s.log.Record(logger.InvalidInvocation{Command: c, Error: err.Error()})
		}
	}
	return err
}

func (s *Shell) runPipeline(p pipeline.Pipeline) error {
	executor := &pipeline.Executor{
		Stdin:  s.Stdin,
		Stdout: s.Stdout,
		Stderr: s.Stderr,
		Dir:    s.wd,
		Env:    s.Env,
	}

	res, err := executor.Run(p)
	if res != nil {
		s.lastStatus = res.ExitCode()
		for _, st := range res.Stages {
			if !st.Started {
				continue
			}
			s.log.Record(logger.RunCommand{
				Command:        st.Args,
				Stage:          st.Stage,
				Status:         st.Code,
				Signal:         st.Signal,
				DurationMillis: st.Duration.Milliseconds(),
			})
		}
	} else {
		s.lastStatus = 1
	}

	if err != nil {
		s.logPipelineError(p, err)
	}
	return err
}

func (s *Shell) logPipelineError(p pipeline.Pipeline, err error) {
	for _, e := range splitErrors(err) {
		var execErr *pipeline.ExecError
		if errors.As(e, &execErr) {
			s.log.Record(logger.UnknownCommand{
				Command: p[execErr.Stage],
				Status:  execErr.Status(),
				Error:   execErr.Error(),
			})
			continue
		}
		s.log.Record(logger.PipelineError{Pipeline: p.String(), Error: e.Error()})
	}
}

func splitErrors(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// terminate releases the history ahead of the shell exiting.
func (s *Shell) terminate() {
	s.History.Clear()
	s.log.Record(logger.SessionEnd{Status: s.lastStatus})
}
