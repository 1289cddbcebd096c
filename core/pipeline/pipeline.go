// Package pipeline runs a chain of OS processes with the standard output of
// each stage connected to the standard input of the next.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// Command is a single stage: the program name followed by its arguments.
type Command []string

// Name returns the program name.
func (c Command) Name() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

func (c Command) String() string {
	return strings.Join(c, " ")
}

// Pipeline is an ordered chain of stages. A single stage runs without any
// pipe plumbing.
type Pipeline []Command

func (p Pipeline) String() string {
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = c.String()
	}
	return strings.Join(parts, " | ")
}

// Status describes how a single stage ended.
type Status struct {
	Stage int
	Args  Command
	// Code is the exit status; 128+n when the process was killed by signal n
	// and StatusNotLaunched if the stage was never attempted.
	Code int
	// Signal holds the name of the terminating signal, if any.
	Signal string
	// Started is set when a process was created for the stage.
	Started  bool
	Duration time.Duration
}

// Result holds the per-stage statuses of a finished pipeline.
type Result struct {
	Stages []Status
}

// ExitCode returns the status of the last stage, which is what a shell
// reports for the whole pipeline.
func (r *Result) ExitCode() int {
	if r == nil || len(r.Stages) == 0 {
		return 0
	}
	return r.Stages[len(r.Stages)-1].Code
}

// Executor launches pipelines. The zero value runs stages with no standard
// input or output attached, in the current directory, with the current
// environment.
type Executor struct {
	// Stdin feeds the first stage, Stdout receives the output of the last
	// stage and Stderr is shared by every stage.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Dir is the working directory of every stage.
	Dir string
	// Env is the environment of every stage, nil means the current process
	// environment.
	Env []string

	newPipe func() (*os.File, *os.File, error)
	start   func(*exec.Cmd) error
}

type running struct {
	stage int
	cmd   *exec.Cmd
	began time.Time
}

// Run launches every stage left to right and blocks until all launched
// stages have exited.
//
// Pipe allocation failures abort before anything starts. A stage whose
// program can't be executed gets status 127 or 126 and the rest of the chain
// keeps running. If the OS can't create a process the stages after it are
// skipped. The returned error joins every failure; the Result is valid
// whenever it is non-nil.
func (e *Executor) Run(p Pipeline) (*Result, error) {
	if len(p) == 0 {
		return nil, ErrEmptyPipeline
	}
	for i, c := range p {
		if len(c) == 0 {
			return nil, fmt.Errorf("stage %d: %w", i, ErrEmptyCommand)
		}
	}

	links, err := openPipes(len(p)-1, e.pipeFunc())
	if err != nil {
		return nil, err
	}
	defer links.Close()

	res := &Result{Stages: make([]Status, len(p))}
	for i, c := range p {
		res.Stages[i] = Status{Stage: i, Args: c, Code: StatusNotLaunched}
	}

	var (
		launched []running
		errs     []error
	)
	for i, c := range p {
		cmd := exec.Command(c[0], c[1:]...)
		cmd.Dir = e.Dir
		cmd.Env = e.Env
		cmd.Stderr = e.Stderr
		cmd.Stdin = e.Stdin
		cmd.Stdout = e.Stdout
		if i > 0 {
			cmd.Stdin = links[i-1].r
		}
		if i < len(links) {
			cmd.Stdout = links[i].w
		}

		began := time.Now()
		startErr := e.startFunc()(cmd)

		// The child owns its copies now, drop the parent's so readers see EOF
		// once the writer exits.
		if i > 0 {
			links[i-1].closeReader()
		}
		if i < len(links) {
			links[i].closeWriter()
		}

		if startErr == nil {
			launched = append(launched, running{stage: i, cmd: cmd, began: began})
			continue
		}
		if isExecFailure(startErr) {
			execErr := &ExecError{Stage: i, Name: c.Name(), Err: startErr}
			res.Stages[i].Code = execErr.Status()
			errs = append(errs, execErr)
			continue
		}
		errs = append(errs, &LaunchError{Stage: i, Name: c.Name(), Err: startErr})
		break
	}

	// Anything left is unreachable by a child; close it before waiting or an
	// upstream writer could block forever on a full pipe.
	links.Close()

	for _, r := range launched {
		waitErr := r.cmd.Wait()
		st := &res.Stages[r.stage]
		st.Started = true
		st.Duration = time.Since(r.began)
		st.Code, st.Signal = exitStatus(r.cmd, waitErr)
	}

	return res, errors.Join(errs...)
}

func (e *Executor) pipeFunc() func() (*os.File, *os.File, error) {
	if e.newPipe != nil {
		return e.newPipe
	}
	return os.Pipe
}

func (e *Executor) startFunc() func(*exec.Cmd) error {
	if e.start != nil {
		return e.start
	}
	return (*exec.Cmd).Start
}

func exitStatus(cmd *exec.Cmd, err error) (int, string) {
	state := cmd.ProcessState
	if state == nil {
		return 1, ""
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal()), signalName(ws.Signal())
	}
	if code := state.ExitCode(); code != 0 || err == nil {
		return code, ""
	}
	// Exited cleanly but copying its output failed.
	return 1, ""
}
