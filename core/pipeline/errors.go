package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"syscall"
)

var (
	// ErrEmptyPipeline is returned when Run is given no stages.
	ErrEmptyPipeline = errors.New("empty pipeline")
	// ErrEmptyCommand is returned when a stage has no program name.
	ErrEmptyCommand = errors.New("empty command")
)

const (
	// StatusNotFound is the exit status of a stage whose program doesn't exist.
	StatusNotFound = 127
	// StatusNotExecutable is the exit status of a stage whose program exists
	// but couldn't be started.
	StatusNotExecutable = 126
	// StatusNotLaunched marks stages that were never attempted because an
	// earlier stage failed to launch.
	StatusNotLaunched = -1
)

// PipeError is returned when the pipes connecting the stages can't be
// allocated. No stage is started when it occurs.
type PipeError struct {
	// Index of the pipe that failed, pipe i connects stage i to stage i+1.
	Index int
	Err   error
}

func (e *PipeError) Error() string {
	return fmt.Sprintf("cannot create pipe %d: %v", e.Index, e.Err)
}

func (e *PipeError) Unwrap() error {
	return e.Err
}

// LaunchError is returned when the OS refused to create the process for a
// stage. Stages after it are not started; stages before it are still waited on.
type LaunchError struct {
	Stage int
	Name  string
	Err   error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("%s: cannot launch process: %v", e.Name, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// ExecError is returned when a stage's program couldn't be executed. The
// rest of the pipeline still runs.
type ExecError struct {
	Stage int
	Name  string
	Err   error
}

func (e *ExecError) Error() string {
	if errors.Is(e.Err, exec.ErrNotFound) {
		return fmt.Sprintf("%s: command not found", e.Name)
	}
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Status is the exit status a shell would report for the stage.
func (e *ExecError) Status() int {
	if errors.Is(e.Err, exec.ErrNotFound) || errors.Is(e.Err, fs.ErrNotExist) {
		return StatusNotFound
	}
	return StatusNotExecutable
}

// isExecFailure reports whether a Start error means the program itself was
// unusable rather than the OS failing to create a process.
func isExecFailure(err error) bool {
	var execErr *exec.Error
	switch {
	case errors.As(err, &execErr):
		return true
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission),
		errors.Is(err, syscall.ENOEXEC),
		errors.Is(err, syscall.ENOTDIR),
		errors.Is(err, syscall.EISDIR):
		return true
	default:
		return false
	}
}
