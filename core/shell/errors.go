package shell

import (
	"errors"
	"fmt"
)

// ErrExit is returned when a line asks the interpreter to terminate.
var ErrExit = errors.New("exit")

// ArgumentError reports a builtin or line invoked with missing or invalid
// arguments.
type ArgumentError struct {
	Cmd string
	Msg string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Cmd, e.Msg)
}

// InvalidOffsetError reports a history offset that doesn't name a live entry.
type InvalidOffsetError struct {
	Offset string
	Err    error
}

func (e *InvalidOffsetError) Error() string {
	return fmt.Sprintf("history: %s: invalid offset", e.Offset)
}

func (e *InvalidOffsetError) Unwrap() error {
	return e.Err
}

// DirectoryError reports a failed change of working directory.
type DirectoryError struct {
	Dir string
	Err error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("cd: %s: %v", e.Dir, e.Err)
}

func (e *DirectoryError) Unwrap() error {
	return e.Err
}

// SyntaxError reports a line that couldn't be tokenized.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %v", e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// replayError carries the result of a replayed line back through the history
// builtin that ran it.
type replayError struct {
	Err error
}

func (e *replayError) Error() string {
	return e.Err.Error()
}

func (e *replayError) Unwrap() error {
	return e.Err
}
