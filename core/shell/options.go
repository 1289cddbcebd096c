package shell

import (
	"io"

	"github.com/josephlewis42/sish/core/history"
	"github.com/josephlewis42/sish/core/logger"
)

type ShellOption func(*Shell) error

// WithHistory replaces the default history buffer.
func WithHistory(h *history.Buffer) ShellOption {
	return func(s *Shell) error {
		s.History = h
		return nil
	}
}

func WithStdin(r io.Reader) ShellOption {
	return func(s *Shell) error {
		s.Stdin = r
		return nil
	}
}

func WithStdout(w io.Writer) ShellOption {
	return func(s *Shell) error {
		s.Stdout = w
		return nil
	}
}

func WithStderr(w io.Writer) ShellOption {
	return func(s *Shell) error {
		s.Stderr = w
		return nil
	}
}

func WithPrompt(prompt string) ShellOption {
	return func(s *Shell) error {
		s.Prompt = prompt
		return nil
	}
}

func WithArgLimit(limit int) ShellOption {
	return func(s *Shell) error {
		s.ArgLimit = limit
		return nil
	}
}

func WithColor(enabled bool) ShellOption {
	return func(s *Shell) error {
		s.Color = enabled
		return nil
	}
}

// WithEnv sets the environment of every command, nil inherits the process
// environment.
func WithEnv(env []string) ShellOption {
	return func(s *Shell) error {
		s.Env = env
		return nil
	}
}

// WithCwd starts the shell in dir.
func WithCwd(dir string) ShellOption {
	return func(s *Shell) error {
		return s.Chdir(dir)
	}
}

// WithProcessChdir makes cd change the working directory of the whole
// process, not only that of the commands the shell launches.
func WithProcessChdir() ShellOption {
	return func(s *Shell) error {
		s.chdirProcess = true
		return nil
	}
}

func WithLogger(l *logger.SessionLogger) ShellOption {
	return func(s *Shell) error {
		s.log = l
		return nil
	}
}

// OnHistoryClear registers a callback run after `history -c`.
func OnHistoryClear(fn func()) ShellOption {
	return func(s *Shell) error {
		s.onClear = append(s.onClear, fn)
		return nil
	}
}
