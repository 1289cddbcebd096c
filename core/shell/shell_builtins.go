package shell

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/josephlewis42/sish/core/logger"
	"github.com/pborman/getopt/v2"
)

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]ShellBuiltin)

type ShellBuiltin interface {
	Main(s *Shell, args []string) error
}

type ShellBuiltinFunc func(s *Shell, args []string) error

func (f ShellBuiltinFunc) Main(s *Shell, args []string) error {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// Cd is the cd shell builtin
func Cd(s *Shell, args []string) error {
	switch len(args) {
	case 1:
		return &ArgumentError{Cmd: args[0], Msg: "missing directory operand"}
	case 2:
		return s.Chdir(args[1])
	default:
		return &ArgumentError{Cmd: args[0], Msg: "too many arguments"}
	}
}

// History lists, clears or replays entries of the history buffer.
func History(s *Shell, args []string) error {
	opts := getopt.New()
	clearOpt := opts.Bool('c', "clear the history by deleting all entries")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")
	opts.SetParameters("[offset]")

	if err := opts.Getopt(args, nil); err != nil {
		return &ArgumentError{Cmd: args[0], Msg: "invalid arguments"}
	}

	if *helpOpt {
		w := s.Stdout
		fmt.Fprintln(w, "usage: history [-c] [offset]")
		fmt.Fprintln(w, "Display the history list with line numbers, or run the line at offset.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		opts.PrintOptions(w)
		return nil
	}

	rest := opts.Args()
	switch {
	case *clearOpt && len(rest) == 0:
		s.ClearHistory()
		return nil

	case *clearOpt:
		return &ArgumentError{Cmd: args[0], Msg: "invalid arguments"}

	case len(rest) == 0:
		for i, line := range s.History.All() {
			fmt.Fprintf(s.Stdout, "%5d  %s\n", i, line)
		}
		return nil

	case len(rest) == 1 && isOffset(rest[0]):
		return s.replay(rest[0])

	default:
		return &ArgumentError{Cmd: args[0], Msg: "invalid arguments"}
	}
}

func isOffset(arg string) bool {
	return arg != "" && strings.Trim(arg, "0123456789") == ""
}

// replay runs the history entry at offset as though it had just been typed.
func (s *Shell) replay(arg string) error {
	offset, err := strconv.Atoi(arg)
	if err != nil {
		return &InvalidOffsetError{Offset: arg, Err: err}
	}
	line, err := s.History.Lookup(offset)
	if err != nil {
		return &InvalidOffsetError{Offset: arg, Err: err}
	}
	if s.depth >= maxReplayDepth {
		return &ArgumentError{Cmd: "history", Msg: "maximum replay depth exceeded"}
	}

	s.log.Record(logger.HistoryReplay{Offset: offset, Line: line})
	s.History.Append(line)

	s.depth++
	defer func() { s.depth-- }()

	if err := s.dispatch(line); err != nil {
		return &replayError{Err: err}
	}
	return nil
}

// ClearHistory deletes every entry and notifies the OnHistoryClear hooks.
func (s *Shell) ClearHistory() {
	n := s.History.Len()
	s.History.Clear()
	for _, fn := range s.onClear {
		fn()
	}
	s.log.Record(logger.HistoryClear{Entries: n})
}

func init() {
	AllBuiltins["cd"] = ShellBuiltinFunc(Cd)
	AllBuiltins["history"] = ShellBuiltinFunc(History)
}
