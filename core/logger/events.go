package logger

import (
	"go.uber.org/zap/zapcore"
)

// Event is a single loggable interpreter occurrence. The JSON tags of each
// event match the keys it is marshaled with so logs can be read back.
type Event interface {
	zapcore.ObjectMarshaler

	// Type names the event, it's stored as the log message.
	Type() string
	Level() zapcore.Level
}

const (
	TypeSessionStart      = "session_start"
	TypeSessionEnd        = "session_end"
	TypeRunCommand        = "run_command"
	TypeUnknownCommand    = "unknown_command"
	TypeInvalidInvocation = "invalid_invocation"
	TypePipelineError     = "pipeline_error"
	TypeHistoryReplay     = "history_replay"
	TypeHistoryClear      = "history_clear"
	TypeChdir             = "chdir"
)

type stringArray []string

func (s stringArray) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, v := range s {
		enc.AppendString(v)
	}
	return nil
}

// SessionStart is logged when an interpreter begins reading input.
type SessionStart struct {
	Interactive bool   `json:"interactive"`
	Dir         string `json:"dir"`
}

func (SessionStart) Type() string { return TypeSessionStart }
func (SessionStart) Level() zapcore.Level { return zapcore.InfoLevel }

func (e SessionStart) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddBool("interactive", e.Interactive)
	enc.AddString("dir", e.Dir)
	return nil
}

// SessionEnd is logged when an interpreter terminates.
type SessionEnd struct {
	Status int `json:"status"`
}

func (SessionEnd) Type() string { return TypeSessionEnd }
func (SessionEnd) Level() zapcore.Level { return zapcore.InfoLevel }

func (e SessionEnd) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("status", e.Status)
	return nil
}

// RunCommand is logged for every pipeline stage that ran to completion.
type RunCommand struct {
	Command        []string `json:"command"`
	Stage          int      `json:"stage"`
	Status         int      `json:"status"`
	Signal         string   `json:"signal,omitempty"`
	DurationMillis int64    `json:"duration_ms"`
}

func (RunCommand) Type() string { return TypeRunCommand }
func (RunCommand) Level() zapcore.Level { return zapcore.InfoLevel }

func (e RunCommand) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if err := enc.AddArray("command", stringArray(e.Command)); err != nil {
		return err
	}
	enc.AddInt("stage", e.Stage)
	enc.AddInt("status", e.Status)
	if e.Signal != "" {
		enc.AddString("signal", e.Signal)
	}
	enc.AddInt64("duration_ms", e.DurationMillis)
	return nil
}

// UnknownCommand is logged when a stage's program couldn't be executed.
type UnknownCommand struct {
	Command []string `json:"command"`
	Status  int      `json:"status"`
	Error   string   `json:"error"`
}

func (UnknownCommand) Type() string { return TypeUnknownCommand }
func (UnknownCommand) Level() zapcore.Level { return zapcore.WarnLevel }

func (e UnknownCommand) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if err := enc.AddArray("command", stringArray(e.Command)); err != nil {
		return err
	}
	enc.AddInt("status", e.Status)
	enc.AddString("error", e.Error)
	return nil
}

// InvalidInvocation is logged when a builtin or a line is used incorrectly.
type InvalidInvocation struct {
	Command []string `json:"command"`
	Error   string   `json:"error"`
}

func (InvalidInvocation) Type() string { return TypeInvalidInvocation }
func (InvalidInvocation) Level() zapcore.Level { return zapcore.WarnLevel }

func (e InvalidInvocation) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if err := enc.AddArray("command", stringArray(e.Command)); err != nil {
		return err
	}
	enc.AddString("error", e.Error)
	return nil
}

// PipelineError is logged when the OS couldn't set up a pipeline.
type PipelineError struct {
	Pipeline string `json:"pipeline"`
	Error    string `json:"error"`
}

func (PipelineError) Type() string { return TypePipelineError }
func (PipelineError) Level() zapcore.Level { return zapcore.ErrorLevel }

func (e PipelineError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("pipeline", e.Pipeline)
	enc.AddString("error", e.Error)
	return nil
}

// HistoryReplay is logged when a stored line is run again.
type HistoryReplay struct {
	Offset int    `json:"offset"`
	Line   string `json:"line"`
}

func (HistoryReplay) Type() string { return TypeHistoryReplay }
func (HistoryReplay) Level() zapcore.Level { return zapcore.InfoLevel }

func (e HistoryReplay) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("offset", e.Offset)
	enc.AddString("line", e.Line)
	return nil
}

// HistoryClear is logged when the history is wiped.
type HistoryClear struct {
	Entries int `json:"entries"`
}

func (HistoryClear) Type() string { return TypeHistoryClear }
func (HistoryClear) Level() zapcore.Level { return zapcore.InfoLevel }

func (e HistoryClear) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("entries", e.Entries)
	return nil
}

// Chdir is logged when the working directory changes.
type Chdir struct {
	Dir string `json:"dir"`
}

func (Chdir) Type() string { return TypeChdir }
func (Chdir) Level() zapcore.Level { return zapcore.DebugLevel }

func (e Chdir) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("dir", e.Dir)
	return nil
}
