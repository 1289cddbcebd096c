package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// LogEntry is a single decoded line of the event log.
type LogEntry struct {
	Timestamp string          `json:"timestamp"`
	Level     string          `json:"level"`
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	Event     json.RawMessage `json:"event"`
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	Sessions       StrCounter `json:"sessions"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	RunCommand        RunCommandReport        `json:"run_command_report"`
	UnknownCommand    UnknownCommandReport    `json:"unknown_command_report"`
	InvalidInvocation InvalidInvocationReport `json:"invalid_invocation_report"`
	PipelineErrors    []string                `json:"pipeline_errors,omitempty"`
	HistoryReplays    int                     `json:"history_replays"`
	HistoryClears     int                     `json:"history_clears"`
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++
	if le.SessionID != "" {
		r.Sessions.Increment(le.SessionID)
	}

	var err error
	switch le.Type {
	case TypeRunCommand:
		var event RunCommand
		if err = json.Unmarshal(le.Event, &event); err == nil {
			r.RunCommand.update(&event)
		}
	case TypeUnknownCommand:
		var event UnknownCommand
		if err = json.Unmarshal(le.Event, &event); err == nil {
			r.UnknownCommand.update(&event)
		}
	case TypeInvalidInvocation:
		var event InvalidInvocation
		if err = json.Unmarshal(le.Event, &event); err == nil {
			r.InvalidInvocation.update(&event)
		}
	case TypePipelineError:
		var event PipelineError
		if err = json.Unmarshal(le.Event, &event); err == nil {
			r.PipelineErrors = append(r.PipelineErrors, fmt.Sprintf("%s: %s", event.Pipeline, event.Error))
		}
	case TypeHistoryReplay:
		r.HistoryReplays++
	case TypeHistoryClear:
		r.HistoryClears++
	case TypeSessionStart, TypeSessionEnd, TypeChdir:
		// Ignore
	default:
		r.InvalidEntries.Increment(le.Type)
	}

	if err != nil {
		r.InvalidEntries.Increment(le.Type)
	}
}

type RunCommandReport struct {
	// Name of the command
	CommandNames StrCounter `json:"command_names"`
	// Exit statuses of the commands
	Statuses StrCounter `json:"statuses"`
	// Signals that terminated commands
	Signals StrCounter `json:"signals,omitempty"`
}

func (r *RunCommandReport) update(rc *RunCommand) {
	if len(rc.Command) > 0 {
		r.CommandNames.Increment(rc.Command[0])
	}
	r.Statuses.Increment(strconv.Itoa(rc.Status))
	if rc.Signal != "" {
		r.Signals.Increment(rc.Signal)
	}
}

type UnknownCommandReport struct {
	CommandNames    StrCounter `json:"command_names"`
	CommandStatuses StrCounter `json:"command_statuses"`
}

func (r *UnknownCommandReport) update(logEntry *UnknownCommand) {
	if len(logEntry.Command) > 0 {
		r.CommandNames.Increment(logEntry.Command[0])
	}

	r.CommandStatuses.Increment(strconv.Itoa(logEntry.Status))
}

type InvalidInvocationReport struct {
	Invocations *PathCounter `json:"invocations"`
}

func (r *InvalidInvocationReport) update(logEntry *InvalidInvocation) {
	if r.Invocations == nil {
		r.Invocations = NewPathCounter("command", "error")
	}
	name := ""
	if len(logEntry.Command) > 0 {
		name = logEntry.Command[0]
	}
	r.Invocations.Increment(name, logEntry.Error)
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Count returns how many times key was seen.
func (s *StrCounter) Count(key string) int {
	return s.internal[key]
}

// Len returns the number of distinct keys.
func (s *StrCounter) Len() int {
	return len(s.internal)
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	if s.internal == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts the number of string tuples seen.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// Count returns how many times the tuple was seen.
func (ctr *PathCounter) Count(vals ...string) int {
	return ctr.internal[toKey(vals...)]
}

// MarshalJSON implemnts custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	out := []Count{}
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
