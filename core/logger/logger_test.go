package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"sigs.k8s.io/yaml"
)

func TestSessionLogger_Record(t *testing.T) {
	buf := &bytes.Buffer{}
	session := NewJSONLinesLogger(buf, zapcore.InfoLevel).NewSession()

	session.Record(RunCommand{Command: []string{"ls", "-l"}, Stage: 1, Status: 2, DurationMillis: 7})

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, "run_command", raw["type"])
	assert.Equal(t, "info", raw["level"])
	assert.Equal(t, session.SessionID(), raw["session_id"])
	assert.NotEmpty(t, raw["timestamp"])
	assert.Equal(t, map[string]interface{}{
		"command":     []interface{}{"ls", "-l"},
		"stage":       float64(1),
		"status":      float64(2),
		"duration_ms": float64(7),
	}, raw["event"])
}

func TestSessionLogger_level(t *testing.T) {
	buf := &bytes.Buffer{}
	session := NewJSONLinesLogger(buf, zapcore.WarnLevel).NewSession()

	session.Record(Chdir{Dir: "/tmp"})
	session.Record(HistoryReplay{Offset: 1, Line: "ls"})
	assert.Zero(t, buf.Len(), "events below the level must be dropped")

	session.Record(UnknownCommand{Command: []string{"nope"}, Status: 127, Error: "nope: command not found"})
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestNop(t *testing.T) {
	session := Nop().NewSession()

	assert.NotEmpty(t, session.SessionID())
	assert.NotPanics(t, func() {
		session.Record(SessionEnd{Status: 0})
	})
}

func TestNewSession_uniqueIDs(t *testing.T) {
	l := Nop()

	assert.NotEqual(t, l.NewSession().SessionID(), l.NewSession().SessionID())
}

func TestReport(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewJSONLinesLogger(buf, zapcore.DebugLevel)
	first, second := l.NewSession(), l.NewSession()

	first.Record(SessionStart{Interactive: true, Dir: "/"})
	first.Record(RunCommand{Command: []string{"ls"}, Status: 0})
	first.Record(RunCommand{Command: []string{"ls", "/nope"}, Status: 2})
	first.Record(RunCommand{Command: []string{"yes"}, Status: 141, Signal: "SIGPIPE"})
	second.Record(UnknownCommand{Command: []string{"nope"}, Status: 127, Error: "nope: command not found"})
	second.Record(InvalidInvocation{Command: []string{"cd"}, Error: "cd: missing operand"})
	second.Record(InvalidInvocation{Command: []string{"cd"}, Error: "cd: missing operand"})
	second.Record(PipelineError{Pipeline: "a | b", Error: "cannot create pipe 0: too many open files"})
	second.Record(HistoryReplay{Offset: 3, Line: "ls"})
	second.Record(HistoryClear{Entries: 4})
	second.Record(Chdir{Dir: "/tmp"})
	buf.WriteString(`{"type":"mystery","session_id":"x"}` + "\n")

	var report Report
	require.NoError(t, ReadJSONLinesLog(buf, report.Update))

	assert.Equal(t, 12, report.LogEntries)
	assert.Equal(t, 7, report.Sessions.Count(second.SessionID()))
	assert.Equal(t, 2, report.RunCommand.CommandNames.Count("ls"))
	assert.Equal(t, 1, report.RunCommand.Statuses.Count("2"))
	assert.Equal(t, 1, report.RunCommand.Signals.Count("SIGPIPE"))
	assert.Equal(t, 1, report.UnknownCommand.CommandNames.Count("nope"))
	assert.Equal(t, 1, report.UnknownCommand.CommandStatuses.Count("127"))
	assert.Equal(t, 2, report.InvalidInvocation.Invocations.Count("cd", "cd: missing operand"))
	assert.Equal(t, []string{"a | b: cannot create pipe 0: too many open files"}, report.PipelineErrors)
	assert.Equal(t, 1, report.HistoryReplays)
	assert.Equal(t, 1, report.HistoryClears)
	assert.Equal(t, 1, report.InvalidEntries.Count("mystery"))

	out, err := yaml.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(out), "log_entries: 12")
}

func TestReadJSONLinesLog_invalid(t *testing.T) {
	err := ReadJSONLinesLog(strings.NewReader("{not json"), func(*LogEntry) {})

	assert.Error(t, err)
}

func TestPathCounter_MarshalJSON(t *testing.T) {
	ctr := NewPathCounter("command", "error")
	ctr.Increment("cd", "missing operand")
	ctr.Increment("history", "invalid arguments")
	ctr.Increment("history", "invalid arguments")

	out, err := json.Marshal(ctr)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"count": 2, "event": {"command": "history", "error": "invalid arguments"}},
		{"count": 1, "event": {"command": "cd", "error": "missing operand"}}
	]`, string(out))

	assert.Panics(t, func() { ctr.Increment("too", "many", "columns") })
}
