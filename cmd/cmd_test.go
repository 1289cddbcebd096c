package cmd

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		cfgPath = "."
		commandLine = ""
		envVars = nil
		reportSession = ""
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestBuiltinsCommand(t *testing.T) {
	out, err := runCLI(t, "builtins")

	require.NoError(t, err)
	assert.Equal(t, "cd\nexit\nhistory\n", out)
}

func TestInitThenReport(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, "init", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.log"), []byte(
		`{"level":"info","timestamp":"2024-01-01T00:00:00Z","type":"history_clear","session_id":"s1","event":{"entries":3}}`+"\n",
	), 0o600))

	out, err := runCLI(t, "events", "report", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "history_clears: 1")
	assert.Contains(t, out, "log_entries: 1")
}

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, colorEnabled("always", &buf))
	assert.False(t, colorEnabled("never", &buf))
	assert.False(t, colorEnabled("auto", &buf))
}

func TestExitStatus(t *testing.T) {
	assert.EqualError(t, exitStatus(3), "exit status 3")
}

func TestEnvFlag(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skipf("sh not available: %v", err)
	}
	line := `sh -c 'test "$SISH_MODE" = on'`

	_, err := runCLI(t, "--env", "SISH_MODE=on", "-c", line)
	assert.NoError(t, err)

	_, err = runCLI(t, "-c", line)
	assert.Equal(t, exitStatus(1), err)
}

func TestCommandEnv(t *testing.T) {
	env, err := commandEnv([]string{"A=1"}, []string{"B=2", "A=3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A=1", "B=2", "A=3"}, env)

	for _, bad := range []string{"NOEQUALS", "=value"} {
		_, err := commandEnv(nil, []string{bad})
		require.Error(t, err, bad)
		assert.Contains(t, err.Error(), "expected KEY=VALUE")
	}
}

func TestReportSessionFilter(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "init", dir)
	require.NoError(t, err)

	log := `{"level":"info","timestamp":"2024-01-01T00:00:00Z","type":"history_replay","session_id":"s1","event":{"offset":0,"line":"ls"}}
{"level":"info","timestamp":"2024-01-01T00:00:01Z","type":"history_replay","session_id":"s2","event":{"offset":1,"line":"pwd"}}
{"level":"info","timestamp":"2024-01-01T00:00:02Z","type":"history_clear","session_id":"s2","event":{"entries":2}}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.log"), []byte(log), 0o600))

	out, err := runCLI(t, "events", "report", "--config", dir, "--session", "s2")
	require.NoError(t, err)
	assert.Contains(t, out, "log_entries: 2")
	assert.Contains(t, out, "history_replays: 1")
	assert.Contains(t, out, "history_clears: 1")
}
