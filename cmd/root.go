package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/josephlewis42/sish/core/config"
	"github.com/josephlewis42/sish/core/history"
	"github.com/josephlewis42/sish/core/logger"
	"github.com/josephlewis42/sish/core/shell"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgPath     string
	commandLine string
	envVars     []string
)

// exitStatus is returned by commands that want the process to exit with a
// specific non-zero status without printing anything further.
type exitStatus int

func (e exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		cliLogger().Warn("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// shellConfig loads the configuration, falling back to the built-in defaults
// with the event log disabled when none was initialized.
func shellConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		configuration = config.Default(cfgPath)
		configuration.AppLog = ""
		return configuration, nil
	}
	return configuration, err
}

func cliLogger() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// openEventLog returns the event logger described by the configuration and
// a function to flush and close it.
func openEventLog(cfg *config.Configuration) (*logger.Logger, func(), error) {
	fd, err := cfg.OpenAppLog()
	switch {
	case errors.Is(err, config.ErrNoAppLog):
		return logger.Nop(), func() {}, nil
	case err != nil:
		return nil, nil, err
	}

	events := logger.NewJSONLinesLogger(fd, cfg.Level())
	return events, func() {
		_ = events.Sync()
		fd.Close()
	}, nil
}

func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		color.NoColor = false
		return true
	case config.ColorNever:
		color.NoColor = true
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) && os.Getenv("TERM") != "dumb"
	}
	return false
}

// newLineReader picks line editing for terminals and plain line scanning for
// everything else.
func newLineReader(cfg *config.Configuration, in *os.File, out, errOut io.Writer) (shell.LineReader, func(), []shell.ShellOption, error) {
	if !isatty.IsTerminal(in.Fd()) {
		return shell.NewScanReader(in), func() {}, nil, nil
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cfg.Prompt,
		HistoryLimit:    cfg.HistorySize,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          out,
		Stderr:          errOut,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []shell.ShellOption{
		shell.OnHistoryClear(rl.Operation.ResetHistory),
	}
	return rl, func() { rl.Close() }, opts, nil
}

// commandEnv appends KEY=VALUE assignments to base, later ones win.
func commandEnv(base, assignments []string) ([]string, error) {
	env := append([]string(nil), base...)
	for _, kv := range assignments {
		if key, _, ok := strings.Cut(kv, "="); !ok || key == "" {
			return nil, fmt.Errorf("--env %q: expected KEY=VALUE", kv)
		}
		env = append(env, kv)
	}
	return env, nil
}

// rootCmd runs the interpreter when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sish",
	Short: "Simple interactive shell",
	Long: `A small command interpreter that runs pipelines of programs and keeps a
bounded, replayable history of the lines it was given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := shellConfig()
		if err != nil {
			return err
		}

		events, closeLog, err := openEventLog(cfg)
		if err != nil {
			return err
		}
		defer closeLog()

		opts := []shell.ShellOption{
			shell.WithHistory(history.New(cfg.HistorySize)),
			shell.WithArgLimit(cfg.ArgLimit),
			shell.WithPrompt(cfg.Prompt),
			shell.WithColor(colorEnabled(cfg.Color, os.Stderr)),
			shell.WithLogger(events.NewSession()),
			shell.WithProcessChdir(),
		}
		if len(envVars) > 0 {
			env, err := commandEnv(os.Environ(), envVars)
			if err != nil {
				return err
			}
			opts = append(opts, shell.WithEnv(env))
		}

		if cmd.Flags().Changed("command") {
			sh, err := shell.New(opts...)
			if err != nil {
				return err
			}
			if err := sh.Execute(commandLine); err != nil && !errors.Is(err, shell.ErrExit) {
				sh.Report(err)
				if sh.Status() == 0 {
					cmd.SilenceErrors = true
					return exitStatus(1)
				}
			}
			if status := sh.Status(); status != 0 {
				cmd.SilenceErrors = true
				return exitStatus(status)
			}
			return nil
		}

		reader, closeReader, readerOpts, err := newLineReader(cfg, os.Stdin, os.Stdout, os.Stderr)
		if err != nil {
			return err
		}
		defer closeReader()

		sh, err := shell.New(append(opts, readerOpts...)...)
		if err != nil {
			return err
		}
		return sh.Run(reader)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()

	var status exitStatus
	if errors.As(err, &status) {
		os.Exit(int(status))
	}
	cobra.CheckErr(err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
	rootCmd.Flags().StringVarP(&commandLine, "command", "c", "", "run a single line and exit with its status")
	rootCmd.Flags().StringArrayVarP(&envVars, "env", "e", nil, "set KEY=VALUE in the environment of every command")
}
