package cmd

import (
	"fmt"

	"github.com/josephlewis42/sish/core/logger"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var reportSession string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Explore the shell event log.",
	Long: `Explore the JSON-lines event log written to the app_log file of the
configuration directory. Every interpreter run is one session.`,
}

var reportCommand = &cobra.Command{
	Use:   "report",
	Short: "Summarize the event log as YAML.",
	Long: `Summarize the event log as YAML.

The report counts sessions, the programs that ran with their exit statuses
and terminating signals, programs that couldn't be executed, misused builtins
grouped by error, pipeline setup failures and history replays and clears.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		config, err := loadConfig()
		if err != nil {
			return err
		}

		fd, err := config.ReadAppLog()
		if err != nil {
			return err
		}
		defer fd.Close()

		var report logger.Report
		err = logger.ReadJSONLinesLog(fd, func(le *logger.LogEntry) {
			if reportSession != "" && le.SessionID != reportSession {
				return
			}
			report.Update(le)
		})
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(report)
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(reportCommand)
	reportCommand.Flags().StringVar(&reportSession, "session", "", "only count events from the session with this ID")
}
