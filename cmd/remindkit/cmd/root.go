package cmd

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/remindkit/remindkit/internal/observability"
	"github.com/remindkit/remindkit/internal/profile"
)

var rootCmd = &cobra.Command{
	Use:   "remindkit",
	Short: "Natural language reminders for chat rooms",
	Long: `remindkit parses natural language time expressions ("2d", "friday
at 14:00", "2024-12-24 at 18:00") and schedules room reminders around
them.

Examples:
  remindkit parse "tomorrow at 09:00 standup"
  remindkit format 2026-01-02T15:04:05Z
  remindkit timezone Europe/Helsinki
  remindkit remind "30s stretch"`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(observability.NewLogger(viper.GetString("mode")))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("mode", "m", "dev", `mode can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("timezone", "UTC", "default timezone for parsing")
	rootCmd.PersistentFlags().Duration("scheduler-interval", time.Minute, "how often due reminders are checked")

	for _, flag := range []string{"mode", "timezone", "scheduler-interval"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("remindkit")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// loadProfile builds the runtime profile from bound flags and
// REMINDKIT_* environment variables.
func loadProfile() (*profile.Profile, error) {
	p := &profile.Profile{
		Mode:              viper.GetString("mode"),
		Timezone:          viper.GetString("timezone"),
		SchedulerInterval: viper.GetDuration("scheduler-interval"),
		MessagesPerSecond: viper.GetInt("rate-limit"),
		Burst:             viper.GetInt("rate-burst"),
		MaxConcurrent:     viper.GetInt("max-concurrent"),
		Version:           Version,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
