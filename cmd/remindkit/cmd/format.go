package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/remindkit/remindkit/humantime"
	"github.com/remindkit/remindkit/internal/errors"
)

var formatNow string

var formatCmd = &cobra.Command{
	Use:   "format <rfc3339>",
	Short: "Render a timestamp the way reminder confirmations do",
	Long: `Renders an RFC 3339 timestamp as a human phrase: relative within a
week ("in 2 days"), an absolute calendar phrase beyond that.

Examples:
  remindkit format 2026-01-02T15:04:05Z
  remindkit format --now 2026-01-01T00:00:00Z 2026-01-02T15:04:05Z`,
	Args: cobra.ExactArgs(1),
	RunE: runFormat,
}

func init() {
	rootCmd.AddCommand(formatCmd)
	formatCmd.Flags().StringVar(&formatNow, "now", "", "reference time as RFC 3339 (defaults to the current time)")
}

func runFormat(cmd *cobra.Command, args []string) error {
	target, err := time.Parse(time.RFC3339, args[0])
	if err != nil {
		return errors.InvalidArgumentf("cannot parse %q as RFC 3339", args[0])
	}

	now := time.Now()
	if formatNow != "" {
		now, err = time.Parse(time.RFC3339, formatNow)
		if err != nil {
			return errors.InvalidArgumentf("cannot parse %q as RFC 3339", formatNow)
		}
	}

	fmt.Println(humantime.Format(target, now))
	return nil
}
