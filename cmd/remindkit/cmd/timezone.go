package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/remindkit/remindkit/timezone"
)

var timezoneCmd = &cobra.Command{
	Use:   "timezone <name>",
	Short: "Validate an IANA timezone name",
	Long: `Resolves a timezone name and prints the current time there.

Examples:
  remindkit timezone Europe/Helsinki
  remindkit timezone America/New_York`,
	Args: cobra.ExactArgs(1),
	RunE: runTimezone,
}

func init() {
	rootCmd.AddCommand(timezoneCmd)
}

func runTimezone(cmd *cobra.Command, args []string) error {
	loc, err := timezone.Resolve(args[0])
	if err != nil {
		return err
	}

	now := time.Now().In(timezone.OrUTC(loc))
	fmt.Printf("%s: %s\n", args[0], now.Format("15:04:05 MST on Monday, January 2 2006"))
	return nil
}
