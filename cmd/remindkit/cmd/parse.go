package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/remindkit/remindkit/humantime"
	"github.com/remindkit/remindkit/internal/errors"
	"github.com/remindkit/remindkit/timeparse"
	"github.com/remindkit/remindkit/timezone"
)

var parseTimezone string

var parseCmd = &cobra.Command{
	Use:   "parse <text...>",
	Short: "Parse a natural language time expression",
	Long: `Parses the leading time expression out of the given text and prints
the resolved timestamp together with the remaining text.

Examples:
  remindkit parse "2d water the plants"
  remindkit parse --timezone Europe/Helsinki "friday at 14:00 deploy"
  remindkit parse "2024-12-24 at 18:00"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseTimezone, "timezone", "t", "", "IANA timezone for interpretation (overrides the profile timezone)")
}

func runParse(cmd *cobra.Command, args []string) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}

	loc := p.Location()
	if parseTimezone != "" {
		loc, err = timezone.Resolve(parseTimezone)
		if err != nil {
			return err
		}
	}

	text := strings.Join(args, " ")
	rest, when := timeparse.NewParser(loc).Parse(text)
	if when == nil {
		return errors.InvalidArgumentf("no time found in %q", text)
	}

	fmt.Printf("when: %s (%s)\n", when.Format(time.RFC3339), humantime.Until(*when))
	if rest := strings.TrimSpace(rest); rest != "" {
		fmt.Printf("rest: %s\n", rest)
	}
	return nil
}
