// Package humantime renders timestamps as human readable strings for
// chat messages.
//
// Targets within the next seven days are described relative to now
// ("in 1 day, 2 hours and 5 minutes"); anything further out falls back
// to an absolute calendar string in the timestamp's own timezone.
package humantime

import (
	"fmt"
	"strings"
	"time"
)

// absoluteLayout renders e.g. "at 09:05:00 UTC on Saturday, April 20 2024".
const absoluteLayout = "at 15:04:05 MST on Monday, January 2 2006"

// relativeWindow is the largest difference still described relatively.
const relativeWindow = 7 * 24 * time.Hour

// Format describes target relative to now. Differences up to seven days
// decompose into days, hours, minutes and seconds, listing only nonzero
// units: "in 2 days", "in 1 minute and 30 seconds". Zero and negative
// differences floor to "in 0 seconds" rather than producing an empty
// phrase. Larger differences render absolutely in the target's zone.
func Format(target, now time.Time) string {
	delta := target.Sub(now)
	if delta > relativeWindow {
		return target.Format(absoluteLayout)
	}

	total := int(delta / time.Second)
	if total < 0 {
		total = 0
	}

	days := total / 86400
	rest := total % 86400
	hours := rest / 3600
	rest %= 3600
	minutes := rest / 60
	seconds := rest % 60

	var clauses []string
	for _, part := range []struct {
		value int
		unit  string
	}{
		{days, "day"},
		{hours, "hour"},
		{minutes, "minute"},
		{seconds, "second"},
	} {
		if part.value != 0 {
			clauses = append(clauses, Pluralize(part.value, part.unit))
		}
	}

	if len(clauses) == 0 {
		return "in " + Pluralize(0, "second")
	}
	return "in " + joinClauses(clauses)
}

// Until describes target relative to the current moment.
func Until(target time.Time) string {
	return Format(target, time.Now())
}

// Pluralize renders a count with its unit, appending "s" except for
// exactly one: "1 day", "2 days", "0 seconds".
func Pluralize(count int, unit string) string {
	if count == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", count, unit)
}

// joinClauses joins with commas and a final "and": "a, b and c".
func joinClauses(clauses []string) string {
	if len(clauses) == 1 {
		return clauses[0]
	}
	return strings.Join(clauses[:len(clauses)-1], ", ") + " and " + clauses[len(clauses)-1]
}
