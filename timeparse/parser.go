// Package timeparse converts natural-language date and time expressions
// into absolute timestamps.
//
// Parsing is prefix-anchored: sub-grammars are tried in a fixed priority
// order against the start of the input, and nothing scans ahead. A
// relative delta ("2d", "3 hours"), a weekday or keyword ("friday",
// "tomorrow"), and an ISO date ("2024-05-01") are mutually exclusive;
// the first one that consumes input wins. A clock time ("at 14:30",
// "09:00") is then tried on whatever remains, regardless of which
// grammar fired. Text after the matched prefix is returned untouched,
// typically to serve as the reminder message.
package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rickb777/period"
)

// Patterns for the sub-grammars, each anchored at the start of the
// input. The delta pattern can match zero length since every unit group
// is optional; a zero-length match counts as no match.
var (
	deltaExp = regexp.MustCompile(`(?i)^(?:(?P<years>[-+]?\d+)\s?y(?:ears?)?\s?)?` +
		`(?:(?P<months>[-+]?\d+)\s?months?\s?)?` +
		`(?:(?P<weeks>[-+]?\d+)\s?w(?:eeks?)?\s?)?` +
		`(?:(?P<days>[-+]?\d+)\s?d(?:ays?)?\s?)?` +
		`(?:(?P<hours>[-+]?\d+)\s?h(?:ours?)?\s?)?` +
		`(?:(?P<minutes>[-+]?\d+)\s?m(?:inutes?)?\s?)?` +
		`(?:(?P<seconds>[-+]?\d+)\s?s(?:econds?)?\s?)?`)

	dayExp = regexp.MustCompile(`(?i)^(?:today|tomorrow|mon(?:day)?|tues?(?:day)?|` +
		`wed(?:nesday)?|thu(?:rs(?:day)?)?|fri(?:day)?|sat(?:urday)?|sun(?:day)?)`)

	dateExp = regexp.MustCompile(`^(?P<year>\d{4})-(?P<month>\d{1,2})-(?P<day>\d{1,2})`)

	clockExp = regexp.MustCompile(`(?i)^(?:\s*at\s+|\s+)?` +
		`(?P<hour>\d{2})[:.](?P<minute>\d{2})(?:[:.](?P<second>\d{2}))?`)
)

// deltaUnits maps delta pattern group names to field slots.
var deltaUnits = map[string]Unit{
	"years":   UnitYear,
	"months":  UnitMonth,
	"weeks":   UnitWeek,
	"days":    UnitDay,
	"hours":   UnitHour,
	"minutes": UnitMinute,
	"seconds": UnitSecond,
}

// weekdayIndex maps three-letter day prefixes to Monday=0 calendar
// indexes. "today" and "tomorrow" resolve against the current date
// instead.
var weekdayIndex = map[string]int{
	"mon": 0,
	"tue": 1,
	"wed": 2,
	"thu": 3,
	"fri": 4,
	"sat": 5,
	"sun": 6,
}

// Parser resolves natural language time expressions against a reference
// timezone.
type Parser struct {
	timezone *time.Location
	now      func() time.Time
}

// NewParser creates a parser that resolves expressions in the given
// timezone. A nil timezone falls back to UTC.
func NewParser(timezone *time.Location) *Parser {
	if timezone == nil {
		timezone = time.UTC
	}
	return &Parser{
		timezone: timezone,
		now:      time.Now,
	}
}

// WithTimezone returns a new parser with the given timezone.
func (p *Parser) WithTimezone(tz *time.Location) *Parser {
	if tz == nil {
		tz = time.UTC
	}
	return &Parser{
		timezone: tz,
		now:      p.now,
	}
}

// WithNow returns a new parser that reads the current moment from the
// given clock. Tests use this to pin "now".
func (p *Parser) WithNow(now func() time.Time) *Parser {
	return &Parser{
		timezone: p.timezone,
		now:      now,
	}
}

// Parse matches a temporal expression at the start of text and returns
// the remaining text together with the resolved timestamp. When no
// sub-grammar consumes anything, the original text comes back unchanged
// with a nil timestamp and the caller decides what the text means.
func (p *Parser) Parse(text string) (string, *time.Time) {
	now := p.now().In(p.timezone)

	fields := Fields{}
	rest := text

	// The three date grammars are mutually exclusive; first match wins.
	if n, f := p.tryDelta(rest); n > 0 {
		fields.Merge(f)
		rest = rest[n:]
	} else if n, f := p.tryWeekday(rest, now); n > 0 {
		fields.Merge(f)
		rest = rest[n:]
	} else if n, f := p.tryDate(rest); n > 0 {
		fields.Merge(f)
		rest = rest[n:]
	}

	// A clock time may follow any of the above, or stand alone.
	if n, f := p.tryClock(rest); n > 0 {
		fields.Merge(f)
		rest = rest[n:]
	}

	if fields.Empty() {
		return text, nil
	}

	when := p.resolve(now, fields)
	return rest, &when
}

// tryDelta matches signed unit offsets such as "2d", "-1h30m" or
// "3 weeks", in fixed unit order from years down to seconds. Each
// matched unit becomes one offset field.
func (p *Parser) tryDelta(text string) (int, Fields) {
	m := deltaExp.FindStringSubmatch(text)
	if m == nil || m[0] == "" {
		return 0, nil
	}

	fields := Fields{}
	for i, name := range deltaExp.SubexpNames() {
		if name == "" || m[i] == "" {
			continue
		}
		value, err := strconv.Atoi(m[i])
		if err != nil {
			return 0, nil
		}
		fields[deltaUnits[name]] = Field{Value: value}
	}
	return len(m[0]), fields
}

// tryWeekday matches "today", "tomorrow" or an English weekday name by
// its first three letters. The target lands on the Monday=0 scale;
// "tomorrow" on a Sunday yields index 7, which wraps during resolution.
func (p *Parser) tryWeekday(text string, now time.Time) (int, Fields) {
	m := dayExp.FindString(text)
	if m == "" {
		return 0, nil
	}

	var target int
	switch key := strings.ToLower(m[:3]); key {
	case "tod":
		target = mondayIndex(now)
	case "tom":
		target = mondayIndex(now) + 1
	default:
		target = weekdayIndex[key]
	}

	return len(m), Fields{UnitWeekday: {Value: target, Absolute: true}}
}

// tryDate matches an ISO calendar date, "YYYY-M-D". Parsed values
// become absolute year, month and day fields after a range check.
func (p *Parser) tryDate(text string) (int, Fields) {
	m := dateExp.FindStringSubmatch(text)
	if m == nil {
		return 0, nil
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, nil
	}

	return len(m[0]), Fields{
		UnitYear:  {Value: year, Absolute: true},
		UnitMonth: {Value: month, Absolute: true},
		UnitDay:   {Value: day, Absolute: true},
	}
}

// tryClock matches a trailing clock time such as "at 14:30", " 09:00"
// or "18:00:30", with or without the leading "at". Hour and minute
// become absolute fields; seconds default to zero so the result lands
// on the named minute exactly.
func (p *Parser) tryClock(text string) (int, Fields) {
	m := clockExp.FindStringSubmatch(text)
	if m == nil {
		return 0, nil
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second := 0
	if m[3] != "" {
		second, _ = strconv.Atoi(m[3])
	}
	if hour > 23 || minute > 59 || second > 59 {
		return 0, nil
	}

	return len(m[0]), Fields{
		UnitHour:   {Value: hour, Absolute: true},
		UnitMinute: {Value: minute, Absolute: true},
		UnitSecond: {Value: second, Absolute: true},
	}
}

// resolve turns accumulated fields into a concrete moment. Absolute
// calendar and clock fields replace components of now, signed offsets
// are added on top, and a weekday target finally snaps the result
// forward to the next matching day (zero days when it already matches).
func (p *Parser) resolve(now time.Time, fields Fields) time.Time {
	t := now

	if fields.HasAbsolute() {
		pick := func(unit Unit, current int) int {
			if v, ok := fields.AbsoluteValue(unit); ok {
				return v
			}
			return current
		}
		nsec := t.Nanosecond()
		if _, ok := fields.AbsoluteValue(UnitHour); ok {
			nsec = 0
		}
		t = time.Date(
			pick(UnitYear, t.Year()),
			time.Month(pick(UnitMonth, int(t.Month()))),
			pick(UnitDay, t.Day()),
			pick(UnitHour, t.Hour()),
			pick(UnitMinute, t.Minute()),
			pick(UnitSecond, t.Second()),
			nsec,
			t.Location(),
		)
	}

	t, _ = period.New(
		fields.OffsetValue(UnitYear),
		fields.OffsetValue(UnitMonth),
		fields.OffsetValue(UnitWeek),
		fields.OffsetValue(UnitDay),
		fields.OffsetValue(UnitHour),
		fields.OffsetValue(UnitMinute),
		fields.OffsetValue(UnitSecond),
	).AddTo(t)

	if target, ok := fields.AbsoluteValue(UnitWeekday); ok {
		ahead := (target%7 - mondayIndex(t) + 7) % 7
		t = t.AddDate(0, 0, ahead)
	}

	return t
}

// mondayIndex converts Go's Sunday-based weekday to the Monday=0 scale
// used by weekday fields.
func mondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Parse resolves a temporal expression against the current moment in
// the given timezone. See Parser.Parse.
func Parse(text string, timezone *time.Location) (string, *time.Time) {
	return NewParser(timezone).Parse(text)
}
