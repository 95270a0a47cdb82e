package timeparse

import "fmt"

// Unit identifies a temporal field slot.
type Unit int

const (
	UnitYear Unit = iota
	UnitMonth
	UnitWeek
	UnitDay
	UnitHour
	UnitMinute
	UnitSecond
	UnitWeekday
)

var unitNames = map[Unit]string{
	UnitYear:    "year",
	UnitMonth:   "month",
	UnitWeek:    "week",
	UnitDay:     "day",
	UnitHour:    "hour",
	UnitMinute:  "minute",
	UnitSecond:  "second",
	UnitWeekday: "weekday",
}

func (u Unit) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

// Field is a single parsed value for a unit slot. An offset shifts the
// reference moment; an absolute value replaces the matching component.
type Field struct {
	Value    int
	Absolute bool
}

// Fields accumulates parsed values per unit slot across the sub-grammar
// matchers. An empty map means no time component was recognized.
type Fields map[Unit]Field

// Merge copies fields from other into f. A later value replaces any
// prior one for the same slot, which is how an absolute clock time
// overrides an hour or minute offset contributed by an earlier delta.
func (f Fields) Merge(other Fields) {
	for unit, field := range other {
		f[unit] = field
	}
}

// Empty reports whether no matcher contributed any field.
func (f Fields) Empty() bool {
	return len(f) == 0
}

// AbsoluteValue returns the absolute value parsed for a slot, if any.
func (f Fields) AbsoluteValue(unit Unit) (int, bool) {
	field, ok := f[unit]
	if !ok || !field.Absolute {
		return 0, false
	}
	return field.Value, true
}

// OffsetValue returns the signed offset parsed for a slot, or zero.
func (f Fields) OffsetValue(unit Unit) int {
	field, ok := f[unit]
	if !ok || field.Absolute {
		return 0
	}
	return field.Value
}

// HasAbsolute reports whether any calendar or clock slot holds an
// absolute value. The weekday slot does not count; it snaps the result
// forward instead of replacing a component.
func (f Fields) HasAbsolute() bool {
	for unit, field := range f {
		if unit != UnitWeekday && field.Absolute {
			return true
		}
	}
	return false
}
