// Package timezone resolves user-supplied IANA timezone names for the
// reminder feature.
//
// Resolution is forgiving at the edges: an empty name means "no preference"
// rather than an error, and an unknown name produces a recoverable
// user-facing validation error.
package timezone

import (
	"fmt"
	"time"

	"github.com/remindkit/remindkit/internal/errors"
)

// UTC is the coordinated universal time location.
var UTC = time.UTC

// Resolve validates a user-supplied IANA timezone identifier
// (e.g. "Europe/Helsinki").
//
// An empty name is a no-op: it returns (nil, nil), meaning "no preference,
// keep the current default". An unknown name returns an INVALID_ARGUMENT
// error whose message carries the offending value and can be shown to the
// user verbatim.
func Resolve(name string) (*time.Location, error) {
	if name == "" {
		return nil, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidArgument,
			fmt.Sprintf("%s is not a valid time zone.", name))
	}

	return loc, nil
}

// MustResolve resolves a timezone or panics if invalid or empty.
// Use this for constants that are known to be valid at compile time.
func MustResolve(name string) *time.Location {
	loc, err := Resolve(name)
	if err != nil {
		panic(err)
	}
	if loc == nil {
		panic("timezone: MustResolve called with empty name")
	}
	return loc
}

// IsValid checks whether a timezone identifier would resolve.
// The empty name counts as valid since it means "no preference".
func IsValid(name string) bool {
	if name == "" {
		return true
	}

	_, err := time.LoadLocation(name)
	return err == nil
}

// OrUTC returns the given location, or UTC when it is nil.
func OrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return UTC
	}
	return loc
}
