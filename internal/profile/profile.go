package profile

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/remindkit/remindkit/timezone"
)

// Profile is the runtime configuration handed to the reminder packages.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string // REMINDKIT_MODE (default: dev)
	// Timezone is the default zone for parsing requests that carry none
	Timezone string // REMINDKIT_TIMEZONE (default: UTC)
	// SchedulerInterval is how often due reminders are checked
	SchedulerInterval time.Duration // REMINDKIT_SCHEDULER_INTERVAL (default: 1m)
	// MessagesPerSecond caps notification sends per second
	MessagesPerSecond int // REMINDKIT_RATE_LIMIT (default: 10)
	// Burst is the notification rate limiter burst
	Burst int // REMINDKIT_RATE_BURST (default: 20)
	// MaxConcurrent bounds parallel notification sends
	MaxConcurrent int // REMINDKIT_MAX_CONCURRENT (default: 4)
	// Version is the current version
	Version string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// Location resolves the configured default timezone. An empty setting
// means UTC.
func (p *Profile) Location() *time.Location {
	loc, err := timezone.Resolve(p.Timezone)
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from REMINDKIT_* environment variables.
func (p *Profile) FromEnv() {
	// Helper to get int env value, keeping the default on garbage
	getIntEnv := func(key string, defaultValue int) int {
		if val := os.Getenv(key); val != "" {
			if n, err := strconv.Atoi(val); err == nil {
				return n
			}
		}
		return defaultValue
	}

	// Helper to get duration env value, keeping the default on garbage
	getDurationEnv := func(key string, defaultValue time.Duration) time.Duration {
		if val := os.Getenv(key); val != "" {
			if d, err := time.ParseDuration(val); err == nil {
				return d
			}
		}
		return defaultValue
	}

	p.Mode = getEnvOrDefault("REMINDKIT_MODE", "dev")
	p.Timezone = getEnvOrDefault("REMINDKIT_TIMEZONE", "UTC")
	p.SchedulerInterval = getDurationEnv("REMINDKIT_SCHEDULER_INTERVAL", time.Minute)
	p.MessagesPerSecond = getIntEnv("REMINDKIT_RATE_LIMIT", 10)
	p.Burst = getIntEnv("REMINDKIT_RATE_BURST", 20)
	p.MaxConcurrent = getIntEnv("REMINDKIT_MAX_CONCURRENT", 4)
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if !timezone.IsValid(p.Timezone) {
		err := errors.Errorf("unknown timezone %q", p.Timezone)
		slog.Error("invalid default timezone", slog.String("timezone", p.Timezone), slog.String("error", err.Error()))
		return err
	}

	if p.SchedulerInterval <= 0 {
		p.SchedulerInterval = time.Minute
	}
	if p.MessagesPerSecond <= 0 {
		p.MessagesPerSecond = 10
	}
	if p.Burst <= 0 {
		p.Burst = 20
	}
	if p.MaxConcurrent <= 0 {
		p.MaxConcurrent = 4
	}

	return nil
}
