package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Roster    RosterConfig    `json:"roster"`
	Slack     SlackConfig     `json:"slack"`
	Templates TemplatesConfig `json:"templates"`
	Delivery  DeliveryConfig  `json:"delivery"`
	Schedule  ScheduleConfig  `json:"schedule"`
	Logging   LoggingConfig   `json:"logging"`
	Storage   *StorageConfig  `json:"storage,omitempty"`
	Status    StatusConfig    `json:"status,omitempty"`
}

// RosterConfig points at the spreadsheet's CSV export.
//
// CSVURL is typically a Google Sheets export link
// (https://docs.google.com/spreadsheets/d/<id>/export?format=csv).
// Column names default to "Employee Name", "Birthday" and "Hire Date".
type RosterConfig struct {
	CSVURL string `json:"csv_url"`
	// Timeout is a Go duration string (e.g. "10s", "1m").
	Timeout        string `json:"timeout,omitempty"`
	NameColumn     string `json:"name_column,omitempty"`
	BirthdayColumn string `json:"birthday_column,omitempty"`
	HireDateColumn string `json:"hire_date_column,omitempty"`
}

// SlackConfig holds the incoming-webhook target.
//
// WebhookURL may be left empty in the config file and supplied through the
// SLACK_WEBHOOK_URL environment variable instead (keeps secrets out of the
// config file).
type SlackConfig struct {
	WebhookURL string `json:"webhook_url,omitempty"`
}

type TemplatesConfig struct {
	Dir string `json:"dir"`
}

// DeliveryConfig controls the guarded send path.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "5m").
//
// Defaults (when fields are omitted/zero):
//   - breaker_threshold: 5
//   - breaker_cooldown: "5m"
//   - max_text_len: 500
//   - retry_max: 2 (3 total attempts)
//   - retry_base: "1s"
//   - retryable_statuses: [500, 502, 503, 504]
//   - timeout: "10s"
//   - rate_per_sec: 1
type DeliveryConfig struct {
	BreakerThreshold  int    `json:"breaker_threshold,omitempty"`
	BreakerCooldown   string `json:"breaker_cooldown,omitempty"`
	MaxTextLen        int    `json:"max_text_len,omitempty"`
	RetryMax          int    `json:"retry_max,omitempty"`
	RetryBase         string `json:"retry_base,omitempty"`
	RetryableStatuses []int  `json:"retryable_statuses,omitempty"`
	Timeout           string `json:"timeout,omitempty"`
	RatePerSec        int    `json:"rate_per_sec,omitempty"`
}

// ScheduleConfig controls the daily trigger.
//
// Cron is a standard 5-field cron spec (default "0 8 * * *").
type ScheduleConfig struct {
	Cron     string `json:"cron,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig controls the optional run-history journal.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./bdaybot.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string
}

// StatusConfig controls the optional status/metrics HTTP server.
// Prefer binding to localhost.
type StatusConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"` // default: "127.0.0.1:8090"
}

// ParseDurationField parses a Go duration string from a config field,
// rejecting negative values. Empty input yields 0.
func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// ParseDurationOrDefault is ParseDurationField with a fallback for zero.
func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}

// Validate checks field formats that can be verified without I/O.
// Missing required values (webhook URL, roster URL) are NOT errors here:
// the pipeline degrades to a no-op run when they are absent.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	var errs []error
	for _, f := range []struct{ path, raw string }{
		{"roster.timeout", c.Roster.Timeout},
		{"delivery.breaker_cooldown", c.Delivery.BreakerCooldown},
		{"delivery.retry_base", c.Delivery.RetryBase},
		{"delivery.timeout", c.Delivery.Timeout},
	} {
		if _, err := ParseDurationField(f.path, f.raw); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Storage != nil {
		if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Delivery.BreakerThreshold < 0 {
		errs = append(errs, errors.New("delivery.breaker_threshold: must be >= 0"))
	}
	if c.Delivery.RetryMax < 0 {
		errs = append(errs, errors.New("delivery.retry_max: must be >= 0"))
	}
	for _, code := range c.Delivery.RetryableStatuses {
		if code < 100 || code > 599 {
			errs = append(errs, fmt.Errorf("delivery.retryable_statuses: invalid status %d", code))
		}
	}
	if tz := strings.TrimSpace(c.Schedule.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			errs = append(errs, fmt.Errorf("schedule.timezone: %w", err))
		}
	}
	return errors.Join(errs...)
}
