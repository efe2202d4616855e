// Package config defines tool configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading layers defaults, an optional YAML file, and BURNUP_* env vars.
// - External errors must be wrapped via this package's error helpers.
package config

import "strings"

// listSeparator splits the reject/finished settings. The values are plain
// shell-friendly strings so they can live in an env file, which is why
// these are not YAML lists.
const listSeparator = "|"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// APIKey and APIToken authenticate against the board service.
	APIKey   string `koanf:"api_key"`
	APIToken string `koanf:"api_token"`

	// BaseURL points at the board service REST root.
	BaseURL string `koanf:"base_url"`

	// Board selects the board to report on, matched by name prefix.
	Board string `koanf:"board"`

	// Reject names lists excluded from accounting, separated by "|".
	// Matching is by name prefix.
	Reject string `koanf:"reject"`

	// Finished names lists whose entry counts as completed work,
	// separated by "|". Matching is exact.
	Finished string `koanf:"finished"`

	// Output is the report destination: a path, file:// or s3:// URI.
	Output string `koanf:"output"`

	// Delimiter separates report columns. Exactly one character.
	Delimiter string `koanf:"delimiter"`

	// HTTPTimeoutSeconds bounds each board API request.
	HTTPTimeoutSeconds int `koanf:"http_timeout_seconds"`

	// PageLimit sets the page size for walking the action stream.
	PageLimit int `koanf:"page_limit"`

	// MetricsAddr, when set, serves Prometheus metrics during the run,
	// e.g. ":9180". Empty disables the listener.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		BaseURL:            "https://api.trello.com/1",
		Output:             "counts.csv",
		Delimiter:          "\t",
		HTTPTimeoutSeconds: 30,
		PageLimit:          1000,
	}
}

// RejectLists returns the parsed reject list names.
func (c *Config) RejectLists() []string {
	return splitLists(c.Reject)
}

// FinishedLists returns the parsed finish list names.
func (c *Config) FinishedLists() []string {
	return splitLists(c.Finished)
}

// splitLists splits a "|"-separated setting, trimming whitespace and
// dropping empty entries.
func splitLists(s string) []string {
	var out []string
	for _, part := range strings.Split(s, listSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
