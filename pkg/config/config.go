// Package config defines the runtime configuration for the Slivka client:
// the server base URL, user agent, debug mode, and per-operation timeouts.
// It also provides validation and defaulting helpers.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds all client settings required to talk to a Slivka server.
// Use Validate to fill implicit defaults and to check for required fields.
type Config struct {
	// BaseURL is the Slivka server root, e.g. "http://example.org/slivka/"
	// (required). A trailing slash is appended when missing; API paths such
	// as "api/services" are resolved relative to it.
	BaseURL string `json:"base_url" yaml:"base_url"`
	// UserAgent is sent with every request. Default: "slivka-go/<version>".
	UserAgent string `json:"user_agent" yaml:"user_agent"`
	// Debug enables verbose request/response logging.
	Debug bool `json:"debug" yaml:"debug"`
	// Timeouts configures per-operation deadlines and the job poll throttle.
	// See Timeouts.WithDefaults for defaults.
	Timeouts Timeouts `json:"timeouts" yaml:"timeouts"`
}

// Timeouts controls client operation deadlines and refresh throttling.
// Zero values will be replaced by sane defaults in WithDefaults.
type Timeouts struct {
	Request      time.Duration `json:"request" yaml:"request"`             // metadata GET/POST round trip
	Download     time.Duration `json:"download" yaml:"download"`           // result file streaming
	Submit       time.Duration `json:"submit" yaml:"submit"`               // multipart job submission
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"` // min delay between status/results refreshes
}

// Version is the static client library version reported by Client.Version.
const Version = "1.3.0"

// DefaultUserAgent identifies this client library on the wire.
const DefaultUserAgent = "slivka-go/" + Version

// Validate normalizes the configuration by trimming the base URL, ensuring a
// trailing slash, and applying the default user agent. Returns an error when
// BaseURL is empty or does not look like an HTTP URL.
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	if c.BaseURL == "" {
		return errors.New("base URL is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return errors.New("base URL must use http:// or https://")
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		// Relative resolution drops the last path segment without the slash,
		// which is the usual cause of spurious 404 responses.
		c.BaseURL += "/"
	}

	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}

	return nil
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Request:      30s
//	Download:     5m
//	Submit:       2m
//	PollInterval: 5s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Request == 0 {
		tt.Request = 30 * time.Second
	}
	if tt.Download == 0 {
		tt.Download = 5 * time.Minute
	}
	if tt.Submit == 0 {
		tt.Submit = 2 * time.Minute
	}
	if tt.PollInterval == 0 {
		tt.PollInterval = 5 * time.Second
	}
	return tt
}
