// Package config provides configuration management for the Slivka client.
//
// This package defines the Config structure that controls client behavior:
// the server base URL, the user agent string, debug logging, and timeouts.
//
// # Basic Configuration
//
// The minimum required configuration is the server base URL:
//
//	cfg := &config.Config{
//		BaseURL: "http://www.compbio.dundee.ac.uk/slivka/",
//	}
//
// # Base URL
//
// The base URL must include the scheme and should end with a slash; Validate
// appends one when missing. All API paths ("api/services", "api/jobs/...")
// are resolved relative to the base URL, so a missing trailing slash makes
// the last path segment disappear during resolution and typically manifests
// as 404 responses from the server.
//
// # Timeouts
//
// Timeouts are per operation class. Zero values are replaced by defaults:
//
//	Request:      30s  - metadata requests (services, jobs, version)
//	Download:     5m   - result file streaming
//	Submit:       2m   - multipart job submission
//	PollInterval: 5s   - minimum delay between job status/results refreshes
//
// PollInterval is not a deadline: it is the throttle applied to Job.Status
// and Job.Results so that tight polling loops do not flood the server.
//
// # Validation
//
//	cfg := &config.Config{BaseURL: "http://example.org/slivka"}
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//	cfg.Timeouts = cfg.Timeouts.WithDefaults()
package config
