package types

import "time"

// HTTPConfig holds shared HTTP settings for requests to the record service.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "report-card/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RecordServiceConfig locates the external record service.
type RecordServiceConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is prefixed to /api/students/{registrationNumber}
	// (e.g. "http://localhost:5000").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Token is an optional bearer token for the record service.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// MaxRetries is the number of retries on HTTP 429 or 503. Zero sends
	// a single request.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// BannerConfig controls the congratulations banner.
type BannerConfig struct {
	// Threshold is the CGPA the result must strictly exceed (default 8).
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// Duration is how long the banner stays visible (default 5s).
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// HistoryConfig holds settings for the lookup history store.
type HistoryConfig struct {
	// Dir is the directory holding history.db and exports.
	Dir string `json:"dir" yaml:"dir"`

	// Disabled skips recording lookups.
	Disabled bool `json:"disabled" yaml:"disabled"`
}

// ServeConfig holds settings for the web surface.
type ServeConfig struct {
	// Address is the listen address (default "127.0.0.1:8080").
	Address string `json:"address" yaml:"address"`

	// DisableRequestLogs turns off per-request access logging.
	DisableRequestLogs bool `json:"disable_request_logs" yaml:"disable_request_logs"`
}

// AppConfig groups the configuration of every report-card surface.
type AppConfig struct {
	RecordService RecordServiceConfig `json:"record_service" yaml:"record_service"`
	Banner        BannerConfig        `json:"banner" yaml:"banner"`
	History       HistoryConfig       `json:"history" yaml:"history"`
	Serve         ServeConfig         `json:"serve" yaml:"serve"`
}
