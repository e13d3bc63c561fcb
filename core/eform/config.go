package eform

import "time"

// Config holds configuration for the remote case and folder service.
type Config struct {
	// BaseURL is the root URL of the remote service API.
	BaseURL string `mapstructure:"base_url" default:"http://localhost:5000"`
	// APIKey is sent as a bearer token when set.
	APIKey string `mapstructure:"api_key" default:""`
	// TimeoutSeconds bounds a single HTTP attempt.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// MaxRetries is the number of retries after the first attempt for transient failures.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
	// RetryBaseMs is the initial exponential backoff delay in milliseconds.
	RetryBaseMs int `mapstructure:"retry_base_ms" default:"200"`
	// RatePerSecond caps outgoing requests. Zero or less disables the limit.
	RatePerSecond float64 `mapstructure:"rate_per_second" default:"20"`
	// Burst is the token bucket size of the rate limiter.
	Burst int `mapstructure:"burst" default:"10"`
}

func (c Config) timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) retryBase() time.Duration {
	if c.RetryBaseMs <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(c.RetryBaseMs) * time.Millisecond
}
