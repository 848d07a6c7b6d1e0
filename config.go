package xsession

import (
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// maxAttemptsCeiling bounds the retry budget regardless of configuration.
const maxAttemptsCeiling = 5

// Config holds all configuration for the session client. AuthToken and
// CSRFToken are required; everything else has a usable default.
type Config struct {
	// AuthToken is the auth_token session cookie extracted by the caller.
	AuthToken string

	// CSRFToken is the ct0 cookie matching the session. Sent back as the
	// x-csrf-token header on every request.
	CSRFToken string

	// UserAgent overrides the default browser user-agent.
	UserAgent string

	// Proxy is an optional proxy URL for all requests.
	Proxy string

	// Profile selects the TLS/browser identity. Zero value adopts the
	// first builtin profile so the TLS fingerprint and user-agent agree.
	Profile stealth.BrowserProfile

	// Timeout is the per-call HTTP timeout.
	Timeout time.Duration

	// MaxAttempts is the retry budget per logical operation, capped at 5.
	MaxAttempts int

	// BackoffBase is the first retry delay; subsequent delays double.
	BackoffBase time.Duration

	// BackoffMax caps the exponential retry delay.
	BackoffMax time.Duration

	// RateLimitWait caps how long a rate-limit reset hint is honored.
	RateLimitWait time.Duration

	// RequestsPerMinute paces all outbound calls through a token bucket.
	RequestsPerMinute float64

	// RateLimit configures the per-endpoint reactive rate-limit windows.
	RateLimit ratelimit.Config

	// DisableJitter skips the anti-fingerprint pre-request delay. Useful
	// for backfills against recorded traffic.
	DisableJitter bool

	// MetricsHook is called on each API request for external metrics
	// collection. endpoint is the operation name, success and rateLimited
	// indicate the outcome.
	MetricsHook func(endpoint string, success, rateLimited bool)
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *Config) defaults() {
	if cfg.Profile.UserAgent == "" && cfg.UserAgent == "" && len(stealth.BuiltinProfiles) > 0 {
		cfg.Profile = stealth.BuiltinProfiles[0]
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = cfg.Profile.UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.MaxAttempts > maxAttemptsCeiling {
		cfg.MaxAttempts = maxAttemptsCeiling
	}
	if cfg.BackoffBase == 0 {
		cfg.BackoffBase = 1 * time.Second
	}
	if cfg.BackoffMax == 0 {
		cfg.BackoffMax = 30 * time.Second
	}
	if cfg.RateLimitWait == 0 {
		cfg.RateLimitWait = 5 * time.Minute
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 120
	}
	if cfg.RateLimit.RequestsPerWindow == 0 {
		cfg.RateLimit = ratelimit.DefaultConfig
	}
}
