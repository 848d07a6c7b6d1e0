package xsession

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/ratelimit"
	"golang.org/x/time/rate"
)

// transportDoer is the transport surface the client depends on. The stealth
// browser client satisfies it; tests substitute a scripted fake.
type transportDoer interface {
	DoWithHeaderOrder(method, urlStr string, headers map[string]string, body io.Reader, order []string) ([]byte, map[string]string, int, error)
}

// Client acts as a single authenticated Twitter session. All methods are safe
// for concurrent use. The credentials bound at construction never change; a
// rejected session is surfaced as AuthError and the client must be rebuilt
// with fresh cookies.
type Client struct {
	transport transportDoer
	creds     *Credentials
	limiter   *ratelimit.Limiter
	throttle  *rate.Limiter
	cfg       Config
	backoff   stealth.BackoffConfig

	mu        sync.Mutex
	scheduled map[string]*ScheduledTweet
}

// NewClient validates the credentials in cfg and returns a fully-wired client.
// No network traffic happens until the first operation is invoked.
func NewClient(cfg Config) (*Client, error) {
	cfg.defaults()

	creds, err := newCredentials(cfg.AuthToken, cfg.CSRFToken)
	if err != nil {
		return nil, err
	}

	opts := []stealth.ClientOption{
		stealth.WithHeaderOrder(sessionHeaderOrder),
	}
	if cfg.Proxy != "" {
		opts = append(opts, stealth.WithProxy(cfg.Proxy))
	}
	if cfg.Profile.UserAgent != "" {
		opts = append(opts, stealth.WithProfile(cfg.Profile.TLSProfile))
	}
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("stealth client: %w", err)
	}

	slog.Debug("session client ready",
		slog.String("proxy", stealth.MaskProxy(cfg.Proxy)),
		slog.Int("max_attempts", cfg.MaxAttempts),
		slog.Duration("timeout", cfg.Timeout))

	return &Client{
		transport: bc,
		creds:     creds,
		limiter:   ratelimit.NewLimiter(cfg.RateLimit),
		throttle:  rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60.0), 1),
		cfg:       cfg,
		backoff: stealth.BackoffConfig{
			InitialWait: cfg.BackoffBase,
			MaxWait:     cfg.BackoffMax,
			Multiplier:  2.0,
			JitterPct:   0.3,
		},
		scheduled: make(map[string]*ScheduledTweet),
	}, nil
}

// recordAPICall calls the metrics hook if configured.
func (c *Client) recordAPICall(endpoint string, success, rateLimited bool) {
	if c.cfg.MetricsHook != nil {
		c.cfg.MetricsHook(endpoint, success, rateLimited)
	}
}
