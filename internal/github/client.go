package github

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"orgscan/internal/logging"
)

const (
	defaultBaseURL        = "https://api.github.com"
	defaultHTTPTimeout    = 10 * time.Second
	defaultMemberLimit    = 100
	defaultMemberPageSize = 30
)

// Config describes the directory service connection.
type Config struct {
	// Token is optional; requests without it still work against public data
	// at a reduced rate limit.
	Token          string
	BaseURL        string
	MemberLimit    int
	MemberPageSize int
	// RequestsPerSecond paces outbound calls client-side; 0 disables pacing.
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Client resolves organization names against the GitHub REST API.
type Client struct {
	token          string
	baseURL        string
	memberLimit    int
	memberPageSize int
	httpClient     *http.Client
	limiter        *rate.Limiter
	logger         *slog.Logger

	sleep func(time.Duration)
	now   func() time.Time
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger for degraded-result diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a directory service client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	client := &Client{
		token:          strings.TrimSpace(cfg.Token),
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		memberLimit:    cfg.MemberLimit,
		memberPageSize: cfg.MemberPageSize,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logging.NewNop(),
		sleep:          time.Sleep,
		now:            time.Now,
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}
	if client.memberLimit <= 0 {
		client.memberLimit = defaultMemberLimit
	}
	if client.memberPageSize <= 0 {
		client.memberPageSize = defaultMemberPageSize
	}
	if cfg.RequestsPerSecond > 0 {
		client.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}
