package gogogate2

import (
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// StatusComparison selects which view of a door's status the open/close
// idempotence check compares against the requested target. The two
// device generations historically shipped with different behavior here,
// so it is configurable rather than fixed.
type StatusComparison int

const (
	// CompareTransitional also treats a door already moving toward the
	// target as being in the desired state. This is the default.
	CompareTransitional StatusComparison = iota
	// CompareRaw only considers the status the device itself reports.
	CompareRaw
)

// Default timeouts for the client.
const (
	DefaultRequestTimeout    = 20 * time.Second
	DefaultTransitionTimeout = 55 * time.Second
)

// ClientOption configures a Client.
type ClientOption func(*clientConfig) error

// clientConfig holds the configuration for a Client.
type clientConfig struct {
	requestTimeout    time.Duration
	transitionTimeout time.Duration
	comparison        StatusComparison
	httpClient        *http.Client
	logger            *slog.Logger
}

// defaultConfig returns the default client configuration.
func defaultConfig() *clientConfig {
	return &clientConfig{
		requestTimeout:    DefaultRequestTimeout,
		transitionTimeout: DefaultTransitionTimeout,
		comparison:        CompareTransitional,
		httpClient:        nil,
		logger:            nil,
	}
}

// WithRequestTimeout sets the timeout applied to each device request
// when the caller's context has no deadline.
// Default is 20 seconds.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) error {
		if d <= 0 {
			return errors.New("request timeout must be positive")
		}
		c.requestTimeout = d
		return nil
	}
}

// WithTransitionTimeout sets how long a recently commanded door is
// reported with a synthetic opening or closing status.
// Default is 55 seconds, slightly longer than a full door cycle.
func WithTransitionTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) error {
		if d <= 0 {
			return errors.New("transition timeout must be positive")
		}
		c.transitionTimeout = d
		return nil
	}
}

// WithStatusComparison sets the comparison strategy used by the OpenDoor
// and CloseDoor idempotence check.
// Default is CompareTransitional.
func WithStatusComparison(sc StatusComparison) ClientOption {
	return func(c *clientConfig) error {
		if sc != CompareTransitional && sc != CompareRaw {
			return errors.New("unknown status comparison")
		}
		c.comparison = sc
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for all requests. A cookie
// jar is attached when the client has none; the sensor endpoint needs
// one for its login session.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *clientConfig) error {
		if httpClient == nil {
			return errors.New("http client must not be nil")
		}
		c.httpClient = httpClient
		return nil
	}
}

// WithLogger sets a structured logger for debug and error logging.
// By default, no logging is performed.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) error {
		c.logger = logger
		return nil
	}
}
