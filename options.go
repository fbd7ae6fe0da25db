package givehub

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	headerAPIKey        = "X-API-Key"
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
)

type Option func(*Options)

type Options struct {
	retryCount        int
	retryWaitTime     time.Duration
	retryMaxWaitTime  time.Duration
	requestTimeout    time.Duration
	requestLogger     RequestLogger
	retryPolicy       func(*resty.Response, error) bool
	requestHeaders    map[string]string
	userAgent         string
	reconnectPolicy   ReconnectPolicy
	dialer            *websocket.Dialer
	metricsRegisterer prometheus.Registerer
}

func newClientOptions() *Options {
	return &Options{
		retryCount:       0,
		retryWaitTime:    500 * time.Millisecond,
		retryMaxWaitTime: 3 * time.Second,
		requestTimeout:   30 * time.Second,
		requestLogger:    &NoopLogger{},
		retryPolicy:      DefaultRetryPolicy,
		requestHeaders: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		userAgent:       "givehub-go",
		reconnectPolicy: DefaultReconnectPolicy(),
		dialer:          websocket.DefaultDialer,
	}
}

// WithRetryCount enables resty's transport-level retries for responses
// matched by the retry policy. The default of zero means the only request
// ever re-issued is the one following a successful token refresh.
func WithRetryCount(count int) Option {
	return func(o *Options) {
		if count >= 0 {
			o.retryCount = count
		}
	}
}

func WithRetryWaitTime(waitTime time.Duration) Option {
	return func(o *Options) {
		if waitTime >= 100*time.Millisecond {
			o.retryWaitTime = waitTime
		}
	}
}

func WithRetryMaxWaitTime(maxWaitTime time.Duration) Option {
	return func(o *Options) {
		if maxWaitTime >= 100*time.Millisecond {
			o.retryMaxWaitTime = maxWaitTime
		}
	}
}

func WithRequestTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout > 0 {
			o.requestTimeout = timeout
		}
	}
}

func WithRequestLogger(logger RequestLogger) Option {
	return func(o *Options) {
		if logger != nil {
			o.requestLogger = logger
		}
	}
}

func WithRetryPolicy(policy func(*resty.Response, error) bool) Option {
	return func(o *Options) {
		if policy != nil {
			o.retryPolicy = policy
		}
	}
}

// WithRequestHeader adds a static header to every API request. Headers the
// client manages itself (Content-Type, Accept, X-API-Key, Authorization) are
// ignored.
func WithRequestHeader(header, value string) Option {
	return func(o *Options) {
		header = strings.TrimSpace(header)

		if header == "" || isProtectedHeader(header) {
			return
		}

		o.requestHeaders[header] = value
	}
}

func WithUserAgent(userAgent string) Option {
	return func(o *Options) {
		if userAgent = strings.TrimSpace(userAgent); userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

// WithReconnectPolicy replaces the notification channel's reconnect policy.
// Policies that fail [ReconnectPolicy.Validate] are ignored.
func WithReconnectPolicy(policy ReconnectPolicy) Option {
	return func(o *Options) {
		if policy.Validate() == nil {
			o.reconnectPolicy = policy
		}
	}
}

// WithDialer sets the websocket dialer used by the notification channel.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(o *Options) {
		if dialer != nil {
			o.dialer = dialer
		}
	}
}

// WithMetrics registers the client's collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *Options) {
		if reg != nil {
			o.metricsRegisterer = reg
		}
	}
}

func (o *Options) Validate() error {
	if o.retryCount < 0 {
		return errors.New("retryCount must be non-negative")
	}

	if o.retryCount > 100 {
		return errors.New("retryCount must not exceed 100")
	}

	if o.retryWaitTime < 100*time.Millisecond {
		return errors.New("retryWaitTime must be at least 100ms")
	}

	if o.retryWaitTime > time.Minute {
		return fmt.Errorf("retryWaitTime must not exceed %v", time.Minute)
	}

	if o.retryMaxWaitTime < 100*time.Millisecond {
		return errors.New("retryMaxWaitTime must be at least 100ms")
	}

	if o.retryMaxWaitTime > 5*time.Minute {
		return fmt.Errorf("retryMaxWaitTime must not exceed %v", 5*time.Minute)
	}

	if o.retryMaxWaitTime < o.retryWaitTime {
		return fmt.Errorf("retryMaxWaitTime (%v) must be greater than or equal to retryWaitTime (%v)", o.retryMaxWaitTime, o.retryWaitTime)
	}

	if o.requestTimeout <= 0 {
		return errors.New("requestTimeout must be positive")
	}

	if o.requestLogger == nil {
		return errors.New("requestLogger must not be nil")
	}

	if o.retryPolicy == nil {
		return errors.New("retryPolicy must not be nil")
	}

	if o.dialer == nil {
		return errors.New("dialer must not be nil")
	}

	if err := o.reconnectPolicy.Validate(); err != nil {
		return fmt.Errorf("reconnectPolicy: %w", err)
	}

	return nil
}

func isProtectedHeader(header string) bool {
	for _, h := range []string{"Content-Type", "Accept", headerAPIKey, headerAuthorization} {
		if strings.EqualFold(header, h) {
			return true
		}
	}

	return false
}
