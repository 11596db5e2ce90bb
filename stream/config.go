package stream

import "time"

// Default configuration values, per the configuration surface table.
const (
	DefaultBaseURL            = "https://api.finlight.me"
	DefaultWSSURL             = "wss://wss.finlight.me"
	DefaultPingInterval       = 25 * time.Second
	DefaultPongTimeout        = 60 * time.Second
	DefaultBaseReconnectWait  = 500 * time.Millisecond
	DefaultMaxReconnectWait   = 10 * time.Second
	DefaultConnectionLifetime = 115 * time.Minute

	watchdogTick       = 5 * time.Second
	rateLimitWait      = 60 * time.Second
	blockedUserWait    = time.Hour
	defaultKickWait    = 15 * time.Minute
	openTime429Wait    = 60 * time.Second
)

// CloseHook is invoked on every transport close, successful or not.
type CloseHook func(code int, reason string)

// Config holds the caller-supplied options for a streaming client.
// APIKey is required; every other field has a documented default and may
// be left zero-valued.
type Config struct {
	APIKey  string
	BaseURL string
	WSSURL  string

	PingInterval       time.Duration
	PongTimeout        time.Duration
	BaseReconnectDelay time.Duration
	MaxReconnectDelay  time.Duration
	ConnectionLifetime time.Duration

	Takeover bool

	Logger  Logger
	OnClose CloseHook
}

// Option mutates a Config during construction.
type Option func(*Config)

// WithPingInterval overrides the heartbeat period.
func WithPingInterval(d time.Duration) Option {
	return func(c *Config) { c.PingInterval = d }
}

// WithPongTimeout overrides the watchdog threshold.
func WithPongTimeout(d time.Duration) Option {
	return func(c *Config) { c.PongTimeout = d }
}

// WithBaseReconnectDelay overrides the initial exponential delay.
func WithBaseReconnectDelay(d time.Duration) Option {
	return func(c *Config) { c.BaseReconnectDelay = d }
}

// WithMaxReconnectDelay overrides the exponential cap.
func WithMaxReconnectDelay(d time.Duration) Option {
	return func(c *Config) { c.MaxReconnectDelay = d }
}

// WithConnectionLifetime overrides the proactive-rotation deadline.
func WithConnectionLifetime(d time.Duration) Option {
	return func(c *Config) { c.ConnectionLifetime = d }
}

// WithTakeover requests the server terminate any other session for the
// same credential.
func WithTakeover(takeover bool) Option {
	return func(c *Config) { c.Takeover = takeover }
}

// WithLogger installs a custom Logger. The default is a no-op logger.
func WithLogger(l Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithOnClose installs a hook fired on every transport close.
func WithOnClose(hook CloseHook) Option {
	return func(c *Config) { c.OnClose = hook }
}

// WithWSSURL overrides the stream base URL.
func WithWSSURL(url string) Option {
	return func(c *Config) { c.WSSURL = url }
}

// NewConfig builds a Config for apiKey with defaults applied, then layers
// opts on top.
func NewConfig(apiKey string, opts ...Option) Config {
	c := Config{
		APIKey:             apiKey,
		BaseURL:            DefaultBaseURL,
		WSSURL:             DefaultWSSURL,
		PingInterval:       DefaultPingInterval,
		PongTimeout:        DefaultPongTimeout,
		BaseReconnectDelay: DefaultBaseReconnectWait,
		MaxReconnectDelay:  DefaultMaxReconnectWait,
		ConnectionLifetime: DefaultConnectionLifetime,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}
	return c
}
