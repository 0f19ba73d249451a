package board

import (
	"io"
	"log/slog"
	"time"
)

// BodyMode selects how the body of a request is collected.
type BodyMode int

const (
	// BodyFirstLine returns the first line after the acknowledgement and
	// drains the rest. This is what deployed host scripts expect.
	BodyFirstLine BodyMode = iota

	// BodyAccumulate collects every line up to the end tag and joins them
	// with "\n".
	BodyAccumulate
)

func (m BodyMode) String() string {
	switch m {
	case BodyFirstLine:
		return "first-line"
	case BodyAccumulate:
		return "accumulate"
	default:
		return "unknown"
	}
}

type Config struct {
	Dialer Dialer
	Logger *slog.Logger
	// ReadTimeout bounds each read attempt for command responses.
	ReadTimeout time.Duration
	// PingTimeout replaces ReadTimeout for the PING reply.
	PingTimeout time.Duration
	// DrainTimeout bounds each read attempt while clearing the buffer.
	DrainTimeout time.Duration
	// ReadAttempts is how many times an absent line is polled for.
	ReadAttempts int
	// DrainLines caps how many lines a single buffer clear may consume.
	DrainLines int
	// BodyPolls caps how many silent polls, each a full readData, a request
	// body may sit through before the end tag.
	BodyPolls int
	BodyMode  BodyMode
}

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 500 * time.Millisecond
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = 100 * time.Millisecond
	}
	if c.DrainTimeout == 0 {
		c.DrainTimeout = 100 * time.Millisecond
	}
	if c.ReadAttempts == 0 {
		c.ReadAttempts = 5
	}
	if c.DrainLines == 0 {
		c.DrainLines = 5
	}
	if c.BodyPolls == 0 {
		c.BodyPolls = 10
	}
}

// ConfigBuilder assembles a Config step by step.
type ConfigBuilder struct {
	config Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.Dialer = d
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.Logger = l
	return b
}

func (b *ConfigBuilder) WithReadTimeout(d time.Duration) *ConfigBuilder {
	b.config.ReadTimeout = d
	return b
}

func (b *ConfigBuilder) WithPingTimeout(d time.Duration) *ConfigBuilder {
	b.config.PingTimeout = d
	return b
}

func (b *ConfigBuilder) WithDrainTimeout(d time.Duration) *ConfigBuilder {
	b.config.DrainTimeout = d
	return b
}

func (b *ConfigBuilder) WithReadAttempts(n int) *ConfigBuilder {
	b.config.ReadAttempts = n
	return b
}

func (b *ConfigBuilder) WithDrainLines(n int) *ConfigBuilder {
	b.config.DrainLines = n
	return b
}

func (b *ConfigBuilder) WithBodyPolls(n int) *ConfigBuilder {
	b.config.BodyPolls = n
	return b
}

func (b *ConfigBuilder) WithBodyMode(m BodyMode) *ConfigBuilder {
	b.config.BodyMode = m
	return b
}

// Build validates the configuration and fills in defaults.
func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	c.setDefaults()
	return c, nil
}
