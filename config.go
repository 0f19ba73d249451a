package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"i4.energy/across/fhttp/board"
)

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the HTTP bridge listens on (e.g. "0.0.0.0:8080")
	BindAddress string
	// SerialPort is the path to the board's serial port (e.g. "/dev/ttyACM0")
	SerialPort string
	// BaudRate is the baud rate for serial communication with the board (e.g. 115200)
	BaudRate int
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string
	// BodyMode is "first-line" or "accumulate"
	BodyMode string
	// ReadTimeout bounds each read attempt for a board reply
	ReadTimeout time.Duration
	// Script is a Lua file to run instead of serving HTTP
	Script string
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.SerialPort = "/dev/ttyACM0"
		c.BaudRate = board.DefaultBaudRate
		c.LogLevel = "info"
		c.BodyMode = board.BodyFirstLine.String()
		c.ReadTimeout = 500 * time.Millisecond
		return nil
	}
}

// fileConfig mirrors Config in a YAML document. Empty fields are ignored.
type fileConfig struct {
	BindAddress string `yaml:"bind_address"`
	SerialPort  string `yaml:"serial_port"`
	BaudRate    int    `yaml:"baud_rate"`
	LogLevel    string `yaml:"log_level"`
	BodyMode    string `yaml:"body_mode"`
	ReadTimeout string `yaml:"read_timeout"`
	Script      string `yaml:"script"`
}

// WithFile loads configuration from a YAML file. An empty path is a no-op.
func WithFile(path string) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}

		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}

		if fc.BindAddress != "" {
			c.BindAddress = fc.BindAddress
		}
		if fc.SerialPort != "" {
			c.SerialPort = fc.SerialPort
		}
		if fc.BaudRate != 0 {
			c.BaudRate = fc.BaudRate
		}
		if fc.LogLevel != "" {
			c.LogLevel = fc.LogLevel
		}
		if fc.BodyMode != "" {
			c.BodyMode = fc.BodyMode
		}
		if fc.ReadTimeout != "" {
			d, err := time.ParseDuration(fc.ReadTimeout)
			if err != nil {
				return fmt.Errorf("parse read_timeout: %w", err)
			}
			c.ReadTimeout = d
		}
		if fc.Script != "" {
			c.Script = fc.Script
		}
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if serial := os.Getenv("SERIAL_PORT"); serial != "" {
			c.SerialPort = serial
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if mode := os.Getenv("BODY_MODE"); mode != "" {
			c.BodyMode = mode
		}

		if timeout := os.Getenv("READ_TIMEOUT"); timeout != "" {
			if d, err := time.ParseDuration(timeout); err == nil {
				c.ReadTimeout = d
			}
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "serial-port":
				c.SerialPort = f.Value.String()
			case "baud-rate":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.BaudRate = b
				}
			case "log-level":
				c.LogLevel = f.Value.String()
			case "body-mode":
				c.BodyMode = f.Value.String()
			case "read-timeout":
				if d, err := time.ParseDuration(f.Value.String()); err == nil {
					c.ReadTimeout = d
				}
			case "script":
				c.Script = f.Value.String()
			}

		})
		return nil
	}
}

// parseBodyMode maps the configured name to a board.BodyMode.
func parseBodyMode(name string) (board.BodyMode, error) {
	switch name {
	case "", board.BodyFirstLine.String():
		return board.BodyFirstLine, nil
	case board.BodyAccumulate.String():
		return board.BodyAccumulate, nil
	default:
		return 0, fmt.Errorf("unknown body mode %q", name)
	}
}
