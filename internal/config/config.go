package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// BusCapacity is the per-subscriber broadcast buffer. A subscriber
	// lagging behind it silently misses messages.
	BusCapacity int `mapstructure:"bus_capacity" yaml:"bus_capacity"`
	// MaxMessageChars is the longest chat message accepted for publishing.
	MaxMessageChars int `mapstructure:"max_message_chars" yaml:"max_message_chars"`
	// WSConnsPerMinute caps websocket upgrades per minute. Zero disables
	// the limit.
	WSConnsPerMinute int `mapstructure:"ws_conns_per_minute" yaml:"ws_conns_per_minute"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		BusCapacity:       1024,
		MaxMessageChars:   128,
		WSConnsPerMinute:  0,
	}
}
