// Package config loads the daemon configuration file.
//
// The file is YAML; listener and journal sections carry backend-specific
// option maps that are decoded into typed structs on demand, so adding a
// backend does not grow the top-level schema.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the daemon configuration.
type Config struct {
	Session   SessionConfig    `mapstructure:"session"`
	Journal   JournalConfig    `mapstructure:"journal"`
	Listeners []ListenerConfig `mapstructure:"listeners"`

	// Startup commands run against the session before any listener is
	// started, in order. A failing startup command aborts daemon boot.
	Startup []string `mapstructure:"startup"`
}

// SessionConfig tunes the session loop.
type SessionConfig struct {
	ID            string        `mapstructure:"id"`
	QueueCapacity int           `mapstructure:"queue_capacity"`
	PollTimeout   time.Duration `mapstructure:"poll_timeout"`
	DrainTimeout  time.Duration `mapstructure:"drain_timeout"`
}

// JournalConfig selects the command journal backend: "file", "redis",
// or "none".
type JournalConfig struct {
	Backend string         `mapstructure:"backend"`
	Options map[string]any `mapstructure:"options"`
}

// ListenerConfig declares one transport front-end: "telnet" or "http".
type ListenerConfig struct {
	Kind    string         `mapstructure:"kind"`
	Options map[string]any `mapstructure:"options"`
}

// TelnetOptions are the options of a telnet listener.
type TelnetOptions struct {
	Addr   string `mapstructure:"addr"`
	Prompt string `mapstructure:"prompt"`
	Banner string `mapstructure:"banner"`
}

// HTTPOptions are the options of an HTTP listener.
type HTTPOptions struct {
	Addr string `mapstructure:"addr"`
}

// FileJournalOptions configure the file journal backend.
type FileJournalOptions struct {
	Dir string `mapstructure:"dir"`
}

// RedisJournalOptions configure the redis journal backend.
type RedisJournalOptions struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Default returns the configuration used when no file is given: one
// session, file journal, telnet on :4444 and HTTP on :8080.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			ID:            "default",
			QueueCapacity: 64,
			PollTimeout:   100 * time.Millisecond,
			DrainTimeout:  2 * time.Second,
		},
		Journal: JournalConfig{Backend: "file"},
		Listeners: []ListenerConfig{
			{Kind: "telnet", Options: map[string]any{"addr": ":4444"}},
			{Kind: "http", Options: map[string]any{"addr": ":8080"}},
		},
	}
}

// Load reads and decodes a YAML configuration file. Missing session
// fields fall back to the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg := Default()
	cfg.Listeners = nil
	if err := decode(raw, cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Session.ID == "" {
		cfg.Session.ID = "default"
	}
	return cfg, nil
}

// DecodeOptions maps a listener/journal option map onto a typed struct.
func DecodeOptions(in map[string]any, out any) error {
	return decode(in, out)
}

// decode runs mapstructure with duration parsing, so "100ms" in YAML
// lands in a time.Duration field.
func decode(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
