// Package config loads and persists the wraith configuration file: the
// server inventory plus dashboard tuning.
package config

import (
	"time"

	"github.com/rileyhilliard/wraith/internal/engine"
	"github.com/rileyhilliard/wraith/internal/server"
)

// CurrentVersion is written to new config files.
const CurrentVersion = 1

// Config is the on-disk configuration.
type Config struct {
	Version  int           `yaml:"version" mapstructure:"version"`
	Servers  []ServerEntry `yaml:"servers" mapstructure:"servers"`
	Settings Settings      `yaml:"settings" mapstructure:"settings"`
}

// ServerEntry is one server as stored in the config file.
type ServerEntry struct {
	ID          string   `yaml:"id" mapstructure:"id"`
	Name        string   `yaml:"name" mapstructure:"name"`
	Host        string   `yaml:"host" mapstructure:"host"`
	Port        int      `yaml:"port" mapstructure:"port"`
	Username    string   `yaml:"username,omitempty" mapstructure:"username"`
	Auth        string   `yaml:"auth" mapstructure:"auth"`
	KeyPath     string   `yaml:"key_path,omitempty" mapstructure:"key_path"`
	Tags        []string `yaml:"tags,omitempty" mapstructure:"tags"`
	Description string   `yaml:"description,omitempty" mapstructure:"description"`
}

// Settings tunes probing and presentation. Durations are strings like "30s"
// so the YAML stays readable.
type Settings struct {
	ProbeInterval       string `yaml:"probe_interval,omitempty" mapstructure:"probe_interval"`
	ProbeTimeout        string `yaml:"probe_timeout,omitempty" mapstructure:"probe_timeout"`
	MaxConcurrentProbes int    `yaml:"max_concurrent_probes,omitempty" mapstructure:"max_concurrent_probes"`
	MaxBackoff          int    `yaml:"max_backoff,omitempty" mapstructure:"max_backoff"`
	LatencyHistory      int    `yaml:"latency_history,omitempty" mapstructure:"latency_history"`
	// Terminal pins a specific emulator (e.g. "kitty"); empty auto-detects.
	Terminal string `yaml:"terminal,omitempty" mapstructure:"terminal"`
	// DeepProbe switches health checks from a TCP dial to a full SSH
	// handshake.
	DeepProbe bool `yaml:"deep_probe,omitempty" mapstructure:"deep_probe"`
}

// DefaultConfig returns an empty inventory with default settings.
func DefaultConfig() *Config {
	return &Config{Version: CurrentVersion}
}

// ToRecord converts a config entry to an engine server record.
func (e ServerEntry) ToRecord() server.Record {
	port := e.Port
	if port == 0 {
		port = server.DefaultSSHPort
	}
	return server.Record{
		ID:          e.ID,
		Name:        e.Name,
		Host:        e.Host,
		Port:        port,
		Username:    e.Username,
		Auth:        server.ParseAuthMethod(e.Auth),
		KeyPath:     e.KeyPath,
		Tags:        append([]string(nil), e.Tags...),
		Description: e.Description,
	}
}

// EntryFor converts an engine server record to a config entry.
func EntryFor(rec server.Record) ServerEntry {
	return ServerEntry{
		ID:          rec.ID,
		Name:        rec.Name,
		Host:        rec.Host,
		Port:        rec.Port,
		Username:    rec.Username,
		Auth:        string(rec.Auth),
		KeyPath:     rec.KeyPath,
		Tags:        append([]string(nil), rec.Tags...),
		Description: rec.Description,
	}
}

// Records converts the full inventory.
func (c *Config) Records() []server.Record {
	out := make([]server.Record, 0, len(c.Servers))
	for _, e := range c.Servers {
		out = append(out, e.ToRecord())
	}
	return out
}

// SetRecords replaces the inventory from engine records.
func (c *Config) SetRecords(records []server.Record) {
	c.Servers = make([]ServerEntry, 0, len(records))
	for _, rec := range records {
		c.Servers = append(c.Servers, EntryFor(rec))
	}
}

// EngineConfig derives the engine tuning from the settings, falling back to
// engine defaults for anything unset or unparsable.
func (c *Config) EngineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.BaseInterval = parseDuration(c.Settings.ProbeInterval, cfg.BaseInterval)
	cfg.ProbeTimeout = parseDuration(c.Settings.ProbeTimeout, cfg.ProbeTimeout)
	if c.Settings.MaxConcurrentProbes > 0 {
		cfg.MaxInFlight = c.Settings.MaxConcurrentProbes
	}
	if c.Settings.MaxBackoff > 0 {
		cfg.MaxMultiplier = c.Settings.MaxBackoff
	}
	if c.Settings.LatencyHistory > 0 {
		cfg.HistorySize = c.Settings.LatencyHistory
	}
	return cfg
}

// parseDuration parses a duration string, returning the default if parsing
// fails.
func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
