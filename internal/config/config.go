// Package config defines the judge core's static configuration, loaded
// from a YAML file via gopkg.in/yaml.v3.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	judgeerrors "judgecore/pkg/errors"
)

// SandboxConfig configures where the sandbox-run binary lives and the
// per-run defaults the judger applies when a problem doesn't override
// them.
type SandboxConfig struct {
	SandboxExe      string `yaml:"sandboxExe"`
	DefaultLimit    string `yaml:"defaultLimit"` // seven-colon Limitation grammar; empty = built-in default
	CacheRoot       string `yaml:"cacheRoot"`
	StdoutStderrCap int64  `yaml:"stdoutStderrCap"`
}

// QueueConfig configures the Kafka-backed outbound report publisher.
type QueueConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// LoggerConfig mirrors pkg/utils/logger's Config, kept separate so the YAML
// shape doesn't couple callers to the logger package's Go type.
type LoggerConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Output  string `yaml:"output"`
	Service string `yaml:"service"`
	Env     string `yaml:"env"`
	Cluster string `yaml:"cluster"`
}

// Config is the judge core process's top-level configuration.
type Config struct {
	BaseWorkDir string        `yaml:"baseWorkDir"`
	StoreDir    string        `yaml:"storeDir"`
	QueueDepth  int           `yaml:"queueDepth"`
	EventBuffer int           `yaml:"eventBuffer"`
	Sandbox     SandboxConfig `yaml:"sandbox"`
	Queue       QueueConfig   `yaml:"queue"`
	Logger      LoggerConfig  `yaml:"logger"`
}

// Load reads and parses the YAML config at path, applying defaults for
// anything left unset.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, judgeerrors.Wrapf(err, judgeerrors.InvalidParams, "config: read %s: %v", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, judgeerrors.Wrapf(err, judgeerrors.InvalidFormat, "config: parse %s: %v", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.QueueDepth <= 0 {
		c.QueueDepth = 64
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = 64
	}
	if c.Sandbox.SandboxExe == "" {
		c.Sandbox.SandboxExe = "sandbox-run"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "json"
	}
}
