package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"jp8080ctl/midi"
	"jp8080ctl/params"
)

// OutputConfig defines the synth MIDI output
type OutputConfig struct {
	PortName string `json:"portName,omitempty"`
	Channel  int    `json:"channel,omitempty"`
	Part     string `json:"part,omitempty"` // "upper" or "lower"
}

// EngineConfig tunes the processing loop
type EngineConfig struct {
	CycleMs    int  `json:"cycleMs,omitempty"`
	AsyncSysEx bool `json:"asyncSysEx"`
	SysExQueue int  `json:"sysExQueue,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette   string `json:"palette,omitempty"`
	LastPatch string `json:"lastPatch,omitempty"`
	LastBank  string `json:"lastBank,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Output OutputConfig `json:"output"`
	Engine EngineConfig `json:"engine"`
	UI     UIConfig     `json:"ui,omitempty"`
	Debug  bool         `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Channel: 1,
			Part:    "upper",
		},
		Engine: EngineConfig{
			CycleMs:    10,
			AsyncSysEx: true,
			SysExQueue: 64,
		},
		UI: UIConfig{
			LastBank: params.UserA.Key(),
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "jp8080ctl"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found.
// Fields missing from the file keep their defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrap(err, "read config")
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	cfg.Validate()

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "create config dir")
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate pulls out-of-range settings back into range
func (c *Config) Validate() {
	c.Output.Channel = max(1, min(c.Output.Channel, 16))
	if _, err := midi.ParsePart(c.Output.Part); err != nil {
		c.Output.Part = "upper"
	}
	if c.Engine.CycleMs <= 0 {
		c.Engine.CycleMs = 10
	}
	c.Engine.CycleMs = min(c.Engine.CycleMs, 1000)
	if c.Engine.SysExQueue <= 0 {
		c.Engine.SysExQueue = 64
	}
	if _, err := params.ParseBank(c.UI.LastBank); err != nil {
		c.UI.LastBank = params.UserA.Key()
	}
}

// Part returns the configured performance part
func (c *Config) Part() midi.Part {
	p, _ := midi.ParsePart(c.Output.Part)
	return p
}

// Cycle returns the processing cycle length
func (c *Config) Cycle() time.Duration {
	return time.Duration(c.Engine.CycleMs) * time.Millisecond
}
