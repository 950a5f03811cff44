// Package config provides configuration management for siteinventory.
//
// Config file locations (priority order):
//  1. $SITEINVENTORY_CONFIG
//  2. ./siteinventory.yaml
//  3. $XDG_CONFIG_HOME/siteinventory/config.yaml
//  4. ~/.config/siteinventory/config.yaml
//  5. /etc/siteinventory/config.yaml
//
// Command line flags override values loaded here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"siteinventory/internal/domain"
)

// Probe backends
const (
	BackendNmap = "nmap"
	BackendTCP  = "tcp"
	BackendSSH  = "ssh"
)

// Output formats
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// DefaultInputPath is used when no input path is given
const DefaultInputPath = "./hosts.csv"

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{Version: 1}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}

	if c.Input.Path == "" {
		c.Input.Path = DefaultInputPath
	}
	if c.Input.Delimiter == "" {
		c.Input.Delimiter = ","
	}
	if c.Input.Encoding == "" {
		c.Input.Encoding = "utf-8"
	}
	if c.Input.Columns.Name == "" {
		c.Input.Columns.Name = "BPO NAME"
	}
	if len(c.Input.Columns.Slots) == 0 {
		c.Input.Columns.Slots = []string{domain.SlotPrimary, domain.SlotSecondary}
	}
	if c.Input.Columns.AddressSuffix == "" {
		c.Input.Columns.AddressSuffix = " IP"
	}
	if c.Input.Columns.PortSuffix == "" {
		c.Input.Columns.PortSuffix = " Port"
	}

	if c.Output.Format == "" {
		c.Output.Format = FormatYAML
	}

	if c.Probe.Backend == "" {
		c.Probe.Backend = BackendNmap
	}
	if c.Probe.Timeout == 0 {
		c.Probe.Timeout = Duration(2 * time.Second)
	}
	if c.Probe.Concurrency == 0 {
		c.Probe.Concurrency = 16
	}

	if c.Inventory.RootGroup == "" {
		c.Inventory.RootGroup = domain.DefaultRootGroup
	}
	if c.Inventory.HostSuffix == "" {
		c.Inventory.HostSuffix = domain.DefaultHostSuffix
	}
	if c.Inventory.Vars == nil {
		c.Inventory.Vars = Vars(domain.DefaultVars())
	}

	if c.Log.Name == "" {
		c.Log.Name = "siteinventory"
	}
	if len(c.Log.Levels) == 0 {
		c.Log.Levels = []string{"info", "warning", "error", "critical"}
	}
}

// Validate checks values that have no sensible fallback
func (c *Config) Validate() error {
	switch c.Probe.Backend {
	case BackendNmap, BackendTCP, BackendSSH:
	default:
		return fmt.Errorf("probe.backend: unknown backend %q", c.Probe.Backend)
	}
	if c.Probe.Timeout.Duration() <= 0 {
		return fmt.Errorf("probe.timeout must be positive")
	}
	if c.Probe.Concurrency < 1 {
		return fmt.Errorf("probe.concurrency must be at least 1")
	}
	if c.Probe.Deadline.Duration() < 0 {
		return fmt.Errorf("probe.deadline must not be negative")
	}
	switch c.Output.Format {
	case FormatYAML, FormatJSON:
	default:
		return fmt.Errorf("output.format: unknown format %q", c.Output.Format)
	}
	if len([]rune(c.Input.Delimiter)) != 1 {
		return fmt.Errorf("input.delimiter must be a single character")
	}
	for _, label := range c.Input.Columns.Slots {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("input.columns.slots: empty slot label")
		}
	}
	return nil
}

// InventoryPath returns the inventory output path, derived from the input
// path when not configured: hosts.csv -> hosts.yml (hosts.json for json).
func (c *Config) InventoryPath() string {
	if c.Output.Inventory != "" {
		return c.Output.Inventory
	}
	ext := ".yml"
	if c.Output.Format == FormatJSON {
		ext = ".json"
	}
	return basePath(c.Input.Path) + ext
}

// UnreachablePath returns the sidecar path: hosts.csv -> hosts_unreachable.csv
func (c *Config) UnreachablePath() string {
	if c.Output.Unreachable != "" {
		return c.Output.Unreachable
	}
	return basePath(c.Input.Path) + "_unreachable.csv"
}

func basePath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Input: %s (encoding=%s, name column=%q, slots=%v)\n",
		c.Input.Path, c.Input.Encoding, c.Input.Columns.Name, c.Input.Columns.Slots)
	summary += fmt.Sprintf("Probe: backend=%s timeout=%s concurrency=%d",
		c.Probe.Backend, c.Probe.Timeout.Duration(), c.Probe.Concurrency)
	if c.Probe.Deadline > 0 {
		summary += fmt.Sprintf(" deadline=%s", c.Probe.Deadline.Duration())
	}
	summary += fmt.Sprintf("\nOutput: %s (%s), unreachable: %s",
		c.InventoryPath(), c.Output.Format, c.UnreachablePath())
	return summary
}
