// Package config handles host configuration and the .armature directory
// structure. Every project that runs armature gets a .armature/ folder
// created in its root.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// ArmatureDir is the name of the directory created in each project.
	ArmatureDir = ".armature"

	// DefaultControlPeriod is used when config.yaml does not set one.
	DefaultControlPeriod = 100 * time.Millisecond
)

const defaultProjectConfigYAML = `# armature project configuration
version: 1

# Hardware description file, relative to the project directory.
description: hardware.yaml

# Control cycle period (Go duration string).
control_period: 100ms

# Directory scanned for external actuator definitions,
# relative to .armature/.
plugin_dir: plugins

bridge:
  enabled: true
  host: 127.0.0.1
  port: 8765
`

// BridgeConfig captures the HTTP bridge section of config.yaml.
type BridgeConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Host    string `yaml:"host,omitempty"`
	Port    int    `yaml:"port,omitempty"`
}

// ProjectConfig models .armature/config.yaml.
type ProjectConfig struct {
	Version       int          `yaml:"version"`
	Description   string       `yaml:"description"`
	ControlPeriod string       `yaml:"control_period,omitempty"`
	PluginDir     string       `yaml:"plugin_dir,omitempty"`
	Bridge        BridgeConfig `yaml:"bridge,omitempty"`
}

// envOverrides lists the environment variables that take precedence over
// config.yaml values.
type envOverrides struct {
	Description   string `env:"ARMATURE_DESCRIPTION"`
	ControlPeriod string `env:"ARMATURE_CONTROL_PERIOD"`
	PluginDir     string `env:"ARMATURE_PLUGIN_DIR"`
	BridgeEnabled *bool  `env:"ARMATURE_BRIDGE_ENABLED"`
	BridgeHost    string `env:"ARMATURE_BRIDGE_HOST"`
	BridgePort    int    `env:"ARMATURE_BRIDGE_PORT"`
}

// Config holds the runtime configuration for the host.
type Config struct {
	// ProjectDir is the directory where the user ran armature from.
	ProjectDir string

	// ArmatureProjectDir is ProjectDir/.armature.
	ArmatureProjectDir string

	Project ProjectConfig
}

// InitArmatureDir creates the .armature directory structure in the given
// project directory and seeds a default config.yaml on first run.
//
// Structure created:
//
//	.armature/
//	├── logs/     <- host and plugin logs
//	├── journal/  <- lifecycle transition journal
//	└── plugins/  <- external actuator definitions (*.yaml, *.go)
func InitArmatureDir(projectDir string) error {
	armatureDir := filepath.Join(projectDir, ArmatureDir)
	dirs := []string{
		filepath.Join(armatureDir, "logs"),
		filepath.Join(armatureDir, "journal"),
		filepath.Join(armatureDir, "plugins"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(armatureDir, "config.yaml"))
}

// NewConfig loads .armature/config.yaml and applies environment overrides.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:         projectDir,
		ArmatureProjectDir: filepath.Join(projectDir, ArmatureDir),
		Project:            defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.ArmatureProjectDir, "logs")
}

// JournalDir returns the path to the journal directory.
func (c *Config) JournalDir() string {
	return filepath.Join(c.ArmatureProjectDir, "journal")
}

// PluginDir returns the directory scanned for external actuator definitions.
func (c *Config) PluginDir() string {
	dir := strings.TrimSpace(c.Project.PluginDir)
	if dir == "" {
		dir = "plugins"
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.ArmatureProjectDir, dir)
}

// DescriptionPath returns the absolute path of the hardware description file.
func (c *Config) DescriptionPath() string {
	path := strings.TrimSpace(c.Project.Description)
	if path == "" {
		path = "hardware.yaml"
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.ProjectDir, path)
}

// ControlPeriod parses the configured control cycle period.
func (c *Config) ControlPeriod() (time.Duration, error) {
	raw := strings.TrimSpace(c.Project.ControlPeriod)
	if raw == "" {
		return DefaultControlPeriod, nil
	}
	period, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: parse control_period %q: %w", raw, err)
	}
	if period <= 0 {
		return 0, fmt.Errorf("config: control_period must be positive, got %s", period)
	}
	return period, nil
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.ArmatureProjectDir, "config.yaml")
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var project ProjectConfig
	if err := yaml.Unmarshal(data, &project); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	mergeProjectConfig(&c.Project, project)
	return nil
}

func (c *Config) applyEnvOverrides() error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("config: parse environment: %w", err)
	}
	if v := strings.TrimSpace(overrides.Description); v != "" {
		c.Project.Description = v
	}
	if v := strings.TrimSpace(overrides.ControlPeriod); v != "" {
		c.Project.ControlPeriod = v
	}
	if v := strings.TrimSpace(overrides.PluginDir); v != "" {
		c.Project.PluginDir = v
	}
	if overrides.BridgeEnabled != nil {
		c.Project.Bridge.Enabled = overrides.BridgeEnabled
	}
	if v := strings.TrimSpace(overrides.BridgeHost); v != "" {
		c.Project.Bridge.Host = v
	}
	if overrides.BridgePort != 0 {
		c.Project.Bridge.Port = overrides.BridgePort
	}
	return nil
}

func defaultProjectConfig() ProjectConfig {
	var project ProjectConfig
	// The seeded file is the source of truth for defaults; parsing it here
	// keeps the two in sync.
	if err := yaml.Unmarshal([]byte(defaultProjectConfigYAML), &project); err != nil {
		panic(fmt.Sprintf("config: default project config is invalid: %v", err))
	}
	return project
}

func mergeProjectConfig(dst *ProjectConfig, src ProjectConfig) {
	if src.Version != 0 {
		dst.Version = src.Version
	}
	if strings.TrimSpace(src.Description) != "" {
		dst.Description = src.Description
	}
	if strings.TrimSpace(src.ControlPeriod) != "" {
		dst.ControlPeriod = src.ControlPeriod
	}
	if strings.TrimSpace(src.PluginDir) != "" {
		dst.PluginDir = src.PluginDir
	}
	if src.Bridge.Enabled != nil {
		dst.Bridge.Enabled = src.Bridge.Enabled
	}
	if strings.TrimSpace(src.Bridge.Host) != "" {
		dst.Bridge.Host = src.Bridge.Host
	}
	if src.Bridge.Port != 0 {
		dst.Bridge.Port = src.Bridge.Port
	}
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644); err != nil {
		return fmt.Errorf("config: seed %s: %w", path, err)
	}
	return nil
}
