package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInitArmatureDirCreatesLayout(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitArmatureDir(projectDir); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, sub := range []string{"logs", "journal", "plugins"} {
		path := filepath.Join(projectDir, ArmatureDir, sub)
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if !info.IsDir() {
			t.Fatalf("%s is not a directory", path)
		}
	}
	if _, err := os.Stat(filepath.Join(projectDir, ArmatureDir, "config.yaml")); err != nil {
		t.Fatalf("config.yaml not seeded: %v", err)
	}
}

func TestInitArmatureDirKeepsExistingConfig(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitArmatureDir(projectDir); err != nil {
		t.Fatalf("init: %v", err)
	}
	custom := []byte("version: 1\ndescription: custom.yaml\n")
	path := filepath.Join(projectDir, ArmatureDir, "config.yaml")
	if err := os.WriteFile(path, custom, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := InitArmatureDir(projectDir); err != nil {
		t.Fatalf("re-init: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != string(custom) {
		t.Fatal("re-init must not overwrite an existing config.yaml")
	}
}

func TestNewConfigDefaults(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitArmatureDir(projectDir); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if got := cfg.DescriptionPath(); got != filepath.Join(projectDir, "hardware.yaml") {
		t.Fatalf("unexpected description path %q", got)
	}
	period, err := cfg.ControlPeriod()
	if err != nil {
		t.Fatalf("control period: %v", err)
	}
	if period != 100*time.Millisecond {
		t.Fatalf("expected 100ms, got %s", period)
	}
	if got := cfg.PluginDir(); got != filepath.Join(projectDir, ArmatureDir, "plugins") {
		t.Fatalf("unexpected plugin dir %q", got)
	}
	if cfg.Project.Bridge.Enabled == nil || !*cfg.Project.Bridge.Enabled {
		t.Fatal("bridge should default to enabled")
	}
}

func TestNewConfigReadsProjectFile(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitArmatureDir(projectDir); err != nil {
		t.Fatalf("init: %v", err)
	}
	custom := []byte("version: 1\ndescription: arm.yaml\ncontrol_period: 250ms\nbridge:\n  port: 9000\n")
	if err := os.WriteFile(filepath.Join(projectDir, ArmatureDir, "config.yaml"), custom, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if got := cfg.DescriptionPath(); got != filepath.Join(projectDir, "arm.yaml") {
		t.Fatalf("unexpected description path %q", got)
	}
	period, err := cfg.ControlPeriod()
	if err != nil {
		t.Fatalf("control period: %v", err)
	}
	if period != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", period)
	}
	if cfg.Project.Bridge.Port != 9000 {
		t.Fatalf("expected port 9000, got %d", cfg.Project.Bridge.Port)
	}
	// Unset keys keep their defaults.
	if cfg.Project.Bridge.Host != "127.0.0.1" {
		t.Fatalf("expected default host, got %q", cfg.Project.Bridge.Host)
	}
}

func TestNewConfigEnvOverrides(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitArmatureDir(projectDir); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Setenv("ARMATURE_CONTROL_PERIOD", "50ms")
	t.Setenv("ARMATURE_BRIDGE_ENABLED", "false")
	t.Setenv("ARMATURE_BRIDGE_PORT", "9100")
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	period, err := cfg.ControlPeriod()
	if err != nil {
		t.Fatalf("control period: %v", err)
	}
	if period != 50*time.Millisecond {
		t.Fatalf("expected 50ms, got %s", period)
	}
	if cfg.Project.Bridge.Enabled == nil || *cfg.Project.Bridge.Enabled {
		t.Fatal("env override should disable the bridge")
	}
	if cfg.Project.Bridge.Port != 9100 {
		t.Fatalf("expected port 9100, got %d", cfg.Project.Bridge.Port)
	}
}

func TestControlPeriodRejectsGarbage(t *testing.T) {
	cfg := &Config{Project: ProjectConfig{ControlPeriod: "soon"}}
	if _, err := cfg.ControlPeriod(); err == nil {
		t.Fatal("expected parse error")
	}
	cfg.Project.ControlPeriod = "-10ms"
	if _, err := cfg.ControlPeriod(); err == nil {
		t.Fatal("expected positivity error")
	}
}
