package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
baseWorkDir: /var/lib/judgecore/work
storeDir: /var/lib/judgecore/store
queue:
  brokers: ["localhost:9092"]
  topic: judge-reports
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.QueueDepth != 64 {
		t.Errorf("QueueDepth = %d, want default 64", cfg.QueueDepth)
	}
	if cfg.EventBuffer != 64 {
		t.Errorf("EventBuffer = %d, want default 64", cfg.EventBuffer)
	}
	if cfg.Sandbox.SandboxExe != "sandbox-run" {
		t.Errorf("SandboxExe = %q, want default \"sandbox-run\"", cfg.Sandbox.SandboxExe)
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("Logger.Level = %q, want default \"info\"", cfg.Logger.Level)
	}
	if cfg.Logger.Format != "json" {
		t.Errorf("Logger.Format = %q, want default \"json\"", cfg.Logger.Format)
	}
	if cfg.Queue.Topic != "judge-reports" {
		t.Errorf("Queue.Topic = %q, want \"judge-reports\"", cfg.Queue.Topic)
	}
}

func TestLoadRespectsExplicitValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
queueDepth: 8
eventBuffer: 4
sandbox:
  sandboxExe: /usr/local/bin/sandbox-run
  defaultLimit: "1000,-:1000,-:1073741824,-:1073741824,-:1073741824,-:1073741824,-:100,-"
logger:
  level: debug
  format: console
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.QueueDepth != 8 {
		t.Errorf("QueueDepth = %d, want 8", cfg.QueueDepth)
	}
	if cfg.Sandbox.SandboxExe != "/usr/local/bin/sandbox-run" {
		t.Errorf("SandboxExe = %q, want explicit value preserved", cfg.Sandbox.SandboxExe)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q, want \"debug\"", cfg.Logger.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error loading a missing config file")
	}
}
