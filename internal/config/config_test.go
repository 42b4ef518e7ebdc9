package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"queuewatch/internal/capture"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Capture.Interface != "ens7" {
		t.Errorf("expected Interface ens7, got %s", cfg.Capture.Interface)
	}
	if cfg.Capture.Engine != EnginePcap {
		t.Errorf("expected Engine pcap, got %s", cfg.Capture.Engine)
	}
	if cfg.Capture.SnapLen != 65535 {
		t.Errorf("expected SnapLen 65535, got %d", cfg.Capture.SnapLen)
	}
	if cfg.Capture.Filter != "ip proto 153" || cfg.Capture.Filter != capture.FilterExpression {
		t.Errorf("expected Filter %q, got %q", capture.FilterExpression, cfg.Capture.Filter)
	}
	if cfg.Output.Format != FormatPlain {
		t.Errorf("expected Format plain, got %s", cfg.Output.Format)
	}
	if cfg.Output.TUI {
		t.Error("expected TUI disabled by default")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected Log.Level info, got %s", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults().Validate() = %v", err)
	}
}

func TestLoad(t *testing.T) {
	yamlContent := `
capture:
  interface: eth1
  engine: afpacket
  afpacket:
    num_blocks: 8
output:
  format: json
log:
  level: debug
`
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Overridden values
	if cfg.Capture.Interface != "eth1" {
		t.Errorf("expected Interface eth1, got %s", cfg.Capture.Interface)
	}
	if cfg.Capture.Engine != EngineAFPacket {
		t.Errorf("expected Engine afpacket, got %s", cfg.Capture.Engine)
	}
	if cfg.Capture.AFPacket.NumBlocks != 8 {
		t.Errorf("expected NumBlocks 8, got %d", cfg.Capture.AFPacket.NumBlocks)
	}
	if cfg.Output.Format != FormatJSON {
		t.Errorf("expected Format json, got %s", cfg.Output.Format)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected Log.Level debug, got %s", cfg.Log.Level)
	}

	// Defaults preserved
	if cfg.Capture.SnapLen != 65535 {
		t.Errorf("expected default SnapLen 65535, got %d", cfg.Capture.SnapLen)
	}
	if cfg.Capture.AFPacket.FrameSize != 4096 {
		t.Errorf("expected default FrameSize 4096, got %d", cfg.Capture.AFPacket.FrameSize)
	}
	if !cfg.Capture.Promiscuous {
		t.Error("expected default Promiscuous true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("capture: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown engine", func(c *Config) { c.Capture.Engine = "dpdk" }},
		{"no interface or file", func(c *Config) { c.Capture.Interface = "" }},
		{"zero snaplen", func(c *Config) { c.Capture.SnapLen = 0 }},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }},
		{"tui without history", func(c *Config) { c.Output.TUI = true; c.Output.RecentLimit = 0 }},
		{"afpacket zero blocks", func(c *Config) {
			c.Capture.Engine = EngineAFPacket
			c.Capture.AFPacket.NumBlocks = 0
		}},
		{"afpacket misaligned block", func(c *Config) {
			c.Capture.Engine = EngineAFPacket
			c.Capture.AFPacket.BlockSize = 5000
		}},
	}
	for _, tt := range tests {
		cfg := Defaults()
		tt.mutate(&cfg)
		err := cfg.Validate()
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: Validate() = %v, want ErrInvalid", tt.name, err)
		}
	}
}

func TestValidateFileWithoutInterface(t *testing.T) {
	cfg := Defaults()
	cfg.Capture.Interface = ""
	cfg.Capture.ReadFile = "capture.pcap"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil when replaying a file", err)
	}
}
