package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.FixedFrame != "odom" {
		t.Error(cfg.FixedFrame)
	}
	if cfg.BaseFrame != "base_link" {
		t.Error(cfg.BaseFrame)
	}
	if cfg.PoseTopic != "/ropose" {
		t.Error(cfg.PoseTopic)
	}
	if cfg.Rate != 10.0 {
		t.Error(cfg.Rate)
	}
	if cfg.QueueSize != 1 {
		t.Error(cfg.QueueSize)
	}
	if cfg.TFCacheTime != 10.0 {
		t.Error(cfg.TFCacheTime)
	}
	if cfg.CmdVel.Topic != "/cmd_vel" || cfg.CmdVel.LinearX != 0.2 || cfg.CmdVel.AngularZ != 2.0 {
		t.Error(cfg.CmdVel)
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Error(cfg)
	}
}

func TestLoadOverridesPerKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ropose.yaml")
	body := "fixed_frame: map\nrate: 25.0\ncmd_vel:\n  linear_x: 0.5\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FixedFrame != "map" {
		t.Error(cfg.FixedFrame)
	}
	if cfg.Rate != 25.0 {
		t.Error(cfg.Rate)
	}
	if cfg.CmdVel.LinearX != 0.5 {
		t.Error(cfg.CmdVel.LinearX)
	}
	// Untouched keys keep their defaults.
	if cfg.BaseFrame != "base_link" || cfg.QueueSize != 1 {
		t.Error(cfg)
	}
	if cfg.CmdVel.AngularZ != 2.0 {
		t.Error(cfg.CmdVel.AngularZ)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("rate: [not a number\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error")
	}
}
