package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadFallsBackToDefaults(t *testing.T) {
	// t.Chdir requires Go 1.24; emulate it for older toolchains.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port = %d, want 8080", cfg.Port)
	}
	if cfg.Mode != "release" {
		t.Fatalf("mode = %q", cfg.Mode)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Fatalf("ping_period = %v", cfg.PingPeriod)
	}
	if cfg.DBPath == "" {
		t.Fatalf("db_path default missing")
	}
}
