package vaultconfig_test

import (
	"path/filepath"
	"testing"

	"github.com/securefoxd/securefox/vaultconfig"
	"github.com/securefoxd/securefox/vaultmodel"
)

func TestLoadFromMissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()

	c, err := vaultconfig.LoadFrom(filepath.Join(dir, "config"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if c.SyncConfig.Enabled {
		t.Fatal("expected sync disabled by default")
	}

	if c.SyncConfig.Mode.Type != vaultmodel.SyncModeManual {
		t.Fatalf("expected manual mode by default, got %v", c.SyncConfig.Mode.Type)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	remote := "git@example.com:me/vault.git"

	c, err := vaultconfig.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	c.RemoteURL = &remote
	c.SyncConfig = vaultmodel.SyncConfig{
		Enabled: true,
		Mode:    vaultmodel.SyncMode{Type: vaultmodel.SyncModeAuto, IntervalSeconds: 300},
	}

	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := vaultconfig.LoadFrom(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	if reloaded.RemoteURL == nil || *reloaded.RemoteURL != remote {
		t.Fatalf("expected remote url to round-trip, got %v", reloaded.RemoteURL)
	}

	if !reloaded.SyncConfig.Enabled || !reloaded.SyncConfig.Mode.IsAuto() {
		t.Fatalf("expected sync config to round-trip, got %+v", reloaded.SyncConfig)
	}

	interval, ok := reloaded.SyncConfig.Mode.Interval()
	if !ok || interval.Seconds() != 300 {
		t.Fatalf("expected a 300s interval, got %v (ok=%v)", interval, ok)
	}
}
